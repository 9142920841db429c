package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/krancour/mentora/internal/devapi"
	"github.com/krancour/mentora/internal/version"
)

func main() {
	// We need to parse flags for glog-related options to take effect
	flag.Parse()

	glog.Infof(
		"Starting Mentora development API server -- version %s -- commit %s",
		version.Version(),
		version.Commit(),
	)

	config, err := devapi.GetConfigFromEnvironment()
	if err != nil {
		glog.Fatal(err)
	}

	glog.Fatal(devapi.New(config).ListenAndServe())
}
