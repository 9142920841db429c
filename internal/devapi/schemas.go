package devapi

import (
	"embed"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// schemaLoader returns a loader for the embedded schema with the given name.
// The schemas are compiled into the binary, so a missing one is a programming
// error.
func schemaLoader(name string) gojsonschema.JSONLoader {
	schemaBytes, err := schemaFS.ReadFile(fmt.Sprintf("schemas/%s.json", name))
	if err != nil {
		panic(fmt.Sprintf("no schema named %q is embedded: %s", name, err))
	}
	return gojsonschema.NewBytesLoader(schemaBytes)
}
