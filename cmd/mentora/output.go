package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

func validateOutputFormat(outputFormat string) error {
	switch strings.ToLower(outputFormat) {
	case "table":
	case "yaml":
	case "json":
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	return nil
}

// printStructured writes obj as YAML or JSON, according to outputFormat.
// operation names what produced obj, for error messages.
func printStructured(
	w io.Writer,
	outputFormat string,
	obj interface{},
	operation string,
) error {
	var outBytes []byte
	var err error
	switch strings.ToLower(outputFormat) {
	case "yaml":
		outBytes, err = yaml.Marshal(obj)
	case "json":
		outBytes, err = json.MarshalIndent(obj, "", "  ")
	default:
		return errors.Errorf("unknown output format %q", outputFormat)
	}
	if err != nil {
		return errors.Wrapf(
			err,
			"error formatting output from %s operation",
			operation,
		)
	}
	fmt.Fprintln(w, string(outBytes))
	return nil
}
