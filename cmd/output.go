package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/otherjamesbrown/contacts-cli/config"
)

// WriteStructured writes v as JSON or YAML. Any other format is JSON.
func WriteStructured(w io.Writer, format config.OutputFormat, v interface{}) error {
	if format == config.OutputFormatYAML {
		return writeYAML(w, v)
	}
	return writeJSON(w, v)
}

// writeJSON outputs data as indented JSON.
func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// writeYAML outputs data as YAML.
func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	defer enc.Close()
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return nil
}
