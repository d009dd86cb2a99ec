package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/autosuggest/internal/config"
)

// Schema prints the JSON Schema of completion specs, or writes it to outputPath
func Schema(outputPath string, out io.Writer) error {
	schemaJSON := config.GetSchemaJSON()
	if out == nil {
		out = os.Stdout
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(schemaJSON), 0644); err != nil {
			return fmt.Errorf("failed to write schema to %s: %w", outputPath, err)
		}
		_, _ = fmt.Fprintf(out, "JSON Schema written to: %s\n", outputPath)
		return nil
	}

	_, err := fmt.Fprintln(out, schemaJSON)
	return err
}
