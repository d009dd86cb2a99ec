package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/autosuggest/internal/config"
	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

// Validate checks a completion spec file, defaulting to the one in the config dir
func Validate(specPath string, out io.Writer) error {
	if out == nil {
		out = os.Stdout
	}
	if specPath == "" {
		specPath = config.FindSpec()
		if specPath == "" {
			return derrors.NewNotFoundError("completion spec", "no completion spec found in config directory")
		}
	}

	_, _ = fmt.Fprintf(out, "Validating: %s\n\n", specPath)

	result, err := config.Validate(specPath)
	if err != nil {
		return err
	}

	if result.Valid {
		_, _ = fmt.Fprintln(out, "✅ Completion spec is valid!")
		return nil
	}

	_, _ = fmt.Fprintln(out, "❌ Completion spec has errors:")
	for i, validationErr := range result.Errors {
		_, _ = fmt.Fprintf(out, "%d. [%s] %s\n", i+1, validationErr.Field, validationErr.Message)
	}
	_, _ = fmt.Fprintf(out, "\nFound %d error(s)\n", len(result.Errors))

	return derrors.NewValidationError(result.Errors[0].Field, "validation failed", nil)
}
