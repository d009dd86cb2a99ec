package generator

import (
	"context"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

func runCustom(ctx context.Context, d *Descriptor, gctx Context) ([]Suggestion, error) {
	if d.Custom == nil {
		return nil, derrors.NewGeneratorError(d.Label(), "custom generator without function", nil)
	}

	out, err := d.Custom(ctx, gctx)
	if err != nil {
		return nil, derrors.NewGeneratorError(d.Label(), "custom generator failed", err)
	}

	// Only the first suggestion is inspected: filepaths and folders produce homogeneous lists
	if d.FilterTemplateSuggestions && d.TemplateFilter != nil && len(out) > 0 && out[0].Template != nil {
		out = d.TemplateFilter(out)
	}
	return out, nil
}
