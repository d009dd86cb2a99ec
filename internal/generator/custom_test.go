package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func dropAll([]Suggestion) []Suggestion { return []Suggestion{} }

func TestCustom_FilterInspectsFirstSuggestion(t *testing.T) {
	meta := &TemplateMeta{Template: TemplateFilepaths}

	tests := []struct {
		name      string
		enabled   bool
		generated []Suggestion
		wantLen   int
	}{
		{
			name:      "first suggestion from template",
			enabled:   true,
			generated: []Suggestion{{Name: "a", Template: meta}, {Name: "b"}},
			wantLen:   0,
		},
		{
			name:      "only later suggestions from template",
			enabled:   true,
			generated: []Suggestion{{Name: "a"}, {Name: "b", Template: meta}},
			wantLen:   2,
		},
		{
			name:      "filtering disabled",
			enabled:   false,
			generated: []Suggestion{{Name: "a", Template: meta}},
			wantLen:   1,
		},
		{
			name:      "empty output",
			enabled:   true,
			generated: nil,
			wantLen:   0,
		},
	}

	e := NewExecutor(Options{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			generated := tt.generated
			d := &Descriptor{
				Kind: KindCustom,
				Custom: func(context.Context, Context) ([]Suggestion, error) {
					return generated, nil
				},
				FilterTemplateSuggestions: tt.enabled,
				TemplateFilter:            dropAll,
			}

			got := e.Run(context.Background(), d, Context{})
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestCustom_ReceivesContext(t *testing.T) {
	var seen Context
	d := &Descriptor{
		Kind: KindCustom,
		Custom: func(_ context.Context, gctx Context) ([]Suggestion, error) {
			seen = gctx
			return nil, nil
		},
	}

	gctx := Context{Tokens: []string{"npm", "run", ""}, SearchTerm: "", WorkingDir: "/app"}
	got := NewExecutor(Options{}).Run(context.Background(), d, gctx)

	assert.NotNil(t, got)
	assert.Equal(t, gctx.Tokens, seen.Tokens)
	assert.Equal(t, "/app", seen.WorkingDir)
}
