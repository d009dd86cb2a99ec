package trigger

import (
	"testing"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  interface{}
		want Policy
	}{
		{name: "absent", raw: nil, want: Policy{}},
		{name: "substring", raw: "/", want: OnSubstring("/")},
		{name: "change", raw: map[string]interface{}{"on": "change"}, want: OnChange()},
		{name: "no on defaults to change", raw: map[string]interface{}{}, want: OnChange()},
		{name: "threshold int", raw: map[string]interface{}{"on": "threshold", "length": 3}, want: OnThreshold(3)},
		{name: "threshold int64 from toml", raw: map[string]interface{}{"on": "threshold", "length": int64(2)}, want: OnThreshold(2)},
		{name: "threshold float from json", raw: map[string]interface{}{"on": "threshold", "length": float64(4)}, want: OnThreshold(4)},
		{name: "match single", raw: map[string]interface{}{"on": "match", "string": "add"}, want: OnMatch("add")},
		{
			name: "match list",
			raw:  map[string]interface{}{"on": "match", "string": []interface{}{"add", "remove"}},
			want: OnMatch("add", "remove"),
		},
		{name: "case insensitive on", raw: map[string]interface{}{"on": "Change"}, want: OnChange()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		raw   interface{}
		field string
	}{
		{name: "empty substring", raw: "", field: "trigger"},
		{name: "unsupported type", raw: 42, field: "trigger"},
		{name: "unknown on", raw: map[string]interface{}{"on": "sometimes"}, field: "trigger.on"},
		{name: "threshold without length", raw: map[string]interface{}{"on": "threshold"}, field: "trigger.length"},
		{name: "threshold fractional", raw: map[string]interface{}{"on": "threshold", "length": 2.5}, field: "trigger.length"},
		{name: "threshold negative", raw: map[string]interface{}{"on": "threshold", "length": -1}, field: "trigger.length"},
		{name: "match without string", raw: map[string]interface{}{"on": "match"}, field: "trigger.string"},
		{name: "match with non strings", raw: map[string]interface{}{"on": "match", "string": []interface{}{"a", 1}}, field: "trigger.string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.raw)
			require.Error(t, err)

			var valErr *derrors.ValidationError
			require.ErrorAs(t, err, &valErr)
			assert.Equal(t, tt.field, valErr.Field)
		})
	}
}
