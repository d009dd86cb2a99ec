package trigger

import (
	"fmt"
	"strings"

	"github.com/NikitaCOEUR/autosuggest/internal/derrors"
)

// Parse converts a declarative trigger from a completion spec into a Policy.
//
// Accepted shapes:
//
//	trigger: "/"                            # substring
//	trigger: {on: change}
//	trigger: {on: threshold, length: 3}
//	trigger: {on: match, string: add}
//	trigger: {on: match, string: [add, remove]}
//
// A mapping without "on" is a change trigger.
func Parse(raw interface{}) (Policy, error) {
	switch v := raw.(type) {
	case nil:
		return Policy{}, nil
	case string:
		if v == "" {
			return Policy{}, derrors.NewValidationError("trigger", "substring trigger must not be empty", nil)
		}
		return OnSubstring(v), nil
	case map[string]interface{}:
		return parseObject(v)
	default:
		return Policy{}, derrors.NewValidationError("trigger", fmt.Sprintf("unsupported trigger type %T", raw), nil)
	}
}

func parseObject(m map[string]interface{}) (Policy, error) {
	on, _ := m["on"].(string)

	switch strings.ToLower(on) {
	case "", "change":
		return OnChange(), nil
	case "threshold":
		n, ok := toInt(m["length"])
		if !ok || n < 0 {
			return Policy{}, derrors.NewValidationError("trigger.length", "threshold trigger requires a non-negative integer length", nil)
		}
		return OnThreshold(n), nil
	case "match":
		strs, ok := toStrings(m["string"])
		if !ok || len(strs) == 0 {
			return Policy{}, derrors.NewValidationError("trigger.string", "match trigger requires a string or a list of strings", nil)
		}
		return OnMatch(strs...), nil
	default:
		return Policy{}, derrors.NewValidationError("trigger.on", fmt.Sprintf("unknown trigger %q", on), nil)
	}
}

// toInt accepts the numeric types the yaml, toml and json parsers produce
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

func toStrings(v interface{}) ([]string, bool) {
	switch s := v.(type) {
	case string:
		return []string{s}, true
	case []string:
		return s, true
	case []interface{}:
		out := make([]string, 0, len(s))
		for _, item := range s {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, str)
		}
		return out, true
	default:
		return nil, false
	}
}
