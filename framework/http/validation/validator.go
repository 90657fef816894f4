package validation

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ── Error bag ────────────────────────────────────────────────────────────────

// Errors holds validation messages per field.
// JSON output: {"errors": {"field": ["msg1", "msg2"]}}
type Errors struct {
	Bag map[string][]string `json:"errors"`
}

func (e *Errors) add(field, msg string) {
	if e.Bag == nil {
		e.Bag = make(map[string][]string)
	}
	e.Bag[field] = append(e.Bag[field], msg)
}

func (e *Errors) Has() bool { return len(e.Bag) > 0 }

// First returns the first message for field, or "".
func (e *Errors) First(field string) string {
	if msgs := e.Bag[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// ── Rules ────────────────────────────────────────────────────────────────────

// Rules maps a field to its pipe-separated rule list.
//
//	Rules{"timeout": "sometimes|duration|max_duration:1m"}
type Rules map[string]string

// check reports a failure message for value, or "" when the rule holds.
type check func(field, value, param string) string

// skip is returned by "sometimes" to end a field's rule list quietly.
const skip = "\x00skip"

var checks = map[string]check{
	"required": func(field, value, _ string) string {
		if strings.TrimSpace(value) == "" {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	},
	"sometimes": func(_, value, _ string) string {
		if value == "" {
			return skip
		}
		return ""
	},
	"integer": func(field, value, _ string) string {
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Sprintf("The %s must be an integer.", field)
		}
		return ""
	},
	"gte": func(field, value, param string) string {
		if f, ok := diff(value, param); !ok || f < 0 {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, param)
		}
		return ""
	},
	"lte": func(field, value, param string) string {
		if f, ok := diff(value, param); !ok || f > 0 {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, param)
		}
		return ""
	},
	"in": func(field, value, param string) string {
		if !slices.Contains(splitList(param), value) {
			return fmt.Sprintf("The selected %s is invalid.", field)
		}
		return ""
	},
	"duration": func(field, value, _ string) string {
		if d, err := time.ParseDuration(value); err != nil || d <= 0 {
			return fmt.Sprintf("The %s must be a positive duration such as 500ms or 2s.", field)
		}
		return ""
	},
	"max_duration": func(field, value, param string) string {
		d, _ := time.ParseDuration(value)
		if limit := mustDuration(param); d > limit {
			return fmt.Sprintf("The %s may not be greater than %s.", field, param)
		}
		return ""
	},
	"min_duration": func(field, value, param string) string {
		d, _ := time.ParseDuration(value)
		if limit := mustDuration(param); d < limit {
			return fmt.Sprintf("The %s must be at least %s.", field, param)
		}
		return ""
	},
}

// ── Validator ────────────────────────────────────────────────────────────────

type step struct {
	name  string
	param string
	check check
}

// Validator validates a flat map of input values.
type Validator struct {
	data   map[string]string
	fields []string
	steps  map[string][]step
	errors *Errors
	ran    bool
}

// Make compiles rules against data. Unknown rule names panic: rules are
// written by the programmer, not the client.
func Make(data map[string]string, rules Rules) *Validator {
	v := &Validator{
		data:   data,
		fields: slices.Sorted(maps.Keys(rules)),
		steps:  make(map[string][]step, len(rules)),
		errors: &Errors{},
	}
	for field, list := range rules {
		for _, r := range strings.Split(list, "|") {
			r = strings.TrimSpace(r)
			if r == "" {
				continue
			}
			name, param, _ := strings.Cut(r, ":")
			c, ok := checks[name]
			if !ok {
				panic(fmt.Sprintf("validation: unknown rule %q for field %s", name, field))
			}
			v.steps[field] = append(v.steps[field], step{name: name, param: param, check: c})
		}
	}
	return v
}

// Fails validates on first use and reports whether any rule failed.
func (v *Validator) Fails() bool {
	if !v.ran {
		v.validate()
		v.ran = true
	}
	return v.errors.Has()
}

func (v *Validator) Passes() bool { return !v.Fails() }

func (v *Validator) Errors() *Errors { return v.errors }

// validate runs each field's rules left to right, stopping at the first
// failure.
func (v *Validator) validate() {
	for _, field := range v.fields {
		value := v.data[field]
		for _, s := range v.steps[field] {
			msg := s.check(field, value, s.param)
			if msg == skip {
				break
			}
			if msg != "" {
				v.errors.add(field, msg)
				break
			}
		}
	}
}

// ── Helpers ──────────────────────────────────────────────────────────────────

// diff returns value minus param, ok=false when value is not numeric.
func diff(value, param string) (float64, bool) {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	limit, _ := strconv.ParseFloat(param, 64)
	return f - limit, true
}

func mustDuration(param string) time.Duration {
	d, err := time.ParseDuration(param)
	if err != nil {
		panic(fmt.Sprintf("validation: bad duration parameter %q", param))
	}
	return d
}

func splitList(param string) []string {
	parts := strings.Split(param, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
