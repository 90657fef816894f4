package extensions

import (
	"fmt"
	"reflect"
	"strings"
)

// splitPath splits "a.b.c" into its segments. Empty input yields nil.
func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	return strings.Split(p, ".")
}

// walk follows path through v: map keys, exported struct fields and
// pointers are followed, in that order of preference.
func walk(v any, path []string) (any, error) {
	cur := v
	for i, seg := range path {
		next, err := step(cur, seg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", strings.Join(path[:i+1], "."), err)
		}
		cur = next
	}
	return cur, nil
}

func step(v any, seg string) (any, error) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, fmt.Errorf("nil %s", rv.Type())
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%s has non-string keys", rv.Type())
		}
		val := rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
		if !val.IsValid() {
			return nil, fmt.Errorf("no key %q", seg)
		}
		return val.Interface(), nil
	case reflect.Struct:
		f, ok := rv.Type().FieldByName(seg)
		if !ok || !f.IsExported() {
			return nil, fmt.Errorf("no exported field %q in %s", seg, rv.Type())
		}
		fv, err := rv.FieldByIndexErr(f.Index)
		if err != nil {
			return nil, fmt.Errorf("field %q of %s: %w", seg, rv.Type(), err)
		}
		return fv.Interface(), nil
	case reflect.Invalid:
		return nil, fmt.Errorf("cannot read %q of nil", seg)
	default:
		return nil, fmt.Errorf("cannot read %q of %s", seg, rv.Type())
	}
}
