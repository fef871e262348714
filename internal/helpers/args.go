package helpers

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Args is a single helper invocation: the positional arguments in call order
// followed by the named-argument bag.
type Args struct {
	Positional []interface{}
	Named      map[string]interface{}
}

// Func is the engine-independent helper signature
type Func func(args Args) (interface{}, error)

// NewArgs builds Args from positional values and an optional named bag
func NewArgs(named map[string]interface{}, positional ...interface{}) Args {
	return Args{Positional: positional, Named: named}
}

// Argc returns the number of positional arguments. The named bag never counts.
func (a Args) Argc() int {
	return len(a.Positional)
}

// Arg returns the positional argument at i, or nil when out of range
func (a Args) Arg(i int) interface{} {
	if i < 0 || i >= len(a.Positional) {
		return nil
	}
	return a.Positional[i]
}

// NamedArg looks up a named argument. A nil bag behaves as an empty one.
func (a Args) NamedArg(name string) (interface{}, bool) {
	if a.Named == nil {
		return nil, false
	}
	v, ok := a.Named[name]
	return v, ok
}

// Classify reports whether v is a sequence and, if so, returns its items.
//
// Any Go slice or array is a sequence except []byte, which is text.
func Classify(v interface{}) ([]interface{}, bool) {
	switch t := v.(type) {
	case nil, []byte:
		return nil, false
	case []interface{}:
		return t, true
	case []string:
		items := make([]interface{}, len(t))
		for i, s := range t {
			items[i] = s
		}
		return items, true
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]interface{}, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return items, true
	default:
		return nil, false
	}
}

// Stringify converts a helper value to the text that ends up in a joined list.
// nil, including a typed nil pointer, becomes the empty string. Non-nil
// pointers are dereferenced and nested sequences are comma separated.
func Stringify(v interface{}) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}

	if items, ok := Classify(v); ok {
		parts := make([]string, len(items))
		for i, item := range items {
			parts[i] = Stringify(item)
		}
		return strings.Join(parts, ",")
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}
