// Package gotemplate exposes the variadic helpers to text/template and
// html/template.
//
// Go templates have no named arguments, so the named bag is passed as a
// trailing Named value built with the "named" function:
//
//	tmpl := template.New("page").Funcs(gotemplate.FuncMap(helpers.Helpers()))
//	// {{join .Classes}}                        -> "a b c"
//	// {{join "a" "b" (named "glue" "-")}}      -> "a-b"
//	// {{range $i, $row := .Rows}}{{modChoose $i "even" "odd"}}{{end}}
package gotemplate

import (
	"fmt"
	"text/template"

	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
)

// NamedFunc is the template name of the named-argument constructor
const NamedFunc = "named"

// Named is a named-argument bag passed as the last argument of a helper call
type Named map[string]interface{}

// FuncMap returns a template.FuncMap with every helper of funcs plus the
// "named" constructor. html/template accepts the result after conversion to
// its own FuncMap type.
func FuncMap(funcs map[string]helpers.Func) template.FuncMap {
	fm := template.FuncMap{
		NamedFunc: NewNamed,
	}
	for name, fn := range funcs {
		fm[name] = variadic(fn)
	}
	return fm
}

// NewNamed builds a Named bag from alternating keys and values
func NewNamed(pairs ...interface{}) (Named, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("named: odd number of arguments: %d", len(pairs))
	}

	bag := make(Named, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("named: key %d is %T, not string", i/2, pairs[i])
		}
		bag[key] = pairs[i+1]
	}
	return bag, nil
}

// SplitArgs separates a trailing Named bag from the positional arguments
func SplitArgs(values []interface{}) helpers.Args {
	if n := len(values); n > 0 {
		if bag, ok := values[n-1].(Named); ok {
			return helpers.Args{Positional: values[:n-1], Named: bag}
		}
	}
	return helpers.Args{Positional: values, Named: map[string]interface{}{}}
}

func variadic(fn helpers.Func) func(values ...interface{}) (interface{}, error) {
	return func(values ...interface{}) (interface{}, error) {
		return fn(SplitArgs(values))
	}
}
