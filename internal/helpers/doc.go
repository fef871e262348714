// Package helpers implements the join and modChoose template helpers.
//
// Helpers are engine independent: every invocation is modelled as an Args
// value holding the positional arguments and the named-argument bag that a
// Handlebars-style engine passes as the trailing "options" slot. Host engines
// adapt their own calling convention into Args (see internal/eval/template for
// raymond and internal/eval/gotemplate for text/template).
//
// Example usage:
//
//	out, err := helpers.Join(helpers.Args{
//	    Positional: []interface{}{"a", "b", "c"},
//	    Named:      map[string]interface{}{"glue": "-"},
//	})
//	// out == "a-b-c"
//
//	v, err := helpers.ModChoose(helpers.Args{
//	    Positional: []interface{}{3, "even", "odd"},
//	})
//	// v == "odd"
//
// Template usage (Handlebars):
//
//	{{join classList}}                     # "a b c"
//	{{join classList ", "}}                # "a, b, c"
//	{{join "C" "D" "E" glue="-"}}          # "C-D-E"
//	{{#each rows}}
//	  <li class="{{modChoose @index "even" "odd"}}">{{this}}</li>
//	{{/each}}
//
// Both helpers are pure and safe for concurrent use.
package helpers
