// Package template provides a Handlebars template engine with the join and
// modChoose helpers bound in.
//
// The engine supports Handlebars syntax with custom helpers for common operations.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	data := map[string]interface{}{
//	    "classes": []string{"btn", "btn-primary"},
//	    "rows":    []string{"A", "B", "C"},
//	}
//
//	tpl := `<a class="{{join classes}}">` +
//	    `{{#each rows}}<li class="{{modChoose @index "even" "odd"}}">{{this}}</li>{{/each}}`
//	result, err := engine.Render(tpl, data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	// Output: <a class="btn btn-primary"><li class="even">A</li><li class="odd">B</li>...
//
// Variadic helpers:
//   - join - Join a list, or all positional arguments, with a delimiter
//   - modChoose - Pick a value by dividend modulo the number of values
//
// Raymond calls a Go helper only when its arity matches the call site, so the
// engine binds every inline call of a variadic helper to an adapter of the
// right arity when the template is compiled. Additional variadic helpers can
// be supplied with WithHelpers. Block calls ({{#join}}) are not bound.
//
// Built-in helpers:
//   - uppercase - Convert string to uppercase
//   - lowercase - Convert string to lowercase
//   - trim - Trim whitespace from string
//   - default - Return default value if first arg is empty
//   - eq - Equality comparison
//   - ne - Inequality comparison
//   - gt - Greater than (for numbers)
//   - lt - Less than (for numbers)
//   - contains - Check if string contains substring
//   - len - Get length of array/string/map
//
// Example with helpers:
//
//	{{uppercase name}}                     # "JOHN"
//	{{default value "N/A"}}                # "N/A" if value is empty
//	{{#if (eq status "active")}}...{{/if}} # Conditional
//	{{join items ", "}}                    # "a, b, c"
//	{{join first last glue="-"}}           # "john-doe"
//
// Helper errors, such as a join call without arguments, abort rendering and
// are returned by Render wrapped around the helpers.ArityError.
package template
