// Package render selects and renders Handlebars templates for a request.
//
// A request carries a fallback template and optional variants guarded by CEL
// conditions over the render data. Variants are tried in order; the first
// whose condition is true is rendered, otherwise the fallback template is.
//
// Example:
//
//	req := &render.Request{
//	    Template: `<ul>{{#each rows}}<li class="{{modChoose @index "even" "odd"}}">{{this}}</li>{{/each}}</ul>`,
//	    Variants: []render.Variant{
//	        {Condition: "size(data.rows) == 0", Template: "<p>nothing here</p>"},
//	    },
//	    Data: map[string]interface{}{"rows": []interface{}{"A", "B"}},
//	}
//	result, err := renderer.Render(ctx, req)
//	// result.PathTaken == "fallback", result.Variant == -1
//
// Conditions that fail to evaluate or do not return a boolean are skipped.
package render
