// Package cel provides a CEL (Common Expression Language) evaluator used to
// pick a template variant from the render data.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	data := map[string]interface{}{
//	    "locale": "es",
//	    "items":  []interface{}{"a", "b"},
//	}
//
//	matched, err := evaluator.EvaluateBool(ctx, "data.locale == 'es' && size(data.items) > 1", data)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Expressions see the render data as the map variable "data".
package cel
