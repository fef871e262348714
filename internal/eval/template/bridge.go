package template

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
	"github.com/aymerick/raymond"
	"github.com/aymerick/raymond/ast"
)

// raymond only calls a helper whose Go arity matches the call site, so every
// variadic helper call is renamed to an arity-qualified alias and bound to an
// adapter of exactly that arity.

var (
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
	optionsType   = reflect.TypeOf((*raymond.Options)(nil))
)

// callSite is a variadic helper invocation found in a template
type callSite struct {
	pos   int
	name  string
	arity int
}

// alias returns the arity-qualified helper name bound to this call site
func (s callSite) alias() string {
	return fmt.Sprintf("%s__%d", s.name, s.arity)
}

// siteCollector walks a parsed template and records variadic helper calls
type siteCollector struct {
	variadic map[string]helpers.Func
	sites    []callSite
}

func (c *siteCollector) program(p *ast.Program) {
	if p == nil {
		return
	}
	for _, stmt := range p.Body {
		c.statement(stmt)
	}
}

func (c *siteCollector) statement(n ast.Node) {
	switch node := n.(type) {
	case *ast.MustacheStatement:
		c.expression(node.Expression, true)
	case *ast.BlockStatement:
		// block helpers keep their name: the closing tag must match it
		c.expression(node.Expression, false)
		c.program(node.Program)
		c.program(node.Inverse)
	case *ast.PartialStatement:
		c.param(node.Name)
		for _, p := range node.Params {
			c.param(p)
		}
		c.hash(node.Hash)
	}
}

func (c *siteCollector) expression(expr *ast.Expression, callable bool) {
	if expr == nil {
		return
	}

	if callable {
		if name := expr.HelperName(); name != "" {
			if _, ok := c.variadic[name]; ok {
				c.sites = append(c.sites, callSite{
					pos:   expr.Path.Location().Pos,
					name:  name,
					arity: len(expr.Params),
				})
			}
		}
	}

	for _, p := range expr.Params {
		c.param(p)
	}
	c.hash(expr.Hash)
}

func (c *siteCollector) param(n ast.Node) {
	if sexpr, ok := n.(*ast.SubExpression); ok {
		c.expression(sexpr.Expression, true)
	}
}

func (c *siteCollector) hash(h *ast.Hash) {
	if h == nil {
		return
	}
	for _, pair := range h.Pairs {
		c.param(pair.Val)
	}
}

// collectCallSites returns the variadic helper calls of a parsed template
// ordered by position in the source
func collectCallSites(program *ast.Program, variadic map[string]helpers.Func) []callSite {
	c := &siteCollector{variadic: variadic}
	c.program(program)

	sort.Slice(c.sites, func(i, j int) bool {
		return c.sites[i].pos < c.sites[j].pos
	})
	return c.sites
}

// rewriteCallSites renames every call site to its alias. Sites whose position
// does not hold the helper name verbatim are left alone and not returned.
func rewriteCallSites(source string, sites []callSite) (string, []callSite) {
	var b strings.Builder
	b.Grow(len(source) + len(sites)*4)

	bound := make([]callSite, 0, len(sites))
	last := 0
	for _, site := range sites {
		end := site.pos + len(site.name)
		if site.pos < last || end > len(source) || source[site.pos:end] != site.name {
			continue
		}

		b.WriteString(source[last:site.pos])
		b.WriteString(site.alias())
		last = end
		bound = append(bound, site)
	}
	b.WriteString(source[last:])

	return b.String(), bound
}

// fixedArity builds a raymond helper taking exactly arity positional
// parameters plus the options, forwarding them to fn. Helper errors are
// raised as panics, which raymond turns into the Exec error.
func fixedArity(fn helpers.Func, arity int) interface{} {
	in := make([]reflect.Type, arity+1)
	for i := 0; i < arity; i++ {
		in[i] = interfaceType
	}
	in[arity] = optionsType
	fnType := reflect.FuncOf(in, []reflect.Type{interfaceType}, false)

	impl := func(values []reflect.Value) []reflect.Value {
		positional := make([]interface{}, arity)
		for i := 0; i < arity; i++ {
			positional[i] = values[i].Interface()
		}

		var named map[string]interface{}
		if options, ok := values[arity].Interface().(*raymond.Options); ok && options != nil {
			named = options.Hash()
		}

		out, err := fn(helpers.Args{Positional: positional, Named: named})
		if err != nil {
			panic(err)
		}

		return []reflect.Value{reflect.ValueOf(&out).Elem()}
	}

	return reflect.MakeFunc(fnType, impl).Interface()
}
