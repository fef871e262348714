package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aescanero/dago-hbs-helpers/internal/helpers"
	"github.com/aymerick/raymond"
	"github.com/aymerick/raymond/parser"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

// Engine renders Handlebars templates
type Engine struct {
	cache    map[string]*raymond.Template
	mu       sync.RWMutex
	variadic map[string]helpers.Func
	builtins map[string]interface{}
	logger   *zap.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *zap.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithHelpers registers additional variadic helpers. A helper with the name
// of an existing one replaces it.
func WithHelpers(funcs map[string]helpers.Func) Option {
	return func(e *Engine) {
		for name, fn := range funcs {
			name = strings.TrimSpace(name)
			if name == "" || fn == nil {
				continue
			}
			e.variadic[name] = fn
		}
	}
}

// NewEngine creates a new template engine
func NewEngine(opts ...Option) *Engine {
	engine := &Engine{
		cache:    make(map[string]*raymond.Template),
		variadic: helpers.Helpers(),
		logger:   zap.NewNop(),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(engine)
		}
	}

	engine.builtins = make(map[string]interface{})
	for name, helper := range builtinHelpers() {
		if _, shadowed := engine.variadic[name]; !shadowed {
			engine.builtins[name] = helper
		}
	}

	return engine
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data interface{}) (string, error) {
	// Get or compile template
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	// Execute the template
	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	// Check cache first (read lock)
	e.mu.RLock()
	if tmpl, ok := e.cache[templateStr]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	// Compile the template (write lock)
	e.mu.Lock()
	defer e.mu.Unlock()

	// Check again in case another goroutine compiled it
	if tmpl, ok := e.cache[templateStr]; ok {
		return tmpl, nil
	}

	tmpl, err := e.compile(templateStr)
	if err != nil {
		return nil, err
	}

	// Cache the template
	e.cache[templateStr] = tmpl

	return tmpl, nil
}

// compile parses a template, binds its variadic helper calls and registers
// the helpers on the template
func (e *Engine) compile(templateStr string) (*raymond.Template, error) {
	program, err := parser.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	source, sites := rewriteCallSites(templateStr, collectCallSites(program, e.variadic))

	tmpl, err := raymond.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	tmpl.RegisterHelpers(e.builtins)

	bound := make(map[string]bool, len(sites))
	for _, site := range sites {
		alias := site.alias()
		if bound[alias] {
			continue
		}
		tmpl.RegisterHelper(alias, fixedArity(e.variadic[site.name], site.arity))
		bound[alias] = true
	}

	e.logger.Debug("compiled template",
		zap.Int("call_sites", len(sites)),
		zap.Int("bound_helpers", len(bound)),
	)

	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := parser.Parse(templateStr)
	return err
}

// ClearCache clears the compiled template cache
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]*raymond.Template)
}

// CacheSize returns the number of compiled templates held by the engine
func (e *Engine) CacheSize() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.cache)
}

// HelperNames returns the variadic helpers bound by the engine
func (e *Engine) HelperNames() []string {
	names := make([]string, 0, len(e.variadic))
	for name := range e.variadic {
		names = append(names, name)
	}
	return names
}

// builtinHelpers returns the fixed-arity helpers registered on every template
func builtinHelpers() map[string]interface{} {
	return map[string]interface{}{
		// uppercase helper
		"uppercase": func(str string) string {
			return strings.ToUpper(str)
		},

		// lowercase helper
		"lowercase": func(str string) string {
			return strings.ToLower(str)
		},

		// trim helper
		"trim": func(str string) string {
			return strings.TrimSpace(str)
		},

		// default helper - return default value if first arg is empty
		"default": func(value interface{}, defaultValue interface{}) interface{} {
			if value == nil || value == "" {
				return defaultValue
			}
			return value
		},

		// eq helper - equality comparison
		"eq": func(a, b interface{}) bool {
			return a == b
		},

		// ne helper - inequality comparison
		"ne": func(a, b interface{}) bool {
			return a != b
		},

		// gt helper - greater than (for numbers)
		"gt": func(a, b interface{}) bool {
			return cast.ToFloat64(a) > cast.ToFloat64(b)
		},

		// lt helper - less than (for numbers)
		"lt": func(a, b interface{}) bool {
			return cast.ToFloat64(a) < cast.ToFloat64(b)
		},

		// contains helper - check if string contains substring
		"contains": func(str, substr string) bool {
			return strings.Contains(str, substr)
		},

		// len helper - get length of array/string/map
		"len": func(value interface{}) int {
			if items, ok := helpers.Classify(value); ok {
				return len(items)
			}
			switch v := value.(type) {
			case string:
				return len(v)
			case map[string]interface{}:
				return len(v)
			default:
				return 0
			}
		},
	}
}
