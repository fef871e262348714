package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/aescanero/dago-hbs-helpers/internal/eval/cel"
	"github.com/aescanero/dago-hbs-helpers/internal/eval/template"
	"go.uber.org/zap"
)

const (
	// PathVariant means a variant condition matched
	PathVariant = "variant"

	// PathFallback means the request template was rendered
	PathFallback = "fallback"
)

var (
	// ErrInvalidRequest wraps every Validate failure returned by Render
	ErrInvalidRequest = errors.New("invalid request")

	// ErrNoTemplate is returned when no variant matched and there is no fallback template
	ErrNoTemplate = errors.New("no variant matched and no fallback template")
)

// Request describes a render: the fallback template, the conditional
// variants tried before it and the data both are rendered with
type Request struct {
	Template string                 `json:"template"`
	Variants []Variant              `json:"variants,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`

	// Sanitize strips markup outside a user-generated-content policy from
	// the rendered output
	Sanitize bool `json:"sanitize,omitempty"`
}

// Variant is a template rendered when its CEL condition holds
type Variant struct {
	Condition string `json:"condition"`
	Template  string `json:"template"`
}

// Result represents the outcome of a render
type Result struct {
	Output    string `json:"output"`
	Variant   int    `json:"variant"` // -1 for the fallback template
	PathTaken string `json:"path_taken"`
}

// Renderer selects and renders templates
type Renderer struct {
	celEvaluator   *cel.Evaluator
	templateEngine *template.Engine
	logger         *zap.Logger
}

// NewRenderer creates a new renderer
func NewRenderer(engine *template.Engine, logger *zap.Logger) *Renderer {
	if engine == nil {
		engine = template.NewEngine(template.WithLogger(logger))
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Renderer{
		celEvaluator:   cel.NewEvaluator(),
		templateEngine: engine,
		logger:         logger,
	}
}

// Render picks the template for the request and renders it with the request data
func (r *Renderer) Render(ctx context.Context, req *Request) (*Result, error) {
	if err := r.Validate(req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	idx, source := r.selectTemplate(ctx, req)
	if source == "" {
		return nil, ErrNoTemplate
	}

	path := PathVariant
	if idx < 0 {
		path = PathFallback
	}

	output, err := r.templateEngine.Render(source, req.Data)
	if err != nil {
		r.logger.Error("render failed",
			zap.Int("variant", idx),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if req.Sanitize {
		output = SanitizeOutput(output)
	}

	r.logger.Debug("rendered template",
		zap.Int("variant", idx),
		zap.String("path", path),
		zap.Int("output_bytes", len(output)),
		zap.Bool("sanitized", req.Sanitize),
	)

	return &Result{
		Output:    output,
		Variant:   idx,
		PathTaken: path,
	}, nil
}

// Validate validates the request
func (r *Renderer) Validate(req *Request) error {
	if req == nil {
		return fmt.Errorf("request is nil")
	}

	if req.Template == "" && len(req.Variants) == 0 {
		return fmt.Errorf("template or variants are required")
	}

	if req.Template != "" {
		if err := r.templateEngine.ValidateTemplate(req.Template); err != nil {
			return fmt.Errorf("template: %w", err)
		}
	}

	for i, variant := range req.Variants {
		if variant.Condition == "" {
			return fmt.Errorf("variant %d: condition is required", i)
		}
		if variant.Template == "" {
			return fmt.Errorf("variant %d: template is required", i)
		}
		if err := r.celEvaluator.ValidateExpression(variant.Condition); err != nil {
			return fmt.Errorf("variant %d: condition: %w", i, err)
		}
		if err := r.templateEngine.ValidateTemplate(variant.Template); err != nil {
			return fmt.Errorf("variant %d: template: %w", i, err)
		}
	}

	return nil
}
