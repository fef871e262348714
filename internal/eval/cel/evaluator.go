package cel

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

// DataVar is the variable holding the render data in expressions
const DataVar = "data"

const (
	// costLimit caps the work a single condition may do
	costLimit = 100000

	// interruptCheckFrequency is how many comprehension iterations run
	// between context cancellation checks
	interruptCheckFrequency = 100
)

// Evaluator compiles and evaluates variant conditions. Compiled programs are
// cached by expression text.
type Evaluator struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEvaluator creates a new CEL evaluator
func NewEvaluator() *Evaluator {
	env, err := cel.NewEnv(
		cel.Variable(DataVar, cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		panic(fmt.Sprintf("failed to create CEL environment: %v", err))
	}

	return &Evaluator{
		env:      env,
		programs: make(map[string]cel.Program),
	}
}

// Evaluate runs expression against the render data and returns the native result
func (e *Evaluator) Evaluate(ctx context.Context, expression string, data map[string]interface{}) (interface{}, error) {
	program, err := e.program(expression)
	if err != nil {
		return nil, err
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	out, _, err := program.ContextEval(ctx, map[string]interface{}{DataVar: data})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}
	return out.Value(), nil
}

// EvaluateBool evaluates an expression that must yield a boolean
func (e *Evaluator) EvaluateBool(ctx context.Context, expression string, data map[string]interface{}) (bool, error) {
	result, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return false, err
	}

	matched, ok := result.(bool)
	if !ok {
		return false, fmt.Errorf("expression returned %T, not bool", result)
	}
	return matched, nil
}

// ValidateExpression type-checks an expression without evaluating it.
// Only boolean and dynamic results are accepted.
func (e *Evaluator) ValidateExpression(expression string) error {
	_, err := e.check(expression)
	return err
}

// ClearCache drops every compiled program
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.programs = make(map[string]cel.Program)
}

func (e *Evaluator) program(expression string) (cel.Program, error) {
	e.mu.RLock()
	program, ok := e.programs[expression]
	e.mu.RUnlock()
	if ok {
		return program, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.programs[expression]; ok {
		return program, nil
	}

	checked, err := e.check(expression)
	if err != nil {
		return nil, err
	}

	program, err = e.env.Program(checked,
		cel.CostLimit(costLimit),
		cel.InterruptCheckFrequency(interruptCheckFrequency),
	)
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	e.programs[expression] = program
	return program, nil
}

func (e *Evaluator) check(expression string) (*cel.Ast, error) {
	checked, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", issues.Err())
	}

	switch outputType := checked.OutputType().String(); outputType {
	case "bool", "dyn":
		return checked, nil
	default:
		return nil, fmt.Errorf("expression must return bool, got %s", outputType)
	}
}
