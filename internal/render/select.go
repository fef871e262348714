package render

import (
	"context"

	"go.uber.org/zap"
)

// selectTemplate returns the index and source of the first variant whose
// condition holds, or -1 and the request template
func (r *Renderer) selectTemplate(ctx context.Context, req *Request) (int, string) {
	for i, variant := range req.Variants {
		r.logger.Debug("evaluating variant",
			zap.Int("variant", i),
			zap.String("condition", variant.Condition),
		)

		matched, err := r.celEvaluator.EvaluateBool(ctx, variant.Condition, req.Data)
		if err != nil {
			r.logger.Warn("variant condition error",
				zap.Int("variant", i),
				zap.String("condition", variant.Condition),
				zap.Error(err),
			)
			// Continue to next variant on error
			continue
		}

		if matched {
			r.logger.Debug("variant matched",
				zap.Int("variant", i),
				zap.String("condition", variant.Condition),
			)
			return i, variant.Template
		}
	}

	r.logger.Debug("no variant matched, using fallback template")
	return -1, req.Template
}
