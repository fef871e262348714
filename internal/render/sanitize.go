package render

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	outputPolicyOnce sync.Once
	outputPolicy     *bluemonday.Policy
)

// outputSanitizer allows user-generated-content markup plus class
// attributes, which row-banding templates rely on
func outputSanitizer() *bluemonday.Policy {
	outputPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowStyling()
		outputPolicy = policy
	})
	return outputPolicy
}

// SanitizeOutput applies the output policy used for Request.Sanitize
func SanitizeOutput(output string) string {
	if output == "" {
		return ""
	}
	return outputSanitizer().Sanitize(output)
}
