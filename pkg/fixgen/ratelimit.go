package fixgen

import "strings"

// RateLimitError wraps an underlying error known to indicate the model
// provider is throttling requests.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return e.Err.Error() }
func (e *RateLimitError) Unwrap() error { return e.Err }

// rateLimitMarkers are the literal substrings the spec names as
// rate-limit-indicating (spec.md §4.3): HTTP 429, "quota", "Too Many
// Requests". Matched case-insensitively against the error text, mirroring
// the string-matching style of the teacher's MCP error classifier.
var rateLimitMarkers = []string{
	"429",
	"quota",
	"too many requests",
}

// IsRateLimited reports whether err (or its message) indicates the caller
// should back off and retry, as opposed to a hard failure.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := err.(*RateLimitError); ok {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
