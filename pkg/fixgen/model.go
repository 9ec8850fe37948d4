// Package fixgen assembles source context for classified errors and
// obtains JSON patch proposals from a language model, with model and
// attempt fallback (spec.md §4.3).
package fixgen

import "context"

// Message is one turn of a conversation sent to a LanguageModel.
type Message struct {
	Role    string
	Content string
}

// LanguageModel is the capability the Fix Generator depends on: a single
// completion operation. The production binding (HTTPLanguageModel) makes a
// raw net/http call to a hosted model; tests supply a binding that returns canned JSON (spec.md §9
// Design Notes).
type LanguageModel interface {
	// Complete returns the model's full text response for the given
	// identifier. A rate-limit condition must be reported as an error
	// satisfying IsRateLimited.
	Complete(ctx context.Context, model string, messages []Message) (string, error)
}
