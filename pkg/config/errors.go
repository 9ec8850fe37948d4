package config

import "fmt"

// ValidationError reports a caller-facing configuration defect, collecting
// every violation found rather than stopping at the first.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %d issue(s)", len(e.Messages))
}
