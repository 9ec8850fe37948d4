package fixgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

// contextRadius is how many lines of source are attached before and after
// the reported line (spec.md §4.3: "±5 lines of numbered source context").
const contextRadius = 5

// EnrichedError pairs an ErrorRecord with the numbered source context read
// from the working tree, if its location could be resolved.
type EnrichedError struct {
	runmodel.ErrorRecord
	Context string
}

// Enrich reads ±contextRadius lines of numbered source around each record's
// reported location from workingTreePath. Records with no resolvable file
// or line are passed through with an empty Context.
func Enrich(workingTreePath string, records []runmodel.ErrorRecord) []EnrichedError {
	enriched := make([]EnrichedError, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, EnrichedError{
			ErrorRecord: rec,
			Context:     readContext(workingTreePath, rec.File, rec.Line),
		})
	}
	return enriched
}

func readContext(workingTreePath, file string, line int) string {
	if file == "" || line <= 0 {
		return ""
	}
	raw, err := os.ReadFile(filepath.Join(workingTreePath, file))
	if err != nil {
		return ""
	}
	lines := strings.Split(string(raw), "\n")

	start := line - 1 - contextRadius
	if start < 0 {
		start = 0
	}
	end := line - 1 + contextRadius
	if end > len(lines)-1 {
		end = len(lines) - 1
	}

	var b strings.Builder
	for i := start; i <= end; i++ {
		fmt.Fprintf(&b, "%d: %s\n", i+1, lines[i])
	}
	return b.String()
}
