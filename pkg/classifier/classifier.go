// Package classifier turns raw combined test-run output into structured
// ErrorRecords. Pure function, no I/O.
package classifier

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

type rule struct {
	kind    runmodel.ErrorKind
	pattern *regexp.Regexp
}

// rules are walked in declaration order; first match wins (spec.md §4.2).
var rules = []rule{
	{runmodel.ErrorKindSyntax, regexp.MustCompile(`(?i)syntaxerror|unexpected token|invalid syntax|eol while scanning`)},
	{runmodel.ErrorKindIndentation, regexp.MustCompile(`(?i)indentationerror|unexpected indent|expected an indented block`)},
	{runmodel.ErrorKindType, regexp.MustCompile(`(?i)typeerror|type .* mismatch|cannot read propert`)},
	{runmodel.ErrorKindImport, regexp.MustCompile(`(?i)importerror|modulenotfounderror|cannot find module|no module named`)},
	{runmodel.ErrorKindLogic, regexp.MustCompile(`(?i)assertionerror|expected .* to (equal|be|match)|assert`)},
	{runmodel.ErrorKindLinting, regexp.MustCompile(`(?i)eslint|lint|prettier|warning .* rule`)},
	{runmodel.ErrorKindRuntime, regexp.MustCompile(`(?i)referenceerror|nameerror|is not defined`)},
}

// fallbackErrorWords discards lines that match no rule and don't even look
// like an error report.
var fallbackErrorWords = regexp.MustCompile(`(?i)error|fail`)

// Location extraction patterns, tried in order (spec.md §4.2).
var (
	pythonFrame  = regexp.MustCompile(`File "([^"]+)", line (\d+)`)
	colonLineCol = regexp.MustCompile(`([^\s:]+\.[A-Za-z0-9]+):(\d+)(?::\d+)?`)
)

// Classify parses rawLog into a deduplicated, ordered list of ErrorRecords.
// Total: returns a finite list for every input, including the empty string.
func Classify(rawLog string) []runmodel.ErrorRecord {
	seen := make(map[string]struct{})
	var records []runmodel.ErrorRecord
	var pendingFile string
	var pendingLine int

	for _, line := range strings.Split(rawLog, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		kind := matchKind(line)
		file, ln := extractLocation(line)
		if kind == runmodel.ErrorKindUnknown && !fallbackErrorWords.MatchString(line) {
			// A bare frame line (e.g. Python's `File "x.py", line 3`) locates
			// the error reported on a following line.
			if file != "" {
				pendingFile, pendingLine = file, ln
			}
			continue
		}
		if file == "" {
			file, ln = pendingFile, pendingLine
		}
		pendingFile, pendingLine = "", 0

		key := file + "|" + strconv.Itoa(ln) + "|" + string(kind)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		records = append(records, runmodel.ErrorRecord{
			Kind:       kind,
			File:       file,
			Line:       ln,
			RawMessage: line,
		})
	}
	return records
}

func matchKind(line string) runmodel.ErrorKind {
	for _, r := range rules {
		if r.pattern.MatchString(line) {
			return r.kind
		}
	}
	return runmodel.ErrorKindUnknown
}

func extractLocation(line string) (file string, ln int) {
	if m := pythonFrame.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return m[1], n
	}
	if m := colonLineCol.FindStringSubmatch(line); m != nil {
		n, _ := strconv.Atoi(m[2])
		return m[1], n
	}
	return "", 0
}
