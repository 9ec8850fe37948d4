// Package patcher applies FixProposals to a working tree with exact-match
// then line-anchor fallback (spec.md §4.4).
package patcher

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
)

const (
	reasonFileNotFound       = "File not found"
	reasonOriginalNotFound   = "Original code not found"
)

// Apply attempts every proposal against workingTreePath in input order and
// returns the corresponding AppliedFixes. Ordering is preserved: later
// proposals targeting the same file see the prior proposal's write, so the
// last write to a given line wins.
func Apply(workingTreePath string, proposals []runmodel.FixProposal) []runmodel.AppliedFix {
	applied := make([]runmodel.AppliedFix, 0, len(proposals))
	for _, p := range proposals {
		applied = append(applied, applyOne(workingTreePath, p))
	}
	return applied
}

func applyOne(workingTreePath string, p runmodel.FixProposal) runmodel.AppliedFix {
	if !p.Applicable() {
		return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusSkipped}
	}

	path := filepath.Join(workingTreePath, p.File)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFailed, Reason: reasonFileNotFound}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFailed, Reason: reasonFileNotFound}
	}
	content := string(raw)

	if idx := strings.Index(content, p.OriginalCode); idx >= 0 {
		updated := content[:idx] + p.FixedCode + content[idx+len(p.OriginalCode):]
		if err := writeAtomic(path, updated); err != nil {
			return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFailed, Reason: err.Error()}
		}
		return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFixed}
	}

	if p.Line > 0 {
		lines := strings.Split(content, "\n")
		idx := p.Line - 1
		if idx >= 0 && idx < len(lines) {
			lines[idx] = p.FixedCode
			updated := strings.Join(lines, "\n")
			if err := writeAtomic(path, updated); err != nil {
				return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFailed, Reason: err.Error()}
			}
			return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFixed}
		}
	}

	return runmodel.AppliedFix{FixProposal: p, Status: runmodel.FixStatusFailed, Reason: reasonOriginalNotFound}
}

// writeAtomic writes content to path by writing a sibling temp file then
// renaming over the target, so a crash never leaves a half-written file.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".patch-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	info, statErr := os.Stat(path)
	if statErr == nil {
		os.Chmod(tmpName, info.Mode())
	}
	return os.Rename(tmpName, path)
}
