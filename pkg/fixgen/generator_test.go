package fixgen

import (
	"context"
	"testing"

	"github.com/codeready-toolchain/healer/pkg/runmodel"
	"github.com/stretchr/testify/require"
)

// cannedModel is the test LanguageModel binding named in spec.md §9: it
// returns fixed text regardless of input, optionally failing N times first.
type cannedModel struct {
	responses map[string]string // model -> response text
	errs      map[string][]error
	calls     map[string]int
}

func (c *cannedModel) Complete(ctx context.Context, model string, messages []Message) (string, error) {
	c.calls[model]++
	if errs, ok := c.errs[model]; ok {
		idx := c.calls[model] - 1
		if idx < len(errs) {
			return "", errs[idx]
		}
	}
	return c.responses[model], nil
}

func newCannedModel() *cannedModel {
	return &cannedModel{
		responses: map[string]string{},
		errs:      map[string][]error{},
		calls:     map[string]int{},
	}
}

func TestGenerateOneShotFix(t *testing.T) {
	dir := t.TempDir()
	model := newCannedModel()
	model.responses["gpt-main"] = `here is the fix: [{"file":"src/a.py","line":1,"kind":"SYNTAX","description":"missing colon","originalCode":"def f()","fixedCode":"def f():","commitMessage":"fix missing colon"}] thanks`

	gen := NewGenerator(model, []string{"gpt-main"}, nil)
	proposals, err := gen.Generate(context.Background(), "SyntaxError: invalid syntax", dir, []runmodel.ErrorRecord{
		{Kind: runmodel.ErrorKindSyntax, File: "src/a.py", Line: 1, RawMessage: "SyntaxError: invalid syntax"},
	})
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.Equal(t, "def f()", proposals[0].OriginalCode)
	require.Equal(t, "def f():", proposals[0].FixedCode)
}

func TestGenerateDegradedModeOnNonJSON(t *testing.T) {
	dir := t.TempDir()
	model := newCannedModel()
	model.responses["gpt-main"] = "I could not determine a fix for this error."

	gen := NewGenerator(model, []string{"gpt-main"}, nil)
	proposals, err := gen.Generate(context.Background(), "log", dir, []runmodel.ErrorRecord{
		{Kind: runmodel.ErrorKindLogic, File: "x.py", Line: 5, RawMessage: "AssertionError"},
	})
	require.NoError(t, err)
	require.Len(t, proposals, 1)
	require.False(t, proposals[0].Applicable())
}

func TestGenerateNoErrorsReturnsEmpty(t *testing.T) {
	gen := NewGenerator(newCannedModel(), []string{"gpt-main"}, nil)
	proposals, err := gen.Generate(context.Background(), "", t.TempDir(), nil)
	require.NoError(t, err)
	require.Empty(t, proposals)
}

func TestIsRateLimited(t *testing.T) {
	require.True(t, IsRateLimited(&RateLimitError{Err: context.DeadlineExceeded}))
	require.True(t, IsRateLimited(errorWithMessage("HTTP 429 Too Many Requests")))
	require.True(t, IsRateLimited(errorWithMessage("quota exceeded")))
	require.False(t, IsRateLimited(errorWithMessage("connection refused")))
	require.False(t, IsRateLimited(nil))
}

type errorWithMessage string

func (e errorWithMessage) Error() string { return string(e) }

func TestFirstJSONArrayToleratesSurroundingText(t *testing.T) {
	text := `Sure, here you go:
[{"file":"a.go","line":1,"kind":"SYNTAX","description":"d","originalCode":"o","fixedCode":"f","commitMessage":"m"}]
Let me know if you need anything else.`
	raws, ok := firstJSONArray(text)
	require.True(t, ok)
	require.Len(t, raws, 1)
	require.Equal(t, "a.go", raws[0].File)
}

func TestFirstJSONArrayReturnsFalseWhenAbsent(t *testing.T) {
	_, ok := firstJSONArray("no arrays to be found here")
	require.False(t, ok)
}
