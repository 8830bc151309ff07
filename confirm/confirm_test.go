package confirm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPromptYes(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("y\n"), &out)
	require.NoError(t, ask("n_cpu:   4"))
	require.Contains(t, out.String(), "n_cpu:   4")
	require.Contains(t, out.String(), "Proceeding")
}

func TestPrintApprovesAndShowsSummary(t *testing.T) {
	var out bytes.Buffer
	show := Print(&out)
	require.NoError(t, show("Setting 0:\n\t run_id 007447"))
	require.NoError(t, show(""))
	require.Equal(t, "Setting 0:\n\t run_id 007447\n", out.String())
}

func TestPromptNo(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("n\n"), &out)
	require.ErrorIs(t, ask(""), ErrAbort)
}

func TestPromptRepeatsOnInvalidInput(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("yes\nmaybe\ny\n"), &out)
	require.NoError(t, ask(""))
	require.Contains(t, out.String(), "yes was not a valid input")
	require.Contains(t, out.String(), "maybe was not a valid input")
}

func TestPromptEOFAborts(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("x"), &out)
	require.ErrorIs(t, ask(""), ErrAbort)
}

func TestPromptCallsAreIndependent(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("y\nn\n"), &out)
	require.NoError(t, ask("first"))
	require.ErrorIs(t, ask("second"), ErrAbort)
}

func TestPromptAnswerWithoutNewline(t *testing.T) {
	var out bytes.Buffer
	ask := Prompt(strings.NewReader("y"), &out)
	require.NoError(t, ask(""))
}
