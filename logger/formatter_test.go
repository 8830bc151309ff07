package logger

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type nilStringer struct{ v []string }

func (n *nilStringer) String() string {
	if n == nil {
		return "<nil>"
	}
	return strings.Join(n.v, ",")
}

func testFormatter() *textFormatter {
	c := DebugConfig()
	c.TextFormat.DisableTimestamp = true
	return &textFormatter{c.TextFormat, jsonFormatter{conf: c.JSONFormat}}
}

func TestFormatHeader(t *testing.T) {
	entry := logrus.WithFields(logrus.Fields{
		"ns":     "scanner",
		"scanID": "cs1mq8",
		"index":  3,
	})
	entry.Message = "Submitting 3"
	out, err := testFormatter().Format(entry)
	require.NoError(t, err)

	lines := strings.Split(string(out), "\n")
	require.Contains(t, lines[0], "scanner [cs1mq8]")
	require.Contains(t, lines[0], "Submitting 3")
	require.Contains(t, lines[1], "index")
	require.NotContains(t, string(out), "scanID")
}

func TestFormatMultiline(t *testing.T) {
	entry := logrus.WithFields(logrus.Fields{
		"ns":        "TEST",
		"nil value": (*nilStringer)(nil),
		"multi":     "a\nb",
	})
	entry.Message = "Setting 0:\n\t run_id a\n"
	out, err := testFormatter().Format(entry)
	require.NoError(t, err)

	s := string(out)
	pad := strings.Repeat(" ", keyWidth+1)
	require.Contains(t, s, "Setting 0:\n"+pad+"\t run_id a\n")
	require.Contains(t, s, "a\n"+pad+"b\n")
	require.Contains(t, s, "<nil>")
}

func TestFormatFallsBackToJSON(t *testing.T) {
	f := testFormatter()
	f.ForceColors = false
	l := logrus.New()
	l.SetOutput(io.Discard)
	entry := logrus.NewEntry(l).WithField("ns", "worker")
	entry.Message = "hi"
	out, err := f.Format(entry)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(out), "{"))
}
