package tuitest

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponderAnswersQuerySplitAcrossReads(t *testing.T) {
	var out bytes.Buffer
	tr := newTerminalResponder(&out)

	tr.Process([]byte("hello \x1b]11"))
	assert.Zero(t, out.Len())
	tr.Process([]byte(";?\x07 and \x1b[6n"))

	assert.Equal(t, "\x1b]11;rgb:0000/0000/0000\x07\x1b[1;1R", out.String())
}

func TestParseFramesStripsEscapes(t *testing.T) {
	raw := []byte("\x1b[2J\x1b[H\x1b[1mPost\x1b[0m  0/4096  \r\n\x1b[2J\x1b[HHistory (1)\r\n\r\n")

	rec := &Recording{Frames: parseFrames(raw)}

	require.Len(t, rec.Frames, 2)
	assert.Equal(t, "Post  0/4096", rec.Frames[0].Plain)
	frame, ok := rec.FinalFrame()
	require.True(t, ok)
	assert.Equal(t, "History (1)", frame.Plain)
	assert.True(t, rec.Contains("0/4096"))
	assert.False(t, rec.Contains("missing"))
}

func TestPasteUsesBracketedMarkers(t *testing.T) {
	assert.Equal(t, []byte("\x1b[200~/tmp/a.png\x1b[201~"), Paste("/tmp/a.png"))
}
