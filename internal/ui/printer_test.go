package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrinter_PlainStreamHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Success("installed")
	p.Error("failed")
	p.Warning("careful")
	p.Info("note")
	p.Comment("aside")

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Equal(t, "✓ installed\n✗ failed\n! careful\nnote\naside\n", out)
}

func TestPrinter_BlockIndentsWithoutWrapping(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)
	long := `"command": "` + strings.Repeat("x", 120) + `"`

	p.Block("{\n"+long+"\n}", 4)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "    "), "line %q not indented", line)
	}
	assert.Equal(t, "    "+long, lines[1])
}

func TestPrinter_TextWraps(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Text(strings.Repeat("word ", 40))

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\n"), "\n") {
		assert.LessOrEqual(t, len(line), Width)
	}
}

func TestPrinter_List(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.List([]string{"/a/claude_desktop_config.json", "/b/claude_desktop_config.json"})

	assert.Equal(t, "  - /a/claude_desktop_config.json\n  - /b/claude_desktop_config.json\n", buf.String())
}

func TestPrinter_Markdown(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Markdown("## Next steps\n\n1. Restart the client completely\n2. Open the tools menu\n")

	out := buf.String()
	assert.Contains(t, out, "Next steps")
	assert.Contains(t, out, "Restart the client completely")
	assert.NotContains(t, out, "\x1b[")
}

func TestDetectMarkdownStyle_NonTerminal(t *testing.T) {
	assert.Equal(t, "notty", detectMarkdownStyle(&bytes.Buffer{}, time.Millisecond))
}
