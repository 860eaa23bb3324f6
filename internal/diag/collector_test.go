package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCheckpointGating(t *testing.T) {
	c := NewCollector(nil)
	c.AddDiagnostic(Diagnostic{Kind: InvalidAttribute, Level: Info})
	c.AddDiagnostic(Diagnostic{Kind: ExpectedSelfClosing, Level: Warn})
	require.NoError(t, c.Checkpoint())

	c.AddDiagnostic(Diagnostic{Kind: UnexpectedText, Level: Error})
	assert.ErrorIs(t, c.Checkpoint(), ErrCompileAborted)

	c = NewCollector(nil)
	c.AddDiagnostic(Diagnostic{Kind: MissingNode, Level: Bug})
	assert.ErrorIs(t, c.Checkpoint(), ErrCompileAborted)
}

func TestPositionAndLine(t *testing.T) {
	c := NewCollector(nil)
	id := c.AddFile("a.frame", "ab\ncde\n\nf")

	assert.Equal(t, 0, c.Position(id, 0, 0))
	assert.Equal(t, 4, c.Position(id, 1, 1))
	assert.Equal(t, 6, c.Position(id, 1, 99), "clamped to end of line")
	assert.Equal(t, 7, c.Position(id, 2, 0))
	assert.Equal(t, 8, c.Position(id, 3, 0))
	assert.Equal(t, 9, c.Position(id, 10, 0))

	assert.Equal(t, 0, c.Line(id, 2))
	assert.Equal(t, 1, c.Line(id, 3))
	assert.Equal(t, 2, c.Line(id, 7))
	assert.Equal(t, 3, c.Line(id, 8))

	line, col := c.LineColumn(id, 5)
	assert.Equal(t, 1, line)
	assert.Equal(t, 2, col)
	assert.Equal(t, "cde", c.LineText(id, 1))
	assert.Equal(t, "", c.LineText(id, 2))
}

func TestFileByName(t *testing.T) {
	c := NewCollector(nil)
	a := c.AddFile("a.scss", "x")
	b := c.AddFile("b.scss", "y")
	got, ok := c.FileByName("b.scss")
	require.True(t, ok)
	assert.Equal(t, b, got)
	got, _ = c.FileByName("a.scss")
	assert.Equal(t, a, got)
	_, ok = c.FileByName("c.scss")
	assert.False(t, ok)

	name, contents := c.File(b)
	assert.Equal(t, "b.scss", name)
	assert.Equal(t, "y", contents)
}

func TestDiagnosticsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := NewCollector(zap.New(core))
	id := c.AddFile("doc.frame", "<Frame>\n  oops\n</Frame>")
	c.AddDiagnostic(Diagnostic{Kind: UnexpectedText, Level: Error, Location: At(id, 10), Detail: "oops"})

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "doc.frame", fields["file"])
	assert.EqualValues(t, 2, fields["line"])
	assert.EqualValues(t, 3, fields["column"])
	assert.Equal(t, "oops", fields["detail"])
}

func TestKindAndLevelStrings(t *testing.T) {
	assert.Equal(t, "CSS parse error", CSSParseError.String())
	assert.Equal(t, "warning", Warn.String())
	assert.Equal(t, "error: invalid element: Button", Diagnostic{Kind: InvalidElement, Level: Error, Detail: "Button"}.String())
}
