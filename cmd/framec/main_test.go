package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Hackzzila/FrameUi/internal/diag"
)

const doc = `<Frame>
  <Head>
    <Style type="css">
      #main { height: 20px; background-color: blue }
      .item { height: 5px }
    </Style>
  </Head>
  <Body>
    <Unstyled id="main">
      <Unstyled class="item"/>
      <Unstyled class="item"/>
    </Unstyled>
  </Body>
</Frame>
`

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeDoc(t *testing.T, content string) (dir, path string) {
	t.Helper()
	dir = t.TempDir()
	path = filepath.Join(dir, "app.frame")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return dir, path
}

func TestCompileAndLayout(t *testing.T) {
	dir, path := writeDoc(t, doc)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "framec.yaml"), []byte("width: 320\nheight: 200\n"), 0o644))

	out, _, err := run(t, "compile", path)
	require.NoError(t, err)
	compiled := filepath.Join(dir, "app.fui")
	assert.Contains(t, out, compiled)
	data, err := os.ReadFile(compiled)
	require.NoError(t, err)
	assert.Equal(t, "FUiS", string(data[:4]))

	out, _, err = run(t, "layout", compiled)
	require.NoError(t, err)
	assert.Contains(t, out, "Root (0, 0) 320x200")
	assert.Contains(t, out, "Unstyled#main (0, 0) 320x20 rgba(0, 0, 255, 255)")
	assert.Contains(t, out, "Unstyled.item (0, 5) 320x5")
	assert.Contains(t, out, "4 elements, 2 rules")

	out, _, err = run(t, "layout", path, "--width", "100", "--rtl")
	require.NoError(t, err)
	assert.Contains(t, out, "Root (0, 0) 100x200")
}

func TestQuery(t *testing.T) {
	_, path := writeDoc(t, doc)

	out, _, err := run(t, "query", path, ".item", "--all")
	require.NoError(t, err)
	assert.Equal(t, 2, bytes.Count([]byte(out), []byte("Unstyled.item")))

	out, _, err = run(t, "query", path, "#main > .item")
	require.NoError(t, err)
	assert.Contains(t, out, "2\tUnstyled.item")

	_, _, err = run(t, "query", path, ".missing")
	assert.ErrorContains(t, err, "no element matches")
}

func TestCompileReportsDiagnostics(t *testing.T) {
	_, path := writeDoc(t, `<Frame>
  <Head><Style type="css">.a { width: 10 }</Style></Head>
  <Body><Unstyled foo="bar"/></Body>
</Frame>`)

	_, errOut, err := run(t, "compile", path)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, errOut, "error: CSS parse error")
	assert.Contains(t, errOut, "app.frame:2:")
	assert.Contains(t, errOut, "info: invalid attribute")

	_, errOut, _ = run(t, "compile", path, "--diagnostics", "error")
	assert.NotContains(t, errOut, "info:")
}

func TestRenderDiagnostic(t *testing.T) {
	c := diag.NewCollector(nil)
	f := c.AddFile("a.css", "a {\n\twidth: 10em }\n")
	got := renderDiagnostic(c, diag.Diagnostic{
		Kind:     diag.CSSParseError,
		Level:    diag.Error,
		Location: diag.At(f, 12),
		Detail:   `unsupported unit: "10em"`,
	})
	assert.Contains(t, got, "a.css:2:9")
	assert.Contains(t, got, "2 | \twidth: 10em }")
	assert.Contains(t, got, "  | \t       ^")

	got = renderDiagnostic(c, diag.Diagnostic{Kind: diag.IOError, Level: diag.Warn, Detail: "gone"})
	assert.Equal(t, "warning: I/O error: gone", got)
}

func TestWatchLoopDebounces(t *testing.T) {
	dir := t.TempDir()
	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Add(dir))

	ctx, cancel := context.WithCancel(context.Background())
	builds := make(chan []string, 4)
	done := make(chan struct{})
	go func() {
		watchLoop(ctx, w, 50*time.Millisecond, zap.NewNop(), func(changed []string) { builds <- changed })
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.css"), []byte("a {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.scss"), []byte("b {}"), 0o644))

	select {
	case changed := <-builds:
		for _, name := range changed {
			assert.True(t, isStyleOrMarkup(name), name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no rebuild")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("watch loop did not stop")
	}
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "ui/app.fui", defaultOutput("ui/app.frame"))
	assert.Equal(t, "app.fui", defaultOutput("app"))
}
