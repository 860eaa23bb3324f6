package diag

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

type file struct {
	name     string
	contents string
	lines    []int // offset of the first byte of every line
}

func newFile(name, contents string) file {
	lines := []int{0}
	for i := 0; i < len(contents); i++ {
		if contents[i] == '\n' {
			lines = append(lines, i+1)
		}
	}
	return file{name: name, contents: contents, lines: lines}
}

// Collector is an in-memory Reporter. Every diagnostic is also logged.
type Collector struct {
	log   *zap.Logger
	files []file
	diags []Diagnostic
}

// NewCollector creates an empty collector logging to log (nil for none)
func NewCollector(log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{log: log}
}

// AddFile registers a file. Names are not deduplicated here; use FileByName
// first when a file may already be known.
func (c *Collector) AddFile(name, contents string) FileID {
	c.files = append(c.files, newFile(name, contents))
	c.log.Debug("registered source file", zap.String("file", name), zap.Int("bytes", len(contents)))
	return FileID(len(c.files) - 1)
}

// FileByName finds a registered file by the name it was added with
func (c *Collector) FileByName(name string) (FileID, bool) {
	for i, f := range c.files {
		if f.name == name {
			return FileID(i), true
		}
	}
	return 0, false
}

// File returns the name and contents of a registered file
func (c *Collector) File(id FileID) (name, contents string) {
	f := c.files[id]
	return f.name, f.contents
}

// AddDiagnostic records d and logs it
func (c *Collector) AddDiagnostic(d Diagnostic) {
	c.diags = append(c.diags, d)

	fields := []zap.Field{zap.Stringer("kind", d.Kind)}
	if d.Detail != "" {
		fields = append(fields, zap.String("detail", d.Detail))
	}
	if d.Location != nil && c.valid(d.Location.File) {
		line, col := c.LineColumn(d.Location.File, d.Location.Offset)
		fields = append(fields,
			zap.String("file", c.files[d.Location.File].name),
			zap.Int("line", line+1),
			zap.Int("column", col+1))
	}
	switch d.Level {
	case Bug, Error:
		c.log.Error("diagnostic", fields...)
	case Warn:
		c.log.Warn("diagnostic", fields...)
	default:
		c.log.Info("diagnostic", fields...)
	}
}

// Diagnostics returns everything recorded so far, in order
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}

// Failed reports whether an Error or Bug diagnostic was recorded
func (c *Collector) Failed() bool {
	for _, d := range c.diags {
		if d.Level.Fails() {
			return true
		}
	}
	return false
}

// Checkpoint returns ErrCompileAborted once anything failing was recorded
func (c *Collector) Checkpoint() error {
	if c.Failed() {
		return ErrCompileAborted
	}
	return nil
}

func (c *Collector) valid(id FileID) bool {
	return id >= 0 && int(id) < len(c.files)
}

// Position clamps to the end of the line and of the file
func (c *Collector) Position(id FileID, line, column int) int {
	f := c.files[id]
	if line < 0 {
		return 0
	}
	if line >= len(f.lines) {
		return len(f.contents)
	}
	end := len(f.contents)
	if line+1 < len(f.lines) {
		end = f.lines[line+1] - 1
	}
	return min(f.lines[line]+max(column, 0), end)
}

// Line returns the zero-based line holding offset
func (c *Collector) Line(id FileID, offset int) int {
	f := c.files[id]
	return sort.Search(len(f.lines), func(i int) bool { return f.lines[i] > offset }) - 1
}

// LineColumn returns the zero-based line and byte column of offset
func (c *Collector) LineColumn(id FileID, offset int) (line, column int) {
	line = max(c.Line(id, offset), 0)
	return line, offset - c.files[id].lines[line]
}

// LineText returns the text of a zero-based line without its newline
func (c *Collector) LineText(id FileID, line int) string {
	f := c.files[id]
	if line < 0 || line >= len(f.lines) {
		return ""
	}
	end := len(f.contents)
	if line+1 < len(f.lines) {
		end = f.lines[line+1]
	}
	return strings.TrimRight(f.contents[f.lines[line]:end], "\r\n")
}

var _ Reporter = (*Collector)(nil)
