// Package sass compiles Sass and SCSS stylesheets to CSS and maps positions
// in the generated CSS back to the original sources.
package sass

import "fmt"

// Input is one stylesheet to compile
type Input struct {
	Source   string
	Path     string // local path of the source, used to resolve imports; may be empty
	Indented bool   // indented (.sass) syntax
}

// Output is the compiled CSS and its source map (JSON, version 3)
type Output struct {
	CSS       string
	SourceMap []byte
}

// Error is a compile failure reported by the preprocessor. Line and Column
// are zero-based.
type Error struct {
	File    string
	Line    int
	Column  int
	Message string
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Message
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line+1, e.Column+1, e.Message)
}

// Bridge compiles Sass sources. Compile returns a *Error for problems in the
// stylesheet and a plain error when the preprocessor itself failed.
type Bridge interface {
	Compile(in Input) (*Output, error)
}
