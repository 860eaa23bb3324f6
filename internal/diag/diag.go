// Package diag defines compiler diagnostics and the Reporter sink that
// collects them.
package diag

import (
	"errors"
	"fmt"
)

// ErrCompileAborted is returned by Checkpoint when an Error or Bug level
// diagnostic was recorded
var ErrCompileAborted = errors.New("compilation aborted due to previous errors")

// Level is the severity of a diagnostic
type Level uint8

const (
	Bug Level = iota
	Error
	Warn
	Info
)

func (l Level) String() string {
	switch l {
	case Bug:
		return "bug"
	case Error:
		return "error"
	case Warn:
		return "warning"
	case Info:
		return "info"
	}
	return fmt.Sprintf("level(%d)", uint8(l))
}

// Fails reports whether diagnostics of this level fail the checkpoint
func (l Level) Fails() bool {
	return l <= Error
}

// Kind classifies a diagnostic
type Kind uint8

const (
	InvalidElement Kind = iota + 1
	InvalidContext
	InvalidAttribute
	ExpectedSelfClosing
	ExpectedClosingTag
	UnexpectedText
	UnexpectedCData
	UnexpectedDecl
	UnexpectedPI
	UnexpectedDocType
	UnexpectedEOF
	IOError
	NetworkError
	URLParseError
	MarkupError
	CSSParseError
	PreprocessorError
	MissingNode
)

var kindNames = [...]string{
	InvalidElement:      "invalid element",
	InvalidContext:      "element not allowed here",
	InvalidAttribute:    "invalid attribute",
	ExpectedSelfClosing: "expected self-closing tag",
	ExpectedClosingTag:  "expected closing tag",
	UnexpectedText:      "unexpected text",
	UnexpectedCData:     "unexpected CDATA",
	UnexpectedDecl:      "unexpected XML declaration",
	UnexpectedPI:        "unexpected processing instruction",
	UnexpectedDocType:   "unexpected DOCTYPE",
	UnexpectedEOF:       "unexpected end of file",
	IOError:             "I/O error",
	NetworkError:        "network error",
	URLParseError:       "invalid URL",
	MarkupError:         "markup error",
	CSSParseError:       "CSS parse error",
	PreprocessorError:   "preprocessor error",
	MissingNode:         "missing node",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) && kindNames[k] != "" {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// FileID identifies a source file registered with a Reporter
type FileID int

// Location is a byte offset inside a registered file
type Location struct {
	File   FileID
	Offset int
}

// Diagnostic is one compiler message. Detail carries the kind-specific
// payload: the element or attribute name, the offending CSS token, the
// preprocessor or I/O error message.
type Diagnostic struct {
	Kind     Kind
	Level    Level
	Location *Location
	Detail   string
}

// At returns a Location for use in a Diagnostic literal
func At(file FileID, offset int) *Location {
	return &Location{File: file, Offset: offset}
}

func (d Diagnostic) String() string {
	if d.Detail == "" {
		return fmt.Sprintf("%s: %s", d.Level, d.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", d.Level, d.Kind, d.Detail)
}

// Reporter is the sink the compiler writes diagnostics to. It owns the
// registered source files and translates between positions and offsets.
type Reporter interface {
	// AddFile registers a source file and returns its ID
	AddFile(name, contents string) FileID
	// FileByName finds a file registered under name
	FileByName(name string) (FileID, bool)
	AddDiagnostic(d Diagnostic)
	// Position converts a zero-based line and column into a byte offset
	Position(file FileID, line, column int) int
	// Line returns the zero-based line containing offset
	Line(file FileID, offset int) int
	// Checkpoint fails with ErrCompileAborted if any Error or Bug
	// diagnostic was recorded
	Checkpoint() error
}
