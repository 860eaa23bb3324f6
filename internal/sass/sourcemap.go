package sass

import (
	"fmt"
	"math"

	"github.com/go-sourcemap/sourcemap"
)

// Position is a zero-based location in an original source
type Position struct {
	Source string
	Line   int
	Column int
}

// Translator maps positions in generated CSS back to the sources it was
// compiled from
type Translator struct {
	consumer *sourcemap.Consumer
}

// NewTranslator parses a version 3 source map
func NewTranslator(sourceMap []byte) (*Translator, error) {
	c, err := sourcemap.Parse("", sourceMap)
	if err != nil {
		return nil, fmt.Errorf("parsing source map: %w", err)
	}
	return &Translator{consumer: c}, nil
}

// Original returns the source position of the closest mapping at or before
// line:column of the generated CSS (both zero-based)
func (t *Translator) Original(line, column int) (Position, bool) {
	// past the last mapped line the consumer finds nothing, so retry from
	// the end of each earlier line
	for l, c := line, column; l >= 0; l, c = l-1, math.MaxInt32 {
		if src, _, ol, oc, ok := t.consumer.Source(l+1, c); ok {
			return Position{Source: src, Line: ol - 1, Column: oc}, true
		}
	}
	return Position{}, false
}

// Content returns the embedded text of a source, if the map carries it
func (t *Translator) Content(source string) (string, bool) {
	s := t.consumer.SourceContent(source)
	return s, s != ""
}
