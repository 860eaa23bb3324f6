package frame

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/Hackzzila/FrameUi/internal/css"
	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/tree"
)

// FormatVersion is the version byte written after the magic
const FormatVersion byte = 1

var magic = [5]byte{'F', 'U', 'i', 'S', 0}

// ErrBadMagic is returned by Load for data that does not start with the
// header of a compiled document of this version
var ErrBadMagic = errors.New("frame: not a compiled document")

// IsCompiled reports whether data starts like the output of Save
func IsCompiled(data []byte) bool {
	return len(data) >= len(magic) && bytes.Equal(data[:len(magic)], magic[:])
}

// wireElement is one element in pre-order. Parent indexes an earlier record;
// the root has -1. Attributes are stored as written.
type wireElement struct {
	Parent   int               `msgpack:"p"`
	Kind     dom.Kind          `msgpack:"k"`
	Classes  []string          `msgpack:"c,omitempty"`
	ID       string            `msgpack:"i,omitempty"`
	HasID    bool              `msgpack:"h,omitempty"`
	Inline   []css.Declaration `msgpack:"s,omitempty"`
	Attrs    map[string]string `msgpack:"a,omitempty"`
	Computed css.ComputedStyle `msgpack:"cs"`
	Render   css.RenderStyle   `msgpack:"rs"`
}

type wireRule struct {
	Selectors    []string          `msgpack:"s"`
	Declarations []css.Declaration `msgpack:"d"`
}

type wireDocument struct {
	Elements []wireElement `msgpack:"e"`
	Rules    []wireRule    `msgpack:"r"`
}

// Save encodes the document. Layout nodes and the expression scope are not
// part of the encoding.
func (d *Document) Save() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.SaveInto(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveInto writes the encoded document to w
func (d *Document) SaveInto(w io.Writer) error {
	d.mu.RLock()
	wd := d.wire()
	d.mu.RUnlock()

	bw := bufio.NewWriter(w)
	bw.Write(magic[:])
	bw.WriteByte(FormatVersion)
	enc := msgpack.NewEncoder(bw)
	enc.UseCompactInts(true)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(wd); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return nil
}

func (d *Document) wire() wireDocument {
	root := d.tree.Root()
	index := make(map[tree.NodeID]int, d.tree.Len())
	wd := wireDocument{Elements: make([]wireElement, 0, d.tree.Len())}
	for id := range d.tree.Descendants(root) {
		el := d.tree.Get(id)
		parent := -1
		if id != root {
			parent = index[d.tree.Parent(id)]
		}
		index[id] = len(wd.Elements)
		wd.Elements = append(wd.Elements, wireElement{
			Parent:   parent,
			Kind:     el.Kind,
			Classes:  el.Classes,
			ID:       el.ID,
			HasID:    el.HasID,
			Inline:   el.Inline,
			Attrs:    wireAttrs(&el.Attrs),
			Computed: el.Computed,
			Render:   el.Render,
		})
	}
	for _, r := range d.sheet.Rules {
		sels := make([]string, len(r.Selectors))
		for i, s := range r.Selectors {
			sels[i] = s.Text()
		}
		wd.Rules = append(wd.Rules, wireRule{Selectors: sels, Declarations: r.Declarations})
	}
	return wd
}

func wireAttrs(a *dom.RawAttributes) map[string]string {
	m := make(map[string]string)
	for name, v := range map[string]*dom.AttrValue{"class": a.Class, "id": a.ID, "style": a.Style} {
		if v != nil {
			m[name] = v.String()
		}
	}
	if len(m) == 0 {
		return nil
	}
	return m
}

// Load decodes a document written by Save
func Load(b []byte, opts ...Option) (*Document, error) {
	return LoadFrom(bytes.NewReader(b), opts...)
}

// LoadFrom reads an encoded document from r. Every element gets a new
// layout node from the configured engine.
func LoadFrom(r io.Reader, opts ...Option) (*Document, error) {
	var hdr [len(magic) + 1]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrBadMagic
		}
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if !bytes.Equal(hdr[:len(magic)], magic[:]) {
		return nil, ErrBadMagic
	}
	if v := hdr[len(magic)]; v != FormatVersion {
		return nil, fmt.Errorf("%w: version %d, want %d", ErrBadMagic, v, FormatVersion)
	}

	var wd wireDocument
	if err := msgpack.NewDecoder(r).Decode(&wd); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	t, err := buildTree(wd.Elements)
	if err != nil {
		return nil, err
	}
	sheet, err := buildStylesheet(wd.Rules)
	if err != nil {
		return nil, err
	}

	o := newOptions(opts)
	o.log.Debug("loaded document", zap.Int("nodes", t.Len()), zap.Int("rules", len(sheet.Rules)))
	return newDocument(t, sheet, o), nil
}

func buildTree(elements []wireElement) (*tree.Tree[dom.Element], error) {
	if len(elements) == 0 || elements[0].Parent != -1 || elements[0].Kind != dom.KindRoot {
		return nil, errors.New("frame: corrupt document: no root element")
	}
	t := tree.New(element(elements[0]))
	for i, we := range elements[1:] {
		// records are in pre-order, so a parent is always an earlier record
		if we.Parent < 0 || we.Parent > i {
			return nil, fmt.Errorf("frame: corrupt document: element %d has parent %d", i+1, we.Parent)
		}
		if we.Kind != dom.KindUnstyled {
			return nil, fmt.Errorf("frame: corrupt document: element %d has kind %s", i+1, we.Kind)
		}
		t.Append(tree.NodeID(we.Parent), element(we))
	}
	return t, nil
}

func element(we wireElement) dom.Element {
	el := dom.NewElement(we.Kind)
	el.Classes = we.Classes
	el.ID, el.HasID = we.ID, we.HasID
	el.Inline = we.Inline
	el.Computed = we.Computed
	el.Render = we.Render
	if v, ok := we.Attrs["class"]; ok {
		el.Attrs.Class = dom.ParseAttrValue(v)
	}
	if v, ok := we.Attrs["id"]; ok {
		el.Attrs.ID = dom.ParseAttrValue(v)
	}
	if v, ok := we.Attrs["style"]; ok {
		el.Attrs.Style = &dom.AttrValue{Text: v}
	}
	return el
}

func buildStylesheet(rules []wireRule) (*css.Stylesheet, error) {
	sheet := &css.Stylesheet{Rules: make([]css.Rule, 0, len(rules))}
	for _, r := range rules {
		sels, err := css.ParseSelectorList(strings.Join(r.Selectors, ", "))
		if err != nil {
			return nil, fmt.Errorf("frame: corrupt document: %w", err)
		}
		sheet.Rules = append(sheet.Rules, css.Rule{Selectors: sels, Declarations: r.Declarations})
	}
	return sheet, nil
}
