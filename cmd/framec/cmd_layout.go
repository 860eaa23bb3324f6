package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/xlab/treeprint"

	"github.com/Hackzzila/FrameUi/internal/dom"
	"github.com/Hackzzila/FrameUi/internal/layout"
	"github.com/Hackzzila/FrameUi/internal/tree"
	"github.com/Hackzzila/FrameUi/pkg/frame"
)

type viewportFlags struct {
	width, height float32
	rtl           bool
}

func (v *viewportFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float32Var(&v.width, "width", 0, "viewport width (default from framec.yaml)")
	cmd.Flags().Float32Var(&v.height, "height", 0, "viewport height (default from framec.yaml)")
	cmd.Flags().BoolVar(&v.rtl, "rtl", false, "lay out right to left")
}

// apply lays doc out, with the configured viewport where no flag was given
func (v *viewportFlags) apply(cmd *cobra.Command, s *session, doc *frame.Document) error {
	w, h, dir := s.cfg.Width, s.cfg.Height, s.cfg.Direction()
	if cmd.Flags().Changed("width") {
		w = v.width
	}
	if cmd.Flags().Changed("height") {
		h = v.height
	}
	if cmd.Flags().Changed("rtl") {
		dir = layout.DirectionLTR
		if v.rtl {
			dir = layout.DirectionRTL
		}
	}
	return doc.ComputeStyle(w, h, dir)
}

// label describes an element and its box, e.g. Unstyled#main.box (0, 0) 800x20
func label(el frame.ElementInfo, withBox bool) string {
	var b strings.Builder
	b.WriteString(el.Kind.String())
	if el.HasID {
		b.WriteString("#" + el.ID)
	}
	for _, c := range el.Classes {
		b.WriteString("." + c)
	}
	if !withBox {
		return b.String()
	}
	r := el.Render
	fmt.Fprintf(&b, " (%g, %g) %gx%g", r.Left, r.Top, r.Width, r.Height)
	if r.BackgroundColor.A > 0 {
		b.WriteString(" " + r.BackgroundColor.String())
	}
	return b.String()
}

// renderTree prints the element tree of doc
func renderTree(doc *frame.Document, withBox bool) string {
	var root treeprint.Tree
	branches := make(map[tree.NodeID]treeprint.Tree)
	doc.Walk(func(id, parent tree.NodeID, el frame.ElementInfo) bool {
		if el.Kind == dom.KindRoot {
			root = treeprint.NewWithRoot(label(el, withBox))
			branches[id] = root
			return true
		}
		branches[id] = branches[parent].AddBranch(label(el, withBox))
		return true
	})
	return root.String()
}

func newLayoutCmd(flags *globalFlags) *cobra.Command {
	var vp viewportFlags

	cmd := &cobra.Command{
		Use:   "layout <document>",
		Short: "Lay a document out and print the render tree",
		Long: `Lay a document out and print every element with its position and size.
The document is either markup or the output of framec compile.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := flags.session(cmd, args[0])
			if err != nil {
				return err
			}
			doc, err := s.open(args[0])
			if err != nil {
				return err
			}
			defer doc.Close()
			if err := vp.apply(cmd, s, doc); err != nil {
				return err
			}
			fmt.Fprint(s.out, renderTree(doc, true))

			st := doc.Stats()
			fmt.Fprintln(s.out, mutedStyle.Render(fmt.Sprintf("%d elements, %d rules, %d matches in %s",
				st.Nodes, st.Rules, st.Matched, st.Elapsed)))
			return nil
		},
	}
	vp.register(cmd)
	return cmd
}
