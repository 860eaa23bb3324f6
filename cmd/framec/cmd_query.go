package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Hackzzila/FrameUi/internal/tree"
)

func newQueryCmd(flags *globalFlags) *cobra.Command {
	var (
		all    bool
		markup bool
		vp     viewportFlags
	)

	cmd := &cobra.Command{
		Use:   "query <document> <selector>",
		Short: "Find the elements matching a selector",
		Args:  cobra.ExactArgs(2),
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

			if markup {
				html, err := doc.Markup()
				if err != nil {
					return err
				}
				fmt.Fprintln(s.errOut, mutedStyle.Render(html))
			}

			var ids []tree.NodeID
			if all {
				if ids, err = doc.QuerySelectorAll(args[1]); err != nil {
					return err
				}
			} else {
				id, ok, err := doc.QuerySelector(args[1])
				if err != nil {
					return err
				}
				if ok {
					ids = append(ids, id)
				}
			}
			if len(ids) == 0 {
				return fmt.Errorf("no element matches %q", args[1])
			}
			for _, id := range ids {
				el, _ := doc.Element(id)
				fmt.Fprintf(s.out, "%d\t%s\n", id, label(el, true))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "print every match, not just the first")
	cmd.Flags().BoolVar(&markup, "markup", false, "print the element tree as HTML to stderr")
	vp.register(cmd)
	return cmd
}
