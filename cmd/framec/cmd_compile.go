package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Hackzzila/FrameUi/pkg/frame"
)

// defaultOutput is the input path with its extension replaced by .fui
func defaultOutput(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + ".fui"
}

func writeDocument(doc *frame.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := doc.SaveInto(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func newCompileCmd(flags *globalFlags) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "compile <document>",
		Short: "Compile a document to the binary format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := args[0]
			s, err := flags.session(cmd, input)
			if err != nil {
				return err
			}
			if output == "" {
				output = defaultOutput(input)
			}

			doc, err := s.compile(input)
			if err != nil {
				return err
			}
			defer doc.Close()
			if err := writeDocument(doc, output); err != nil {
				return err
			}
			fmt.Fprintf(s.out, "%s %s\n", successStyle.Render("wrote"), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: input with a .fui extension)")
	return cmd
}
