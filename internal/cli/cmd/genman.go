package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matjam/camview"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// NewGenManCmd returns a command that writes a section 1 man page for the
// camview command and each of its subcommands into a directory.
func NewGenManCmd(rootCmd *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "genman [output-dir]",
		Short: "Generate man pages for the camview commands",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := filepath.Clean(args[0])
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating man page directory: %w", err)
			}
			header := &doc.GenManHeader{
				Title:   "CAMVIEW",
				Section: "1",
				Source:  "camview " + strings.TrimSpace(camview.Version),
				Manual:  "camview live preview",
			}
			return doc.GenManTree(rootCmd, header, dir)
		},
	}
}
