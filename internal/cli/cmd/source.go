package cmd

import (
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/ipc"
	"github.com/matjam/camview/internal/source"
	"github.com/spf13/cobra"
)

func NewSourceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "source [directory|pattern]",
		Short: "Switch the daemon to another frame source",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]
			if name != source.PatternName {
				abs, err := filepath.Abs(source.CanonicalPath(name))
				if err != nil {
					log.Fatalf("Invalid source path: %v", err)
				}
				name = abs
			}
			if err := ipc.SendSource(name); err != nil {
				log.Fatalf("Failed to send 'source' command: %v", err)
			}
			log.Infof("Source command sent (%s)", name)
		},
	}
}
