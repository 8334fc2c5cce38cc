package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/ipc"
	"github.com/spf13/cobra"
)

func NewRotateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rotate [degrees]",
		Short: "Rotate the preview",
		Long:  `Sets the preview rotation in degrees. The angle replaces the current rotation.`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			degrees, err := ipc.ParseDegrees(args[0])
			if err != nil {
				log.Fatal(err)
			}
			if err := ipc.SendRotate(degrees); err != nil {
				log.Fatalf("Failed to send 'rotate' command: %v", err)
			}
			log.Infof("Rotate command sent (%d degrees)", degrees)
		},
	}
}
