package cmd

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStopCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running preview and release its display",
		Run: func(cmd *cobra.Command, args []string) {
			if err := ipc.SendStop(); err != nil {
				log.Fatalf("Failed to send 'stop' command: %v", err)
			}
			log.Info("Stop command sent")

			wait, _ := cmd.Flags().GetDuration("wait")
			if wait <= 0 {
				return
			}
			if err := waitForExit(wait); err != nil {
				log.Fatal(err)
			}
			log.Info("Preview stopped")
		},
	}
	c.Flags().Duration("wait", 5*time.Second, "How long to wait for the preview to exit, 0 to return at once")
	return c
}

// waitForExit polls the control socket until nothing answers on it.
func waitForExit(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		if _, err := ipc.SendStatus(); err != nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("preview still running after %s", timeout)
		}
		time.Sleep(50 * time.Millisecond)
	}
}
