package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/camview/internal/cli/cmd/utils"
	"github.com/matjam/camview/internal/ipc"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Get camview status",
		Long:  `Returns the current status of the camview process, including render counters.`,
		Run: func(cmd *cobra.Command, args []string) {
			response, err := ipc.SendStatus()
			if err != nil {
				log.Errorf("Error sending command: %v", err)
				return
			}

			utils.PrintJSONColored(response)
		},
	}
}
