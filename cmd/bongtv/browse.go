package main

import (
	"github.com/spf13/cobra"

	"github.com/tvheim/bongtv/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the guide interactively",
	RunE:  browseRun,
}

func browseRun(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	guide := newGuideFor(client)
	space := newSpaceFor(client)
	return tui.Run(guide, space, logger)
}
