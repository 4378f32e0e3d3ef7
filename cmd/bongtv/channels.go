package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var channelsCmd = &cobra.Command{
	Use:   "channels",
	Short: "List all channels",
	RunE:  channelsRun,
}

func channelsRun(cmd *cobra.Command, args []string) error {
	guide, err := newGuide()
	if err != nil {
		return err
	}

	channels, err := guide.Channels(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing channels: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tHD\tRECORDABLE")
	for _, c := range channels {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", c.ID, c.Name, yesNo(c.HD), yesNo(c.Recordable))
	}
	return w.Flush()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}
