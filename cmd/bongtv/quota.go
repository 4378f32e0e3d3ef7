package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show the recording storage quota of your account",
	RunE:  quotaRun,
}

func quotaRun(cmd *cobra.Command, args []string) error {
	space, err := newSpace()
	if err != nil {
		return err
	}

	sub, err := space.Subscription(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching subscription: %w", err)
	}

	fmt.Printf("Used %.1f of %.1f hours (%d%%).\n", sub.UsedHours, sub.MaxHours, sub.UsedSpacePercent)
	return nil
}
