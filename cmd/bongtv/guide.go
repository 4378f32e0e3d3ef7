package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tvheim/bongtv/internal/domain"
)

var flagGuideDays int

var guideCmd = &cobra.Command{
	Use:   "guide <channel>",
	Short: "Show the upcoming schedule of a channel",
	Long: `Show the upcoming schedule of a channel, by channel id or name.
Names are matched case-insensitively, with a fuzzy fallback.`,
	Args: cobra.MinimumNArgs(1),
	RunE: guideRun,
}

func init() {
	guideCmd.Flags().IntVar(&flagGuideDays, "days", 0, "Days of schedule to fetch (default from config)")
}

func guideRun(cmd *cobra.Command, args []string) error {
	guide, err := newGuide()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	channel, err := resolveChannel(cmd, query)
	if err != nil {
		return err
	}

	days := flagGuideDays
	if days <= 0 {
		days = cfg.Guide.Days
	}

	broadcasts, err := guide.Broadcasts(cmd.Context(), channel.ID, days)
	if err != nil {
		return fmt.Errorf("fetching schedule: %w", err)
	}
	if len(broadcasts) == 0 {
		fmt.Printf("No upcoming broadcasts on %s.\n", channel.Name)
		return nil
	}

	fmt.Printf("%s\n\n", channel.Name)
	printBroadcasts(broadcasts, false)
	return nil
}

// resolveChannel turns a CLI argument into a channel: numeric ids look up
// directly, anything else goes through name resolution.
func resolveChannel(cmd *cobra.Command, query string) (*domain.Channel, error) {
	guide, err := newGuide()
	if err != nil {
		return nil, err
	}

	if id, err := strconv.Atoi(query); err == nil {
		channel, err := guide.Channel(cmd.Context(), id)
		if err != nil {
			return nil, fmt.Errorf("looking up channel %d: %w", id, err)
		}
		if channel == nil {
			return nil, fmt.Errorf("no channel with id %d", id)
		}
		return channel, nil
	}

	channel, err := guide.FindChannel(cmd.Context(), query)
	if err != nil {
		return nil, fmt.Errorf("resolving channel %q: %w", query, err)
	}
	if channel == nil {
		return nil, fmt.Errorf("no channel matching %q", query)
	}
	return channel, nil
}

// printBroadcasts writes a broadcast table, optionally with the channel
// column for cross-channel listings.
func printBroadcasts(broadcasts []*domain.Broadcast, withChannel bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if withChannel {
		fmt.Fprintln(w, "ID\tSTART\tCHANNEL\tTITLE\tMIN")
	} else {
		fmt.Fprintln(w, "ID\tSTART\tTITLE\tMIN")
	}
	for _, b := range broadcasts {
		title := b.Title
		if b.IsTVShow() && b.Season > 0 {
			title = fmt.Sprintf("%s (S%02dE%02d)", title, b.Season, b.Episode)
		}
		start := b.StartsAt.Format("Mon 02.01. 15:04")
		if withChannel {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", b.ID, start, b.ChannelName, title, b.Duration)
		} else {
			fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", b.ID, start, title, b.Duration)
		}
	}
	w.Flush()
}
