package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tvheim/bongtv/internal/config"
	"github.com/tvheim/bongtv/internal/domain"
	"github.com/tvheim/bongtv/internal/history"
)

var (
	flagSearchChannel string
	flagSearchRecent  bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search broadcasts across all channels",
	Args:  cobra.ArbitraryArgs,
	RunE:  searchRun,
}

func init() {
	searchCmd.Flags().StringVar(&flagSearchChannel, "channel", "", "Restrict results to one channel (id or name)")
	searchCmd.Flags().BoolVar(&flagSearchRecent, "recent", false, "List recent searches instead of searching")
}

func searchRun(cmd *cobra.Command, args []string) error {
	if flagSearchRecent {
		return recentSearches()
	}
	if len(args) == 0 {
		return fmt.Errorf("search query required")
	}
	guide, err := newGuide()
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")

	var broadcasts []*domain.Broadcast
	if flagSearchChannel != "" {
		channel, err := resolveChannel(cmd, flagSearchChannel)
		if err != nil {
			return err
		}
		broadcasts, err = guide.SearchBroadcastsPerChannel(cmd.Context(), query, channel.ID)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
	} else {
		broadcasts, err = guide.SearchBroadcasts(cmd.Context(), query)
		if err != nil {
			return fmt.Errorf("searching: %w", err)
		}
	}

	rememberSearch(query)

	if len(broadcasts) == 0 {
		fmt.Println("No broadcasts found.")
		return nil
	}
	printBroadcasts(broadcasts, true)
	return nil
}

// recentSearches prints the remembered queries, newest first.
func recentSearches() error {
	store, err := history.Open(config.DataDir())
	if err != nil {
		return fmt.Errorf("opening search history: %w", err)
	}
	defer store.Close()

	entries, err := store.Recent()
	if err != nil {
		return fmt.Errorf("reading search history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No recent searches.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %s\n", e.At.Format("02.01. 15:04"), e.Query)
	}
	return nil
}

// rememberSearch records the query in the local history. Failures only get
// logged; search results matter more than bookkeeping.
func rememberSearch(query string) {
	store, err := history.Open(config.DataDir())
	if err != nil {
		logger.Warn("search history unavailable", "error", err)
		return
	}
	defer store.Close()
	if err := store.Remember(query); err != nil {
		logger.Warn("failed to record search", "error", err)
	}
}
