// Package service holds the user-facing facades over the provider client:
// Guide for EPG browsing and Space for the recording area. The facades add
// ordering, filtering, and lookup convenience; all provider I/O stays in the
// client underneath.
package service

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/tvheim/bongtv/internal/domain"
)

// GuideClient is the slice of the provider client the guide needs.
type GuideClient interface {
	Channels(ctx context.Context) ([]domain.Channel, error)
	Broadcasts(ctx context.Context, channelID int, date time.Time) ([]*domain.Broadcast, error)
	SearchBroadcasts(ctx context.Context, query string) ([]*domain.Broadcast, error)
}

// Guide is the EPG facade: channel listing and lookup, per-day schedules, and
// broadcast search.
type Guide struct {
	client GuideClient
	logger *slog.Logger

	// now is swappable for tests
	now func() time.Time
}

// NewGuide creates a guide over the given client.
func NewGuide(client GuideClient, logger *slog.Logger) *Guide {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guide{
		client: client,
		logger: logger,
		now:    time.Now,
	}
}

// Channels returns all channels ordered by the provider's position, ties
// broken by id.
func (g *Guide) Channels(ctx context.Context) ([]domain.Channel, error) {
	channels, err := g.client.Channels(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(channels, func(i, j int) bool {
		if channels[i].Position != channels[j].Position {
			return channels[i].Position < channels[j].Position
		}
		return channels[i].ID < channels[j].ID
	})
	return channels, nil
}

// Channel looks up a channel by id. An unknown id is not an error; it yields
// (nil, nil).
func (g *Guide) Channel(ctx context.Context, id int) (*domain.Channel, error) {
	channels, err := g.client.Channels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		if channels[i].ID == id {
			c := channels[i]
			return &c, nil
		}
	}
	return nil, nil
}

// FindChannel resolves a channel by name: an exact case-insensitive match
// wins, otherwise the closest fuzzy match. No match yields (nil, nil).
func (g *Guide) FindChannel(ctx context.Context, name string) (*domain.Channel, error) {
	channels, err := g.client.Channels(ctx)
	if err != nil {
		return nil, err
	}
	for i := range channels {
		if strings.EqualFold(channels[i].Name, name) {
			c := channels[i]
			return &c, nil
		}
	}

	names := make([]string, len(channels))
	for i, c := range channels {
		names[i] = c.Name
	}
	matches := fuzzy.RankFindFold(name, names)
	if len(matches) == 0 {
		return nil, nil
	}
	sort.Sort(matches)
	for i := range channels {
		if channels[i].Name == matches[0].Target {
			c := channels[i]
			g.logger.Debug("channel resolved by fuzzy match", "query", name, "channel", c.Name)
			return &c, nil
		}
	}
	return nil, nil
}

// BroadcastsPerDay returns the schedule of one channel for today plus
// dayOffset days, ordered by start time. Broadcasts that started strictly
// before now are dropped; one starting exactly now is kept.
func (g *Guide) BroadcastsPerDay(ctx context.Context, channelID, dayOffset int) ([]*domain.Broadcast, error) {
	now := g.now()
	date := now.AddDate(0, 0, dayOffset)
	broadcasts, err := g.client.Broadcasts(ctx, channelID, date)
	if err != nil {
		return nil, err
	}
	return g.upcoming(broadcasts, now), nil
}

// Broadcasts collects the schedules for up to maxDays consecutive days
// starting today, stopping early at the first day the provider has no data
// for.
func (g *Guide) Broadcasts(ctx context.Context, channelID, maxDays int) ([]*domain.Broadcast, error) {
	now := g.now()
	var all []*domain.Broadcast
	for offset := 0; offset < maxDays; offset++ {
		date := now.AddDate(0, 0, offset)
		day, err := g.client.Broadcasts(ctx, channelID, date)
		if err != nil {
			return nil, err
		}
		if len(day) == 0 {
			g.logger.Debug("guide data ends", "channel_id", channelID, "day_offset", offset)
			break
		}
		all = append(all, g.upcoming(day, now)...)
	}
	return all, nil
}

// SearchBroadcasts runs the provider's free-text search across all channels.
func (g *Guide) SearchBroadcasts(ctx context.Context, pattern string) ([]*domain.Broadcast, error) {
	return g.client.SearchBroadcasts(ctx, pattern)
}

// SearchBroadcastsPerChannel narrows a search to a single channel. The
// provider only searches globally, so the narrowing happens here.
func (g *Guide) SearchBroadcastsPerChannel(ctx context.Context, pattern string, channelID int) ([]*domain.Broadcast, error) {
	broadcasts, err := g.client.SearchBroadcasts(ctx, pattern)
	if err != nil {
		return nil, err
	}
	matched := broadcasts[:0:0]
	for _, b := range broadcasts {
		if b.ChannelID == channelID {
			matched = append(matched, b)
		}
	}
	return matched, nil
}

// upcoming drops broadcasts that started strictly before now and sorts the
// rest by start time.
func (g *Guide) upcoming(broadcasts []*domain.Broadcast, now time.Time) []*domain.Broadcast {
	kept := broadcasts[:0:0]
	for _, b := range broadcasts {
		if b.StartsAt.Before(now) {
			continue
		}
		kept = append(kept, b)
	}
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].StartsAt.Before(kept[j].StartsAt)
	})
	return kept
}
