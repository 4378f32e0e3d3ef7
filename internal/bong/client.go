// Package bong implements the client for the bong.tv JSON API: a transport
// with the provider's fixed header set, a session manager with an on-disk
// cookie cache, and typed operations that decode the wire payloads into
// domain objects.
package bong

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/tvheim/bongtv/internal/domain"
)

const (
	channelsPath        = "/api/v1/channels.json"
	broadcastsPath      = "/api/v1/broadcasts.json"
	broadcastPathFmt    = "/api/v1/broadcasts/%d.json"
	broadcastSearchPath = "/api/v1/broadcasts/search.json"
	recordingsPath      = "/api/v1/recordings.json"
	recordingPathFmt    = "/api/v1/recordings/%d.json"

	// wireDateFormat is the DD-MM-YYYY format of the broadcasts query.
	wireDateFormat = "02-01-2006"
)

// Client exposes the provider's API as typed operations. All calls go through
// the session's authenticated-call primitive and therefore through the rate
// gate.
type Client struct {
	session *Session
	mapper  *mapper
	logger  *slog.Logger
}

// NewClient wraps a session. The image host for logo/thumbnail URLs is
// derived from the session's endpoint.
func NewClient(session *Session, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Client{
		session: session,
		logger:  logger,
	}
	c.mapper = &mapper{host: session.transport.baseURL, fetch: c}
	return c
}

// SetTVShowPattern installs the optional series-title pattern applied to every
// broadcast constructed by this client.
func (c *Client) SetTVShowPattern(re *regexp.Regexp) {
	c.mapper.showPattern = re
}

// Channels fetches the full channel list, unsorted.
func (c *Client) Channels(ctx context.Context) ([]domain.Channel, error) {
	raw, err := c.session.Call(ctx, http.MethodGet, channelsPath, nil, "channels")
	if err != nil {
		return nil, err
	}
	var dtos []channelDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: "channels", Err: err}
	}
	channels := make([]domain.Channel, 0, len(dtos))
	for _, dto := range dtos {
		channels = append(channels, c.mapper.channel(dto))
	}
	c.logger.Debug("fetched channels", "count", len(channels))
	return channels, nil
}

// Broadcasts fetches the schedule of one channel for one calendar day.
func (c *Client) Broadcasts(ctx context.Context, channelID int, date time.Time) ([]*domain.Broadcast, error) {
	params := url.Values{
		"channel_id": {strconv.Itoa(channelID)},
		"date":       {date.Format(wireDateFormat)},
	}
	raw, err := c.session.Call(ctx, http.MethodGet, broadcastsPath, params, "broadcasts")
	if err != nil {
		return nil, err
	}
	return c.decodeBroadcasts(raw, "broadcasts")
}

// SearchBroadcasts runs the provider's free-text search across all channels.
func (c *Client) SearchBroadcasts(ctx context.Context, query string) ([]*domain.Broadcast, error) {
	params := url.Values{"query": {query}}
	raw, err := c.session.Call(ctx, http.MethodGet, broadcastSearchPath, params, "broadcasts")
	if err != nil {
		return nil, err
	}
	return c.decodeBroadcasts(raw, "search")
}

func (c *Client) decodeBroadcasts(raw json.RawMessage, op string) ([]*domain.Broadcast, error) {
	var dtos []broadcastDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: op, Err: err}
	}
	broadcasts := make([]*domain.Broadcast, 0, len(dtos))
	for _, dto := range dtos {
		broadcasts = append(broadcasts, c.mapper.broadcast(dto))
	}
	return broadcasts, nil
}

// BroadcastDetails fetches the expensive per-broadcast payload. It implements
// domain.DetailFetcher; broadcasts constructed by this client call back into
// it lazily.
func (c *Client) BroadcastDetails(ctx context.Context, broadcastID int) (*domain.BroadcastDetails, error) {
	path := fmt.Sprintf(broadcastPathFmt, broadcastID)
	raw, err := c.session.Call(ctx, http.MethodGet, path, nil, "broadcast")
	if err != nil {
		return nil, err
	}
	var dto broadcastDetailDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: "broadcast details", Err: err}
	}
	return c.mapper.details(dto), nil
}

// Recordings fetches the user's PVR space, unsorted.
func (c *Client) Recordings(ctx context.Context) ([]*domain.Recording, error) {
	raw, err := c.session.Call(ctx, http.MethodGet, recordingsPath, nil, "recordings")
	if err != nil {
		return nil, err
	}
	var dtos []recordingDTO
	if err := json.Unmarshal(raw, &dtos); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: "recordings", Err: err}
	}
	recordings := make([]*domain.Recording, 0, len(dtos))
	for _, dto := range dtos {
		recordings = append(recordings, c.mapper.recording(dto))
	}
	c.logger.Debug("fetched recordings", "count", len(recordings))
	return recordings, nil
}

// CreateRecording schedules a recording of the given broadcast. A 422 from
// the provider surfaces as ErrCannotRecord.
func (c *Client) CreateRecording(ctx context.Context, broadcastID int) (*domain.Recording, error) {
	params := url.Values{"broadcast_id": {strconv.Itoa(broadcastID)}}
	raw, err := c.session.Call(ctx, http.MethodPost, recordingsPath, params, "recording")
	if err != nil {
		return nil, err
	}
	var dto recordingDTO
	if err := json.Unmarshal(raw, &dto); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: "create recording", Err: err}
	}
	c.logger.Info("recording scheduled", "broadcast_id", broadcastID, "recording_id", dto.ID)
	return c.mapper.recording(dto), nil
}

// DeleteRecording removes a recording from the PVR space. ErrNotFound is
// returned as-is; the facade decides whether that matters.
func (c *Client) DeleteRecording(ctx context.Context, recordingID int) error {
	path := fmt.Sprintf(recordingPathFmt, recordingID)
	_, err := c.session.Call(ctx, http.MethodDelete, path, nil, "")
	if err == nil {
		c.logger.Info("recording deleted", "recording_id", recordingID)
	}
	return err
}

// Subscription re-runs the login handshake and reports the account's storage
// quota from the response body.
func (c *Client) Subscription(ctx context.Context) (*domain.Subscription, error) {
	body, err := c.session.Login(ctx)
	if err != nil {
		return nil, err
	}
	if body.Subscription == nil {
		return nil, apiErr("subscription", ErrBadResponse, 0, "login response has no subscription")
	}
	sub := c.mapper.subscription(*body.Subscription)
	if sub.UsedSpacePercent < 0 || sub.UsedSpacePercent > 100 {
		return nil, apiErr("subscription", ErrBadResponse, 0,
			fmt.Sprintf("used space percentage out of range: %d", sub.UsedSpacePercent))
	}
	return &sub, nil
}
