package service

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/domain"
)

// SpaceClient is the slice of the provider client the recording area needs.
type SpaceClient interface {
	Recordings(ctx context.Context) ([]*domain.Recording, error)
	CreateRecording(ctx context.Context, broadcastID int) (*domain.Recording, error)
	DeleteRecording(ctx context.Context, recordingID int) error
	Subscription(ctx context.Context) (*domain.Subscription, error)
}

// Space is the facade over the user's personal recording area.
type Space struct {
	client SpaceClient
	logger *slog.Logger
}

// NewSpace creates a recording-area facade over the given client.
func NewSpace(client SpaceClient, logger *slog.Logger) *Space {
	if logger == nil {
		logger = slog.Default()
	}
	return &Space{client: client, logger: logger}
}

// Recordings returns all recordings ordered by the underlying broadcast's
// start time.
func (s *Space) Recordings(ctx context.Context) ([]*domain.Recording, error) {
	recordings, err := s.client.Recordings(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(recordings, func(i, j int) bool {
		return recordings[i].StartsAt.Before(recordings[j].StartsAt)
	})
	return recordings, nil
}

// Recording looks up a recording by its id. An unknown id yields (nil, nil).
func (s *Space) Recording(ctx context.Context, id int) (*domain.Recording, error) {
	recordings, err := s.client.Recordings(ctx)
	if err != nil {
		return nil, err
	}
	for _, r := range recordings {
		if r.RecordingID == id {
			return r, nil
		}
	}
	return nil, nil
}

// CreateRecording schedules a recording of the given broadcast. A broadcast
// the provider refuses to record surfaces as bong.ErrCannotRecord.
func (s *Space) CreateRecording(ctx context.Context, broadcastID int) (*domain.Recording, error) {
	return s.client.CreateRecording(ctx, broadcastID)
}

// DeleteRecording removes a recording. Deleting one the provider no longer
// knows is treated as success; the end state is the same.
func (s *Space) DeleteRecording(ctx context.Context, recordingID int) error {
	err := s.client.DeleteRecording(ctx, recordingID)
	if errors.Is(err, bong.ErrNotFound) {
		s.logger.Debug("recording already gone", "recording_id", recordingID)
		return nil
	}
	return err
}

// Subscription reports the account's storage quota.
func (s *Space) Subscription(ctx context.Context) (*domain.Subscription, error) {
	return s.client.Subscription(ctx)
}
