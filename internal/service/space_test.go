package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/domain"
)

type fakeSpaceClient struct {
	recordings []*domain.Recording
	created    *domain.Recording
	createErr  error
	deleteErr  error
	deleted    []int
	sub        *domain.Subscription
}

func (f *fakeSpaceClient) Recordings(ctx context.Context) ([]*domain.Recording, error) {
	return f.recordings, nil
}

func (f *fakeSpaceClient) CreateRecording(ctx context.Context, broadcastID int) (*domain.Recording, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.created, nil
}

func (f *fakeSpaceClient) DeleteRecording(ctx context.Context, recordingID int) error {
	f.deleted = append(f.deleted, recordingID)
	return f.deleteErr
}

func (f *fakeSpaceClient) Subscription(ctx context.Context) (*domain.Subscription, error) {
	return f.sub, nil
}

func rec(id int, startsAt time.Time) *domain.Recording {
	return &domain.Recording{
		Broadcast:   &domain.Broadcast{StartsAt: startsAt},
		RecordingID: id,
	}
}

func TestSpaceRecordingsSortedByStart(t *testing.T) {
	base := time.Date(2026, 8, 31, 20, 0, 0, 0, time.Local)
	client := &fakeSpaceClient{recordings: []*domain.Recording{
		rec(2, base.Add(2*time.Hour)),
		rec(3, base),
		rec(1, base.Add(time.Hour)),
	}}
	s := NewSpace(client, nil)

	recordings, err := s.Recordings(context.Background())
	require.NoError(t, err)
	require.Len(t, recordings, 3)
	assert.Equal(t, 3, recordings[0].RecordingID)
	assert.Equal(t, 1, recordings[1].RecordingID)
	assert.Equal(t, 2, recordings[2].RecordingID)
}

func TestSpaceRecordingLookup(t *testing.T) {
	client := &fakeSpaceClient{recordings: []*domain.Recording{
		rec(5, time.Now()),
	}}
	s := NewSpace(client, nil)

	r, err := s.Recording(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, 5, r.RecordingID)

	r, err = s.Recording(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, r)
}

func TestSpaceCreateRecordingSurfacesRefusal(t *testing.T) {
	client := &fakeSpaceClient{createErr: &bong.APIError{Sentinel: bong.ErrCannotRecord, Operation: "POST", Status: 422}}
	s := NewSpace(client, nil)

	_, err := s.CreateRecording(context.Background(), 777)
	assert.ErrorIs(t, err, bong.ErrCannotRecord)
}

func TestSpaceDeleteRecordingSwallowsNotFound(t *testing.T) {
	client := &fakeSpaceClient{deleteErr: &bong.APIError{Sentinel: bong.ErrNotFound, Status: 404}}
	s := NewSpace(client, nil)

	assert.NoError(t, s.DeleteRecording(context.Background(), 901))
	assert.Equal(t, []int{901}, client.deleted)
}

func TestSpaceDeleteRecordingPropagatesOtherErrors(t *testing.T) {
	client := &fakeSpaceClient{deleteErr: errors.New("boom")}
	s := NewSpace(client, nil)

	assert.Error(t, s.DeleteRecording(context.Background(), 901))
}

func TestSpaceSubscription(t *testing.T) {
	client := &fakeSpaceClient{sub: &domain.Subscription{UsedHours: 12, MaxHours: 50, UsedSpacePercent: 24}}
	s := NewSpace(client, nil)

	sub, err := s.Subscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 24, sub.UsedSpacePercent)
}
