package tui

import (
	"github.com/tvheim/bongtv/internal/domain"
)

// Message types for the browser

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// ChannelsLoadedMsg signals that the channel list has been loaded
type ChannelsLoadedMsg struct {
	Channels []domain.Channel
}

// ScheduleLoadedMsg signals that one channel day schedule has been loaded
type ScheduleLoadedMsg struct {
	ChannelID  int
	DayOffset  int
	Broadcasts []*domain.Broadcast
}

// DetailsLoadedMsg signals that a broadcast's detail payload has been loaded
type DetailsLoadedMsg struct {
	Broadcast *domain.Broadcast
	Details   *domain.BroadcastDetails
}

// RecordingScheduledMsg signals that a recording has been scheduled
type RecordingScheduledMsg struct {
	Recording *domain.Recording
}
