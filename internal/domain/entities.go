package domain

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Channel is one station from the provider's channel list.
// Immutable after construction; identity is the ID.
type Channel struct {
	ID         int    // stable provider identifier
	Name       string // display name, sanitized
	LogoURL    string // derived from ID
	Position   int    // provider ordering, ascending
	Recordable bool
	HD         bool
}

// Actor is a cast entry from the broadcast detail payload.
type Actor struct {
	Name string
	Role string
}

// BroadcastDetails holds the expensive per-broadcast fields that require a
// second API call. Person lists are deduplicated, sorted, and sanitized.
type BroadcastDetails struct {
	Rating    float64
	Votes     int
	Plot      string
	Hint      string
	Directors []string
	Authors   []string
	Composers []string
	Actors    []Actor
}

// DetailFetcher resolves the detail payload for a broadcast id. The provider
// client implements it; domain objects only hold the reference.
type DetailFetcher interface {
	BroadcastDetails(ctx context.Context, broadcastID int) (*BroadcastDetails, error)
}

// Broadcast is a single scheduled program airing on a channel. All text fields
// are sanitized at construction; StartsAt/EndsAt are local time.
type Broadcast struct {
	ID             int
	Title          string
	Subtitle       string
	ProductionYear int
	Country        string
	StartsAt       time.Time
	EndsAt         time.Time
	Duration       int // minutes, truncated
	ThumbURL       string
	ChannelID      int
	ChannelName    string
	ChannelLogoURL string
	Season         int
	Episode        int
	TotalEpisodes  int
	Categories     []string // flattened, deduplicated, sorted
	Outline        string
	HD             bool

	showPattern *regexp.Regexp

	detailMu sync.Mutex
	details  *BroadcastDetails
	fetch    DetailFetcher
}

// BindDetailFetcher attaches the client used to lazily resolve Details.
func (b *Broadcast) BindDetailFetcher(f DetailFetcher) {
	b.fetch = f
}

// SetTVShowPattern installs the optional user-configured pattern matching
// well-known series titles, used as a secondary IsTVShow signal.
func (b *Broadcast) SetTVShowPattern(re *regexp.Regexp) {
	b.showPattern = re
}

// IsTVShow reports whether the broadcast is an episode of a series: season and
// episode are both set, or the title matches the configured series pattern.
func (b *Broadcast) IsTVShow() bool {
	if b.Season > 0 && b.Episode > 0 {
		return true
	}
	return b.showPattern != nil && b.showPattern.MatchString(b.Title)
}

// Details returns the lazily fetched detail payload. The fetch happens at most
// once per instance; concurrent first accesses are serialized and every later
// call reuses the cached payload. A failed fetch is not cached, so the next
// access retries.
func (b *Broadcast) Details(ctx context.Context) (*BroadcastDetails, error) {
	b.detailMu.Lock()
	defer b.detailMu.Unlock()
	if b.details != nil {
		return b.details, nil
	}
	if b.fetch == nil {
		return nil, ErrDetailsUnavailable
	}
	d, err := b.fetch.BroadcastDetails(ctx, b.ID)
	if err != nil {
		return nil, err
	}
	b.details = d
	return d, nil
}

// Quality identifies the encoding tier of a recorded file.
type Quality string

const (
	QualityNQ Quality = "NQ"
	QualityHQ Quality = "HQ"
	QualityHD Quality = "HD"
)

// Quality bitmask values as encoded in the recording payload.
// Observed combinations: 3 (NQ+HQ), 6 (HQ+HD), 7 (NQ+HQ+HD).
const (
	QualityMaskNQ = 1 << iota
	QualityMaskHQ
	QualityMaskHD
)

// DefaultQualityOrder is the preference order used when the caller supplies
// none.
var DefaultQualityOrder = []Quality{QualityNQ, QualityHQ, QualityHD}

// ParseQualities parses a comma- or space-separated preference list such as
// "HQ,HD" or "NQ HQ HD". Unknown tiers are dropped; an empty result falls back
// to DefaultQualityOrder.
func ParseQualities(s string) []Quality {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	var out []Quality
	for _, f := range fields {
		switch q := Quality(strings.ToUpper(f)); q {
		case QualityNQ, QualityHQ, QualityHD:
			out = append(out, q)
		}
	}
	if len(out) == 0 {
		return DefaultQualityOrder
	}
	return out
}

// Subscription is the account's recording storage quota, reported as part of
// the login handshake.
type Subscription struct {
	UsedHours        float64
	MaxHours         float64
	UsedSpacePercent int
}

// Recording statuses with known semantics. Anything else is carried opaquely.
const (
	StatusQueued    = "queued"
	StatusScheduled = "scheduled"
	StatusRecorded  = "recorded"
)

// Recording is a user-initiated capture of a broadcast: the underlying
// broadcast plus the recording's own lifecycle and downloadable files.
type Recording struct {
	*Broadcast

	RecordingID int
	Status      string
	Quality     int // bitmask, see QualityMask constants
	URLs        map[Quality]string
}

// IsRecorded reports whether the recording has finished and files exist.
func (r *Recording) IsRecorded() bool {
	return strings.EqualFold(r.Status, StatusRecorded)
}

// IsScheduled reports whether the recording is still waiting to be captured.
// The provider has used both "queued" and "scheduled" for this state.
func (r *Recording) IsScheduled() bool {
	s := strings.ToLower(r.Status)
	return s == StatusQueued || s == StatusScheduled
}

// URL resolves a playable URL for the recording. Single-tier recordings map
// directly; combined tiers take the first entry of the preference order that
// has a file. With no preference given, DefaultQualityOrder applies. A
// finished recording with no matching file yields ErrNoPlayableURL; a pending
// recording yields an empty URL and no error.
func (r *Recording) URL(preferred ...Quality) (string, error) {
	if len(preferred) == 0 {
		preferred = DefaultQualityOrder
	}
	var u string
	if len(r.URLs) > 0 {
		switch r.Quality {
		case QualityMaskNQ:
			u = r.URLs[QualityNQ]
		case QualityMaskHQ:
			u = r.URLs[QualityHQ]
		case QualityMaskHD:
			u = r.URLs[QualityHD]
		case QualityMaskNQ | QualityMaskHQ,
			QualityMaskHQ | QualityMaskHD,
			QualityMaskNQ | QualityMaskHQ | QualityMaskHD:
			for _, q := range preferred {
				if u = r.URLs[q]; u != "" {
					break
				}
			}
		}
	}
	if u == "" && r.IsRecorded() {
		return "", ErrNoPlayableURL
	}
	return u, nil
}
