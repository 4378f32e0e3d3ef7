package bong

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tvheim/bongtv/internal/domain"
	"github.com/tvheim/bongtv/internal/ratelimit"
)

const testChannelsJSON = `{"channels":[
	{"id":33,"name":"Das Erste HD","recordable":true,"position":"1","hd":1},
	{"id":40,"name":"arte","recordable":false,"position":2,"hd":false}
]}`

const testBroadcastJSON = `{
	"id":777,
	"title":"Stra&szlig;enfeger\\n",
	"subtitle":" Folge 3 ",
	"production_year":"1963",
	"starts_at_ms":1767225600000,
	"ends_at_ms":1767231059000,
	"country":"DE",
	"image":{"href":"/images/broadcasts/777.jpg"},
	"channel_id":33,
	"channel_name":"Das Erste HD",
	"serie":{"season":1,"episode":3,"total_episodes":4},
	"categories":[{"name":"Krimi"},{"name":"Serie"},{"name":"Krimi"},{"name":""}],
	"short_text":"Ein Klassiker.",
	"hd":"1"
}`

const testDetailJSON = `{"broadcast":{
	"rating":"7.8",
	"votes":120,
	"long_text":"Der gro&szlig;e Plot.",
	"hint_text":"Schwarzwei&szlig;",
	"roles":[
		{"name":"Regisseur","people":[{"name":"B"},{"name":"A"},{"name":"B"}]},
		{"name":"Autor","people":[{"name":"C"}]},
		{"name":"Musik","people":[{"name":"D"},{"name":""}]},
		{"name":"Schauspieler","people":[{"name":"Z","role":"Held"},{"name":"Y","role":"Bote"},{"name":"Z","role":"Held"}]}
	]
}}`

// newTestClient wires a client to srv with a zero-interval gate and a
// credential session that logs in against the fake login endpoint.
func newTestClient(t *testing.T, mux *http.ServeMux) (*Client, *httptest.Server) {
	t.Helper()
	mux.HandleFunc("POST /api/v1/user_sessions.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Set-Cookie", "session=test")
		fmt.Fprint(w, `{"subscription":{"usedcap":1,"maxcap":50,"used_space_percent":2}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s, err := NewSession(Credentials{Username: "alice", Password: "s3cret"}, SessionConfig{
		BaseURL:   srv.URL,
		CookieDir: t.TempDir(),
		Gate:      ratelimit.NewGate(0),
	})
	require.NoError(t, err)
	return NewClient(s, nil), srv
}

func TestClientChannels(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/channels.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testChannelsJSON)
	})
	c, srv := newTestClient(t, mux)

	channels, err := c.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 2)

	first := channels[0]
	assert.Equal(t, 33, first.ID)
	assert.Equal(t, "Das Erste HD", first.Name)
	assert.Equal(t, 1, first.Position)
	assert.True(t, first.Recordable)
	assert.True(t, first.HD)
	assert.Equal(t, srv.URL+"/images/channel/b/33.png", first.LogoURL)

	assert.False(t, channels[1].Recordable)
	assert.False(t, channels[1].HD)
}

func TestClientBroadcastsMapping(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/broadcasts.json", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		fmt.Fprintf(w, `{"broadcasts":[%s]}`, testBroadcastJSON)
	})
	c, srv := newTestClient(t, mux)

	date := time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local)
	broadcasts, err := c.Broadcasts(context.Background(), 33, date)
	require.NoError(t, err)
	require.Len(t, broadcasts, 1)
	assert.Contains(t, gotQuery, "channel_id=33")
	assert.Contains(t, gotQuery, "date=01-01-2026")

	b := broadcasts[0]
	assert.Equal(t, 777, b.ID)
	assert.Equal(t, "Straßenfeger", b.Title)
	assert.Equal(t, "Folge 3", b.Subtitle)
	assert.Equal(t, 1963, b.ProductionYear)
	assert.Equal(t, "DE", b.Country)
	assert.Equal(t, time.UnixMilli(1767225600000), b.StartsAt)
	assert.Equal(t, time.UnixMilli(1767231059000), b.EndsAt)
	// 5459s of air time truncates to whole minutes
	assert.Equal(t, 90, b.Duration)
	assert.Equal(t, srv.URL+"/images/broadcasts/777.jpg", b.ThumbURL)
	assert.Equal(t, 33, b.ChannelID)
	assert.Equal(t, "Das Erste HD", b.ChannelName)
	assert.Equal(t, srv.URL+"/images/channel/b/33.png", b.ChannelLogoURL)
	assert.Equal(t, 1, b.Season)
	assert.Equal(t, 3, b.Episode)
	assert.Equal(t, 4, b.TotalEpisodes)
	assert.Equal(t, []string{"Krimi", "Serie"}, b.Categories)
	assert.Equal(t, "Ein Klassiker.", b.Outline)
	assert.True(t, b.HD)
	assert.True(t, b.IsTVShow())
}

func TestClientBroadcastWithoutImage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/broadcasts.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"broadcasts":[{"id":1,"title":"x","starts_at_ms":0,"ends_at_ms":0,"channel_id":2}]}`)
	})
	c, _ := newTestClient(t, mux)

	broadcasts, err := c.Broadcasts(context.Background(), 2, time.Now())
	require.NoError(t, err)
	require.Len(t, broadcasts, 1)
	assert.Empty(t, broadcasts[0].ThumbURL)
}

func TestClientBroadcastDetails(t *testing.T) {
	var detailCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/broadcasts.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"broadcasts":[%s]}`, testBroadcastJSON)
	})
	mux.HandleFunc("GET /api/v1/broadcasts/777.json", func(w http.ResponseWriter, r *http.Request) {
		detailCalls++
		fmt.Fprint(w, testDetailJSON)
	})
	c, _ := newTestClient(t, mux)

	broadcasts, err := c.Broadcasts(context.Background(), 33, time.Now())
	require.NoError(t, err)
	b := broadcasts[0]

	d, err := b.Details(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 7.8, d.Rating, 0.001)
	assert.Equal(t, 120, d.Votes)
	assert.Equal(t, "Der große Plot.", d.Plot)
	assert.Equal(t, "Schwarzweiß", d.Hint)
	assert.Equal(t, []string{"A", "B"}, d.Directors)
	assert.Equal(t, []string{"C"}, d.Authors)
	assert.Equal(t, []string{"D"}, d.Composers)
	assert.Equal(t, []domain.Actor{{Name: "Y", Role: "Bote"}, {Name: "Z", Role: "Held"}}, d.Actors)

	// second access served from the instance cache
	_, err = b.Details(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, detailCalls)
}

func TestClientSearchBroadcasts(t *testing.T) {
	var gotQuery string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/broadcasts/search.json", func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		fmt.Fprintf(w, `{"broadcasts":[%s]}`, testBroadcastJSON)
	})
	c, _ := newTestClient(t, mux)

	broadcasts, err := c.SearchBroadcasts(context.Background(), "Straßenfeger")
	require.NoError(t, err)
	assert.Equal(t, "Straßenfeger", gotQuery)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, 777, broadcasts[0].ID)
}

func TestClientTVShowPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/broadcasts.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"broadcasts":[{"id":1,"title":"Tagesschau","starts_at_ms":0,"ends_at_ms":0,"channel_id":2}]}`)
	})
	c, _ := newTestClient(t, mux)
	c.SetTVShowPattern(regexp.MustCompile(`^Tagesschau$`))

	broadcasts, err := c.Broadcasts(context.Background(), 2, time.Now())
	require.NoError(t, err)
	assert.True(t, broadcasts[0].IsTVShow())
}

func TestClientRecordings(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/recordings.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"recordings":[{
			"id":901,
			"status":"RECORDED",
			"quality":3,
			"files":[
				{"quality":"nq","href":"http://cdn.example/901-nq.mp4"},
				{"quality":"hq","href":"http://cdn.example/901-hq.mp4"}
			],
			"broadcast":%s
		}]}`, testBroadcastJSON)
	})
	c, _ := newTestClient(t, mux)

	recordings, err := c.Recordings(context.Background())
	require.NoError(t, err)
	require.Len(t, recordings, 1)

	r := recordings[0]
	assert.Equal(t, 901, r.RecordingID)
	assert.True(t, r.IsRecorded())
	assert.False(t, r.IsScheduled())
	assert.Equal(t, 3, r.Quality)
	assert.Equal(t, "Straßenfeger", r.Title)

	u, err := r.URL(domain.QualityHQ, domain.QualityNQ)
	require.NoError(t, err)
	assert.Equal(t, "http://cdn.example/901-hq.mp4", u)
}

func TestClientCreateRecording(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/recordings.json", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "777", r.PostForm.Get("broadcast_id"))
		fmt.Fprintf(w, `{"recording":{"id":905,"status":"queued","quality":0,"broadcast":%s}}`, testBroadcastJSON)
	})
	c, _ := newTestClient(t, mux)

	rec, err := c.CreateRecording(context.Background(), 777)
	require.NoError(t, err)
	assert.Equal(t, 905, rec.RecordingID)
	assert.True(t, rec.IsScheduled())

	u, err := rec.URL()
	require.NoError(t, err)
	assert.Empty(t, u)
}

func TestClientCreateRecordingRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/recordings.json", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"errors":"not recordable"}`)
	})
	c, _ := newTestClient(t, mux)

	_, err := c.CreateRecording(context.Background(), 777)
	assert.ErrorIs(t, err, ErrCannotRecord)
}

func TestClientDeleteRecording(t *testing.T) {
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /api/v1/recordings/901.json", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})
	c, _ := newTestClient(t, mux)

	require.NoError(t, c.DeleteRecording(context.Background(), 901))
	assert.Equal(t, "/api/v1/recordings/901.json", deleted)
}

func TestClientDeleteRecordingNotFound(t *testing.T) {
	mux := http.NewServeMux()
	c, _ := newTestClient(t, mux)

	err := c.DeleteRecording(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientSubscription(t *testing.T) {
	mux := http.NewServeMux()
	c, _ := newTestClient(t, mux)

	sub, err := c.Subscription(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.0, sub.UsedHours, 0.001)
	assert.InDelta(t, 50.0, sub.MaxHours, 0.001)
	assert.Equal(t, 2, sub.UsedSpacePercent)
}
