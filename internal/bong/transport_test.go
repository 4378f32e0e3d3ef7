package bong

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransportFixedHeaders(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	resp, err := tr.request(context.Background(), http.MethodGet, "/api/v1/channels.json", nil, "session=abc", 0)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "bongtv/1.0", got.Get("User-Agent"))
	assert.Equal(t, "text/plain,application/json", got.Get("Accept"))
	assert.Equal(t, "gzip", got.Get("Accept-Encoding"))
	assert.Equal(t, "session=abc", got.Get("Cookie"))
}

func TestTransportNoCookieHeaderWhenEmpty(t *testing.T) {
	var hadCookie bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hadCookie = r.Header["Cookie"]
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	_, err := tr.request(context.Background(), http.MethodGet, "/x", nil, "", 0)
	require.NoError(t, err)
	assert.False(t, hadCookie)
}

func TestTransportPostForm(t *testing.T) {
	var contentType, body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		contentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		body = r.PostForm.Encode()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	params := url.Values{"login": {"alice"}, "password": {"s3cret"}}
	_, err := tr.request(context.Background(), http.MethodPost, "/login", params, "", 0)
	require.NoError(t, err)

	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, params.Encode(), body)
}

func TestTransportGetQuery(t *testing.T) {
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	params := url.Values{"channel_id": {"33"}, "date": {"24-12-2026"}}
	_, err := tr.request(context.Background(), http.MethodGet, "/broadcasts", params, "", 0)
	require.NoError(t, err)

	assert.Equal(t, "33", query.Get("channel_id"))
	assert.Equal(t, "24-12-2026", query.Get("date"))
}

func TestTransportGunzipsBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		zw.Write([]byte(`{"ok":true}`))
		zw.Close()
		w.Header().Set("Content-Encoding", "gzip")
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	resp, err := tr.request(context.Background(), http.MethodGet, "/x", nil, "", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(resp.body))
}

func TestTransportPlainBodyPassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"plain":1}`))
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	resp, err := tr.request(context.Background(), http.MethodGet, "/x", nil, "", 0)
	require.NoError(t, err)
	assert.JSONEq(t, `{"plain":1}`, string(resp.body))
}

func TestTransportTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, nil)
	_, err := tr.request(context.Background(), http.MethodGet, "/slow", nil, "", 20*time.Millisecond)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.NotErrorIs(t, err, ErrTransport)
}

func TestTransportConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	tr := newTransport(srv.URL, nil)
	_, err := tr.request(context.Background(), http.MethodGet, "/x", nil, "", 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTransport)
}

func TestClassifyStatus(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{200, nil},
		{201, nil},
		{204, nil},
		{301, ErrRedirect},
		{302, ErrRedirect},
		{401, ErrAuthentication},
		{404, ErrNotFound},
		{422, ErrCannotRecord},
		{400, ErrClient},
		{403, ErrClient},
		{500, ErrServer},
		{503, ErrServer},
	}
	for _, tc := range cases {
		got := classifyStatus(tc.status)
		if tc.want == nil {
			assert.NoError(t, got, "status %d", tc.status)
			continue
		}
		assert.True(t, errors.Is(got, tc.want), "status %d: got %v", tc.status, got)
	}
}
