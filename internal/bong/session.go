package bong

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/adler32"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/tvheim/bongtv/internal/ratelimit"
)

const (
	loginPath = "/api/v1/user_sessions.json"

	// DefaultCallDelay is the minimum interval between provider calls when
	// the configuration does not override it.
	DefaultCallDelay = 1 * time.Second

	// DefaultTimeout bounds a single provider request.
	DefaultTimeout = 30 * time.Second
)

// Credentials is the provider account login pair. Both fields must be
// non-empty; the library never prompts.
type Credentials struct {
	Username string
	Password string
}

// SessionConfig carries the collaborators and knobs shared by all session
// constructors.
type SessionConfig struct {
	BaseURL    string          // provider endpoint, e.g. "http://bong.tv"
	CookieDir  string          // directory for the per-user cookie cache
	Timeout    time.Duration   // per-call timeout, DefaultTimeout when zero
	HTTPClient *http.Client    // optional, a plain client when nil
	Gate       *ratelimit.Gate // optional, DefaultCallDelay gate when nil
	Logger     *slog.Logger    // optional, slog.Default() when nil
}

// Session owns the authentication state against the provider: either a
// credential pair that can log in, or an externally supplied session cookie.
// It is Unauthenticated until a cookie is held and falls back to
// Unauthenticated when the provider rejects the cookie with a 401. Validity is
// discovered reactively; there is no expiry tracking.
type Session struct {
	mu     sync.Mutex
	creds  *Credentials
	cookie string

	cookieDir string
	timeout   time.Duration
	transport *transport
	gate      *ratelimit.Gate
	logger    *slog.Logger
}

// NewSession creates a credential-backed session. The cookie cache on disk is
// keyed by a stable hash of the credential pair, so a previous login can be
// reused without contacting the provider.
func NewSession(creds Credentials, cfg SessionConfig) (*Session, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, ErrNoCredentials
	}
	s := newSession(cfg)
	s.creds = &creds
	return s, nil
}

// NewCookieSession creates a session from an existing cookie string. There is
// no login fallback: once the provider rejects the cookie the session cannot
// recover on its own.
func NewCookieSession(cookie string, cfg SessionConfig) (*Session, error) {
	cookie = strings.TrimSpace(cookie)
	if cookie == "" {
		return nil, ErrEmptyCookie
	}
	s := newSession(cfg)
	s.cookie = cookie
	return s, nil
}

// NewCookieSessionFromReader reads the cookie verbatim from r.
func NewCookieSessionFromReader(r io.Reader, cfg SessionConfig) (*Session, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading cookie: %w", err)
	}
	return NewCookieSession(string(b), cfg)
}

// NewCookieSessionFromFile reads the cookie from a file path.
func NewCookieSessionFromFile(path string, cfg SessionConfig) (*Session, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cookie file: %w", err)
	}
	return NewCookieSession(string(b), cfg)
}

func newSession(cfg SessionConfig) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Gate == nil {
		cfg.Gate = ratelimit.NewGate(DefaultCallDelay)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Session{
		cookieDir: cfg.CookieDir,
		timeout:   cfg.Timeout,
		transport: newTransport(cfg.BaseURL, cfg.HTTPClient),
		gate:      cfg.Gate,
		logger:    cfg.Logger,
	}
}

// Call is the single authenticated-call primitive. It ensures a cookie,
// issues the gated request, and interprets the status exactly once: 2xx
// decodes the body and returns the named top-level JSON field, 401 discards
// the cookie (held and cached) and reports ErrAuthentication, everything else
// maps through the taxonomy. With field == "" the body is discarded.
func (s *Session) Call(ctx context.Context, method, path string, params url.Values, field string) (json.RawMessage, error) {
	cookie, err := s.ensureCookie(ctx)
	if err != nil {
		return nil, err
	}

	op := method + " " + path
	var resp *response
	err = s.gate.Do(ctx, func(ctx context.Context) error {
		r, reqErr := s.transport.request(ctx, method, path, params, cookie, s.timeout)
		if reqErr != nil {
			return reqErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	if resp.status == http.StatusUnauthorized {
		s.invalidate()
		return nil, apiErr(op, ErrAuthentication, resp.status, "")
	}
	if err := classifyStatus(resp.status); err != nil {
		return nil, apiErr(op, err, resp.status, trimBody(resp.body))
	}
	if field == "" {
		return nil, nil
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(resp.body, &payload); err != nil {
		return nil, &APIError{Sentinel: ErrBadResponse, Operation: op, Status: resp.status, Err: err}
	}
	raw, ok := payload[field]
	if !ok {
		return nil, apiErr(op, ErrBadResponse, resp.status, fmt.Sprintf("missing field %q", field))
	}
	return raw, nil
}

// Login performs the login handshake unconditionally and returns the decoded
// response body, which carries the account's subscription details. The fresh
// cookie replaces the held one and is persisted.
func (s *Session) Login(ctx context.Context) (*loginDTO, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx)
}

// ensureCookie returns the held cookie, falling back to the disk cache and
// finally a fresh login. A cached cookie is trusted optimistically; a stale
// one is found out by the next 401.
func (s *Session) ensureCookie(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cookie != "" {
		return s.cookie, nil
	}
	if s.creds == nil {
		return "", ErrNoCredentials
	}
	if b, err := os.ReadFile(s.cookiePath()); err == nil {
		if cookie := strings.TrimSpace(string(b)); cookie != "" {
			s.logger.Debug("session cookie loaded from cache", "path", s.cookiePath())
			s.cookie = cookie
			return s.cookie, nil
		}
	}
	if _, err := s.login(ctx); err != nil {
		return "", err
	}
	return s.cookie, nil
}

// login POSTs the credentials and adopts the Set-Cookie value. Caller holds
// s.mu.
func (s *Session) login(ctx context.Context) (*loginDTO, error) {
	if s.creds == nil {
		return nil, ErrNoCredentials
	}

	params := url.Values{
		"login":    {s.creds.Username},
		"password": {s.creds.Password},
	}
	var resp *response
	err := s.gate.Do(ctx, func(ctx context.Context) error {
		r, reqErr := s.transport.request(ctx, http.MethodPost, loginPath, params, "", s.timeout)
		if reqErr != nil {
			return reqErr
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(resp.status); err != nil {
		return nil, apiErr("login", err, resp.status, trimBody(resp.body))
	}

	cookie := resp.header.Get("Set-Cookie")
	if cookie == "" {
		return nil, apiErr("login", ErrBadResponse, resp.status, "missing Set-Cookie header")
	}

	var body loginDTO
	if err := json.Unmarshal(resp.body, &body); err != nil {
		s.logger.Debug("login body not decodable", "error", err)
	}

	if err := s.writeCookie(cookie); err != nil {
		// a session that cannot cache its cookie still works, it just
		// logs in again next time
		s.logger.Warn("failed to persist session cookie", "error", err)
	}
	s.cookie = cookie
	s.logger.Info("logged in", "user", s.creds.Username)
	return &body, nil
}

// invalidate drops the held cookie and the cached copy so the next call runs
// a fresh login.
func (s *Session) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cookie = ""
	if s.creds != nil {
		if err := os.Remove(s.cookiePath()); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to remove cached cookie", "error", err)
		}
	}
	s.logger.Info("session invalidated by provider")
}

func (s *Session) writeCookie(cookie string) error {
	if err := os.MkdirAll(s.cookieDir, 0o700); err != nil {
		return err
	}
	// whole-file overwrite, never append
	return os.WriteFile(s.cookiePath(), []byte(cookie), 0o600)
}

// cookiePath derives the per-user cache file name from a stable hash of the
// credential pair, so distinct accounts never share a cookie.
func (s *Session) cookiePath() string {
	sum := adler32.Checksum([]byte(s.creds.Username + "|" + s.creds.Password))
	return filepath.Join(s.cookieDir, fmt.Sprintf("%s-%d.cookie", s.creds.Username, sum))
}

func trimBody(b []byte) string {
	const max = 200
	t := strings.TrimSpace(string(b))
	if len(t) > max {
		t = t[:max] + "..."
	}
	return t
}
