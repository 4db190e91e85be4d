package bookmarks

import (
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"sync"
)

// AuthTokens is the session credential triple captured from the user's own
// traffic to x.com. All three values are required together.
type AuthTokens struct {
	Cookie string `json:"cookie"`
	CSRF   string `json:"csrf"`
	Auth   string `json:"auth"`
}

// Complete reports whether all three credentials are present.
func (t AuthTokens) Complete() bool {
	return t.Cookie != "" && t.CSRF != "" && t.Auth != ""
}

// TokenSource is read by the importer before every page request.
type TokenSource interface {
	Tokens() (AuthTokens, bool)
}

var bookmarksOpRe = regexp.MustCompile(`/i/api/graphql/([^/]+)/Bookmarks$`)

// SessionStore holds captured credentials for the lifetime of the process.
// It is never persisted.
type SessionStore struct {
	mu       sync.RWMutex
	tokens   AuthTokens
	opID     string
	logged   bool
	captures int
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Tokens implements TokenSource. ok is false until a complete triple is stored.
func (s *SessionStore) Tokens() (AuthTokens, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokens, s.tokens.Complete()
}

// Set replaces the stored credentials.
func (s *SessionStore) Set(t AuthTokens) {
	s.mu.Lock()
	s.tokens = t
	s.mu.Unlock()
}

// Clear forgets the stored credentials and the observed operation ID.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	s.tokens = AuthTokens{}
	s.opID = ""
	s.logged = false
	s.mu.Unlock()
}

// BookmarksOperationID returns the Bookmarks operation ID last seen in live
// traffic, or "" if none was observed.
func (s *SessionStore) BookmarksOperationID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.opID
}

// Captures returns how many qualifying requests have been observed.
func (s *SessionStore) Captures() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.captures
}

// Capture inspects an outgoing request. When it targets x.com or twitter.com
// and carries Authorization, Cookie and X-Csrf-Token, the values are stored
// and true is returned. headers is only read.
func (s *SessionStore) Capture(rawURL string, headers map[string]string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || !isTwitterHost(u.Hostname()) {
		return false
	}

	t := AuthTokens{
		Auth:   headerValue(headers, "authorization"),
		Cookie: headerValue(headers, "cookie"),
		CSRF:   headerValue(headers, "x-csrf-token"),
	}
	if !t.Complete() {
		return false
	}

	var opID string
	if m := bookmarksOpRe.FindStringSubmatch(u.Path); m != nil {
		opID = m[1]
	}

	s.mu.Lock()
	s.tokens = t
	s.captures++
	if opID != "" {
		s.opID = opID
	}
	first := !s.logged
	s.logged = true
	s.mu.Unlock()

	if first {
		slog.Info("tokens captured", slog.String("host", u.Hostname()))
	}
	if opID != "" {
		slog.Debug("bookmarks operation observed", slog.String("id", opID))
	}
	return true
}

// IsTwitterURL reports whether rawURL points at x.com, twitter.com or one of
// their subdomains.
func IsTwitterURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	return err == nil && isTwitterHost(u.Hostname())
}

// isTwitterHost matches x.com, twitter.com and their subdomains.
func isTwitterHost(host string) bool {
	host = strings.ToLower(host)
	for _, d := range []string{"x.com", "twitter.com"} {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// headerValue looks up a header case-insensitively.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return v
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}
