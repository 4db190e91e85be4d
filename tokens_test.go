package bookmarks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullHeaders() map[string]string {
	return map[string]string{
		"Authorization": "Bearer AAAA",
		"Cookie":        "auth_token=x; ct0=csrf",
		"X-Csrf-Token":  "csrf",
		"Accept":        "*/*",
	}
}

func TestCapture_StoresCompleteTriple(t *testing.T) {
	s := NewSessionStore()
	_, ok := s.Tokens()
	require.False(t, ok)

	assert.True(t, s.Capture("https://x.com/i/api/graphql/abc/HomeTimeline?variables=%7B%7D", fullHeaders()))

	tok, ok := s.Tokens()
	require.True(t, ok)
	assert.Equal(t, AuthTokens{Cookie: "auth_token=x; ct0=csrf", CSRF: "csrf", Auth: "Bearer AAAA"}, tok)
	assert.Equal(t, 1, s.Captures())
}

func TestCapture_CaseInsensitiveHeaders(t *testing.T) {
	s := NewSessionStore()
	h := map[string]string{
		"authorization": "Bearer a",
		"COOKIE":        "c",
		"x-csrf-token":  "t",
	}
	assert.True(t, s.Capture("https://api.twitter.com/1.1/foo.json", h))
	tok, ok := s.Tokens()
	require.True(t, ok)
	assert.Equal(t, "c", tok.Cookie)
}

func TestCapture_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		headers map[string]string
	}{
		{"other host", "https://example.com/i/api/graphql/x/Bookmarks", fullHeaders()},
		{"lookalike host", "https://notx.com/home", fullHeaders()},
		{"bad url", "://", fullHeaders()},
		{"missing csrf", "https://x.com/home", map[string]string{"Authorization": "a", "Cookie": "c"}},
		{"empty auth", "https://x.com/home", map[string]string{"Authorization": "", "Cookie": "c", "X-Csrf-Token": "t"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSessionStore()
			assert.False(t, s.Capture(tt.url, tt.headers))
			_, ok := s.Tokens()
			assert.False(t, ok)
		})
	}
}

func TestCapture_DoesNotModifyHeaders(t *testing.T) {
	h := fullHeaders()
	before := len(h)
	NewSessionStore().Capture("https://x.com/home", h)
	assert.Len(t, h, before)
	assert.Equal(t, "Bearer AAAA", h["Authorization"])
}

func TestCapture_RecordsBookmarksOperationID(t *testing.T) {
	s := NewSessionStore()
	assert.Empty(t, s.BookmarksOperationID())

	s.Capture("https://x.com/i/api/graphql/NEWID123/Bookmarks", fullHeaders())
	assert.Equal(t, "NEWID123", s.BookmarksOperationID())

	// Other operations leave it alone.
	s.Capture("https://x.com/i/api/graphql/zzz/BookmarkFolderTimeline", fullHeaders())
	assert.Equal(t, "NEWID123", s.BookmarksOperationID())
}

func TestCapture_LatestWins(t *testing.T) {
	s := NewSessionStore()
	s.Capture("https://x.com/a", fullHeaders())
	h := fullHeaders()
	h["X-Csrf-Token"] = "rotated"
	s.Capture("https://x.com/b", h)

	tok, _ := s.Tokens()
	assert.Equal(t, "rotated", tok.CSRF)
	assert.Equal(t, 2, s.Captures())
}

func TestSessionStore_Clear(t *testing.T) {
	s := NewSessionStore()
	s.Capture("https://x.com/i/api/graphql/ID/Bookmarks", fullHeaders())
	s.Clear()

	_, ok := s.Tokens()
	assert.False(t, ok)
	assert.Empty(t, s.BookmarksOperationID())
}

func TestAuthTokens_Complete(t *testing.T) {
	assert.True(t, AuthTokens{Cookie: "c", CSRF: "t", Auth: "a"}.Complete())
	assert.False(t, AuthTokens{Cookie: "c", CSRF: "t"}.Complete())
	assert.False(t, AuthTokens{}.Complete())
}
