package bookmarks

import (
	"encoding/json"
	"net/url"
	"strings"
	"testing"
)

func decodeParam(t *testing.T, rawURL, name string) map[string]any {
	t.Helper()
	u, err := url.Parse(rawURL)
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(u.Query().Get(name)), &m); err != nil {
		t.Fatalf("decode %s: %v", name, err)
	}
	return m
}

func TestBuildTimelineURL_FirstPage(t *testing.T) {
	got := BuildTimelineURL(BookmarksEndpoint, "")
	if !strings.HasPrefix(got, "https://x.com/i/api/graphql/xLjCVTqYWz8CGSprLU349w/Bookmarks?features=") {
		t.Fatalf("unexpected URL %s", got)
	}
	if strings.Contains(got, "+") {
		t.Fatal("spaces must be encoded as %20")
	}

	vars := decodeParam(t, got, "variables")
	if vars["count"] != float64(100) {
		t.Fatalf("expected count 100, got %v", vars["count"])
	}
	if vars["includePromotedContent"] != false {
		t.Fatal("expected includePromotedContent false")
	}
	if _, ok := vars["cursor"]; ok {
		t.Fatal("first page must not carry a cursor")
	}

	features := decodeParam(t, got, "features")
	if len(features) != len(BookmarksEndpoint.Features) {
		t.Fatalf("expected %d features, got %d", len(BookmarksEndpoint.Features), len(features))
	}
}

func TestBuildTimelineURL_Cursor(t *testing.T) {
	vars := decodeParam(t, BuildTimelineURL(BookmarksEndpoint, "DAABCgAB+/=="), "variables")
	if vars["cursor"] != "DAABCgAB+/==" {
		t.Fatalf("cursor not round-tripped: %v", vars["cursor"])
	}
}

func TestBuildFolderURL(t *testing.T) {
	got := BuildFolderURL(BookmarkFolderEndpoint, "1234567890")
	if !strings.HasPrefix(got, "https://x.com/i/api/graphql/I8Y9ni1dqP-ZSpwxqJQ--Q/BookmarkFolderTimeline?") {
		t.Fatalf("unexpected URL %s", got)
	}
	vars := decodeParam(t, got, "variables")
	if vars["bookmark_collection_id"] != "1234567890" {
		t.Fatalf("unexpected folder id %v", vars["bookmark_collection_id"])
	}
	if vars["includePromotedContent"] != true {
		t.Fatal("expected includePromotedContent true")
	}
	if _, ok := vars["cursor"]; ok {
		t.Fatal("folder requests are not paginated")
	}
}

func TestEndpointWithID(t *testing.T) {
	ep := BookmarksEndpoint.WithID("live")
	if ep.URL() != "https://x.com/i/api/graphql/live/Bookmarks" {
		t.Fatalf("unexpected URL %s", ep.URL())
	}
	if BookmarksEndpoint.ID != "xLjCVTqYWz8CGSprLU349w" {
		t.Fatal("WithID must not modify the original endpoint")
	}
	if BookmarksEndpoint.WithID("").ID != BookmarksEndpoint.ID {
		t.Fatal("empty id must keep the compiled-in one")
	}
}

func TestBookmarkHeaders(t *testing.T) {
	h := bookmarkHeaders(AuthTokens{Cookie: "c", CSRF: "t", Auth: "Bearer a"})
	want := map[string]string{
		"cookie":          "c",
		"x-csrf-token":    "t",
		"authorization":   "Bearer a",
		"accept":          "*/*",
		"accept-language": "en-US,en;q=0.9",
	}
	for k, v := range want {
		if h[k] != v {
			t.Fatalf("header %s = %q, want %q", k, h[k], v)
		}
	}
	if !strings.Contains(h["user-agent"], "Chrome/") {
		t.Fatalf("unexpected user agent %q", h["user-agent"])
	}
	if len(bookmarkHeaderOrder) != len(h) {
		t.Fatalf("header order lists %d headers, map has %d", len(bookmarkHeaderOrder), len(h))
	}
}
