package bookmarks

import (
	"encoding/json"
	"net/url"
	"strings"
)

// timelinePageSize is the number of entries requested per bookmarks page.
const timelinePageSize = 100

// TimelineVariables builds the variables for one bookmarks timeline page.
// The cursor is omitted for the first page.
func TimelineVariables(cursor string) map[string]any {
	variables := map[string]any{
		"count":                  timelinePageSize,
		"includePromotedContent": false,
	}
	if cursor != "" {
		variables["cursor"] = cursor
	}
	return variables
}

// FolderVariables builds the variables for a bookmark folder request.
// Folder requests are never paginated.
func FolderVariables(folderID string) map[string]any {
	return map[string]any{
		"bookmark_collection_id": folderID,
		"includePromotedContent": true,
	}
}

// BuildTimelineURL returns the Bookmarks request URL for the given cursor.
func BuildTimelineURL(ep Endpoint, cursor string) string {
	return addGraphQLParams(ep.URL(), ep.Features, TimelineVariables(cursor))
}

// BuildFolderURL returns the BookmarkFolderTimeline request URL.
func BuildFolderURL(ep Endpoint, folderID string) string {
	return addGraphQLParams(ep.URL(), ep.Features, FolderVariables(folderID))
}

// addGraphQLParams appends features and variables as JSON query parameters.
func addGraphQLParams(base string, features, variables map[string]any) string {
	f, _ := json.Marshal(features)
	v, _ := json.Marshal(variables)
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "features=" + jsonEscape(f) + "&variables=" + jsonEscape(v)
}

// jsonEscape percent-encodes a JSON document the way browsers encode a URI
// component: spaces become %20, never '+'.
func jsonEscape(b []byte) string {
	return strings.ReplaceAll(url.QueryEscape(string(b)), "+", "%20")
}
