package bookmarks

// desktopUserAgent is sent on every bookmarks request regardless of the
// browser the tokens were captured from.
const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// bookmarkHeaders returns the headers required by the bookmarks GraphQL API.
func bookmarkHeaders(tokens AuthTokens) map[string]string {
	return map[string]string{
		"cookie":          tokens.Cookie,
		"x-csrf-token":    tokens.CSRF,
		"authorization":   tokens.Auth,
		"user-agent":      desktopUserAgent,
		"accept":          "*/*",
		"accept-language": "en-US,en;q=0.9",
	}
}

// bookmarkHeaderOrder keeps the wire order stable across requests.
var bookmarkHeaderOrder = []string{
	"authorization",
	"x-csrf-token",
	"cookie",
	"user-agent",
	"accept",
	"accept-language",
}
