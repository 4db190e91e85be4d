package bookmarks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// TweetToMarkdown renders a tweet as the markdown document stored in memory.
// The raw normalized tweet is appended in a collapsed details block.
func TweetToMarkdown(t *Tweet) string {
	username := t.User.ScreenName
	if username == "" {
		username = "unknown"
	}
	displayName := t.User.Name
	if displayName == "" {
		displayName = "Unknown User"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Tweet by @%s (%s)\n\n", username, displayName)
	fmt.Fprintf(&b, "**Date:** %s\n", formatTweetDate(t.CreatedAt))
	fmt.Fprintf(&b, "**Likes:** %d | **Retweets:** %d | **Replies:** %d\n\n", t.FavoriteCount, t.RetweetCount, t.ReplyCount)
	b.WriteString(t.Text)
	b.WriteString("\n\n")

	if len(t.Photos) > 0 {
		b.WriteString("**Images:**\n")
		for i, p := range t.Photos {
			fmt.Fprintf(&b, "![Image %d](%s)\n", i+1, p.URL)
		}
		b.WriteString("\n")
	}
	if len(t.Videos) > 0 {
		b.WriteString("**Videos:**\n")
		for i, v := range t.Videos {
			fmt.Fprintf(&b, "[Video %d](%s)\n", i+1, v.URL)
		}
		b.WriteString("\n")
	}

	if len(t.Entities.Hashtags) > 0 {
		tags := make([]string, len(t.Entities.Hashtags))
		for i, h := range t.Entities.Hashtags {
			tags[i] = "#" + h.Text
		}
		fmt.Fprintf(&b, "**Hashtags:** %s\n", strings.Join(tags, ", "))
	}
	if len(t.Entities.UserMentions) > 0 {
		mentions := make([]string, len(t.Entities.UserMentions))
		for i, m := range t.Entities.UserMentions {
			mentions[i] = "@" + m.ScreenName
		}
		fmt.Fprintf(&b, "**Mentions:** %s\n", strings.Join(mentions, ", "))
	}

	raw, _ := json.MarshalIndent(t, "", "  ")
	fmt.Fprintf(&b, "\n---\n<details>\n<summary>Raw Tweet Data</summary>\n\n```json\n%s\n```\n</details>", raw)
	return b.String()
}

func formatTweetDate(v string) string {
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return v
	}
	return t.Format("1/2/2006 3:04:05 PM")
}
