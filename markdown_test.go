package bookmarks

import (
	"strings"
	"testing"
)

func TestTweetToMarkdown(t *testing.T) {
	tw := &Tweet{
		ID:            "1",
		Text:          "hello world",
		CreatedAt:     "2018-10-10T20:19:24.000Z",
		User:          User{Name: "Alice", ScreenName: "alice"},
		FavoriteCount: 3,
		RetweetCount:  2,
		ReplyCount:    1,
		Entities: Entities{
			Hashtags:     []TextEntity{{Text: "go"}, {Text: "rust"}},
			UserMentions: []Mention{{ScreenName: "bob"}},
		},
		Photos: []Photo{{URL: "https://pbs.twimg.com/media/p.jpg"}},
		Videos: []Video{{URL: "https://video.twimg.com/v.mp4"}},
	}

	md := TweetToMarkdown(tw)
	for _, want := range []string{
		"# Tweet by @alice (Alice)\n",
		"**Date:** 10/10/2018 8:19:24 PM\n",
		"**Likes:** 3 | **Retweets:** 2 | **Replies:** 1\n",
		"hello world\n",
		"![Image 1](https://pbs.twimg.com/media/p.jpg)",
		"[Video 1](https://video.twimg.com/v.mp4)",
		"**Hashtags:** #go, #rust\n",
		"**Mentions:** @bob\n",
		"<summary>Raw Tweet Data</summary>",
		`"id_str": "1"`,
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("markdown missing %q:\n%s", want, md)
		}
	}
}

func TestTweetToMarkdown_Minimal(t *testing.T) {
	md := TweetToMarkdown(&Tweet{ID: "2", CreatedAt: "not a date"})
	if !strings.HasPrefix(md, "# Tweet by @unknown (Unknown User)") {
		t.Fatalf("unexpected header:\n%s", md)
	}
	if !strings.Contains(md, "**Date:** not a date") {
		t.Fatal("unparseable dates are kept verbatim")
	}
	for _, absent := range []string{"**Images:**", "**Videos:**", "**Hashtags:**", "**Mentions:**"} {
		if strings.Contains(md, absent) {
			t.Fatalf("unexpected section %q", absent)
		}
	}
}
