package bookmarks

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const twitterTimeLayout = "Mon Jan 02 15:04:05 +0000 2006"

// bookmarksResponse covers both the timeline and the folder response shapes.
type bookmarksResponse struct {
	Data struct {
		BookmarkTimelineV2 *struct {
			Timeline timelineObj `json:"timeline"`
		} `json:"bookmark_timeline_v2"`
		BookmarkCollectionTimeline *struct {
			Timeline timelineObj `json:"timeline"`
		} `json:"bookmark_collection_timeline"`
	} `json:"data"`
	Errors []struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

// instructions returns the timeline instructions from whichever shape is present.
func (r *bookmarksResponse) instructions() []timelineInstruction {
	if tl := r.Data.BookmarkTimelineV2; tl != nil && len(tl.Timeline.Instructions) > 0 {
		return tl.Timeline.Instructions
	}
	if tl := r.Data.BookmarkCollectionTimeline; tl != nil {
		return tl.Timeline.Instructions
	}
	return nil
}

// --- Timeline types ---

type timelineObj struct {
	Instructions []timelineInstruction `json:"instructions"`
}

type timelineInstruction struct {
	Type    string            `json:"type"`
	Entries []json.RawMessage `json:"entries"`
}

// entryID reads the entryId of one raw entry. ok is false when the entry
// cannot be decoded; the caller skips it.
func entryID(raw json.RawMessage) (id string, ok bool) {
	var head struct {
		EntryID string `json:"entryId"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		slog.Debug("skip timeline entry", slog.Any("error", err))
		return "", false
	}
	return head.EntryID, true
}

type rawEntry struct {
	Content struct {
		Value       string `json:"value"`
		ItemContent *struct {
			TweetResults struct {
				Result *tweetResult `json:"result"`
			} `json:"tweet_results"`
		} `json:"itemContent"`
	} `json:"content"`
}

type tweetResult struct {
	TypeName string `json:"__typename"`
	Core     *struct {
		UserResults *struct {
			Result *userResult `json:"result"`
		} `json:"user_results"`
	} `json:"core"`
	Legacy *tweetLegacy `json:"legacy"`
}

type userResult struct {
	IsBlueVerified bool `json:"is_blue_verified"`
	Legacy         *struct {
		IDStr           string `json:"id_str"`
		Name            string `json:"name"`
		ScreenName      string `json:"screen_name"`
		ProfileImageURL string `json:"profile_image_url_https"`
		Verified        bool   `json:"verified"`
	} `json:"legacy"`
}

type tweetLegacy struct {
	IDStr            string `json:"id_str"`
	FullText         string `json:"full_text"`
	CreatedAt        string `json:"created_at"`
	Lang             string `json:"lang"`
	DisplayTextRange []int  `json:"display_text_range"`
	FavoriteCount    int    `json:"favorite_count"`
	RetweetCount     int    `json:"retweet_count"`
	ReplyCount       int    `json:"reply_count"`
	QuoteCount       int    `json:"quote_count"`
	Entities         struct {
		Hashtags     []TextEntity  `json:"hashtags"`
		URLs         []URLEntity   `json:"urls"`
		UserMentions []Mention     `json:"user_mentions"`
		Symbols      []TextEntity  `json:"symbols"`
		Media        []mediaEntity `json:"media"`
	} `json:"entities"`
}

type mediaEntity struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	Sizes         struct {
		Large struct {
			W int `json:"w"`
			H int `json:"h"`
		} `json:"large"`
	} `json:"sizes"`
	VideoInfo struct {
		Variants []struct {
			URL string `json:"url"`
		} `json:"variants"`
		DurationMillis int `json:"duration_millis"`
	} `json:"video_info"`
}

// ParsePage decodes one bookmarks response into its tweets and next cursor.
// Only a malformed document is an error; bad entries are skipped.
func ParsePage(body []byte) (Page, error) {
	var raw bookmarksResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return Page{}, fmt.Errorf("unmarshal bookmarks: %w", err)
	}
	instructions := raw.instructions()
	if len(instructions) == 0 && len(raw.Errors) > 0 {
		return Page{}, fmt.Errorf("twitter API error: %s", raw.Errors[0].Message)
	}
	return Page{
		Tweets:     extractTweets(instructions),
		NextCursor: nextCursor(instructions),
	}, nil
}

// ExtractTweets returns the tweets of a bookmarks response in source order.
func ExtractTweets(body []byte) ([]*Tweet, error) {
	page, err := ParsePage(body)
	if err != nil {
		return nil, err
	}
	return page.Tweets, nil
}

func extractTweets(instructions []timelineInstruction) []*Tweet {
	var tweets []*Tweet
	for _, instruction := range instructions {
		if instruction.Type != "TimelineAddEntries" {
			continue
		}
		for _, entry := range instruction.Entries {
			id, ok := entryID(entry)
			if !ok || !strings.HasPrefix(id, "tweet-") {
				continue
			}
			if t := TransformEntry(entry); t != nil {
				tweets = append(tweets, t)
			}
		}
	}
	return tweets
}

// ExtractNextCursor returns the pagination cursor of a bookmarks response, or
// "" when there is none or the document cannot be decoded.
func ExtractNextCursor(body []byte) string {
	var raw bookmarksResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return ""
	}
	return nextCursor(raw.instructions())
}

// nextCursor returns the value of the first cursor-bottom- entry in a
// TimelineAddEntries instruction.
func nextCursor(instructions []timelineInstruction) (cursor string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("cursor extraction failed", slog.Any("panic", r))
			cursor = ""
		}
	}()
	for _, instruction := range instructions {
		if instruction.Type != "TimelineAddEntries" {
			continue
		}
		for _, entry := range instruction.Entries {
			id, ok := entryID(entry)
			if !ok || !strings.HasPrefix(id, "cursor-bottom-") {
				continue
			}
			var e rawEntry
			if err := json.Unmarshal(entry, &e); err != nil {
				slog.Debug("skip cursor entry", slog.Any("error", err))
				continue
			}
			return e.Content.Value
		}
	}
	return ""
}

// TransformEntry converts one raw timeline entry into a Tweet. It returns nil
// for deleted or placeholder tweets (no legacy object) and for any entry it
// cannot decode.
func TransformEntry(raw json.RawMessage) (t *Tweet) {
	defer func() {
		if r := recover(); r != nil {
			slog.Debug("skip tweet entry", slog.Any("panic", r))
			t = nil
		}
	}()

	var e rawEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		slog.Debug("skip tweet entry", slog.Any("error", err))
		return nil
	}
	if e.Content.ItemContent == nil || e.Content.ItemContent.TweetResults.Result == nil {
		return nil
	}
	r := e.Content.ItemContent.TweetResults.Result
	if r.Legacy == nil {
		return nil
	}
	l := r.Legacy

	createdAt, err := normalizeTime(l.CreatedAt)
	if err != nil {
		slog.Debug("skip tweet entry", slog.String("tweet_id", l.IDStr), slog.Any("error", err))
		return nil
	}

	tw := &Tweet{
		ID:               l.IDStr,
		TypeName:         r.TypeName,
		Lang:             l.Lang,
		Text:             l.FullText,
		CreatedAt:        createdAt,
		DisplayTextRange: l.DisplayTextRange,
		User:             parseUser(r),
		Entities: Entities{
			Hashtags:     orEmpty(l.Entities.Hashtags),
			URLs:         orEmpty(l.Entities.URLs),
			UserMentions: orEmpty(l.Entities.UserMentions),
			Symbols:      orEmpty(l.Entities.Symbols),
		},
		FavoriteCount:     l.FavoriteCount,
		RetweetCount:      l.RetweetCount,
		ReplyCount:        l.ReplyCount,
		QuoteCount:        l.QuoteCount,
		ConversationCount: l.ReplyCount,
	}

	for _, m := range l.Entities.Media {
		switch m.Type {
		case "photo":
			tw.Photos = append(tw.Photos, Photo{
				URL:    m.MediaURLHTTPS,
				Width:  m.Sizes.Large.W,
				Height: m.Sizes.Large.H,
			})
		case "video":
			var u string
			if len(m.VideoInfo.Variants) > 0 {
				u = m.VideoInfo.Variants[0].URL
			}
			tw.Videos = append(tw.Videos, Video{
				URL:          u,
				ThumbnailURL: m.MediaURLHTTPS,
				Duration:     m.VideoInfo.DurationMillis,
			})
		}
	}
	return tw
}

// parseUser extracts the author, falling back to placeholders.
func parseUser(r *tweetResult) User {
	u := User{Name: "Unknown", ScreenName: "unknown"}
	if r.Core == nil || r.Core.UserResults == nil || r.Core.UserResults.Result == nil {
		return u
	}
	ur := r.Core.UserResults.Result
	u.BlueVerified = ur.IsBlueVerified
	if ur.Legacy == nil {
		return u
	}
	u.ID = ur.Legacy.IDStr
	u.ProfileImageURL = ur.Legacy.ProfileImageURL
	u.Verified = ur.Legacy.Verified
	if ur.Legacy.Name != "" {
		u.Name = ur.Legacy.Name
	}
	if ur.Legacy.ScreenName != "" {
		u.ScreenName = ur.Legacy.ScreenName
	}
	return u
}

// normalizeTime converts Twitter's created_at into RFC 3339 UTC.
func normalizeTime(v string) (string, error) {
	t, err := time.Parse(twitterTimeLayout, v)
	if err != nil {
		return "", fmt.Errorf("created_at %q: %w", v, err)
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z"), nil
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
