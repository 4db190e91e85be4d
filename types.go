package bookmarks

// Tweet is a bookmarked tweet normalized from a timeline entry.
// Values are built once by TransformEntry and never mutated afterwards.
type Tweet struct {
	ID                string   `json:"id_str"`
	TypeName          string   `json:"__typename,omitempty"`
	Lang              string   `json:"lang,omitempty"`
	Text              string   `json:"text"`
	CreatedAt         string   `json:"created_at"`
	DisplayTextRange  []int    `json:"display_text_range,omitempty"`
	User              User     `json:"user"`
	Entities          Entities `json:"entities"`
	FavoriteCount     int      `json:"favorite_count"`
	RetweetCount      int      `json:"retweet_count"`
	ReplyCount        int      `json:"reply_count"`
	QuoteCount        int      `json:"quote_count"`
	ConversationCount int      `json:"conversation_count"`
	Photos            []Photo  `json:"photos,omitempty"`
	Videos            []Video  `json:"videos,omitempty"`
}

// User is the author of a tweet. Missing author data yields placeholder values.
type User struct {
	ID              string `json:"id_str"`
	Name            string `json:"name"`
	ScreenName      string `json:"screen_name"`
	ProfileImageURL string `json:"profile_image_url_https"`
	Verified        bool   `json:"verified"`
	BlueVerified    bool   `json:"is_blue_verified"`
}

// Entities holds the parsed text entities of a tweet.
type Entities struct {
	Hashtags     []TextEntity `json:"hashtags"`
	URLs         []URLEntity  `json:"urls"`
	UserMentions []Mention    `json:"user_mentions"`
	Symbols      []TextEntity `json:"symbols"`
}

// TextEntity is a hashtag or cashtag.
type TextEntity struct {
	Indices []int  `json:"indices"`
	Text    string `json:"text"`
}

// URLEntity is a link inside the tweet text.
type URLEntity struct {
	DisplayURL  string `json:"display_url"`
	ExpandedURL string `json:"expanded_url"`
	Indices     []int  `json:"indices"`
	URL         string `json:"url"`
}

// Mention is an @-mention inside the tweet text.
type Mention struct {
	ID         string `json:"id_str"`
	Indices    []int  `json:"indices"`
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
}

// Photo is an attached image.
type Photo struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Video is an attached video or animated gif.
type Video struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url"`
	Duration     int    `json:"duration"`
}

// Page is one decoded bookmarks timeline response.
type Page struct {
	Tweets     []*Tweet
	NextCursor string
}

// Project selects the container tag imported documents are filed under.
type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContainerTag string `json:"containerTag"`
}
