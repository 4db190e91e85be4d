package bookmarks

import "fmt"

const graphqlBase = "https://x.com/i/api/graphql"

// Endpoint holds the operation ID, operation name, and per-operation feature flags.
type Endpoint struct {
	ID       string
	Name     string
	Features map[string]any
}

// URL returns the full URL for this endpoint.
func (e Endpoint) URL() string {
	return fmt.Sprintf("%s/%s/%s", graphqlBase, e.ID, e.Name)
}

// WithID returns a copy of the endpoint using a different operation ID.
// An empty id keeps the compiled-in one.
func (e Endpoint) WithID(id string) Endpoint {
	if id != "" {
		e.ID = id
	}
	return e
}

// BookmarksEndpoint is the paginated bookmarks timeline.
var BookmarksEndpoint = Endpoint{
	ID:       "xLjCVTqYWz8CGSprLU349w",
	Name:     "Bookmarks",
	Features: bookmarksFeatures(),
}

// BookmarkFolderEndpoint is the single-page bookmark folder timeline.
var BookmarkFolderEndpoint = Endpoint{
	ID:       "I8Y9ni1dqP-ZSpwxqJQ--Q",
	Name:     "BookmarkFolderTimeline",
	Features: bookmarkFolderFeatures(),
}

// bookmarksFeatures returns the feature flags the Bookmarks operation expects.
// The API rejects requests with missing or unknown flags.
func bookmarksFeatures() map[string]any {
	return map[string]any{
		"graphql_timeline_v2_bookmark_timeline":                                   true,
		"responsive_web_graphql_exclude_directive_enabled":                        true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_enhance_cards_enabled":                                    false,
		"rweb_tipjar_consumption_enabled":                                         true,
		"responsive_web_twitter_article_notes_tab_enabled":                        true,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"longform_notetweets_inline_media_enabled":                                true,
		"responsive_web_media_download_video_enabled":                             false,
		"responsive_web_text_conversations_enabled":                               false,
		"creator_subscriptions_quote_tweet_preview_enabled":                       true,
		"view_counts_everywhere_api_enabled":                                      true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"tweetypie_unmention_optimization_enabled":                                true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"tweet_awards_web_tipping_enabled":                                        true,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"longform_notetweets_consumption_enabled":                                 true,
		"articles_preview_enabled":                                                true,
		"rweb_video_timestamps_enabled":                                           true,
		"verified_phone_label_enabled":                                            true,
	}
}

// bookmarkFolderFeatures returns the feature flags for BookmarkFolderTimeline.
func bookmarkFolderFeatures() map[string]any {
	return map[string]any{
		"rweb_video_screen_enabled":                                               false,
		"payments_enabled":                                                        false,
		"profile_label_improvements_pcf_label_in_post_enabled":                    true,
		"responsive_web_profile_redirect_enabled":                                 false,
		"rweb_tipjar_consumption_enabled":                                         true,
		"verified_phone_label_enabled":                                            false,
		"creator_subscriptions_tweet_preview_api_enabled":                         true,
		"responsive_web_graphql_timeline_navigation_enabled":                      true,
		"responsive_web_graphql_skip_user_profile_image_extensions_enabled":       false,
		"premium_content_api_read_enabled":                                        false,
		"communities_web_enable_tweet_community_results_fetch":                    true,
		"c9s_tweet_anatomy_moderator_badge_enabled":                               true,
		"responsive_web_grok_analyze_button_fetch_trends_enabled":                 false,
		"responsive_web_grok_analyze_post_followups_enabled":                      true,
		"responsive_web_jetfuel_frame":                                            true,
		"responsive_web_grok_share_attachment_enabled":                            true,
		"articles_preview_enabled":                                                true,
		"responsive_web_edit_tweet_api_enabled":                                   true,
		"graphql_is_translatable_rweb_tweet_is_translatable_enabled":              true,
		"view_counts_everywhere_api_enabled":                                      true,
		"longform_notetweets_consumption_enabled":                                 true,
		"responsive_web_twitter_article_tweet_consumption_enabled":                true,
		"tweet_awards_web_tipping_enabled":                                        false,
		"responsive_web_grok_show_grok_translated_post":                           true,
		"responsive_web_grok_analysis_button_from_backend":                        true,
		"creator_subscriptions_quote_tweet_preview_enabled":                       false,
		"freedom_of_speech_not_reach_fetch_enabled":                               true,
		"standardized_nudges_misinfo":                                             true,
		"tweet_with_visibility_results_prefer_gql_limited_actions_policy_enabled": true,
		"longform_notetweets_rich_text_read_enabled":                              true,
		"longform_notetweets_inline_media_enabled":                                true,
		"responsive_web_grok_image_annotation_enabled":                            true,
		"responsive_web_grok_imagine_annotation_enabled":                          true,
		"responsive_web_grok_community_note_auto_translation_is_enabled":          false,
		"responsive_web_enhance_cards_enabled":                                    false,
	}
}
