package dataflows

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTweetsToPostsResolvesAuthors(t *testing.T) {
	payload := `{
		"data": [
			{
				"id": "1801",
				"text": "NVDA guidance looks strong into Q3",
				"author_id": "u1",
				"created_at": "2026-08-20T14:30:00Z",
				"public_metrics": {"retweet_count": 12, "reply_count": 4, "like_count": 88}
			},
			{
				"id": "1802",
				"text": "Rates market pricing two more cuts",
				"author_id": "u9",
				"created_at": "2026-08-21T09:00:00Z",
				"public_metrics": {"retweet_count": 1, "reply_count": 0, "like_count": 5}
			}
		],
		"includes": {"users": [{"id": "u1", "name": "Macro Desk", "username": "macrodesk"}]}
	}`

	var resp twitterResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	posts := tweetsToPosts(&resp, "twitter")
	require.Len(t, posts, 2)

	assert.Equal(t, "1801", posts[0].ID)
	assert.Equal(t, "macrodesk", posts[0].Author)
	assert.Equal(t, 100, posts[0].Score)
	assert.Equal(t, 4, posts[0].NumComments)
	assert.Equal(t, "twitter", posts[0].Source)
	assert.Equal(t, "https://twitter.com/i/web/status/1801", posts[0].URL)

	// Author missing from includes falls back to the raw id.
	assert.Equal(t, "u9", posts[1].Author)
}

func TestClampTweetCount(t *testing.T) {
	assert.Equal(t, 100, clampTweetCount(0))
	assert.Equal(t, 100, clampTweetCount(500))
	assert.Equal(t, 10, clampTweetCount(3))
	assert.Equal(t, 42, clampTweetCount(42))
}
