package dataflows

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedditToPostsSkipsStickied(t *testing.T) {
	payload := `{
		"data": {
			"children": [
				{"data": {"id": "p1", "title": "Pinned", "stickied": true}},
				{"data": {
					"id": "p2",
					"title": "NVDA earnings thread",
					"selftext": "thoughts?",
					"permalink": "/r/stocks/comments/p2/",
					"subreddit": "stocks",
					"author": "trader",
					"score": 42,
					"upvote_ratio": 0.93,
					"num_comments": 17,
					"created_utc": 1735689600
				}}
			]
		}
	}`

	var listing redditListing
	require.NoError(t, json.Unmarshal([]byte(payload), &listing))

	posts := redditToPosts(listing)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, "p2", post.ID)
	assert.Equal(t, "stocks", post.Subreddit)
	assert.Equal(t, "https://www.reddit.com/r/stocks/comments/p2/", post.URL)
	assert.Equal(t, 42, post.Score)
	assert.Equal(t, 2025, post.CreatedAt.Year())
	assert.Equal(t, "reddit", post.Source)
}
