package models

import "time"

// NewsArticle is a normalized article from any news source.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Content     string    `json:"content,omitempty"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}

// SocialPost is a normalized social media post (Reddit and similar).
type SocialPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Text        string    `json:"text,omitempty"`
	URL         string    `json:"url,omitempty"`
	Author      string    `json:"author"`
	Subreddit   string    `json:"subreddit,omitempty"`
	Score       int       `json:"score"`
	UpvoteRatio float64   `json:"upvote_ratio,omitempty"`
	NumComments int       `json:"num_comments"`
	CreatedAt   time.Time `json:"created_at"`
	Source      string    `json:"source"`
}

// ResearchPaper is an arXiv search result.
type ResearchPaper struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Summary    string    `json:"summary"`
	Authors    []string  `json:"authors"`
	Published  time.Time `json:"published"`
	Updated    time.Time `json:"updated"`
	PDFURL     string    `json:"pdf_url"`
	Categories []string  `json:"categories"`
	Source     string    `json:"source"`
}

// Filing is metadata for a downloaded SEC filing.
type Filing struct {
	Ticker     string    `json:"ticker"`
	FilingType string    `json:"filing_type"`
	AccessionNumber string `json:"accession_number,omitempty"`
	Filename   string    `json:"filename"`
	Path       string    `json:"path"`
	SizeBytes  int64     `json:"size_bytes"`
	FiledAt    time.Time `json:"filed_at"`
	Source     string    `json:"source"`
}

// WebPage is a Tavily web search result.
type WebPage struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Source  string `json:"source"`
	Score   float64 `json:"score,omitempty"`
}
