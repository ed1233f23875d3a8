package reddit

import "encoding/json"

// Post is the subset of a listed submission the pipeline consumes.
type Post struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	SelfText    string  `json:"selftext"`
	URL         string  `json:"url"`
	IsSelf      bool    `json:"is_self"`
	Score       int     `json:"score"`
	CreatedUTC  float64 `json:"created_utc"`
	NumComments int     `json:"num_comments"`
	Subreddit   string  `json:"subreddit"`
}

// Comment is one reply as returned by the comments endpoint.
type Comment struct {
	ID       string  `json:"id"`
	Author   string  `json:"author"`
	Body     string  `json:"body"`
	BodyHTML string  `json:"body_html"`
	Score    int     `json:"score"`
	Created  float64 `json:"created_utc"`
}

// thing is the generic kind/data envelope the API wraps everything in.
type thing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type listing struct {
	Kind string `json:"kind"`
	Data struct {
		After    string  `json:"after"`
		Children []thing `json:"children"`
	} `json:"data"`
}

// moreStub is the collapsed "load more comments" placeholder node.
type moreStub struct {
	Children []string `json:"children"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type moreChildrenResponse struct {
	JSON struct {
		Data struct {
			Things []thing `json:"things"`
		} `json:"data"`
	} `json:"json"`
}
