package client

import (
	"encoding/json"
)

type Problem struct {
	Type     string                     `json:"type"`
	Title    string                     `json:"title"`
	Status   int                        `json:"status"`
	Detail   string                     `json:"detail,omitempty"`
	Instance string                     `json:"instance,omitempty"`
	Data     map[string]json.RawMessage `json:"data,omitempty"`
}

// Error wraps the problem document of a non-2xx response.
type Error struct {
	Problem Problem
}

func (e Error) Error() string {
	return e.Problem.Title
}

type Link struct {
	Href      string `json:"href"`
	Templated bool   `json:"templated,omitempty"`
}

type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes uint64 `json:"votes"`
}

type Poll struct {
	Links struct {
		Self  Link `json:"self"`
		Votes Link `json:"votes"`
	} `json:"_links"`

	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Options    []Option `json:"options"`
	TotalVotes uint64   `json:"total_votes"`
	IsActive   bool     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`
}

type PollsPage struct {
	Links struct {
		Self Link `json:"self"`
	} `json:"_links"`
	Embedded struct {
		Records []Poll `json:"records"`
	} `json:"_embedded"`
}

type VoteStatus struct {
	PollID   string `json:"poll_id"`
	HasVoted bool   `json:"has_voted"`
}

// PollEvent is one frame of the live stream.
type PollEvent struct {
	Event string `json:"event"`
	Poll  *Poll  `json:"poll,omitempty"`
}
