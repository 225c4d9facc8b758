package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"pollpulse.io/pollpulse/lib/poll"
)

type Poll struct {
	s *poll.Snapshot
}

func NewPoll(s *poll.Snapshot) *Poll {
	return &Poll{s: s}
}

func (p Poll) GetMap() hal.Entry {
	options := make([]hal.Entry, 0, len(p.s.Options))
	for _, o := range p.s.Options {
		options = append(options, hal.Entry{
			"id":    o.ID,
			"text":  o.Text,
			"votes": o.Votes,
		})
	}

	return hal.Entry{
		"id":          p.s.ID,
		"question":    p.s.Question,
		"options":     options,
		"total_votes": p.s.TotalVotes,
		"is_active":   p.s.IsActive,
		"created_at":  p.s.CreatedAt,
	}
}

func (p Poll) Resource() *hal.Resource {
	r := hal.NewResource(p, p.LinkSelf())
	r.AddNewLink("votes", strings.Replace(URLVotes, "{id}", p.s.ID, -1))
	return r
}

func (p Poll) LinkSelf() string {
	return strings.Replace(URLPoll, "{id}", p.s.ID, -1)
}
