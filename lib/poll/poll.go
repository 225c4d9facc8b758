package poll

import (
	"encoding/json"
	"sync"
	"time"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
)

// Option is one choice of a poll. The vote counter only ever grows;
// there is no vote retraction.
type Option struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Votes uint64 `json:"votes"`
}

//
// Poll owns a question and its options. All mutation goes through the
// registry's admission path or `Close`; both take the poll's own lock,
// so two polls never contend with each other.
//
// Invariant: `totalVotes` equals the sum of the option counters at
// every point a lock is not held. Once closed, a poll never becomes
// active again.
//
type Poll struct {
	sync.RWMutex

	id         string
	question   string
	options    []Option
	totalVotes uint64
	isActive   bool
	createdAt  time.Time
	createdBy  string

	// seq grows with every state change; snapshots carry it so the
	// broadcaster can order them
	seq uint64
}

func NewPoll(question string, optionTexts []string, createdBy string) (*Poll, error) {
	if len(question) < 1 {
		return nil, errors.ErrorValidationFailed
	}
	if len(optionTexts) < common.MinPollOptions || len(optionTexts) > common.MaxPollOptions {
		return nil, errors.ErrorValidationFailed
	}

	options := make([]Option, 0, len(optionTexts))
	for _, text := range optionTexts {
		options = append(options, Option{
			ID:   common.GenerateToken(common.OptionIDLength),
			Text: text,
		})
	}

	return &Poll{
		question:  question,
		options:   options,
		isActive:  true,
		createdAt: time.Now(),
		createdBy: createdBy,
	}, nil
}

func (p *Poll) ID() string {
	p.RLock()
	defer p.RUnlock()
	return p.id
}

func (p *Poll) IsActive() bool {
	p.RLock()
	defer p.RUnlock()
	return p.isActive
}

// AddVote increments the counter of the given option and the poll
// total, and returns the resulting snapshot. Nothing is touched when
// the option id is unknown or the poll is closed.
func (p *Poll) AddVote(optionID string) (*Snapshot, error) {
	p.Lock()
	defer p.Unlock()

	// a close can land after the admission pipeline's active check; the
	// counters of a closed poll must never move
	if !p.isActive {
		return nil, errors.ErrorPollClosed
	}

	for i := range p.options {
		if p.options[i].ID != optionID {
			continue
		}
		p.options[i].Votes++
		p.totalVotes++
		p.seq++
		return p.snapshot(), nil
	}

	return nil, errors.ErrorOptionNotFound
}

// Close makes the poll terminal; closing an already closed poll changes
// nothing. It reports whether the state changed.
func (p *Poll) Close() bool {
	p.Lock()
	defer p.Unlock()

	if !p.isActive {
		return false
	}
	p.isActive = false
	p.seq++
	return true
}

func (p *Poll) Snapshot() *Snapshot {
	p.RLock()
	defer p.RUnlock()
	return p.snapshot()
}

// snapshot must be called with at least the read lock held.
func (p *Poll) snapshot() *Snapshot {
	options := make([]Option, len(p.options))
	copy(options, p.options)

	return &Snapshot{
		ID:         p.id,
		Question:   p.question,
		Options:    options,
		TotalVotes: p.totalVotes,
		IsActive:   p.isActive,
		CreatedAt:  common.FormatISO8601(p.createdAt),
		Seq:        p.seq,
	}
}

// Snapshot is the immutable wire view of a poll, safe to hand to
// subscribers and response bodies without tearing.
type Snapshot struct {
	ID         string   `json:"id"`
	Question   string   `json:"question"`
	Options    []Option `json:"options"`
	TotalVotes uint64   `json:"total_votes"`
	IsActive   bool     `json:"is_active"`
	CreatedAt  string   `json:"created_at"`

	// Seq orders the snapshots of one poll; it never goes on the wire.
	Seq uint64 `json:"-"`
}

func (s *Snapshot) Serialize() ([]byte, error) {
	return json.Marshal(s)
}
