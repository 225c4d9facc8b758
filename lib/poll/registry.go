package poll

import (
	"sort"
	"sync"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/metrics"
)

//
// Registry owns the collection of polls and the vote ledger, and is the
// sole mutation path into poll state. It is an explicit, injectable
// object; tests build a fresh registry per case.
//
// The ledger relation `(fingerprint, pollID)` only grows for the life
// of the process; poll deletion is administrative and does not touch
// it.
//
type Registry struct {
	conf        common.Config
	broadcaster *Broadcaster
	limiter     *RateLimiter

	mu    sync.RWMutex
	polls map[string]*Poll

	ledgerMu sync.RWMutex
	ledger   map[string]map[string]struct{}

	// one mutex per fingerprint keeps the rate-check, duplicate-check,
	// counter-increment, record sequence atomic without a global lock
	fingerprintLocks sync.Map
}

func NewRegistry(conf common.Config, broadcaster *Broadcaster) *Registry {
	r := &Registry{
		conf:        conf,
		broadcaster: broadcaster,
		limiter:     NewRateLimiter(conf.VoteRateLimit, conf.VoteRateWindow, conf.RateLimitWindowCacheSize),
		polls:       map[string]*Poll{},
		ledger:      map[string]map[string]struct{}{},
	}

	if broadcaster != nil {
		broadcaster.SetSnapshotSource(r.snapshotOf)
	}

	return r
}

func (r *Registry) Limiter() *RateLimiter {
	return r.limiter
}

// CreatePoll validates, assigns a fresh id and registers the poll. All
// counters start at zero and the poll is active.
func (r *Registry) CreatePoll(question string, options []string, createdBy string) (*Snapshot, error) {
	p, err := NewPoll(question, options, createdBy)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	id := common.GenerateToken(common.PollIDLength)
	for {
		if _, found := r.polls[id]; !found {
			break
		}
		id = common.GenerateToken(common.PollIDLength)
	}
	p.id = id
	r.polls[id] = p
	r.mu.Unlock()

	metrics.Poll.PollsCreatedTotal.Add(1)
	log.Debug("poll created", "poll", id, "options", len(options))

	return p.Snapshot(), nil
}

func (r *Registry) GetPoll(id string) (*Snapshot, error) {
	p, found := r.getPoll(id)
	if !found {
		return nil, errors.ErrorPollNotFound
	}
	return p.Snapshot(), nil
}

func (r *Registry) getPoll(id string) (*Poll, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, found := r.polls[id]
	return p, found
}

func (r *Registry) snapshotOf(id string) (*Snapshot, bool) {
	p, found := r.getPoll(id)
	if !found {
		return nil, false
	}
	return p.Snapshot(), true
}

// Polls returns the snapshots of every registered poll, newest first.
func (r *Registry) Polls() []*Snapshot {
	r.mu.RLock()
	snapshots := make([]*Snapshot, 0, len(r.polls))
	for _, p := range r.polls {
		snapshots = append(snapshots, p.Snapshot())
	}
	r.mu.RUnlock()

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].CreatedAt > snapshots[j].CreatedAt
	})
	return snapshots
}

// ClosePoll makes the poll terminal and broadcasts the closed snapshot.
// Closing an already closed poll succeeds and changes nothing; no
// second broadcast goes out.
func (r *Registry) ClosePoll(id string) (*Snapshot, error) {
	p, found := r.getPoll(id)
	if !found {
		return nil, errors.ErrorPollNotFound
	}

	changed := p.Close()
	snapshot := p.Snapshot()

	if changed {
		metrics.Poll.PollsClosedTotal.Add(1)
		log.Debug("poll closed", "poll", id)
		r.publish(id, Event{Type: EventPollClosed, Poll: snapshot})
	}

	return snapshot, nil
}

// DeletePoll removes the poll entirely. This is an out-of-band
// administrative action; the vote flow never deletes, and ledger
// entries of the deleted poll are kept.
func (r *Registry) DeletePoll(id string) error {
	r.mu.Lock()
	_, found := r.polls[id]
	if found {
		delete(r.polls, id)
	}
	r.mu.Unlock()

	if !found {
		return errors.ErrorPollNotFound
	}

	log.Debug("poll deleted", "poll", id)
	r.publish(id, Event{Type: EventPollDeleted})
	return nil
}

// HasVoted is a pure membership check; it does not require the poll to
// exist.
func (r *Registry) HasVoted(pollID, fingerprint string) bool {
	r.ledgerMu.RLock()
	defer r.ledgerMu.RUnlock()

	polls, found := r.ledger[fingerprint]
	if !found {
		return false
	}
	_, voted := polls[pollID]
	return voted
}

func (r *Registry) recordVote(pollID, fingerprint string) {
	r.ledgerMu.Lock()
	defer r.ledgerMu.Unlock()

	polls, found := r.ledger[fingerprint]
	if !found {
		polls = map[string]struct{}{}
		r.ledger[fingerprint] = polls
	}
	polls[pollID] = struct{}{}
}

func (r *Registry) fingerprintMutex(fingerprint string) *sync.Mutex {
	v, _ := r.fingerprintLocks.LoadOrStore(fingerprint, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (r *Registry) publish(pollID string, ev Event) {
	if r.broadcaster == nil {
		return
	}
	r.broadcaster.Publish(pollID, ev)
}
