package poll

import (
	"encoding/json"
	"sync"

	observable "github.com/GianlucaGuarini/go-observable"

	"pollpulse.io/pollpulse/lib/common"
	"pollpulse.io/pollpulse/lib/common/observer"
	"pollpulse.io/pollpulse/lib/errors"
	"pollpulse.io/pollpulse/lib/metrics"
)

type EventType string

const (
	EventPollData     EventType = "poll-data"
	EventVoteUpdate   EventType = "vote-update"
	EventPollClosed   EventType = "poll-closed"
	EventPollDeleted  EventType = "poll-deleted"
	EventPollNotFound EventType = "poll-not-found"
)

// Event is what subscribers receive; `Poll` is nil only for
// `EventPollNotFound` and `EventPollDeleted`.
type Event struct {
	Type EventType `json:"event"`
	Poll *Snapshot `json:"poll,omitempty"`
}

func (e Event) Serialize() ([]byte, error) {
	return json.Marshal(e)
}

//
// Subscriber is one live viewer connection. Events are buffered; when
// the buffer is full the oldest pending event is dropped, so a stalled
// consumer only degrades itself.
//
type Subscriber struct {
	sync.Mutex

	id     string
	events chan Event
	closed bool
}

func NewSubscriber(buffer int) *Subscriber {
	if buffer < 1 {
		buffer = common.SubscriberBufferSize
	}
	return &Subscriber{
		id:     common.GenerateUUID(),
		events: make(chan Event, buffer),
	}
}

func (s *Subscriber) ID() string {
	return s.id
}

func (s *Subscriber) Events() <-chan Event {
	return s.events
}

func (s *Subscriber) deliver(ev Event) error {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return errors.ErrorSubscriberAlreadyClosed
	}

	for {
		select {
		case s.events <- ev:
			return nil
		default:
		}

		// buffer full; drop the oldest pending event
		select {
		case <-s.events:
		default:
		}
	}
}

func (s *Subscriber) close() {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

//
// Broadcaster fans poll state changes out to live subscribers over the
// observable bus; every subscription is an `On` handler that feeds the
// subscriber's channel.
//
// Publishing and subscribing share one lock, so a subscriber that got
// its initial snapshot observes every event published after it, in
// publish order. Delivery into a subscriber never blocks, which keeps
// the triggering vote or close operation fast regardless of how slow
// the consumers are.
//
type Broadcaster struct {
	sync.Mutex

	ob         *observable.Observable
	joined     map[*Subscriber]map[string]func(args ...interface{})
	bufferSize int

	// lastSeq tracks the newest published snapshot per poll, so a
	// publish racing a later one cannot roll the tally back
	lastSeq map[string]uint64

	// snapshotFunc resolves the current snapshot for the immediate
	// send on subscribe; set by the registry when it attaches.
	snapshotFunc func(string) (*Snapshot, bool)
}

func NewBroadcaster(conf common.Config, ob *observable.Observable) *Broadcaster {
	if ob == nil {
		ob = observer.PollObserver
	}
	return &Broadcaster{
		ob:         ob,
		joined:     map[*Subscriber]map[string]func(args ...interface{}){},
		bufferSize: conf.SubscriberBufferSize,
		lastSeq:    map[string]uint64{},
	}
}

func (b *Broadcaster) Observable() *observable.Observable {
	return b.ob
}

func (b *Broadcaster) SetSnapshotSource(fn func(string) (*Snapshot, bool)) {
	b.Lock()
	defer b.Unlock()
	b.snapshotFunc = fn
}

func (b *Broadcaster) NewSubscriber() *Subscriber {
	return NewSubscriber(b.bufferSize)
}

// Subscribe immediately sends the subscriber the current snapshot, or a
// not-found signal when the poll does not exist, then hooks it onto the
// poll's event. Subscribing to an unknown poll is not an error; the
// subscriber will start receiving events if the poll appears later
// under the same id.
func (b *Broadcaster) Subscribe(pollID string, s *Subscriber) {
	b.Lock()
	defer b.Unlock()

	handlers, ok := b.joined[s]
	if !ok {
		handlers = map[string]func(args ...interface{}){}
		b.joined[s] = handlers
	}
	if _, ok := handlers[pollID]; ok {
		return
	}

	ev := Event{Type: EventPollNotFound}
	if b.snapshotFunc != nil {
		if snapshot, found := b.snapshotFunc(pollID); found {
			ev = Event{Type: EventPollData, Poll: snapshot}
		}
	}
	if err := s.deliver(ev); err != nil {
		log.Debug("initial delivery failed", "poll", pollID, "subscriber", s.ID(), "err", err)
		return
	}

	onFunc := func(args ...interface{}) {
		if len(args) < 1 {
			return
		}
		ev, ok := args[0].(Event)
		if !ok {
			return
		}
		if err := s.deliver(ev); err != nil {
			log.Debug("delivery failed", "poll", pollID, "subscriber", s.ID(), "err", err)
		}
	}
	b.ob.On(observer.PollEvent(pollID), onFunc)
	handlers[pollID] = onFunc

	metrics.Poll.Subscribers.Add(1)
}

// Unsubscribe removes the subscriber from one poll; unknown pairs are a
// no-op.
func (b *Broadcaster) Unsubscribe(pollID string, s *Subscriber) {
	b.Lock()
	defer b.Unlock()
	b.unsubscribe(pollID, s)
}

func (b *Broadcaster) unsubscribe(pollID string, s *Subscriber) {
	handlers, ok := b.joined[s]
	if !ok {
		return
	}
	onFunc, ok := handlers[pollID]
	if !ok {
		return
	}

	b.ob.Off(observer.PollEvent(pollID), onFunc)
	delete(handlers, pollID)
	if len(handlers) == 0 {
		delete(b.joined, s)
	}

	metrics.Poll.Subscribers.Add(-1)
}

// Disconnect drops the subscriber from every poll it had joined and
// closes its event channel. It is what the transport calls when the
// connection goes away.
func (b *Broadcaster) Disconnect(s *Subscriber) {
	b.Lock()
	for pollID := range b.joined[s] {
		b.unsubscribe(pollID, s)
	}
	b.Unlock()

	s.close()
}

// Publish delivers the event to every subscriber of the poll.
// Best-effort; delivery failures are logged, never surfaced. A snapshot
// older than the newest already published for the poll is dropped, so
// two publishes racing each other cannot leave subscribers on a
// rolled-back tally.
func (b *Broadcaster) Publish(pollID string, ev Event) {
	b.Lock()
	if ev.Poll != nil {
		if last, ok := b.lastSeq[pollID]; ok && ev.Poll.Seq <= last {
			b.Unlock()
			log.Debug("stale snapshot dropped", "poll", pollID, "seq", ev.Poll.Seq)
			return
		}
		b.lastSeq[pollID] = ev.Poll.Seq
	}
	if ev.Type == EventPollDeleted {
		delete(b.lastSeq, pollID)
	}
	b.ob.Trigger(observer.PollEvent(pollID), ev)
	b.Unlock()

	metrics.Poll.BroadcastsTotal.Add(1)
}
