package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pollpulse.io/pollpulse/lib/network/httputils"
	"pollpulse.io/pollpulse/lib/poll"
)

// DefaultContentType is "text/event-stream"
const DefaultContentType = "text/event-stream"

// EventStream handles chunked responses of a broadcaster subscription
//
// renderFunc turns each received event into one wire frame
type EventStream struct {
	contentType string
	renderFunc  RenderFunc
	request     *http.Request
	writer      http.ResponseWriter
	flusher     http.Flusher
	err         error
	rendered    bool
}

type RenderFunc func(args ...interface{}) ([]byte, error)

// NewDefaultEventStream returns *EventStream with renderEventStream and DefaultContentType
func NewDefaultEventStream(w http.ResponseWriter, r *http.Request) *EventStream {
	return NewEventStream(w, r, renderEventStream, DefaultContentType)
}

// NewEventStream makes *EventStream and checks http.Flusher by type assertion.
func NewEventStream(w http.ResponseWriter, r *http.Request, renderFunc RenderFunc, ct string) *EventStream {
	es := &EventStream{
		request:     r,
		writer:      w,
		renderFunc:  renderFunc,
		contentType: ct,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		es.err = fmt.Errorf("http: can't do chunked response")
	} else {
		es.flusher = flusher
	}

	return es
}

// Render makes one chunked response frame by using RenderFunc and flushes it.
func (s *EventStream) Render(args ...interface{}) {
	if s.err != nil {
		return
	}

	var bs []byte
	var renderArgs []interface{}
	renderArgs = append(renderArgs, "pre")
	renderArgs = append(renderArgs, args...)
	if payload, err := s.renderFunc(renderArgs...); err != nil {
		bs = s.errMessage(err)
	} else {
		bs = payload
	}

	if !s.rendered {
		s.writer.Header().Set("Content-Type", s.contentType)
		s.writer.Header().Set("Cache-Control", "no-cache")
		s.writer.Header().Set("Connection", "keep-alive")
		s.rendered = true
	}

	fmt.Fprintf(s.writer, "data: %s\n\n", bs)
	s.flusher.Flush()
}

// Run subscribes to the poll and streams its events until the client
// goes away.
//
// Simple use case:
//
// 	es := NewDefaultEventStream(w, r)
// 	es.Run(broadcaster, pollID)
func (s *EventStream) Run(bc *poll.Broadcaster, pollID string) {
	s.Start(bc, pollID)()
}

// Start subscribes to the poll and returns the run func.
//
// In most case, Use Run instead of Start
func (s *EventStream) Start(bc *poll.Broadcaster, pollID string) func() {
	if s.err != nil {
		http.Error(s.writer, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return func() {}
	}

	sub := bc.NewSubscriber()
	bc.Subscribe(pollID, sub)

	return func() {
		defer bc.Disconnect(sub)

		for {
			select {
			case ev, ok := <-sub.Events():
				if !ok {
					return
				}
				s.Render(ev)
			case <-s.request.Context().Done():
				return
			}
		}
	}
}

func (s *EventStream) errMessage(err error) []byte {
	p := httputils.NewErrorProblem(err, httputils.StatusCode(err))
	b, err := json.Marshal(p)
	if err != nil {
		b = []byte{}
	}
	return b
}
