// Package sse writes Server-Sent Events.
//
//	stream, err := sse.New(w, r)
//	if err != nil { ... }
//	stream.Send("stock", change)
package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

var ErrUnsupported = errors.New("sse: response writer cannot flush")

// Stream is one open event stream. It is not safe for concurrent use.
type Stream struct {
	w  http.ResponseWriter
	rc *http.ResponseController
	r  *http.Request
	id int
}

// New writes the event-stream headers and lifts the server write timeout
// for this response.
func New(w http.ResponseWriter, r *http.Request) (*Stream, error) {
	rc := http.NewResponseController(w)
	_ = rc.SetWriteDeadline(time.Time{})

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err := rc.Flush(); err != nil {
		return nil, ErrUnsupported
	}
	return &Stream{w: w, rc: rc, r: r}, nil
}

// Send writes a named event with a JSON data line and a sequential id.
func (s *Stream) Send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("sse: marshal: %w", err)
	}
	s.id++
	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.id, event, payload); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Comment writes a comment line; clients ignore it, proxies see traffic.
func (s *Stream) Comment(msg string) error {
	if _, err := fmt.Fprintf(s.w, ": %s\n\n", msg); err != nil {
		return err
	}
	return s.rc.Flush()
}

// Done is closed when the client goes away.
func (s *Stream) Done() <-chan struct{} { return s.r.Context().Done() }
