package model

import (
	"context"
	"sync"
)

// EventType discriminates the events carried by a Stream.
type EventType int

const (
	// EventTextDelta carries an incremental chunk of assistant text.
	EventTextDelta EventType = iota
	// EventDone terminates the stream after a complete response.
	EventDone
	// EventError terminates the stream after a failure.
	EventError
)

// StreamEvent is one element of a streaming response. Text is set on
// EventTextDelta, Err on EventError. ToolCalls is populated on EventDone when
// a tool-aware stream finished with the model requesting tools.
type StreamEvent struct {
	Type      EventType
	Text      string
	Err       error
	ToolCalls []ToolCall
}

// Stream is a finite, non-restartable sequence of StreamEvents. Every stream
// ends with exactly one terminal event (EventDone or EventError), after which
// the Events channel is closed. A consumer that stops early must call Close,
// which cancels the underlying request and releases the connection.
type Stream struct {
	events    chan StreamEvent
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once
	endOnce   sync.Once
}

// NewStream builds a stream whose Close invokes cancel. Adapters own the
// producer side and must finish with SendDone or SendError.
func NewStream(cancel context.CancelFunc) *Stream {
	return &Stream{
		events: make(chan StreamEvent, 16),
		done:   make(chan struct{}),
		cancel: cancel,
	}
}

// NewTextStream yields text as a single delta followed by EventDone. This is
// the fallback for callers with no native incremental path.
func NewTextStream(text string) *Stream {
	s := NewStream(nil)
	s.SendText(text)
	s.SendDone()
	return s
}

// Events exposes the consumer side of the stream. The channel is closed after
// the terminal event.
func (s *Stream) Events() <-chan StreamEvent {
	return s.events
}

// Close abandons the stream. Safe to call at any point, including after the
// terminal event; repeated calls are no-ops.
func (s *Stream) Close() {
	s.closeOnce.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		close(s.done)
	})
}

// Collect drains the stream to completion, concatenating the text deltas.
// It returns the terminal error, if any.
func (s *Stream) Collect() (string, error) {
	defer s.Close()
	var text []byte
	for evt := range s.events {
		switch evt.Type {
		case EventTextDelta:
			text = append(text, evt.Text...)
		case EventError:
			return string(text), evt.Err
		}
	}
	return string(text), nil
}

// SendText emits a text delta. Empty deltas are swallowed here so no adapter
// can surface one. The return value is false once the consumer has closed the
// stream, letting producers stop early.
func (s *Stream) SendText(text string) bool {
	if text == "" {
		return true
	}
	return s.emit(StreamEvent{Type: EventTextDelta, Text: text})
}

// SendDone emits the successful terminal event and closes the channel.
// Tool-aware producers pass the reassembled calls.
func (s *Stream) SendDone(calls ...ToolCall) {
	evt := StreamEvent{Type: EventDone}
	if len(calls) > 0 {
		evt.ToolCalls = calls
	}
	s.terminate(evt)
}

// SendError emits the failing terminal event and closes the channel.
func (s *Stream) SendError(err error) {
	s.terminate(StreamEvent{Type: EventError, Err: err})
}

func (s *Stream) emit(evt StreamEvent) bool {
	select {
	case s.events <- evt:
		return true
	case <-s.done:
		return false
	}
}

func (s *Stream) terminate(evt StreamEvent) {
	s.endOnce.Do(func() {
		s.emit(evt)
		close(s.events)
	})
}
