// Package notify carries ordered progress notifications out of the analysis
// pipeline.
package notify

import (
	"sync"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
	AI      Severity = "ai"
)

// AttachmentKind names an Attachment variant.
type AttachmentKind string

const (
	KindBitmapImage        AttachmentKind = "bitmap-image"
	KindStructuredDocument AttachmentKind = "structured-document"
)

// Attachment is a closed variant: BitmapImage or StructuredDocument.
type Attachment interface {
	Kind() AttachmentKind
	Title() string
	sealed()
}

// BitmapImage carries an encoded PNG.
type BitmapImage struct {
	Label string
	PNG   []byte
}

func (BitmapImage) Kind() AttachmentKind { return KindBitmapImage }
func (a BitmapImage) Title() string      { return a.Label }
func (BitmapImage) sealed()              {}

// StructuredDocument carries a JSON-serializable value.
type StructuredDocument struct {
	Label string
	Value any
}

func (StructuredDocument) Kind() AttachmentKind { return KindStructuredDocument }
func (a StructuredDocument) Title() string      { return a.Label }
func (StructuredDocument) sealed()              {}

// Event is one notification.
type Event struct {
	Time       time.Time
	Session    string
	Severity   Severity
	Message    string
	Attachment Attachment
}

// Sink receives events in emission order.
type Sink interface {
	Notify(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Notify calls fn(e).
func (fn SinkFunc) Notify(e Event) { fn(e) }

// Discard drops every event.
var Discard Sink = SinkFunc(func(Event) {})

// Multi fans events out to every sink in order. Nil sinks are skipped.
func Multi(sinks ...Sink) Sink {
	var out []Sink
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return SinkFunc(func(e Event) {
		for _, s := range out {
			s.Notify(e)
		}
	})
}

// Recorder keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Notify implements Sink.
func (r *Recorder) Notify(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Messages returns the recorded messages in order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Message
	}
	return out
}

// Reset drops the recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
