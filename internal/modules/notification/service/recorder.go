package service

import (
	"context"
	"sync"
)

// Recorder is a Notifier that keeps envelopes in memory. Services use it in
// tests to assert what was announced.
type Recorder struct {
	mu        sync.Mutex
	Envelopes []Envelope
}

func (r *Recorder) Notify(_ context.Context, kind Kind, action Action, data any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Envelopes = append(r.Envelopes, Envelope{Model: kind, Action: action, Data: data})
}

func (r *Recorder) NotifyDeleted(ctx context.Context, kind Kind, id uint) {
	r.Notify(ctx, kind, ActionDeleted, DeletedPayload{ID: id})
}

// Of returns the recorded envelopes of one kind, in order.
func (r *Recorder) Of(kind Kind) []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Envelope
	for _, e := range r.Envelopes {
		if e.Model == kind {
			out = append(out, e)
		}
	}
	return out
}
