package features

import (
	"context"
	"sync"
)

// Recorder collects the flag evaluations made during a single request so the
// handler can embed them in the response metadata. Request-scoped, like the
// correlation id: handlers install one at the top of the request and it is
// garbage-collected with the request context.
type Recorder struct {
	mu    sync.Mutex
	evals []Evaluation
}

type recorderKey struct{}

// WithRecorder installs a fresh Recorder on the context.
func WithRecorder(ctx context.Context) (context.Context, *Recorder) {
	rec := &Recorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// RecorderFrom returns the context's Recorder, or nil when none is installed.
// Evaluations outside a request (warmup probes, tests) simply go unrecorded.
func RecorderFrom(ctx context.Context) *Recorder {
	rec, _ := ctx.Value(recorderKey{}).(*Recorder)
	return rec
}

func (r *Recorder) add(e Evaluation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evals = append(r.evals, e)
}

// Evaluations returns the recorded evaluations in call order. Never nil, so
// the response metadata always serializes as a JSON array.
func (r *Recorder) Evaluations() []Evaluation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Evaluation, len(r.evals))
	copy(out, r.evals)
	return out
}
