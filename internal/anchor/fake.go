package anchor

import (
	"context"
	"fmt"
	"sync"
)

// Fake is an in-memory anchor client for tests and local development.
// It records every submission and can be told to fail.
type Fake struct {
	mu          sync.Mutex
	seq         int
	submissions []Submission
	failWith    error
}

// NewFake constructs a Fake anchor client.
func NewFake() *Fake {
	return &Fake{}
}

// FailWith makes every subsequent Submit return err. Pass nil to recover.
func (f *Fake) FailWith(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWith = err
}

// Submit records the submission and returns a deterministic transaction ID.
func (f *Fake) Submit(_ context.Context, sub Submission) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	f.seq++
	f.submissions = append(f.submissions, sub)
	return fmt.Sprintf("anchortx_%06d", f.seq), nil
}

// Submissions returns a copy of everything anchored so far.
func (f *Fake) Submissions() []Submission {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Submission, len(f.submissions))
	copy(out, f.submissions)
	return out
}
