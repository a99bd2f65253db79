package auth

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
)

func pngBytes(n int) []byte {
	b := []byte("\x89PNG\r\n\x1a\n")
	for len(b) < n {
		b = append(b, 0)
	}
	return b
}

func jpegBytes(n int) []byte {
	b := []byte("\xff\xd8\xff\xe0")
	for len(b) < n {
		b = append(b, 0)
	}
	return b
}

// fakeBackend records calls and can block until released
type fakeBackend struct {
	mu       sync.Mutex
	signIns  []SignInForm
	signUps  []SignUpForm
	calls    atomic.Int32
	resp     *Response
	err      error
	block    chan struct{}
	entered  chan struct{}
	canceled atomic.Bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{resp: &Response{}}
}

func (b *fakeBackend) wait(ctx context.Context) error {
	if b.entered != nil {
		b.entered <- struct{}{}
	}
	if b.block == nil {
		return nil
	}
	select {
	case <-b.block:
		return nil
	case <-ctx.Done():
		b.canceled.Store(true)
		return ctx.Err()
	}
}

func (b *fakeBackend) SignIn(ctx context.Context, form SignInForm) (*Response, error) {
	b.calls.Add(1)
	b.mu.Lock()
	b.signIns = append(b.signIns, form)
	b.mu.Unlock()
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.resp, b.err
}

func (b *fakeBackend) SignUp(ctx context.Context, form SignUpForm) (*Response, error) {
	b.calls.Add(1)
	b.mu.Lock()
	b.signUps = append(b.signUps, form)
	b.mu.Unlock()
	if err := b.wait(ctx); err != nil {
		return nil, err
	}
	return b.resp, b.err
}

// recordingPreviews logs every create and release in order
type recordingPreviews struct {
	mu     sync.Mutex
	events []string
	live   map[string]bool
	next   int
}

func newRecordingPreviews() *recordingPreviews {
	return &recordingPreviews{live: make(map[string]bool)}
}

func (r *recordingPreviews) Create(contentType string, data []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next++
	h := fmt.Sprintf("p%d", r.next)
	r.live[h] = true
	r.events = append(r.events, "create:"+h)
	return h, nil
}

func (r *recordingPreviews) Release(handle string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.live, handle)
	r.events = append(r.events, "release:"+handle)
}

func (r *recordingPreviews) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

func (r *recordingPreviews) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}
