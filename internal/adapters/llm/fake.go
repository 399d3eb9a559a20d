package llm

import (
	"context"
	"sync"
)

// DefaultFakeReply is what an unscripted Fake answers with.
const DefaultFakeReply = "Two contenders entered. The arena is still arguing about who won."

// Fake is a scripted Generator for tests and offline runs.
type Fake struct {
	mu      sync.Mutex
	replies []string
	err     error
	fn      func(Request) (string, error)
	calls   []Request
}

// NewFake answers with replies in order, repeating the last one. With no
// replies it answers DefaultFakeReply.
func NewFake(replies ...string) *Fake {
	var rs []string
	for _, r := range replies {
		if r != "" {
			rs = append(rs, r)
		}
	}
	if len(rs) == 0 {
		rs = []string{DefaultFakeReply}
	}
	return &Fake{replies: rs}
}

// FailingFake always returns err wrapped in ErrGeneration.
func FailingFake(err error) *Fake {
	return &Fake{err: err}
}

// FuncFake answers with fn.
func FuncFake(fn func(Request) (string, error)) *Fake {
	return &Fake{fn: fn}
}

func (f *Fake) Name() string { return ProviderFake }

func (f *Fake) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	var reply string
	switch {
	case f.fn != nil:
	case f.err != nil:
	case len(f.replies) > 1:
		reply, f.replies = f.replies[0], f.replies[1:]
	default:
		reply = f.replies[0]
	}
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", wrapGeneration(err)
	}
	if f.fn != nil {
		text, err := f.fn(req)
		if err != nil {
			return "", wrapGeneration(err)
		}
		return completion(f.Name(), text)
	}
	if f.err != nil {
		return "", wrapGeneration(f.err)
	}
	return reply, nil
}

// Calls returns the requests seen so far.
func (f *Fake) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.calls...)
}
