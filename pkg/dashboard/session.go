package dashboard

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/sudorandom/regionviz/pkg/focus"
)

// Session holds the latest complete build. Rebuilds run outside the lock and
// are installed only if no newer rebuild has started since. The installed
// output is only reachable under the lock, through View, Handle and Render.
type Session struct {
	gen atomic.Uint64

	mu  sync.Mutex
	cur *Output

	log *zap.Logger
}

func NewSession() *Session {
	return &Session{log: zap.L().Named("session")}
}

// Begin starts a rebuild and returns its generation.
func (s *Session) Begin() uint64 {
	return s.gen.Add(1)
}

// Complete rebuilds from in and installs the result if gen is still the newest
// generation. Stale completions are dropped and report false.
func (s *Session) Complete(gen uint64, in Input) bool {
	if gen != s.gen.Load() {
		s.log.Debug("dropping stale rebuild", zap.Uint64("generation", gen))
		return false
	}
	out := Rebuild(in)
	out.Generation = gen

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen.Load() {
		s.log.Debug("dropping stale rebuild", zap.Uint64("generation", gen))
		return false
	}
	s.cur = out
	s.log.Debug("rebuild installed", zap.Uint64("generation", gen), zap.Int("ranked", len(out.Ranked)))
	return true
}

// Loader produces the input of a rebuild, typically by reading files.
type Loader func(ctx context.Context) (Input, error)

type Result struct {
	Generation uint64
	Installed  bool
	Err        error
}

// Load runs loader in the background and completes the rebuild with its input.
// The channel receives exactly one result. A failed loader, a cancelled context
// or a newer rebuild leaves the current output in place.
func (s *Session) Load(ctx context.Context, loader Loader) <-chan Result {
	gen := s.Begin()
	ch := make(chan Result, 1)
	go func() {
		defer close(ch)
		in, err := loader(ctx)
		if err == nil {
			err = ctx.Err()
		}
		if err != nil {
			s.log.Warn("load failed", zap.Uint64("generation", gen), zap.Error(err))
			ch <- Result{Generation: gen, Err: err}
			return
		}
		ch <- Result{Generation: gen, Installed: s.Complete(gen, in)}
	}()
	return ch
}

// View calls fn with the installed output while holding the session lock and
// reports whether an output was installed. fn must not keep the output or any
// of its pointers after it returns.
func (s *Session) View(fn func(*Output)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return false
	}
	fn(s.cur)
	return true
}

// Generation returns the generation of the installed output, 0 before the
// first rebuild.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return 0
	}
	return s.cur.Generation
}

// Focus returns the focus state of the installed output.
func (s *Session) Focus() focus.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return focus.State{}
	}
	return s.cur.Machine.State()
}

// Handle applies a focus event to the installed output.
func (s *Session) Handle(ev focus.Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return false
	}
	return s.cur.Machine.Handle(ev)
}

// Render marshals the installed output.
func (s *Session) Render() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur == nil {
		return json.Marshal(nil)
	}
	return json.Marshal(s.cur)
}
