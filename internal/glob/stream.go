package glob

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cheerioskun/globninja/internal/errors"
	"github.com/cheerioskun/globninja/internal/matcher"
	"github.com/cheerioskun/globninja/internal/models"
	"github.com/cheerioskun/globninja/internal/scanner"
	"golang.design/x/chann"
	"golang.org/x/sync/errgroup"
)

// Stream delivers the matches of one query while the walk is still running.
//
// A Stream ends in exactly one of three ways: a clean end (Err returns nil), a
// cancellation (errors.IsCanceled(Err()) is true), or an enumeration fault.
// Matches found before a cancellation or fault are always delivered first.
//
// Next, Match, Path, Collect and All are meant for a single consuming
// goroutine. Close may be called from any goroutine.
type Stream struct {
	ctx    context.Context
	cancel context.CancelFunc
	group  errgroup.Group
	ch     *chann.Chann[models.MatchResult]
	root   string
	logger *log.Logger

	mu      sync.Mutex
	current models.MatchResult
	closed  bool
	done    bool
	err     error
	once    sync.Once
}

// Stream starts a streaming query. Argument and validation errors are
// returned before any work starts.
func (g *Glob) Stream(ctx context.Context, patterns, ignorePatterns []string) (*Stream, error) {
	if ctx == nil {
		return nil, errors.NewInvalidArgument("ctx", "")
	}

	cfg, err := g.Config(patterns, ignorePatterns)
	if err != nil {
		return nil, err
	}
	return g.StreamConfig(ctx, cfg)
}

// StreamWithTimeout is Stream cancelled automatically once timeout has
// elapsed from the call
func (g *Glob) StreamWithTimeout(ctx context.Context, timeout time.Duration, patterns, ignorePatterns []string) (*Stream, error) {
	if ctx == nil {
		return nil, errors.NewInvalidArgument("ctx", "")
	}
	if timeout <= 0 {
		return nil, errors.NewInvalidArgument("timeout", "must be positive")
	}

	cfg, err := g.Config(patterns, ignorePatterns)
	if err != nil {
		return nil, err
	}

	deadline, cancel := context.WithTimeout(ctx, timeout)
	s, err := g.start(deadline, cancel, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

// StreamConfig starts a streaming query for a prepared configuration
func (g *Glob) StreamConfig(ctx context.Context, cfg models.PatternConfig) (*Stream, error) {
	if ctx == nil {
		return nil, errors.NewInvalidArgument("ctx", "")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	child, cancel := context.WithCancel(ctx)
	s, err := g.start(child, cancel, cfg)
	if err != nil {
		cancel()
		return nil, err
	}
	return s, nil
}

func (g *Glob) start(ctx context.Context, cancel context.CancelFunc, cfg models.PatternConfig) (*Stream, error) {
	m, err := g.cache.GetOrCompile(cfg)
	if err != nil {
		return nil, err
	}

	ts := g.treeScanner(cfg)
	ts.SetSkipDir(m.SkipDir)

	// A root that cannot be resolved is reported by the walk itself
	root := cfg.BasePath()
	if resolved, err := ts.ResolveRoot(root); err == nil {
		root = resolved
	}

	s := &Stream{
		ctx:    ctx,
		cancel: cancel,
		ch:     chann.New[models.MatchResult](),
		root:   root,
		logger: g.logger,
	}

	s.group.Go(func() error {
		// Closing In lets Out drain the buffer and then close
		defer s.ch.Close()
		return produce(ctx, ts, m, root, s.ch.In())
	})

	g.logger.Debug("started stream", "config", cfg.String(), "root", root)
	return s, nil
}

// produce walks root and sends every match to out, which is unbounded so the
// walk never waits on the consumer. It returns nil, a cancellation or the
// first fault.
func produce(ctx context.Context, ts *scanner.TreeScanner, m matcher.Matcher, root string, out chan<- models.MatchResult) error {
	return ts.Walk(ctx, root, func(entry scanner.FileEntry) error {
		if match, ok := m.Match(entry.Rel); ok {
			out <- match
		}
		return nil
	})
}

// Next advances to the next match. It returns false once the stream has
// ended; Err then reports how it ended. The producer has always finished by
// the time Next returns false.
func (s *Stream) Next() bool {
	s.mu.Lock()
	if s.done {
		s.mu.Unlock()
		return false
	}
	s.mu.Unlock()

	item, ok := <-s.ch.Out()
	if !ok {
		s.finish()
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done {
		return false
	}
	s.current = item
	return true
}

// Match returns the match Next advanced to
func (s *Stream) Match() models.MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Path returns the full path of the current match
func (s *Stream) Path() string {
	return s.Match().ResolvePath(s.root)
}

// Root returns the resolved directory the stream walks
func (s *Stream) Root() string {
	return s.root
}

// Err returns the terminal error once Next has returned false
func (s *Stream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close stops the query and waits for the producer to exit. Buffered matches
// are discarded. Closing a stream that was cancelled by Close itself is not an
// error; a fault that ended the stream earlier is returned. Close is idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.finish()
	return s.Err()
}

// finish joins the producer and records the terminal state exactly once.
// Whatever is still buffered is drained so the channel's goroutine can exit.
func (s *Stream) finish() {
	s.once.Do(func() {
		err := s.group.Wait()
		for range s.ch.Out() {
		}

		// The walk may have completed just as the context ended; the consumer
		// still sees the cancellation.
		if err == nil && s.ctx.Err() != nil {
			err = errors.Canceled(s.ctx.Err())
		}
		s.cancel()

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed && errors.IsCanceled(err) {
			err = nil
		}
		s.err = err
		s.done = true
		s.current = models.MatchResult{}

		switch {
		case err == nil:
			s.logger.Debug("stream completed", "root", s.root)
		case errors.IsCanceled(err):
			s.logger.Debug("stream canceled", "root", s.root, "err", err)
		default:
			s.logger.Debug("stream faulted", "root", s.root, "err", err)
		}
	})
}

// Collect drains the stream into a MatchSet. On a fault or cancellation the
// matches delivered so far are returned along with the error.
func (s *Stream) Collect() (*models.MatchSet, error) {
	set := models.NewMatchSet(s.root)
	for s.Next() {
		set.Add(s.Match())
	}
	set.CollectedAt = time.Now()
	return set, s.Err()
}

// All returns the stream as a sequence. A terminal error is yielded last
// with a zero MatchResult. Stopping the iteration early closes the stream.
func (s *Stream) All() iter.Seq2[models.MatchResult, error] {
	return func(yield func(models.MatchResult, error) bool) {
		for s.Next() {
			if !yield(s.Match(), nil) {
				_ = s.Close()
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(models.MatchResult{}, err)
		}
	}
}
