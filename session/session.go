package session

import (
	"fmt"
	"sync"

	"github.com/arloliu/graft/errs"
	"github.com/arloliu/graft/internal/options"
)

const (
	// DefaultMaxDepth bounds composite nesting within one operation. It admits linked
	// structures tens of thousands of nodes long while keeping the goroutine stack well
	// below the runtime's limit.
	DefaultMaxDepth = 1 << 17
	// DefaultMaxRetainedEntries is the table size above which a pooled session is dropped.
	DefaultMaxRetainedEntries = 1 << 14
)

// Session is the state of one serialize, deserialize or copy operation.
type Session struct {
	References ReferenceTable
	Types      TypeTable
	Copies     CopyTable

	depth    int
	maxDepth int
}

// Option configures a Session or a Pool.
type Option = options.Option[*config]

type config struct {
	maxDepth           int
	maxRetainedEntries int
}

// WithMaxDepth sets the maximum nesting depth. It must be positive.
func WithMaxDepth(n int) Option {
	return options.New(func(c *config) error {
		if n <= 0 {
			return fmt.Errorf("%w: max depth %d", errs.ErrInvalidConfig, n)
		}
		c.maxDepth = n

		return nil
	})
}

// WithMaxRetainedEntries sets the table size above which a pool drops a returned session.
// Zero disables the limit.
func WithMaxRetainedEntries(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 {
			return fmt.Errorf("%w: max retained entries %d", errs.ErrInvalidConfig, n)
		}
		c.maxRetainedEntries = n

		return nil
	})
}

func newConfig(opts []Option) (config, error) {
	c := config{maxDepth: DefaultMaxDepth, maxRetainedEntries: DefaultMaxRetainedEntries}
	if err := options.Apply(&c, opts...); err != nil {
		return config{}, err
	}

	return c, nil
}

// New creates a standalone session.
func New(opts ...Option) (*Session, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return &Session{maxDepth: c.maxDepth}, nil
}

// Enter records descent into a composite value.
// It fails with ErrMaxDepthExceeded once the depth passes the configured maximum.
func (s *Session) Enter() error {
	if s.depth >= s.maxDepth {
		return fmt.Errorf("%w: depth %d", errs.ErrMaxDepthExceeded, s.maxDepth)
	}
	s.depth++

	return nil
}

// Leave undoes the matching Enter.
func (s *Session) Leave() {
	if s.depth > 0 {
		s.depth--
	}
}

// Depth returns the current nesting depth.
func (s *Session) Depth() int {
	return s.depth
}

// MaxDepth returns the configured nesting limit.
func (s *Session) MaxDepth() int {
	return s.maxDepth
}

// Reset clears every table so the session can start a new top-level operation.
func (s *Session) Reset() {
	s.References.Reset()
	s.Types.Reset()
	s.Copies.Reset()
	s.depth = 0
}

func (s *Session) retained() int {
	return s.References.Len() + s.Types.Len() + s.Copies.Len()
}

// Pool recycles sessions.
type Pool struct {
	pool               sync.Pool
	maxRetainedEntries int
}

// NewPool creates a session pool.
func NewPool(opts ...Option) (*Pool, error) {
	c, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	p := &Pool{maxRetainedEntries: c.maxRetainedEntries}
	maxDepth := c.maxDepth
	p.pool.New = func() any {
		return &Session{maxDepth: maxDepth}
	}

	return p, nil
}

// Get returns a clean session.
func (p *Pool) Get() *Session {
	s, _ := p.pool.Get().(*Session)
	return s
}

// Put resets s and returns it to the pool.
// Sessions whose tables grew beyond the retention limit are dropped.
func (p *Pool) Put(s *Session) {
	if s == nil {
		return
	}
	if p.maxRetainedEntries > 0 && s.retained() > p.maxRetainedEntries {
		return
	}

	s.Reset()
	p.pool.Put(s)
}
