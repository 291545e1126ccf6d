package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/vidstyle/internal/shared"
)

// Factory builds a new controller for the given session ID.
type Factory func(id string) (*Controller, error)

// StoreOpts configures a [Store].
type StoreOpts struct {
	Factory  Factory                 // Controller constructor (required)
	TTL      time.Duration           // Idle sessions older than this are swept; 0 disables sweeping
	Logger   *log.Logger
	OnCreate func(ctrl *Controller) // Called after a session is registered
	Now      func() time.Time
}

// Store holds the live sessions of a server, keyed by session ID.
type Store struct {
	factory  Factory
	ttl      time.Duration
	logger   *log.Logger
	onCreate func(*Controller)
	now      func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewStore creates an empty store.
func NewStore(opts StoreOpts) (*Store, error) {
	if opts.Factory == nil {
		return nil, fmt.Errorf("%w: session factory is required", shared.ErrInvalidConfig)
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Store{
		factory:  opts.Factory,
		ttl:      opts.TTL,
		logger:   opts.Logger,
		onCreate: opts.OnCreate,
		now:      opts.Now,
		sessions: make(map[string]*Controller),
	}, nil
}

// Create builds and registers a new session.
func (s *Store) Create() (*Controller, error) {
	ctrl, err := s.factory(shared.GenerateID())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.mu.Lock()
	s.sessions[ctrl.ID()] = ctrl
	s.mu.Unlock()

	if s.onCreate != nil {
		s.onCreate(ctrl)
	}

	s.logger.Debug("session created", "session", ctrl.ID())
	return ctrl, nil
}

// Get returns the live session with the given ID.
func (s *Store) Get(id string) (*Controller, error) {
	s.mu.RLock()
	ctrl, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return ctrl, nil
}

// Close removes and tears down the session with the given ID.
func (s *Store) Close(id string) error {
	s.mu.Lock()
	ctrl, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", shared.ErrSessionNotFound, id)
	}
	return ctrl.Close()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep closes sessions that have been idle longer than the TTL and returns how many were closed.
func (s *Store) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	s.mu.Lock()
	var expired []*Controller
	for id, ctrl := range s.sessions {
		if ctrl.IdleSince(cutoff) {
			expired = append(expired, ctrl)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ctrl := range expired {
		if err := ctrl.Close(); err != nil {
			s.logger.Warn("failed to close expired session", "session", ctrl.ID(), "error", err)
		}
	}
	if len(expired) > 0 {
		s.logger.Info("swept idle sessions", "count", len(expired))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (s *Store) Run(ctx context.Context, every time.Duration) {
	if s.ttl <= 0 || every <= 0 {
		return
	}

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(s.now())
		}
	}
}

// CloseAll tears down every session.
func (s *Store) CloseAll() error {
	s.mu.Lock()
	all := make([]*Controller, 0, len(s.sessions))
	for _, ctrl := range s.sessions {
		all = append(all, ctrl)
	}
	clear(s.sessions)
	s.mu.Unlock()

	var errs []error
	for _, ctrl := range all {
		if err := ctrl.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
