package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/arwoh/storefront-go/internal/cart"
)

type Service struct {
	repo      Repository
	ttl       time.Duration
	logger    logrus.FieldLogger
	now       func() time.Time
	onExpired func(ctx context.Context, id string)
}

func NewService(repo Repository, ttl time.Duration, logger logrus.FieldLogger) *Service {
	if logger == nil {
		logger = logrus.New()
	}
	return &Service{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

// Start opens a session for p. Any authenticated principal gets one; whether
// it may hold a cart is decided by the cart store.
func (s *Service) Start(ctx context.Context, p cart.Principal) (Session, error) {
	if !p.Authenticated() {
		return Session{}, cart.ErrUnauthenticated
	}
	now := s.now().UTC()
	sess := Session{
		ID:        uuid.NewString(),
		UserID:    p.UserID,
		Role:      p.Role,
		Token:     p.Token,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.repo.Create(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Resolve returns the live session for id. Expired sessions are removed and
// reported as missing.
func (s *Service) Resolve(ctx context.Context, id string) (Session, error) {
	if id == "" {
		return Session{}, ErrNotFound
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		return Session{}, err
	}
	if sess.Expired(s.now()) {
		if err := s.repo.Delete(ctx, id); err != nil {
			s.logger.WithError(err).WithField("session", id).Warn("delete expired session")
		}
		return Session{}, ErrNotFound
	}
	return sess, nil
}

func (s *Service) End(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) TTL() time.Duration { return s.ttl }

// OnExpired registers fn to run for every session the sweeper removes. Call it
// before Sweep starts.
func (s *Service) OnExpired(fn func(ctx context.Context, id string)) {
	s.onExpired = fn
}

// Sweep deletes expired sessions every interval until ctx is done.
func (s *Service) Sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Service) sweep(ctx context.Context) {
	ids, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.WithError(err).Warn("sweep expired sessions")
		}
		return
	}
	if len(ids) == 0 {
		return
	}
	if s.onExpired != nil {
		for _, id := range ids {
			s.onExpired(ctx, id)
		}
	}
	s.logger.WithField("count", len(ids)).Info("expired sessions removed")
}
