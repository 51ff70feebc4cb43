package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/arwoh/storefront-go/internal/auth"
	"github.com/arwoh/storefront-go/internal/notify"
)

// Remote is the cart service. Every call returns the full cart state.
type Remote interface {
	GetCart(ctx context.Context) (Snapshot, error)
	AddItem(ctx context.Context, imageID int64, quantity int) (Snapshot, error)
	UpdateItem(ctx context.Context, cartItemID int64, quantity int) (Snapshot, error)
	RemoveItem(ctx context.Context, cartItemID int64) (Snapshot, error)
}

type Notifier interface {
	Notify(key string, level notify.Level, message string)
}

// SnapshotCache holds the last confirmed snapshot per user across stores.
type SnapshotCache interface {
	Get(ctx context.Context, userID int64) (Snapshot, error)
	Set(ctx context.Context, userID int64, s Snapshot) error
	Delete(ctx context.Context, userID int64) error
}

type Publisher interface {
	PublishSnapshotReplaced(ctx context.Context, op string, userID int64, s Snapshot) error
}

// Operation names, used in logs and events.
const (
	OpFetch  = "fetch"
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
	OpToggle = "toggle"
)

var failureMessages = map[string]string{
	OpFetch:  "Could not load your cart. Please try again.",
	OpAdd:    "Could not add the image to your cart. Please try again.",
	OpUpdate: "Could not update the quantity. Please try again.",
	OpRemove: "Could not remove the item. Please try again.",
	OpClear:  "Could not empty your cart. Please try again.",
}

type Deps struct {
	Remote    Remote
	Notifier  Notifier
	Cache     SnapshotCache
	Publisher Publisher
	Roles     []string
	Logger    logrus.FieldLogger
}

// Store is the single source of truth for one browser session's cart.
// Remote round trips are serialised; readers never wait on them.
type Store struct {
	key       string
	remote    Remote
	notifier  Notifier
	cache     SnapshotCache
	publisher Publisher
	roles     map[string]struct{}
	logger    logrus.FieldLogger

	queue   sync.Mutex
	fetches singleflight.Group

	mu         sync.RWMutex
	principal  Principal
	generation uint64
	snapshot   Snapshot
	visible    bool
	pending    int
}

func NewStore(key string, d Deps) *Store {
	roles := make(map[string]struct{}, len(d.Roles))
	for _, r := range d.Roles {
		roles[r] = struct{}{}
	}
	logger := d.Logger
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		key:       key,
		remote:    d.Remote,
		notifier:  d.Notifier,
		cache:     d.Cache,
		publisher: d.Publisher,
		roles:     roles,
		logger:    logger.WithField("session", key),
		snapshot:  Snapshot{Items: []Line{}},
	}
}

func (s *Store) Key() string { return s.key }

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

func (s *Store) Visible() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.visible
}

// IsLoading is true while any operation is queued or in flight. It is a hint
// for disabling controls, not a lock.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pending > 0
}

func (s *Store) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return View{Open: s.visible, IsLoading: s.pending > 0, Snapshot: s.snapshot.clone()}
}

func (s *Store) Principal() Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Authorize checks that the bound principal may use the cart.
func (s *Store) Authorize() error {
	_, _, err := s.gate()
	return err
}

// Bind attaches p to the store. A qualifying principal gets its cart loaded;
// anyone else gets an empty, closed cart.
func (s *Store) Bind(ctx context.Context, p Principal) (Snapshot, error) {
	s.mu.Lock()
	same := s.principal == p
	if !same {
		s.principal = p
		s.generation++
		s.snapshot = Snapshot{Items: []Line{}}
		s.visible = false
	}
	s.mu.Unlock()

	if !p.Authenticated() {
		return s.Snapshot(), ErrUnauthenticated
	}
	if !s.qualifies(p.Role) {
		return s.Snapshot(), ErrForbiddenRole
	}
	if same {
		return s.Snapshot(), nil
	}

	s.seedFromCache(ctx, p)
	return s.Fetch(ctx)
}

// Unbind is logout: the snapshot is discarded and the drawer closed.
func (s *Store) Unbind(ctx context.Context) {
	s.mu.Lock()
	p := s.principal
	s.principal = Principal{}
	s.generation++
	s.snapshot = Snapshot{Items: []Line{}}
	s.visible = false
	s.mu.Unlock()

	if s.cache != nil && p.UserID != 0 {
		if err := s.cache.Delete(ctx, p.UserID); err != nil {
			s.logger.WithError(err).Warn("drop cached snapshot")
		}
	}
}

// Fetch loads the current cart. Concurrent calls share one remote request,
// which is not cancelled when the caller that started it goes away; the
// upstream client timeout bounds it.
func (s *Store) Fetch(ctx context.Context) (Snapshot, error) {
	p, gen, err := s.gate()
	if err != nil {
		s.fail(OpFetch, err)
		return s.Snapshot(), err
	}

	shared := context.WithoutCancel(ctx)
	key := fmt.Sprintf("%d", gen)
	_, err, _ = s.fetches.Do(key, func() (any, error) {
		return nil, s.serialised(shared, gen, func(ctx context.Context) error {
			next, err := s.remote.GetCart(auth.WithToken(ctx, p.Token))
			if err != nil {
				return err
			}
			return s.replace(ctx, OpFetch, gen, next)
		})
	})
	if err != nil {
		s.fail(OpFetch, err)
	}
	return s.Snapshot(), err
}

func (s *Store) AddItem(ctx context.Context, imageID int64, quantity int) (Snapshot, error) {
	if quantity < 1 {
		s.fail(OpAdd, ErrInvalidQuantity)
		return s.Snapshot(), ErrInvalidQuantity
	}
	return s.mutate(ctx, OpAdd, func(ctx context.Context) (Snapshot, error) {
		return s.remote.AddItem(ctx, imageID, quantity)
	})
}

// UpdateQuantity sets a line's quantity; zero removes the line.
func (s *Store) UpdateQuantity(ctx context.Context, cartItemID int64, quantity int) (Snapshot, error) {
	switch {
	case quantity < 0:
		s.fail(OpUpdate, ErrInvalidQuantity)
		return s.Snapshot(), ErrInvalidQuantity
	case quantity == 0:
		return s.RemoveItem(ctx, cartItemID)
	}
	return s.mutate(ctx, OpUpdate, func(ctx context.Context) (Snapshot, error) {
		return s.remote.UpdateItem(ctx, cartItemID, quantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, cartItemID int64) (Snapshot, error) {
	return s.mutate(ctx, OpRemove, func(ctx context.Context) (Snapshot, error) {
		return s.remote.RemoveItem(ctx, cartItemID)
	})
}

// Clear removes every line, one remote call at a time. It stops at the first
// failure and leaves whatever the server last returned; there is no rollback.
func (s *Store) Clear(ctx context.Context) (Snapshot, error) {
	p, gen, err := s.gate()
	if err != nil {
		s.fail(OpClear, err)
		return s.Snapshot(), err
	}

	err = s.serialised(ctx, gen, func(ctx context.Context) error {
		lines := s.Snapshot().Items
		for i, l := range lines {
			next, err := s.remote.RemoveItem(auth.WithToken(ctx, p.Token), l.CartItemID)
			if err == nil {
				err = s.replace(ctx, OpClear, gen, next)
			}
			if err != nil {
				return &ClearError{Removed: i, Remaining: len(lines) - i, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		s.fail(OpClear, err)
	}
	return s.Snapshot(), err
}

// ToggleVisibility opens or closes the drawer. Without a qualifying principal
// the drawer stays closed and the user is told why.
func (s *Store) ToggleVisibility(ctx context.Context) (bool, error) {
	if _, _, err := s.gate(); err != nil {
		s.fail(OpToggle, err)
		return s.Visible(), err
	}

	s.mu.Lock()
	s.visible = !s.visible
	open := s.visible
	s.mu.Unlock()
	return open, nil
}

func (s *Store) mutate(ctx context.Context, op string, call func(context.Context) (Snapshot, error)) (Snapshot, error) {
	p, gen, err := s.gate()
	if err != nil {
		s.fail(op, err)
		return s.Snapshot(), err
	}

	err = s.serialised(ctx, gen, func(ctx context.Context) error {
		next, err := call(auth.WithToken(ctx, p.Token))
		if err != nil {
			return err
		}
		return s.replace(ctx, op, gen, next)
	})
	if err != nil {
		s.fail(op, err)
	}
	return s.Snapshot(), err
}

// serialised runs fn while holding the store's queue. isLoading covers both
// the wait and the call.
func (s *Store) serialised(ctx context.Context, gen uint64, fn func(context.Context) error) error {
	s.mu.Lock()
	s.pending++
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending--
		s.mu.Unlock()
	}()

	s.queue.Lock()
	defer s.queue.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.current(gen) {
		return ErrStaleResponse
	}
	return fn(ctx)
}

// replace swaps in the server's snapshot unless the principal changed since
// the request was issued.
func (s *Store) replace(ctx context.Context, op string, gen uint64, next Snapshot) error {
	if err := validate(next); err != nil {
		return err
	}
	if next.Items == nil {
		next.Items = []Line{}
	}

	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return ErrStaleResponse
	}
	s.snapshot = next.clone()
	userID := s.principal.UserID
	s.mu.Unlock()

	if s.cache != nil {
		if err := s.cache.Set(ctx, userID, next); err != nil {
			s.logger.WithError(err).Warn("cache snapshot")
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotReplaced(ctx, op, userID, next); err != nil {
			s.logger.WithError(err).WithField("op", op).Warn("publish snapshot replaced")
		}
	}
	return nil
}

func (s *Store) seedFromCache(ctx context.Context, p Principal) {
	if s.cache == nil {
		return
	}
	cached, err := s.cache.Get(ctx, p.UserID)
	if err != nil {
		s.logger.WithError(err).Debug("no cached snapshot")
		return
	}
	if validate(cached) != nil || (cached.UserID != 0 && cached.UserID != p.UserID) {
		return
	}
	if cached.Items == nil {
		cached.Items = []Line{}
	}

	s.mu.Lock()
	if s.principal == p {
		s.snapshot = cached
	}
	s.mu.Unlock()
}

func (s *Store) gate() (Principal, uint64, error) {
	s.mu.RLock()
	p, gen := s.principal, s.generation
	s.mu.RUnlock()

	if !p.Authenticated() {
		return p, gen, ErrUnauthenticated
	}
	if !s.qualifies(p.Role) {
		return p, gen, ErrForbiddenRole
	}
	return p, gen, nil
}

func (s *Store) current(gen uint64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.generation == gen
}

func (s *Store) qualifies(role string) bool {
	_, ok := s.roles[role]
	return ok
}

// fail logs err and queues a toast. Precondition failures explain themselves;
// everything else gets the operation's generic message.
func (s *Store) fail(op string, err error) {
	entry := s.logger.WithError(err).WithField("op", op)
	msg := failureMessages[op]
	switch {
	case IsPrecondition(err):
		msg = err.Error()
		entry.Info("cart precondition failed")
	case errors.Is(err, ErrStaleResponse), errors.Is(err, context.Canceled):
		entry.Info("cart response discarded")
		return
	default:
		entry.Warn("cart operation failed")
	}
	if s.notifier != nil {
		s.notifier.Notify(s.key, notify.LevelError, msg)
	}
}

func validate(s Snapshot) error {
	seen := make(map[int64]struct{}, len(s.Items))
	for _, l := range s.Items {
		if l.Quantity < 1 {
			return fmt.Errorf("%w: line %d has quantity %d", ErrInvalidSnapshot, l.CartItemID, l.Quantity)
		}
		if _, dup := seen[l.CartItemID]; dup {
			return fmt.Errorf("%w: duplicate line %d", ErrInvalidSnapshot, l.CartItemID)
		}
		seen[l.CartItemID] = struct{}{}
	}
	return nil
}
