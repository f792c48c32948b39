package engine

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/events"
	"github.com/omarnaeem59-commits/Modern-Boostly/internal/storage"
)

// Options configures a Service. Zero values select the defaults.
type Options struct {
	Bus    *events.Bus
	Logger *zap.Logger
	Clock  Clock
	IDs    IDGenerator
	// Location decides calendar-day boundaries for streaks.
	Location *time.Location
	// MonotonicLevels keeps level and badge at their high-water mark when points drop.
	MonotonicLevels bool
}

type Service struct {
	store     storage.Store
	bus       *events.Bus
	log       *zap.Logger
	clock     Clock
	ids       IDGenerator
	loc       *time.Location
	monotonic bool
}

// NewService wires the service and subscribes the notification listener to the bus.
func NewService(store storage.Store, opts Options) *Service {
	s := &Service{
		store:     store,
		bus:       opts.Bus,
		log:       opts.Logger,
		clock:     opts.Clock,
		ids:       opts.IDs,
		loc:       opts.Location,
		monotonic: opts.MonotonicLevels,
	}
	if s.bus == nil {
		s.bus = events.NewBus()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.clock == nil {
		s.clock = NewSystemClock()
	}
	if s.ids == nil {
		s.ids = NewUUIDGenerator()
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	s.bus.Subscribe(s.onProgress)
	return s
}

func (s *Service) Bus() *events.Bus { return s.bus }

func (s *Service) Store() storage.Store { return s.store }

func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

func (s *Service) today() string {
	return dayOf(s.clock.Now(), s.loc)
}

// outbox collects events raised inside a transaction.
type outbox struct {
	events []events.Event
}

func (o *outbox) add(es ...events.Event) {
	o.events = append(o.events, es...)
}

// update runs fn in a transaction and publishes its events once the commit succeeds.
func (s *Service) update(ctx context.Context, fn func(r storage.Repos, out *outbox) error) error {
	out := &outbox{}
	err := s.store.WithTx(ctx, func(r storage.Repos) error {
		out.events = out.events[:0]
		return fn(r, out)
	})
	if err != nil {
		return err
	}
	for _, e := range out.events {
		s.bus.Publish(ctx, e)
	}
	return nil
}

func normalizeTitle(title string) (string, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return "", ErrTitleRequired
	}
	return t, nil
}

func (s *Service) getUser(ctx context.Context, r storage.Repos, userID string) (*storage.User, error) {
	u, err := r.Users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrNotFound
	}
	return u, nil
}
