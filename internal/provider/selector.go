package provider

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Factory opens a provider of one kind.
type Factory func(ctx context.Context) (Provider, error)

// Chooser asks the user which kind to use. It returns ErrCancelled when the
// user backs out.
type Chooser func(ctx context.Context, kinds []Kind) (Kind, error)

// Selector obtains providers: the last-used kind when one is cached,
// otherwise whatever the user picks.
type Selector struct {
	mu        sync.Mutex
	factories map[Kind]Factory
	order     []Kind
	cache     Cache
	choose    Chooser
	log       *zap.Logger
}

// NewSelector creates a selector. A nil cache keeps the marker in memory.
func NewSelector(cache Cache, choose Chooser, log *zap.Logger) *Selector {
	if cache == nil {
		cache = &MemCache{}
	}
	if log == nil {
		log = zap.L()
	}
	return &Selector{
		factories: make(map[Kind]Factory),
		cache:     cache,
		choose:    choose,
		log:       log,
	}
}

// Register makes kind available. Registering a kind twice replaces it.
func (s *Selector) Register(kind Kind, f Factory) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.factories[kind]; !ok {
		s.order = append(s.order, kind)
	}
	s.factories[kind] = f
}

// Kinds lists registered kinds in registration order.
func (s *Selector) Kinds() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Kind(nil), s.order...)
}

// Connect opens the cached kind if there is one, otherwise asks the user.
func (s *Selector) Connect(ctx context.Context) (Provider, error) {
	if kind, ok := s.CachedProvider(); ok {
		s.log.Debug("using cached provider", zap.String("kind", string(kind)))
		return s.ConnectTo(ctx, kind)
	}

	kinds := s.Kinds()
	var kind Kind
	switch {
	case len(kinds) == 0:
		return nil, fmt.Errorf("no providers registered")
	case len(kinds) == 1:
		kind = kinds[0]
	case s.choose == nil:
		return nil, fmt.Errorf("choose a provider: %w", ErrCancelled)
	default:
		var err error
		if kind, err = s.choose(ctx, kinds); err != nil {
			return nil, err
		}
	}
	return s.ConnectTo(ctx, kind)
}

// ConnectTo opens a provider of the given kind. The choice is not cached;
// callers Remember it once the provider is fully usable.
func (s *Selector) ConnectTo(ctx context.Context, kind Kind) (Provider, error) {
	s.mu.Lock()
	f, ok := s.factories[kind]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("provider %q is not available", kind)
	}

	p, err := f(ctx)
	if err != nil {
		return nil, fmt.Errorf("opening %s provider: %w", kind, err)
	}
	return p, nil
}

// Remember caches kind as the last-used provider.
func (s *Selector) Remember(kind Kind) {
	if err := s.cache.Store(kind); err != nil {
		s.log.Warn("could not cache provider choice", zap.Error(err))
	}
}

// CachedProvider returns the last-used kind if it is still registered.
func (s *Selector) CachedProvider() (Kind, bool) {
	kind, ok := s.cache.Load()
	if !ok {
		return "", false
	}
	s.mu.Lock()
	_, registered := s.factories[kind]
	s.mu.Unlock()
	return kind, registered
}

// ClearCachedProvider forgets the last-used kind.
func (s *Selector) ClearCachedProvider() error {
	return s.cache.Clear()
}
