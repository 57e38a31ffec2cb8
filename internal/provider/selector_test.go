package provider_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3link/internal/provider"
)

type stubProvider struct {
	kind   provider.Kind
	events chan provider.Event
}

func (s *stubProvider) Kind() provider.Kind { return s.kind }
func (s *stubProvider) CallContext(context.Context, interface{}, string, ...interface{}) error {
	return nil
}
func (s *stubProvider) Events() <-chan provider.Event { return s.events }
func (s *stubProvider) Close() error                  { return nil }

func stubFactory(kind provider.Kind, opened *[]provider.Kind) provider.Factory {
	return func(context.Context) (provider.Provider, error) {
		*opened = append(*opened, kind)
		return &stubProvider{kind: kind, events: make(chan provider.Event)}, nil
	}
}

func newSelector(choose provider.Chooser) (*provider.Selector, *[]provider.Kind) {
	var opened []provider.Kind
	s := provider.NewSelector(nil, choose, nil)
	s.Register(provider.KindInjected, stubFactory(provider.KindInjected, &opened))
	s.Register(provider.KindPairing, stubFactory(provider.KindPairing, &opened))
	return s, &opened
}

func TestParseKind(t *testing.T) {
	k, err := provider.ParseKind("pairing")
	require.NoError(t, err)
	assert.Equal(t, provider.KindPairing, k)

	_, err = provider.ParseKind("metamask")
	assert.Error(t, err)
}

func TestSelectorAsksWhenNothingCached(t *testing.T) {
	asked := 0
	s, opened := newSelector(func(_ context.Context, kinds []provider.Kind) (provider.Kind, error) {
		asked++
		assert.Equal(t, []provider.Kind{provider.KindInjected, provider.KindPairing}, kinds)
		return provider.KindPairing, nil
	})

	p, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, provider.KindPairing, p.Kind())
	assert.Equal(t, 1, asked)

	_, ok := s.CachedProvider()
	require.False(t, ok, "opening alone does not cache")
	s.Remember(p.Kind())

	cached, ok := s.CachedProvider()
	require.True(t, ok)
	assert.Equal(t, provider.KindPairing, cached)

	// Second connect reuses the cached kind without asking.
	_, err = s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, asked)
	assert.Equal(t, []provider.Kind{provider.KindPairing, provider.KindPairing}, *opened)
}

func TestSelectorClearCachedProvider(t *testing.T) {
	s, _ := newSelector(nil)
	_, err := s.ConnectTo(context.Background(), provider.KindInjected)
	require.NoError(t, err)
	s.Remember(provider.KindInjected)

	require.NoError(t, s.ClearCachedProvider())
	_, ok := s.CachedProvider()
	assert.False(t, ok)
}

func TestSelectorCancelled(t *testing.T) {
	s, opened := newSelector(func(context.Context, []provider.Kind) (provider.Kind, error) {
		return "", provider.ErrCancelled
	})
	_, err := s.Connect(context.Background())
	assert.ErrorIs(t, err, provider.ErrCancelled)
	assert.Empty(t, *opened)

	noChooser, _ := newSelector(nil)
	_, err = noChooser.Connect(context.Background())
	assert.ErrorIs(t, err, provider.ErrCancelled)
}

func TestSelectorSingleKindSkipsChoice(t *testing.T) {
	var opened []provider.Kind
	s := provider.NewSelector(nil, nil, nil)
	s.Register(provider.KindInjected, stubFactory(provider.KindInjected, &opened))

	p, err := s.Connect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, provider.KindInjected, p.Kind())
}

func TestSelectorFactoryFailureNotCached(t *testing.T) {
	s := provider.NewSelector(nil, nil, nil)
	s.Register(provider.KindPairing, func(context.Context) (provider.Provider, error) {
		return nil, errors.New("wallet offline")
	})

	_, err := s.ConnectTo(context.Background(), provider.KindPairing)
	assert.ErrorContains(t, err, "wallet offline")
	_, ok := s.CachedProvider()
	assert.False(t, ok)

	_, err = s.ConnectTo(context.Background(), provider.KindInjected)
	assert.ErrorContains(t, err, "not available")
}

func TestFileCache(t *testing.T) {
	c := provider.FileCacheAt(filepath.Join(t.TempDir(), "w3link", "provider.json"))

	_, ok := c.Load()
	assert.False(t, ok)

	require.NoError(t, c.Store(provider.KindInjected))
	k, ok := c.Load()
	require.True(t, ok)
	assert.Equal(t, provider.KindInjected, k)

	require.NoError(t, c.Clear())
	require.NoError(t, c.Clear(), "clearing twice is fine")
	_, ok = c.Load()
	assert.False(t, ok)
}
