package scanner

import (
	"context"
	"errors"
	"testing"
	"time"

	"hypermarket-pos/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUnknownCode = errors.New("unknown code")

type stubResolver struct {
	products map[string]*model.Product
}

func (s *stubResolver) Resolve(code string) (*model.Product, error) {
	if p, ok := s.products[code]; ok {
		return p, nil
	}
	return nil, errUnknownCode
}

func collectResults(t *testing.T, resolver Resolver, codes ...string) []Result {
	t.Helper()

	results := make(chan Result, len(codes))
	feed := NewFeed(resolver, func(r Result) { results <- r }, len(codes))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go feed.Run(ctx)

	for _, code := range codes {
		require.True(t, feed.Push(code))
	}

	out := make([]Result, 0, len(codes))
	for range codes {
		select {
		case r := <-results:
			out = append(out, r)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for scan result")
		}
	}
	return out
}

func TestFeedResolvesCodesInOrder(t *testing.T) {
	milk := &model.Product{Name: "Milk 1L"}
	bread := &model.Product{Name: "Bread"}
	resolver := &stubResolver{products: map[string]*model.Product{
		"111": milk,
		"222": bread,
	}}

	results := collectResults(t, resolver, "111", "222")

	require.Len(t, results, 2)
	assert.Equal(t, "111", results[0].Code)
	assert.Equal(t, milk, results[0].Product)
	require.NoError(t, results[0].Err)
	assert.Equal(t, "222", results[1].Code)
	assert.Equal(t, bread, results[1].Product)
}

func TestFeedReportsResolveErrors(t *testing.T) {
	resolver := &stubResolver{products: map[string]*model.Product{}}

	results := collectResults(t, resolver, "no-such-code")

	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Err, errUnknownCode)
	assert.Nil(t, results[0].Product)
}

func TestPushDropsWhenFeedStoppedDraining(t *testing.T) {
	resolver := &stubResolver{products: map[string]*model.Product{}}
	feed := NewFeed(resolver, func(Result) {}, 2)

	// Nothing is draining; the buffer absorbs two codes and the third is
	// dropped instead of blocking the producer
	assert.True(t, feed.Push("a"))
	assert.True(t, feed.Push("b"))
	assert.False(t, feed.Push("c"))
}

func TestFeedStopsOnContextCancel(t *testing.T) {
	resolver := &stubResolver{products: map[string]*model.Product{}}
	feed := NewFeed(resolver, func(Result) {}, 1)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		feed.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}
