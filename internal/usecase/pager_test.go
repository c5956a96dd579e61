package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/usecase"
	"go.uber.org/zap"
)

func makeTokens(prefix string, n int) []domain.Token {
	tokens := make([]domain.Token, n)
	for i := range tokens {
		tokens[i] = domain.Token{
			ID:      fmt.Sprintf("%s-%d", prefix, i),
			Address: fmt.Sprintf("0x%s%d", prefix, i),
			MediaContent: &domain.MediaContent{
				MimeType:    "video/mp4",
				OriginalURI: "ipfs://bafy" + prefix,
			},
		}
	}
	return tokens
}

// stubFetcher hands out scripted pages and records calls.
type stubFetcher struct {
	mu        sync.Mutex
	pages     []*domain.ListPage
	err       error
	calls     int
	lastAfter string
	block     chan struct{} // when set, ListCoins waits on it
	entered   chan struct{} // closed-ish signal that a call started
}

func (f *stubFetcher) ListCoins(ctx context.Context, category domain.FeedCategory, limit int, after string) (*domain.ListPage, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.lastAfter = after
	entered := f.entered
	block := f.block
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if call-1 < len(f.pages) {
		return f.pages[call-1], nil
	}
	return &domain.ListPage{}, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newPager(f usecase.PageFetcher) *usecase.CoinPager {
	return usecase.NewCoinPager(domain.CategoryNew, f, 200, zap.NewNop())
}

func TestAdvanceForwardWithinLoadedCoins(t *testing.T) {
	fetcher := &stubFetcher{}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 3), "c1")

	pager.Advance(context.Background(), usecase.Forward)

	assert.Equal(t, 1, pager.Index())
	assert.Equal(t, 0, fetcher.callCount(), "no fetch within loaded coins")
}

func TestAdvanceBackwardStopsAtZero(t *testing.T) {
	pager := newPager(&stubFetcher{})
	pager.Seed(makeTokens("a", 3), "")

	pager.Advance(context.Background(), usecase.Backward)
	assert.Equal(t, 0, pager.Index())

	pager.Advance(context.Background(), usecase.Forward)
	pager.Advance(context.Background(), usecase.Backward)
	assert.Equal(t, 0, pager.Index())
}

func TestAdvanceAtLastCardLoadsNextPage(t *testing.T) {
	fetcher := &stubFetcher{
		pages: []*domain.ListPage{
			{Tokens: makeTokens("b", 2), Cursor: "c2"},
		},
	}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 3), "c1")

	ctx := context.Background()
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward)
	require.Equal(t, 2, pager.Index())

	pager.Advance(ctx, usecase.Forward)

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, "c1", fetcher.lastAfter)
	assert.Equal(t, 5, pager.Len())
	assert.True(t, pager.HasMore())
	assert.Equal(t, 3, pager.Index(), "index stays on the first appended token")
	tok, ok := pager.Current()
	require.True(t, ok)
	assert.Equal(t, "b-0", tok.ID)
}

func TestAdvanceAtLastCardWithoutCursorIsNoop(t *testing.T) {
	fetcher := &stubFetcher{}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 2), "")

	ctx := context.Background()
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward)

	assert.Equal(t, 1, pager.Index())
	assert.Equal(t, 0, fetcher.callCount())
	assert.False(t, pager.HasMore())
}

func TestLoadMoreEmptyResponseClampsIndex(t *testing.T) {
	fetcher := &stubFetcher{
		pages: []*domain.ListPage{{}},
	}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 3), "c1")

	ctx := context.Background()
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward) // enters loading slot, gets empty page

	assert.False(t, pager.HasMore())
	assert.Equal(t, 2, pager.Index(), "clamped back to the last real card")
	assert.False(t, pager.Loading())
}

func TestLoadMoreFailureClampsIndex(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 3), "c1")

	ctx := context.Background()
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward)
	pager.Advance(ctx, usecase.Forward)

	assert.Equal(t, 2, pager.Index())
	assert.False(t, pager.Loading())
	assert.True(t, pager.HasMore(), "cursor survives a transport failure")
}

func TestSeedIsIdempotent(t *testing.T) {
	pager := newPager(&stubFetcher{})
	pager.Seed(makeTokens("a", 3), "c1")

	pager.Seed(makeTokens("z", 9), "zz")
	pager.SetCoins(makeTokens("y", 1))
	pager.SetPagination("yy")

	assert.Equal(t, 3, pager.Len())
	tok, ok := pager.TokenAt(0)
	require.True(t, ok)
	assert.Equal(t, "a-0", tok.ID)
	assert.True(t, pager.HasMore())

	snap := pager.Snapshot()
	assert.Equal(t, 3, snap.Count)
}

func TestAdvanceDroppedWhileLoading(t *testing.T) {
	fetcher := &stubFetcher{
		pages:   []*domain.ListPage{{Tokens: makeTokens("b", 1), Cursor: ""}},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 1), "c1")

	ctx := context.Background()
	done := make(chan struct{})
	go func() {
		pager.Advance(ctx, usecase.Forward) // blocks in the fetch
		close(done)
	}()

	<-fetcher.entered
	assert.True(t, pager.Loading())
	assert.Equal(t, 1, pager.Index(), "index sits in the loading slot")

	// Gestures during the in-flight fetch are dropped, not queued.
	pager.Advance(ctx, usecase.Forward)
	pager.LoadMore(ctx)

	close(fetcher.block)
	<-done

	assert.Equal(t, 1, fetcher.callCount())
	assert.Equal(t, 2, pager.Len())
	assert.Equal(t, 1, pager.Index())
	assert.False(t, pager.HasMore())
}

func TestLoadMoreWithoutCursorIsNoop(t *testing.T) {
	fetcher := &stubFetcher{}
	pager := newPager(fetcher)
	pager.Seed(makeTokens("a", 2), "")

	pager.LoadMore(context.Background())

	assert.Equal(t, 0, fetcher.callCount())
}
