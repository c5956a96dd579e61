package usecase

import (
	"context"
	"sync"

	"github.com/zeero-shorts/zeero/internal/domain"
	"go.uber.org/zap"
)

// Direction is one discrete navigation intent.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// PagerState replaces the old isLoading boolean with an explicit enum.
type PagerState int

const (
	PagerIdle PagerState = iota
	PagerLoading
)

// PageFetcher loads the next page of a category list.
type PageFetcher interface {
	ListCoins(ctx context.Context, category domain.FeedCategory, limit int, after string) (*domain.ListPage, error)
}

// CoinPager owns the ordered coin list, cursor and active index for one
// feed category. Coins are append-only and never reordered. While a fetch
// is in flight the index may sit at len(coins): the loading slot, where
// the UI renders its placeholder card and where the first token of the
// next page will land.
//
// At most one fetch is in flight per pager; fetches are tagged with a
// sequence number so a superseded response is discarded instead of
// clobbering newer state.
type CoinPager struct {
	mu       sync.Mutex
	category domain.FeedCategory
	fetcher  PageFetcher
	pageSize int
	logger   *zap.Logger

	coins     []domain.Token
	cursor    string
	cursorSet bool
	index     int
	state     PagerState
	seq       uint64
}

func NewCoinPager(category domain.FeedCategory, fetcher PageFetcher, pageSize int, logger *zap.Logger) *CoinPager {
	return &CoinPager{
		category: category,
		fetcher:  fetcher,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Seed initializes an empty pager with server-rendered data. A pager that
// already holds coins keeps them; seeding never clobbers a warm store.
func (p *CoinPager) Seed(coins []domain.Token, cursor string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.coins) > 0 {
		return
	}
	p.coins = append([]domain.Token(nil), coins...)
	p.cursor = cursor
	p.cursorSet = true
}

// SetCoins is the initialize-only coin write for callers seeding in two
// steps. No-op once the pager holds coins.
func (p *CoinPager) SetCoins(coins []domain.Token) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.coins) > 0 {
		return
	}
	p.coins = append([]domain.Token(nil), coins...)
}

// SetPagination is the initialize-only cursor write. No-op once set.
func (p *CoinPager) SetPagination(cursor string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cursorSet {
		return
	}
	p.cursor = cursor
	p.cursorSet = true
}

// Advance moves the active index one slide. Backward never wraps below
// zero. Forward past the last loaded item enters the loading slot and
// triggers a fetch when more pages exist; gestures arriving while a
// fetch is in flight are dropped.
func (p *CoinPager) Advance(ctx context.Context, dir Direction) {
	p.mu.Lock()

	if dir == Backward {
		if p.index > 0 {
			p.index--
		}
		p.mu.Unlock()
		return
	}

	if p.state == PagerLoading {
		p.logger.Debug("Already loading, gesture dropped", zap.String("category", string(p.category)))
		p.mu.Unlock()
		return
	}

	if p.index == len(p.coins)-1 {
		if p.cursor != "" {
			p.index = len(p.coins) // loading slot
			p.mu.Unlock()
			p.LoadMore(ctx)
			return
		}
		p.logger.Debug("No more coins to load", zap.String("category", string(p.category)))
		p.mu.Unlock()
		return
	}

	if p.index < len(p.coins)-1 {
		p.index++
	}
	p.mu.Unlock()
}

// LoadMore fetches the next page. Guarded by the loading state and
// cursor presence; a second call while one is outstanding is a no-op,
// not a queued call.
func (p *CoinPager) LoadMore(ctx context.Context) {
	p.mu.Lock()
	if p.state == PagerLoading || p.cursor == "" {
		p.mu.Unlock()
		return
	}
	p.state = PagerLoading
	p.seq++
	seq := p.seq
	cursor := p.cursor
	p.mu.Unlock()

	page, err := p.fetcher.ListCoins(ctx, p.category, p.pageSize, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()

	if seq != p.seq {
		// Response belongs to a superseded request.
		p.logger.Debug("Discarding stale page response", zap.Uint64("seq", seq))
		return
	}
	p.state = PagerIdle

	if err != nil {
		p.logger.Warn("Failed to load more coins",
			zap.String("category", string(p.category)), zap.Error(err))
		p.index = max(0, len(p.coins)-1)
		return
	}

	if page == nil || len(page.Tokens) == 0 {
		p.cursor = ""
		p.index = max(0, len(p.coins)-1) // back to the last real card
		return
	}

	// Index stays put: the loading slot value equals the position of the
	// first appended token.
	p.coins = append(p.coins, page.Tokens...)
	p.cursor = page.Cursor
	p.logger.Debug("Appended coins",
		zap.String("category", string(p.category)),
		zap.Int("added", len(page.Tokens)),
		zap.Int("total", len(p.coins)))
}

// HasMore is derived from cursor presence.
func (p *CoinPager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor != ""
}

func (p *CoinPager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == PagerLoading
}

func (p *CoinPager) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index
}

func (p *CoinPager) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.coins)
}

func (p *CoinPager) Category() domain.FeedCategory {
	return p.category
}

// Current returns the token at the active index, or false while the
// index sits in the loading slot or the pager is empty.
func (p *CoinPager) Current() (domain.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.index < 0 || p.index >= len(p.coins) {
		return domain.Token{}, false
	}
	return p.coins[p.index], true
}

// TokenAt returns the token at the given position.
func (p *CoinPager) TokenAt(i int) (domain.Token, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if i < 0 || i >= len(p.coins) {
		return domain.Token{}, false
	}
	return p.coins[i], true
}

// Snapshot is a consistent view for serialization.
type Snapshot struct {
	Category domain.FeedCategory
	Index    int
	Count    int
	Loading  bool
	HasMore  bool
}

func (p *CoinPager) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Category: p.category,
		Index:    p.index,
		Count:    len(p.coins),
		Loading:  p.state == PagerLoading,
		HasMore:  p.cursor != "",
	}
}
