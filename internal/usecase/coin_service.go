package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/infrastructure/upstream"
	"go.uber.org/zap"
)

const (
	// pageAttemptCeiling bounds the page loop when a batch holds no
	// video tokens but a next cursor exists.
	pageAttemptCeiling = 5

	// fetchMaxRetries / fetchBaseDelay parameterize the backoff wrapped
	// around each upstream list call.
	fetchMaxRetries = 2
	fetchBaseDelay  = 2 * time.Second

	// searchPageCeiling / searchPageSize bound the per-source paging of
	// an address lookup.
	searchPageCeiling = 10
	searchPageSize    = 20

	tokenCacheMaxAge = 5 * time.Minute
)

// CoinService implements the coin list fetch and the token lookup on top
// of the upstream explore lists.
type CoinService struct {
	source domain.CoinSource
	cache  domain.TokenCache
	logger *zap.Logger
}

func NewCoinService(source domain.CoinSource, cache domain.TokenCache, logger *zap.Logger) *CoinService {
	return &CoinService{
		source: source,
		cache:  cache,
		logger: logger,
	}
}

// ListCoins returns at least one video-bearing token when the upstream
// has any: it fetches a page, filters to video-only entries, and follows
// the cursor for up to pageAttemptCeiling pages while the filtered batch
// stays empty. The surviving batch is reversed before being returned;
// the display order depends on it, so keep it that way.
func (s *CoinService) ListCoins(ctx context.Context, category domain.FeedCategory, limit int, after string) (*domain.ListPage, error) {
	var videoTokens []domain.Token
	cursor := after

	for attempts := 1; attempts <= pageAttemptCeiling; attempts++ {
		page, err := upstream.WithBackoff(ctx, func(ctx context.Context) (*domain.ListPage, error) {
			return s.source.ListCoins(ctx, category, limit, cursor)
		}, fetchMaxRetries, fetchBaseDelay)
		if err != nil {
			return nil, err
		}

		videoTokens = domain.FilterVideoTokens(page.Tokens)
		cursor = page.Cursor

		if len(videoTokens) > 0 || cursor == "" {
			break
		}
		s.logger.Debug("No video tokens in batch, trying next page",
			zap.String("category", string(category)),
			zap.Int("attempt", attempts))
	}

	for i, j := 0, len(videoTokens)-1; i < j; i, j = i+1, j-1 {
		videoTokens[i], videoTokens[j] = videoTokens[j], videoTokens[i]
	}

	return &domain.ListPage{Tokens: videoTokens, Cursor: cursor}, nil
}

// FindToken searches all three explore lists concurrently for a token
// with the given address (case-insensitive). The first hit among the
// three searches wins; order between sources is not guaranteed. Found
// tokens are written through to the cache, which is consulted first.
func (s *CoinService) FindToken(ctx context.Context, address string) (*domain.Token, error) {
	if s.cache != nil {
		cached, err := s.cache.GetToken(ctx, address, tokenCacheMaxAge)
		if err != nil {
			s.logger.Warn("Token cache read failed", zap.Error(err))
		} else if cached != nil {
			return cached, nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	categories := []domain.FeedCategory{
		domain.CategoryTopVolume,
		domain.CategoryTopGainers,
		domain.CategoryNew,
	}

	found := make(chan *domain.Token, len(categories))
	var wg sync.WaitGroup
	for _, category := range categories {
		wg.Add(1)
		go func(category domain.FeedCategory) {
			defer wg.Done()
			if tok := s.searchSource(ctx, category, address); tok != nil {
				found <- tok
			}
		}(category)
	}
	go func() {
		wg.Wait()
		close(found)
	}()

	tok, ok := <-found
	if !ok || tok == nil {
		return nil, domain.ErrTokenNotFound
	}
	cancel() // stop the remaining searches

	s.logger.Info("Token found", zap.String("address", tok.Address))
	if s.cache != nil {
		if err := s.cache.PutToken(context.WithoutCancel(ctx), tok); err != nil {
			s.logger.Warn("Token cache write failed", zap.Error(err))
		}
	}
	return tok, nil
}

// searchSource pages through one category list looking for the address,
// bounded at searchPageCeiling pages. Errors end this source's search
// without failing the others.
func (s *CoinService) searchSource(ctx context.Context, category domain.FeedCategory, address string) *domain.Token {
	cursor := ""
	for attempts := 0; attempts < searchPageCeiling; attempts++ {
		page, err := s.source.ListCoins(ctx, category, searchPageSize, cursor)
		if err != nil {
			if ctx.Err() == nil {
				s.logger.Warn("Search failed in source",
					zap.String("category", string(category)), zap.Error(err))
			}
			return nil
		}

		for _, tok := range domain.FilterVideoTokens(page.Tokens) {
			if tok.SameAddress(address) {
				return &tok
			}
		}

		if !page.HasNextPage || page.Cursor == "" {
			return nil
		}
		cursor = page.Cursor
	}
	return nil
}
