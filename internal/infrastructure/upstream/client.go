package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/zeero-shorts/zeero/internal/domain"
	"go.uber.org/zap"
)

// Client talks to the coin explore API. Each category maps to one of
// three ranked list endpoints, all paginated with opaque cursors.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

type exploreResponse struct {
	ExploreList *struct {
		Edges    []exploreEdge `json:"edges"`
		PageInfo pageInfo      `json:"pageInfo"`
	} `json:"exploreList"`
}

type exploreEdge struct {
	Node edgeNode `json:"node"`
}

type pageInfo struct {
	EndCursor   string `json:"endCursor"`
	HasNextPage bool   `json:"hasNextPage"`
}

type edgeNode struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	Address           string `json:"address"`
	Symbol            string `json:"symbol"`
	TotalSupply       string `json:"totalSupply"`
	TotalVolume       string `json:"totalVolume"`
	Volume24h         string `json:"volume24h"`
	CreatedAt         string `json:"createdAt"`
	CreatorAddress    string `json:"creatorAddress"`
	MarketCap         string `json:"marketCap"`
	MarketCapDelta24h string `json:"marketCapDelta24h"`
	ChainID           int    `json:"chainId"`
	UniqueHolders     int    `json:"uniqueHolders"`
	TokenURI          string `json:"tokenUri"`
	CreatorProfile    *struct {
		Handle string         `json:"handle"`
		Avatar *domain.Avatar `json:"avatar"`
	} `json:"creatorProfile"`
	MediaContent *domain.MediaContent `json:"mediaContent"`
	Transfers    *struct {
		Count int `json:"count"`
	} `json:"transfers"`
}

func listTypeFor(category domain.FeedCategory) string {
	switch category {
	case domain.CategoryTopVolume:
		return "TOP_VOLUME_24H"
	case domain.CategoryTopGainers:
		return "MARKET_CAP_DELTA_24H"
	default:
		return "NEW"
	}
}

// ListCoins fetches one page of the category's explore list and
// normalizes its edges into Tokens.
func (c *Client) ListCoins(ctx context.Context, category domain.FeedCategory, count int, after string) (*domain.ListPage, error) {
	q := url.Values{}
	q.Set("listType", listTypeFor(category))
	q.Set("count", strconv.Itoa(count))
	if after != "" {
		q.Set("after", after)
	}

	endpoint := c.baseURL + "/explore?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("explore list %s: unexpected status %d", category, resp.StatusCode)
	}

	var body exploreResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode explore response: %w", err)
	}
	if body.ExploreList == nil {
		return nil, fmt.Errorf("explore list %s: empty response", category)
	}

	page := &domain.ListPage{
		Tokens:      make([]domain.Token, 0, len(body.ExploreList.Edges)),
		Cursor:      body.ExploreList.PageInfo.EndCursor,
		HasNextPage: body.ExploreList.PageInfo.HasNextPage,
	}
	for _, edge := range body.ExploreList.Edges {
		page.Tokens = append(page.Tokens, normalizeNode(edge.Node))
	}

	c.logger.Debug("Fetched explore page",
		zap.String("category", string(category)),
		zap.Int("edges", len(page.Tokens)),
		zap.Bool("has_next", page.HasNextPage))

	return page, nil
}

// normalizeNode flattens a raw edge into a Token, applying the defaults
// the frontend relies on for absent upstream fields.
func normalizeNode(n edgeNode) domain.Token {
	t := domain.Token{
		ID:                n.ID,
		Name:              orDefault(n.Name, "Unnamed Token"),
		Description:       n.Description,
		Address:           n.Address,
		Symbol:            n.Symbol,
		TotalSupply:       orDefault(n.TotalSupply, "0"),
		TotalVolume:       orDefault(n.TotalVolume, "0"),
		Volume24h:         orDefault(n.Volume24h, "0"),
		CreatedAt:         n.CreatedAt,
		CreatorAddress:    n.CreatorAddress,
		MarketCap:         orDefault(n.MarketCap, "0"),
		MarketCapDelta24h: orDefault(n.MarketCapDelta24h, "0"),
		ChainID:           n.ChainID,
		UniqueHolders:     n.UniqueHolders,
		TokenURI:          n.TokenURI,
		MediaContent:      n.MediaContent,
	}
	t.Creator.Handle = "anonymous"
	if n.CreatorProfile != nil {
		t.Creator.Handle = orDefault(n.CreatorProfile.Handle, "anonymous")
		t.Creator.Avatar = n.CreatorProfile.Avatar
	}
	if n.Transfers != nil {
		t.Transfers.Count = n.Transfers.Count
	}
	return t
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
