package domain

import "strings"

// FeedCategory selects one of the three upstream explore lists.
type FeedCategory string

const (
	CategoryNew        FeedCategory = "new"
	CategoryTopVolume  FeedCategory = "top-volume"
	CategoryTopGainers FeedCategory = "top-gainers"
)

// ParseFeedCategory maps a request "type" parameter to a category,
// defaulting to the new-coins list.
func ParseFeedCategory(s string) FeedCategory {
	switch s {
	case string(CategoryTopVolume):
		return CategoryTopVolume
	case string(CategoryTopGainers):
		return CategoryTopGainers
	default:
		return CategoryNew
	}
}

type PreviewImage struct {
	Small    string `json:"small,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Blurhash string `json:"blurhash,omitempty"`
}

type Avatar struct {
	PreviewImage *PreviewImage `json:"previewImage,omitempty"`
}

type MediaContent struct {
	MimeType     string        `json:"mimeType"`
	OriginalURI  string        `json:"originalUri"`
	PreviewImage *PreviewImage `json:"previewImage,omitempty"`
}

// IsVideo reports whether the media carries a video mime type.
func (m *MediaContent) IsVideo() bool {
	return m != nil && strings.HasPrefix(m.MimeType, "video/")
}

type Creator struct {
	Handle string  `json:"handle"`
	Avatar *Avatar `json:"avatar,omitempty"`
}

type TransferCount struct {
	Count int `json:"count"`
}

// Token is a normalized view of one creator coin. Market metrics are
// transported as strings by the upstream API and kept that way.
type Token struct {
	ID                string        `json:"id"`
	Name              string        `json:"name"`
	Description       string        `json:"description"`
	Address           string        `json:"address"`
	Symbol            string        `json:"symbol"`
	ChainID           int           `json:"chainId"`
	TotalSupply       string        `json:"totalSupply"`
	TotalVolume       string        `json:"totalVolume"`
	Volume24h         string        `json:"volume24h"`
	MarketCap         string        `json:"marketCap"`
	MarketCapDelta24h string        `json:"marketCapDelta24h"`
	UniqueHolders     int           `json:"uniqueHolders"`
	Transfers         TransferCount `json:"transfers"`
	CreatedAt         string        `json:"createdAt,omitempty"`
	CreatorAddress    string        `json:"creatorAddress"`
	TokenURI          string        `json:"tokenUri,omitempty"`
	Creator           Creator       `json:"creator"`
	MediaContent      *MediaContent `json:"mediaContent"`
}

// HasVideo reports feed eligibility.
func (t *Token) HasVideo() bool {
	return t.MediaContent.IsVideo()
}

// SameAddress compares on-chain addresses case-insensitively.
func (t *Token) SameAddress(address string) bool {
	return strings.EqualFold(t.Address, address)
}

// FilterVideoTokens keeps only feed-eligible tokens, preserving order.
func FilterVideoTokens(tokens []Token) []Token {
	var out []Token
	for _, t := range tokens {
		if t.HasVideo() {
			out = append(out, t)
		}
	}
	return out
}
