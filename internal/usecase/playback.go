package usecase

import (
	"strings"

	"github.com/zeero-shorts/zeero/internal/domain"
	"go.uber.org/zap"
)

// PlaybackState tracks one media card: idle → loaded → playing ⇄ paused,
// with errored as an absorbing state reachable from anywhere.
type PlaybackState int

const (
	PlaybackIdle PlaybackState = iota
	PlaybackLoaded
	PlaybackPlaying
	PlaybackPaused
	PlaybackErrored
)

// Remedy is the recovery step chosen after a playback error.
type Remedy int

const (
	RemedyNone Remedy = iota
	RemedyMimeFallback
	RemedyNextGateway
	RemedyFallbackImage
)

const ipfsScheme = "ipfs://"

// ipfsGateways are the public mirrors rotated through on load failures.
var ipfsGateways = []string{
	"https://ipfs.io/ipfs/",
	"https://gateway.pinata.cloud/ipfs/",
	"https://cloudflare-ipfs.com/ipfs/",
	"https://dweb.link/ipfs/",
}

// mimeFallbacks maps container formats with poor browser support to the
// type retried once before rotating gateways.
var mimeFallbacks = map[string]string{
	"video/quicktime": "video/mp4",
	"video/x-msvideo": "video/mp4",
	"video/x-ms-wmv":  "video/mp4",
}

// PlayCommand tells the client how to start playback.
type PlayCommand struct {
	Muted bool
}

// Playback is the resilience state machine for one media card. It is
// driven by client reports (loaded, error, autoplay rejected) and by the
// feed's active-card selection.
type Playback struct {
	media        domain.MediaContent
	mimeType     string
	gatewayIndex int
	state        PlaybackState
	muted        bool
	preload      bool
	logger       *zap.Logger
}

func NewPlayback(media domain.MediaContent, logger *zap.Logger) *Playback {
	return &Playback{
		media:    media,
		mimeType: media.MimeType,
		muted:    true, // start muted to help with autoplay
		logger:   logger,
	}
}

// SetMedia swaps the card's source and resets error and fallback state.
func (p *Playback) SetMedia(media domain.MediaContent) {
	p.media = media
	p.mimeType = media.MimeType
	p.gatewayIndex = 0
	p.state = PlaybackIdle
	p.muted = true
}

// MarkNearViewport enables source mounting. Cards far from the viewport
// keep showing only the preview image to bound concurrent decode load.
func (p *Playback) MarkNearViewport() {
	p.preload = true
}

// SourceURL resolves the current source, translating ipfs:// URIs
// through the active gateway. Empty until the card is near the viewport.
func (p *Playback) SourceURL() string {
	if !p.preload {
		return ""
	}
	uri := p.media.OriginalURI
	if strings.HasPrefix(uri, ipfsScheme) {
		hash := strings.TrimPrefix(uri, ipfsScheme)
		return ipfsGateways[p.gatewayIndex%len(ipfsGateways)] + hash
	}
	return uri
}

func (p *Playback) MimeType() string {
	return p.mimeType
}

func (p *Playback) State() PlaybackState {
	return p.state
}

func (p *Playback) Muted() bool {
	return p.muted
}

// MarkLoaded records that the client decoded the first frame.
func (p *Playback) MarkLoaded() {
	if p.state == PlaybackIdle {
		p.state = PlaybackLoaded
	}
}

// HandleError picks the next recovery step: substitute the fallback MIME
// once for known-problematic formats, then rotate IPFS gateways (each
// attempted once), then give up and show the static fallback image.
func (p *Playback) HandleError() Remedy {
	if p.state == PlaybackErrored {
		return RemedyNone
	}

	if fallback, ok := mimeFallbacks[p.mimeType]; ok && p.mimeType != fallback {
		p.logger.Info("Problematic format, substituting fallback type",
			zap.String("from", p.mimeType), zap.String("to", fallback))
		p.mimeType = fallback
		p.state = PlaybackIdle
		return RemedyMimeFallback
	}

	if strings.HasPrefix(p.media.OriginalURI, ipfsScheme) && p.gatewayIndex < len(ipfsGateways)-1 {
		p.gatewayIndex++
		p.logger.Info("Trying alternative IPFS gateway",
			zap.Int("gateway_index", p.gatewayIndex))
		p.state = PlaybackIdle
		return RemedyNextGateway
	}

	p.logger.Warn("Video failed to load, falling back to static image",
		zap.String("uri", p.media.OriginalURI))
	p.state = PlaybackErrored
	return RemedyFallbackImage
}

// Activate attempts unmuted autoplay for the card that became active.
// Returns false when the card has nothing playable yet.
func (p *Playback) Activate() (PlayCommand, bool) {
	switch p.state {
	case PlaybackLoaded, PlaybackPaused, PlaybackPlaying:
		p.state = PlaybackPlaying
		p.muted = false
		return PlayCommand{Muted: false}, true
	}
	return PlayCommand{}, false
}

// AutoplayRejected falls back to muted playback after the browser
// refused unmuted autoplay.
func (p *Playback) AutoplayRejected() (PlayCommand, bool) {
	if p.state != PlaybackPlaying {
		return PlayCommand{}, false
	}
	p.muted = true
	return PlayCommand{Muted: true}, true
}

// Deactivate pauses the card and rewinds it to the start.
func (p *Playback) Deactivate() {
	if p.state == PlaybackPlaying {
		p.state = PlaybackPaused
	}
}

// ToggleMute flips the muted flag during playback.
func (p *Playback) ToggleMute() bool {
	p.muted = !p.muted
	return p.muted
}

// FallbackImage is the static image shown once the card is errored.
func (p *Playback) FallbackImage() string {
	pi := p.media.PreviewImage
	if pi == nil {
		return ""
	}
	if pi.Medium != "" {
		return pi.Medium
	}
	return pi.Small
}
