package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/usecase"
	"go.uber.org/zap"
)

func newPlayback(mime, uri string) *usecase.Playback {
	return usecase.NewPlayback(domain.MediaContent{
		MimeType:    mime,
		OriginalURI: uri,
		PreviewImage: &domain.PreviewImage{
			Small:  "https://img.example/small.png",
			Medium: "https://img.example/medium.png",
		},
	}, zap.NewNop())
}

func TestSourceURLLazyUntilNearViewport(t *testing.T) {
	pb := newPlayback("video/mp4", "ipfs://bafyhash")

	assert.Equal(t, "", pb.SourceURL(), "no source before the card nears the viewport")

	pb.MarkNearViewport()
	assert.Equal(t, "https://ipfs.io/ipfs/bafyhash", pb.SourceURL())
}

func TestSourceURLPassesThroughHTTP(t *testing.T) {
	pb := newPlayback("video/mp4", "https://cdn.example/video.mp4")
	pb.MarkNearViewport()

	assert.Equal(t, "https://cdn.example/video.mp4", pb.SourceURL())
}

func TestQuicktimeFallsBackToMP4Once(t *testing.T) {
	pb := newPlayback("video/quicktime", "ipfs://bafyhash")
	pb.MarkNearViewport()

	assert.Equal(t, usecase.RemedyMimeFallback, pb.HandleError())
	assert.Equal(t, "video/mp4", pb.MimeType())

	// Second error on the same source moves on to gateway rotation.
	assert.Equal(t, usecase.RemedyNextGateway, pb.HandleError())
	assert.Equal(t, "https://gateway.pinata.cloud/ipfs/bafyhash", pb.SourceURL())
}

func TestGatewayRotationExhaustsIntoErrored(t *testing.T) {
	pb := newPlayback("video/mp4", "ipfs://bafyhash")
	pb.MarkNearViewport()

	assert.Equal(t, usecase.RemedyNextGateway, pb.HandleError())
	assert.Equal(t, usecase.RemedyNextGateway, pb.HandleError())
	assert.Equal(t, usecase.RemedyNextGateway, pb.HandleError())

	assert.Equal(t, usecase.RemedyFallbackImage, pb.HandleError())
	assert.Equal(t, usecase.PlaybackErrored, pb.State())
	assert.Equal(t, "https://img.example/medium.png", pb.FallbackImage())

	// Errored is absorbing.
	assert.Equal(t, usecase.RemedyNone, pb.HandleError())
}

func TestNonIPFSErrorGoesStraightToFallbackImage(t *testing.T) {
	pb := newPlayback("video/webm", "https://cdn.example/video.webm")
	pb.MarkNearViewport()

	assert.Equal(t, usecase.RemedyFallbackImage, pb.HandleError())
	assert.Equal(t, usecase.PlaybackErrored, pb.State())
}

func TestActivationLifecycle(t *testing.T) {
	pb := newPlayback("video/mp4", "ipfs://bafyhash")

	_, ok := pb.Activate()
	assert.False(t, ok, "nothing to play before the first frame loads")

	pb.MarkLoaded()
	cmd, ok := pb.Activate()
	assert.True(t, ok)
	assert.False(t, cmd.Muted, "active card tries unmuted autoplay first")
	assert.Equal(t, usecase.PlaybackPlaying, pb.State())

	cmd, ok = pb.AutoplayRejected()
	assert.True(t, ok)
	assert.True(t, cmd.Muted, "falls back to muted autoplay")

	pb.Deactivate()
	assert.Equal(t, usecase.PlaybackPaused, pb.State())

	cmd, ok = pb.Activate()
	assert.True(t, ok)
	assert.Equal(t, usecase.PlaybackPlaying, pb.State())
	assert.False(t, cmd.Muted)
}

func TestSetMediaResetsFallbackState(t *testing.T) {
	pb := newPlayback("video/quicktime", "ipfs://bafyhash")
	pb.MarkNearViewport()

	pb.HandleError() // mime fallback
	pb.HandleError() // gateway 1

	pb.SetMedia(domain.MediaContent{MimeType: "video/quicktime", OriginalURI: "ipfs://bafyother"})

	assert.Equal(t, "video/quicktime", pb.MimeType())
	assert.Equal(t, "https://ipfs.io/ipfs/bafyother", pb.SourceURL())
	assert.Equal(t, usecase.PlaybackIdle, pb.State())
}
