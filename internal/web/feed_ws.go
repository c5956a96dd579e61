package web

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/usecase"
	"go.uber.org/zap"
)

// clientEvent is one message from the feed client: a gesture, a
// visibility report or a playback report.
type clientEvent struct {
	Type       string  `json:"type"`
	DeltaY     float64 `json:"deltaY,omitempty"`
	StartY     float64 `json:"startY,omitempty"`
	EndY       float64 `json:"endY,omitempty"`
	DurationMs int64   `json:"durationMs,omitempty"`
	Key        string  `json:"key,omitempty"`
	Index      int     `json:"index,omitempty"`
}

type stateEvent struct {
	Type    string        `json:"type"`
	Index   int           `json:"index"`
	Count   int           `json:"count"`
	Loading bool          `json:"loading"`
	HasMore bool          `json:"hasMore"`
	Token   *domain.Token `json:"token,omitempty"`
}

type mediaEvent struct {
	Type     string `json:"type"`
	Index    int    `json:"index"`
	URL      string `json:"url,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Muted    bool   `json:"muted"`
}

// handleFeedSocket runs one feed session over a WebSocket. The client
// streams raw input events; the session debounces them, drives the
// category pager and answers with feed state and per-card media
// commands.
func (s *Server) handleFeedSocket(w http.ResponseWriter, r *http.Request) {
	category := domain.ParseFeedCategory(r.URL.Query().Get("type"))
	pager, ok := s.pagers[category]
	if !ok {
		http.Error(w, "unknown feed type", http.StatusBadRequest)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("WebSocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Seed a cold pager from the upstream list; a warm one keeps its
	// cache untouched.
	if pager.Len() == 0 {
		page, err := s.coins.ListCoins(r.Context(), category, s.cfg.Feed.PageSize, "")
		if err != nil {
			s.logger.Error("Failed to seed feed", zap.String("category", string(category)), zap.Error(err))
		} else {
			pager.Seed(page.Tokens, page.Cursor)
		}
	}

	nav := usecase.NewNavigator(pager,
		time.Duration(s.cfg.Feed.ScrollCooldownMs)*time.Millisecond,
		time.Duration(s.cfg.Feed.TransitionMs)*time.Millisecond,
		s.logger)

	sess := &feedSession{
		conn:      conn,
		pager:     pager,
		nav:       nav,
		playbacks: make(map[int]*usecase.Playback),
		logger:    s.logger.With(zap.String("category", string(category))),
	}
	sess.run(r.Context())
}

type feedSession struct {
	conn        *websocket.Conn
	pager       *usecase.CoinPager
	nav         *usecase.Navigator
	playbacks   map[int]*usecase.Playback
	activeIndex int
	logger      *zap.Logger
}

func (f *feedSession) run(ctx context.Context) {
	f.activeIndex = f.pager.Index()
	f.sendState()

	for {
		var ev clientEvent
		if err := f.conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				f.logger.Warn("Feed session closed unexpectedly", zap.Error(err))
			}
			return
		}
		f.handle(ctx, &ev)
	}
}

func (f *feedSession) handle(ctx context.Context, ev *clientEvent) {
	switch ev.Type {
	case "wheel":
		if f.nav.HandleWheel(ctx, ev.DeltaY) {
			f.afterNavigation()
		}
	case "touch":
		if f.nav.HandleTouch(ctx, ev.StartY, ev.EndY, time.Duration(ev.DurationMs)*time.Millisecond) {
			f.afterNavigation()
		}
	case "key":
		if f.nav.HandleKey(ctx, ev.Key) {
			f.afterNavigation()
		}

	case "near_viewport":
		pb := f.playbackAt(ev.Index)
		if pb == nil {
			return
		}
		pb.MarkNearViewport()
		f.sendSource(ev.Index, pb)

	case "loaded":
		pb := f.playbackAt(ev.Index)
		if pb == nil {
			return
		}
		pb.MarkLoaded()
		if ev.Index == f.activeIndex {
			if cmd, ok := pb.Activate(); ok {
				f.sendJSON(mediaEvent{Type: "play", Index: ev.Index, Muted: cmd.Muted})
			}
		}

	case "playback_error":
		pb := f.playbackAt(ev.Index)
		if pb == nil {
			return
		}
		switch pb.HandleError() {
		case usecase.RemedyMimeFallback, usecase.RemedyNextGateway:
			f.sendSource(ev.Index, pb)
		case usecase.RemedyFallbackImage:
			f.sendJSON(mediaEvent{Type: "fallback_image", Index: ev.Index, URL: pb.FallbackImage()})
		}

	case "autoplay_rejected":
		pb := f.playbackAt(ev.Index)
		if pb == nil {
			return
		}
		if cmd, ok := pb.AutoplayRejected(); ok {
			f.sendJSON(mediaEvent{Type: "play", Index: ev.Index, Muted: cmd.Muted})
		}

	case "toggle_mute":
		pb := f.playbackAt(ev.Index)
		if pb == nil {
			return
		}
		muted := pb.ToggleMute()
		f.sendJSON(mediaEvent{Type: "mute", Index: ev.Index, Muted: muted})

	default:
		f.logger.Debug("Unknown feed event", zap.String("event", ev.Type))
	}
}

// afterNavigation settles the active card after an accepted gesture:
// the old card pauses and rewinds, the new one autoplays if loaded.
func (f *feedSession) afterNavigation() {
	newIndex := f.pager.Index()
	if newIndex != f.activeIndex {
		if old, ok := f.playbacks[f.activeIndex]; ok {
			old.Deactivate()
			f.sendJSON(mediaEvent{Type: "pause", Index: f.activeIndex})
		}
		f.activeIndex = newIndex
		if pb := f.playbackAt(newIndex); pb != nil {
			if cmd, ok := pb.Activate(); ok {
				f.sendJSON(mediaEvent{Type: "play", Index: newIndex, Muted: cmd.Muted})
			}
		}
	}
	f.sendState()
}

// playbackAt lazily builds the playback machine for a loaded card.
// Returns nil for the loading slot and out-of-range indexes.
func (f *feedSession) playbackAt(index int) *usecase.Playback {
	if pb, ok := f.playbacks[index]; ok {
		return pb
	}
	token, ok := f.pager.TokenAt(index)
	if !ok || token.MediaContent == nil {
		return nil
	}
	pb := usecase.NewPlayback(*token.MediaContent, f.logger)
	f.playbacks[index] = pb
	return pb
}

func (f *feedSession) sendState() {
	snap := f.pager.Snapshot()
	ev := stateEvent{
		Type:    "state",
		Index:   snap.Index,
		Count:   snap.Count,
		Loading: snap.Loading,
		HasMore: snap.HasMore,
	}
	if token, ok := f.pager.Current(); ok {
		ev.Token = &token
	}
	f.sendJSON(ev)
}

func (f *feedSession) sendSource(index int, pb *usecase.Playback) {
	f.sendJSON(mediaEvent{
		Type:     "source",
		Index:    index,
		URL:      pb.SourceURL(),
		MimeType: pb.MimeType(),
	})
}

func (f *feedSession) sendJSON(v any) {
	if err := f.conn.WriteJSON(v); err != nil {
		f.logger.Warn("Feed session write failed", zap.Error(err))
	}
}
