package web

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/zeero-shorts/zeero/internal/config"
	"github.com/zeero-shorts/zeero/internal/domain"
	"github.com/zeero-shorts/zeero/internal/usecase"
	"go.uber.org/zap"
)

type Server struct {
	router   *http.ServeMux
	server   *http.Server
	coins    *usecase.CoinService
	pagers   map[domain.FeedCategory]*usecase.CoinPager
	uploads  domain.UploadRepository
	objects  domain.ObjectStore
	cfg      *config.Config
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewServer(
	port int,
	coins *usecase.CoinService,
	pagers map[domain.FeedCategory]*usecase.CoinPager,
	uploads domain.UploadRepository,
	objects domain.ObjectStore,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	s := &Server{
		router:  http.NewServeMux(),
		coins:   coins,
		pagers:  pagers,
		uploads: uploads,
		objects: objects,
		cfg:     cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
	s.routes()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: s.router,
	}
	return s
}

func (s *Server) routes() {
	// Coins
	s.router.HandleFunc("GET /api/coins", s.handleListCoins)
	s.router.HandleFunc("GET /api/token/{address}", s.handleGetToken)

	// Uploads
	s.router.HandleFunc("POST /api/r2/upload", s.handleUpload)
	s.router.HandleFunc("GET /api/uploads", s.handleListUploads)

	// Feed session
	s.router.HandleFunc("GET /ws/feed", s.handleFeedSocket)

	// Host manifest
	s.router.HandleFunc("GET /.well-known/farcaster.json", s.handleManifest)

	// Status
	s.router.HandleFunc("GET /status", s.handleStatus)
}

func (s *Server) Start() error {
	s.logger.Info("Starting web server", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
