package web

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zeero-shorts/zeero/internal/domain"
	"go.uber.org/zap"
)

const maxUploadBytes = 100 << 20 // 100MB

type paginationInfo struct {
	Cursor *string `json:"cursor"`
}

type coinListResponse struct {
	Zora20Tokens []domain.Token `json:"zora20Tokens"`
	Pagination   paginationInfo `json:"pagination"`
}

func (s *Server) handleListCoins(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := strconv.Atoi(q.Get("limit"))
	if err != nil || limit <= 0 {
		limit = 1
	}
	after := q.Get("after")
	category := domain.ParseFeedCategory(q.Get("type"))

	page, err := s.coins.ListCoins(r.Context(), category, limit, after)
	if err != nil {
		s.logger.Error("Failed to fetch coins",
			zap.String("category", string(category)), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     classifyUpstreamError(err),
			Details:   err.Error(),
			Timestamp: timestamp(),
		})
		return
	}

	resp := coinListResponse{Zora20Tokens: page.Tokens}
	if resp.Zora20Tokens == nil {
		resp.Zora20Tokens = []domain.Token{}
	}
	if page.Cursor != "" {
		resp.Pagination.Cursor = &page.Cursor
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetToken(w http.ResponseWriter, r *http.Request) {
	address := r.PathValue("address")
	if address == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Token address is required"})
		return
	}

	token, err := s.coins.FindToken(r.Context(), address)
	if errors.Is(err, domain.ErrTokenNotFound) {
		s.writeJSON(w, http.StatusNotFound, errorResponse{
			Error:   "Token not found",
			Message: "The requested token address was not found in any data source",
			Address: address,
		})
		return
	}
	if err != nil {
		s.logger.Error("Failed to fetch token", zap.String("address", address), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:     "Failed to fetch token",
			Details:   err.Error(),
			Timestamp: timestamp(),
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{"token": token})
}

type uploadResponse struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Filename string `json:"filename"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes+(1<<20))

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.ErrFileTooLarge.Error()})
			return
		}
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.ErrNoFile.Error()})
		return
	}
	defer file.Close()

	if header.Size > maxUploadBytes {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: domain.ErrFileTooLarge.Error()})
		return
	}

	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	if ext == "" {
		ext = "mp4"
	}
	fileName := uuid.NewString() + "." + ext
	key := "videos/" + fileName
	contentType := header.Header.Get("Content-Type")

	url, err := s.objects.Put(r.Context(), key, contentType, header.Filename, file, header.Size)
	if err != nil {
		s.logger.Error("Upload failed", zap.String("key", key), zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to upload to R2"})
		return
	}

	up := &domain.Upload{
		Key:         key,
		URL:         url,
		Filename:    fileName,
		ContentType: contentType,
		SizeBytes:   header.Size,
		CreatedAt:   time.Now(),
	}
	if err := s.uploads.SaveUpload(r.Context(), up); err != nil {
		// The object is stored; a ledger miss is not worth failing the upload.
		s.logger.Error("Failed to record upload", zap.String("key", key), zap.Error(err))
	}

	s.logger.Info("Upload stored",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int64("size", header.Size))

	s.writeJSON(w, http.StatusOK, uploadResponse{URL: url, Key: key, Filename: fileName})
}

func (s *Server) handleListUploads(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 || limit > 200 {
		limit = 50
	}

	uploads, err := s.uploads.ListUploads(r.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list uploads", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to list uploads"})
		return
	}
	if uploads == nil {
		uploads = []*domain.Upload{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"uploads": uploads})
}

// handleManifest serves the host-verification document. Values come from
// the environment at request time so a redeploy is not needed to rotate
// them.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	appURL := os.Getenv("PUBLIC_URL")
	imageURL := os.Getenv("PUBLIC_IMAGE_URL")
	logoURL := os.Getenv("PUBLIC_LOGO_URL")
	neynarClientID := os.Getenv("NEYNAR_CLIENT_ID")

	manifest := map[string]any{
		"accountAssociation": map[string]string{
			"header":    os.Getenv("FARCASTER_ACCOUNT_HEADER"),
			"payload":   os.Getenv("FARCASTER_ACCOUNT_PAYLOAD"),
			"signature": os.Getenv("FARCASTER_ACCOUNT_SIGNATURE"),
		},
		"frame": map[string]string{
			"version":               "1",
			"name":                  "Zeero",
			"iconUrl":               logoURL,
			"homeUrl":               appURL,
			"imageUrl":              imageURL,
			"description":           "Share your videos and earn from them (zora)",
			"buttonTitle":           "Start at Zeero",
			"splashImageUrl":        logoURL,
			"splashBackgroundColor": "#FFFFFF",
			"webhookUrl":            "https://api.neynar.com/f/app/" + neynarClientID + "/event",
		},
	}
	s.writeJSON(w, http.StatusOK, manifest)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
