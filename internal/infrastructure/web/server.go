// Package web exposes the trigger and history HTTP surface: manual run
// triggers, batch kicks, digest history, and rendered digest preview.
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"dailybrief/internal/domain"
	"dailybrief/internal/infrastructure/storage"
	"dailybrief/internal/ports"
	"dailybrief/internal/usecase"
)

// Server serves the HTTP API in front of the dispatcher and digest store.
type Server struct {
	dispatcher *usecase.Dispatcher
	digests    ports.DigestStore
	logger     *slog.Logger
	http       *http.Server
}

// New builds the server and its routes.
func New(addr string, dispatcher *usecase.Dispatcher, digests ports.DigestStore, logger *slog.Logger) *Server {
	s := &Server{
		dispatcher: dispatcher,
		digests:    digests,
		logger:     logger.With("component", "web"),
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", s.health)
	api := router.Group("/api")
	{
		api.POST("/runs", s.triggerRun)
		api.POST("/runs/batch", s.triggerBatch)
		api.GET("/recipients/:id/digests", s.listDigests)
		api.GET("/digests/:id/html", s.digestHTML)
	}

	s.http = &http.Server{Addr: addr, Handler: router}
	return s
}

// Start blocks serving until Shutdown or a listener error.
func (s *Server) Start() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type runRequest struct {
	RecipientID string `json:"recipient_id" binding:"required"`
	Force       bool   `json:"force"`
}

type runResponse struct {
	RecipientID string    `json:"recipient_id"`
	Day         string    `json:"day"`
	Outcome     string    `json:"outcome"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
	DigestID    string    `json:"digest_id,omitempty"`
	Detail      string    `json:"detail,omitempty"`
}

func toRunResponse(record domain.RunRecord) runResponse {
	return runResponse{
		RecipientID: record.RecipientID,
		Day:         record.Day,
		Outcome:     string(record.Outcome),
		CompletedAt: record.CompletedAt,
		DigestID:    record.DigestID,
		Detail:      record.Detail,
	}
}

// triggerRun executes one recipient's pipeline now. A run that already
// happened today answers 409 with the existing record; force overrides.
func (s *Server) triggerRun(c *gin.Context) {
	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient_id is required"})
		return
	}

	record, err := s.dispatcher.RunOne(c.Request.Context(), req.RecipientID, req.Force)
	switch {
	case errors.Is(err, usecase.ErrRunExists):
		c.JSON(http.StatusConflict, toRunResponse(record))
	case errors.Is(err, usecase.ErrNotEligible):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "recipient is not eligible"})
	case errors.Is(err, storage.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "recipient not found"})
	case err != nil:
		s.logger.Error("manual run failed", "recipient", req.RecipientID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "run failed"})
	default:
		c.JSON(http.StatusOK, toRunResponse(record))
	}
}

// triggerBatch kicks the full batch for today in the background and
// answers immediately.
func (s *Server) triggerBatch(c *gin.Context) {
	at := time.Now()
	go func() {
		if err := s.dispatcher.RunBatch(context.Background(), at); err != nil {
			s.logger.Error("batch run failed", "error", err)
		}
	}()
	c.JSON(http.StatusAccepted, gin.H{"status": "batch started"})
}

type digestSummary struct {
	ID          string    `json:"id"`
	Subject     string    `json:"subject"`
	GeneratedAt time.Time `json:"generated_at"`
	ItemCount   int       `json:"item_count"`
}

func (s *Server) listDigests(c *gin.Context) {
	limit := 30
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	digests, err := s.digests.DigestsByRecipient(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		s.logger.Error("list digests failed", "recipient", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}

	out := make([]digestSummary, 0, len(digests))
	for _, d := range digests {
		out = append(out, digestSummary{
			ID:          d.ID,
			Subject:     d.Subject,
			GeneratedAt: d.GeneratedAt,
			ItemCount:   len(d.Items),
		})
	}
	c.JSON(http.StatusOK, gin.H{"digests": out})
}

// digestHTML serves the stored rendering for browser preview.
func (s *Server) digestHTML(c *gin.Context) {
	digest, err := s.digests.DigestByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "digest not found"})
		return
	}
	if err != nil {
		s.logger.Error("digest lookup failed", "digest", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(digest.HTMLBody))
}
