package moderation

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/models"
	"github.com/cmh-events/backend/pkg/metrics"
	"github.com/cmh-events/backend/pkg/response"
)

// Store is the moderation capability over events: list everything, approve,
// delete. events.*Repository implements it.
type Store interface {
	ListAll(ctx context.Context) ([]models.Event, error)
	Approve(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Handler handles the administrator moderation endpoints. Routes using it sit
// behind RequireSession and RequireAdmin.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a moderation handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /admin/events: every event regardless of moderation state,
// newest first. The dashboard is small enough for one unbounded fetch.
func (h *Handler) List(c *gin.Context) {
	list, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list events failed", zap.Error(err))
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// Approve handles PATCH /admin/events/:id/approve: pending -> approved.
func (h *Handler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.store.Approve(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("approve event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to approve event")
		return
	}
	metrics.ModerationActions.WithLabelValues("approve").Inc()
	response.OK(c, gin.H{"id": id, "approved": true})
}

// Delete handles DELETE /admin/events/:id. Repeating a delete on an
// already-deleted ID reports not-found; it never touches another record.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("delete event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to delete event")
		return
	}
	metrics.ModerationActions.WithLabelValues("delete").Inc()
	response.NoContent(c)
}
