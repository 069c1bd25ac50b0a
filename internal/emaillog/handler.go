package emaillog

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/pkg/response"
)

// Lister reads recent email attempts. *Repository implements it.
type Lister interface {
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}

// Handler exposes reset-email activity to administrators.
type Handler struct {
	store  Lister
	logger *zap.Logger
}

// NewHandler creates an email log handler.
func NewHandler(store Lister, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /admin/emails?limit=N.
func (h *Handler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	list, err := h.store.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("list email logs failed", zap.Error(err))
		response.Internal(c, "failed to load email activity")
		return
	}
	response.OK(c, list)
}
