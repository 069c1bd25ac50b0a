package events

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/auth"
	"github.com/cmh-events/backend/internal/models"
	"github.com/cmh-events/backend/pkg/metrics"
	"github.com/cmh-events/backend/pkg/response"
	"github.com/cmh-events/backend/pkg/storage"
)

// Store is the event persistence capability the handler needs. *Repository
// implements it; tests substitute a fake. Absence is signalled with
// pgx.ErrNoRows in either case.
type Store interface {
	Create(ctx context.Context, e *models.Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	GetApprovedByID(ctx context.Context, id uuid.UUID) (*models.Event, error)
	ListApproved(ctx context.Context) ([]models.Event, error)
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]models.Event, error)
	Update(ctx context.Context, id uuid.UUID, upd EventUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Uploader stores one event image and returns its public URL.
type Uploader interface {
	UploadEventImage(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

// EventForm is the multipart form for creating and editing events. Binding
// rejects missing title or location before any storage or database call.
type EventForm struct {
	Title            string `form:"title" binding:"required"`
	OrganizationName string `form:"organization_name"`
	DateTime         string `form:"date_time"`
	Pricing          string `form:"pricing"`
	Location         string `form:"location" binding:"required"`
	About            string `form:"about"`
	ContactDetails   string `form:"contact_details"`
}

// Handler handles event HTTP endpoints.
type Handler struct {
	store    Store
	uploader Uploader
	logger   *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(store Store, uploader Uploader, logger *zap.Logger) *Handler {
	return &Handler{store: store, uploader: uploader, logger: logger}
}

// ListPublic handles GET /events: approved events only, soonest first.
func (h *Handler) ListPublic(c *gin.Context) {
	list, err := h.store.ListApproved(c.Request.Context())
	if err != nil {
		h.logger.Error("list approved events failed", zap.Error(err))
		response.Internal(c, "failed to load events")
		return
	}
	response.OK(c, list)
}

// GetPublic handles GET /events/:id. A pending event and a nonexistent ID
// produce identical responses; the public surface cannot tell them apart.
func (h *Handler) GetPublic(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	event, err := h.store.GetApprovedByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, event)
}

// ListMine handles GET /me/events: the session identity's events, newest first.
func (h *Handler) ListMine(c *gin.Context) {
	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	list, err := h.store.ListByOwner(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list own events failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to load your events")
		return
	}
	response.OK(c, list)
}

// GetMine handles GET /me/events/:id, used to pre-populate the edit form.
func (h *Handler) GetMine(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	// TODO: verify the session identity owns the event once store-side
	// access rules are settled.
	event, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, event)
}

// Create handles POST /events (multipart). Field validation happens before
// any network call; a failed image upload aborts the whole submission so no
// partial event is created.
func (h *Handler) Create(c *gin.Context) {
	var form EventForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Location) == "" {
		response.BadRequest(c, "title and location are required")
		return
	}
	dateTime, err := parseDateTime(form.DateTime)
	if err != nil {
		response.BadRequest(c, "invalid date_time: use RFC3339 or YYYY-MM-DDTHH:MM")
		return
	}

	imageURL, ok := h.uploadImageIfPresent(c)
	if !ok {
		return
	}

	userID := c.MustGet(auth.ContextUserID).(uuid.UUID)
	event := &models.Event{
		UserID:           userID,
		Title:            strings.TrimSpace(form.Title),
		OrganizationName: strings.TrimSpace(form.OrganizationName),
		DateTime:         dateTime,
		Pricing:          strings.TrimSpace(form.Pricing),
		Location:         strings.TrimSpace(form.Location),
		About:            strings.TrimSpace(form.About),
		ContactDetails:   strings.TrimSpace(form.ContactDetails),
		ImageURL:         imageURL,
	}
	if err := h.store.Create(c.Request.Context(), event); err != nil {
		h.logger.Error("create event failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to create event")
		return
	}
	response.Created(c, event)
}

// Update handles PUT /events/:id (multipart). The stored image URL survives
// unless a replacement file is supplied, and every successful edit resets the
// moderation flag to pending.
func (h *Handler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	// TODO: verify the session identity owns the event once store-side
	// access rules are settled.
	existing, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}

	var form EventForm
	if err := c.ShouldBind(&form); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Location) == "" {
		response.BadRequest(c, "title and location are required")
		return
	}
	dateTime, err := parseDateTime(form.DateTime)
	if err != nil {
		response.BadRequest(c, "invalid date_time: use RFC3339 or YYYY-MM-DDTHH:MM")
		return
	}

	imageURL := existing.ImageURL
	if uploaded, ok := h.uploadImageIfPresent(c); !ok {
		return
	} else if uploaded != "" {
		imageURL = uploaded
	}

	upd := EventUpdate{
		Title:            strings.TrimSpace(form.Title),
		OrganizationName: strings.TrimSpace(form.OrganizationName),
		DateTime:         dateTime,
		Pricing:          strings.TrimSpace(form.Pricing),
		Location:         strings.TrimSpace(form.Location),
		About:            strings.TrimSpace(form.About),
		ContactDetails:   strings.TrimSpace(form.ContactDetails),
		ImageURL:         imageURL,
	}
	if err := h.store.Update(c.Request.Context(), id, upd); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("update event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to update event")
		return
	}

	updated, err := h.store.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "event not found")
		return
	}
	response.OK(c, updated)
}

// Delete handles DELETE /events/:id. Deleting an already-deleted ID reports
// not-found and affects nothing else.
func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid event id")
		return
	}
	// TODO: verify the session identity owns the event once store-side
	// access rules are settled.
	if err := h.store.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.NotFound(c, "event not found")
			return
		}
		h.logger.Error("delete event failed", zap.Error(err), zap.String("event_id", id.String()))
		response.Internal(c, "failed to delete event")
		return
	}
	response.NoContent(c)
}

// uploadImageIfPresent reads the optional "image" form file and uploads it.
// Returns ("", true) when no file was sent. On any failure it writes the
// error response and returns ok=false; the caller must not proceed to a
// database write.
func (h *Handler) uploadImageIfPresent(c *gin.Context) (string, bool) {
	file, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", true
		}
		response.BadRequest(c, "invalid image upload")
		return "", false
	}
	if file.Size > storage.MaxImageSize {
		response.BadRequest(c, "image exceeds 10MB limit")
		return "", false
	}
	if !storage.ValidateImageType(file.Header.Get("Content-Type"), file.Filename) {
		response.BadRequest(c, "invalid image type: only jpg, png, webp and gif allowed")
		return "", false
	}

	contentType := storage.ContentTypeForFilename(file.Filename)
	if ct := file.Header.Get("Content-Type"); ct != "" {
		if _, ok := storage.AllowedImageTypes[ct]; ok {
			contentType = ct
		}
	}

	data, err := readFormFile(file)
	if err != nil {
		h.logger.Error("read uploaded image failed", zap.Error(err))
		response.Internal(c, "failed to read image")
		return "", false
	}

	url, err := h.uploader.UploadEventImage(c.Request.Context(), file.Filename, contentType, data)
	if err != nil {
		metrics.ImageUploads.WithLabelValues("failure").Inc()
		h.logger.Error("image upload failed", zap.Error(err), zap.String("filename", file.Filename))
		response.Internal(c, "failed to upload image")
		return "", false
	}
	metrics.ImageUploads.WithLabelValues("success").Inc()
	return url, true
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseDateTime parses the optional scheduled date/time. Empty input stays
// null. Accepts RFC3339 and the HTML datetime-local shape.
func parseDateTime(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", s, time.Local)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
