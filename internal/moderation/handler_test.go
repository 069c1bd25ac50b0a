package moderation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/models"
)

type memStore struct {
	events map[uuid.UUID]*models.Event
}

func newMemStore() *memStore {
	return &memStore{events: make(map[uuid.UUID]*models.Event)}
}

func (s *memStore) add(e models.Event) uuid.UUID {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	s.events[e.ID] = &e
	return e.ID
}

func (s *memStore) ListAll(_ context.Context) ([]models.Event, error) {
	var list []models.Event
	for _, e := range s.events {
		list = append(list, *e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}

func (s *memStore) Approve(_ context.Context, id uuid.UUID) error {
	e, ok := s.events[id]
	if !ok {
		return pgx.ErrNoRows
	}
	e.Approved = true
	return nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.events[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(s.events, id)
	return nil
}

func newTestRouter(store Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(store, zap.NewNop())
	r := gin.New()
	r.GET("/admin/events", h.List)
	r.PATCH("/admin/events/:id/approve", h.Approve)
	r.DELETE("/admin/events/:id", h.Delete)
	return r
}

func TestListShowsPendingAndApproved(t *testing.T) {
	store := newMemStore()
	store.add(models.Event{Title: "Pending", Location: "A", Approved: false, CreatedAt: time.Now().Add(-time.Hour)})
	store.add(models.Event{Title: "Approved", Location: "B", Approved: true, CreatedAt: time.Now()})

	router := newTestRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/events", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope struct {
		Data []models.Event `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 2, "moderation sees every event regardless of flag")
	assert.Equal(t, "Approved", envelope.Data[0].Title, "newest first")
}

func TestApprovePendingEvent(t *testing.T) {
	store := newMemStore()
	id := store.add(models.Event{Title: "Pending", Location: "A", Approved: false})

	router := newTestRouter(store)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/events/"+id.String()+"/approve", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, store.events[id].Approved)
}

func TestApproveMissingEvent(t *testing.T) {
	router := newTestRouter(newMemStore())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/admin/events/"+uuid.New().String()+"/approve", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := newMemStore()
	id := store.add(models.Event{Title: "Spam", Location: "A"})
	survivor := store.add(models.Event{Title: "Legit", Location: "B"})

	router := newTestRouter(store)
	del := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/events/"+id.String(), nil))
		return rec
	}

	assert.Equal(t, http.StatusNoContent, del().Code)
	assert.Equal(t, http.StatusNotFound, del().Code)
	_, ok := store.events[survivor]
	assert.True(t, ok, "repeat delete must not remove a different record")
}

func TestInvalidIDRejected(t *testing.T) {
	router := newTestRouter(newMemStore())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/admin/events/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
