package auth

import (
	"context"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cmh-events/backend/internal/models"
	"github.com/cmh-events/backend/pkg/queue"
	"github.com/cmh-events/backend/pkg/response"
	"github.com/cmh-events/backend/pkg/utils"
)

// Gin context keys populated by the session middleware.
const (
	ContextUserID        = "user_id"
	ContextUserEmail     = "user_email"
	ContextSessionID     = "session_id"
	ContextSessionExpiry = "session_expiry"
)

// resetTokenTTL is how long a password reset link stays valid.
const resetTokenTTL = 30 * time.Minute

// ProfileStore is the profile persistence capability the handler needs.
// *Repository implements it; tests substitute a fake.
type ProfileStore interface {
	Create(ctx context.Context, email, passwordHash, organizationName string) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// ResetMailEnqueuer queues password-reset emails for the worker.
type ResetMailEnqueuer interface {
	EnqueuePasswordReset(ctx context.Context, payload queue.PasswordResetPayload) error
}

// SignupRequest is the body for POST /auth/signup.
type SignupRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	OrganizationName string `json:"organization_name"`
}

// LoginRequest is the body for POST /auth/login and POST /admin/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ResetRequest is the body for POST /auth/password-reset.
type ResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetConfirmRequest is the body for POST /auth/password-reset/confirm.
type ResetConfirmRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// TokenResponse is the auth response with the session token.
type TokenResponse struct {
	Token   string               `json:"token"`
	Profile models.ProfilePublic `json:"profile"`
}

// Handler handles identity HTTP endpoints.
type Handler struct {
	profiles ProfileStore
	jwt      *JWTService
	sessions SessionStore
	resets   ResetTokenStore
	jobs     ResetMailEnqueuer
	resetURL string
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(profiles ProfileStore, jwt *JWTService, sessions SessionStore, resets ResetTokenStore, jobs ResetMailEnqueuer, resetURL string, logger *zap.Logger) *Handler {
	return &Handler{
		profiles: profiles,
		jwt:      jwt,
		sessions: sessions,
		resets:   resets,
		jobs:     jobs,
		resetURL: resetURL,
		logger:   logger,
	}
}

// Signup handles POST /auth/signup.
func (h *Handler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	_, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err == nil {
		response.BadRequest(c, "email already registered")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}

	profile, err := h.profiles.Create(c.Request.Context(), req.Email, hash, req.OrganizationName)
	if err != nil {
		h.logger.Error("create profile failed", zap.Error(err))
		response.Internal(c, "failed to create account")
		return
	}

	token, err := h.jwt.Generate(profile.ID, profile.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.Created(c, TokenResponse{Token: token, Profile: profile.ToPublic()})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	profile, _ := h.authenticate(c, req)
	if profile == nil {
		return
	}

	token, err := h.jwt.Generate(profile.ID, profile.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, Profile: profile.ToPublic()})
}

// AdminLogin handles POST /admin/login. Credentials are checked first; the
// administrator flag is then read from the profile row, never from a claim.
func (h *Handler) AdminLogin(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	profile, _ := h.authenticate(c, req)
	if profile == nil {
		return
	}
	if !profile.IsAdmin {
		response.Forbidden(c, "administrator access required")
		return
	}

	token, err := h.jwt.Generate(profile.ID, profile.Email)
	if err != nil {
		response.Internal(c, "failed to generate token")
		return
	}

	response.OK(c, TokenResponse{Token: token, Profile: profile.ToPublic()})
}

// Logout handles POST /auth/logout. The session ID is revoked until the token
// would have expired on its own.
func (h *Handler) Logout(c *gin.Context) {
	sessionID := c.GetString(ContextSessionID)
	expiry, _ := c.MustGet(ContextSessionExpiry).(time.Time)

	if err := h.sessions.Revoke(c.Request.Context(), sessionID, time.Until(expiry)); err != nil {
		h.logger.Error("revoke session failed", zap.Error(err), zap.String("session_id", sessionID))
		response.Internal(c, "failed to sign out")
		return
	}
	response.NoContent(c)
}

// Session handles GET /auth/session: returns the identity behind the current session.
func (h *Handler) Session(c *gin.Context) {
	userID := c.MustGet(ContextUserID).(uuid.UUID)
	profile, err := h.profiles.GetByID(c.Request.Context(), userID)
	if err != nil {
		response.Unauthorized(c, "session identity no longer exists")
		return
	}
	response.OK(c, profile.ToPublic())
}

// RequestPasswordReset handles POST /auth/password-reset. The response is the
// same whether or not the email exists.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	const accepted = "if that account exists, a reset email is on its way"

	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Accepted(c, gin.H{"message": accepted})
		return
	}

	token := uuid.New().String()
	if err := h.resets.Save(c.Request.Context(), token, profile.ID, resetTokenTTL); err != nil {
		h.logger.Error("save reset token failed", zap.Error(err))
		response.Internal(c, "failed to start password reset")
		return
	}

	link := h.resetURL + "?token=" + url.QueryEscape(token)
	if err := h.jobs.EnqueuePasswordReset(c.Request.Context(), queue.PasswordResetPayload{
		RecipientEmail: profile.Email,
		ResetLink:      link,
	}); err != nil {
		h.logger.Error("enqueue reset email failed", zap.Error(err))
		response.Internal(c, "failed to start password reset")
		return
	}

	response.Accepted(c, gin.H{"message": accepted})
}

// ConfirmPasswordReset handles POST /auth/password-reset/confirm. The token is
// single-use; a second confirm with the same token fails.
func (h *Handler) ConfirmPasswordReset(c *gin.Context) {
	var req ResetConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	profileID, err := h.resets.Consume(c.Request.Context(), req.Token)
	if err != nil {
		response.BadRequest(c, "invalid or expired reset token")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		response.Internal(c, "failed to hash password")
		return
	}
	if err := h.profiles.UpdatePassword(c.Request.Context(), profileID, hash); err != nil {
		h.logger.Error("update password failed", zap.Error(err), zap.String("profile_id", profileID.String()))
		response.Internal(c, "failed to update password")
		return
	}

	response.OK(c, gin.H{"message": "password updated"})
}

// authenticate checks credentials and writes the error response itself on
// failure, returning nil so callers can just bail out.
func (h *Handler) authenticate(c *gin.Context, req LoginRequest) (*models.Profile, error) {
	profile, err := h.profiles.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		response.Unauthorized(c, "invalid email or password")
		return nil, err
	}
	if !utils.CheckPassword(req.Password, profile.PasswordHash) {
		response.Unauthorized(c, "invalid email or password")
		return nil, nil
	}
	return profile, nil
}
