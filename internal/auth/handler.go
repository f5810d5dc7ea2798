package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetwatch/fleetwatch/internal/platform/httpx"
	"github.com/fleetwatch/fleetwatch/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        Middleware
	audit     *shared.AuditLogger
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware, audit *shared.AuditLogger) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		mw:        mw,
		audit:     audit,
		validator: validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.register)
	r.Post("/login", h.login)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAuth)
		r.Get("/profile", h.profile)
		r.Put("/change-password", h.changePassword)
		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequireRole(RoleAdmin))
			r.Get("/users", h.listUsers)
		})
	})
}

type sessionPayload struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	fields := map[string][]string{}
	if err := h.validator.Struct(req); err != nil {
		fields = FieldErrors(err)
	}
	if req.Password != "" {
		if issues := PasswordIssues(req.Password); len(issues) > 0 {
			fields["password"] = append(fields["password"], issues...)
		}
	}
	if len(fields) > 0 {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", fields)
		return
	}

	user, token, _, err := h.service.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			httpx.Fail(w, http.StatusConflict, "email already registered")
			return
		}
		h.logger.Error("register failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "registration failed")
		return
	}

	h.record(r, user.ID, "user.register", user.ID)
	httpx.OK(w, http.StatusCreated, "registration successful", sessionPayload{User: user, Token: token})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", FieldErrors(err))
		return
	}

	user, token, _, err := h.service.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.Fail(w, http.StatusUnauthorized, shared.ErrInvalidCredentials.Error())
			return
		}
		h.logger.Error("login failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "login failed")
		return
	}

	h.record(r, user.ID, "user.login", user.ID)
	httpx.OK(w, http.StatusOK, "login successful", sessionPayload{User: user, Token: token})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authorization token required")
		return
	}

	user, err := h.service.Profile(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Fail(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.Error("load profile failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to load profile")
		return
	}
	httpx.OK(w, http.StatusOK, "profile retrieved successfully", map[string]any{"user": user})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Fail(w, http.StatusUnauthorized, "authorization token required")
		return
	}

	var req ChangePasswordRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}

	fields := map[string][]string{}
	if err := h.validator.Struct(req); err != nil {
		fields = FieldErrors(err)
	}
	if req.NewPassword != "" {
		if issues := PasswordIssues(req.NewPassword); len(issues) > 0 {
			fields["newPassword"] = append(fields["newPassword"], issues...)
		}
	}
	if len(fields) > 0 {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", fields)
		return
	}

	user, err := h.service.ChangePassword(r.Context(), identity.UserID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidCredentials):
			httpx.Fail(w, http.StatusUnauthorized, "current password is incorrect")
		case errors.Is(err, shared.ErrNotFound):
			httpx.Fail(w, http.StatusNotFound, "user not found")
		default:
			h.logger.Error("change password failed", slog.Any("error", err))
			httpx.Fail(w, http.StatusInternalServerError, "failed to change password")
		}
		return
	}

	h.record(r, identity.UserID, "user.password_change", identity.UserID)
	httpx.OK(w, http.StatusOK, "password changed successfully", map[string]any{"user": user})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	httpx.OKCount(w, http.StatusOK, "users retrieved successfully", map[string]any{"users": users}, len(users))
}

// record writes an audit entry; failures are logged, never surfaced.
func (h *Handler) record(r *http.Request, actorID int64, action string, entityID int64) {
	if h.audit == nil {
		return
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(entityID, 10),
		Meta:     map[string]any{"ip": r.RemoteAddr, "ua": r.UserAgent()},
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
