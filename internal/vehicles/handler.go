package vehicles

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/fleetwatch/fleetwatch/internal/auth"
	"github.com/fleetwatch/fleetwatch/internal/platform/httpx"
	"github.com/fleetwatch/fleetwatch/internal/shared"
)

// ScanEnqueuer submits a stale-vehicle scan to the background queue.
type ScanEnqueuer interface {
	EnqueueStaleScan(ctx context.Context) error
}

// Handler wires HTTP endpoints for vehicle CRUD.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	mw        auth.Middleware
	audit     *shared.AuditLogger
	scans     ScanEnqueuer
	validator *validator.Validate
}

// NewHandler constructs a Handler instance. scans may be nil when no worker
// queue is configured; the stale-scan endpoint then reports unavailable.
func NewHandler(logger *slog.Logger, service *Service, mw auth.Middleware, audit *shared.AuditLogger, scans ScanEnqueuer) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		mw:        mw,
		audit:     audit,
		scans:     scans,
		validator: validator.New(),
	}
}

// MountRoutes registers vehicle routes. Reads stay public for the dashboard's
// unauthenticated demo view; every write requires a bearer token, and
// destructive operations require the ADMIN role.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.RequireAuth)
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Put("/{id}/location", h.updateLocation)
		r.Group(func(r chi.Router) {
			r.Use(h.mw.RequireRole(auth.RoleAdmin))
			r.Delete("/{id}", h.delete)
			r.Post("/stale-scan", h.staleScan)
		})
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list vehicles failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to fetch vehicles")
		return
	}
	if list == nil {
		list = []Vehicle{}
	}
	httpx.OKCount(w, http.StatusOK, "vehicles retrieved successfully", list, len(list))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.vehicleID(w, r)
	if !ok {
		return
	}
	vehicle, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err, "failed to fetch vehicle")
		return
	}
	httpx.OK(w, http.StatusOK, "vehicle retrieved successfully", vehicle)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", fieldErrors(err))
		return
	}

	vehicle, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Error("create vehicle failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to create vehicle")
		return
	}
	h.record(r, "vehicle.create", vehicle.ID)
	httpx.OK(w, http.StatusCreated, "vehicle created successfully", vehicle)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.vehicleID(w, r)
	if !ok {
		return
	}
	var req UpdateVehicleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", fieldErrors(err))
		return
	}

	vehicle, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err, "failed to update vehicle")
		return
	}
	h.record(r, "vehicle.update", vehicle.ID)
	httpx.OK(w, http.StatusOK, "vehicle updated successfully", vehicle)
}

func (h *Handler) updateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.vehicleID(w, r)
	if !ok {
		return
	}
	var req UpdateLocationRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.FailFields(w, http.StatusBadRequest, "validation failed", fieldErrors(err))
		return
	}

	vehicle, err := h.service.UpdateLocation(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err, "failed to update vehicle")
		return
	}
	httpx.OK(w, http.StatusOK, "vehicle updated successfully", vehicle)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.vehicleID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err, "failed to delete vehicle")
		return
	}
	h.record(r, "vehicle.delete", id)
	httpx.OK(w, http.StatusOK, "vehicle deleted successfully", nil)
}

func (h *Handler) staleScan(w http.ResponseWriter, r *http.Request) {
	if h.scans == nil {
		httpx.Fail(w, http.StatusServiceUnavailable, "background worker not configured")
		return
	}
	if err := h.scans.EnqueueStaleScan(r.Context()); err != nil {
		h.logger.Error("enqueue stale scan failed", slog.Any("error", err))
		httpx.Fail(w, http.StatusInternalServerError, "failed to schedule scan")
		return
	}
	httpx.OK(w, http.StatusAccepted, "stale vehicle scan scheduled", nil)
}

func (h *Handler) vehicleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Fail(w, http.StatusBadRequest, "invalid vehicle ID")
		return 0, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error, fallback string) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Fail(w, http.StatusNotFound, "vehicle not found")
		return
	}
	h.logger.Error(fallback, slog.Any("error", err))
	httpx.Fail(w, http.StatusInternalServerError, fallback)
}

func (h *Handler) record(r *http.Request, action string, vehicleID int64) {
	if h.audit == nil {
		return
	}
	var actorID int64
	if identity, ok := shared.IdentityFromContext(r.Context()); ok {
		actorID = identity.UserID
	}
	err := h.audit.Record(r.Context(), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "vehicle",
		EntityID: strconv.FormatInt(vehicleID, 10),
	})
	if err != nil && h.logger != nil {
		h.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

func fieldErrors(err error) map[string][]string {
	fields := make(map[string][]string)
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["body"] = []string{"malformed request body"}
		return fields
	}
	for _, fe := range verrs {
		name := jsonName(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = append(fields[name], "is required")
		case "oneof":
			fields[name] = append(fields[name], "must be one of ACTIVE, INACTIVE")
		case "gte":
			fields[name] = append(fields[name], "must be at least "+fe.Param())
		case "lte":
			fields[name] = append(fields[name], "must be at most "+fe.Param())
		default:
			fields[name] = append(fields[name], "is invalid")
		}
	}
	return fields
}

func jsonName(field string) string {
	switch field {
	case "FuelLevel":
		return "fuel_level"
	case "Name":
		return "name"
	case "Status":
		return "status"
	case "Odometer":
		return "odometer"
	case "Latitude":
		return "latitude"
	case "Longitude":
		return "longitude"
	case "Speed":
		return "speed"
	default:
		return field
	}
}
