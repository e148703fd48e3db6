package staff

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// Handler manages staff-user endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Put("/{id}", h.update)
	r.Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	users, err := h.service.List(r.Context(), account)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if users == nil {
		users = []User{}
	}
	httpx.JSON(w, http.StatusOK, users)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	id, ok := urlID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	detail, err := h.service.Get(r.Context(), account, id)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	var in CreateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.RespondError(w, fmt.Errorf("staff: %v: %w", err, httpx.ErrValidation))
		return
	}
	user, err := h.service.Create(r.Context(), account, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	id, ok := urlID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var in UpdateInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(in); err != nil {
		httpx.RespondError(w, fmt.Errorf("staff: %v: %w", err, httpx.ErrValidation))
		return
	}
	detail, err := h.service.Update(r.Context(), account, id, in)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, detail)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	id, ok := urlID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), account, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if h.logger != nil {
		h.logger.Error("staff users", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func urlID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}
