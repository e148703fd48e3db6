package authz

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/staffdir/staffdir/internal/audit"
	"github.com/staffdir/staffdir/internal/platform/db"
	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// Handler manages permission-rule administration endpoints.
type Handler struct {
	logger   *slog.Logger
	pool     *pgxpool.Pool
	gate     *Service
	repo     *Repository
	audit    *audit.Recorder
	validate *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, pool *pgxpool.Pool, gate *Service, repo *Repository, recorder *audit.Recorder) *Handler {
	return &Handler{
		logger:   logger,
		pool:     pool,
		gate:     gate,
		repo:     repo,
		audit:    recorder,
		validate: validator.New(),
	}
}

// MountRoutes registers permission-rule routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRules)
	r.Post("/", h.createRule)
	r.Delete("/{id}", h.deleteRule)
}

func (h *Handler) listRules(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	var rules []Rule
	err := db.WithTx(r.Context(), h.pool, func(tx pgx.Tx) error {
		if err := h.gate.Authorize(r.Context(), tx, ResourcePermission, MethodGet, account.Groups); err != nil {
			return err
		}
		var err error
		rules, err = h.repo.ListRules(r.Context(), tx)
		return err
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if rules == nil {
		rules = []Rule{}
	}
	httpx.JSON(w, http.StatusOK, rules)
}

type createRuleRequest struct {
	Method   string `json:"method" validate:"required"`
	Resource string `json:"resource" validate:"required"`
	Group    int64  `json:"group" validate:"required"`
}

func (h *Handler) createRule(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	var req createRuleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("authz: %v: %w", err, httpx.ErrValidation))
		return
	}
	method, err := ParseMethod(req.Method)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	resource, err := ParseResource(req.Resource)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var rule Rule
	err = db.WithTx(r.Context(), h.pool, func(tx pgx.Tx) error {
		if err := h.gate.Authorize(r.Context(), tx, ResourcePermission, MethodPost, account.Groups); err != nil {
			return err
		}
		rule, err = h.repo.CreateRule(r.Context(), tx, method, resource, req.Group)
		if err != nil {
			return err
		}
		return h.audit.Record(r.Context(), tx, account.ID, string(MethodPost), string(ResourcePermission), r.URL.Path)
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, rule)
}

func (h *Handler) deleteRule(w http.ResponseWriter, r *http.Request) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	err = db.WithTx(r.Context(), h.pool, func(tx pgx.Tx) error {
		if err := h.gate.Authorize(r.Context(), tx, ResourcePermission, MethodDelete, account.Groups); err != nil {
			return err
		}
		if err := h.repo.DeleteRule(r.Context(), tx, id); err != nil {
			return err
		}
		return h.audit.Record(r.Context(), tx, account.ID, string(MethodDelete), string(ResourcePermission), r.URL.Path)
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if h.logger != nil {
		h.logger.Error("permission rules", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
