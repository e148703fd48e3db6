package directory

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/staffdir/staffdir/internal/platform/httpx"
	"github.com/staffdir/staffdir/internal/token"
)

// Handler manages reference-entity endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers reference-entity routes on the given router. Named
// kinds share one route shape; languages, groups, and directory points get
// their own.
func (h *Handler) MountRoutes(r chi.Router) {
	h.mountNamed(r, "/statuses", Statuses)
	h.mountNamed(r, "/providers", Providers)
	h.mountNamed(r, "/contacts", Contacts)
	h.mountNamed(r, "/properties", Properties)
	h.mountNamed(r, "/directories", Directories)

	r.Route("/languages", func(r chi.Router) {
		r.Get("/", h.listLanguages)
		r.Post("/", h.createLanguage)
		r.Delete("/{id}", h.deleteLanguage)
	})
	r.Route("/groups", func(r chi.Router) {
		r.Get("/", h.listGroups)
		r.Post("/", h.createGroup)
		r.Delete("/{id}", h.deleteGroup)
	})
	r.Route("/directories/{directoryID}/points", func(r chi.Router) {
		r.Get("/", h.listPoints)
		r.Post("/", h.createPoint)
		r.Delete("/{id}", h.deletePoint)
	})
}

type namedRequest struct {
	Name string `json:"name"`
}

func (h *Handler) mountNamed(r chi.Router, path string, kind Kind) {
	r.Route(path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			account, ok := principal(w, r)
			if !ok {
				return
			}
			out, err := h.service.ListNamed(r.Context(), account, kind)
			if err != nil {
				h.respondError(w, r, err)
				return
			}
			if out == nil {
				out = []Named{}
			}
			httpx.JSON(w, http.StatusOK, out)
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			account, ok := principal(w, r)
			if !ok {
				return
			}
			id, ok := urlID(r, "id")
			if !ok {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			out, err := h.service.GetNamed(r.Context(), account, kind, id)
			if err != nil {
				h.respondError(w, r, err)
				return
			}
			httpx.JSON(w, http.StatusOK, out)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			account, ok := principal(w, r)
			if !ok {
				return
			}
			var req namedRequest
			if err := httpx.DecodeJSON(r, &req); err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
				return
			}
			out, err := h.service.CreateNamed(r.Context(), account, kind, req.Name)
			if err != nil {
				h.respondError(w, r, err)
				return
			}
			httpx.JSON(w, http.StatusCreated, out)
		})
		r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
			account, ok := principal(w, r)
			if !ok {
				return
			}
			id, ok := urlID(r, "id")
			if !ok {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			var req namedRequest
			if err := httpx.DecodeJSON(r, &req); err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
				return
			}
			out, err := h.service.UpdateNamed(r.Context(), account, kind, id, req.Name)
			if err != nil {
				h.respondError(w, r, err)
				return
			}
			httpx.JSON(w, http.StatusOK, out)
		})
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			account, ok := principal(w, r)
			if !ok {
				return
			}
			id, ok := urlID(r, "id")
			if !ok {
				httpx.RespondError(w, httpx.ErrNotFound)
				return
			}
			if err := h.service.DeleteNamed(r.Context(), account, kind, id); err != nil {
				h.respondError(w, r, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func (h *Handler) listLanguages(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	out, err := h.service.ListLanguages(r.Context(), account)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if out == nil {
		out = []Language{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type languageRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (h *Handler) createLanguage(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	var req languageRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	out, err := h.service.CreateLanguage(r.Context(), account, req.Code, req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deleteLanguage(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.DeleteLanguage(r.Context(), account, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	out, err := h.service.ListGroups(r.Context(), account)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if out == nil {
		out = []Group{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

type groupRequest struct {
	Name   string `json:"name"`
	Parent int64  `json:"parent,omitempty"`
}

func (h *Handler) createGroup(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	out, err := h.service.CreateGroup(r.Context(), account, req.Name, req.Parent)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deleteGroup(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.DeleteGroup(r.Context(), account, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listPoints(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	directoryID, ok := urlID(r, "directoryID")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	out, err := h.service.ListPoints(r.Context(), account, directoryID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if out == nil {
		out = []Point{}
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) createPoint(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	directoryID, ok := urlID(r, "directoryID")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	var req namedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Payload", "request body must be valid JSON")
		return
	}
	out, err := h.service.CreatePoint(r.Context(), account, directoryID, req.Name)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, out)
}

func (h *Handler) deletePoint(w http.ResponseWriter, r *http.Request) {
	account, ok := principal(w, r)
	if !ok {
		return
	}
	directoryID, ok := urlID(r, "directoryID")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	id, ok := urlID(r, "id")
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := h.service.DeletePoint(r.Context(), account, directoryID, id); err != nil {
		h.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	if h.logger != nil {
		h.logger.Error("directory", slog.String("path", r.URL.Path), slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

func principal(w http.ResponseWriter, r *http.Request) (token.Account, bool) {
	account, ok := token.AccountFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrPermissionDenied)
	}
	return account, ok
}

func urlID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	return id, err == nil
}
