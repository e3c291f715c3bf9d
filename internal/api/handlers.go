package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/clawmarks/internal/apperr"
	"github.com/starford/clawmarks/internal/markservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *markservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *markservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListTrails handles GET /api/trails.
//
//	@Summary		List trails with optional status filter
//	@Tags			trails
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status"	Enums(active, archived)
//	@Success		200		{object}	TrailListResponse
//	@Security		BearerAuth
//	@Router			/trails [get]
func (h *Handler) ListTrails(w http.ResponseWriter, r *http.Request) {
	trails, err := h.svc.ListTrails(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		slog.Error("list trails failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"trails": trails})
}

// CreateTrail handles POST /api/trails.
//
//	@Summary		Create a new trail
//	@Tags			trails
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateTrailRequest	true	"Trail to create"
//	@Success		201		{object}	models.Trail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trails [post]
func (h *Handler) CreateTrail(w http.ResponseWriter, r *http.Request) {
	var req CreateTrailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	trail, err := h.svc.CreateTrail(r.Context(), req.Name, req.Description)
	if err != nil {
		slog.Error("create trail failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, trail)
}

// GetTrail handles GET /api/trails/{id}.
//
//	@Summary		Get a trail and its marks
//	@Tags			trails
//	@Produce		json
//	@Param			id	path		string	true	"Trail id"
//	@Success		200	{object}	TrailDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trails/{id} [get]
func (h *Handler) GetTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	detail, err := h.svc.GetTrail(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get trail failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// ArchiveTrail handles POST /api/trails/{id}/archive.
//
//	@Summary		Archive a trail (one-way, idempotent)
//	@Tags			trails
//	@Produce		json
//	@Param			id	path		string	true	"Trail id"
//	@Success		200	{object}	models.Trail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trails/{id}/archive [post]
func (h *Handler) ArchiveTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	trail, err := h.svc.ArchiveTrail(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("archive trail failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, trail)
}

// DeleteTrail handles DELETE /api/trails/{id}.
//
//	@Summary		Delete a trail and every mark on it
//	@Tags			trails
//	@Param			id	path	string	true	"Trail id"
//	@Success		204	"Trail deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/trails/{id} [delete]
func (h *Handler) DeleteTrail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.svc.DeleteTrail(r.Context(), id)
	if err != nil {
		slog.Error("delete trail failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListMarks handles GET /api/marks.
//
//	@Summary		List marks matching the conjunction of filters
//	@Tags			marks
//	@Produce		json
//	@Param			trail_id	query		string	false	"Filter by trail"
//	@Param			file		query		string	false	"Filter by file path"
//	@Param			type		query		string	false	"Filter by mark type"
//	@Param			tag			query		string	false	"Filter by normalized tag membership"
//	@Success		200			{object}	MarkListResponse
//	@Security		BearerAuth
//	@Router			/marks [get]
func (h *Handler) ListMarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	marks, err := h.svc.ListMarks(r.Context(), markservice.MarkFilter{
		TrailID: q.Get("trail_id"),
		File:    q.Get("file"),
		Type:    q.Get("type"),
		Tag:     q.Get("tag"),
	})
	if err != nil {
		slog.Error("list marks failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"marks": marks})
}

// AddMark handles POST /api/marks.
//
//	@Summary		Add a mark to a trail
//	@Tags			marks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AddMarkRequest	true	"Mark to add"
//	@Success		201		{object}	models.Mark
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks [post]
func (h *Handler) AddMark(w http.ResponseWriter, r *http.Request) {
	var req AddMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	mark, err := h.svc.AddMark(r.Context(), req)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody(err.Error()))
		} else {
			slog.Error("add mark failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusCreated, mark)
}

// GetMark handles GET /api/marks/{id}.
//
//	@Summary		Get a single mark
//	@Tags			marks
//	@Produce		json
//	@Param			id	path		string	true	"Mark id"
//	@Success		200	{object}	models.Mark
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks/{id} [get]
func (h *Handler) GetMark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	mark, err := h.svc.GetMark(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get mark failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, mark)
}

// UpdateMark handles PATCH /api/marks/{id}.
//
//	@Summary		Partially update a mark
//	@Tags			marks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Mark id"
//	@Param			body	body		UpdateMarkRequest	true	"Fields to overwrite"
//	@Success		200		{object}	models.Mark
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks/{id} [patch]
func (h *Handler) UpdateMark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req UpdateMarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	mark, err := h.svc.UpdateMark(r.Context(), id, req)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("update mark failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	writeJSON(w, http.StatusOK, mark)
}

// DeleteMark handles DELETE /api/marks/{id}.
//
//	@Summary		Delete a mark and prune references to it
//	@Tags			marks
//	@Param			id	path	string	true	"Mark id"
//	@Success		204	"Mark deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks/{id} [delete]
func (h *Handler) DeleteMark(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ok, err := h.svc.DeleteMark(r.Context(), id)
	if err != nil {
		slog.Error("delete mark failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
