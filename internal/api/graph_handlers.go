package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// LinkMarks handles POST /api/marks/{id}/links.
//
//	@Summary		Link a mark to another mark
//	@Tags			graph
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Source mark id"
//	@Param			body	body		LinkRequest	true	"Target mark"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks/{id}/links [post]
func (h *Handler) LinkMarks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.TargetID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("target_id is required"))
		return
	}
	linked, err := h.svc.LinkMarks(r.Context(), id, req.TargetID)
	if err != nil {
		slog.Error("link marks failed", slog.String("source", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"linked": linked})
}

// UnlinkMarks handles DELETE /api/marks/{id}/links/{target}.
//
//	@Summary		Remove a link between two marks
//	@Tags			graph
//	@Produce		json
//	@Param			id		path		string	true	"Source mark id"
//	@Param			target	path		string	true	"Target mark id"
//	@Success		200		{object}	map[string]bool
//	@Security		BearerAuth
//	@Router			/marks/{id}/links/{target} [delete]
func (h *Handler) UnlinkMarks(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target := chi.URLParam(r, "target")
	unlinked, err := h.svc.UnlinkMarks(r.Context(), id, target)
	if err != nil {
		slog.Error("unlink marks failed", slog.String("source", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"unlinked": unlinked})
}

// GetReferences handles GET /api/marks/{id}/references.
//
//	@Summary		Get outgoing and incoming references of a mark
//	@Tags			graph
//	@Produce		json
//	@Param			id	path		string	true	"Mark id"
//	@Success		200	{object}	References
//	@Security		BearerAuth
//	@Router			/marks/{id}/references [get]
func (h *Handler) GetReferences(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	refs, err := h.svc.GetReferences(r.Context(), id)
	if err != nil {
		slog.Error("get references failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, refs)
}

// AddTag handles POST /api/marks/{id}/tags.
//
//	@Summary		Attach a normalized tag to a mark
//	@Tags			tags
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Mark id"
//	@Param			body	body		TagRequest	true	"Tag to add"
//	@Success		200		{object}	map[string]bool
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/marks/{id}/tags [post]
func (h *Handler) AddTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req TagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Tag == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("tag is required"))
		return
	}
	added, err := h.svc.AddTag(r.Context(), id, req.Tag)
	if err != nil {
		slog.Error("add tag failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// RemoveTag handles DELETE /api/marks/{id}/tags/{tag}.
//
//	@Summary		Detach a normalized tag from a mark
//	@Tags			tags
//	@Produce		json
//	@Param			id	path		string	true	"Mark id"
//	@Param			tag	path		string	true	"Tag (with or without leading #)"
//	@Success		200	{object}	map[string]bool
//	@Security		BearerAuth
//	@Router			/marks/{id}/tags/{tag} [delete]
func (h *Handler) RemoveTag(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	tag := chi.URLParam(r, "tag")
	removed, err := h.svc.RemoveTag(r.Context(), id, tag)
	if err != nil {
		slog.Error("remove tag failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

// ListTags handles GET /api/tags.
//
//	@Summary		List every tag across all marks, sorted and deduplicated
//	@Tags			tags
//	@Produce		json
//	@Success		200	{object}	TagListResponse
//	@Security		BearerAuth
//	@Router			/tags [get]
func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.svc.ListTags(r.Context())
	if err != nil {
		slog.Error("list tags failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

// Search handles GET /api/search.
//
//	@Summary		Substring search over mark annotations, files, and tags
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	map[string]any
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.SearchMarks(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

// Status handles GET /api/status.
//
//	@Summary		Store diagnostics: root, file path, version, counts, checksum
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	markservice.Status
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.Status(r.Context())
	if err != nil {
		slog.Error("status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// Reload handles POST /api/reload.
//
//	@Summary		Discard the cached document and re-read the backing file
//	@Tags			status
//	@Produce		json
//	@Success		200	{object}	markservice.Status
//	@Security		BearerAuth
//	@Router			/reload [post]
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reload(r.Context()); err != nil {
		slog.Error("reload failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	st, err := h.svc.Status(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, st)
}
