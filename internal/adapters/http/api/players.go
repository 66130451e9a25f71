package api

import (
	"net/http"

	"github.com/gorilla/mux"
)

// PlayersHandler serves /rest/players.
type PlayersHandler struct {
	deps Dependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps Dependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleList handles GET /rest/players.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeFailure(w, err)
		return
	}
	players, err := h.deps.List(r.Context(), c)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponses(players))
}

// HandleCount handles GET /rest/players/count. Paging parameters are ignored.
func (h *PlayersHandler) HandleCount(w http.ResponseWriter, r *http.Request) {
	c, err := parseCriteria(r.URL.Query())
	if err != nil {
		writeFailure(w, err)
		return
	}
	n, err := h.deps.Count(r.Context(), &c)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// HandleGet handles GET /rest/players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.Get(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// HandleCreate handles POST /rest/players.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	pl, err := decodePlayer(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.Create(r.Context(), pl)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// HandleUpdate handles POST /rest/players/{id}.
func (h *PlayersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	// An absent player is reported before the body is looked at.
	if _, err := h.deps.Get(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	pl, err := decodePlayer(r)
	if err != nil {
		writeFailure(w, err)
		return
	}
	p, err := h.deps.Update(r.Context(), id, pl)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(p))
}

// HandleDelete handles DELETE /rest/players/{id}.
func (h *PlayersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(mux.Vars(r)["id"])
	if err != nil {
		writeFailure(w, err)
		return
	}
	if err := h.deps.Delete(r.Context(), id); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}
