package handlers

import (
	"net/http"

	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type StatusHandler struct {
	Statuses *usecase.StatusRegistry
}

func NewStatusHandler(statuses *usecase.StatusRegistry) *StatusHandler {
	return &StatusHandler{Statuses: statuses}
}

// List (GET /statuses) devolve as etapas na ordem do funil.
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.Statuses.List(r.Context())
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
