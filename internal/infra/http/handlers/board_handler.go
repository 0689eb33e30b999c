package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

// NotificationStream é o lado de leitura das notificações de uma sessão.
type NotificationStream interface {
	Subscribe(sessionID string) (<-chan usecase.Notification, func())
}

type BoardHandler struct {
	Sessions      *usecase.BoardSessions
	Notifications NotificationStream
	Heartbeat     time.Duration
}

func NewBoardHandler(sessions *usecase.BoardSessions, notifications NotificationStream) *BoardHandler {
	return &BoardHandler{
		Sessions:      sessions,
		Notifications: notifications,
		Heartbeat:     25 * time.Second,
	}
}

type DragView struct {
	State  usecase.DragState `json:"state"`
	LeadID string            `json:"lead_id,omitempty"`
}

type BoardView struct {
	SessionID    string       `json:"session_id"`
	Drag         DragView     `json:"drag"`
	Pending      int          `json:"pending"`
	SelectedLead string       `json:"selected_lead,omitempty"`
	Board        entity.Board `json:"board"`
}

type MoveResponse struct {
	usecase.MoveResult
	Error string   `json:"error,omitempty"`
	Drag  DragView `json:"drag"`
}

type leadRequest struct {
	LeadID string `json:"lead_id"`
}

type dropRequest struct {
	StatusID string `json:"status_id"`
}

func (h *BoardHandler) session(w http.ResponseWriter, r *http.Request) (*usecase.BoardSession, bool) {
	s, ok := h.Sessions.Get(chi.URLParam(r, "sid"))
	if !ok {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "sessão do board não encontrada")
	}
	return s, ok
}

func (h *BoardHandler) view(s *usecase.BoardSession, f usecase.LeadFilter) BoardView {
	return BoardView{
		SessionID:    s.ID,
		Drag:         DragView{State: s.Controller.State(), LeadID: s.Controller.ActiveLead()},
		Pending:      s.State.PendingCount(),
		SelectedLead: s.Selected(),
		Board:        s.State.Board(f),
	}
}

// Open (POST /board/sessions)
func (h *BoardHandler) Open(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Open(r.Context(), requestUser(r))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, h.view(s, usecase.LeadFilter{}))
}

// Get (GET /board/sessions/{sid}?q=&from=&to=)
func (h *BoardHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.view(s, filter))
}

func (h *BoardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.Sessions.Refresh(r.Context(), s); err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(s, usecase.LeadFilter{}))
}

func (h *BoardHandler) Close(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Close(chi.URLParam(r, "sid")) {
		writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "sessão do board não encontrada")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartDrag (POST /board/sessions/{sid}/drag)
func (h *BoardHandler) StartDrag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil || req.LeadID == "" {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "lead_id é obrigatório")
		return
	}

	if err := s.Controller.StartDrag(req.LeadID); err != nil {
		writeDragError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DragView{State: s.Controller.State(), LeadID: s.Controller.ActiveLead()})
}

func (h *BoardHandler) CancelDrag(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Controller.CancelDrag(); err != nil {
		writeDragError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DragView{State: s.Controller.State()})
}

// Drop (POST /board/sessions/{sid}/drop) roda o commit até o fim.
// status_id vazio = soltou fora das colunas.
func (h *BoardHandler) Drop(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req dropRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return
	}

	res, err := s.Controller.Drop(r.Context(), req.StatusID)
	if err != nil {
		writeDragError(w, r, err)
		return
	}

	resp := MoveResponse{MoveResult: res, Drag: DragView{State: s.Controller.State()}}
	if res.Err != nil {
		resp.Error = res.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// Select (POST /board/sessions/{sid}/select) abre o painel de detalhe.
func (h *BoardHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req leadRequest
	if err := decodeJSON(r, &req); err != nil || req.LeadID == "" {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "lead_id é obrigatório")
		return
	}

	lead, found := s.State.Lead(req.LeadID)
	if !found {
		writeErrorResponse(w, r, entity.ErrLeadNotFound)
		return
	}
	enriched := usecase.EnrichLeads([]entity.Lead{lead}, s.State.Statuses())[0]

	s.SelectLead(enriched)
	writeJSON(w, http.StatusOK, enriched)
}

// Events (GET /board/sessions/{sid}/events) é um stream SSE com os toasts
// da sessão e um aviso "board" a cada mudança no estado.
func (h *BoardHandler) Events(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "STREAMING_UNSUPPORTED", "streaming não suportado")
		return
	}

	notes, cancel := h.Notifications.Subscribe(s.ID)
	defer cancel()

	changed := make(chan struct{}, 1)
	unsubscribe := s.State.Subscribe(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	heartbeat := time.NewTicker(h.Heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case n, open := <-notes:
			if !open {
				return
			}
			writeEvent(w, "notification", n)
		case <-changed:
			writeEvent(w, "board", DragView{State: s.Controller.State(), LeadID: s.Controller.ActiveLead()})
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
}

func writeDragError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, usecase.ErrDragInProgress):
		writeError(w, http.StatusConflict, "DRAG_IN_PROGRESS", err.Error())
	case errors.Is(err, usecase.ErrNotDragging), errors.Is(err, usecase.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "NOT_DRAGGING", err.Error())
	default:
		writeErrorResponse(w, r, err)
	}
}

func parseLeadFilter(r *http.Request) (usecase.LeadFilter, error) {
	q := r.URL.Query()
	return usecase.ParseLeadFilter(q.Get("q"), q.Get("from"), q.Get("to"))
}
