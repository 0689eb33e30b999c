package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/whatsapp"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
	"github.com/xavierca1/ligue-imoveis/internal/usecase"
)

type LeadHandler struct {
	Leads      usecase.LeadStore
	Statuses   *usecase.StatusRegistry
	CreateUC   *usecase.CreateLeadUseCase
	UpdateUC   *usecase.UpdateLeadUseCase
	DeleteUC   *usecase.DeleteLeadUseCase
	Activities *usecase.ActivityLog

	WhatsAppNumber string
	rateLimiter    *RateLimiter
}

type LeadHandlerDeps struct {
	Leads          usecase.LeadStore
	Statuses       *usecase.StatusRegistry
	CreateUC       *usecase.CreateLeadUseCase
	UpdateUC       *usecase.UpdateLeadUseCase
	DeleteUC       *usecase.DeleteLeadUseCase
	Activities     *usecase.ActivityLog
	WhatsAppNumber string
	RateLimiter    *RateLimiter
}

func NewLeadHandler(deps LeadHandlerDeps) *LeadHandler {
	return &LeadHandler{
		Leads:          deps.Leads,
		Statuses:       deps.Statuses,
		CreateUC:       deps.CreateUC,
		UpdateUC:       deps.UpdateUC,
		DeleteUC:       deps.DeleteUC,
		Activities:     deps.Activities,
		WhatsAppNumber: deps.WhatsAppNumber,
		rateLimiter:    deps.RateLimiter,
	}
}

type CaptureLeadRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Message string `json:"message,omitempty"`
}

type CaptureLeadResponse struct {
	Success      bool   `json:"success"`
	LeadID       string `json:"lead_id,omitempty"`
	WhatsAppLink string `json:"whatsapp_link,omitempty"`
	Message      string `json:"message,omitempty"`
}

// CaptureLead (POST /public/leads) recebe o formulário do site.
func (h *LeadHandler) CaptureLead(w http.ResponseWriter, r *http.Request) {
	if h.rateLimiter != nil && !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, CaptureLeadResponse{
			Message: "Muitas tentativas. Tente novamente em instantes.",
		})
		return
	}

	var req CaptureLeadRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, CaptureLeadResponse{Message: "JSON inválido"})
		return
	}

	lead, err := h.CreateUC.Execute(r.Context(), usecase.CreateLeadInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
		Origin:  usecase.OriginSite,
	})
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}

	resp := CaptureLeadResponse{Success: true, LeadID: lead.ID}
	if h.WhatsAppNumber != "" {
		link, err := whatsapp.DeepLink(h.WhatsAppNumber, whatsapp.Greeting(lead.Name))
		if err != nil {
			logger.FromContext(r.Context()).Warn("número de WhatsApp inválido na config", zap.Error(err))
		} else {
			resp.WhatsAppLink = link
		}
	}

	writeJSON(w, http.StatusCreated, resp)
}

// List (GET /leads) devolve os leads enriquecidos com a etapa.
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	leads, err := h.Leads.List(ctx)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	statuses, err := h.Statuses.List(ctx)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}

	filter, err := parseLeadFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, usecase.EnrichLeads(usecase.FilterLeads(leads, filter), statuses))
}

func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := decodeJSON(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return
	}
	input.Origin = usecase.OriginAdmin
	input.User = requestUser(r)

	lead, err := h.CreateUC.Execute(r.Context(), input)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lead)
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lead, err := h.Leads.FindByID(ctx, chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	statuses, err := h.Statuses.List(ctx)
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, usecase.EnrichLeads([]entity.Lead{*lead}, statuses)[0])
}

// Update (PATCH /leads/{id}) é o onUpdate do painel de detalhe.
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch entity.LeadPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return
	}

	lead, err := h.UpdateUC.Execute(r.Context(), chi.URLParam(r, "id"), patch, requestUser(r))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.DeleteUC.Execute(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LeadHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	items, err := h.Activities.List(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

type AddActivityRequest struct {
	Type        entity.ActivityType `json:"type,omitempty"`
	Description string              `json:"description"`
}

// AddActivity (POST /leads/{id}/activities) é o onAddActivity do painel.
func (h *LeadHandler) AddActivity(w http.ResponseWriter, r *http.Request) {
	var req AddActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, usecase.CodeValidation, "JSON inválido")
		return
	}
	if req.Type == "" {
		req.Type = entity.ActivityNoteAdded
	}

	a, err := h.Activities.Record(r.Context(), chi.URLParam(r, "id"), req.Type, req.Description, requestUser(r))
	if err != nil {
		writeErrorResponse(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}
