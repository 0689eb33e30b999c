package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

// BoardSession é um board aberto (uma aba do admin): estado próprio e
// controller próprio, então o "um drag por vez" vale por sessão.
var _ LeadSelector = (*BoardSession)(nil)

type BoardSession struct {
	ID         string
	State      *BoardState
	Controller *MoveLeadController

	mu       sync.Mutex
	selected string
	lastSeen time.Time
}

// SelectLead abre o painel de detalhe do lead.
func (s *BoardSession) SelectLead(lead entity.EnrichedLead) {
	s.mu.Lock()
	s.selected = lead.ID
	s.mu.Unlock()
}

func (s *BoardSession) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

func (s *BoardSession) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *BoardSession) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

type BoardSessionDeps struct {
	Statuses      *StatusRegistry
	Leads         LeadStore
	Activities    ActivityRecorder
	Events        EventPublisher
	Notifiers     func(sessionID string) Notifier
	OnClose       func(sessionID string)
	CommitTimeout time.Duration
}

type BoardSessions struct {
	mu       sync.RWMutex
	sessions map[string]*BoardSession
	deps     BoardSessionDeps
	now      func() time.Time
}

func NewBoardSessions(deps BoardSessionDeps) *BoardSessions {
	return &BoardSessions{
		sessions: make(map[string]*BoardSession),
		deps:     deps,
		now:      time.Now,
	}
}

// Open cria uma sessão e já carrega etapas e leads.
func (r *BoardSessions) Open(ctx context.Context, user string) (*BoardSession, error) {
	id := uuid.New().String()

	var notifier Notifier
	if r.deps.Notifiers != nil {
		notifier = r.deps.Notifiers(id)
	}

	state := NewBoardState()
	session := &BoardSession{
		ID:    id,
		State: state,
		Controller: NewMoveLeadController(MoveLeadDeps{
			Board:         state,
			Store:         r.deps.Leads,
			Activities:    r.deps.Activities,
			Events:        r.deps.Events,
			Notifier:      notifier,
			CommitTimeout: r.deps.CommitTimeout,
			User:          user,
		}),
		lastSeen: r.now(),
	}

	// registra antes de carregar pra não perder mudanças do feed nesse meio tempo
	r.mu.Lock()
	r.sessions[id] = session
	n := len(r.sessions)
	r.mu.Unlock()
	metrics.SetBoardSessions(n)

	if err := r.Refresh(ctx, session); err != nil {
		r.Close(id)
		return nil, err
	}
	return session, nil
}

func (r *BoardSessions) Get(id string) (*BoardSession, bool) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()

	if ok {
		s.touch(r.now())
	}
	return s, ok
}

func (r *BoardSessions) Close(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	if ok {
		metrics.SetBoardSessions(n)
		if r.deps.OnClose != nil {
			r.deps.OnClose(id)
		}
	}
	return ok
}

func (r *BoardSessions) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Refresh busca etapas e leads de novo; movimentos pendentes são preservados.
func (r *BoardSessions) Refresh(ctx context.Context, session *BoardSession) error {
	session.State.BeginLoad()

	statuses, err := r.deps.Statuses.List(ctx)
	if err != nil {
		session.State.AbortLoad()
		return &TechnicalError{Code: CodePersistence, Message: "erro ao carregar etapas", Err: err}
	}
	leads, err := r.deps.Leads.List(ctx)
	if err != nil {
		session.State.AbortLoad()
		return &TechnicalError{Code: CodePersistence, Message: "erro ao carregar leads", Err: err}
	}

	session.State.Load(statuses, leads)

	if n := CountUnresolved(EnrichLeads(leads, statuses)); n > 0 {
		// o board mostra esses leads na primeira etapa; fica registrado aqui
		logger.FromContext(ctx).Warn("leads apontando para etapa inexistente",
			zap.String("session_id", session.ID),
			zap.Int("count", n),
		)
	}
	return nil
}

// Broadcast repassa uma mudança do feed realtime para todas as sessões.
func (r *BoardSessions) Broadcast(change entity.LeadChange) {
	r.mu.RLock()
	sessions := make([]*BoardSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		s.State.ApplyChange(change)
	}
}

// RefreshAll recarrega todas as sessões (ex.: depois de o feed realtime cair).
func (r *BoardSessions) RefreshAll(ctx context.Context) {
	r.mu.RLock()
	sessions := make([]*BoardSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.mu.RUnlock()

	for _, s := range sessions {
		if err := r.Refresh(ctx, s); err != nil {
			logger.FromContext(ctx).Warn("falha ao recarregar board", zap.String("session_id", s.ID), zap.Error(err))
		}
	}
}

// Prune fecha sessões paradas há mais de idle. Sessão com commit em voo fica.
func (r *BoardSessions) Prune(idle time.Duration) int {
	cutoff := r.now().Add(-idle)

	r.mu.RLock()
	var stale []string
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) && s.Controller.State() != DragCommitting {
			stale = append(stale, id)
		}
	}
	r.mu.RUnlock()

	for _, id := range stale {
		r.Close(id)
	}
	return len(stale)
}

