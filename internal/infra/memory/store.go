// Package memory é um store em memória usado em dev (sem DATABASE_URL) e
// nos testes de handler. Emite o mesmo feed de mudanças que o trigger do
// Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

var (
	_ entity.LeadRepositoryInterface     = (*Store)(nil)
	_ entity.StatusRepositoryInterface   = StatusSource{}
	_ entity.ActivityRepositoryInterface = ActivityLog{}
)

type Store struct {
	mu         sync.RWMutex
	statuses   []entity.Status
	leads      map[string]entity.Lead
	order      []string
	activities map[string][]entity.Activity

	feedMu sync.Mutex
	feeds  map[int]chan entity.LeadChange
	nextID int

	now func() time.Time
}

func NewStore(statuses ...entity.Status) *Store {
	return &Store{
		statuses:   append([]entity.Status(nil), statuses...),
		leads:      make(map[string]entity.Lead),
		activities: make(map[string][]entity.Activity),
		feeds:      make(map[int]chan entity.LeadChange),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// DefaultStatuses são as mesmas etapas que a migration semeia.
func DefaultStatuses() []entity.Status {
	return []entity.Status{
		{ID: "novo", Name: "Novo", Color: "blue", Order: 1},
		{ID: "contatado", Name: "Contatado", Color: "yellow", Order: 2},
		{ID: "proposta", Name: "Proposta", Color: "orange", Order: 3},
		{ID: "negociacao", Name: "Negociação", Color: "purple", Order: 4},
		{ID: "ganho", Name: "Ganho", Color: "green", Order: 5},
		{ID: "perdido", Name: "Perdido", Color: "red", Order: 6},
	}
}

func (s *Store) List(ctx context.Context) ([]entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Lead, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.leads[id])
	}
	// mesmo ORDER BY created_at DESC do repositório
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return &l, nil
}

func (s *Store) Create(ctx context.Context, lead *entity.Lead) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if !s.hasStatus(lead.StatusID) {
		s.mu.Unlock()
		return entity.ErrStatusNotFound
	}
	if _, dup := s.leads[lead.ID]; !dup {
		s.order = append(s.order, lead.ID)
	}
	s.leads[lead.ID] = *lead
	s.mu.Unlock()

	s.emit(entity.LeadChange{Op: entity.ChangeInsert, Lead: *lead})
	return nil
}

func (s *Store) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	l, ok := s.leads[id]
	if !ok {
		s.mu.Unlock()
		return nil, entity.ErrLeadNotFound
	}
	if patch.StatusID != nil && !s.hasStatus(*patch.StatusID) {
		s.mu.Unlock()
		return nil, entity.ErrStatusNotFound
	}
	patch.Apply(&l)
	l.UpdatedAt = s.now()
	s.leads[id] = l
	s.mu.Unlock()

	s.emit(entity.LeadChange{Op: entity.ChangeUpdate, Lead: l})
	return &l, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	l, ok := s.leads[id]
	if !ok {
		s.mu.Unlock()
		return entity.ErrLeadNotFound
	}
	delete(s.leads, id)
	delete(s.activities, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.emit(entity.LeadChange{Op: entity.ChangeDelete, Lead: l})
	return nil
}

// StatusSource devolve a visão de etapas do store.
func (s *Store) StatusSource() StatusSource {
	return StatusSource{store: s}
}

type StatusSource struct {
	store *Store
}

func (src StatusSource) List(ctx context.Context) ([]entity.Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src.store.mu.RLock()
	defer src.store.mu.RUnlock()
	return append([]entity.Status(nil), src.store.statuses...), nil
}

// Activities devolve a visão de histórico do store.
func (s *Store) Activities() ActivityLog {
	return ActivityLog{store: s}
}

type ActivityLog struct {
	store *Store
}

func (a ActivityLog) Append(ctx context.Context, act *entity.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := a.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[act.LeadID]; !ok {
		return entity.ErrLeadNotFound
	}
	s.activities[act.LeadID] = append(s.activities[act.LeadID], *act)
	return nil
}

func (a ActivityLog) ListByLead(ctx context.Context, leadID string) ([]entity.Activity, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := a.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.activities[leadID]
	out := make([]entity.Activity, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	return out, nil
}

// Run entrega o feed de mudanças pra handle até o ctx acabar.
// Mesmo contrato do realtime.Listener.
func (s *Store) Run(ctx context.Context, handle func(entity.LeadChange)) error {
	ch := make(chan entity.LeadChange, 64)

	s.feedMu.Lock()
	id := s.nextID
	s.nextID++
	s.feeds[id] = ch
	s.feedMu.Unlock()

	defer func() {
		s.feedMu.Lock()
		delete(s.feeds, id)
		s.feedMu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case change := <-ch:
			handle(change)
		}
	}
}

func (s *Store) emit(change entity.LeadChange) {
	s.feedMu.Lock()
	defer s.feedMu.Unlock()

	for _, ch := range s.feeds {
		select {
		case ch <- change:
		default:
			// consumidor lento perde o push; o próximo refresh corrige
		}
	}
}

func (s *Store) hasStatus(id string) bool {
	_, ok := entity.FindStatus(s.statuses, id)
	return ok
}
