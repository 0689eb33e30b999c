package usecase

import (
	"sync"
	"time"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
)

type pendingMove struct {
	from  string
	to    string
	since time.Time

	// último status_id vindo do store enquanto o commit estava pendente
	authoritative    string
	hasAuthoritative bool
}

// BoardState é o contêiner de estado de um board: etapas, leads na ordem em
// que vieram do store e as marcas de movimento otimista pendente.
//
// Enquanto um lead tem commit pendente, refresh e push realtime não
// sobrescrevem o status_id dele.
type BoardState struct {
	mu       sync.RWMutex
	statuses []entity.Status
	leads    []entity.Lead
	pending  map[string]pendingMove

	// mudanças do feed que chegam durante um fetch; reaplicadas no Load
	loading int
	replay  []entity.LeadChange

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSub     int
}

func NewBoardState() *BoardState {
	return &BoardState{
		pending:     make(map[string]pendingMove),
		subscribers: make(map[int]func()),
	}
}

// BeginLoad avisa que um fetch começou. Mudanças aplicadas até o Load (ou
// AbortLoad) correspondente são guardadas e reaplicadas sobre o resultado.
func (s *BoardState) BeginLoad() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

// AbortLoad encerra um BeginLoad cujo fetch falhou.
func (s *BoardState) AbortLoad() {
	s.mu.Lock()
	s.endLoad()
	s.mu.Unlock()
}

func (s *BoardState) endLoad() {
	if s.loading > 0 {
		s.loading--
	}
	if s.loading == 0 {
		s.replay = nil
	}
}

// Load troca todo o conteúdo pelo resultado de um fetch.
func (s *BoardState) Load(statuses []entity.Status, leads []entity.Lead) {
	s.mu.Lock()
	s.statuses = entity.SortStatuses(statuses)
	s.leads = make([]entity.Lead, len(leads))
	copy(s.leads, leads)
	for i := range s.leads {
		id := s.leads[i].ID
		if p, ok := s.pending[id]; ok {
			p.authoritative, p.hasAuthoritative = s.leads[i].StatusID, true
			s.pending[id] = p
			s.leads[i].StatusID = p.to
		}
	}
	if s.loading > 0 {
		for _, change := range s.replay {
			s.apply(change)
		}
		s.endLoad()
	}
	s.mu.Unlock()

	s.publish()
}

// ApplyChange aplica uma notificação do feed realtime.
func (s *BoardState) ApplyChange(change entity.LeadChange) {
	s.mu.Lock()
	applied := s.apply(change)
	if applied && s.loading > 0 {
		s.replay = append(s.replay, change)
	}
	s.mu.Unlock()

	if applied {
		s.publish()
	}
}

// apply muda a visão conforme a notificação. Chamar com s.mu travado.
func (s *BoardState) apply(change entity.LeadChange) bool {
	idx := s.indexOf(change.Lead.ID)

	switch change.Op {
	case entity.ChangeDelete:
		if idx >= 0 {
			s.leads = append(s.leads[:idx], s.leads[idx+1:]...)
		}
	case entity.ChangeInsert, entity.ChangeUpdate:
		lead := change.Lead
		if p, ok := s.pending[lead.ID]; ok {
			p.authoritative, p.hasAuthoritative = lead.StatusID, true
			s.pending[lead.ID] = p
			lead.StatusID = p.to
		}
		if change.Partial && idx >= 0 {
			// payload do NOTIFY não traz message
			lead.Message = s.leads[idx].Message
		}
		if idx >= 0 {
			s.leads[idx] = lead
		} else {
			s.leads = append(s.leads, lead)
		}
	default:
		return false
	}
	return true
}

func (s *BoardState) Lead(id string) (entity.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.leads[i], true
	}
	return entity.Lead{}, false
}

func (s *BoardState) Statuses() []entity.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]entity.Status, len(s.statuses))
	copy(out, s.statuses)
	return out
}

func (s *BoardState) Status(id string) (entity.Status, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entity.FindStatus(s.statuses, id)
}

func (s *BoardState) IsPending(leadID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.pending[leadID]
	return ok
}

func (s *BoardState) PendingCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pending)
}

// BeginMove move o lead pra etapa alvo na visão local e marca como pendente.
// Devolve o status_id anterior.
func (s *BoardState) BeginMove(leadID, to string) (string, error) {
	s.mu.Lock()
	i := s.indexOf(leadID)
	if i < 0 {
		s.mu.Unlock()
		return "", entity.ErrLeadNotFound
	}
	from := s.leads[i].StatusID
	s.leads[i].StatusID = to
	s.pending[leadID] = pendingMove{from: from, to: to, since: time.Now()}
	s.mu.Unlock()

	s.publish()
	return from, nil
}

// ResolveMove troca a cópia otimista pelo valor que o store devolveu.
func (s *BoardState) ResolveMove(leadID string, authoritative *entity.Lead) {
	s.mu.Lock()
	delete(s.pending, leadID)
	if authoritative != nil {
		if i := s.indexOf(leadID); i >= 0 {
			s.leads[i] = *authoritative
		}
	}
	s.mu.Unlock()

	s.publish()
}

// RevertMove desfaz o movimento otimista. Se o store mandou outro status_id
// enquanto o commit estava pendente, é esse que volta, não from.
func (s *BoardState) RevertMove(leadID, from string) {
	s.mu.Lock()
	restore := from
	if p, ok := s.pending[leadID]; ok && p.hasAuthoritative {
		restore = p.authoritative
	}
	delete(s.pending, leadID)
	if i := s.indexOf(leadID); i >= 0 {
		s.leads[i].StatusID = restore
	}
	s.mu.Unlock()

	s.publish()
}

// Board monta o board atual aplicando o filtro.
func (s *BoardState) Board(f LeadFilter) entity.Board {
	s.mu.RLock()
	leads := make([]entity.Lead, len(s.leads))
	copy(leads, s.leads)
	statuses := s.statuses
	s.mu.RUnlock()

	return BuildBoard(leads, statuses, f)
}

// Subscribe registra um observador chamado após cada mutação.
func (s *BoardState) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subscribers, id)
		s.subMu.Unlock()
	}
}

func (s *BoardState) publish() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *BoardState) indexOf(id string) int {
	for i := range s.leads {
		if s.leads[i].ID == id {
			return i
		}
	}
	return -1
}
