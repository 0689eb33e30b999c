package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/metrics"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
	"github.com/xavierca1/ligue-imoveis/internal/logger"
)

// DragState é o estado da máquina de drag-move de um board.
type DragState int

const (
	DragIdle DragState = iota
	DragDragging
	DragCommitting
)

func (s DragState) String() string {
	switch s {
	case DragIdle:
		return "idle"
	case DragDragging:
		return "dragging"
	case DragCommitting:
		return "committing"
	}
	return fmt.Sprintf("DragState(%d)", int(s))
}

func (s DragState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

type dragEvent int

const (
	evStart dragEvent = iota
	evCancel
	evNoop
	evDrop
	evSettle
)

var dragEventNames = map[dragEvent]string{
	evStart:  "start",
	evCancel: "cancel",
	evNoop:   "noop",
	evDrop:   "drop",
	evSettle: "settle",
}

var dragTransitions = map[DragState]map[dragEvent]DragState{
	DragIdle: {
		evStart: DragDragging,
	},
	DragDragging: {
		evCancel: DragIdle,
		evNoop:   DragIdle,
		evDrop:   DragCommitting,
	},
	DragCommitting: {
		evSettle: DragIdle,
	},
}

var (
	ErrDragInProgress    = errors.New("já existe um lead sendo movido neste board")
	ErrNotDragging       = errors.New("nenhum lead sendo arrastado")
	ErrInvalidTransition = errors.New("transição de estado inválida")
)

const DefaultCommitTimeout = 10 * time.Second

type MoveOutcome string

const (
	MoveNoop      MoveOutcome = "noop"
	MoveCommitted MoveOutcome = "committed"
	MoveReverted  MoveOutcome = "reverted"
)

type MoveResult struct {
	Outcome      MoveOutcome  `json:"outcome"`
	LeadID       string       `json:"lead_id"`
	FromStatusID string       `json:"from_status_id,omitempty"`
	ToStatusID   string       `json:"to_status_id,omitempty"`
	Lead         *entity.Lead `json:"lead,omitempty"`
	Err          error        `json:"-"`
}

type MoveLeadDeps struct {
	Board         *BoardState
	Store         LeadStore
	Activities    ActivityRecorder // opcional
	Events        EventPublisher   // opcional
	Notifier      Notifier
	CommitTimeout time.Duration
	User          string
}

// MoveLeadController interpreta o gesto de arrastar um card:
// Idle -> Dragging(lead) -> Committing(lead, de, para) -> Idle.
//
// Só um lead por vez fica em Dragging/Committing; um segundo StartDrag nesse
// intervalo volta ErrDragInProgress sem tocar na operação em andamento.
type MoveLeadController struct {
	mu     sync.Mutex
	state  DragState
	leadID string
	from   string
	to     string

	board      *BoardState
	store      LeadStore
	activities ActivityRecorder
	events     EventPublisher
	notifier   Notifier
	timeout    time.Duration
	user       string
}

func NewMoveLeadController(deps MoveLeadDeps) *MoveLeadController {
	timeout := deps.CommitTimeout
	if timeout <= 0 {
		timeout = DefaultCommitTimeout
	}
	return &MoveLeadController{
		state:      DragIdle,
		board:      deps.Board,
		store:      deps.Store,
		activities: deps.Activities,
		events:     deps.Events,
		notifier:   deps.Notifier,
		timeout:    timeout,
		user:       deps.User,
	}
}

func (c *MoveLeadController) State() DragState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ActiveLead é o lead em Dragging/Committing (pro overlay do card), ou "".
func (c *MoveLeadController) ActiveLead() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leadID
}

// fire aplica o evento pela tabela de transições. Chamar com c.mu travado.
func (c *MoveLeadController) fire(ev dragEvent) error {
	next, ok := dragTransitions[c.state][ev]
	if !ok {
		return fmt.Errorf("%w: %s em %s", ErrInvalidTransition, dragEventNames[ev], c.state)
	}
	c.state = next
	if next == DragIdle {
		c.leadID, c.from, c.to = "", "", ""
	}
	return nil
}

func (c *MoveLeadController) StartDrag(leadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragIdle {
		metrics.RecordLeadMove(metrics.MoveRejected)
		return ErrDragInProgress
	}
	if _, ok := c.board.Lead(leadID); !ok {
		return entity.ErrLeadNotFound
	}

	if err := c.fire(evStart); err != nil {
		return err
	}
	c.leadID = leadID
	return nil
}

func (c *MoveLeadController) CancelDrag() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != DragDragging {
		return ErrNotDragging
	}
	return c.fire(evCancel)
}

// Drop solta o lead arrastado sobre a coluna targetStatusID ("" = fora de
// qualquer coluna). Volta sempre pra Idle, com sucesso ou falha.
func (c *MoveLeadController) Drop(ctx context.Context, targetStatusID string) (MoveResult, error) {
	c.mu.Lock()
	switch c.state {
	case DragCommitting:
		c.mu.Unlock()
		return MoveResult{}, ErrDragInProgress
	case DragIdle:
		c.mu.Unlock()
		return MoveResult{}, ErrNotDragging
	}

	leadID := c.leadID
	lead, ok := c.board.Lead(leadID)
	if !ok {
		// sumiu da visão (apagado por outro usuário) entre o drag e o drop
		c.fire(evNoop)
		c.mu.Unlock()
		metrics.RecordLeadMove(metrics.MoveReverted)
		c.notify(ctx, Notification{
			Kind:        NotifyError,
			Title:       "Erro ao atualizar status",
			Description: "O lead foi removido por outro usuário.",
			LeadID:      leadID,
		})
		return MoveResult{Outcome: MoveReverted, LeadID: leadID, Err: entity.ErrLeadNotFound}, nil
	}

	// compara com a coluna exibida: status_id órfão aparece na primeira etapa
	shown := EnrichLeads([]entity.Lead{lead}, c.board.Statuses())[0].Status.ID
	target, known := c.board.Status(targetStatusID)
	if targetStatusID == "" || !known || targetStatusID == shown {
		c.fire(evNoop)
		c.mu.Unlock()
		metrics.RecordLeadMove(metrics.MoveNoop)
		return MoveResult{Outcome: MoveNoop, LeadID: leadID, FromStatusID: lead.StatusID}, nil
	}

	if err := c.fire(evDrop); err != nil {
		c.mu.Unlock()
		return MoveResult{}, err
	}
	c.from, c.to = lead.StatusID, targetStatusID
	c.mu.Unlock()

	// BeginMove notifica os observadores do board; por isso roda fora do lock
	var result MoveResult
	from, err := c.board.BeginMove(leadID, targetStatusID)
	if err != nil {
		metrics.RecordLeadMove(metrics.MoveReverted)
		c.notify(ctx, Notification{
			Kind:        NotifyError,
			Title:       "Erro ao atualizar status",
			Description: failureDescription(lead.Name, target.Name, err),
			LeadID:      leadID,
		})
		result = MoveResult{Outcome: MoveReverted, LeadID: leadID, FromStatusID: lead.StatusID, ToStatusID: targetStatusID, Err: err}
	} else {
		result = c.commit(ctx, lead, from, target)
	}

	c.mu.Lock()
	c.fire(evSettle)
	c.mu.Unlock()

	return result, nil
}

func (c *MoveLeadController) commit(ctx context.Context, lead entity.Lead, from string, target entity.Status) MoveResult {
	log := logger.FromContext(ctx).With(
		zap.String("lead_id", lead.ID),
		zap.String("from", from),
		zap.String("to", target.ID),
	)

	commitCtx, cancel := context.WithTimeout(ctx, c.timeout)
	start := time.Now()
	updated, err := c.store.Update(commitCtx, lead.ID, entity.LeadPatch{StatusID: &target.ID})
	cancel()
	metrics.ObserveMoveCommit(time.Since(start).Seconds())

	result := MoveResult{LeadID: lead.ID, FromStatusID: from, ToStatusID: target.ID}

	// daqui pra frente o trabalho não deve morrer junto com o request
	ctx = context.WithoutCancel(ctx)

	if err != nil {
		c.board.RevertMove(lead.ID, from)
		metrics.RecordLeadMove(metrics.MoveReverted)
		log.Warn("falha ao mover lead, revertido", zap.Error(err))

		c.notify(ctx, Notification{
			Kind:        NotifyError,
			Title:       "Erro ao atualizar status",
			Description: failureDescription(lead.Name, target.Name, err),
			LeadID:      lead.ID,
		})

		result.Outcome = MoveReverted
		result.Err = err
		return result
	}

	c.board.ResolveMove(lead.ID, updated)
	metrics.RecordLeadMove(metrics.MoveCommitted)

	c.notify(ctx, Notification{
		Kind:        NotifySuccess,
		Title:       "Status Atualizado!",
		Description: fmt.Sprintf("%s foi movido para %s", lead.Name, target.Name),
		LeadID:      lead.ID,
	})

	fromName := from
	if s, ok := c.board.Status(from); ok {
		fromName = s.Name
	}

	if c.activities != nil {
		desc := fmt.Sprintf("Status alterado de %s para %s", fromName, target.Name)
		if err := c.activities.Append(ctx, entity.NewActivity(lead.ID, entity.ActivityStatusChange, desc, c.user)); err != nil {
			log.Warn("falha ao registrar atividade", zap.Error(err))
		}
	}

	if c.events != nil {
		current := lead
		if updated != nil {
			current = *updated
		}
		event := leadEvent(queue.EventStatusChange, current, target.Name, OriginBoard)
		event.FromStatusName = fromName
		if err := c.events.PublishLeadEvent(ctx, event); err != nil {
			log.Warn("movido no banco, mas falha na fila", zap.Error(err))
		}
	}

	result.Outcome = MoveCommitted
	result.Lead = updated
	return result
}

func (c *MoveLeadController) notify(ctx context.Context, n Notification) {
	if c.notifier == nil {
		return
	}
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	c.notifier.Notify(ctx, n)
}

func failureDescription(leadName, statusName string, err error) string {
	switch {
	case errors.Is(err, entity.ErrLeadNotFound):
		return fmt.Sprintf("%s foi removido por outro usuário.", leadName)
	case errors.Is(err, entity.ErrStatusNotFound):
		return fmt.Sprintf("A etapa %s não existe mais.", statusName)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Sprintf("Tempo esgotado ao mover %s para %s. Tente novamente.", leadName, statusName)
	default:
		return fmt.Sprintf("Não foi possível mover %s para %s. Tente novamente.", leadName, statusName)
	}
}
