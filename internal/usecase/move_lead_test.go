package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
)

type moveFixture struct {
	board      *BoardState
	store      *MockLeadStore
	activities *MockActivityRepository
	events     *MockEventPublisher
	notifier   *recordingNotifier
	ctrl       *MoveLeadController
}

func newMoveFixture(t *testing.T, store LeadStore, timeout time.Duration) *moveFixture {
	t.Helper()

	f := &moveFixture{
		board:      NewBoardState(),
		store:      new(MockLeadStore),
		activities: new(MockActivityRepository),
		events:     new(MockEventPublisher),
		notifier:   &recordingNotifier{},
	}
	f.board.Load(pipelineStatuses(), []entity.Lead{
		testLead("A", "Ana", "s-novo", time.Hour),
		testLead("B", "Bruno", "s-contatado", time.Hour),
	})
	if store == nil {
		store = f.store
	}
	f.ctrl = NewMoveLeadController(MoveLeadDeps{
		Board:         f.board,
		Store:         store,
		Activities:    f.activities,
		Events:        f.events,
		Notifier:      f.notifier,
		CommitTimeout: timeout,
		User:          "corretor@imob.com",
	})
	return f
}

func statusPatch(id string) interface{} {
	return mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.StatusID != nil && *p.StatusID == id && p.Name == nil
	})
}

func TestMoveLeadCommitsAndNotifies(t *testing.T) {
	f := newMoveFixture(t, nil, 0)
	ctx := context.Background()

	var optimistic string
	updated := testLead("A", "Ana", "s-contatado", time.Hour)
	updated.UpdatedAt = baseTime.Add(time.Minute)
	f.store.On("Update", mock.Anything, "A", statusPatch("s-contatado")).
		Run(func(mock.Arguments) {
			lead, _ := f.board.Lead("A")
			optimistic = lead.StatusID
		}).
		Return(&updated, nil).Once()
	f.activities.On("Append", mock.Anything, mock.MatchedBy(func(a *entity.Activity) bool {
		return a.LeadID == "A" && a.Type == entity.ActivityStatusChange &&
			a.Description == "Status alterado de Novo para Contatado" && a.User == "corretor@imob.com"
	})).Return(nil).Once()
	f.events.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(e queue.LeadEvent) bool {
		return e.Type == queue.EventStatusChange && e.LeadID == "A" &&
			e.StatusName == "Contatado" && e.FromStatusName == "Novo" && e.Origin == OriginBoard
	})).Return(nil).Once()

	require.NoError(t, f.ctrl.StartDrag("A"))
	assert.Equal(t, DragDragging, f.ctrl.State())
	assert.Equal(t, "A", f.ctrl.ActiveLead())

	res, err := f.ctrl.Drop(ctx, "s-contatado")
	require.NoError(t, err)

	assert.Equal(t, "s-contatado", optimistic, "a visão muda antes do store responder")
	assert.Equal(t, MoveCommitted, res.Outcome)
	assert.Equal(t, "s-novo", res.FromStatusID)
	assert.Equal(t, DragIdle, f.ctrl.State())
	assert.Empty(t, f.ctrl.ActiveLead())
	assert.False(t, f.board.IsPending("A"))

	lead, _ := f.board.Lead("A")
	assert.Equal(t, updated.UpdatedAt, lead.UpdatedAt, "cópia local vira a autoritativa")

	notes := f.notifier.All()
	require.Len(t, notes, 1)
	assert.Equal(t, NotifySuccess, notes[0].Kind)
	assert.Equal(t, "Status Atualizado!", notes[0].Title)
	assert.Contains(t, notes[0].Description, "Ana")
	assert.Contains(t, notes[0].Description, "Contatado")

	f.store.AssertExpectations(t)
	f.activities.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestMoveLeadSameColumnIsNoop(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	require.NoError(t, f.ctrl.StartDrag("A"))
	res, err := f.ctrl.Drop(context.Background(), "s-novo")

	require.NoError(t, err)
	assert.Equal(t, MoveNoop, res.Outcome)
	assert.Equal(t, DragIdle, f.ctrl.State())
	assert.Empty(t, f.notifier.All())
	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	f.activities.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
}

func TestMoveLeadDropOutsideColumnsIsNoop(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	for _, target := range []string{"", "coluna-que-nao-existe"} {
		require.NoError(t, f.ctrl.StartDrag("A"))
		res, err := f.ctrl.Drop(context.Background(), target)

		require.NoError(t, err)
		assert.Equal(t, MoveNoop, res.Outcome)
		assert.Equal(t, DragIdle, f.ctrl.State())
	}

	lead, _ := f.board.Lead("A")
	assert.Equal(t, "s-novo", lead.StatusID)
	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveLeadStoreFailureReverts(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	f.store.On("Update", mock.Anything, "A", statusPatch("s-proposta")).
		Return(nil, errors.New("connection reset")).Once()

	require.NoError(t, f.ctrl.StartDrag("A"))
	res, err := f.ctrl.Drop(context.Background(), "s-proposta")

	require.NoError(t, err)
	assert.Equal(t, MoveReverted, res.Outcome)
	assert.Error(t, res.Err)
	assert.Equal(t, DragIdle, f.ctrl.State())

	lead, _ := f.board.Lead("A")
	assert.Equal(t, "s-novo", lead.StatusID)
	assert.False(t, f.board.IsPending("A"))

	col, _ := f.board.Board(LeadFilter{}).ColumnOf("A")
	assert.Equal(t, "s-novo", col)

	notes := f.notifier.All()
	require.Len(t, notes, 1, "uma única notificação de erro")
	assert.Equal(t, NotifyError, notes[0].Kind)
	assert.Equal(t, "Erro ao atualizar status", notes[0].Title)

	f.activities.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishLeadEvent", mock.Anything, mock.Anything)
}

func TestMoveLeadFailureRestoresStatusPushedDuringCommit(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	// outro admin move A pra Proposta enquanto o nosso commit está no ar
	f.store.On("Update", mock.Anything, "A", statusPatch("s-contatado")).
		Run(func(mock.Arguments) {
			f.board.ApplyChange(entity.LeadChange{Op: entity.ChangeUpdate, Lead: testLead("A", "Ana", "s-proposta", 0)})
		}).
		Return(nil, errors.New("connection reset")).Once()

	require.NoError(t, f.ctrl.StartDrag("A"))
	res, err := f.ctrl.Drop(context.Background(), "s-contatado")

	require.NoError(t, err)
	assert.Equal(t, MoveReverted, res.Outcome)

	col, _ := f.board.Board(LeadFilter{}).ColumnOf("A")
	assert.Equal(t, "s-proposta", col, "visão fica igual ao store")
	assert.Len(t, f.notifier.All(), 1)
}

func TestMoveLeadOrphanStatusDropOnShownColumnIsNoop(t *testing.T) {
	f := newMoveFixture(t, nil, 0)
	f.board.Load(pipelineStatuses(), []entity.Lead{
		testLead("A", "Ana", "s-novo", time.Hour),
		testLead("C", "Carla", "s-apagada", time.Hour),
	})

	col, ok := f.board.Board(LeadFilter{}).ColumnOf("C")
	require.True(t, ok)
	require.Equal(t, "s-novo", col, "órfão aparece na primeira etapa")

	require.NoError(t, f.ctrl.StartDrag("C"))
	res, err := f.ctrl.Drop(context.Background(), "s-novo")

	require.NoError(t, err)
	assert.Equal(t, MoveNoop, res.Outcome)
	assert.Equal(t, DragIdle, f.ctrl.State())
	assert.Empty(t, f.notifier.All())
	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestMoveLeadDeletedConcurrentlyReverts(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	f.store.On("Update", mock.Anything, "A", mock.Anything).
		Return(nil, entity.ErrLeadNotFound).Once()

	require.NoError(t, f.ctrl.StartDrag("A"))
	res, err := f.ctrl.Drop(context.Background(), "s-contatado")

	require.NoError(t, err)
	assert.Equal(t, MoveReverted, res.Outcome)
	assert.ErrorIs(t, res.Err, entity.ErrLeadNotFound)

	notes := f.notifier.All()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Description, "removido")
}

type hangingStore struct {
	MockLeadStore
}

func (h *hangingStore) Update(ctx context.Context, _ string, _ entity.LeadPatch) (*entity.Lead, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestMoveLeadHungCommitTimesOut(t *testing.T) {
	f := newMoveFixture(t, &hangingStore{}, 30*time.Millisecond)

	require.NoError(t, f.ctrl.StartDrag("A"))
	res, err := f.ctrl.Drop(context.Background(), "s-contatado")

	require.NoError(t, err)
	assert.Equal(t, MoveReverted, res.Outcome)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.Equal(t, DragIdle, f.ctrl.State())

	lead, _ := f.board.Lead("A")
	assert.Equal(t, "s-novo", lead.StatusID)

	notes := f.notifier.All()
	require.Len(t, notes, 1)
	assert.Contains(t, notes[0].Description, "Tempo esgotado")
}

func TestMoveLeadSecondDragRejectedWhileCommitting(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	release := make(chan struct{})
	updated := testLead("A", "Ana", "s-contatado", time.Hour)
	f.store.On("Update", mock.Anything, "A", mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(&updated, nil).Once()
	f.activities.On("Append", mock.Anything, mock.Anything).Return(nil)
	f.events.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.ctrl.StartDrag("A"))

	done := make(chan MoveResult, 1)
	go func() {
		res, _ := f.ctrl.Drop(context.Background(), "s-contatado")
		done <- res
	}()

	assert.Eventually(t, func() bool { return f.ctrl.State() == DragCommitting }, time.Second, 5*time.Millisecond)

	assert.ErrorIs(t, f.ctrl.StartDrag("B"), ErrDragInProgress)
	_, err := f.ctrl.Drop(context.Background(), "s-novo")
	assert.ErrorIs(t, err, ErrDragInProgress)
	assert.Equal(t, "A", f.ctrl.ActiveLead(), "operação em andamento intacta")

	close(release)
	res := <-done
	assert.Equal(t, MoveCommitted, res.Outcome)
	assert.Equal(t, DragIdle, f.ctrl.State())

	lead, _ := f.board.Lead("B")
	assert.Equal(t, "s-contatado", lead.StatusID)
}

func TestMoveLeadStartDragRules(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	assert.ErrorIs(t, f.ctrl.StartDrag("nao-existe"), entity.ErrLeadNotFound)
	assert.Equal(t, DragIdle, f.ctrl.State())

	require.NoError(t, f.ctrl.StartDrag("A"))
	assert.ErrorIs(t, f.ctrl.StartDrag("B"), ErrDragInProgress)

	require.NoError(t, f.ctrl.CancelDrag())
	assert.Equal(t, DragIdle, f.ctrl.State())
	assert.ErrorIs(t, f.ctrl.CancelDrag(), ErrNotDragging)

	_, err := f.ctrl.Drop(context.Background(), "s-novo")
	assert.ErrorIs(t, err, ErrNotDragging)
}

func TestMoveLeadRemovedFromViewBeforeDrop(t *testing.T) {
	f := newMoveFixture(t, nil, 0)

	require.NoError(t, f.ctrl.StartDrag("A"))
	f.board.ApplyChange(entity.LeadChange{Op: entity.ChangeDelete, Lead: entity.Lead{ID: "A"}})

	res, err := f.ctrl.Drop(context.Background(), "s-contatado")
	require.NoError(t, err)
	assert.Equal(t, MoveReverted, res.Outcome)
	assert.ErrorIs(t, res.Err, entity.ErrLeadNotFound)
	assert.Equal(t, DragIdle, f.ctrl.State())
	assert.Len(t, f.notifier.All(), 1)
	f.store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestDragTransitionTable(t *testing.T) {
	c := &MoveLeadController{state: DragIdle}

	assert.ErrorIs(t, c.fire(evDrop), ErrInvalidTransition)
	require.NoError(t, c.fire(evStart))
	assert.ErrorIs(t, c.fire(evSettle), ErrInvalidTransition)
	require.NoError(t, c.fire(evDrop))
	assert.Equal(t, DragCommitting, c.state)
	assert.ErrorIs(t, c.fire(evCancel), ErrInvalidTransition)
	require.NoError(t, c.fire(evSettle))
	assert.Equal(t, DragIdle, c.state)

	text, err := DragCommitting.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "committing", string(text))
}
