package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-imoveis/internal/infra/mail"
)

// MockCRM
type MockCRM struct {
	mock.Mock
}

func (m *MockCRM) CreateLead(ctx context.Context, input kommo.CreateLeadInput) (int, error) {
	args := m.Called(ctx, input)
	return args.Int(0), args.Error(1)
}

func (m *MockCRM) AddNote(ctx context.Context, crmLeadID int, text string) error {
	args := m.Called(ctx, crmLeadID, text)
	return args.Error(0)
}

// MockLeadLinker
type MockLeadLinker struct {
	mock.Mock
}

func (m *MockLeadLinker) Update(ctx context.Context, id string, patch entity.LeadPatch) (*entity.Lead, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

// MockAlerter
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) SendNewLeadAlert(alert mail.NewLeadAlert) error {
	args := m.Called(alert)
	return args.Error(0)
}

func newTestWorker() (*Worker, *MockCRM, *MockLeadLinker, *MockAlerter) {
	crm := new(MockCRM)
	leads := new(MockLeadLinker)
	alerter := new(MockAlerter)
	return NewWorker(nil, crm, leads, alerter, zap.NewNop()), crm, leads, alerter
}

func crmPatch(id int) interface{} {
	return mock.MatchedBy(func(p entity.LeadPatch) bool {
		return p.CRMID != nil && *p.CRMID == id && p.StatusID == nil
	})
}

func TestWorkerLeadCreatedSyncsCRMAndAlerts(t *testing.T) {
	ctx := context.Background()
	w, crm, leads, alerter := newTestWorker()

	event := LeadEvent{
		Type:       EventLeadCreated,
		LeadID:     "lead-1",
		Name:       "Maria",
		Phone:      "11999990000",
		Message:    "Quero ver o apto",
		StatusName: "Novo",
	}

	alerter.On("SendNewLeadAlert", mail.NewLeadAlert{
		Name: "Maria", Phone: "11999990000", Message: "Quero ver o apto", StatusName: "Novo",
	}).Return(nil).Once()
	crm.On("CreateLead", ctx, kommo.CreateLeadInput{Name: "Maria", Phone: "11999990000", Message: "Quero ver o apto"}).
		Return(777, nil).Once()
	leads.On("Update", ctx, "lead-1", crmPatch(777)).Return(&entity.Lead{ID: "lead-1", CRMID: 777}, nil).Once()

	assert.NoError(t, w.processMessage(ctx, event))
	crm.AssertExpectations(t)
	leads.AssertExpectations(t)
	alerter.AssertExpectations(t)
}

func TestWorkerEmailFailureDoesNotBlockCRM(t *testing.T) {
	ctx := context.Background()
	w, crm, leads, alerter := newTestWorker()

	alerter.On("SendNewLeadAlert", mock.Anything).Return(errors.New("smtp down"))
	crm.On("CreateLead", ctx, mock.Anything).Return(10, nil)
	leads.On("Update", ctx, "lead-1", crmPatch(10)).Return(&entity.Lead{}, nil)

	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: EventLeadCreated, LeadID: "lead-1", Name: "Ana"}))
	crm.AssertCalled(t, "CreateLead", ctx, mock.Anything)
}

func TestWorkerCRMFailureIsReturned(t *testing.T) {
	ctx := context.Background()
	w, crm, leads, alerter := newTestWorker()

	alerter.On("SendNewLeadAlert", mock.Anything).Return(nil)
	crm.On("CreateLead", ctx, mock.Anything).Return(0, errors.New("kommo 502"))

	err := w.processMessage(ctx, LeadEvent{Type: EventLeadCreated, LeadID: "lead-1", Name: "Ana"})

	assert.ErrorContains(t, err, "kommo")
	leads.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkerLeadDeletedBeforeLinkIsAcked(t *testing.T) {
	ctx := context.Background()
	w, crm, leads, alerter := newTestWorker()

	alerter.On("SendNewLeadAlert", mock.Anything).Return(nil)
	crm.On("CreateLead", ctx, mock.Anything).Return(55, nil)
	leads.On("Update", ctx, "lead-1", mock.Anything).Return(nil, entity.ErrLeadNotFound)

	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: EventLeadCreated, LeadID: "lead-1", Name: "Ana"}))
}

func TestWorkerStatusChangeAddsNote(t *testing.T) {
	ctx := context.Background()
	w, crm, _, _ := newTestWorker()

	crm.On("AddNote", ctx, 4242, "Etapa alterada: Novo → Proposta").Return(nil).Once()

	err := w.processMessage(ctx, LeadEvent{
		Type: EventStatusChange, LeadID: "lead-1", CRMID: 4242,
		FromStatusName: "Novo", StatusName: "Proposta",
	})

	assert.NoError(t, err)
	crm.AssertExpectations(t)
}

func TestWorkerSkipsUnsyncedAndUnknownEvents(t *testing.T) {
	ctx := context.Background()
	w, crm, _, _ := newTestWorker()

	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: EventStatusChange, LeadID: "lead-1"}))
	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: EventLeadDeleted, LeadID: "lead-1"}))
	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: "qualquer_coisa"}))
	crm.AssertNotCalled(t, "AddNote", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkerLeadDeletedLeavesNote(t *testing.T) {
	ctx := context.Background()
	w, crm, _, _ := newTestWorker()
	crm.On("AddNote", ctx, 9, "Lead removido do painel do site").Return(nil).Once()

	assert.NoError(t, w.processMessage(ctx, LeadEvent{Type: EventLeadDeleted, LeadID: "lead-1", CRMID: 9}))
	crm.AssertExpectations(t)
}
