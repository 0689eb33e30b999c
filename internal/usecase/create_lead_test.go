package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/ligue-imoveis/internal/entity"
	"github.com/xavierca1/ligue-imoveis/internal/infra/queue"
)

func newCreateLeadFixture() (*CreateLeadUseCase, *MockLeadStore, *MockStatusSource, *MockActivityRepository, *MockEventPublisher) {
	repo := new(MockLeadStore)
	statuses := new(MockStatusSource)
	activities := new(MockActivityRepository)
	events := new(MockEventPublisher)
	uc := NewCreateLeadUseCase(repo, NewStatusRegistry(statuses), activities, events)
	return uc, repo, statuses, activities, events
}

func TestCreateLeadSuccessDefaultsStatus(t *testing.T) {
	ctx := context.Background()
	uc, repo, statuses, activities, events := newCreateLeadFixture()

	statuses.On("List", ctx).Return(pipelineStatuses(), nil)
	repo.On("Create", ctx, mock.MatchedBy(func(l *entity.Lead) bool {
		return l.Name == "João Silva" && l.StatusID == "s-novo" && l.ID != ""
	})).Return(nil).Once()
	activities.On("Append", mock.Anything, mock.MatchedBy(func(a *entity.Activity) bool {
		return a.Type == entity.ActivityLeadCreated
	})).Return(nil).Once()
	events.On("PublishLeadEvent", ctx, mock.MatchedBy(func(e queue.LeadEvent) bool {
		return e.Type == queue.EventLeadCreated && e.StatusName == "Novo" && e.Origin == OriginSite
	})).Return(nil).Once()

	lead, err := uc.Execute(ctx, CreateLeadInput{
		Name:   "João Silva",
		Email:  "joao@example.com",
		Phone:  "(11) 99999-9999",
		Origin: OriginSite,
	})

	require.NoError(t, err)
	assert.Equal(t, "s-novo", lead.StatusID)
	repo.AssertExpectations(t)
	activities.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestCreateLeadValidationFailsWithoutStoreCall(t *testing.T) {
	uc, repo, statuses, _, _ := newCreateLeadFixture()

	_, err := uc.Execute(context.Background(), CreateLeadInput{Name: " ", Email: "nao-e-email"})

	require.Error(t, err)
	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeValidation, de.Code)
	assert.Len(t, de.Fields, 2)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	statuses.AssertNotCalled(t, "List", mock.Anything)
}

func TestCreateLeadWithoutStatuses(t *testing.T) {
	ctx := context.Background()
	uc, repo, statuses, _, _ := newCreateLeadFixture()
	statuses.On("List", ctx).Return([]entity.Status{}, nil)

	_, err := uc.Execute(ctx, CreateLeadInput{Name: "Ana"})

	var de *DomainError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, CodeNoStatuses, de.Code)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateLeadActivityFailureCompensates(t *testing.T) {
	ctx := context.Background()
	uc, repo, statuses, activities, events := newCreateLeadFixture()

	statuses.On("List", ctx).Return(pipelineStatuses(), nil)
	var created *entity.Lead
	repo.On("Create", ctx, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*entity.Lead)
	}).Return(nil).Once()
	activities.On("Append", mock.Anything, mock.Anything).Return(errors.New("db down")).Once()
	repo.On("Delete", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := uc.Execute(ctx, CreateLeadInput{Name: "Ana", StatusID: "s-proposta"})

	require.Error(t, err)
	assert.True(t, IsTechnicalError(err))
	require.NotNil(t, created)
	assert.Equal(t, "s-proposta", created.StatusID)
	repo.AssertCalled(t, "Delete", mock.Anything, created.ID)
	events.AssertNotCalled(t, "PublishLeadEvent", mock.Anything, mock.Anything)
}

func TestCreateLeadQueueFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	uc, repo, statuses, activities, events := newCreateLeadFixture()

	statuses.On("List", ctx).Return(pipelineStatuses(), nil)
	repo.On("Create", ctx, mock.Anything).Return(nil)
	activities.On("Append", mock.Anything, mock.Anything).Return(nil)
	events.On("PublishLeadEvent", ctx, mock.Anything).Return(errors.New("broker offline"))

	lead, err := uc.Execute(ctx, CreateLeadInput{Name: "Ana"})

	require.NoError(t, err)
	assert.NotNil(t, lead)
}
