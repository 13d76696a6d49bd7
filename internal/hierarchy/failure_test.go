package hierarchy

import (
	"context"
	"errors"
	"testing"

	"catalog-service/internal/apperror"
	"catalog-service/internal/model"
	"catalog-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var errStorage = errors.New("connection reset by peer")

func TestSelfReferenceNeverReachesStore(t *testing.T) {
	store := new(mockStore)
	m := NewManager(store, zap.NewNop())

	err := m.AddChildCategory(context.Background(), 5, 5)

	assert.True(t, apperror.IsConflict(err))
	store.AssertNotCalled(t, "Transaction", mock.Anything)
	store.AssertExpectations(t)
}

func TestStorageErrorsPropagateWithoutRetry(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Transaction", ctx).Return()
	store.On("LockHierarchy", ctx).Return(nil)
	store.On("LockCategoryByID", ctx, int64(1)).Return(&model.Category{ID: 1, Name: "A"}, nil)
	store.On("FindCategoryByID", ctx, int64(2)).Return(&model.Category{ID: 2, Name: "B"}, nil)
	store.On("ChildXrefs", ctx, []int64{1}).Return(nil, errStorage).Once()

	m := NewManager(store, zap.NewNop())
	err := m.AddChildCategory(ctx, 1, 2)

	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	store.AssertNumberOfCalls(t, "ChildXrefs", 1)
	store.AssertNotCalled(t, "CreateCategoryXref", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestNotFoundFromStorePropagates(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Transaction", ctx).Return()
	store.On("LockCategoryByID", ctx, int64(7)).Return(nil, apperror.NotFound(model.KindCategory, 7))

	m := NewManager(store, zap.NewNop())

	err := m.AddProductToCategory(ctx, 7, 3)
	var notFound *apperror.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, int64(7), notFound.ID)
	store.AssertNotCalled(t, "FindProductByID", mock.Anything, mock.Anything)
}

func TestArchivedParentIsNotFound(t *testing.T) {
	ctx := context.Background()
	archived := &model.Category{ID: 1, Name: "A", Status: model.Status{Archived: true}}

	store := new(mockStore)
	store.On("Transaction", ctx).Return()
	store.On("LockCategoryByID", ctx, int64(1)).Return(archived, nil)

	m := NewManager(store, zap.NewNop())
	assert.True(t, apperror.IsNotFound(m.RemoveChildCategory(ctx, 1, 2)))
	store.AssertNotCalled(t, "ChildXrefs", mock.Anything, mock.Anything)
}

func TestRejectedMutationIsLoggedAtWarn(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	ctx := context.Background()

	store := new(mockStore)
	store.On("Transaction", ctx).Return()
	store.On("LockHierarchy", ctx).Return(nil)
	store.On("LockCategoryByID", ctx, int64(1)).Return(&model.Category{ID: 1, Name: "A"}, nil)
	store.On("FindCategoryByID", ctx, int64(2)).Return(&model.Category{ID: 2, Name: "B"}, nil)
	store.On("ChildXrefs", ctx, []int64{1}).Return([]model.CategoryXref{{ID: 9, CategoryID: 1, SubCategoryID: 2}}, nil)

	m := NewManager(store, zap.New(core))
	require.True(t, apperror.IsConflict(m.AddChildCategory(ctx, 1, 2)))

	entries := logs.FilterMessage("Category add_child rejected").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(1), entries[0].ContextMap()["category_id"])
}

func TestCycleCheckFollowsDescendants(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("ChildXrefs", ctx, []int64{2}).Return([]model.CategoryXref{{CategoryID: 2, SubCategoryID: 3}, {CategoryID: 2, SubCategoryID: 4}}, nil)
	store.On("ChildXrefs", ctx, []int64{3, 4}).Return([]model.CategoryXref{{CategoryID: 4, SubCategoryID: 1}}, nil)

	m := NewManager(store, zap.NewNop())
	found, err := m.reaches(ctx, 2, 1)
	require.NoError(t, err)
	assert.True(t, found)

	other := new(mockStore)
	other.On("ChildXrefs", ctx, []int64{2}).Return([]model.CategoryXref{{CategoryID: 2, SubCategoryID: 3}}, nil)
	other.On("ChildXrefs", ctx, []int64{3}).Return([]model.CategoryXref{{CategoryID: 3, SubCategoryID: 2}}, nil)

	m = NewManager(other, zap.NewNop())
	found, err = m.reaches(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, found, "an existing loop must not hang the walk")
}

func TestAddChildCategoryTakesHierarchyLockFirst(t *testing.T) {
	ctx := context.Background()
	store := new(mockStore)
	store.On("Transaction", ctx).Return()
	store.On("LockHierarchy", ctx).Return(errStorage)

	m := NewManager(store, zap.NewNop())
	err := m.AddChildCategory(ctx, 1, 2)

	assert.ErrorIs(t, err, errStorage)
	store.AssertNotCalled(t, "LockCategoryByID", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "CreateCategoryXref", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
}

func TestMutationsLogThroughRequestLogger(t *testing.T) {
	fallbackCore, fallbackLogs := observer.New(zap.InfoLevel)
	requestCore, requestLogs := observer.New(zap.InfoLevel)
	ctx := logger.WithContext(context.Background(), zap.New(requestCore).With(zap.String("request_id", "req-42")))

	store := new(mockStore)
	store.On("Transaction", mock.Anything).Return()
	store.On("LockCategoryByID", mock.Anything, int64(1)).Return(&model.Category{ID: 1, Name: "A"}, nil)
	store.On("RemoveCategory", mock.Anything, mock.Anything).Return(nil)

	m := NewManager(store, zap.New(fallbackCore))
	require.NoError(t, m.DeleteCategory(ctx, 1))

	entries := requestLogs.FilterMessage("Category delete").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "req-42", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "hierarchy", entries[0].LoggerName)
	assert.Zero(t, fallbackLogs.Len())

	require.NoError(t, m.DeleteCategory(context.Background(), 1))
	assert.Equal(t, 1, fallbackLogs.FilterMessage("Category delete").Len())
}
