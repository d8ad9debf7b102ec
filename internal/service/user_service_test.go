package service

import (
	"context"
	"testing"

	"shareit/internal/database"
	"shareit/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_Create(t *testing.T) {
	store := &mockStore{}
	svc := NewUserService(store, testLogger())

	store.On("CreateUser", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*models.User).ID = 1
		}).Return(nil)

	user, err := svc.Create(context.Background(), &models.User{Name: "Alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	store := &mockStore{}
	svc := NewUserService(store, testLogger())

	store.On("CreateUser", mock.Anything, mock.Anything).Return(database.ErrDuplicateEmail)

	_, err := svc.Create(context.Background(), &models.User{Name: "Alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, database.ErrDuplicateEmail)
}

func TestUserService_Update_PartialPatch(t *testing.T) {
	store := &mockStore{}
	svc := NewUserService(store, testLogger())

	existing := &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	store.On("GetUser", mock.Anything, int64(1)).Return(existing, nil)
	store.On("UpdateUser", mock.Anything, existing).Return(nil)

	updated, err := svc.Update(context.Background(), 1, UserUpdate{Name: ptr("Alice B.")})
	require.NoError(t, err)
	assert.Equal(t, "Alice B.", updated.Name)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUserService_Update_BlankEmailSkipped(t *testing.T) {
	store := &mockStore{}
	svc := NewUserService(store, testLogger())

	existing := &models.User{ID: 1, Name: "Alice", Email: "alice@example.com"}
	store.On("GetUser", mock.Anything, int64(1)).Return(existing, nil)
	store.On("UpdateUser", mock.Anything, existing).Return(nil)

	updated, err := svc.Update(context.Background(), 1, UserUpdate{Email: ptr(" ")})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", updated.Email)
}

func TestUserService_Delete(t *testing.T) {
	store := &mockStore{}
	svc := NewUserService(store, testLogger())

	store.On("DeleteUser", mock.Anything, int64(1)).Return(nil)
	assert.NoError(t, svc.Delete(context.Background(), 1))
	store.AssertExpectations(t)
}
