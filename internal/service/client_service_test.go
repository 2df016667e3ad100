package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/client-portfolio/internal/types"
)

func newClientServiceForTest() (*ClientService, *mockClientRepo, *mockPortfolioCache) {
	clientRepo := newMockClientRepo()
	cache := newMockPortfolioCache()
	return NewClientService(clientRepo, cache), clientRepo, cache
}

func TestCreateClient(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	email := "alice@example.com"
	client, err := svc.CreateClient(context.Background(), &CreateClientInput{
		Name:  "Alice",
		Email: &email,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, client.ID)
	assert.Equal(t, "Alice", client.Name)
	assert.Equal(t, "alice@example.com", *client.Email)
	assert.Equal(t, "#6366f1", client.Color, "default color applied when none given")
	assert.False(t, client.CreatedAt.IsZero())
}

func TestCreateClient_MissingName(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	_, err := svc.CreateClient(context.Background(), &CreateClientInput{})

	var svcErr *types.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "INVALID_INPUT", svcErr.Code)
}

func TestGetClient_NotFound(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	_, err := svc.GetClient(context.Background(), "missing")

	var svcErr *types.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "CLIENT_NOT_FOUND", svcErr.Code)
}

func TestUpdateClient(t *testing.T) {
	svc, _, cache := newClientServiceForTest()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: "Alice"})
	require.NoError(t, err)

	newName := "Alice B"
	notes := "moved to new advisor"
	updated, err := svc.UpdateClient(context.Background(), &UpdateClientInput{
		ClientID: client.ID,
		Name:     &newName,
		Notes:    &notes,
	})

	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "moved to new advisor", *updated.Notes)
	assert.Contains(t, cache.invalidations, client.ID, "portfolio cache invalidated on update")
}

func TestUpdateClient_EmptyNameRejected(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: "Alice"})
	require.NoError(t, err)

	empty := ""
	_, err = svc.UpdateClient(context.Background(), &UpdateClientInput{
		ClientID: client.ID,
		Name:     &empty,
	})

	var svcErr *types.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "INVALID_INPUT", svcErr.Code)
}

func TestDeleteClient(t *testing.T) {
	svc, clientRepo, cache := newClientServiceForTest()

	client, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: "Alice"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteClient(context.Background(), client.ID))

	exists, err := clientRepo.Exists(context.Background(), client.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Contains(t, cache.invalidations, client.ID)
}

func TestDeleteClient_NotFound(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	err := svc.DeleteClient(context.Background(), "missing")

	var svcErr *types.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "CLIENT_NOT_FOUND", svcErr.Code)
}

func TestListClients_PreservesCreationOrder(t *testing.T) {
	svc, _, _ := newClientServiceForTest()

	names := []string{"Alice", "Bob", "Carol"}
	for _, name := range names {
		_, err := svc.CreateClient(context.Background(), &CreateClientInput{Name: name})
		require.NoError(t, err)
	}

	clients, err := svc.ListClients(context.Background())
	require.NoError(t, err)
	require.Len(t, clients, 3)
	for i, name := range names {
		assert.Equal(t, name, clients[i].Name)
	}
}
