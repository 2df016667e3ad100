package service

import (
	"context"
	"fmt"

	"github.com/client-portfolio/internal/models"
	"github.com/client-portfolio/internal/types"
)

// ClientService handles client identity management. Deleting a client
// cascades to all owned wallets, exchanges, assets and positions.
type ClientService struct {
	clientRepo ClientRepository
	cache      PortfolioCache
}

// NewClientService creates a new client service
func NewClientService(clientRepo ClientRepository, cache PortfolioCache) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		cache:      cache,
	}
}

// CreateClientInput represents input for creating a client
type CreateClientInput struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Notes *string `json:"notes,omitempty"`
	Color string  `json:"color,omitempty"`
}

// UpdateClientInput represents input for updating a client
type UpdateClientInput struct {
	ClientID string  `json:"clientId"`
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Notes    *string `json:"notes,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// CreateClient creates a new client
func (s *ClientService) CreateClient(ctx context.Context, input *CreateClientInput) (*models.Client, error) {
	if input.Name == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "client name is required",
		}
	}

	color := input.Color
	if color == "" {
		color = "#6366f1"
	}

	client := &models.Client{
		Name:  input.Name,
		Email: input.Email,
		Notes: input.Notes,
		Color: color,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}

// GetClient retrieves a client by ID
func (s *ClientService) GetClient(ctx context.Context, clientID string) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "CLIENT_NOT_FOUND",
			Message: fmt.Sprintf("client not found: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}
	return client, nil
}

// ListClients retrieves all clients in creation order
func (s *ClientService) ListClients(ctx context.Context) ([]*models.Client, error) {
	clients, err := s.clientRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	return clients, nil
}

// UpdateClient updates a client's identity fields
func (s *ClientService) UpdateClient(ctx context.Context, input *UpdateClientInput) (*models.Client, error) {
	if input.ClientID == "" {
		return nil, &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "clientId is required",
		}
	}

	client, err := s.clientRepo.GetByID(ctx, input.ClientID)
	if err != nil {
		return nil, &types.ServiceError{
			Code:    "CLIENT_NOT_FOUND",
			Message: fmt.Sprintf("client not found: %s", input.ClientID),
			Details: map[string]interface{}{
				"clientId": input.ClientID,
			},
		}
	}

	if input.Name != nil {
		if *input.Name == "" {
			return nil, &types.ServiceError{
				Code:    "INVALID_INPUT",
				Message: "client name cannot be empty",
			}
		}
		client.Name = *input.Name
	}

	if input.Email != nil {
		client.Email = input.Email
	}

	if input.Notes != nil {
		client.Notes = input.Notes
	}

	if input.Color != nil {
		client.Color = *input.Color
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, fmt.Errorf("failed to update client: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, client.ID); err != nil {
		return nil, fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return client, nil
}

// DeleteClient deletes a client and all owned records
func (s *ClientService) DeleteClient(ctx context.Context, clientID string) error {
	if clientID == "" {
		return &types.ServiceError{
			Code:    "INVALID_INPUT",
			Message: "clientId is required",
		}
	}

	exists, err := s.clientRepo.Exists(ctx, clientID)
	if err != nil {
		return fmt.Errorf("failed to check client existence: %w", err)
	}
	if !exists {
		return &types.ServiceError{
			Code:    "CLIENT_NOT_FOUND",
			Message: fmt.Sprintf("client not found: %s", clientID),
			Details: map[string]interface{}{
				"clientId": clientID,
			},
		}
	}

	// Repository delete cascades to wallets, exchanges, assets and positions
	if err := s.clientRepo.Delete(ctx, clientID); err != nil {
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if err := s.cache.InvalidateClient(ctx, clientID); err != nil {
		return fmt.Errorf("failed to invalidate portfolio cache: %w", err)
	}

	return nil
}
