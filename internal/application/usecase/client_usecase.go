package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/facturio/billing-api/internal/application/dto"
	"github.com/facturio/billing-api/internal/domain"
	"github.com/facturio/billing-api/internal/domain/entity"
	"github.com/facturio/billing-api/internal/domain/repository"
)

// ClientUseCase CRUD de clientes de la agencia.
type ClientUseCase struct {
	clientRepo repository.ClientRepository
}

// NewClientUseCase construye el caso de uso.
func NewClientUseCase(clientRepo repository.ClientRepository) *ClientUseCase {
	return &ClientUseCase{clientRepo: clientRepo}
}

// Create registra un cliente nuevo de la agencia.
func (uc *ClientUseCase) Create(ctx context.Context, agencyID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	now := time.Now()
	client := &entity.Client{
		ID:        uuid.New().String(),
		AgencyID:  agencyID,
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		Company:   in.Company,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.clientRepo.Create(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Get devuelve el cliente si pertenece a la agencia.
func (uc *ClientUseCase) Get(ctx context.Context, agencyID, clientID string) (*dto.ClientResponse, error) {
	client, err := uc.ownedClient(agencyID, clientID)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// List devuelve los clientes de la agencia paginados.
func (uc *ClientUseCase) List(ctx context.Context, agencyID string, limit, offset int) ([]dto.ClientResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	list, err := uc.clientRepo.ListByAgency(agencyID, limit, offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ClientResponse, 0, len(list))
	for _, c := range list {
		out = append(out, *toClientResponse(c))
	}
	return out, nil
}

// Update modifica los datos del cliente.
func (uc *ClientUseCase) Update(ctx context.Context, agencyID, clientID string, in dto.CreateClientRequest) (*dto.ClientResponse, error) {
	client, err := uc.ownedClient(agencyID, clientID)
	if err != nil {
		return nil, err
	}
	if in.Name == "" {
		return nil, fmt.Errorf("%w: el nombre es obligatorio", domain.ErrInvalidInput)
	}
	client.Name = in.Name
	client.Email = in.Email
	client.Phone = in.Phone
	client.Company = in.Company
	client.Notes = in.Notes
	client.UpdatedAt = time.Now()
	if err := uc.clientRepo.Update(client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// Delete elimina el cliente. Las facturas y propuestas existentes conservan su
// client_id; las lecturas toleran la referencia rota.
func (uc *ClientUseCase) Delete(ctx context.Context, agencyID, clientID string) error {
	client, err := uc.ownedClient(agencyID, clientID)
	if err != nil {
		return err
	}
	return uc.clientRepo.Delete(client.ID)
}

func (uc *ClientUseCase) ownedClient(agencyID, clientID string) (*entity.Client, error) {
	client, err := uc.clientRepo.GetByID(clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || client.AgencyID != agencyID {
		return nil, domain.ErrNotFound
	}
	return client, nil
}

func toClientResponse(c *entity.Client) *dto.ClientResponse {
	return &dto.ClientResponse{
		ID:       c.ID,
		AgencyID: c.AgencyID,
		Name:     c.Name,
		Email:    c.Email,
		Phone:    c.Phone,
		Company:  c.Company,
		Notes:    c.Notes,
	}
}
