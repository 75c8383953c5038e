package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones y consulta de su inventario.
type LocationUseCase struct {
	repo       repository.LocationRepository
	ledgerRepo repository.LedgerRepository
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, ledgerRepo repository.LedgerRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, ledgerRepo: ledgerRepo}
}

// Create crea una nueva ubicación. Nombre y dirección son obligatorios.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	name := strings.TrimSpace(in.Name)
	address := strings.TrimSpace(in.Address)
	if name == "" || address == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	location := &entity.Location{
		ID:        uuid.New().String(),
		Name:      name,
		Address:   address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// Update actualiza una ubicación.
func (uc *LocationUseCase) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	location, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		location.Name = name
	}
	if in.Address != nil {
		address := strings.TrimSpace(*in.Address)
		if address == "" {
			return nil, domain.ErrInvalidInput
		}
		location.Address = address
	}
	location.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, location); err != nil {
		return nil, err
	}
	return toLocationResponse(location), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.LocationListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Inventory lista las entradas del ledger de una ubicación.
func (uc *LocationUseCase) Inventory(ctx context.Context, id string) (*dto.LocationInventoryResponse, error) {
	location, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := uc.ledgerRepo.ListByLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LedgerEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, toLedgerEntryResponse(e))
	}
	return &dto.LocationInventoryResponse{Location: *toLocationResponse(location), Items: items}, nil
}

// UpdateThreshold cambia el umbral mínimo de una entrada existente. La cantidad no se toca.
func (uc *LocationUseCase) UpdateThreshold(ctx context.Context, locationID, productID string, in dto.UpdateThresholdRequest) (*dto.LedgerEntryResponse, error) {
	if in.MinThreshold == nil || *in.MinThreshold < 0 {
		return nil, domain.ErrInvalidInput
	}
	entry, err := uc.ledgerRepo.UpdateThreshold(ctx, productID, locationID, *in.MinThreshold)
	if err != nil {
		return nil, err
	}
	resp := toLedgerEntryResponse(entry)
	return &resp, nil
}

func (uc *LocationUseCase) get(ctx context.Context, id string) (*entity.Location, error) {
	location, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if location == nil {
		return nil, domain.ErrNotFound
	}
	return location, nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
	}
}

// toLedgerEntryResponse convierte una entrada del ledger a su DTO.
func toLedgerEntryResponse(e *entity.LedgerEntry) dto.LedgerEntryResponse {
	return dto.LedgerEntryResponse{
		ProductID:      e.ProductID,
		LocationID:     e.LocationID,
		Quantity:       e.Quantity,
		MinThreshold:   e.MinThreshold,
		BelowThreshold: e.BelowThreshold(),
		UpdatedAt:      e.UpdatedAt,
	}
}
