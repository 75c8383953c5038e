package http_test

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/application/inventory"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/transfer"
	"github.com/stretchr/testify/mock"
)

type mockTransferer struct{ mock.Mock }

func (m *mockTransferer) Transfer(ctx context.Context, req transfer.Request) (*inventory.TransferResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.TransferResult), args.Error(1)
}

type mockAlerts struct{ mock.Mock }

func (m *mockAlerts) ListAlerts(ctx context.Context, locationID string) (*inventory.AlertReport, error) {
	args := m.Called(ctx, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.AlertReport), args.Error(1)
}

type mockMovements struct{ mock.Mock }

func (m *mockMovements) List(ctx context.Context, filter entity.MovementFilter) ([]*entity.Movement, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*entity.Movement), args.Error(1)
}

func (m *mockMovements) GetByTransferID(ctx context.Context, transferID string) (*entity.Movement, error) {
	args := m.Called(ctx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Movement), args.Error(1)
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductResponse), args.Error(1)
}

func (m *mockProducts) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductResponse), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductResponse), args.Error(1)
}

func (m *mockProducts) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ProductListResponse), args.Error(1)
}

func (m *mockProducts) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockLocations struct{ mock.Mock }

func (m *mockLocations) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationResponse), args.Error(1)
}

func (m *mockLocations) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationResponse), args.Error(1)
}

func (m *mockLocations) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationResponse), args.Error(1)
}

func (m *mockLocations) List(ctx context.Context, page dto.PageRequest) (*dto.LocationListResponse, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationListResponse), args.Error(1)
}

func (m *mockLocations) Inventory(ctx context.Context, id string) (*dto.LocationInventoryResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LocationInventoryResponse), args.Error(1)
}

func (m *mockLocations) UpdateThreshold(ctx context.Context, locationID, productID string, in dto.UpdateThresholdRequest) (*dto.LedgerEntryResponse, error) {
	args := m.Called(ctx, locationID, productID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LedgerEntryResponse), args.Error(1)
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }
