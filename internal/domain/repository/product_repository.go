package repository

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	List(ctx context.Context, filter entity.ProductFilter) ([]*entity.ProductWithStock, int, error)
	// Delete falla con domain.ErrConflict si alguna entrada del ledger referencia el producto.
	Delete(ctx context.Context, id string) error
}
