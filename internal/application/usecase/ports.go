package usecase

import (
	"context"

	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
)

// CatalogTxRunner abre una transacción con los repos de catálogo y ledger
// (alta de producto con su stock inicial en un solo paso).
type CatalogTxRunner interface {
	RunCatalog(ctx context.Context, fn func(
		products repository.ProductRepository,
		ledger repository.LedgerRepository,
	) error) error
}
