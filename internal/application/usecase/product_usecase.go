package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/stock-transfer-api/internal/application/dto"
	"github.com/jhoicas/stock-transfer-api/internal/domain"
	"github.com/jhoicas/stock-transfer-api/internal/domain/entity"
	"github.com/jhoicas/stock-transfer-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja en el ledger:
// aquí solo se coloca el stock inicial al crear el producto.
type ProductUseCase struct {
	txRunner            CatalogTxRunner
	repo                repository.ProductRepository
	locationRepo        repository.LocationRepository
	ledgerRepo          repository.LedgerRepository
	defaultMinThreshold int64
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	txRunner CatalogTxRunner,
	repo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	ledgerRepo repository.LedgerRepository,
	defaultMinThreshold int64,
) *ProductUseCase {
	return &ProductUseCase{
		txRunner:            txRunner,
		repo:                repo,
		locationRepo:        locationRepo,
		ledgerRepo:          ledgerRepo,
		defaultMinThreshold: defaultMinThreshold,
	}
}

// Create crea un nuevo producto y, si se indica, su entrada de ledger inicial en la misma transacción.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.SKU = strings.TrimSpace(in.SKU)
	in.Name = strings.TrimSpace(in.Name)
	if in.SKU == "" || in.Name == "" || in.Price.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	category, err := parseCategory(in.Category)
	if err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetBySKU(ctx, in.SKU)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	var initial *entity.LedgerEntry
	if in.InitialStock != nil {
		st := in.InitialStock
		st.LocationID = strings.TrimSpace(st.LocationID)
		threshold := uc.defaultMinThreshold
		if st.MinThreshold != nil {
			threshold = *st.MinThreshold
		}
		if st.LocationID == "" || st.Quantity < 0 || threshold < 0 {
			return nil, domain.ErrInvalidInput
		}
		location, err := uc.locationRepo.GetByID(ctx, st.LocationID)
		if err != nil {
			return nil, err
		}
		if location == nil {
			return nil, fmt.Errorf("ubicación %s: %w", st.LocationID, domain.ErrNotFound)
		}
		initial = &entity.LedgerEntry{LocationID: st.LocationID, Quantity: st.Quantity, MinThreshold: threshold}
	}

	now := time.Now()
	product := &entity.Product{
		ID:          uuid.New().String(),
		SKU:         in.SKU,
		Name:        in.Name,
		Description: in.Description,
		Category:    category,
		Price:       in.Price,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err = uc.txRunner.RunCatalog(ctx, func(products repository.ProductRepository, ledger repository.LedgerRepository) error {
		if err := products.Create(ctx, product); err != nil {
			return err
		}
		if initial == nil {
			return nil
		}
		initial.ProductID = product.ID
		return ledger.Create(ctx, initial)
	})
	if err != nil {
		return nil, err
	}

	resp := toProductResponse(product, 0)
	if initial != nil {
		resp.TotalStock = initial.Quantity
		resp.Stock = []dto.StockByLocation{toStockByLocation(initial)}
	}
	return resp, nil
}

// GetByID obtiene un producto con su stock total y el desglose por ubicación.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	entries, err := uc.ledgerRepo.ListByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toProductResponse(product, 0)
	resp.Stock = make([]dto.StockByLocation, 0, len(entries))
	for _, e := range entries {
		resp.TotalStock += e.Quantity
		resp.Stock = append(resp.Stock, toStockByLocation(e))
	}
	return resp, nil
}

// Update actualiza los datos de catálogo. El stock no se modifica aquí.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	if in.SKU != nil {
		sku := strings.TrimSpace(*in.SKU)
		if sku == "" {
			return nil, domain.ErrInvalidInput
		}
		product.SKU = sku
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		product.Name = name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.Category != nil {
		category, err := parseCategory(*in.Category)
		if err != nil {
			return nil, err
		}
		product.Category = category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.Price = *in.Price
	}
	product.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	total, err := uc.ledgerRepo.SumByProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(product, total), nil
}

// List lista productos con filtros de categoría, rango de precio y disponibilidad.
func (uc *ProductUseCase) List(ctx context.Context, in dto.ProductFilterRequest) (*dto.ProductListResponse, error) {
	in.DefaultPage()
	filter := entity.ProductFilter{Limit: in.Limit, Offset: in.Offset}
	if strings.TrimSpace(in.Category) != "" {
		category, err := parseCategory(in.Category)
		if err != nil {
			return nil, err
		}
		filter.Category = &category
	}
	var err error
	if filter.MinPrice, err = parseDecimal(in.MinPrice); err != nil {
		return nil, err
	}
	if filter.MaxPrice, err = parseDecimal(in.MaxPrice); err != nil {
		return nil, err
	}
	if filter.MinPrice != nil && filter.MaxPrice != nil && filter.MinPrice.GreaterThan(*filter.MaxPrice) {
		return nil, domain.ErrInvalidInput
	}
	if s := strings.TrimSpace(in.InStock); s != "" {
		inStock, err := strconv.ParseBool(s)
		if err != nil {
			return nil, domain.ErrInvalidInput
		}
		filter.InStock = &inStock
	}

	list, total, err := uc.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toProductResponse(&p.Product, p.TotalStock))
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
	}, nil
}

// Delete elimina un producto sin stock ni movimientos registrados.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

func parseCategory(s string) (entity.Category, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return entity.DefaultCategory, nil
	}
	c := entity.Category(s)
	if !c.Valid() {
		return "", domain.ErrInvalidInput
	}
	return c, nil
}

func parseDecimal(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	return &d, nil
}

func toProductResponse(p *entity.Product, totalStock int64) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:            p.ID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		Category:      string(p.Category),
		CategoryLabel: p.Category.Label(),
		Price:         p.Price,
		TotalStock:    totalStock,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func toStockByLocation(e *entity.LedgerEntry) dto.StockByLocation {
	return dto.StockByLocation{LocationID: e.LocationID, Quantity: e.Quantity, MinThreshold: e.MinThreshold}
}
