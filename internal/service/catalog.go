package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

const maxSearchTerm = 100

type CatalogService struct {
	Repo *repo.GormRepo
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrProductNotFound)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f transport.ProductFilter, page, size int) (transport.Page[models.Product], error) {
	if len(f.Q) > maxSearchTerm {
		return transport.Page[models.Product]{}, validation("q longer than %d characters", maxSearchTerm)
	}
	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListProducts(ctx, f, offset, limit)
	if err != nil {
		return transport.Page[models.Product]{}, err
	}
	return transport.NewPage(items, page, offset, limit, total), nil
}

func checkDimension(name string, v decimal.Decimal) error {
	if !v.IsPositive() {
		return validation("%s must be > 0", name)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	req.SKU = strings.TrimSpace(req.SKU)
	req.Name = strings.TrimSpace(req.Name)
	switch {
	case req.SKU == "" || len(req.SKU) > 64:
		return nil, validation("sku must be 1..64 characters")
	case req.Name == "":
		return nil, validation("name required")
	case req.Price.IsNegative():
		return nil, validation("price must be >= 0")
	case req.Stock < 0:
		return nil, validation("stock must be >= 0")
	}
	for name, v := range map[string]decimal.Decimal{"weight": req.Weight, "height": req.Height, "width": req.Width, "length": req.Length} {
		if err := checkDimension(name, v); err != nil {
			return nil, err
		}
	}

	prod := &models.Product{
		SKU:         req.SKU,
		Name:        req.Name,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Price:       req.Price,
		Stock:       req.Stock,
		Weight:      req.Weight,
		Height:      req.Height,
		Width:       req.Width,
		Length:      req.Length,
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, err
	}
	return prod, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	if req.SKU != nil {
		v := strings.TrimSpace(*req.SKU)
		if v == "" || len(v) > 64 {
			return nil, validation("sku must be 1..64 characters")
		}
		req.SKU = &v
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, validation("name cannot be empty")
	}
	if req.Price != nil && req.Price.IsNegative() {
		return nil, validation("price must be >= 0")
	}
	if req.ClearCategory && req.CategoryID != nil {
		return nil, validation("category_id and clear_category are exclusive")
	}
	if req.Stock != nil && *req.Stock < 0 {
		return nil, validation("stock must be >= 0")
	}
	for name, v := range map[string]*decimal.Decimal{"weight": req.Weight, "height": req.Height, "width": req.Width, "length": req.Length} {
		if v == nil {
			continue
		}
		if err := checkDimension(name, *v); err != nil {
			return nil, err
		}
	}

	p, err := s.Repo.PatchProduct(ctx, id, req)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrProductNotFound)
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return notFoundAs(s.Repo.DeleteProduct(ctx, id), domain.ErrProductNotFound)
}
