package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

const maxCategoryTitle = 120

type CategoryService struct {
	Repo *repo.GormRepo
}

func checkCategory(req *transport.CategoryRequest) error {
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if req.Title == "" || len(req.Title) > maxCategoryTitle {
		return validation("title must be 1..%d characters", maxCategoryTitle)
	}
	return nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrCategoryNotFound)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context, page, size int) (transport.Page[models.Category], error) {
	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListCategories(ctx, offset, limit)
	if err != nil {
		return transport.Page[models.Category]{}, err
	}
	return transport.NewPage(items, page, offset, limit, total), nil
}

func (s *CategoryService) Create(ctx context.Context, req transport.CategoryRequest) (*models.Category, error) {
	if err := checkCategory(&req); err != nil {
		return nil, err
	}
	c := &models.Category{Title: req.Title, Description: req.Description}
	if err := s.Repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces title and description.
func (s *CategoryService) Update(ctx context.Context, id uuid.UUID, req transport.CategoryRequest) (*models.Category, error) {
	if err := checkCategory(&req); err != nil {
		return nil, err
	}
	c, err := s.Repo.UpdateCategory(ctx, id, req.Title, req.Description)
	if err != nil {
		return nil, notFoundAs(err, domain.ErrCategoryNotFound)
	}
	return c, nil
}

func (s *CategoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return notFoundAs(s.Repo.DeleteCategory(ctx, id), domain.ErrCategoryNotFound)
}
