package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

const maxReviewComment = 2000

type ReviewService struct {
	Repo *repo.GormRepo
}

func (s *ReviewService) Create(ctx context.Context, p domain.Principal, productID uuid.UUID, req transport.CreateReviewRequest) (*models.ProductReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, validation("rating must be 1..5")
	}
	comment := strings.TrimSpace(req.Comment)
	if len(comment) > maxReviewComment {
		return nil, validation("comment longer than %d characters", maxReviewComment)
	}

	rv := &models.ProductReview{
		ProductID: productID,
		UserID:    p.ID,
		Rating:    req.Rating,
		Comment:   comment,
	}
	if err := s.Repo.CreateReview(ctx, rv); err != nil {
		return nil, notFoundAs(err, domain.ErrProductNotFound)
	}
	return rv, nil
}

func (s *ReviewService) List(ctx context.Context, productID uuid.UUID, page, size int) (transport.Page[models.ProductReview], error) {
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return transport.Page[models.ProductReview]{}, notFoundAs(err, domain.ErrProductNotFound)
	}
	page, offset, limit := util.Calculate(page, size)
	total, items, err := s.Repo.ListReviews(ctx, productID, offset, limit)
	if err != nil {
		return transport.Page[models.ProductReview]{}, err
	}
	return transport.NewPage(items, page, offset, limit, total), nil
}

// Delete removes a review. Only its author or an admin may do so.
func (s *ReviewService) Delete(ctx context.Context, p domain.Principal, productID, reviewID uuid.UUID) error {
	rv, err := s.Repo.GetReview(ctx, productID, reviewID)
	if err != nil {
		return notFoundAs(err, domain.ErrReviewNotFound)
	}
	if !p.IsAdmin() && rv.UserID != p.ID {
		return fmt.Errorf("%w: review belongs to another user", domain.ErrForbidden)
	}
	return s.Repo.DeleteReview(ctx, rv.ID)
}
