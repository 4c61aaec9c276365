package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/domain"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/repo/repotest"
	"github.com/Skotchmaster/storefront/internal/transport"
)

func TestReview_CreateAndList(t *testing.T) {
	gdb := repotest.New(t)
	svc := &ReviewService{Repo: repo.New(gdb)}
	ctx := context.Background()
	p := repotest.Product(t, gdb, "book", "30.00", 3)
	u := shopper()

	rv, err := svc.Create(ctx, u, p.ID, transport.CreateReviewRequest{Rating: 5, Comment: "  great  "})
	require.NoError(t, err)
	assert.Equal(t, "great", rv.Comment)

	_, err = svc.Create(ctx, u, p.ID, transport.CreateReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = svc.Create(ctx, shopper(), p.ID, transport.CreateReviewRequest{Rating: 3})
	require.NoError(t, err)

	page, err := svc.List(ctx, p.ID, 1, 10)
	require.NoError(t, err)
	assert.Len(t, page.Data, 2)
	assert.EqualValues(t, 2, page.Meta.Total)
}

func TestReview_Validation(t *testing.T) {
	gdb := repotest.New(t)
	svc := &ReviewService{Repo: repo.New(gdb)}
	ctx := context.Background()
	p := repotest.Product(t, gdb, "pan", "40.00", 3)

	for _, rating := range []int{0, 6} {
		_, err := svc.Create(ctx, shopper(), p.ID, transport.CreateReviewRequest{Rating: rating})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}

	_, err := svc.Create(ctx, shopper(), p.ID, transport.CreateReviewRequest{Rating: 3, Comment: strings.Repeat("x", 2001)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(ctx, shopper(), uuid.New(), transport.CreateReviewRequest{Rating: 3})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.List(ctx, uuid.New(), 1, 10)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReview_Delete(t *testing.T) {
	gdb := repotest.New(t)
	svc := &ReviewService{Repo: repo.New(gdb)}
	ctx := context.Background()
	p := repotest.Product(t, gdb, "mug", "15.00", 3)
	other := repotest.Product(t, gdb, "plate", "20.00", 3)
	author := shopper()

	rv, err := svc.Create(ctx, author, p.ID, transport.CreateReviewRequest{Rating: 2})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, shopper(), p.ID, rv.ID), domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, author, other.ID, rv.ID), domain.ErrReviewNotFound)
	require.NoError(t, svc.Delete(ctx, author, p.ID, rv.ID))
	assert.ErrorIs(t, svc.Delete(ctx, author, p.ID, rv.ID), domain.ErrReviewNotFound)

	rv, err = svc.Create(ctx, author, p.ID, transport.CreateReviewRequest{Rating: 4})
	require.NoError(t, err)
	admin := domain.Principal{ID: uuid.New(), Role: domain.RoleAdmin}
	require.NoError(t, svc.Delete(ctx, admin, p.ID, rv.ID))

	page, err := svc.List(ctx, p.ID, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
}
