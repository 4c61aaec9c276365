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

func TestCategory_CRUD(t *testing.T) {
	gdb := repotest.New(t)
	svc := &CategoryService{Repo: repo.New(gdb)}
	ctx := context.Background()

	c, err := svc.Create(ctx, transport.CategoryRequest{Title: "  Kitchen ", Description: "pots and pans"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchen", c.Title)

	_, err = svc.Create(ctx, transport.CategoryRequest{Title: "Garden"})
	require.NoError(t, err)

	page, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "Garden", page.Data[0].Title)

	got, err := svc.Update(ctx, c.ID, transport.CategoryRequest{Title: "Kitchenware"})
	require.NoError(t, err)
	assert.Equal(t, "Kitchenware", got.Title)
	assert.Empty(t, got.Description)

	got, err = svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Kitchenware", got.Title)

	_, err = svc.Update(ctx, uuid.New(), transport.CategoryRequest{Title: "x"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)
}

func TestCategory_Validation(t *testing.T) {
	gdb := repotest.New(t)
	svc := &CategoryService{Repo: repo.New(gdb)}
	ctx := context.Background()

	for _, title := range []string{"", "   ", strings.Repeat("t", 121)} {
		_, err := svc.Create(ctx, transport.CategoryRequest{Title: title})
		assert.ErrorIs(t, err, domain.ErrValidation)
	}
}

func TestCategory_DeleteDetachesProducts(t *testing.T) {
	gdb := repotest.New(t)
	r := repo.New(gdb)
	svc := &CategoryService{Repo: r}
	ctx := context.Background()

	c, err := svc.Create(ctx, transport.CategoryRequest{Title: "Toys"})
	require.NoError(t, err)
	p := repotest.Product(t, gdb, "kite", "25.00", 2)
	_, err = (&CatalogService{Repo: r}).PatchProduct(ctx, p.ID, transport.PatchProductRequest{CategoryID: &c.ID})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, c.ID))

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	assert.ErrorIs(t, svc.Delete(ctx, c.ID), domain.ErrCategoryNotFound)
}
