package service

import (
	"context"
	"testing"

	"tradenet/internal/dto"
	"tradenet/internal/hierarchy"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productRequest() dto.ProductRequest {
	return dto.ProductRequest{
		Name:        gofakeit.ProductName(),
		Model:       gofakeit.Word(),
		ReleaseDate: gofakeit.Date().Format(dto.DateLayout),
	}
}

func TestProductService_CRUD(t *testing.T) {
	repo := newStubProductRepo()
	c := newMemCache()
	svc := NewProductService(repo, c)
	ctx := context.Background()

	req := productRequest()
	req.ReleaseDate = "2024-03-15"
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", created.ReleaseDate)
	assert.Len(t, created.CreatedAt, len(dto.DateLayout))

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Name, got.Name)

	upd := productRequest()
	updated, err := svc.Update(ctx, created.ID, upd)
	require.NoError(t, err)
	assert.Equal(t, upd.Model, updated.Model)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	assert.Equal(t, 1, c.invalidations)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, created.ID))
	assert.Equal(t, 2, c.invalidations)

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
	_, err = svc.Update(ctx, uuid.New(), productRequest())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductService_RejectsBadReleaseDate(t *testing.T) {
	repo := newStubProductRepo()
	svc := NewProductService(repo, nil)

	req := productRequest()
	req.ReleaseDate = "15/03/2024"
	_, err := svc.Create(context.Background(), req)
	assert.True(t, hierarchy.IsValidation(err))
	assert.Empty(t, repo.products)
}
