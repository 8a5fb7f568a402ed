package handler

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"tradenet/internal/dto"
	"tradenet/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProductService struct {
	service.ProductService
	created []dto.ProductRequest
}

func (f *fakeProductService) Create(_ context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	f.created = append(f.created, req)
	return &dto.ProductResponse{ID: uuid.New(), Name: req.Name, Model: req.Model, ReleaseDate: req.ReleaseDate, CreatedAt: "2026-01-01"}, nil
}

func (f *fakeProductService) Delete(_ context.Context, id uuid.UUID) error {
	return fmt.Errorf("product %w", service.ErrNotFound)
}

func TestProducts_Create(t *testing.T) {
	svc := &fakeProductService{}
	h := NewProductsHandler(svc)
	r := gin.New()
	r.POST("/v1/products", h.Create)
	r.DELETE("/v1/products/:id", h.Delete)

	w := doJSON(t, r, http.MethodPost, "/v1/products", `{"name":"Drill","model":"X-200","release_date":"2025-06-01"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "2025-06-01", decode(t, w)["release_date"])

	w = doJSON(t, r, http.MethodPost, "/v1/products", `{"name":"Drill","model":"X-200","release_date":"01.06.2025"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Len(t, svc.created, 1)

	w = doJSON(t, r, http.MethodDelete, "/v1/products/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

type fakeAuthService struct {
	service.AuthService
}

func (fakeAuthService) Register(_ context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	return nil, fmt.Errorf("user %s %w", req.Email, service.ErrConflict)
}

func (fakeAuthService) Login(context.Context, dto.LoginRequest) (*dto.LoginResponse, error) {
	return nil, service.ErrInvalidCredentials
}

func TestAuth_ErrorMapping(t *testing.T) {
	h := NewAuthHandler(fakeAuthService{})
	r := gin.New()
	r.POST("/v1/auth/register", h.Register)
	r.POST("/v1/auth/login", h.Login)

	w := doJSON(t, r, http.MethodPost, "/v1/auth/register", `{"email":"a@example.com","password":"password1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/auth/register", `{"email":"a@example.com","password":"short"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = doJSON(t, r, http.MethodPost, "/v1/auth/login", `{"email":"a@example.com","password":"whatever"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
