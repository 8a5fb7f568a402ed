package service

import (
	"context"
	"fmt"
	"time"

	"tradenet/internal/cache"
	"tradenet/internal/dto"
	"tradenet/internal/hierarchy"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

const productEntity = "product"

type ProductService interface {
	Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error)
	List(ctx context.Context) ([]dto.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	repo  repository.ProductRepository
	cache cache.NodeCache
}

// NewProductService builds the product catalog service. Node responses embed
// products, so product writes invalidate the node cache as well.
func NewProductService(repo repository.ProductRepository, c cache.NodeCache) ProductService {
	if c == nil {
		c = cache.Noop()
	}
	return &productService{repo: repo, cache: c}
}

func toProductResponse(p model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Model:       p.Model,
		ReleaseDate: p.ReleaseDate.Format(dto.DateLayout),
		CreatedAt:   p.CreatedAt.Format(dto.DateLayout),
	}
}

func parseReleaseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, hierarchy.Reject("release_date must be formatted as YYYY-MM-DD")
	}
	return d, nil
}

func (s *productService) Create(ctx context.Context, req dto.ProductRequest) (*dto.ProductResponse, error) {
	release, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		Name:        req.Name,
		Model:       req.Model,
		ReleaseDate: release,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	resp := toProductResponse(*p)
	return &resp, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(productEntity, err)
	}
	resp := toProductResponse(*p)
	return &resp, nil
}

func (s *productService) List(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	return lo.Map(products, func(p model.Product, _ int) dto.ProductResponse {
		return toProductResponse(p)
	}), nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, req dto.ProductRequest) (*dto.ProductResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(productEntity, err)
	}
	release, err := parseReleaseDate(req.ReleaseDate)
	if err != nil {
		return nil, err
	}
	p.Name = req.Name
	p.Model = req.Model
	p.ReleaseDate = release
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	s.cache.Invalidate(ctx)
	resp := toProductResponse(*p)
	return &resp, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return lookupErr(productEntity, err)
	}
	s.cache.Invalidate(ctx)
	return nil
}
