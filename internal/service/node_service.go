package service

import (
	"context"
	"errors"
	"fmt"

	"tradenet/internal/cache"
	"tradenet/internal/dto"
	"tradenet/internal/hierarchy"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const nodeEntity = "network node"

// NodeService runs every write to the trading network through the hierarchy
// rules before it reaches the store.
type NodeService interface {
	Create(ctx context.Context, req dto.NodeRequest) (*dto.NodeResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.NodeResponse, error)
	List(ctx context.Context, filter dto.NodeFilter) ([]dto.NodeResponse, error)
	Replace(ctx context.Context, id uuid.UUID, req dto.NodeRequest) (*dto.NodeResponse, error)
	Patch(ctx context.Context, id uuid.UUID, req dto.PatchNodeRequest) (*dto.NodeResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	ClearDebt(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type nodeService struct {
	repo        repository.NodeRepository
	productRepo repository.ProductRepository
	cache       cache.NodeCache
}

func NewNodeService(repo repository.NodeRepository, productRepo repository.ProductRepository, c cache.NodeCache) NodeService {
	if c == nil {
		c = cache.Noop()
	}
	return &nodeService{repo: repo, productRepo: productRepo, cache: c}
}

// nodeChange is the normalized form of PUT and PATCH payloads.
// nil pointers leave the stored value alone.
type nodeChange struct {
	name        *string
	email       *string
	city        *string
	street      *string
	houseNumber *string
	nodeType    *model.NodeType
	supplierSet bool
	supplierID  *uuid.UUID
	productIDs  *[]uuid.UUID
	debt        *decimal.Decimal
}

// ── Create ───────────────────────────────────────────────────────────────────

func (s *nodeService) Create(ctx context.Context, req dto.NodeRequest) (*dto.NodeResponse, error) {
	supplier, err := s.resolveSupplier(ctx, req.Supplier)
	if err != nil {
		return nil, err
	}
	nodeType := model.NodeType(req.NodeType)
	level, err := hierarchy.Validate(nodeType, supplier)
	if err != nil {
		return nil, err
	}
	products, err := s.resolveProducts(ctx, req.ProductIDs)
	if err != nil {
		return nil, err
	}
	debt := decimal.Zero
	if req.Debt != nil {
		if debt, err = checkDebt(*req.Debt); err != nil {
			return nil, err
		}
	}

	n := &model.NetworkNode{
		Name:        req.Name,
		Email:       req.Email,
		City:        req.City,
		Street:      req.Street,
		HouseNumber: req.HouseNumber,
		NodeType:    nodeType,
		Level:       level,
		SupplierID:  req.Supplier,
		Debt:        debt,
		Products:    products,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("create network node: %w", err)
	}
	s.cache.Invalidate(ctx)
	n.Supplier = supplier

	log.Info().
		Str("node_id", n.ID.String()).
		Str("node_type", string(n.NodeType)).
		Int("level", n.Level).
		Msg("network node created")

	resp := toNodeResponse(*n)
	return &resp, nil
}

// ── Read ─────────────────────────────────────────────────────────────────────

func (s *nodeService) Get(ctx context.Context, id uuid.UUID) (*dto.NodeResponse, error) {
	cached, version, ok := s.cache.Get(ctx, id)
	if ok {
		return cached, nil
	}
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(nodeEntity, err)
	}
	resp := toNodeResponse(*n)
	s.cache.Set(ctx, version, &resp)
	return &resp, nil
}

func (s *nodeService) List(ctx context.Context, filter dto.NodeFilter) ([]dto.NodeResponse, error) {
	f := repository.NodeFilter{
		City:     filter.City,
		NodeType: model.NodeType(filter.NodeType),
		Level:    filter.Level,
	}
	if filter.Supplier != "" {
		id, err := uuid.Parse(filter.Supplier)
		if err != nil {
			return nil, hierarchy.Reject("invalid supplier filter")
		}
		f.SupplierID = &id
	}
	nodes, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return lo.Map(nodes, func(n model.NetworkNode, _ int) dto.NodeResponse {
		return toNodeResponse(n)
	}), nil
}

// ── Update ───────────────────────────────────────────────────────────────────

// Replace applies a full payload; an omitted supplier means "no supplier".
func (s *nodeService) Replace(ctx context.Context, id uuid.UUID, req dto.NodeRequest) (*dto.NodeResponse, error) {
	nodeType := model.NodeType(req.NodeType)
	change := nodeChange{
		name:        &req.Name,
		email:       &req.Email,
		city:        &req.City,
		street:      &req.Street,
		houseNumber: &req.HouseNumber,
		nodeType:    &nodeType,
		supplierSet: true,
		supplierID:  req.Supplier,
		debt:        req.Debt,
	}
	if req.ProductIDs != nil {
		change.productIDs = &req.ProductIDs
	}
	return s.update(ctx, id, change)
}

func (s *nodeService) Patch(ctx context.Context, id uuid.UUID, req dto.PatchNodeRequest) (*dto.NodeResponse, error) {
	change := nodeChange{
		name:        req.Name,
		email:       req.Email,
		city:        req.City,
		street:      req.Street,
		houseNumber: req.HouseNumber,
		supplierSet: req.Supplier.Set,
		supplierID:  req.Supplier.Value,
		productIDs:  req.ProductIDs,
		debt:        req.Debt,
	}
	if req.NodeType != nil {
		t := model.NodeType(*req.NodeType)
		change.nodeType = &t
	}
	return s.update(ctx, id, change)
}

// update re-runs the hierarchy rules only when node_type or supplier
// actually change, and then against the proposed values. Everything is
// checked before the single repository write, so a rejection leaves the
// store untouched.
func (s *nodeService) update(ctx context.Context, id uuid.UUID, change nodeChange) (*dto.NodeResponse, error) {
	n, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, lookupErr(nodeEntity, err)
	}

	proposedType := n.NodeType
	if change.nodeType != nil {
		proposedType = *change.nodeType
	}
	proposedSupplier := n.SupplierID
	if change.supplierSet {
		proposedSupplier = change.supplierID
	}

	upd := repository.NodeUpdate{Node: n}

	if proposedType != n.NodeType || !sameRef(proposedSupplier, n.SupplierID) {
		supplier, err := s.resolveSupplier(ctx, proposedSupplier)
		if err != nil {
			return nil, err
		}
		tiers, err := s.dependents(ctx, n.ID)
		if err != nil {
			return nil, err
		}
		level, err := hierarchy.ValidateMove(n.ID, proposedType, supplier, len(tiers))
		if err != nil {
			return nil, err
		}
		if level != n.Level {
			upd.Relevel = relevel(tiers, level)
		}
		n.NodeType = proposedType
		n.SupplierID = proposedSupplier
		n.Supplier = supplier
		n.Level = level
	}

	if change.productIDs != nil {
		products, err := s.resolveProducts(ctx, *change.productIDs)
		if err != nil {
			return nil, err
		}
		n.Products = products
		upd.ReplaceProducts = true
	}

	if change.debt != nil {
		debt, err := checkDebt(*change.debt)
		if err != nil {
			return nil, err
		}
		n.Debt = debt
	}

	n.Name = lo.FromPtrOr(change.name, n.Name)
	n.Email = lo.FromPtrOr(change.email, n.Email)
	n.City = lo.FromPtrOr(change.city, n.City)
	n.Street = lo.FromPtrOr(change.street, n.Street)
	n.HouseNumber = lo.FromPtrOr(change.houseNumber, n.HouseNumber)

	if err := s.repo.Update(ctx, upd); err != nil {
		return nil, fmt.Errorf("update network node: %w", err)
	}
	s.cache.Invalidate(ctx)

	if len(upd.Relevel) > 0 {
		log.Info().
			Str("node_id", n.ID.String()).
			Int("level", n.Level).
			Int("dependents_relevelled", len(upd.Relevel)).
			Msg("network node moved")
	}

	resp := toNodeResponse(*n)
	return &resp, nil
}

// ── Delete ───────────────────────────────────────────────────────────────────

// Delete removes the node and, transitively, every node it supplies.
func (s *nodeService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return lookupErr(nodeEntity, err)
	}
	tiers, err := s.dependents(ctx, id)
	if err != nil {
		return err
	}
	ids := []uuid.UUID{id}
	for _, tier := range tiers {
		ids = append(ids, lo.Map(tier, func(n model.NetworkNode, _ int) uuid.UUID { return n.ID })...)
	}
	if err := s.repo.Delete(ctx, ids); err != nil {
		return fmt.Errorf("delete network node: %w", err)
	}
	s.cache.Invalidate(ctx)

	log.Info().
		Str("node_id", id.String()).
		Int("cascaded", len(ids)-1).
		Msg("network node deleted")
	return nil
}

// ── Debt ─────────────────────────────────────────────────────────────────────

// ClearDebt zeroes the debt of every listed node. Unknown ids are skipped.
func (s *nodeService) ClearDebt(ctx context.Context, ids []uuid.UUID) (int64, error) {
	n, err := s.repo.ClearDebt(ctx, lo.Uniq(ids))
	if err != nil {
		return 0, fmt.Errorf("clear debt: %w", err)
	}
	s.cache.Invalidate(ctx)
	log.Info().Int64("nodes", n).Msg("debt cleared")
	return n, nil
}

// ── Helpers ──────────────────────────────────────────────────────────────────

func (s *nodeService) resolveSupplier(ctx context.Context, id *uuid.UUID) (*model.NetworkNode, error) {
	if id == nil {
		return nil, nil
	}
	supplier, err := s.repo.FindByID(ctx, *id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, hierarchy.ErrUnresolvedSupplier
		}
		return nil, fmt.Errorf("load supplier: %w", err)
	}
	return supplier, nil
}

func (s *nodeService) resolveProducts(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	ids = lo.Uniq(ids)
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	if len(products) != len(ids) {
		found := lo.Map(products, func(p model.Product, _ int) uuid.UUID { return p.ID })
		missing := lo.Without(ids, found...)
		if len(missing) > 0 {
			return nil, hierarchy.Reject(fmt.Sprintf("product %s not found", missing[0]))
		}
	}
	return products, nil
}

// dependents returns the nodes below id grouped by distance: tiers[0] are
// supplied directly by id, tiers[1] by those, and so on.
func (s *nodeService) dependents(ctx context.Context, id uuid.UUID) ([][]model.NetworkNode, error) {
	var tiers [][]model.NetworkNode
	frontier := []uuid.UUID{id}
	for depth := 0; len(frontier) > 0 && depth <= hierarchy.MaxLevel; depth++ {
		nodes, err := s.repo.List(ctx, repository.NodeFilter{SupplierIDs: frontier})
		if err != nil {
			return nil, fmt.Errorf("load dependents: %w", err)
		}
		if len(nodes) == 0 {
			break
		}
		tiers = append(tiers, nodes)
		frontier = lo.Map(nodes, func(n model.NetworkNode, _ int) uuid.UUID { return n.ID })
	}
	return tiers, nil
}

func relevel(tiers [][]model.NetworkNode, level int) map[uuid.UUID]int {
	levels := make(map[uuid.UUID]int)
	for i, tier := range tiers {
		for _, n := range tier {
			levels[n.ID] = level + i + 1
		}
	}
	return levels
}

// maxDebt is the largest amount a decimal(10,2) column holds.
var maxDebt = decimal.RequireFromString("99999999.99")

func checkDebt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Zero, hierarchy.Reject("debt must not be negative")
	}
	if d.GreaterThan(maxDebt) {
		return decimal.Zero, hierarchy.Reject("debt must not exceed 99999999.99")
	}
	if !d.Equal(d.Round(2)) {
		return decimal.Zero, hierarchy.Reject("debt must have at most 2 decimal places")
	}
	return d.Round(2), nil
}

func sameRef(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func toNodeResponse(n model.NetworkNode) dto.NodeResponse {
	resp := dto.NodeResponse{
		ID:          n.ID,
		Name:        n.Name,
		Email:       n.Email,
		City:        n.City,
		Street:      n.Street,
		HouseNumber: n.HouseNumber,
		NodeType:    string(n.NodeType),
		Supplier:    n.SupplierID,
		Products:    lo.Map(n.Products, func(p model.Product, _ int) dto.ProductResponse { return toProductResponse(p) }),
		Debt:        n.Debt.StringFixed(2),
		CreatedAt:   n.CreatedAt,
		Level:       n.Level,
	}
	if n.Supplier != nil {
		resp.SupplierName = &n.Supplier.Name
	}
	return resp
}
