package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"tradenet/internal/dto"
	"tradenet/internal/model"
	"tradenet/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory NodeRepository stub ────────────────────────────────────────────
// Every read hands out copies so a service can never mutate stored state
// without going through Create/Update/Delete.

type stubNodeRepo struct {
	nodes     map[uuid.UUID]*model.NetworkNode
	updates   int
	updateErr error
	// afterFind runs once FindByID has copied the node out.
	afterFind func(id uuid.UUID)
}

func newStubNodeRepo() *stubNodeRepo {
	return &stubNodeRepo{nodes: make(map[uuid.UUID]*model.NetworkNode)}
}

func cloneNode(n *model.NetworkNode) *model.NetworkNode {
	c := *n
	c.Supplier = nil
	c.Products = append([]model.Product(nil), n.Products...)
	if n.SupplierID != nil {
		id := *n.SupplierID
		c.SupplierID = &id
	}
	return &c
}

func (r *stubNodeRepo) withSupplier(n *model.NetworkNode) *model.NetworkNode {
	c := cloneNode(n)
	if c.SupplierID != nil {
		if s, ok := r.nodes[*c.SupplierID]; ok {
			c.Supplier = cloneNode(s)
		}
	}
	return c
}

func (r *stubNodeRepo) Create(_ context.Context, n *model.NetworkNode) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	n.CreatedAt = time.Now()
	r.nodes[n.ID] = cloneNode(n)
	return nil
}

func (r *stubNodeRepo) FindByID(_ context.Context, id uuid.UUID) (*model.NetworkNode, error) {
	n, ok := r.nodes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	found := r.withSupplier(n)
	if r.afterFind != nil {
		r.afterFind(id)
	}
	return found, nil
}

func (r *stubNodeRepo) List(_ context.Context, f repository.NodeFilter) ([]model.NetworkNode, error) {
	result := make([]model.NetworkNode, 0)
	for _, n := range r.nodes {
		if f.City != "" && n.City != f.City {
			continue
		}
		if f.NodeType != "" && n.NodeType != f.NodeType {
			continue
		}
		if f.Level != nil && n.Level != *f.Level {
			continue
		}
		if f.SupplierID != nil && (n.SupplierID == nil || *n.SupplierID != *f.SupplierID) {
			continue
		}
		if len(f.SupplierIDs) > 0 && (n.SupplierID == nil || !containsID(f.SupplierIDs, *n.SupplierID)) {
			continue
		}
		result = append(result, *r.withSupplier(n))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Level != result[j].Level {
			return result[i].Level < result[j].Level
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *stubNodeRepo) Update(_ context.Context, u repository.NodeUpdate) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	stored, ok := r.nodes[u.Node.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	next := cloneNode(u.Node)
	next.CreatedAt = stored.CreatedAt
	if !u.ReplaceProducts {
		next.Products = stored.Products
	}
	r.nodes[next.ID] = next
	for id, level := range u.Relevel {
		if n, ok := r.nodes[id]; ok {
			n.Level = level
		}
	}
	r.updates++
	return nil
}

func (r *stubNodeRepo) Delete(_ context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(r.nodes, id)
	}
	return nil
}

func (r *stubNodeRepo) ClearDebt(_ context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	for _, id := range ids {
		if node, ok := r.nodes[id]; ok {
			node.Debt = decimal.Zero
			n++
		}
	}
	return n, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

var _ repository.NodeRepository = (*stubNodeRepo)(nil)

// ── In-memory ProductRepository stub ─────────────────────────────────────────

type stubProductRepo struct {
	products map[uuid.UUID]*model.Product
}

func newStubProductRepo() *stubProductRepo {
	return &stubProductRepo{products: make(map[uuid.UUID]*model.Product)}
}

func (r *stubProductRepo) Create(_ context.Context, p *model.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.CreatedAt = time.Now()
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *stubProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *p
	return &c, nil
}

func (r *stubProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var result []model.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (r *stubProductRepo) List(_ context.Context) ([]model.Product, error) {
	result := make([]model.Product, 0, len(r.products))
	for _, p := range r.products {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (r *stubProductRepo) Update(_ context.Context, p *model.Product) error {
	stored, ok := r.products[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name, stored.Model, stored.ReleaseDate = p.Name, p.Model, p.ReleaseDate
	return nil
}

func (r *stubProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.products, id)
	return nil
}

var _ repository.ProductRepository = (*stubProductRepo)(nil)

// ── In-memory UserRepository stub ────────────────────────────────────────────

type stubUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	u.ID = uuid.New()
	c := *u
	r.users[u.ID] = &c
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			c := *u
			return &c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c := *u
	return &c, nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	u, ok := r.users[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsActive = active
	return nil
}

var _ repository.UserRepository = (*stubUserRepo)(nil)

// ── Recording NodeCache ──────────────────────────────────────────────────────
// Versioned like the Redis cache: Invalidate retires every entry, and Set
// under a retired version is dropped.

type memCache struct {
	version       int64
	entries       map[uuid.UUID]dto.NodeResponse
	hits          int
	invalidations int
}

func newMemCache() *memCache { return &memCache{entries: make(map[uuid.UUID]dto.NodeResponse)} }

func (c *memCache) Get(_ context.Context, id uuid.UUID) (*dto.NodeResponse, int64, bool) {
	resp, ok := c.entries[id]
	if !ok {
		return nil, c.version, false
	}
	c.hits++
	return &resp, c.version, true
}

func (c *memCache) Set(_ context.Context, version int64, resp *dto.NodeResponse) {
	if version != c.version {
		return
	}
	c.entries[resp.ID] = *resp
}

func (c *memCache) Invalidate(context.Context) {
	c.version++
	c.entries = make(map[uuid.UUID]dto.NodeResponse)
	c.invalidations++
}
