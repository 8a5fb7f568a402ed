package repository

import (
	"context"

	"tradenet/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// NodeFilter narrows List. Zero-valued fields do not filter.
type NodeFilter struct {
	City       string
	NodeType   model.NodeType
	Level      *int
	SupplierID *uuid.UUID
	// SupplierIDs matches nodes supplied by any of the given nodes.
	SupplierIDs []uuid.UUID
}

// NodeUpdate describes one atomic write of an existing node.
// Products is only replaced when ReplaceProducts is set.
type NodeUpdate struct {
	Node            *model.NetworkNode
	ReplaceProducts bool
	// Relevel holds new levels for dependents shifted by a hierarchy change.
	Relevel map[uuid.UUID]int
}

// NodeRepository is the persistence contract for the trading network.
type NodeRepository interface {
	Create(ctx context.Context, n *model.NetworkNode) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.NetworkNode, error)
	List(ctx context.Context, filter NodeFilter) ([]model.NetworkNode, error)
	Update(ctx context.Context, u NodeUpdate) error
	// Delete removes all given nodes and their product links in one transaction.
	Delete(ctx context.Context, ids []uuid.UUID) error
	// ClearDebt sets debt to zero on every existing node in ids and returns
	// how many rows were touched.
	ClearDebt(ctx context.Context, ids []uuid.UUID) (int64, error)
}

type nodeRepo struct{ db *gorm.DB }

func NewNodeRepository(db *gorm.DB) NodeRepository { return &nodeRepo{db: db} }

func (r *nodeRepo) Create(ctx context.Context, n *model.NetworkNode) error {
	// Products are existing rows: link them without upserting their columns.
	return r.db.WithContext(ctx).Omit("Products.*").Create(n).Error
}

func (r *nodeRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.NetworkNode, error) {
	var n model.NetworkNode
	err := r.db.WithContext(ctx).
		Preload("Supplier").
		Preload("Products").
		First(&n, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *nodeRepo) List(ctx context.Context, filter NodeFilter) ([]model.NetworkNode, error) {
	q := r.db.WithContext(ctx).Model(&model.NetworkNode{})
	if filter.City != "" {
		q = q.Where("city = ?", filter.City)
	}
	if filter.NodeType != "" {
		q = q.Where("node_type = ?", filter.NodeType)
	}
	if filter.Level != nil {
		q = q.Where("level = ?", *filter.Level)
	}
	if filter.SupplierID != nil {
		q = q.Where("supplier_id = ?", *filter.SupplierID)
	}
	if len(filter.SupplierIDs) > 0 {
		q = q.Where("supplier_id IN ?", filter.SupplierIDs)
	}

	var nodes []model.NetworkNode
	err := q.Preload("Supplier").
		Preload("Products").
		Order("level asc, created_at asc").
		Find(&nodes).Error
	return nodes, err
}

func (r *nodeRepo) Update(ctx context.Context, u NodeUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n := u.Node
		err := tx.Model(&model.NetworkNode{}).
			Where("id = ?", n.ID).
			Updates(map[string]interface{}{
				"name":         n.Name,
				"email":        n.Email,
				"city":         n.City,
				"street":       n.Street,
				"house_number": n.HouseNumber,
				"node_type":    n.NodeType,
				"level":        n.Level,
				"supplier_id":  n.SupplierID,
				"debt":         n.Debt,
			}).Error
		if err != nil {
			return err
		}

		for id, level := range u.Relevel {
			if err := tx.Model(&model.NetworkNode{}).Where("id = ?", id).Update("level", level).Error; err != nil {
				return err
			}
		}

		if u.ReplaceProducts {
			if err := tx.Model(n).Association("Products").Replace(n.Products); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *nodeRepo) Delete(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM network_node_products WHERE network_node_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Where("id IN ?", ids).Delete(&model.NetworkNode{}).Error
	})
}

func (r *nodeRepo) ClearDebt(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Model(&model.NetworkNode{}).
		Where("id IN ?", ids).
		Update("debt", decimal.Zero)
	return res.RowsAffected, res.Error
}
