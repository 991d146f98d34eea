package service

import (
	"context"
	"strings"

	"github.com/samber/mo"

	"github.com/iliyamo/shoe-workshop/internal/model"
	"github.com/iliyamo/shoe-workshop/internal/repository"
)

// ItemInput carries the fields of a create or update request.  Absent
// options leave the stored value untouched on update.
type ItemInput struct {
	Name       mo.Option[string]
	Model      mo.Option[string]
	Size       mo.Option[string]
	StockLevel mo.Option[int]
}

// touchesTriple reports whether any part of the unique key was supplied.
func (in ItemInput) touchesTriple() bool {
	return in.Name.IsPresent() || in.Model.IsPresent() || in.Size.IsPresent()
}

// InventoryService enforces the inventory rules: the (name, model, size)
// triple is unique and stock is never negative.
type InventoryService struct {
	items *repository.InventoryRepo
}

func NewInventoryService(items *repository.InventoryRepo) *InventoryService {
	return &InventoryService{items: items}
}

func (s *InventoryService) List(ctx context.Context) ([]model.InventoryItem, error) {
	return s.items.List(ctx)
}

func (s *InventoryService) Get(ctx context.Context, id uint64) (*model.InventoryItem, error) {
	return s.items.GetByID(ctx, id)
}

// Create requires every field.  A duplicate triple is rejected with
// repository.ErrDuplicate before anything is written.
func (s *InventoryService) Create(ctx context.Context, in ItemInput) (*model.InventoryItem, error) {
	it := model.InventoryItem{
		Name:  strings.TrimSpace(in.Name.OrEmpty()),
		Model: strings.TrimSpace(in.Model.OrEmpty()),
		Size:  strings.TrimSpace(in.Size.OrEmpty()),
	}
	level, ok := in.StockLevel.Get()
	if it.Name == "" || it.Model == "" || it.Size == "" || !ok {
		return nil, invalid("All fields are required")
	}
	if level < 0 {
		return nil, invalid("Stock level cannot be negative")
	}
	it.StockLevel = level

	taken, err := s.items.TripleTaken(ctx, it.Name, it.Model, it.Size, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrDuplicate
	}
	if err := s.items.Create(ctx, &it); err != nil {
		return nil, err
	}
	return &it, nil
}

// Update writes only the supplied fields.  The stored row is read to
// validate the resulting (name, model, size) triple.
func (s *InventoryService) Update(ctx context.Context, id uint64, in ItemInput) (*model.InventoryItem, error) {
	if level, ok := in.StockLevel.Get(); ok && level < 0 {
		return nil, invalid("Stock level cannot be negative")
	}
	it, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var patch repository.ItemPatch
	name, modelName, size := it.Name, it.Model, it.Size
	if v, ok := in.Name.Get(); ok {
		name = strings.TrimSpace(v)
		patch.Name = &name
	}
	if v, ok := in.Model.Get(); ok {
		modelName = strings.TrimSpace(v)
		patch.Model = &modelName
	}
	if v, ok := in.Size.Get(); ok {
		size = strings.TrimSpace(v)
		patch.Size = &size
	}
	if name == "" || modelName == "" || size == "" {
		return nil, invalid("Name, model and size cannot be empty")
	}
	patch.StockLevel = in.StockLevel.ToPointer()

	if in.touchesTriple() {
		taken, err := s.items.TripleTaken(ctx, name, modelName, size, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrDuplicate
		}
	}
	return s.items.Update(ctx, id, patch)
}

// SetStock overwrites the stock level with a non-negative value.
func (s *InventoryService) SetStock(ctx context.Context, id uint64, level int) (*model.InventoryItem, error) {
	if level < 0 {
		return nil, invalid("Valid stock level is required")
	}
	return s.items.SetStock(ctx, id, level)
}

// Delete fails with repository.ErrConflict while orders reference the item.
func (s *InventoryService) Delete(ctx context.Context, id uint64) error {
	return s.items.Delete(ctx, id)
}
