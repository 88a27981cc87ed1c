package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters, categoryID uuid.NullUUID) ([]Product, int, error) {
	return s.repo.List(ctx, filters, categoryID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	if id == uuid.Nil {
		return Product{}, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) validate(in *NewProduct) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("%w: price cannot be negative", httpx.ErrValidation)
	}
	if in.CategoryID == uuid.Nil {
		return fmt.Errorf("%w: category id is required", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in NewProduct) (Product, error) {
	if err := s.validate(&in); err != nil {
		return Product{}, err
	}
	ok, err := s.repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return Product{}, err
	}
	if !ok {
		return Product{}, fmt.Errorf("%w: category does not exist", httpx.ErrValidation)
	}
	return s.repo.Create(ctx, in, shared.ActorFrom(ctx))
}

// CreateMany validates the whole batch first; one bad row rejects the call
// and nothing is written.
func (s *Service) CreateMany(ctx context.Context, in []NewProduct) (int, error) {
	if len(in) == 0 {
		return 0, fmt.Errorf("%w: at least one product is required", httpx.ErrValidation)
	}
	checked := map[uuid.UUID]bool{}
	for i := range in {
		if err := s.validate(&in[i]); err != nil {
			return 0, err
		}
		if !checked[in[i].CategoryID] {
			ok, err := s.repo.CategoryExists(ctx, in[i].CategoryID)
			if err != nil {
				return 0, err
			}
			if !ok {
				return 0, fmt.Errorf("%w: category does not exist", httpx.ErrValidation)
			}
			checked[in[i].CategoryID] = true
		}
	}
	return s.repo.CreateMany(ctx, in, shared.ActorFrom(ctx))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in NewProduct) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	if err := s.validate(&in); err != nil {
		return err
	}
	ok, err := s.repo.CategoryExists(ctx, in.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: category does not exist", httpx.ErrValidation)
	}
	return s.repo.Update(ctx, id, in, shared.ActorFrom(ctx))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}

func (s *Service) DeleteMany(ctx context.Context, ids []uuid.UUID) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: at least one product id is required", httpx.ErrValidation)
	}
	for _, id := range ids {
		if id == uuid.Nil {
			return 0, fmt.Errorf("%w: invalid product id", httpx.ErrValidation)
		}
	}
	return s.repo.SoftDeleteMany(ctx, ids, shared.ActorFrom(ctx))
}
