package actions

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Action, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Action, error) {
	if id == uuid.Nil {
		return Action{}, fmt.Errorf("%w: invalid action id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (Action, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Action{}, fmt.Errorf("%w: action name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return Action{}, err
	}
	if dup {
		return Action{}, fmt.Errorf("%w: action %q already exists", httpx.ErrDuplicate, name)
	}
	return s.repo.Create(ctx, name, shared.ActorFrom(ctx))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid action id", httpx.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: action name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, id)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: action %q already exists", httpx.ErrDuplicate, name)
	}
	return s.repo.Update(ctx, id, name, shared.ActorFrom(ctx))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid action id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}
