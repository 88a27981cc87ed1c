package channels

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Channel, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Channel, error) {
	if id == uuid.Nil {
		return Channel{}, fmt.Errorf("%w: invalid channel id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, name string) (Channel, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Channel{}, fmt.Errorf("%w: channel name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return Channel{}, err
	}
	if dup {
		return Channel{}, fmt.Errorf("%w: channel %q already exists", httpx.ErrDuplicate, name)
	}
	return s.repo.Create(ctx, name, shared.ActorFrom(ctx))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid channel id", httpx.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: channel name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, id)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: channel %q already exists", httpx.ErrDuplicate, name)
	}
	return s.repo.Update(ctx, id, name, shared.ActorFrom(ctx))
}

// Delete soft-deletes the channel. Existing permission rows keep their FK;
// reads exclude them through the join filters.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid channel id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}
