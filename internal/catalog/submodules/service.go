package submodules

import (
	"context"
	"errors"
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

func (s *Service) List(ctx context.Context, filters shared.ListFilters, moduleID uuid.NullUUID) ([]SubModule, int, error) {
	return s.repo.List(ctx, filters, moduleID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (SubModule, error) {
	if id == uuid.Nil {
		return SubModule{}, fmt.Errorf("%w: invalid sub-module id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create inherits the channel from the parent module, keeping the
// denormalized pair consistent without trusting the caller.
func (s *Service) Create(ctx context.Context, name string, moduleID uuid.UUID) (SubModule, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return SubModule{}, fmt.Errorf("%w: sub-module name is required", httpx.ErrValidation)
	}
	if moduleID == uuid.Nil {
		return SubModule{}, fmt.Errorf("%w: module id is required", httpx.ErrValidation)
	}
	channelID, err := s.repo.ModuleChannel(ctx, moduleID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return SubModule{}, fmt.Errorf("%w: module does not exist", httpx.ErrValidation)
		}
		return SubModule{}, err
	}
	dup, err := s.repo.ExistsByName(ctx, name, moduleID, uuid.Nil)
	if err != nil {
		return SubModule{}, err
	}
	if dup {
		return SubModule{}, fmt.Errorf("%w: sub-module %q already exists in this module", httpx.ErrDuplicate, name)
	}
	return s.repo.Create(ctx, name, moduleID, channelID, shared.ActorFrom(ctx))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid sub-module id", httpx.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: sub-module name is required", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	dup, err := s.repo.ExistsByName(ctx, name, current.ModuleID, id)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: sub-module %q already exists in this module", httpx.ErrDuplicate, name)
	}
	return s.repo.Update(ctx, id, name, shared.ActorFrom(ctx))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid sub-module id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}
