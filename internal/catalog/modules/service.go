package modules

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters, channelID uuid.NullUUID) ([]Module, int, error) {
	return s.repo.List(ctx, filters, channelID)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Module, error) {
	if id == uuid.Nil {
		return Module{}, fmt.Errorf("%w: invalid module id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Create checks the channel is live and the name is unique within it.
// Module names may repeat across channels.
func (s *Service) Create(ctx context.Context, name string, channelID uuid.UUID) (Module, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Module{}, fmt.Errorf("%w: module name is required", httpx.ErrValidation)
	}
	if channelID == uuid.Nil {
		return Module{}, fmt.Errorf("%w: channel id is required", httpx.ErrValidation)
	}
	ok, err := s.repo.ChannelExists(ctx, channelID)
	if err != nil {
		return Module{}, err
	}
	if !ok {
		return Module{}, fmt.Errorf("%w: channel does not exist", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, channelID, uuid.Nil)
	if err != nil {
		return Module{}, err
	}
	if dup {
		return Module{}, fmt.Errorf("%w: module %q already exists on this channel", httpx.ErrDuplicate, name)
	}
	return s.repo.Create(ctx, name, channelID, shared.ActorFrom(ctx))
}

// Update renames the module. The channel binding is immutable: permissions
// reference the (module, channel) pair, so moving a module across channels
// would silently rewrite grants.
func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid module id", httpx.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: module name is required", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	dup, err := s.repo.ExistsByName(ctx, name, current.ChannelID, id)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: module %q already exists on this channel", httpx.ErrDuplicate, name)
	}
	return s.repo.Update(ctx, id, name, shared.ActorFrom(ctx))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid module id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}
