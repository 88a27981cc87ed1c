package categories

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/cache"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
)

// Service serves category reads through the versioned cache and invalidates
// the whole prefix on any write. Cache failures degrade to the database
// rather than surfacing to the caller.
type Service struct {
	logger *slog.Logger
	repo   Repository
	cache  *cache.Store
}

func NewService(logger *slog.Logger, repo Repository, cacheStore *cache.Store) *Service {
	return &Service{logger: logger, repo: repo, cache: cacheStore}
}

type cachedPage struct {
	Items []Category `json:"items"`
	Total int        `json:"total"`
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	key, err := s.cache.BuildKey(ctx, "list",
		strconv.Itoa(filters.Page), strconv.Itoa(filters.Size),
		filters.Keyword, filters.Sort, filters.Order)
	if err != nil {
		s.logger.Warn("category cache key", slog.Any("error", err))
		return s.repo.List(ctx, filters)
	}

	var page cachedPage
	hit, err := s.cache.Get(ctx, key, &page)
	if err != nil {
		s.logger.Warn("category cache read", slog.Any("error", err))
	}
	if hit {
		return page.Items, page.Total, nil
	}

	items, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	if err := s.cache.Set(ctx, key, cachedPage{Items: items, Total: total}); err != nil {
		s.logger.Warn("category cache write", slog.Any("error", err))
	}
	return items, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Category, error) {
	if id == uuid.Nil {
		return Category{}, fmt.Errorf("%w: invalid category id", httpx.ErrValidation)
	}
	key, err := s.cache.BuildKey(ctx, "id", id.String())
	if err != nil {
		s.logger.Warn("category cache key", slog.Any("error", err))
		return s.repo.Get(ctx, id)
	}

	var c Category
	hit, err := s.cache.Get(ctx, key, &c)
	if err != nil {
		s.logger.Warn("category cache read", slog.Any("error", err))
	}
	if hit {
		return c, nil
	}

	c, err = s.repo.Get(ctx, id)
	if err != nil {
		return Category{}, err
	}
	if err := s.cache.Set(ctx, key, c); err != nil {
		s.logger.Warn("category cache write", slog.Any("error", err))
	}
	return c, nil
}

func (s *Service) Create(ctx context.Context, name string) (Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Category{}, fmt.Errorf("%w: category name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, uuid.Nil)
	if err != nil {
		return Category{}, err
	}
	if dup {
		return Category{}, fmt.Errorf("%w: category %q already exists", httpx.ErrDuplicate, name)
	}
	c, err := s.repo.Create(ctx, name, shared.ActorFrom(ctx))
	if err != nil {
		return Category{}, err
	}
	s.invalidate(ctx)
	return c, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, name string) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid category id", httpx.ErrValidation)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: category name is required", httpx.ErrValidation)
	}
	dup, err := s.repo.ExistsByName(ctx, name, id)
	if err != nil {
		return err
	}
	if dup {
		return fmt.Errorf("%w: category %q already exists", httpx.ErrDuplicate, name)
	}
	if err := s.repo.Update(ctx, id, name, shared.ActorFrom(ctx)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid category id", httpx.ErrValidation)
	}
	if err := s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx)); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("category cache invalidate", slog.Any("error", err))
	}
}
