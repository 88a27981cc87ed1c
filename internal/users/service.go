package users

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"golang.org/x/crypto/bcrypt"

	"github.com/argus-admin/argus-admin/internal/catalog/shared"
	"github.com/argus-admin/argus-admin/internal/platform/httpx"
	"github.com/argus-admin/argus-admin/jobs"
)

// EmailEnqueuer hands mail tasks to the queue; satisfied by *jobs.Client.
type EmailEnqueuer interface {
	EnqueueSendEmail(ctx context.Context, payload jobs.SendEmailPayload) (*asynq.TaskInfo, error)
}

type Service struct {
	logger   *slog.Logger
	repo     Repository
	enqueuer EmailEnqueuer
	hashCost int
}

func NewService(logger *slog.Logger, repo Repository, enqueuer EmailEnqueuer) *Service {
	return &Service{logger: logger, repo: repo, enqueuer: enqueuer, hashCost: bcrypt.DefaultCost}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]User, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	if id == uuid.Nil {
		return User{}, fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, in NewUser) (User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if in.Username == "" || in.Email == "" {
		return User{}, fmt.Errorf("%w: username and email are required", httpx.ErrValidation)
	}
	taken, err := s.repo.UsernameOrEmailTaken(ctx, in.Username, in.Email, uuid.Nil)
	if err != nil {
		return User{}, err
	}
	if taken {
		return User{}, fmt.Errorf("%w: username or email already in use", httpx.ErrDuplicate)
	}
	if in.RoleID.Valid {
		ok, err := s.repo.RoleExists(ctx, in.RoleID.UUID)
		if err != nil {
			return User{}, err
		}
		if !ok {
			return User{}, fmt.Errorf("%w: role does not exist", httpx.ErrValidation)
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}
	return s.repo.Create(ctx, in, string(hash), shared.ActorFrom(ctx))
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateUser) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" {
		return fmt.Errorf("%w: email is required", httpx.ErrValidation)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	taken, err := s.repo.UsernameOrEmailTaken(ctx, current.Username, in.Email, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: email already in use", httpx.ErrDuplicate)
	}
	var hash *string
	if in.Password != nil {
		h, err := bcrypt.GenerateFromPassword([]byte(*in.Password), s.hashCost)
		if err != nil {
			return fmt.Errorf("users: hash password: %w", err)
		}
		hashed := string(h)
		hash = &hashed
	}
	return s.repo.Update(ctx, id, in, hash, shared.ActorFrom(ctx))
}

// AssignRole sets or clears the user's role. The new grants apply on the
// next issued token; outstanding access tokens keep their embedded role
// until they expire.
func (s *Service) AssignRole(ctx context.Context, id uuid.UUID, roleID uuid.NullUUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	if roleID.Valid {
		ok, err := s.repo.RoleExists(ctx, roleID.UUID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: role does not exist", httpx.ErrValidation)
		}
	}
	return s.repo.AssignRole(ctx, id, roleID, shared.ActorFrom(ctx))
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%w: invalid user id", httpx.ErrValidation)
	}
	return s.repo.SoftDelete(ctx, id, shared.ActorFrom(ctx))
}

// SendEmailToUsers enqueues one mail task per live account and reports how
// many were queued. Individual enqueue failures are logged and skipped so a
// flaky broker does not abort the whole batch.
func (s *Service) SendEmailToUsers(ctx context.Context, subject, body string) (int, error) {
	targets, err := s.repo.ListActiveEmails(ctx)
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, u := range targets {
		_, err := s.enqueuer.EnqueueSendEmail(ctx, jobs.SendEmailPayload{
			To:      u.Email,
			Subject: subject,
			Body:    body,
		})
		if err != nil {
			s.logger.Warn("enqueue user email", slog.String("email", u.Email), slog.Any("error", err))
			continue
		}
		queued++
	}
	return queued, nil
}
