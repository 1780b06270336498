package v1

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
)

// AdminService implements the moderation surface. Every method takes the
// acting user so privilege rules live here, not in the handlers: admins may
// moderate regular players, only the owner may moderate other admins or
// grant the admin flag.
type AdminService struct {
	users domain.UserRepository
}

// NewAdminService creates an AdminService.
func NewAdminService(users domain.UserRepository) *AdminService {
	return &AdminService{users: users}
}

// ListUsers returns the full user records, moderation state included.
func (s *AdminService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("list users: %w", ErrForbidden)
	}
	return s.users.List(ctx)
}

// Ban marks the target banned with the given reason.
func (s *AdminService) Ban(ctx context.Context, actor *domain.User, targetID uuid.UUID, reason string) error {
	target, err := s.moderationTarget(ctx, actor, targetID)
	if err != nil {
		return err
	}
	if err := s.users.SetBan(ctx, targetID, true, &reason); err != nil {
		return fmt.Errorf("ban user: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("actor", actor.Name).
		Str("target", target.Name).
		Str("reason", reason).
		Msg("user banned")
	return nil
}

// Unban clears the target's ban and reason.
func (s *AdminService) Unban(ctx context.Context, actor *domain.User, targetID uuid.UUID) error {
	target, err := s.moderationTarget(ctx, actor, targetID)
	if err != nil {
		return err
	}
	if err := s.users.SetBan(ctx, targetID, false, nil); err != nil {
		return fmt.Errorf("unban user: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("actor", actor.Name).
		Str("target", target.Name).
		Msg("user unbanned")
	return nil
}

// Delete removes the target account entirely.
func (s *AdminService) Delete(ctx context.Context, actor *domain.User, targetID uuid.UUID) error {
	target, err := s.moderationTarget(ctx, actor, targetID)
	if err != nil {
		return err
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("actor", actor.Name).
		Str("target", target.Name).
		Msg("user deleted")
	return nil
}

// RestoreScore overwrites the target's stored score, for repairing the
// fallout of a bad ban or a lost record.
func (s *AdminService) RestoreScore(ctx context.Context, actor *domain.User, targetID uuid.UUID, score int64) error {
	if !actor.Admin {
		return fmt.Errorf("restore score: %w", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("restore score: %w", ErrUserNotFound)
	}
	if err := s.users.SetScore(ctx, targetID, score); err != nil {
		return fmt.Errorf("restore score: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("actor", actor.Name).
		Str("target", target.Name).
		Int64("score", score).
		Msg("score restored")
	return nil
}

// MakeAdmin grants the admin flag. Owner only.
func (s *AdminService) MakeAdmin(ctx context.Context, actor *domain.User, targetID uuid.UUID) error {
	if !actor.Owner {
		return fmt.Errorf("make admin: %w", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("query user: %w", err)
	}
	if target == nil {
		return fmt.Errorf("make admin: %w", ErrUserNotFound)
	}
	if err := s.users.SetAdmin(ctx, targetID); err != nil {
		return fmt.Errorf("make admin: %w", err)
	}
	zerolog.Ctx(ctx).Info().
		Str("actor", actor.Name).
		Str("target", target.Name).
		Msg("admin granted")
	return nil
}

// moderationTarget resolves the target and enforces the privilege rule
// shared by ban, unban, and delete.
func (s *AdminService) moderationTarget(ctx context.Context, actor *domain.User, targetID uuid.UUID) (*domain.User, error) {
	if !actor.Admin {
		return nil, fmt.Errorf("moderate user: %w", ErrForbidden)
	}
	target, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	if target == nil {
		return nil, fmt.Errorf("moderate user: %w", ErrUserNotFound)
	}
	if !actor.Owner && (target.Admin || target.Owner) {
		return nil, fmt.Errorf("cannot moderate another admin: %w", ErrForbidden)
	}
	return target, nil
}
