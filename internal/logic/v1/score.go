package v1

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
	"github.com/openflappy/leaderboard-service/internal/cryptox"
)

// BanReasonCheating is stamped on users the anticheat trips on.
const BanReasonCheating = "Cheating (Anticheat)"

// ScoreOutcome is the terminal result of a successfully verified score
// submission. A rejected submission is an error, not an outcome.
type ScoreOutcome int

const (
	// ScoreAccepted: the submission verified and did not trip the
	// anticheat; the stored best score was raised if beaten.
	ScoreAccepted ScoreOutcome = iota
	// ScoreBanned: the submission verified but the claimed time and score
	// disagree beyond the tolerance window; the user was banned.
	ScoreBanned
)

// ScoreService implements score submission with verification and the
// anticheat decision, plus the leaderboard read surface.
type ScoreService struct {
	users    domain.UserRepository
	codec    *cryptox.Codec
	window   int64
	banFloor int64
}

// NewScoreService creates a ScoreService. window is the tolerated
// discrepancy between claimed elapsed time and claimed score; banFloor is
// the score a submission must exceed before a window violation bans
// (low-score jitter from legitimate clients stays unpunished).
func NewScoreService(users domain.UserRepository, codec *cryptox.Codec, window, banFloor int64) *ScoreService {
	return &ScoreService{users: users, codec: codec, window: window, banFloor: banFloor}
}

// SubmitScore runs the full verification procedure for one submission.
//
// The payload's score and time fields are encrypted integers; either
// failing to decode rejects the request outright — the anticheat never
// judges input it could not authenticate. A verified submission results in
// at most one write: a ban, or a best-score raise, or nothing.
func (s *ScoreService) SubmitScore(ctx context.Context, user *domain.User, req domain.SubmitScoreRequest) (ScoreOutcome, error) {
	logger := zerolog.Ctx(ctx)

	score, err := s.codec.DecodeInt(req.Score)
	if err != nil {
		logger.Warn().Err(err).Str("user", user.Name).Msg("undecodable score field")
		return 0, fmt.Errorf("decode score: %w", ErrScoreRejected)
	}
	elapsed, err := s.codec.DecodeInt(req.Time)
	if err != nil {
		logger.Warn().Err(err).Str("user", user.Name).Msg("undecodable time field")
		return 0, fmt.Errorf("decode time: %w", ErrScoreRejected)
	}

	if !s.codec.VerifyScore(score, elapsed, req.Verify) {
		logger.Warn().
			Str("user", user.Name).
			Int64("score", score).
			Int64("time", elapsed).
			Msg("verification token mismatch")
		return 0, fmt.Errorf("verify token: %w", ErrScoreRejected)
	}

	logger.Info().
		Str("user", user.Name).
		Stringer("user_id", user.ID).
		Int64("score", score).
		Int64("time", elapsed).
		Msg("score verification passed")

	if s.exceedsWindow(score, elapsed) && score > s.banFloor {
		reason := BanReasonCheating
		if err := s.users.SetBan(ctx, user.ID, true, &reason); err != nil {
			return 0, fmt.Errorf("ban user: %w", err)
		}
		// Enough context for manual review and appeal.
		logger.Warn().
			Str("user", user.Name).
			Stringer("user_id", user.ID).
			Int64("claimed_score", score).
			Int64("claimed_time", elapsed).
			Int64("window", s.window).
			Msg("anticheat ban")
		return ScoreBanned, nil
	}

	if score > user.Score {
		updated, err := s.users.UpdateScoreIfHigher(ctx, user.ID, score)
		if err != nil {
			return 0, fmt.Errorf("update score: %w", err)
		}
		if updated {
			logger.Info().Str("user", user.Name).Int64("score", score).Msg("best score updated")
		}
	}

	return ScoreAccepted, nil
}

// exceedsWindow reports whether the claimed time and score disagree by more
// than the tolerance. A discrepancy of exactly the window is tolerated.
func (s *ScoreService) exceedsWindow(score, elapsed int64) bool {
	return elapsed+s.window < score || elapsed-s.window > score
}

// SubmitDeath increments the player's death counter.
func (s *ScoreService) SubmitDeath(ctx context.Context, user *domain.User) error {
	if err := s.users.IncrementDeaths(ctx, user.ID); err != nil {
		return fmt.Errorf("increment deaths: %w", err)
	}
	return nil
}

// ReportIntegrity records a client-integrity signal against the player.
func (s *ScoreService) ReportIntegrity(ctx context.Context, user *domain.User, flag domain.IntegrityFlag) error {
	if err := s.users.SetIntegrityFlag(ctx, user.ID, flag); err != nil {
		return fmt.Errorf("set %s: %w", flag, err)
	}
	zerolog.Ctx(ctx).Info().Str("user", user.Name).Stringer("flag", flag).Msg("integrity flag reported")
	return nil
}

// Leaderboard returns the top non-banned players, best score first.
func (s *ScoreService) Leaderboard(ctx context.Context, limit int) ([]domain.PublicUser, error) {
	users, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query leaderboard: %w", err)
	}
	return publicUsers(users), nil
}

// Users returns the public projection of every player.
func (s *ScoreService) Users(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	return publicUsers(users), nil
}

// UserByName returns one player's public record.
func (s *ScoreService) UserByName(ctx context.Context, name string) (*domain.PublicUser, error) {
	user, err := s.users.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("query user %q: %w", name, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", name, ErrUserNotFound)
	}
	pub := user.Public()
	return &pub, nil
}

// UserID resolves a player name to their id.
func (s *ScoreService) UserID(ctx context.Context, name string) (uuid.UUID, error) {
	pub, err := s.UserByName(ctx, name)
	if err != nil {
		return uuid.Nil, err
	}
	return pub.ID, nil
}

// PlayerCount counts non-banned players.
func (s *ScoreService) PlayerCount(ctx context.Context) (int64, error) {
	return s.users.CountActive(ctx)
}

// GlobalDeaths totals deaths across all players.
func (s *ScoreService) GlobalDeaths(ctx context.Context) (int64, error) {
	return s.users.SumDeaths(ctx)
}

func publicUsers(users []domain.User) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out
}
