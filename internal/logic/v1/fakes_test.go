package v1

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
)

// In-memory repository fakes. They mirror the pgx implementations closely
// enough for business-rule tests: (nil, nil) on missing rows, unique token
// values, compare-and-set score updates.

type fakeUserRepo struct {
	users map[uuid.UUID]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (r *fakeUserRepo) add(u domain.User) *domain.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.users[u.ID] = &u
	return &u
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	u, err := r.GetByName(ctx, name)
	return u != nil, err
}

func (r *fakeUserRepo) Create(_ context.Context, name, passwordHash string) (*domain.User, error) {
	return r.add(domain.User{Name: name, PasswordHash: passwordHash}), nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out, nil
}

func (r *fakeUserRepo) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	all, _ := r.List(ctx)
	out := make([]domain.User, 0, limit)
	for _, u := range all {
		if u.IsBanned {
			continue
		}
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeUserRepo) CountActive(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		if !u.IsBanned {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) SumDeaths(_ context.Context) (int64, error) {
	var n int64
	for _, u := range r.users {
		n += u.Deaths
	}
	return n, nil
}

func (r *fakeUserRepo) UpdateScoreIfHigher(_ context.Context, id uuid.UUID, newScore int64) (bool, error) {
	u, ok := r.users[id]
	if !ok || u.Score >= newScore {
		return false, nil
	}
	u.Score = newScore
	return true, nil
}

func (r *fakeUserRepo) SetScore(_ context.Context, id uuid.UUID, score int64) error {
	if u, ok := r.users[id]; ok {
		u.Score = score
	}
	return nil
}

func (r *fakeUserRepo) IncrementDeaths(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Deaths++
	}
	return nil
}

func (r *fakeUserRepo) SetBan(_ context.Context, id uuid.UUID, banned bool, reason *string) error {
	if u, ok := r.users[id]; ok {
		u.IsBanned = banned
		u.BanReason = reason
	}
	return nil
}

func (r *fakeUserRepo) SetIntegrityFlag(_ context.Context, id uuid.UUID, flag domain.IntegrityFlag) error {
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	switch flag {
	case domain.FlagJailbroken:
		u.Jailbroken = true
	case domain.FlagHackedTools:
		u.HasHackedTools = true
	case domain.FlagEmulator:
		u.RanInEmulator = true
	case domain.FlagModifiedScore:
		u.HasModifiedScore = true
	}
	return nil
}

func (r *fakeUserRepo) SetAdmin(_ context.Context, id uuid.UUID) error {
	if u, ok := r.users[id]; ok {
		u.Admin = true
	}
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.users, id)
	return nil
}

type fakeTokenRepo struct {
	byValue map[string]*domain.Token
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{byValue: map[string]*domain.Token{}}
}

func (r *fakeTokenRepo) Create(_ context.Context, token *domain.Token) error {
	if _, exists := r.byValue[token.Value]; exists {
		return fmt.Errorf("duplicate token value %q", token.Value)
	}
	cp := *token
	r.byValue[token.Value] = &cp
	return nil
}

func (r *fakeTokenRepo) GetByValue(_ context.Context, value string) (*domain.Token, error) {
	t, ok := r.byValue[value]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}
