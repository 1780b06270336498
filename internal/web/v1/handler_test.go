package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openflappy/leaderboard-service/internal/core/domain"
	"github.com/openflappy/leaderboard-service/internal/cryptox"
	logicv1 "github.com/openflappy/leaderboard-service/internal/logic/v1"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f" +
	"77665544332211000011223344556677"

// stubUsers overrides only the methods the routed flows touch; anything
// else panics through the embedded nil interface, which is exactly what a
// test escaping its intended surface deserves.
type stubUsers struct {
	domain.UserRepository
	byID map[uuid.UUID]*domain.User
}

func (s *stubUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *stubUsers) GetByName(_ context.Context, name string) (*domain.User, error) {
	for _, u := range s.byID {
		if u.Name == name {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *stubUsers) UpdateScoreIfHigher(_ context.Context, id uuid.UUID, newScore int64) (bool, error) {
	u := s.byID[id]
	if u.Score >= newScore {
		return false, nil
	}
	u.Score = newScore
	return true, nil
}

func (s *stubUsers) SetBan(_ context.Context, id uuid.UUID, banned bool, reason *string) error {
	s.byID[id].IsBanned = banned
	s.byID[id].BanReason = reason
	return nil
}

type stubTokens struct {
	domain.TokenRepository
	byValue map[string]*domain.Token
}

func (s *stubTokens) Create(_ context.Context, t *domain.Token) error {
	cp := *t
	s.byValue[t.Value] = &cp
	return nil
}

func (s *stubTokens) GetByValue(_ context.Context, value string) (*domain.Token, error) {
	t, ok := s.byValue[value]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

type webFixture struct {
	router *gin.Engine
	users  *stubUsers
	codec  *cryptox.Codec
	player *domain.User
}

func newWebFixture(t *testing.T) *webFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	km, err := cryptox.ParseKeyMaterial(testKeyHex)
	require.NoError(t, err)
	codec, err := cryptox.NewCodec(km)
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.MinCost)
	require.NoError(t, err)
	player := &domain.User{ID: uuid.New(), Name: "plank", PasswordHash: string(hash)}

	users := &stubUsers{byID: map[uuid.UUID]*domain.User{player.ID: player}}
	tokens := &stubTokens{byValue: map[string]*domain.Token{}}

	auth := logicv1.NewAuthService(users, tokens, time.Hour)
	scores := logicv1.NewScoreService(users, codec, 100, 1000)
	admin := logicv1.NewAdminService(users)

	router := gin.New()
	NewHandler(auth, scores, admin).RegisterRoutes(router)

	return &webFixture{router: router, users: users, codec: codec, player: player}
}

func (f *webFixture) login(t *testing.T) string {
	t.Helper()
	body, _ := json.Marshal(domain.LoginRequest{Name: "plank", Password: "password1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp domain.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	require.Equal(t, "login", resp.Source)
	return resp.Token
}

func (f *webFixture) submit(t *testing.T, token string, payload domain.SubmitScoreRequest) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submitScore", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	f.router.ServeHTTP(w, req)
	return w
}

func (f *webFixture) payload(t *testing.T, score, elapsed int64) domain.SubmitScoreRequest {
	t.Helper()
	encScore, err := f.codec.EncodeInt(score)
	require.NoError(t, err)
	encTime, err := f.codec.EncodeInt(elapsed)
	require.NoError(t, err)
	verify, err := f.codec.ScoreToken(score, elapsed)
	require.NoError(t, err)
	return domain.SubmitScoreRequest{Score: encScore, Time: encTime, Verify: verify}
}

func TestSubmitScore_EndToEnd(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	w := f.submit(t, token, f.payload(t, 150, 140))
	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"status":"accepted"}`, w.Body.String())
	assert.EqualValues(t, 150, f.users.byID[f.player.ID].Score)
}

func TestSubmitScore_BanOverWire(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	w := f.submit(t, token, f.payload(t, 5000, 100))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "banned")
	assert.True(t, f.users.byID[f.player.ID].IsBanned)
}

func TestSubmitScore_TamperedPayloadRejected(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	payload := f.payload(t, 150, 140)
	payload.Verify = "AAAAAAAAAAAAAAAAAAAAAA=="

	w := f.submit(t, token, payload)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Unable to verify score")
	assert.Zero(t, f.users.byID[f.player.ID].Score)
}

func TestSubmitScore_RequiresAuth(t *testing.T) {
	f := newWebFixture(t)

	w := f.submit(t, "", f.payload(t, 150, 140))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.submit(t, "bogus-token", f.payload(t, 150, 140))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newWebFixture(t)

	body, _ := json.Marshal(domain.LoginRequest{Name: "plank", Password: "wrongwrong"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid credentials")
}

func TestMe(t *testing.T) {
	f := newWebFixture(t)
	token := f.login(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var pub domain.PublicUser
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pub))
	assert.Equal(t, "plank", pub.Name)
}
