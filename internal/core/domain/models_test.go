package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenIsValid(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)
	farFuture := now.AddDate(1000, 0, 0)

	tests := []struct {
		name      string
		expiresAt *time.Time
		want      bool
	}{
		{"nil expiry never expires", nil, true},
		{"future expiry valid", &future, true},
		{"far-future expiry valid", &farFuture, true},
		{"past expiry invalid", &past, false},
		{"expiry exactly now invalid", &now, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := Token{Value: "v", ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, tok.IsValid(now))
		})
	}
}

func TestUserPublicProjection(t *testing.T) {
	reason := "Cheating (Anticheat)"
	u := User{
		Name:         "plank",
		Score:        1200,
		Deaths:       34,
		PasswordHash: "$2a$10$secret",
		IsBanned:     true,
		BanReason:    &reason,
		Admin:        true,
	}

	pub := u.Public()
	assert.Equal(t, "plank", pub.Name)
	assert.EqualValues(t, 1200, pub.Score)
	assert.EqualValues(t, 34, pub.Deaths)
}

func TestSessionSourceString(t *testing.T) {
	assert.Equal(t, "signup", SourceSignup.String())
	assert.Equal(t, "login", SourceLogin.String())
	assert.Equal(t, "unknown", SessionSource(99).String())
}
