package domain

// LoginRequest carries the credentials presented at login.
type LoginRequest struct {
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest carries a signup attempt. Password rules are enforced in
// the logic layer so they surface as field-level validation errors rather
// than binding failures.
type RegisterRequest struct {
	Name            string `json:"name" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

// AuthResponse is returned from login and signup: the public user plus the
// bearer token the client must attach to subsequent requests.
type AuthResponse struct {
	User   PublicUser `json:"user"`
	Token  string     `json:"token"`
	Source string     `json:"source"`
}

// SubmitScoreRequest is the score submission payload. Score and Time are
// base64 ciphertexts of encrypted integers; Verify is the client-computed
// verification token over both.
type SubmitScoreRequest struct {
	Score  string `json:"score" binding:"required"`
	Time   string `json:"time" binding:"required"`
	Verify string `json:"verify" binding:"required"`
}
