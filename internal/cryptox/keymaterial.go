// Package cryptox implements the score-integrity primitives for the
// leaderboard: the AES-256-CBC codec the game client and server share, the
// integer transport encoding used to move scores over the wire, and the
// verification-token transform used to detect tampered submissions.
package cryptox

import (
	"crypto/aes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// IVSize is the AES block size, and therefore the CBC IV length.
	IVSize = aes.BlockSize

	kdfIterations = 4096
	kdfSalt       = "flappybirdisthebest"
)

// ErrInvalidKeyMaterial indicates the configured key string does not decode
// to exactly key-size + iv-size bytes.
var ErrInvalidKeyMaterial = errors.New("invalid key material")

// KeyMaterial holds the process-wide AES key and CBC IV. It is parsed once
// at startup and must not be mutated afterwards; callers share it without
// synchronization on that basis.
//
// The IV is static across all operations. That is a deliberate wire-format
// compatibility constraint with deployed game clients, not an oversight; a
// per-message random IV would require a versioned format change.
type KeyMaterial struct {
	Key []byte
	IV  []byte
}

// ParseKeyMaterial decodes a hex string of the form key‖iv (64 hex chars of
// key followed by 32 of IV). A trailing newline-sized slop of one character
// is tolerated because provisioning tools historically emitted one.
func ParseKeyMaterial(s string) (KeyMaterial, error) {
	if len(s) < 2*(KeySize+IVSize) || len(s) > 2*(KeySize+IVSize)+1 {
		return KeyMaterial{}, fmt.Errorf("%w: got %d characters, want %d", ErrInvalidKeyMaterial, len(s), 2*(KeySize+IVSize))
	}

	key, err := hex.DecodeString(s[:2*KeySize])
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("%w: key is not hex: %v", ErrInvalidKeyMaterial, err)
	}
	iv, err := hex.DecodeString(s[2*KeySize : 2*(KeySize+IVSize)])
	if err != nil {
		return KeyMaterial{}, fmt.Errorf("%w: iv is not hex: %v", ErrInvalidKeyMaterial, err)
	}

	return KeyMaterial{Key: key, IV: iv}, nil
}

// String renders the material back to the configuration form.
func (k KeyMaterial) String() string {
	return hex.EncodeToString(k.Key) + hex.EncodeToString(k.IV)
}

// GenerateKeyMaterial produces fresh key material for offline provisioning.
// The key is derived from a random password via PBKDF2-SHA256 and the IV is
// drawn directly from the randomness source. Not used on the request path.
func GenerateKeyMaterial(rnd io.Reader) (KeyMaterial, error) {
	password := make([]byte, 10)
	if _, err := io.ReadFull(rnd, password); err != nil {
		return KeyMaterial{}, fmt.Errorf("read random password: %w", err)
	}

	key := pbkdf2.Key(password, []byte(kdfSalt), kdfIterations, KeySize, sha256.New)

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(rnd, iv); err != nil {
		return KeyMaterial{}, fmt.Errorf("read random iv: %w", err)
	}

	return KeyMaterial{Key: key, IV: iv}, nil
}

// NewRandomKeyMaterial is GenerateKeyMaterial over crypto/rand.
func NewRandomKeyMaterial() (KeyMaterial, error) {
	return GenerateKeyMaterial(rand.Reader)
}
