package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrDecrypt indicates ciphertext that is the wrong length for the
	// cipher or carries invalid padding. The cause is never surfaced to
	// clients; handlers collapse it to a generic rejection.
	ErrDecrypt = errors.New("decryption failed")

	// ErrDecode indicates a transport-level failure while decoding an
	// encrypted integer: bad base64, bad ciphertext, or a decrypted
	// payload of the wrong width.
	ErrDecode = errors.New("decode failed")
)

// Codec is the symmetric codec shared with the game client. All methods are
// pure transforms over the injected key material and are safe for
// concurrent use.
type Codec struct {
	km KeyMaterial
}

// NewCodec builds a Codec over the given key material. It fails if the key
// is not a valid AES-256 key or the IV is not one block wide.
func NewCodec(km KeyMaterial) (*Codec, error) {
	if len(km.Key) != KeySize {
		return nil, fmt.Errorf("%w: key is %d bytes, want %d", ErrInvalidKeyMaterial, len(km.Key), KeySize)
	}
	if len(km.IV) != IVSize {
		return nil, fmt.Errorf("%w: iv is %d bytes, want %d", ErrInvalidKeyMaterial, len(km.IV), IVSize)
	}
	return &Codec{km: km}, nil
}

// Encrypt applies PKCS#7 padding and encrypts under AES-256-CBC.
func (c *Codec) Encrypt(plaintext []byte) ([]byte, error) {
	block, err := aes.NewCipher(c.km.Key)
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.km.IV).CryptBlocks(out, padded)
	return out, nil
}

// Decrypt reverses Encrypt. It fails closed: a ciphertext that is empty,
// not a multiple of the block size, or padded incorrectly yields ErrDecrypt
// rather than a truncated plaintext.
func (c *Codec) Decrypt(ciphertext []byte) ([]byte, error) {
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a block multiple", ErrDecrypt, len(ciphertext))
	}

	block, err := aes.NewCipher(c.km.Key)
	if err != nil {
		return nil, err
	}

	padded := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, c.km.IV).CryptBlocks(padded, ciphertext)

	plaintext, err := pkcs7Unpad(padded, aes.BlockSize)
	if err != nil {
		return nil, err
	}
	return plaintext, nil
}

// EncodeInt encrypts a 64-bit integer into its transport form: fixed-width
// little-endian bytes, CBC-encrypted, base64.
func (c *Codec) EncodeInt(v int64) (string, error) {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))

	ct, err := c.Encrypt(buf)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// DecodeInt reverses EncodeInt. A decrypted payload that is not exactly
// eight bytes is rejected rather than reinterpreted.
func (c *Codec) DecodeInt(s string) (int64, error) {
	ct, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	buf, err := c.Decrypt(ct)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if len(buf) != 8 {
		return 0, fmt.Errorf("%w: plaintext is %d bytes, want 8", ErrDecode, len(buf))
	}

	return int64(binary.LittleEndian.Uint64(buf)), nil
}

// ScoreToken computes the verification token a legitimate client attaches
// to a score submission: the encrypted concatenation of score and elapsed
// time, base64-encoded. Deterministic under the static IV.
func (c *Codec) ScoreToken(score, elapsed int64) (string, error) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint64(buf[:8], uint64(score))
	binary.LittleEndian.PutUint64(buf[8:], uint64(elapsed))

	ct, err := c.Encrypt(buf)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(ct), nil
}

// VerifyScore reports whether token matches the server-side recomputation
// for the claimed score and elapsed time. Comparison is constant-time.
func (c *Codec) VerifyScore(score, elapsed int64, token string) bool {
	want, err := c.ScoreToken(score, elapsed)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(want), []byte(token)) == 1
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(append([]byte{}, data...), bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("%w: bad padded length %d", ErrDecrypt, len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("%w: bad padding byte", ErrDecrypt)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("%w: inconsistent padding", ErrDecrypt)
		}
	}
	return data[:len(data)-n], nil
}
