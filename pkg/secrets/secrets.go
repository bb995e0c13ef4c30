package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

var (
	ErrEmptyKey         = errors.New("encryption key is empty")
	ErrInvalidCiphertext = errors.New("invalid ciphertext")
)

// Cipher encrypts and decrypts short secrets with AES-256-GCM.
// The key material is derived from the configured passphrase with SHA-256.
type Cipher struct {
	key [32]byte
}

// NewCipher creates a cipher from a passphrase
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, ErrEmptyKey
	}
	return &Cipher{key: sha256.Sum256([]byte(passphrase))}, nil
}

// Encrypt seals a plaintext and returns base64(nonce || ciphertext)
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}

	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func (c *Cipher) Decrypt(encoded string) (string, error) {
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(c.key[:])
	if err != nil {
		return "", err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	if len(sealed) < gcm.NonceSize() {
		return "", ErrInvalidCiphertext
	}

	nonce, ciphertext := sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrInvalidCiphertext
	}

	return string(plaintext), nil
}

// sensitiveKeywords mark map keys whose values must never be returned verbatim
var sensitiveKeywords = []string{"api_key", "apikey", "secret", "token", "password", "key"}

// IsSensitiveKey reports whether a settings key holds secret material
func IsSensitiveKey(key string) bool {
	lower := strings.ToLower(key)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// MaskValue reduces a secret to a masked display form. Values longer than
// 8 characters keep their last 4 characters for recognisability.
func MaskValue(value string) string {
	if value == "" {
		return ""
	}
	if len(value) > 8 {
		return "****" + value[len(value)-4:]
	}
	return "****"
}

// MaskSecrets returns a copy of m with every sensitive string value masked.
// Nested maps are masked recursively.
func MaskSecrets(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}

	masked := make(map[string]any, len(m))
	for k, v := range m {
		switch typed := v.(type) {
		case string:
			if IsSensitiveKey(k) {
				masked[k] = MaskValue(typed)
			} else {
				masked[k] = typed
			}
		case map[string]any:
			masked[k] = MaskSecrets(typed)
		default:
			masked[k] = v
		}
	}
	return masked
}
