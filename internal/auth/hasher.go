package auth

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/base64"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

const legacyDelimiter = ";"

// PasswordHasher hashes new passwords with bcrypt. It also verifies the
// older PBKDF2 format "hash;salt;iterations;algorithm" (base64 hash and
// salt) so existing accounts keep working until they are rehashed.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash creates a bcrypt hash of the password
func (h *PasswordHasher) Hash(plain string) (string, error) {
	out, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (h *PasswordHasher) Verify(token, plain string) bool {
	if token == "" || plain == "" {
		return false
	}
	if isBcrypt(token) {
		return bcrypt.CompareHashAndPassword([]byte(token), []byte(plain)) == nil
	}
	return verifyLegacy(token, plain)
}

// NeedsRehash is true for legacy hashes and bcrypt hashes below the
// configured cost.
func (h *PasswordHasher) NeedsRehash(token string) bool {
	if !isBcrypt(token) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(token))
	return err != nil || cost < h.cost
}

func isBcrypt(token string) bool {
	return strings.HasPrefix(token, "$2")
}

var legacyAlgorithms = map[string]func() hash.Hash{
	"SHA1":   sha1.New,
	"SHA256": sha256.New,
	"SHA512": sha512.New,
}

func verifyLegacy(token, plain string) bool {
	parts := strings.Split(token, legacyDelimiter)
	if len(parts) != 4 {
		return false
	}
	want, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil || len(want) == 0 {
		return false
	}
	salt, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return false
	}
	iterations, err := strconv.Atoi(parts[2])
	if err != nil || iterations < 1 {
		return false
	}
	newHash, ok := legacyAlgorithms[strings.ToUpper(parts[3])]
	if !ok {
		return false
	}

	got := pbkdf2.Key([]byte(plain), salt, iterations, len(want), newHash)
	return subtle.ConstantTimeCompare(want, got) == 1
}
