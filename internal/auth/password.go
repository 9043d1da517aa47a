package auth

import (
	"errors"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

const (
	SchemeBcrypt   = "bcrypt"
	SchemeArgon2id = "argon2id"

	DefaultBcryptCost = 12
)

var ErrPasswordMismatch = errors.New("password mismatch")

// Hasher creates new password hashes with one scheme and verifies hashes
// of either scheme, so switching PASSWORD_SCHEME keeps old accounts working.
type Hasher struct {
	scheme      string
	bcryptCost  int
	argonParams *argon2id.Params
}

func NewHasher(scheme string) (*Hasher, error) {
	switch scheme {
	case "", SchemeBcrypt:
		return &Hasher{scheme: SchemeBcrypt, bcryptCost: DefaultBcryptCost}, nil
	case SchemeArgon2id:
		return &Hasher{scheme: SchemeArgon2id, argonParams: argon2id.DefaultParams}, nil
	default:
		return nil, errors.New("unknown password scheme " + scheme)
	}
}

// WithBcryptCost returns a copy using cost for new bcrypt hashes. Tests use bcrypt.MinCost.
func (h *Hasher) WithBcryptCost(cost int) *Hasher {
	out := *h
	out.bcryptCost = cost
	return &out
}

func (h *Hasher) Hash(password string) (string, error) {
	if h.scheme == SchemeArgon2id {
		return argon2id.CreateHash(password, h.argonParams)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify returns nil on match and ErrPasswordMismatch otherwise.
// Malformed hashes are reported as mismatches.
func (h *Hasher) Verify(hash, password string) error {
	if strings.HasPrefix(hash, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(password, hash)
		if err != nil || !ok {
			return ErrPasswordMismatch
		}
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}
