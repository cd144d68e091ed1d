package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier turns passwords into their stored form and checks
// presented passwords against it.
type CredentialVerifier interface {
	Hash(password string) (string, error)
	Verify(stored, presented string) bool
}

// PlaintextVerifier stores passwords as given and compares them for exact
// equality. It is the historical behavior and offers no protection for the
// stored credentials.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Hash(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// BcryptVerifier stores bcrypt hashes
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Hash(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(stored, presented string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// NewCredentialVerifier returns the verifier for a scheme name ("plaintext" or "bcrypt")
func NewCredentialVerifier(scheme string) (CredentialVerifier, error) {
	switch scheme {
	case "", "plaintext":
		return PlaintextVerifier{}, nil
	case "bcrypt":
		return BcryptVerifier{}, nil
	default:
		return nil, errors.New("unknown password scheme: " + scheme)
	}
}
