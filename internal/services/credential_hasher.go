package services

import (
	"golang.org/x/crypto/bcrypt"
)

// CredentialHasher is the seam for the password hashing scheme; the platform
// owns the choice of algorithm, the core only verifies through it.
type CredentialHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type bcryptHasher struct {
	cost int
}

func NewBcryptHasher() CredentialHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (b *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (b *bcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
