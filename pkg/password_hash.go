package pkg

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hash cost trades login latency for brute force resistance
const passwordHashCost = 14

func HashPassword(secret string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(secret), passwordHashCost)
	if err != nil {
		return "", fmt.Errorf("generate password hash: %w", err)
	}
	return BytesToString(hashed), nil
}

func CheckPasswordHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
