package service

import "golang.org/x/crypto/bcrypt"

const bcryptCost = 10

// PasswordHasher aplica bcrypt a passwords y secretos en reposo.
type PasswordHasher struct{}

func (PasswordHasher) Hash(secret string) (string, error) {
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// Verify devuelve false ante cualquier falla, incluido un hash malformado.
func (PasswordHasher) Verify(secret, hashedSecret string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret)) == nil
}
