// Package utils holds small helpers shared across handlers and middleware.
package utils

import (
    "crypto/subtle"

    "golang.org/x/crypto/bcrypt"
)

// HashAdminToken returns a bcrypt hash of the given token.  Operators run
// the server once with -hash-admin-token to produce it and configure
// ADMIN_TOKEN_HASH instead of keeping the plain token in the environment.
func HashAdminToken(plain string, cost int) (string, error) {
    b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
    if err != nil {
        return "", err
    }
    return string(b), nil
}

// VerifyAdminToken checks a supplied token against the configured
// credential.  When a bcrypt hash is configured it takes precedence;
// otherwise the plain token is compared in constant time.
func VerifyAdminToken(hash, plain, supplied string) bool {
    if supplied == "" {
        return false
    }
    if hash != "" {
        return bcrypt.CompareHashAndPassword([]byte(hash), []byte(supplied)) == nil
    }
    if plain == "" {
        return false
    }
    return subtle.ConstantTimeCompare([]byte(plain), []byte(supplied)) == 1
}
