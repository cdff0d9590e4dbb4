package util

import (
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Sha256Base64URL: base64url (без паддинга) от sha256(plain). В БД храним
// только хэши одноразовых кодов.
func Sha256Base64URL(plain string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(plain)))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
