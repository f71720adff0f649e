package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/healthintel/snowbridge/pkg/errors"
)

// Token lifetime mandated by the analyst endpoint's key-pair scheme.
const tokenLifetime = 59 * time.Minute

// TokenIssuer mints short-lived key-pair JWTs for analyst calls. Tokens
// are never cached; every call gets a fresh one.
type TokenIssuer struct {
	account string
	user    string
	key     *rsa.PrivateKey
	now     func() time.Time
}

// NewTokenIssuer creates an issuer bound to an account, user, and
// signing key.
func NewTokenIssuer(account, user string, key *rsa.PrivateKey) *TokenIssuer {
	return &TokenIssuer{
		account: account,
		user:    user,
		key:     key,
		now:     time.Now,
	}
}

// Issue returns a signed RS256 bearer assertion whose issuer binds the
// normalized account, uppercased user, and public-key fingerprint.
func (t *TokenIssuer) Issue() (string, error) {
	fingerprint, err := PublicKeyFingerprint(t.key)
	if err != nil {
		return "", apperrors.NewAuthError("could not compute public key fingerprint", err)
	}

	account := NormalizeAccount(t.account)
	user := strings.ToUpper(t.user)
	qualifiedUser := fmt.Sprintf("%s.%s", account, user)

	now := t.now().UTC()
	claims := jwt.MapClaims{
		"iss": fmt.Sprintf("%s.%s", qualifiedUser, fingerprint),
		"sub": qualifiedUser,
		"iat": now.Unix(),
		"exp": now.Add(tokenLifetime).Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(t.key)
	if err != nil {
		return "", apperrors.NewAuthError("could not sign key-pair token", err)
	}
	return signed, nil
}

// NormalizeAccount derives the account identifier expected in key-pair
// token subjects: unless the account carries a ".global" region, the
// first dot and everything after it is dropped; remaining dots become
// hyphens and the result is uppercased.
func NormalizeAccount(account string) string {
	if !strings.Contains(account, ".global") {
		if idx := strings.Index(account, "."); idx > 0 {
			account = account[:idx]
		}
	}
	return strings.ToUpper(strings.ReplaceAll(account, ".", "-"))
}

// PublicKeyFingerprint returns "SHA256:" plus the base64-encoded SHA-256
// digest of the DER-encoded public key.
func PublicKeyFingerprint(key *rsa.PrivateKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(der)
	return "SHA256:" + base64.StdEncoding.EncodeToString(sum[:]), nil
}
