package stub

import (
	"crypto/rand"
	"crypto/rsa"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mindmesh/console/internal/domain"
)

// Issuer signs and verifies RS256 access tokens for the stub, mirroring the
// shape of the production token service so the client cannot tell them apart.
type Issuer struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
}

// NewIssuer builds an issuer from PEM key material. With empty material it
// generates an ephemeral 2048-bit pair; fine for a stub, tokens just do not
// survive a restart.
func NewIssuer(privatePEM, publicPEM []byte, ttl time.Duration) (*Issuer, error) {
	if len(privatePEM) == 0 {
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return nil, fmt.Errorf("stub: generate ephemeral key: %w", err)
		}
		return &Issuer{privateKey: key, publicKey: &key.PublicKey, ttl: ttl}, nil
	}

	priv, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("stub: parse private key: %w", err)
	}
	pub := &priv.PublicKey
	if len(publicPEM) > 0 {
		if pub, err = jwt.ParseRSAPublicKeyFromPEM(publicPEM); err != nil {
			return nil, fmt.Errorf("stub: parse public key: %w", err)
		}
	}
	return &Issuer{privateKey: priv, publicKey: pub, ttl: ttl}, nil
}

// Grant issues the login/register envelope for a user.
func (i *Issuer) Grant(u *domain.User) (*domain.TokenGrant, error) {
	expiresAt := time.Now().Add(i.ttl)
	claims := &domain.AccessClaims{
		UserID:   u.ID,
		TenantID: u.TenantID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "mindmesh-stub",
			Subject:   u.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(i.privateKey)
	if err != nil {
		return nil, fmt.Errorf("stub: sign token: %w", err)
	}

	// The stub does not implement rotation; the refresh token is a signed
	// token with the same claims so the envelope stays contract-complete.
	refresh, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(i.privateKey)
	if err != nil {
		return nil, fmt.Errorf("stub: sign refresh token: %w", err)
	}

	return &domain.TokenGrant{
		AccessToken:  signed,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(time.Until(expiresAt).Seconds()),
		User:         u,
	}, nil
}

// VerifyToken checks an RS256 token and returns its claims.
func (i *Issuer) VerifyToken(tokenStr string) (*domain.AccessClaims, error) {
	tokenStr = strings.TrimSpace(strings.TrimPrefix(tokenStr, "Bearer "))

	token, err := jwt.ParseWithClaims(tokenStr, &domain.AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return i.publicKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(*domain.AccessClaims)
	if !ok {
		return nil, fmt.Errorf("invalid claims")
	}
	return claims, nil
}
