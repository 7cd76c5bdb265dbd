// Package capauth realizes the external capability authority as signed
// bearer tokens. A token is minted once when a store is created and
// embeds the capability id; transferring the token transfers store
// ownership. The ledger core itself only ever compares the presented
// capability id against the store's recorded one.
package capauth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/pkg/config"
)

var jwtSigningMethod = jwt.SigningMethodHS256

// CapabilityClaims is the typed token bound to one store.
type CapabilityClaims struct {
	CapabilityID uuid.UUID `json:"capability_id"`
	StoreID      uuid.UUID `json:"store_id"`
	jwt.RegisteredClaims
}

// MintCapabilityToken issues the signed owner credential for a store.
// Tokens carry no expiry: possession is the whole authorization model.
func MintCapabilityToken(cfg config.CapabilityConfig, now time.Time, capabilityID, storeID uuid.UUID) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("capability secret is required")
	}
	if cfg.Issuer == "" {
		return "", fmt.Errorf("capability issuer is required")
	}
	if capabilityID == uuid.Nil {
		return "", fmt.Errorf("capability id is required")
	}
	if storeID == uuid.Nil {
		return "", fmt.Errorf("store id is required")
	}

	claims := CapabilityClaims{
		CapabilityID: capabilityID,
		StoreID:      storeID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   cfg.Issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwtSigningMethod, claims)
	signed, err := token.SignedString([]byte(cfg.Secret))
	if err != nil {
		return "", fmt.Errorf("signing capability token: %w", err)
	}
	return signed, nil
}

// ParseCapabilityToken validates the token string and returns typed claims.
func ParseCapabilityToken(cfg config.CapabilityConfig, tokenString string) (*CapabilityClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("capability secret is required")
	}

	claims := &CapabilityClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwtSigningMethod {
				return nil, fmt.Errorf("unexpected signing method %s", token.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		},
		jwt.WithValidMethods([]string{jwtSigningMethod.Alg()}),
		jwt.WithIssuer(cfg.Issuer),
	)
	if err != nil {
		return nil, err
	}
	if claims.CapabilityID == uuid.Nil || claims.StoreID == uuid.Nil {
		return nil, fmt.Errorf("capability token missing identifiers")
	}

	return claims, nil
}
