package models

import "github.com/golang-jwt/jwt/v5"

// AccountClaims identifies the calling account on authenticated routes.
// Token issuance lives outside this service; only verification happens here.
type AccountClaims struct {
	AccountID uint64 `json:"account_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
