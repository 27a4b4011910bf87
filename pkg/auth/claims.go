package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	TenantID    uuid.UUID
	BranchID    *uuid.UUID
	CashierName string
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to POS clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID  `json:"user_id"`
	TenantID    uuid.UUID  `json:"tenant_id"`
	BranchID    *uuid.UUID `json:"branch_id,omitempty"`
	CashierName string     `json:"cashier_name,omitempty"`
	jwt.RegisteredClaims
}
