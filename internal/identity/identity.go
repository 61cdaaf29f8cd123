// Package identity resolves who a request belongs to: an authenticated user
// or an anonymous shopper identified by an opaque session token. Baskets and
// orders are always scoped to one of the two.
package identity

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// Identity is the owner key for baskets and orders. It is a closed union:
// the only implementations are Anonymous and Authenticated.
type Identity interface {
	isIdentity()
}

// Anonymous identifies a shopper by the opaque token minted for their session.
type Anonymous struct {
	Token string
}

// Authenticated identifies a shopper by their account.
type Authenticated struct {
	UserID int64
}

func (Anonymous) isIdentity()     {}
func (Authenticated) isIdentity() {}

// NewToken mints a random 128-bit token, hex-encoded.
func NewToken() string {
	u := uuid.New()
	return hex.EncodeToString(u[:])
}
