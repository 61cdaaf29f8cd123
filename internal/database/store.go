package database

import (
	"database/sql"

	"github.com/dsemenov/storefront/internal/identity"
)

// Store implements the repository interfaces of the basket, order, payment,
// auth, profile and catalog packages on top of MySQL. The identity sum type
// is encoded as the pair of nullable owner columns (user_id, token); exactly
// one of the two is set on any basket or order row.
type Store struct {
	db *DB
}

func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// ownerPredicate returns the WHERE fragment and argument selecting rows
// owned by the given identity.
func ownerPredicate(owner identity.Identity) (string, interface{}) {
	switch o := owner.(type) {
	case identity.Authenticated:
		return "user_id = ?", o.UserID
	case identity.Anonymous:
		return "token = ?", o.Token
	}
	return "user_id = ?", int64(0)
}

// ownerValues splits an identity into the nullable owner columns.
func ownerValues(owner identity.Identity) (sql.NullInt64, sql.NullString) {
	switch o := owner.(type) {
	case identity.Authenticated:
		return sql.NullInt64{Int64: o.UserID, Valid: true}, sql.NullString{}
	case identity.Anonymous:
		return sql.NullInt64{}, sql.NullString{String: o.Token, Valid: true}
	}
	return sql.NullInt64{}, sql.NullString{}
}

// decodeOwner rebuilds the identity from the owner columns.
func decodeOwner(userID sql.NullInt64, token sql.NullString) identity.Identity {
	if userID.Valid {
		return identity.Authenticated{UserID: userID.Int64}
	}
	if token.Valid {
		return identity.Anonymous{Token: token.String}
	}
	return nil
}
