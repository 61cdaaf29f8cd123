package auth

import "context"

// BasketMerger re-owns basket lines during the identity merge.
type BasketMerger interface {
	// ArchiveActiveLines archives the user's current non-archived lines.
	ArchiveActiveLines(ctx context.Context, userID int64) error
	// ReassignLines moves the token's non-archived lines to the user.
	ReassignLines(ctx context.Context, token string, userID int64) error
}

// OrderMerger re-owns orders during the identity merge.
type OrderMerger interface {
	// ReassignOrders moves all of the token's orders, whatever their
	// status, to the user.
	ReassignOrders(ctx context.Context, token string, userID int64) error
}

// MergeIdentities folds a session token's anonymous shopping history into a
// freshly authenticated account:
//
//  1. the user's own pre-existing active basket is archived, not merged —
//     the last device to log in wins;
//  2. the token's active basket lines are re-owned to the user;
//  3. the token's orders are re-owned to the user.
//
// The login flow treats a merge failure as best-effort: it is reported but
// never rolls the login back.
func (s *Service) MergeIdentities(ctx context.Context, token string, userID int64) error {
	if err := s.baskets.ArchiveActiveLines(ctx, userID); err != nil {
		return err
	}
	if err := s.baskets.ReassignLines(ctx, token, userID); err != nil {
		return err
	}
	return s.orders.ReassignOrders(ctx, token, userID)
}
