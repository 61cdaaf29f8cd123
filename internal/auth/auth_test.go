package auth_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/identity"
	"github.com/dsemenov/storefront/internal/memstore"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/profile"
)

func newService(store *memstore.Store) *auth.Service {
	return auth.NewService(store, store, store, store)
}

func TestParseCredentials(t *testing.T) {
	jsonDoc := `{"name":"Ada","username":"ada","password":"s3cret"}`

	tests := []struct {
		name string
		body string
		want auth.Credentials
		ok   bool
	}{
		{
			name: "plain json body",
			body: jsonDoc,
			want: auth.Credentials{Name: "Ada", Username: "ada", Password: "s3cret"},
			ok:   true,
		},
		{
			name: "json document as bare form key",
			body: url.QueryEscape(jsonDoc),
			want: auth.Credentials{Name: "Ada", Username: "ada", Password: "s3cret"},
			ok:   true,
		},
		{
			name: "json document as form key with empty value",
			body: url.Values{jsonDoc: {""}}.Encode(),
			want: auth.Credentials{Name: "Ada", Username: "ada", Password: "s3cret"},
			ok:   true,
		},
		{
			name: "missing password",
			body: `{"username":"ada"}`,
			ok:   false,
		},
		{
			name: "empty body",
			body: "",
			ok:   false,
		},
		{
			name: "unrelated form fields",
			body: "username=ada&password=s3cret",
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := auth.ParseCredentials([]byte(tt.body))
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, auth.Credentials{Name: "Ada", Username: "ada", Password: "s3cret"})
	require.NoError(t, err)
	assert.Equal(t, "ada", u.Username)
	assert.Equal(t, "Ada", u.FirstName)
	assert.NotEqual(t, "s3cret", u.PasswordHash)

	// The empty profile is created alongside the account.
	p, err := store.GetOrCreateProfile(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, p.UserID)

	got, err := svc.Login(ctx, "ada", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Login(ctx, "ada", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret")
	assert.ErrorIs(t, err, auth.ErrUserNotFound)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.Credentials{Username: "ada", Password: "one"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, auth.Credentials{Username: "ada", Password: "two"})
	assert.ErrorIs(t, err, auth.ErrUsernameTaken)
}

func TestChangePassword(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	ctx := context.Background()

	u, err := svc.Register(ctx, auth.Credentials{Username: "ada", Password: "old"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, u.ID, "wrong", "new")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(ctx, u.ID, "old", "new"))

	_, err = svc.Login(ctx, "ada", "old")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "ada", "new")
	assert.NoError(t, err)
}

func TestMergeIdentities(t *testing.T) {
	store := memstore.New()
	svc := newService(store)
	baskets := basket.NewService(store, store)
	profiles := profile.NewService(store, store)
	orders := order.NewService(store, store, store, profiles)
	ctx := context.Background()
	now := time.Date(2026, time.August, 31, 10, 0, 0, 0, time.UTC)

	keyboardID := store.AddProduct(models.Product{Title: "Mechanical keyboard", Price: decimal.NewFromFloat(129.99), Count: 10})
	toteID := store.AddProduct(models.Product{Title: "Canvas tote bag", Price: decimal.NewFromFloat(19.90), Count: 10})

	u, err := svc.Register(ctx, auth.Credentials{Username: "ada", Password: "s3cret"})
	require.NoError(t, err)
	user := identity.Authenticated{UserID: u.ID}

	// The account has an old basket from a previous session.
	_, err = baskets.Add(ctx, user, keyboardID, 1)
	require.NoError(t, err)

	// An anonymous session shops and checks out an order.
	anon := identity.Anonymous{Token: "tok-1"}
	_, err = baskets.Add(ctx, anon, toteID, 2)
	require.NoError(t, err)
	orderID, err := orders.Checkout(ctx, anon, now)
	require.NoError(t, err)
	_, err = baskets.Add(ctx, anon, toteID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.MergeIdentities(ctx, "tok-1", u.ID))

	// Last device wins: the account's old basket is archived, the token's
	// active lines are the account's basket now.
	lines, err := baskets.List(ctx, user)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, toteID, lines[0].ProductID)
	assert.Equal(t, 1, lines[0].Count)

	// Nothing is left under the token.
	anonLines, err := baskets.List(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, anonLines)
	anonOrders, err := orders.List(ctx, anon)
	require.NoError(t, err)
	assert.Empty(t, anonOrders)

	// The anonymous order now belongs to the account.
	_, err = orders.Fetch(ctx, user, orderID)
	assert.NoError(t, err)
}
