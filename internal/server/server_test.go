package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsemenov/storefront/internal/auth"
	"github.com/dsemenov/storefront/internal/basket"
	"github.com/dsemenov/storefront/internal/catalog"
	"github.com/dsemenov/storefront/internal/memstore"
	"github.com/dsemenov/storefront/internal/models"
	"github.com/dsemenov/storefront/internal/order"
	"github.com/dsemenov/storefront/internal/payment"
	"github.com/dsemenov/storefront/internal/profile"
	"github.com/dsemenov/storefront/internal/server"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

// client drives the API as one browser session: the cookie jar replays the
// session cookie across requests.
type client struct {
	t    *testing.T
	http *http.Client
	base string
}

type testEnv struct {
	store  *memstore.Store
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memstore.New()
	profiles := profile.NewService(store, store)
	deps := server.Deps{
		Baskets:  basket.NewService(store, store),
		Orders:   order.NewService(store, store, store, profiles),
		Payments: payment.NewService(store),
		Auth:     auth.NewService(store, store, store, store),
		Profiles: profiles,
		Catalog:  catalog.NewService(store),
	}
	srv := httptest.NewServer(server.NewServer("test-secret", deps).Handler())
	t.Cleanup(srv.Close)
	return &testEnv{store: store, server: srv}
}

func (e *testEnv) newClient(t *testing.T) *client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &client{
		t:    t,
		http: &http.Client{Jar: jar},
		base: e.server.URL,
	}
}

func (c *client) do(method, path string, body interface{}) *http.Response {
	c.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, c.base+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	return resp
}

func (c *client) doJSON(method, path string, body, out interface{}) int {
	c.t.Helper()
	resp := c.do(method, path, body)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(c.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type itemPayload struct {
	ID    int64           `json:"id"`
	Title string          `json:"title"`
	Price decimal.Decimal `json:"price"`
	Count int             `json:"count"`
}

type orderResponse struct {
	ID        int64           `json:"id"`
	FullName  string          `json:"fullName"`
	TotalCost decimal.Decimal `json:"totalCost"`
	Status    string          `json:"status"`
	Products  []itemPayload   `json:"products"`
}

func seedKettle(store *memstore.Store, count int) int64 {
	return store.AddProduct(models.Product{
		Title: "Pour-over kettle",
		Price: decimal.NewFromFloat(45.00),
		Count: count,
	})
}

func TestBasketEmptyForFreshSession(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	var items []itemPayload
	status := c.doJSON(http.MethodGet, "/api/basket", nil, &items)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, items)
}

func TestBasketCheckoutPayFlow(t *testing.T) {
	env := newTestEnv(t)
	productID := seedKettle(env.store, 10)
	c := env.newClient(t)

	// Add to basket; the response is the refreshed basket.
	var items []itemPayload
	status := c.doJSON(http.MethodPost, "/api/basket",
		gin.H{"id": productID, "count": 3}, &items)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Count)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("45")))

	// Checkout converts the basket into an order.
	var created struct {
		OrderID int64 `json:"orderId"`
	}
	status = c.doJSON(http.MethodPost, "/api/orders", nil, &created)
	require.Equal(t, http.StatusOK, status)
	require.NotZero(t, created.OrderID)

	status = c.doJSON(http.MethodGet, "/api/basket", nil, &items)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items, "checkout consumes the basket")

	orderPath := "/api/order/" + itoa(created.OrderID)

	var detail orderResponse
	status = c.doJSON(http.MethodGet, orderPath, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "created", detail.Status)
	assert.True(t, detail.TotalCost.Equal(decimal.RequireFromString("135")),
		"total %s", detail.TotalCost)

	// Confirm with contact and delivery details.
	status = c.doJSON(http.MethodPost, orderPath, gin.H{
		"fullName":     "Ada Lovelace",
		"email":        "ada@example.com",
		"phone":        "+1234567",
		"deliveryType": "ordinary",
		"paymentType":  "online",
		"city":         "London",
		"address":      "12 St James Sq",
	}, nil)
	require.Equal(t, http.StatusOK, status)

	// Pay with the magic even card number.
	resp := c.do(http.MethodPost, "/api/payment/"+itoa(created.OrderID), gin.H{
		"number": "12345678",
		"name":   "ADA LOVELACE",
		"month":  "12",
		"year":   "29",
		"code":   "123",
	})
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	status = c.doJSON(http.MethodGet, orderPath, nil, &detail)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "paid", detail.Status)
	assert.Equal(t, "Ada Lovelace", detail.FullName)

	stock, err := env.store.ProductByID(context.Background(), productID)
	require.NoError(t, err)
	assert.Equal(t, 7, stock.Count)
}

func TestPaymentRejectionIsSurfaced(t *testing.T) {
	env := newTestEnv(t)
	productID := seedKettle(env.store, 10)
	c := env.newClient(t)

	status := c.doJSON(http.MethodPost, "/api/basket", gin.H{"id": productID, "count": 1}, nil)
	require.Equal(t, http.StatusOK, status)
	var created struct {
		OrderID int64 `json:"orderId"`
	}
	status = c.doJSON(http.MethodPost, "/api/orders", nil, &created)
	require.Equal(t, http.StatusOK, status)

	var errBody struct {
		Error string `json:"error"`
	}
	status = c.doJSON(http.MethodPost, "/api/payment/"+itoa(created.OrderID), gin.H{
		"number": "12345677",
		"name":   "ADA LOVELACE",
		"month":  "12",
		"year":   "29",
		"code":   "123",
	}, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Invalid card number", errBody.Error)
}

func TestCheckoutWithEmptyBasket(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	// Touch the basket so the session holds an identity.
	productID := seedKettle(env.store, 5)
	status := c.doJSON(http.MethodPost, "/api/basket", gin.H{"id": productID, "count": 1}, nil)
	require.Equal(t, http.StatusOK, status)
	status = c.doJSON(http.MethodDelete, "/api/basket", gin.H{"id": productID, "count": 1}, nil)
	require.Equal(t, http.StatusOK, status)

	var errBody struct {
		Error string `json:"error"`
	}
	status = c.doJSON(http.MethodPost, "/api/orders", nil, &errBody)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Incorrect data", errBody.Error)
}

func TestSignUpMergesAnonymousBasket(t *testing.T) {
	env := newTestEnv(t)
	productID := seedKettle(env.store, 10)
	c := env.newClient(t)

	status := c.doJSON(http.MethodPost, "/api/basket", gin.H{"id": productID, "count": 2}, nil)
	require.Equal(t, http.StatusOK, status)

	status = c.doJSON(http.MethodPost, "/api/sign-up",
		gin.H{"name": "Ada", "username": "ada", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, status)

	// The anonymous basket followed the shopper into the account.
	var items []itemPayload
	status = c.doJSON(http.MethodGet, "/api/basket", nil, &items)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)

	// Signing out leaves the account's basket behind.
	status = c.doJSON(http.MethodPost, "/api/sign-out", nil, nil)
	require.Equal(t, http.StatusOK, status)
	status = c.doJSON(http.MethodGet, "/api/basket", nil, &items)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, items)

	// Signing back in restores it.
	status = c.doJSON(http.MethodPost, "/api/sign-in",
		gin.H{"username": "ada", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, status)
	status = c.doJSON(http.MethodGet, "/api/basket", nil, &items)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)
}

func TestSignInUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	resp := c.do(http.MethodPost, "/api/sign-in", gin.H{"username": "nobody", "password": "x"})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestProfileRequiresLogin(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	var errBody struct {
		Error string `json:"error"`
	}
	status := c.doJSON(http.MethodGet, "/api/profile", nil, &errBody)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Authentication Error", errBody.Error)
}

func TestProfileRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	c := env.newClient(t)

	status := c.doJSON(http.MethodPost, "/api/sign-up",
		gin.H{"name": "Ada", "username": "ada", "password": "s3cret"}, nil)
	require.Equal(t, http.StatusOK, status)

	var p struct {
		FullName string `json:"fullName"`
		Email    string `json:"email"`
		Phone    string `json:"phone"`
	}
	status = c.doJSON(http.MethodPost, "/api/profile", gin.H{
		"fullName": "Ada Lovelace",
		"email":    "ada@example.com",
		"phone":    "+1234567",
	}, &p)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Ada Lovelace", p.FullName)

	status = c.doJSON(http.MethodGet, "/api/profile", nil, &p)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ada@example.com", p.Email)
}

func TestOrderHiddenFromOtherSessions(t *testing.T) {
	env := newTestEnv(t)
	productID := seedKettle(env.store, 10)

	owner := env.newClient(t)
	status := owner.doJSON(http.MethodPost, "/api/basket", gin.H{"id": productID, "count": 1}, nil)
	require.Equal(t, http.StatusOK, status)
	var created struct {
		OrderID int64 `json:"orderId"`
	}
	status = owner.doJSON(http.MethodPost, "/api/orders", nil, &created)
	require.Equal(t, http.StatusOK, status)

	stranger := env.newClient(t)
	// The stranger needs an identity of their own to get past the guard.
	status = stranger.doJSON(http.MethodPost, "/api/basket", gin.H{"id": productID, "count": 1}, nil)
	require.Equal(t, http.StatusOK, status)

	resp := stranger.do(http.MethodGet, "/api/order/"+itoa(created.OrderID), nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCatalogEndpoints(t *testing.T) {
	env := newTestEnv(t)
	weekAgo := time.Now().AddDate(0, 0, -7)
	nextWeek := time.Now().AddDate(0, 0, 7)
	dockID := env.store.AddProduct(models.Product{
		Title:    "USB-C dock",
		Price:    decimal.NewFromFloat(100.00),
		Count:    10,
		Discount: decimal.NewFromFloat(15.0),
		DateFrom: &weekAgo,
		DateTo:   &nextWeek,
	})
	env.store.AddTag("electronics", dockID)
	c := env.newClient(t)

	var product struct {
		ID    int64           `json:"id"`
		Price decimal.Decimal `json:"price"`
		Tags  []models.Tag    `json:"tags"`
	}
	status := c.doJSON(http.MethodGet, "/api/product/"+itoa(dockID), nil, &product)
	require.Equal(t, http.StatusOK, status)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("85")),
		"effective price %s", product.Price)
	require.Len(t, product.Tags, 1)
	assert.Equal(t, "electronics", product.Tags[0].Name)

	var page struct {
		Items       []itemPayload `json:"items"`
		CurrentPage int           `json:"currentPage"`
		LastPage    int           `json:"lastPage"`
	}
	status = c.doJSON(http.MethodGet, "/api/catalog?filter[name]=dock", nil, &page)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, page.Items, 1)
	assert.Equal(t, dockID, page.Items[0].ID)

	var sales struct {
		Items []struct {
			ID        int64           `json:"id"`
			Price     decimal.Decimal `json:"price"`
			SalePrice decimal.Decimal `json:"salePrice"`
		} `json:"items"`
	}
	status = c.doJSON(http.MethodGet, "/api/sales", nil, &sales)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, sales.Items, 1)
	assert.True(t, sales.Items[0].SalePrice.Equal(decimal.RequireFromString("85")))

	resp := c.do(http.MethodGet, "/api/product/999", nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAddReviewEndpoint(t *testing.T) {
	env := newTestEnv(t)
	productID := seedKettle(env.store, 5)
	c := env.newClient(t)

	var reviews []struct {
		Author string `json:"author"`
		Rate   int    `json:"rate"`
	}
	status := c.doJSON(http.MethodPost, "/api/product/"+itoa(productID)+"/reviews", gin.H{
		"author": "",
		"email":  "ada@example.com",
		"text":   "Pours well",
		"rate":   5,
	}, &reviews)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, reviews, 1)
	assert.Equal(t, "Anonymous", reviews[0].Author)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
