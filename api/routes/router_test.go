package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medimall/medimall-backend/internal/cart"
	"github.com/medimall/medimall-backend/internal/catalog"
	"github.com/medimall/medimall-backend/internal/payments"
	"github.com/medimall/medimall-backend/internal/users"
	"github.com/medimall/medimall-backend/pkg/config"
	"github.com/medimall/medimall-backend/pkg/db"
	"github.com/medimall/medimall-backend/pkg/db/dbtest"
	"github.com/medimall/medimall-backend/pkg/logger"
	"github.com/medimall/medimall-backend/pkg/metrics"
	"github.com/medimall/medimall-backend/pkg/outbox"
)

type fakeBroker struct{}

func (fakeBroker) CreateIntent(_ context.Context, amount decimal.Decimal, email string) (*payments.Intent, error) {
	return &payments.Intent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		Amount:       payments.ToMinorUnits(amount),
		Currency:     "usd",
		Created:      time.Unix(1700000000, 0).UTC(),
		Email:        email,
	}, nil
}

func (fakeBroker) RetrieveIntent(_ context.Context, id string) (*payments.Intent, error) {
	return &payments.Intent{
		ID:       id,
		Amount:   1999,
		Currency: "usd",
		Status:   "succeeded",
		Created:  time.Unix(1700000000, 0).UTC(),
	}, nil
}

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	conn := dbtest.Open(t)
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error")})
	reg := prometheus.NewRegistry()
	cfg := &config.Config{
		App: config.AppConfig{Env: "test", CORSOrigins: "*"},
		JWT: config.JWTConfig{Secret: "router-test-secret", Issuer: "medimall"},
	}

	usersRepo := users.NewRepository(conn)
	usersSvc, err := users.NewService(usersRepo, logg)
	require.NoError(t, err)
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	require.NoError(t, err)
	cartSvc, err := cart.NewService(cart.ServiceParams{Repo: cart.NewRepository(conn), Logger: logg})
	require.NoError(t, err)
	paymentsSvc, err := payments.NewService(payments.ServiceParams{
		Repo:    payments.NewRepository(conn),
		Broker:  fakeBroker{},
		Tx:      db.Wrap(conn),
		Outbox:  outbox.NewService(outbox.NewRepository(conn), logg),
		Logger:  logg,
		Metrics: metrics.NewCheckoutMetrics(reg),
	})
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(Params{
		Config:   cfg,
		Logger:   logg,
		DB:       db.Wrap(conn),
		Gatherer: reg,
		HTTP:     metrics.NewHTTPMetrics(reg),
		Users:    usersSvc,
		Roles:    users.NewRoleResolver(usersRepo),
		Catalog:  catalogSvc,
		Cart:     cartSvc,
		Payments: paymentsSvc,
	}))
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv}
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, reader)
	require.NoError(a.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	var out map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &out)
	}
	return resp.StatusCode, out
}

func (a *testAPI) token(email string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/jwt", "", map[string]any{"email": email, "name": "Test"})
	require.Equal(a.t, http.StatusOK, status)
	return data(a.t, body)["token"].(string)
}

func data(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	out, ok := body["data"].(map[string]any)
	require.True(t, ok, "expected data object, got %v", body)
	return out
}

func errorCode(body map[string]any) string {
	envelope, _ := body["error"].(map[string]any)
	code, _ := envelope["code"].(string)
	return code
}

func TestRoleChangeAppliesToTokenIssuedEarlier(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/users", "", map[string]any{"email": "u@x.com", "name": "U"})
	require.Equal(t, http.StatusOK, status)
	userID, ok := data(t, body)["inserted_id"].(string)
	require.True(t, ok)

	token := api.token("u@x.com")

	_, body = api.do(http.MethodGet, "/users/admin/u@x.com", token, nil)
	assert.Equal(t, false, data(t, body)["admin"])
	_, body = api.do(http.MethodGet, "/users/seller/u@x.com", token, nil)
	assert.Equal(t, false, data(t, body)["seller"])

	status, _ = api.do(http.MethodGet, "/users", token, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = api.do(http.MethodPatch, "/users/"+userID, "", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["modified_count"])

	_, body = api.do(http.MethodGet, "/users/admin/u@x.com", token, nil)
	assert.Equal(t, true, data(t, body)["admin"])

	status, body = api.do(http.MethodGet, "/users", token, nil)
	require.Equal(t, http.StatusOK, status)
	list, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestDuplicateRegistrationReturnsNullInsert(t *testing.T) {
	api := newTestAPI(t)

	api.do(http.MethodPost, "/users", "", map[string]any{"email": "dup@x.com"})
	status, body := api.do(http.MethodPost, "/users", "", map[string]any{"email": "DUP@x.com"})
	require.Equal(t, http.StatusOK, status)
	payload := data(t, body)
	assert.Nil(t, payload["inserted_id"])
	assert.Equal(t, "user already exists", payload["message"])
}

func TestCapabilityLookupIsSelfOnly(t *testing.T) {
	api := newTestAPI(t)
	token := api.token("a@x.com")

	status, body := api.do(http.MethodGet, "/users/admin/b@x.com", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", errorCode(body))
}

func TestGatedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/users"},
		{http.MethodGet, "/users/admin/a@x.com"},
		{http.MethodDelete, "/medicine/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/cart/00000000-0000-0000-0000-000000000001"},
		{http.MethodDelete, "/cart?email=a@x.com"},
		{http.MethodPost, "/category"},
		{http.MethodGet, "/payment-history"},
		{http.MethodPatch, "/payment-history/00000000-0000-0000-0000-000000000001/accept"},
		{http.MethodPatch, "/advice/00000000-0000-0000-0000-000000000001"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			status, body := api.do(tc.method, tc.path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, status)
			assert.Equal(t, "UNAUTHORIZED", errorCode(body))
		})
	}

	status, _ := api.do(http.MethodGet, "/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestCheckoutLifecycle(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/create-payment-intent", "", map[string]any{"amount": 19.99, "email": "buyer@x.com"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "pi_test_secret", data(t, body)["client_secret"])

	status, body = api.do(http.MethodPost, "/save-payment-details", "", map[string]any{
		"payment_intent": map[string]any{"id": "pi_test"},
		"user_email":     "buyer@x.com",
		"seller_email":   "seller@x.com",
		"medicine_name":  "Aspirin",
		"status":         "paid",
	})
	require.Equal(t, http.StatusOK, status)
	recordID, ok := data(t, body)["inserted_id"].(string)
	require.True(t, ok)

	buyer := api.token("buyer@x.com")
	status, body = api.do(http.MethodGet, "/payment-history", buyer, nil)
	require.Equal(t, http.StatusOK, status)
	records, ok := body["data"].([]any)
	require.True(t, ok)
	require.Len(t, records, 1)
	record := records[0].(map[string]any)
	assert.Equal(t, "pending", record["status"])
	assert.EqualValues(t, 1999, record["amount"])

	status, _ = api.do(http.MethodPatch, "/payment-history/"+recordID+"/accept", buyer, nil)
	assert.Equal(t, http.StatusForbidden, status)

	_, body = api.do(http.MethodPost, "/users", "", map[string]any{"email": "admin@x.com"})
	adminID := data(t, body)["inserted_id"].(string)
	status, _ = api.do(http.MethodPatch, "/users/"+adminID, "", map[string]any{"role": "admin"})
	require.Equal(t, http.StatusOK, status)
	admin := api.token("admin@x.com")

	status, body = api.do(http.MethodPatch, "/payment-history/"+recordID+"/accept", admin, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["modified_count"])

	status, body = api.do(http.MethodPatch, "/payment-history/"+recordID+"/accept", admin, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", errorCode(body))
}

func TestCartAdjustRoutes(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/cart", "", map[string]any{
		"user_email":     "buyer@x.com",
		"medicine_id":    "med-1",
		"medicine_name":  "Aspirin",
		"per_unit_price": "4.50",
		"seller_email":   "seller@x.com",
	})
	require.Equal(t, http.StatusOK, status)
	id := data(t, body)["inserted_id"].(string)

	status, body = api.do(http.MethodPatch, "/cart/"+id+"/increase", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 2, data(t, body)["quantity"])

	status, body = api.do(http.MethodPatch, "/cart/"+id+"/decrease", "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["quantity"])

	status, body = api.do(http.MethodGet, "/carts?email=buyer@x.com", "", nil)
	require.Equal(t, http.StatusOK, status)
	items, ok := body["data"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 1)

	status, body = api.do(http.MethodDelete, "/cart?email=buyer@x.com", api.token("buyer@x.com"), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, data(t, body)["deleted_count"])
}

func TestRootAndHealth(t *testing.T) {
	api := newTestAPI(t)

	resp, err := api.srv.Client().Get(api.srv.URL + "/")
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "server is running", string(raw))

	status, body := api.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "live", data(t, body)["status"])

	status, _ = api.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, http.StatusOK, status)

	resp, err = api.srv.Client().Get(api.srv.URL + "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
