package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spiritstitch/atelier/internal/domain"
	"github.com/spiritstitch/atelier/internal/service/auth"
	"github.com/spiritstitch/atelier/internal/service/workflow"
	"github.com/spiritstitch/atelier/internal/session"
	"github.com/spiritstitch/atelier/internal/storage/memory"
	apphttp "github.com/spiritstitch/atelier/internal/transport/http"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

type testEnv struct {
	app    *fiber.App
	orders domain.OrderLedger
}

func buildTestEnv(t *testing.T, actors ...domain.Actor) *testEnv {
	t.Helper()

	orders := memory.NewOrderLedger()
	closures := memory.NewClosureLedger()
	charges := memory.NewChargeRepository()
	sessions := session.NewManager(nil)

	authSvc := auth.NewService(memory.NewActorRepository(actors...), nil, nil)
	ctrl := workflow.NewController(orders, closures, nil, nil, nil)

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Auth:      authSvc,
		Workflow:  ctrl,
		Charges:   charges,
		Sessions:  sessions,
		JWTSecret: testJWTSecret,
		TokenTTL:  time.Hour,
	})

	return &testEnv{app: app, orders: orders}
}

func makeActor(t *testing.T, id int64, code, password string, role domain.Role, salonID string) domain.Actor {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	return domain.Actor{ID: id, Code: code, Role: role, SalonID: salonID, PasswordHash: hash}
}

func login(t *testing.T, env *testEnv, code, password string) (string, string) {
	t.Helper()
	body, _ := json.Marshal(apphttp.LoginRequest{Code: code, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out apphttp.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.NotEmpty(t, out.Token)
	return out.Token, out.LandingPage
}

func doJSON(t *testing.T, env *testEnv, method, path, token string, payload any) *http.Response {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func seedOrder(t *testing.T, env *testEnv, tailorID int64, salonID string, prix, avance int64) domain.Order {
	t.Helper()
	now := time.Now().UTC()
	total := decimal.NewFromInt(prix)
	adv := decimal.NewFromInt(avance)
	order, err := env.orders.Create(domain.Order{
		ClientID:  1,
		SalonID:   salonID,
		TailorID:  tailorID,
		PrixTotal: total,
		Avance:    adv,
		Reste:     domain.ComputeReste(total, adv),
		Status:    domain.OrderStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)
	return order
}

func TestLogin_LandingPageByRole(t *testing.T) {
	env := buildTestEnv(t,
		makeActor(t, 1, "root", "root-pass-1", domain.RoleSuperAdmin, ""),
		makeActor(t, 2, "emp", "emp-pass-22", domain.RoleEmploye, "salon-1"),
	)

	_, landing := login(t, env, "root", "root-pass-1")
	assert.Equal(t, auth.PageSuperAdminDashboard, landing)

	_, landing = login(t, env, "emp", "emp-pass-22")
	assert.Equal(t, auth.PageNewOrder, landing)
}

func TestLogin_BadCredentials(t *testing.T) {
	env := buildTestEnv(t, makeActor(t, 1, "emp", "emp-pass-22", domain.RoleEmploye, "salon-1"))

	body, _ := json.Marshal(apphttp.LoginRequest{Code: "emp", Password: "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestProtectedRoute_RequiresToken(t *testing.T) {
	env := buildTestEnv(t)

	resp := doJSON(t, env, http.MethodGet, "/api/orders/balance", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestPaymentEdit_TerminatesOnFullPayment(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	env := buildTestEnv(t, tailor)
	order := seedOrder(t, env, 7, "salon-1", 100, 50)

	token, _ := login(t, env, "tailor", "tailor-pw-7")

	resp := doJSON(t, env, http.MethodPut, fmt.Sprintf("/api/orders/%d/payment", order.ID), token, apphttp.PaymentEditRequest{
		PrixTotal: decimal.NewFromInt(100),
		Avance:    decimal.NewFromInt(100),
		Reste:     decimal.NewFromInt(0),
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out apphttp.PaymentEditResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.True(t, out.Terminated)

	got, err := env.orders.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusTerminated, got.Status)
}

func TestPaymentEdit_ResteMismatchRejected(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	env := buildTestEnv(t, tailor)
	order := seedOrder(t, env, 7, "salon-1", 100, 50)

	token, _ := login(t, env, "tailor", "tailor-pw-7")

	resp := doJSON(t, env, http.MethodPut, fmt.Sprintf("/api/orders/%d/payment", order.ID), token, apphttp.PaymentEditRequest{
		PrixTotal: decimal.NewFromInt(100),
		Avance:    decimal.NewFromInt(100),
		Reste:     decimal.NewFromInt(42),
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBalance_ScopedToTailor(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	env := buildTestEnv(t, tailor)

	mine := seedOrder(t, env, 7, "salon-1", 200, 50)
	seedOrder(t, env, 8, "salon-1", 300, 50)   // чужой портной
	seedOrder(t, env, 7, "salon-1", 100, 100)  // остаток 0
	seedOrder(t, env, 7, "salon-2", 500, 100)  // чужой салон

	token, _ := login(t, env, "tailor", "tailor-pw-7")

	resp := doJSON(t, env, http.MethodGet, "/api/orders/balance", token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []apphttp.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out, 1)
	assert.Equal(t, mine.ID, out[0].ID)
}

func TestClosureWorkflow_EndToEnd(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	admin := makeActor(t, 9, "admin", "admin-pw-99", domain.RoleAdmin, "salon-1")
	env := buildTestEnv(t, tailor, admin)
	order := seedOrder(t, env, 7, "salon-1", 100, 100)
	require.NoError(t, env.orders.MarkTerminated(order.ID))

	tailorToken, _ := login(t, env, "tailor", "tailor-pw-7")
	adminToken, _ := login(t, env, "admin", "admin-pw-99")

	// Портной просит закрыть заказ.
	resp := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/orders/%d/closure-requests", order.ID), tailorToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Портному закрыт админский список.
	resp = doJSON(t, env, http.MethodGet, "/api/closure-requests/pending", tailorToken, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Админ видит просьбу.
	resp = doJSON(t, env, http.MethodGet, "/api/closure-requests/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending []apphttp.ClosureRequestResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&pending))
	resp.Body.Close()
	require.Len(t, pending, 1)
	assert.Equal(t, order.ID, pending[0].OrderID)

	// Сводка просьб по заказу для портного.
	resp = doJSON(t, env, http.MethodGet, fmt.Sprintf("/api/orders/%d/closure-requests/summary", order.ID), tailorToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var summary apphttp.ClosureSummaryResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summary))
	resp.Body.Close()
	assert.Equal(t, 1, summary.Count)

	// Админ подтверждает выдачу.
	resp = doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/orders/%d/delivery", order.ID), adminToken, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	got, err := env.orders.Get(order.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDeliveredPaid, got.Status)
}

func TestDelivery_OpenOrderConflicts(t *testing.T) {
	admin := makeActor(t, 9, "admin", "admin-pw-99", domain.RoleAdmin, "salon-1")
	env := buildTestEnv(t, admin)
	order := seedOrder(t, env, 7, "salon-1", 100, 50)

	token, _ := login(t, env, "admin", "admin-pw-99")

	resp := doJSON(t, env, http.MethodPost, fmt.Sprintf("/api/orders/%d/delivery", order.ID), token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestCharges_AdminOnly(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	admin := makeActor(t, 9, "admin", "admin-pw-99", domain.RoleAdmin, "salon-1")
	env := buildTestEnv(t, tailor, admin)

	tailorToken, _ := login(t, env, "tailor", "tailor-pw-7")
	adminToken, _ := login(t, env, "admin", "admin-pw-99")

	resp := doJSON(t, env, http.MethodPost, "/api/charges/", tailorToken, apphttp.ChargeRequest{
		Label:  "tissu",
		Amount: decimal.NewFromInt(40),
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, env, http.MethodPost, "/api/charges/", adminToken, apphttp.ChargeRequest{
		Label:  "tissu",
		Amount: decimal.NewFromInt(40),
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created apphttp.ChargeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.Equal(t, "salon-1", created.SalonID)

	resp = doJSON(t, env, http.MethodGet, "/api/charges/", adminToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var charges []apphttp.ChargeResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&charges))
	resp.Body.Close()
	assert.Len(t, charges, 1)
}

func TestLogout_RevokesSession(t *testing.T) {
	tailor := makeActor(t, 7, "tailor", "tailor-pw-7", domain.RoleEmploye, "salon-1")
	env := buildTestEnv(t, tailor)

	token, _ := login(t, env, "tailor", "tailor-pw-7")

	resp := doJSON(t, env, http.MethodPost, "/api/auth/logout", token, nil)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// После logout токен с той же сессией не принимается.
	resp = doJSON(t, env, http.MethodGet, "/api/orders/balance", token, nil)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
