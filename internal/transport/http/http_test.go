package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
	"orderpipeline/internal/service/services/ordersvc"
)

type stubService struct {
	orders map[uuid.UUID]order.Order

	createErr error
}

func newStubService(orders ...order.Order) *stubService {
	s := &stubService{orders: make(map[uuid.UUID]order.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}

	return s
}

func (s *stubService) List(ctx context.Context) ([]order.Order, error) {
	result := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		result = append(result, o)
	}

	return result, nil
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, iorderrepo.ErrOrderNotFound
	}

	return &o, nil
}

func (s *stubService) Create(ctx context.Context, o order.Order) (*order.Order, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}

	o.ID = uuid.New()
	o.Status = order.StatusPending
	o.CreatedAt = time.Now().UTC()
	s.orders[o.ID] = o

	return &o, nil
}

func (s *stubService) Replace(ctx context.Context, id uuid.UUID, o order.Order) error {
	if id != o.ID {
		return ordersvc.ErrIDMismatch
	}
	if _, ok := s.orders[id]; !ok {
		return iorderrepo.ErrOrderNotFound
	}
	s.orders[id] = o

	return nil
}

func (s *stubService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.orders[id]; !ok {
		return iorderrepo.ErrOrderNotFound
	}
	delete(s.orders, id)

	return nil
}

func newTestServer(t *testing.T, svc service) *httptest.Server {
	t.Helper()

	transport := NewHTTPTransport(svc)
	transport.RegisterRoutes()
	srv := httptest.NewServer(transport.Router())
	t.Cleanup(srv.Close)

	return srv
}

func storedOrder() order.Order {
	return order.Order{
		ID:        uuid.New(),
		Customer:  "Luisa",
		Product:   "Notebook",
		Amount:    decimal.RequireFromString("4500.00"),
		Status:    order.StatusPending,
		CreatedAt: time.Date(2025, 5, 10, 8, 30, 0, 0, time.UTC),
	}
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	return resp
}

func TestListOrders(t *testing.T) {
	srv := newTestServer(t, newStubService(storedOrder(), storedOrder()))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var orders []order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&orders))
	assert.Len(t, orders, 2)
}

func TestGetOrder(t *testing.T) {
	o := storedOrder()
	srv := newTestServer(t, newStubService(o))

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+o.ID.String(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, o.ID, got.ID)
	assert.Equal(t, o.Customer, got.Customer)
	assert.True(t, o.Amount.Equal(got.Amount))
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestGetOrderNotFound(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetOrderInvalidID(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateOrderRoundTrip(t *testing.T) {
	svc := newStubService()
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"customer": "Rafael",
		"product":  "SSD",
		"amount":   "259.90",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created order.Order
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	assert.Equal(t, order.StatusPending, created.Status)
	assert.Equal(t, "/api/orders/"+created.ID.String(), resp.Header.Get("Location"))

	// The created resource is retrievable with identical fields.
	getResp := doJSON(t, http.MethodGet, srv.URL+resp.Header.Get("Location"), nil)
	require.Equal(t, http.StatusOK, getResp.StatusCode)

	var got order.Order
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.Equal(t, "Rafael", got.Customer)
	assert.Equal(t, "SSD", got.Product)
	assert.True(t, decimal.RequireFromString("259.90").Equal(got.Amount))
	assert.Equal(t, order.StatusPending, got.Status)
}

func TestCreateOrderValidation(t *testing.T) {
	srv := newTestServer(t, newStubService())

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing customer", body: map[string]any{"product": "SSD", "amount": "10"}},
		{name: "missing product", body: map[string]any{"customer": "Rafael", "amount": "10"}},
		{name: "missing amount", body: map[string]any{"customer": "Rafael", "product": "SSD"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestCreateOrderPublishFailure(t *testing.T) {
	svc := newStubService()
	svc.createErr = assert.AnError
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/orders", map[string]any{
		"customer": "Rafael",
		"product":  "SSD",
		"amount":   "259.90",
	})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestUpdateOrderIDMismatchLeavesStoreUntouched(t *testing.T) {
	o := storedOrder()
	svc := newStubService(o)
	srv := newTestServer(t, svc)

	edited := o
	edited.ID = uuid.New()
	edited.Customer = "changed"

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/orders/"+o.ID.String(), edited)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, o.Customer, svc.orders[o.ID].Customer)
}

func TestUpdateOrderVanishedRow(t *testing.T) {
	srv := newTestServer(t, newStubService())

	o := storedOrder()
	resp := doJSON(t, http.MethodPut, srv.URL+"/api/orders/"+o.ID.String(), o)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUpdateOrderReplacesAllFields(t *testing.T) {
	o := storedOrder()
	svc := newStubService(o)
	srv := newTestServer(t, svc)

	edited := o
	edited.Customer = "Luisa M."
	edited.Amount = decimal.RequireFromString("4200.00")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/orders/"+o.ID.String(), edited)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "Luisa M.", svc.orders[o.ID].Customer)
}

func TestDeleteOrder(t *testing.T) {
	o := storedOrder()
	svc := newStubService(o)
	srv := newTestServer(t, svc)

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/orders/"+o.ID.String(), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// Subsequent GET fails with 404.
	getResp := doJSON(t, http.MethodGet, srv.URL+"/api/orders/"+o.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, getResp.StatusCode)
}

func TestDeleteOrderNotFound(t *testing.T) {
	srv := newTestServer(t, newStubService())

	resp := doJSON(t, http.MethodDelete, srv.URL+"/api/orders/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
