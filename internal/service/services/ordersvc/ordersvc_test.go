package ordersvc

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
)

type stubOrderRepo struct {
	inserted []order.Order
	updated  []order.Order
	deleted  []uuid.UUID

	insertErr    error
	updateFound  bool
	deleteFound  bool
	getOrder     *order.Order
	getErr       error
	listOrders   []order.Order
	statusFound  bool
	statusCalled bool
}

func (r *stubOrderRepo) List(ctx context.Context) ([]order.Order, error) {
	return r.listOrders, nil
}

func (r *stubOrderRepo) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.getOrder, r.getErr
}

func (r *stubOrderRepo) Insert(ctx context.Context, o order.Order) error {
	if r.insertErr != nil {
		return r.insertErr
	}
	r.inserted = append(r.inserted, o)

	return nil
}

func (r *stubOrderRepo) Update(ctx context.Context, o order.Order) (bool, error) {
	r.updated = append(r.updated, o)

	return r.updateFound, nil
}

func (r *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to order.Status) (bool, error) {
	r.statusCalled = true

	return r.statusFound, nil
}

func (r *stubOrderRepo) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	r.deleted = append(r.deleted, id)

	return r.deleteFound, nil
}

type stubPublisher struct {
	queue    string
	payloads [][]byte
	err      error
}

func (p *stubPublisher) Publish(queue string, body []byte) error {
	if p.err != nil {
		return p.err
	}
	p.queue = queue
	p.payloads = append(p.payloads, body)

	return nil
}

func newService(repo *stubOrderRepo, pub *stubPublisher) *OrderService {
	return MustNewOrderService(
		WithOrderRepository(repo),
		WithPublisher(pub),
		WithQueueName("orders"),
	)
}

func TestCreateAssignsIDAndPendingStatus(t *testing.T) {
	repo := &stubOrderRepo{}
	pub := &stubPublisher{}
	svc := newService(repo, pub)

	created, err := svc.Create(context.Background(), order.Order{
		Customer: "Joana",
		Product:  "Monitor",
		Amount:   decimal.RequireFromString("899.00"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, order.StatusPending, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, "Joana", created.Customer)

	require.Len(t, repo.inserted, 1)
	assert.Equal(t, created.ID, repo.inserted[0].ID)
}

func TestCreatePublishesPersistedSnapshot(t *testing.T) {
	repo := &stubOrderRepo{}
	pub := &stubPublisher{}
	svc := newService(repo, pub)

	created, err := svc.Create(context.Background(), order.Order{
		Customer: "Carlos",
		Product:  "Mouse",
		Amount:   decimal.RequireFromString("59.50"),
	})
	require.NoError(t, err)

	assert.Equal(t, "orders", pub.queue)
	require.Len(t, pub.payloads, 1)

	var snapshot order.Order
	require.NoError(t, json.Unmarshal(pub.payloads[0], &snapshot))
	assert.Equal(t, created.ID, snapshot.ID)
	assert.Equal(t, created.Customer, snapshot.Customer)
	assert.Equal(t, order.StatusPending, snapshot.Status)
	assert.True(t, created.Amount.Equal(snapshot.Amount))
}

func TestCreatePublishFailureLeavesOrderPersisted(t *testing.T) {
	repo := &stubOrderRepo{}
	pub := &stubPublisher{err: errors.New("broker unavailable")}
	svc := newService(repo, pub)

	_, err := svc.Create(context.Background(), order.Order{
		Customer: "Ana",
		Product:  "Webcam",
		Amount:   decimal.RequireFromString("240.00"),
	})
	require.Error(t, err)

	// Write already committed, no compensating rollback.
	require.Len(t, repo.inserted, 1)
	assert.Equal(t, order.StatusPending, repo.inserted[0].Status)
}

func TestReplaceRejectsIDMismatch(t *testing.T) {
	repo := &stubOrderRepo{updateFound: true}
	svc := newService(repo, &stubPublisher{})

	err := svc.Replace(context.Background(), uuid.New(), order.Order{ID: uuid.New()})
	require.ErrorIs(t, err, ErrIDMismatch)
	assert.Empty(t, repo.updated)
}

func TestReplaceReportsVanishedRowAsNotFound(t *testing.T) {
	repo := &stubOrderRepo{updateFound: false}
	svc := newService(repo, &stubPublisher{})

	id := uuid.New()
	err := svc.Replace(context.Background(), id, order.Order{ID: id})
	require.ErrorIs(t, err, iorderrepo.ErrOrderNotFound)
}

func TestDeleteNotFound(t *testing.T) {
	repo := &stubOrderRepo{deleteFound: false}
	svc := newService(repo, &stubPublisher{})

	err := svc.Delete(context.Background(), uuid.New())
	require.ErrorIs(t, err, iorderrepo.ErrOrderNotFound)
}

func TestDeleteRemovesOrder(t *testing.T) {
	repo := &stubOrderRepo{deleteFound: true}
	svc := newService(repo, &stubPublisher{})

	id := uuid.New()
	require.NoError(t, svc.Delete(context.Background(), id))
	require.Len(t, repo.deleted, 1)
	assert.Equal(t, id, repo.deleted[0])
}
