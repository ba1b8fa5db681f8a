package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"orderpipeline/internal/dal/interfaces/iorderrepo"
	"orderpipeline/internal/service/models/order"
)

// The table keeps the column names of the original deployment so that both
// implementations can run against the same database.
const ordersTable = "orders"

var orderColumns = []string{
	"id",
	"cliente",
	"produto",
	"valor::text AS valor",
	"status",
	"data_criacao",
}

// Querier is the subset of pgxpool.Pool used by the repository.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// OrderDal represents the order data access layer model.
type OrderDal struct {
	Id          uuid.UUID `db:"id"`
	Cliente     string    `db:"cliente"`
	Produto     string    `db:"produto"`
	Valor       string    `db:"valor"`
	Status      string    `db:"status"`
	DataCriacao time.Time `db:"data_criacao"`
}

// ToModel converts OrderDal to the service layer Order model.
func (o *OrderDal) ToModel() (*order.Order, error) {
	status, err := order.ParseStatus(o.Status)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(o.Valor)
	if err != nil {
		return nil, fmt.Errorf("failed to parse order amount: %w", err)
	}

	return &order.Order{
		ID:        o.Id,
		Customer:  o.Cliente,
		Product:   o.Produto,
		Amount:    amount,
		Status:    status,
		CreatedAt: o.DataCriacao,
	}, nil
}

// OrderDalFromModel converts the service layer Order model to OrderDal.
func OrderDalFromModel(o *order.Order) *OrderDal {
	return &OrderDal{
		Id:          o.ID,
		Cliente:     o.Customer,
		Produto:     o.Product,
		Valor:       o.Amount.String(),
		Status:      o.Status.String(),
		DataCriacao: o.CreatedAt,
	}
}

// OrderRepository implements the order repository for PostgreSQL.
type OrderRepository struct {
	conn Querier
}

// NewOrderRepository creates a new order repository.
func NewOrderRepository(conn Querier) *OrderRepository {
	return &OrderRepository{
		conn: conn,
	}
}

// List retrieves all orders.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From(ordersTable).
		OrderBy("data_criacao ASC").
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	result := make([]order.Order, 0)
	for rows.Next() {
		var dal OrderDal
		err := rows.Scan(
			&dal.Id,
			&dal.Cliente,
			&dal.Produto,
			&dal.Valor,
			&dal.Status,
			&dal.DataCriacao,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}

		model, err := dal.ToModel()
		if err != nil {
			return nil, fmt.Errorf("failed to convert order dal to model: %w", err)
		}
		result = append(result, *model)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return result, nil
}

// Get retrieves a single order by id.
func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	query, args, err := sq.Select(orderColumns...).
		From(ordersTable).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var dal OrderDal
	err = r.conn.QueryRow(ctx, query, args...).Scan(
		&dal.Id,
		&dal.Cliente,
		&dal.Produto,
		&dal.Valor,
		&dal.Status,
		&dal.DataCriacao,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, iorderrepo.ErrOrderNotFound
		}

		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	return dal.ToModel()
}

// Insert persists a new order.
func (r *OrderRepository) Insert(ctx context.Context, o order.Order) error {
	dal := OrderDalFromModel(&o)

	query, args, err := sq.Insert(ordersTable).
		Columns(
			"id",
			"cliente",
			"produto",
			"valor",
			"status",
			"data_criacao",
		).
		Values(
			dal.Id,
			dal.Cliente,
			dal.Produto,
			dal.Valor,
			dal.Status,
			dal.DataCriacao,
		).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.conn.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	return nil
}

// Update overwrites all fields of the stored order.
func (r *OrderRepository) Update(ctx context.Context, o order.Order) (bool, error) {
	dal := OrderDalFromModel(&o)

	query, args, err := sq.Update(ordersTable).
		Set("cliente", dal.Cliente).
		Set("produto", dal.Produto).
		Set("valor", dal.Valor).
		Set("status", dal.Status).
		Set("data_criacao", dal.DataCriacao).
		Where(sq.Eq{"id": dal.Id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// UpdateStatus advances the order status with a compare-and-set guard: the
// row is only touched if its status still equals from. A zero affected row
// count means the order was deleted or its status moved on, which the
// caller decides how to treat.
func (r *OrderRepository) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	from, to order.Status,
) (bool, error) {
	if !from.CanAdvanceTo(to) {
		return false, fmt.Errorf("%w: cannot advance from %s to %s", order.ErrInvalidStatus, from, to)
	}

	query, args, err := sq.Update(ordersTable).
		Set("status", to.String()).
		Where(sq.Eq{"id": id, "status": from.String()}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the order.
func (r *OrderRepository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	query, args, err := sq.Delete(ordersTable).
		Where(sq.Eq{"id": id}).
		PlaceholderFormat(sq.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build delete query: %w", err)
	}

	tag, err := r.conn.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to delete order: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}
