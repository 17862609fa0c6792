package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/lib/pq"
	_ "github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(cred *Credentials) (*PostgresRepository, error) {
	psqlconn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cred.Host,
		cred.Port,
		cred.User,
		cred.Password,
		cred.DBName)

	db, err := sql.Open("postgres", psqlconn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if e2 := db.Ping(); e2 != nil {
		return nil, fmt.Errorf("failed to ping database: %w", e2)
	}

	db.SetMaxOpenConns(100)
	db.SetMaxIdleConns(10)
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) RunMigrations(cred *Credentials) error {
	driver, err := postgres.WithInstance(r.db, &postgres.Config{
		MigrationsTable: "orders_schema_migrations",
	})
	if err != nil {
		return fmt.Errorf("could not create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		fmt.Sprintf("file://%s", cred.MigrationsDirPath),
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}

	if e2 := m.Up(); e2 != nil && !errors.Is(e2, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", e2)
	}

	return nil
}

func (r *PostgresRepository) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (customer_name, customer_email, customer_phone,
	            shipping_street, shipping_city, shipping_state, shipping_zip,
	            subtotal, tax, shipping_cost, total, status, confirmation_token)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	          RETURNING id, created_at, updated_at`

	err = tx.QueryRowContext(ctx, query,
		o.CustomerName,
		o.CustomerEmail,
		o.CustomerPhone,
		o.Shipping.Street,
		o.Shipping.City,
		o.Shipping.State,
		o.Shipping.Zip,
		o.Subtotal,
		o.Tax,
		o.ShippingCost,
		o.Total,
		string(o.Status),
		o.ConfirmationToken,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateToken
		}
		return fmt.Errorf("insert order: %w", err)
	}

	itemQuery := `INSERT INTO order_items (order_id, product_name, unit_price, size, quantity, subtotal)
	              VALUES ($1, $2, $3, $4, $5, $6)
	              RETURNING id`
	for i := range o.Items {
		item := &o.Items[i]
		item.OrderID = o.ID
		if e2 := tx.QueryRowContext(ctx, itemQuery,
			item.OrderID,
			item.ProductName,
			item.UnitPrice,
			item.Size,
			item.Quantity,
			item.Subtotal,
		).Scan(&item.ID); e2 != nil {
			return fmt.Errorf("insert order item: %w", e2)
		}
	}

	if e2 := tx.Commit(); e2 != nil {
		return fmt.Errorf("commit order: %w", e2)
	}
	return nil
}

const orderColumns = `id, customer_name, customer_email, customer_phone,
	shipping_street, shipping_city, shipping_state, shipping_zip,
	subtotal, tax, shipping_cost, total, status,
	payment_ref, checkout_session_id, confirmation_token, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.queryOrder(ctx, query, id)
}

func (r *PostgresRepository) GetByConfirmationToken(ctx context.Context, token string) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE confirmation_token = $1`
	return r.queryOrder(ctx, query, token)
}

func (r *PostgresRepository) queryOrder(ctx context.Context, query string, arg interface{}) (*Order, error) {
	var o Order
	var paymentRef, sessionID sql.NullString
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&o.ID,
		&o.CustomerName,
		&o.CustomerEmail,
		&o.CustomerPhone,
		&o.Shipping.Street,
		&o.Shipping.City,
		&o.Shipping.State,
		&o.Shipping.Zip,
		&o.Subtotal,
		&o.Tax,
		&o.ShippingCost,
		&o.Total,
		&o.Status,
		&paymentRef,
		&sessionID,
		&o.ConfirmationToken,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}
	o.PaymentRef = paymentRef.String
	o.CheckoutSessionID = sessionID.String

	if e2 := r.loadItems(ctx, &o); e2 != nil {
		return nil, e2
	}
	return &o, nil
}

func (r *PostgresRepository) loadItems(ctx context.Context, o *Order) error {
	query := `SELECT id, order_id, product_name, unit_price, size, quantity, subtotal
	          FROM order_items WHERE order_id = $1 ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, o.ID)
	if err != nil {
		return fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		var size sql.NullString
		if e2 := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductName,
			&item.UnitPrice,
			&size,
			&item.Quantity,
			&item.Subtotal,
		); e2 != nil {
			return fmt.Errorf("scan order item: %w", e2)
		}
		item.Size = size.String
		o.Items = append(o.Items, item)
	}

	if e2 := rows.Err(); e2 != nil {
		return fmt.Errorf("row iteration error: %w", e2)
	}
	return nil
}

func (r *PostgresRepository) AttachPaymentSession(ctx context.Context, orderID int64, sessionID string) error {
	query := `UPDATE orders SET checkout_session_id = $1, updated_at = NOW() WHERE id = $2`

	res, err := r.db.ExecContext(ctx, query, sessionID, orderID)
	if err != nil {
		return fmt.Errorf("attach payment session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach payment session: %w", err)
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// MarkPaid is a single compare-and-set: the WHERE clause only matches a
// pending order, so concurrent webhook and redirect confirmations cannot
// both succeed.
func (r *PostgresRepository) MarkPaid(ctx context.Context, orderID int64, paymentRef string) (bool, error) {
	query := `UPDATE orders SET status = $1, payment_ref = $2, updated_at = NOW()
	          WHERE id = $3 AND status = $4`

	res, err := r.db.ExecContext(ctx, query,
		string(StatusPaid), paymentRef, orderID, string(StatusPending))
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark order paid: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) CancelPending(ctx context.Context, orderID int64) (bool, error) {
	query := `UPDATE orders SET status = $1, updated_at = NOW()
	          WHERE id = $2 AND status = $3`

	res, err := r.db.ExecContext(ctx, query,
		string(StatusCancelled), orderID, string(StatusPending))
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("cancel order: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresRepository) Close() error {
	return r.db.Close()
}
