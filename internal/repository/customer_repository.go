package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/persistence"
)

// CustomerRepository defines persistence access for customers.
type CustomerRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a Postgres-backed implementation.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `id, full_name, email, phone_number, cif_number, password_hash, push_token, created_at, updated_at`

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE id=$1`
	return r.fetchSingle(ctx, query, id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	const query = `SELECT ` + customerColumns + ` FROM customers WHERE LOWER(email)=LOWER($1)`
	return r.fetchSingle(ctx, query, email)
}

func (r *customerRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var customer domain.Customer
	if err := scanCustomer(persistence.Conn(ctx, r.pool).QueryRow(ctx, query, arg), &customer); err != nil {
		return nil, err
	}
	return &customer, nil
}

func scanCustomer(row pgx.Row, customer *domain.Customer) error {
	return row.Scan(
		&customer.ID,
		&customer.FullName,
		&customer.Email,
		&customer.PhoneNumber,
		&customer.CIFNumber,
		&customer.PasswordHash,
		&customer.PushToken,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	)
}
