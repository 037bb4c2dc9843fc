package postgres

import (
	"context"
	"database/sql"
	"time"

	"rentacar-backend/internal/domain"
	"rentacar-backend/internal/logger"
	"rentacar-backend/internal/repository"
)

type customerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(db *sql.DB) repository.CustomerRepository {
	return &customerRepository{db: db}
}

const customerColumns = `id, document_number, first_name, last_name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(alerta_cliente, ''), created_on, updated_on`

func scanCustomer(row interface{ Scan(...any) error }) (*domain.Customer, error) {
	c := &domain.Customer{}
	if err := row.Scan(&c.ID, &c.DocumentNumber, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &c.Alert, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *customerRepository) Create(ctx context.Context, c *domain.Customer) error {
	logger.DatabaseCall("INSERT", "customers", "document", c.DocumentNumber)
	now := time.Now()
	query := `INSERT INTO customers (document_number, first_name, last_name, email, phone, created_on, updated_on)
	          VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := conn(ctx, r.db).QueryRowContext(ctx, query, c.DocumentNumber, c.FirstName, c.LastName, nullString(c.Email), nullString(c.Phone), now, now).Scan(&c.ID)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err)
		return mapError(err)
	}
	c.CreatedAt, c.UpdatedAt = now, now
	logger.DatabaseResult("INSERT", 1, nil, "id", c.ID)
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id int64) (*domain.Customer, error) {
	logger.DatabaseCall("SELECT", "customers", "id", id)
	c, err := scanCustomer(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	return c, nil
}

func (r *customerRepository) GetByDocument(ctx context.Context, documentNumber string) (*domain.Customer, error) {
	logger.DatabaseCall("SELECT", "customers", "document", documentNumber)
	c, err := scanCustomer(conn(ctx, r.db).QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE document_number = $1`, documentNumber))
	if err != nil {
		logger.DatabaseResult("SELECT", 0, err)
		return nil, mapError(err)
	}
	return c, nil
}

// UpdateContact refreshes name and contact fields. The blocklist flag is
// managed by staff elsewhere and is never written here.
func (r *customerRepository) UpdateContact(ctx context.Context, c *domain.Customer) error {
	logger.DatabaseCall("UPDATE", "customers", "id", c.ID)
	now := time.Now()
	query := `UPDATE customers SET first_name = $1, last_name = $2, email = $3, phone = $4, updated_on = $5 WHERE id = $6`
	res, err := conn(ctx, r.db).ExecContext(ctx, query, c.FirstName, c.LastName, nullString(c.Email), nullString(c.Phone), now, c.ID)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err)
		return mapError(err)
	}
	n, _ := res.RowsAffected()
	logger.DatabaseResult("UPDATE", n, nil)
	if n == 0 {
		return domain.ErrNotFound
	}
	c.UpdatedAt = now
	return nil
}
