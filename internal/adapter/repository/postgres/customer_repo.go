package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/gtservice/gtledger/internal/domain"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	db DB
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(db DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Create inserts a customer.
func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO customers (id, name, phone, email, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		customer.ID, customer.Name, customer.Phone, customer.Email, customer.Notes,
		customer.CreatedAt, customer.UpdatedAt,
	)

	return translate(err, nil)
}

// GetByID retrieves a customer by ID.
func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	var c domain.Customer
	err := r.db.QueryRow(ctx, `
		SELECT id, name, phone, email, notes, created_at, updated_at
		FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err, domain.ErrCustomerNotFound)
	}

	return &c, nil
}

// List retrieves customers ordered by name.
func (r *CustomerRepository) List(ctx context.Context, limit, offset int) ([]*domain.Customer, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, phone, email, notes, created_at, updated_at
		FROM customers ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []*domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.Email, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		customers = append(customers, &c)
	}

	return customers, rows.Err()
}

// CreateVehicle inserts a vehicle. Plates are unique across customers.
func (r *CustomerRepository) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO vehicles (id, customer_id, plate, make, model, year, vin, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		vehicle.ID, vehicle.CustomerID, vehicle.Plate, vehicle.Make, vehicle.Model,
		vehicle.Year, vehicle.VIN, vehicle.CreatedAt,
	)

	return translate(err, nil)
}

// GetVehicle retrieves a vehicle by ID.
func (r *CustomerRepository) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, `
		SELECT id, customer_id, plate, make, model, year, vin, created_at
		FROM vehicles WHERE id = $1`, id))
	if err != nil {
		return nil, translate(err, domain.ErrVehicleNotFound)
	}

	return v, nil
}

// ListVehicles retrieves a customer's vehicles ordered by plate.
func (r *CustomerRepository) ListVehicles(ctx context.Context, customerID string) ([]*domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, customer_id, plate, make, model, year, vin, created_at
		FROM vehicles WHERE customer_id = $1 ORDER BY plate`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}

	return vehicles, rows.Err()
}

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	if err := row.Scan(&v.ID, &v.CustomerID, &v.Plate, &v.Make, &v.Model, &v.Year, &v.VIN, &v.CreatedAt); err != nil {
		return nil, err
	}
	return &v, nil
}
