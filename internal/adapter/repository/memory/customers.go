package memory

import (
	"context"

	"github.com/gtservice/gtledger/internal/domain"
)

// CustomerRepository implements usecase.CustomerRepository.
type CustomerRepository struct {
	store *Store
}

// NewCustomerRepository creates a new CustomerRepository.
func NewCustomerRepository(store *Store) *CustomerRepository {
	return &CustomerRepository{store: store}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	return r.store.autocommit(ctx, func(s *state) error {
		s.customers[customer.ID] = *customer
		return nil
	})
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	err := r.store.read(func(s *state) error {
		c, ok := s.customers[id]
		if !ok {
			return domain.ErrCustomerNotFound
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// List returns customers ordered by name.
func (r *CustomerRepository) List(_ context.Context, limit, offset int) ([]*domain.Customer, error) {
	var customers []*domain.Customer
	_ = r.store.read(func(s *state) error {
		customers = sortedValues(s.customers, func(a, b *domain.Customer) bool { return a.Name < b.Name })
		return nil
	})
	return page(customers, limit, offset), nil
}

// CreateVehicle registers a vehicle. Plates are unique.
func (r *CustomerRepository) CreateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	return r.store.autocommit(ctx, func(s *state) error {
		if _, ok := s.customers[vehicle.CustomerID]; !ok {
			return domain.ErrCustomerNotFound
		}
		for _, v := range s.vehicles {
			if v.Plate == vehicle.Plate {
				return domain.ErrDuplicatePlate
			}
		}
		s.vehicles[vehicle.ID] = *vehicle
		return nil
	})
}

func (r *CustomerRepository) GetVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	err := r.store.read(func(s *state) error {
		v, ok := s.vehicles[id]
		if !ok {
			return domain.ErrVehicleNotFound
		}
		vehicle = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *CustomerRepository) ListVehicles(_ context.Context, customerID string) ([]*domain.Vehicle, error) {
	var vehicles []*domain.Vehicle
	_ = r.store.read(func(s *state) error {
		for _, v := range sortedValues(s.vehicles, func(a, b *domain.Vehicle) bool { return a.Plate < b.Plate }) {
			if v.CustomerID == customerID {
				vehicles = append(vehicles, v)
			}
		}
		return nil
	})
	return vehicles, nil
}
