package memory

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

type customerRepository struct {
	s *Store
}

func (r *customerRepository) GetByID(_ context.Context, id int64) (*domain.Customer, error) {
	return lookup(r.s, r.s.customers, id)
}

func (r *customerRepository) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if strings.EqualFold(c.Email, email) {
			out := c
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type employeeRepository struct {
	s *Store
}

func (r *employeeRepository) GetByID(_ context.Context, id int64) (*domain.Employee, error) {
	return lookup(r.s, r.s.employees, id)
}

func (r *employeeRepository) GetByEmail(_ context.Context, email string) (*domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.employees {
		if strings.EqualFold(e.Email, email) {
			out := e
			return &out, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *employeeRepository) List(_ context.Context, filter repository.EmployeeFilter) ([]domain.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var result []domain.Employee
	for _, e := range sortedValues(r.s.employees) {
		if filter.DivisionID != nil && e.DivisionID != *filter.DivisionID {
			continue
		}
		if filter.RoleID != nil && e.RoleID != *filter.RoleID {
			continue
		}
		if filter.Active != nil && e.Active != *filter.Active {
			continue
		}
		result = append(result, e)
	}
	return result, nil
}
