package service

import (
	"context"

	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/repository"
)

type customerService struct {
	customerRepo repository.CustomerRepository
}

func NewCustomerService(customerRepo repository.CustomerRepository) CustomerService {
	return &customerService{customerRepo: customerRepo}
}

func (s *customerService) AddCustomer(ctx context.Context, customer *domain.Customer) error {
	if customer.Name == "" || customer.PrimaryPhone == "" {
		return &domain.InvalidLineInputError{Reason: "customer requires a name and a primary phone"}
	}
	if customer.Type == "" {
		customer.Type = domain.CustomerTypeIndividual
	}
	if customer.Status == "" {
		customer.Status = domain.CustomerStatusActive
	}
	return s.customerRepo.Create(ctx, customer)
}

func (s *customerService) GetCustomer(ctx context.Context, id int32) (*domain.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) UpdateCustomer(ctx context.Context, customer *domain.Customer) error {
	return s.customerRepo.Update(ctx, customer)
}

func (s *customerService) ListCustomers(ctx context.Context, page, pageSize int32) ([]domain.Customer, int32, error) {
	return s.customerRepo.List(ctx, page, pageSize)
}

func (s *customerService) SearchCustomers(ctx context.Context, query string) ([]domain.Customer, error) {
	return s.customerRepo.Search(ctx, query)
}
