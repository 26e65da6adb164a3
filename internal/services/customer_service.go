package services

import (
	"ispcrm/internal/apperr"
	"ispcrm/internal/authz"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"
)

type CustomerService struct {
	repo        *repositories.CustomerRepository
	serviceRepo *repositories.ServiceRepository
}

func NewCustomerService(repo *repositories.CustomerRepository, serviceRepo *repositories.ServiceRepository) *CustomerService {
	return &CustomerService{repo: repo, serviceRepo: serviceRepo}
}

// ListActive lists customers that hold at least one approved deal. Sales see
// only customers from their own deals.
func (s *CustomerService) ListActive(actor authz.Actor, search string, page, limit int) ([]*models.Customer, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	ownerID := 0
	if !actor.IsManager() {
		ownerID = actor.UserID
	}
	return s.repo.ListActive(ownerID, search, limit, (page-1)*limit)
}

func (s *CustomerService) GetByID(actor authz.Actor, id int) (*models.Customer, error) {
	customer, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperr.NotFound("Customer not found")
	}
	if !actor.IsManager() {
		owned, err := s.repo.IsOwnedBy(id, actor.UserID)
		if err != nil {
			return nil, err
		}
		if !owned {
			return nil, apperr.Forbidden("Access denied")
		}
	}
	return customer, nil
}

func (s *CustomerService) ListServices(actor authz.Actor, customerID int) ([]*models.Service, error) {
	if _, err := s.GetByID(actor, customerID); err != nil {
		return nil, err
	}
	return s.serviceRepo.ListByCustomer(customerID)
}
