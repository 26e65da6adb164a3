package services

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"ispcrm/internal/apperr"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"
)

type ProductService struct {
	repo *repositories.ProductRepository
}

func NewProductService(repo *repositories.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) Create(product *models.Product) error {
	if strings.TrimSpace(product.Code) == "" || strings.TrimSpace(product.Name) == "" {
		return apperr.InvalidRequest("Product code and name are required")
	}
	if product.HPP < 0 || product.MarginPercent < 0 {
		return apperr.InvalidRequest("HPP and margin must not be negative")
	}
	// selling price defaults to cost plus margin
	if product.SellingPrice == 0 {
		product.SellingPrice = product.HPP * (1 + product.MarginPercent/100)
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	id, err := s.repo.Create(product)
	if err != nil {
		return err
	}
	product.ID = int(id)
	return nil
}

func (s *ProductService) Update(product *models.Product) error {
	current, err := s.GetByID(product.ID)
	if err != nil {
		return err
	}
	if product.SellingPrice == 0 {
		product.SellingPrice = product.HPP * (1 + product.MarginPercent/100)
	}
	product.CreatedAt = current.CreatedAt
	return s.repo.Update(product)
}

func (s *ProductService) GetByID(id int) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperr.NotFound("Product not found")
	}
	return product, nil
}

func (s *ProductService) List(includeInactive bool, page, limit int) ([]*models.Product, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}
	return s.repo.List(includeInactive, limit, (page-1)*limit)
}

// Deactivate soft-deletes so existing deal items and services keep their
// product reference.
func (s *ProductService) Deactivate(id int) error {
	err := s.repo.Deactivate(id)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound("Product not found")
	}
	return err
}
