package services

import (
	"log/slog"
	"strings"
	"time"

	"ispcrm/internal/apperr"
	"ispcrm/internal/models"
	"ispcrm/internal/repositories"
)

type UserService interface {
	CreateUser(user *models.User, plainPassword string) error
	GetUserByID(id int) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	ListUsers(limit, offset int) ([]*models.User, error)
	UpdateRefresh(id int, token string, expiresAt time.Time) error
	GetUserByRefresh(token string) (*models.User, error)
}

type userService struct {
	repo         *repositories.UserRepository
	emailService EmailService
	authService  AuthService
	log          *slog.Logger
}

func NewUserService(repo *repositories.UserRepository, emailService EmailService, authService AuthService, log *slog.Logger) UserService {
	return &userService{repo: repo, emailService: emailService, authService: authService, log: log}
}

func (s *userService) CreateUser(user *models.User, plainPassword string) error {
	if strings.TrimSpace(plainPassword) == "" {
		return apperr.InvalidRequest("Password is required")
	}
	if user.Role != models.RoleSales && user.Role != models.RoleManager {
		return apperr.InvalidRequest("Role must be SALES or MANAGER")
	}

	hash, err := s.authService.HashPassword(plainPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	user.IsActive = true
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	if err := s.repo.Create(user); err != nil {
		if err == repositories.ErrDuplicateEmail {
			return apperr.InvalidRequest("Email already registered")
		}
		return err
	}

	if s.emailService != nil {
		// best effort, creation already succeeded
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Name); err != nil {
			s.log.Warn("failed to send welcome email", "email", user.Email, "err", err)
		}
	}
	return nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	return s.repo.GetByID(id)
}

func (s *userService) GetUserByEmail(email string) (*models.User, error) {
	return s.repo.GetByEmail(email)
}

func (s *userService) ListUsers(limit, offset int) ([]*models.User, error) {
	return s.repo.List(limit, offset)
}

func (s *userService) UpdateRefresh(id int, token string, expiresAt time.Time) error {
	return s.repo.UpdateRefresh(id, token, expiresAt)
}

func (s *userService) GetUserByRefresh(token string) (*models.User, error) {
	return s.repo.GetByRefresh(token)
}
