package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Resolver turns a verified user id into the identity passed to every core operation.
type Resolver interface {
	Resolve(ctx context.Context, userID primitive.ObjectID) (*domain.AuthContext, error)
}

type Service interface {
	Resolver
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)
	Login(ctx context.Context, input LoginInput) (*LoginResult, error)
	// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
	EnsureAdmin(ctx context.Context, name, email, password string) error
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Issuer signs access tokens.
type Issuer interface {
	GenerateToken(userID, role string) (string, error)
	TTL() int64
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	AccessToken string       `json:"accessToken"`
	ExpiresIn   int64        `json:"expiresIn"`
	User        *domain.User `json:"user"`
}

type service struct {
	users     domain.UserRepository
	suppliers domain.SupplierRepository
	hasher    Hasher
	tokens    Issuer
	v         *validator.Validate
}

func NewService(users domain.UserRepository, suppliers domain.SupplierRepository, hasher Hasher, tokens Issuer) Service {
	return &service{
		users:     users,
		suppliers: suppliers,
		hasher:    hasher,
		tokens:    tokens,
		v:         services.NewValidator(),
	}
}

func (s *service) Resolve(ctx context.Context, userID primitive.ObjectID) (*domain.AuthContext, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.AuthorizationError{Reason: "unknown user"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	auth := &domain.AuthContext{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
	}
	if user.Role != domain.RoleSupplier {
		return auth, nil
	}

	if user.Supplier != nil {
		id := *user.Supplier
		auth.SupplierID = &id
		return auth, nil
	}

	// Legacy account promoted without the back reference.
	supplier, err := s.suppliers.GetByUserID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load supplier: %w", err)
	}
	if supplier == nil {
		logrus.WithField("userId", user.ID.Hex()).Warn("Supplier role without supplier record, treating as customer")
		auth.Role = domain.RoleCustomer
		return auth, nil
	}
	auth.SupplierID = &supplier.ID
	return auth, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := services.Validate(s.v, input); err != nil {
		return nil, err
	}
	return s.create(ctx, input.Name, input.Email, input.Password, domain.RoleCustomer)
}

func (s *service) create(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateKey) {
			return nil, domain.NewValidationError("email", "is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if err := services.Validate(s.v, input); err != nil {
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, input.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, &domain.AuthorizationError{Reason: "invalid email or password"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !s.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, &domain.AuthorizationError{Reason: "invalid email or password"}
	}

	token, err := s.tokens.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &LoginResult{AccessToken: token, ExpiresIn: s.tokens.TTL(), User: user}, nil
}

func (s *service) EnsureAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	existing, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		if existing.Role != domain.RoleAdmin {
			logrus.WithField("email", email).Warn("Bootstrap admin email belongs to a non-admin account")
		}
		return nil
	}
	if !domain.IsNotFound(err) {
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	if _, err := s.create(ctx, name, email, password, domain.RoleAdmin); err != nil {
		return err
	}
	logrus.WithField("email", email).Info("Bootstrap admin account created")
	return nil
}
