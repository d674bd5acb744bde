package supplier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	Register(ctx context.Context, auth *domain.AuthContext, info domain.BusinessInfo) (*domain.Supplier, error)
	SetStatus(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, status domain.SupplierStatus, reason string) (*domain.Supplier, error)
	Get(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Supplier, error)
	GetForUser(ctx context.Context, auth *domain.AuthContext) (*domain.Supplier, error)
	List(ctx context.Context, auth *domain.AuthContext, query ListQuery, page domain.Page) (*Page, error)
	UpdateProfile(ctx context.Context, auth *domain.AuthContext, update domain.SupplierProfileUpdate) (*domain.Supplier, error)
	SetCommissionRate(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, rate float64) (*domain.Supplier, error)
	RecountProducts(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Supplier, error)
}

// ListQuery narrows the admin supplier queue. Zero values match everything.
type ListQuery struct {
	Status domain.SupplierStatus
	Search string
}

type Page struct {
	Suppliers []domain.Supplier `json:"suppliers"`
	Page      int               `json:"page"`
	Pages     int               `json:"pages"`
	Total     int64             `json:"total"`
}

type service struct {
	suppliers   domain.SupplierRepository
	products    domain.ProductRepository
	defaultRate float64
	v           *validator.Validate
	now         func() time.Time
}

func NewService(suppliers domain.SupplierRepository, products domain.ProductRepository, defaultRate float64) Service {
	return &service{
		suppliers:   suppliers,
		products:    products,
		defaultRate: defaultRate,
		v:           services.NewValidator(),
		now:         time.Now,
	}
}

func (s *service) Register(ctx context.Context, auth *domain.AuthContext, info domain.BusinessInfo) (*domain.Supplier, error) {
	if err := domain.RequireIdentity(auth); err != nil {
		return nil, err
	}
	if auth.IsAdmin() {
		return nil, domain.NewForbiddenError("admins cannot register as suppliers")
	}
	info.BusinessName = strings.TrimSpace(info.BusinessName)
	info.ContactEmail = strings.TrimSpace(info.ContactEmail)
	info.ContactPhone = strings.TrimSpace(info.ContactPhone)
	if err := services.Validate(s.v, info); err != nil {
		return nil, err
	}

	existing, err := s.suppliers.GetByUserID(ctx, auth.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing supplier: %w", err)
	}
	if existing != nil || auth.SupplierID != nil {
		return nil, domain.NewValidationError("user", "already owns a supplier account")
	}

	slug, err := utils.UniqueSlug(ctx, info.BusinessName, s.suppliers.SlugExists)
	if err != nil {
		return nil, err
	}

	supplier := &domain.Supplier{
		UserID:         auth.UserID,
		BusinessName:   info.BusinessName,
		BusinessSlug:   slug,
		ContactEmail:   info.ContactEmail,
		ContactPhone:   info.ContactPhone,
		Description:    info.Description,
		Logo:           info.Logo,
		Address:        info.Address,
		Status:         domain.SupplierPending,
		CommissionRate: s.defaultRate,
	}
	if err := s.suppliers.CreateForUser(ctx, supplier); err != nil {
		return nil, services.TranslateWrite(err, "supplier", "")
	}

	logrus.WithFields(logrus.Fields{
		"supplierId": supplier.ID.Hex(),
		"userId":     auth.UserID.Hex(),
	}).Info("Supplier registered, awaiting approval")
	return supplier, nil
}

func (s *service) SetStatus(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, status domain.SupplierStatus, reason string) (*domain.Supplier, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}
	reason = strings.TrimSpace(reason)
	if status == domain.SupplierRejected && reason == "" {
		return nil, domain.NewValidationError("reason", "is required when rejecting")
	}

	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.CanTransition(supplier.Status, status) {
		return nil, domain.NewValidationError("status",
			fmt.Sprintf("cannot move supplier from %s to %s", supplier.Status, status))
	}

	previous := supplier.Status
	supplier.Status = status
	switch status {
	case domain.SupplierApproved:
		now := s.now()
		admin := auth.UserID
		supplier.ApprovedAt = &now
		supplier.ApprovedBy = &admin
		supplier.RejectionReason = ""
	case domain.SupplierRejected:
		supplier.RejectionReason = reason
	case domain.SupplierPending:
		supplier.RejectionReason = ""
	}

	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, services.TranslateWrite(err, "supplier", id.Hex())
	}

	logrus.WithFields(logrus.Fields{
		"supplierId": id.Hex(),
		"from":       previous,
		"to":         status,
		"adminId":    auth.UserID.Hex(),
	}).Info("Supplier status changed")
	return supplier, nil
}

func (s *service) Get(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Supplier, error) {
	if err := domain.RequireIdentity(auth); err != nil {
		return nil, err
	}
	if !auth.IsAdmin() && (auth.SupplierID == nil || *auth.SupplierID != id) {
		return nil, domain.NewForbiddenError(domain.ReasonAdminOnly)
	}
	return s.suppliers.GetByID(ctx, id)
}

func (s *service) GetForUser(ctx context.Context, auth *domain.AuthContext) (*domain.Supplier, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	return s.suppliers.GetByID(ctx, supplierID)
}

func (s *service) List(ctx context.Context, auth *domain.AuthContext, query ListQuery, page domain.Page) (*Page, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}

	var filters []domain.SupplierFilter
	if query.Status != "" {
		if !query.Status.Valid() {
			return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", query.Status))
		}
		filters = append(filters, domain.SupplierByStatus{Status: query.Status})
	}
	if query.Search != "" {
		filters = append(filters, domain.SupplierBySearch{Term: query.Search})
	}

	suppliers, total, err := s.suppliers.List(ctx, filters, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	return &Page{Suppliers: suppliers, Page: page.Number, Pages: page.Pages(total), Total: total}, nil
}

func (s *service) UpdateProfile(ctx context.Context, auth *domain.AuthContext, update domain.SupplierProfileUpdate) (*domain.Supplier, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	if err := services.Validate(s.v, update); err != nil {
		return nil, err
	}

	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	if update.ContactEmail != nil {
		supplier.ContactEmail = strings.TrimSpace(*update.ContactEmail)
	}
	if update.ContactPhone != nil {
		supplier.ContactPhone = strings.TrimSpace(*update.ContactPhone)
	}
	if update.Description != nil {
		supplier.Description = *update.Description
	}
	if update.Logo != nil {
		supplier.Logo = *update.Logo
	}
	if update.Address != nil {
		supplier.Address = *update.Address
	}

	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, services.TranslateWrite(err, "supplier", supplierID.Hex())
	}
	return supplier, nil
}

func (s *service) SetCommissionRate(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, rate float64) (*domain.Supplier, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if rate < 0 || rate > 100 {
		return nil, domain.NewValidationError("commissionRate", "must be within [0, 100]")
	}

	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.CommissionRate = rate
	if err := s.suppliers.Update(ctx, supplier); err != nil {
		return nil, services.TranslateWrite(err, "supplier", id.Hex())
	}
	return supplier, nil
}

// RecountProducts re-derives totalProducts from the products collection.
func (s *service) RecountProducts(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Supplier, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	supplier, err := s.suppliers.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	n, err := s.products.Count(ctx, domain.ProductBySupplier{SupplierID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if int(n) != supplier.TotalProducts {
		logrus.WithFields(logrus.Fields{
			"supplierId": id.Hex(),
			"stored":     supplier.TotalProducts,
			"actual":     n,
		}).Warn("Supplier product count drifted, repairing")
	}
	if err := s.suppliers.SetTotalProducts(ctx, id, int(n)); err != nil {
		return nil, err
	}
	supplier.TotalProducts = int(n)
	return supplier, nil
}
