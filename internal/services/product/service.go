package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/developia-II/marketplace-backend/internal/services"
	"github.com/developia-II/marketplace-backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Service interface {
	// Supplier operations, gated on an approved supplier account.
	Submit(ctx context.Context, auth *domain.AuthContext, input domain.ProductInput) (*domain.Product, error)
	Edit(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error)
	Remove(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) error
	ListForSupplier(ctx context.Context, auth *domain.AuthContext, search string, page domain.Page) (*Page, error)
	GetForSupplier(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Product, error)

	// Admin operations.
	AdminReview(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, decision domain.ReviewDecision) (*domain.Product, error)
	AdminCreate(ctx context.Context, auth *domain.AuthContext, input domain.ProductInput) (*domain.Product, error)
	AdminEdit(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error)
	ListForReview(ctx context.Context, auth *domain.AuthContext, status domain.ApprovalStatus, page domain.Page) (*Page, error)

	// Storefront reads, always restricted to publicly listable products.
	GetPublic(ctx context.Context, idOrSlug string) (*domain.Product, error)
	ListPublic(ctx context.Context, query PublicQuery, page domain.Page) (*Page, error)
}

type PublicQuery struct {
	Search   string
	Category string
	Featured bool
}

type Page struct {
	Products []domain.Product `json:"products"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Total    int64            `json:"total"`
}

type service struct {
	products  domain.ProductRepository
	suppliers domain.SupplierRepository
	v         *validator.Validate
}

func NewService(products domain.ProductRepository, suppliers domain.SupplierRepository) Service {
	return &service{
		products:  products,
		suppliers: suppliers,
		v:         services.NewValidator(),
	}
}

// writableSupplier loads the caller's supplier and applies the write gate.
func (s *service) writableSupplier(ctx context.Context, auth *domain.AuthContext) (*domain.Supplier, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	supplier, err := s.suppliers.GetByID(ctx, supplierID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewForbiddenError(domain.ReasonAccountNotApproved)
		}
		return nil, err
	}
	if !supplier.CanWrite() {
		return nil, domain.NewForbiddenError(supplier.WriteDeniedReason())
	}
	return supplier, nil
}

func (s *service) Submit(ctx context.Context, auth *domain.AuthContext, input domain.ProductInput) (*domain.Product, error) {
	supplier, err := s.writableSupplier(ctx, auth)
	if err != nil {
		return nil, err
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product, err := s.newProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	supplierID := supplier.ID
	product.Supplier = &supplierID
	product.AddedBy = domain.AddedBySupplier
	product.ApprovalStatus = domain.ApprovalPending
	product.IsFeatured = false

	if err := s.products.Create(ctx, product); err != nil {
		return nil, services.TranslateWrite(err, "product", "")
	}

	logrus.WithFields(logrus.Fields{
		"productId":  product.ID.Hex(),
		"supplierId": supplierID.Hex(),
	}).Info("Product submitted for review")
	return product, nil
}

func (s *service) AdminCreate(ctx context.Context, auth *domain.AuthContext, input domain.ProductInput) (*domain.Product, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	product, err := s.newProduct(ctx, input)
	if err != nil {
		return nil, err
	}
	product.AddedBy = domain.AddedByAdmin
	product.ApprovalStatus = domain.ApprovalApproved

	if err := s.products.Create(ctx, product); err != nil {
		return nil, services.TranslateWrite(err, "product", "")
	}
	return product, nil
}

func (s *service) validateInput(input domain.ProductInput) error {
	if err := services.Validate(s.v, input); err != nil {
		return err
	}
	if input.DiscountPrice > 0 && input.DiscountPrice >= input.Price {
		return domain.NewValidationError("discountPrice", "must be lower than price")
	}
	return nil
}

func (s *service) newProduct(ctx context.Context, input domain.ProductInput) (*domain.Product, error) {
	name := strings.TrimSpace(input.Name)
	slug, err := utils.UniqueSlug(ctx, name, s.products.SlugExists)
	if err != nil {
		return nil, err
	}
	return &domain.Product{
		Slug:          slug,
		Name:          name,
		Description:   input.Description,
		Brand:         input.Brand,
		Category:      input.Category,
		SubCategory:   input.SubCategory,
		Image:         input.Image,
		Price:         domain.Money(input.Price).InexactFloat64(),
		DiscountPrice: domain.Money(input.DiscountPrice).InexactFloat64(),
		CountInStock:  input.CountInStock,
		DeliveryTime:  input.DeliveryTime,
		Sizes:         input.Sizes,
		Colors:        input.Colors,
		IsFeatured:    input.IsFeatured,
	}, nil
}

func (s *service) Edit(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error) {
	supplier, err := s.writableSupplier(ctx, auth)
	if err != nil {
		return nil, err
	}
	if err := services.Validate(s.v, update); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(supplier.ID) {
		return nil, domain.NewForbiddenError(domain.ReasonNotYourProduct)
	}

	// Suppliers cannot feature their own products.
	update.IsFeatured = nil
	reReview := applyUpdate(product, update)
	if err := checkDiscount(product); err != nil {
		return nil, err
	}
	if reReview && product.ApprovalStatus != domain.ApprovalPending {
		logrus.WithFields(logrus.Fields{
			"productId": id.Hex(),
			"previous":  product.ApprovalStatus,
		}).Info("Reviewed field changed, product sent back to review")
		product.ApprovalStatus = domain.ApprovalPending
		product.ApprovalNote = ""
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, services.TranslateWrite(err, "product", id.Hex())
	}
	return product, nil
}

func (s *service) AdminEdit(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, update domain.ProductUpdate) (*domain.Product, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if err := services.Validate(s.v, update); err != nil {
		return nil, err
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	applyUpdate(product, update)
	if err := checkDiscount(product); err != nil {
		return nil, err
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, services.TranslateWrite(err, "product", id.Hex())
	}
	return product, nil
}

func checkDiscount(p *domain.Product) error {
	if p.DiscountPrice > 0 && p.DiscountPrice >= p.Price {
		return domain.NewValidationError("discountPrice", "must be lower than price")
	}
	return nil
}

// applyUpdate copies the non-nil fields onto p and reports whether a field that buyers
// rely on (name, price, description, image) actually changed.
func applyUpdate(p *domain.Product, u domain.ProductUpdate) bool {
	reReview := false
	if u.Name != nil {
		name := strings.TrimSpace(*u.Name)
		reReview = reReview || name != p.Name
		p.Name = name
	}
	if u.Price != nil {
		price := domain.Money(*u.Price).InexactFloat64()
		reReview = reReview || price != p.Price
		p.Price = price
	}
	if u.Description != nil {
		reReview = reReview || *u.Description != p.Description
		p.Description = *u.Description
	}
	if u.Image != nil {
		reReview = reReview || *u.Image != p.Image
		p.Image = *u.Image
	}
	if u.DiscountPrice != nil {
		p.DiscountPrice = domain.Money(*u.DiscountPrice).InexactFloat64()
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Category != nil {
		p.Category = *u.Category
	}
	if u.SubCategory != nil {
		p.SubCategory = *u.SubCategory
	}
	if u.CountInStock != nil {
		p.CountInStock = *u.CountInStock
	}
	if u.DeliveryTime != nil {
		p.DeliveryTime = *u.DeliveryTime
	}
	if u.Sizes != nil {
		p.Sizes = *u.Sizes
	}
	if u.Colors != nil {
		p.Colors = *u.Colors
	}
	if u.IsFeatured != nil {
		p.IsFeatured = *u.IsFeatured
	}
	return reReview
}

func (s *service) AdminReview(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID, decision domain.ReviewDecision) (*domain.Product, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	decision.Note = strings.TrimSpace(decision.Note)
	if err := services.Validate(s.v, decision); err != nil {
		return nil, err
	}
	if decision.Decision == domain.ApprovalRejected && decision.Note == "" {
		return nil, domain.NewValidationError("note", "is required when rejecting")
	}

	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.Supplier == nil {
		return nil, domain.NewValidationError("product", "catalog products are not reviewed")
	}

	product.ApprovalStatus = decision.Decision
	product.ApprovalNote = decision.Note
	if err := s.products.Update(ctx, product); err != nil {
		return nil, services.TranslateWrite(err, "product", id.Hex())
	}

	logrus.WithFields(logrus.Fields{
		"productId": id.Hex(),
		"decision":  decision.Decision,
		"adminId":   auth.UserID.Hex(),
	}).Info("Product reviewed")
	return product, nil
}

func (s *service) Remove(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) error {
	if auth.IsAdmin() {
		product, err := s.products.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return services.TranslateWrite(s.products.Delete(ctx, product), "product", id.Hex())
	}

	supplier, err := s.writableSupplier(ctx, auth)
	if err != nil {
		return err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !product.OwnedBy(supplier.ID) {
		return domain.NewForbiddenError(domain.ReasonNotYourProduct)
	}
	return services.TranslateWrite(s.products.Delete(ctx, product), "product", id.Hex())
}

func (s *service) GetForSupplier(ctx context.Context, auth *domain.AuthContext, id primitive.ObjectID) (*domain.Product, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.OwnedBy(supplierID) {
		return nil, domain.NewForbiddenError(domain.ReasonNotYourProduct)
	}
	return product, nil
}

// ListForSupplier is readable in every supplier status so a pending supplier can see its
// submissions.
func (s *service) ListForSupplier(ctx context.Context, auth *domain.AuthContext, search string, page domain.Page) (*Page, error) {
	supplierID, err := domain.RequireSupplier(auth)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, page,
		domain.ProductBySupplier{SupplierID: supplierID},
		domain.ProductBySearch{Term: search})
}

func (s *service) ListForReview(ctx context.Context, auth *domain.AuthContext, status domain.ApprovalStatus, page domain.Page) (*Page, error) {
	if err := domain.RequireAdmin(auth); err != nil {
		return nil, err
	}
	if status == "" {
		status = domain.ApprovalPending
	}
	if !status.Valid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown approval status %q", status))
	}
	return s.list(ctx, page, domain.ProductByApproval{Status: status})
}

func (s *service) GetPublic(ctx context.Context, idOrSlug string) (*domain.Product, error) {
	var (
		product *domain.Product
		err     error
	)
	if id, perr := primitive.ObjectIDFromHex(idOrSlug); perr == nil {
		product, err = s.products.GetByID(ctx, id)
	} else {
		product, err = s.products.GetBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, err
	}
	if !product.IsPubliclyListable() {
		return nil, domain.NewNotFoundError("product", idOrSlug)
	}
	return product, nil
}

func (s *service) ListPublic(ctx context.Context, query PublicQuery, page domain.Page) (*Page, error) {
	filters := []domain.ProductFilter{
		domain.ProductVisible{},
		domain.ProductBySearch{Term: query.Search},
		domain.ProductByCategory{Category: query.Category},
	}
	if query.Featured {
		filters = append(filters, domain.ProductFeatured{})
	}
	return s.list(ctx, page, filters...)
}

func (s *service) list(ctx context.Context, page domain.Page, filters ...domain.ProductFilter) (*Page, error) {
	products, total, err := s.products.List(ctx, filters, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return &Page{Products: products, Page: page.Number, Pages: page.Pages(total), Total: total}, nil
}
