package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SalesPeriod string

const (
	PeriodDay   SalesPeriod = "day"
	PeriodMonth SalesPeriod = "month"
)

func (p SalesPeriod) Valid() bool {
	return p == PeriodDay || p == PeriodMonth
}

// Layout is the time layout of the bucket keys for the period.
func (p SalesPeriod) Layout() string {
	if p == PeriodMonth {
		return "2006-01"
	}
	return "2006-01-02"
}

// SupplierSummary is the supplier dashboard view. All money fields are decimals so that
// NetRevenue + CommissionAmount == TotalRevenue holds exactly.
type SupplierSummary struct {
	SupplierID       primitive.ObjectID `json:"supplierId"`
	BusinessName     string             `json:"businessName"`
	Status           SupplierStatus     `json:"status"`
	TotalProducts    int                `json:"totalProducts"`
	ApprovedProducts int64              `json:"approvedProducts"`
	PendingProducts  int64              `json:"pendingProducts"`
	RejectedProducts int64              `json:"rejectedProducts"`
	TotalOrders      int64              `json:"totalOrders"`
	TotalRevenue     decimal.Decimal    `json:"totalRevenue"`
	CommissionRate   float64            `json:"commissionRate"`
	CommissionAmount decimal.Decimal    `json:"commissionAmount"`
	NetRevenue       decimal.Decimal    `json:"netRevenue"`
	SalesData        []SalesBucket      `json:"salesData"`
}

// AdminSummary is the platform-wide dashboard view.
type AdminSummary struct {
	OrdersCount      int64         `json:"ordersCount"`
	ProductsCount    int64         `json:"productsCount"`
	UsersCount       int64         `json:"usersCount"`
	SuppliersCount   int64         `json:"suppliersCount"`
	PendingSuppliers int64         `json:"pendingSuppliers"`
	PendingProducts  int64         `json:"pendingProducts"`
	Period           SalesPeriod   `json:"period"`
	SalesData        []SalesBucket `json:"salesData"`
}

// SupplierCommission is one row of the sales report commission table.
type SupplierCommission struct {
	SupplierID       primitive.ObjectID `json:"supplierId"`
	BusinessName     string             `json:"businessName"`
	Status           SupplierStatus     `json:"status"`
	TotalOrders      int64              `json:"totalOrders"`
	TotalRevenue     decimal.Decimal    `json:"totalRevenue"`
	CommissionRate   float64            `json:"commissionRate"`
	CommissionAmount decimal.Decimal    `json:"commissionAmount"`
	NetRevenue       decimal.Decimal    `json:"netRevenue"`
}

// SalesReport is the input of the exported sales workbook.
type SalesReport struct {
	GeneratedAt time.Time            `json:"generatedAt"`
	Period      SalesPeriod          `json:"period"`
	Sales       []SalesBucket        `json:"sales"`
	Suppliers   []SupplierCommission `json:"suppliers"`
}
