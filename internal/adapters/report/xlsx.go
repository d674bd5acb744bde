// Package report renders the admin sales export as an Excel workbook.
package report

import (
	"fmt"

	"github.com/developia-II/marketplace-backend/internal/core/domain"
	"github.com/xuri/excelize/v2"
)

const (
	SalesSheet      = "Sales"
	CommissionSheet = "Commission"
)

var (
	salesHeader      = []any{"Period", "Orders", "Revenue"}
	commissionHeader = []any{"Supplier", "Status", "Orders", "Revenue", "Rate %", "Commission", "Net"}
)

// XLSXRenderer writes one sheet with the sales series and one with the per-supplier split.
type XLSXRenderer struct{}

func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

func (XLSXRenderer) Render(report domain.SalesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SalesSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(CommissionSheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	salesRows := make([][]any, 0, len(report.Sales)+1)
	for _, b := range report.Sales {
		salesRows = append(salesRows, []any{b.Period, b.Orders, b.Total})
	}
	if err := writeTable(f, SalesSheet, salesHeader, salesRows, bold); err != nil {
		return nil, err
	}

	commissionRows := make([][]any, 0, len(report.Suppliers))
	for _, s := range report.Suppliers {
		commissionRows = append(commissionRows, []any{
			s.BusinessName,
			string(s.Status),
			s.TotalOrders,
			s.TotalRevenue.InexactFloat64(),
			s.CommissionRate,
			s.CommissionAmount.InexactFloat64(),
			s.NetRevenue.InexactFloat64(),
		})
	}
	if err := writeTable(f, CommissionSheet, commissionHeader, commissionRows, bold); err != nil {
		return nil, err
	}

	footer, err := excelize.CoordinatesToCellName(1, len(salesRows)+3)
	if err != nil {
		return nil, err
	}
	generated := fmt.Sprintf("Generated %s (%s)", report.GeneratedAt.Format("2006-01-02 15:04 MST"), report.Period)
	if err := f.SetCellValue(SalesSheet, footer, generated); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeTable(f *excelize.File, sheet string, header []any, rows [][]any, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return err
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "A", 28)
}
