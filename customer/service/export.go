package service

import (
	"context"
	"fmt"
	"io"

	customerpkg "github.com/mikios34/customer-admin/customer"
	"github.com/mikios34/customer-admin/intake"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Customers"

var exportHeaders = []string{
	"ID", "Full Name", "Email", "Phone", "Address", "Gender", "Status",
	"Date of Birth", "Photo", "Aadhar Front", "Aadhar Back", "Driving Licence", "Created At",
}

// ExportCustomers writes every customer matching filter as an xlsx workbook.
func (s *customerService) ExportCustomers(ctx context.Context, filter customerpkg.ListFilter, w io.Writer) error {
	filter.Page, filter.PageSize = 1, 0
	items, _, err := s.repo.ListCustomers(ctx, filter)
	if err != nil {
		return fmt.Errorf("list customers: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
	})
	if err != nil {
		return err
	}
	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(exportSheet, cell, cell, bold); err != nil {
			return err
		}
	}

	for r, c := range items {
		row := []any{
			c.ID.String(), c.FullName, c.Email, c.Phone, c.Address, string(c.Gender), string(c.Status),
			c.DateOfBirth.Format(intake.DateLayout), c.Profile, c.AadharFront, c.AadharBack, c.DrivingLic,
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(exportSheet, "A", "M", 18); err != nil {
		return err
	}
	return f.Write(w)
}
