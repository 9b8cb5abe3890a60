package services

import (
	"clinic_flow_app_go/models"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// ExportExpensesToExcel builds an .xlsx workbook with every expense, for
// bookkeeping handoff
func ExportExpensesToExcel(db *gorm.DB) (*excelize.File, error) {
	expenses, err := ListExpenses(db)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := "Dépenses"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Description", "Catégorie", "Montant", "Moyen de paiement", "Notes"}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	var total float64
	for row, expense := range expenses {
		notes := ""
		if expense.Notes != nil {
			notes = *expense.Notes
		}
		values := []interface{}{
			expense.Date,
			expense.Description,
			expense.Category,
			expense.Amount,
			expense.PaymentMethod,
			notes,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
		total += expense.Amount
	}

	totalCell, _ := excelize.CoordinatesToCellName(4, len(expenses)+3)
	labelCell, _ := excelize.CoordinatesToCellName(3, len(expenses)+3)
	f.SetCellValue(sheet, labelCell, "Total")
	f.SetCellValue(sheet, totalCell, total)
	f.SetCellStyle(sheet, labelCell, totalCell, headerStyle)

	return f, nil
}

// ExportInvoicesToExcel builds an .xlsx workbook with every invoice
func ExportInvoicesToExcel(db *gorm.DB) (*excelize.File, error) {
	invoices := ListInvoices(db)

	f := excelize.NewFile()
	sheet := "Factures"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Numéro", "Patient", "Thérapeute", "Émise le", "Échéance", "Montant", "Statut"}
	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, header)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	for row, invoice := range invoices {
		values := []interface{}{
			invoice.InvoiceNumber,
			invoice.Patient.FullName(),
			invoice.Therapist.FullName(),
			invoice.IssueDate,
			invoice.DueDate,
			invoice.TotalAmount,
			models.GetInvoiceStatusDisplayName(invoice.Status),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			f.SetCellValue(sheet, cell, value)
		}
	}

	return f, nil
}
