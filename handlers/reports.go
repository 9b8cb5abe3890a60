package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportExpensesHandler streams the expense book as an .xlsx file
func ExportExpensesHandler(c echo.Context) error {
	f, err := services.ExportExpensesToExcel(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build expense export")
	}
	defer f.Close()

	filename := fmt.Sprintf("depenses_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}

// ExportInvoicesHandler streams the invoice book as an .xlsx file
func ExportInvoicesHandler(c echo.Context) error {
	f, err := services.ExportInvoicesToExcel(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to build invoice export")
	}
	defer f.Close()

	filename := fmt.Sprintf("factures_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	c.Response().Header().Set(echo.HeaderContentType, xlsxContentType)
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response().Writer)
}
