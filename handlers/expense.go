package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetExpensesHandler returns expenses, filtered by category or a from/to
// date range (DD/MM/YYYY) when present
func GetExpensesHandler(c echo.Context) error {
	if category := c.QueryParam("category"); category != "" {
		expenses, err := services.GetExpensesByCategory(db.DB, category)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch expenses")
		}
		return c.JSON(http.StatusOK, expenses)
	}

	if from, to := c.QueryParam("from"), c.QueryParam("to"); from != "" && to != "" {
		start, err := services.ParseDayMonthYear(from)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid from date")
		}
		end, err := services.ParseDayMonthYear(to)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid to date")
		}
		expenses, err := services.GetExpensesByDateRange(db.DB, start, end)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch expenses")
		}
		return c.JSON(http.StatusOK, expenses)
	}

	expenses, err := services.ListExpenses(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch expenses")
	}
	return c.JSON(http.StatusOK, expenses)
}

// GetExpenseHandler returns a single expense
func GetExpenseHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	expense, err := services.GetExpenseByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch expense")
	}
	return c.JSON(http.StatusOK, expense)
}

// CreateExpenseHandler records a practice expense
func CreateExpenseHandler(c echo.Context) error {
	var expense models.Expense
	if err := c.Bind(&expense); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid expense payload")
	}
	if expense.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Description is required")
	}
	expense.Notes = sanitizeText(expense.Notes)

	if err := services.CreateExpense(db.DB, &expense); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, expense)
}

// UpdateExpenseHandler applies a partial update
func UpdateExpenseHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}
	sanitizeUpdates(updates, "notes", "description")

	expense, err := services.UpdateExpense(db.DB, id, updates)
	if err != nil {
		if err == services.ErrExpenseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, expense)
}

// DeleteExpenseHandler removes an expense and its stored receipt
func DeleteExpenseHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteExpense(db.DB, id); err != nil {
		return serviceError(err, "Failed to delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}

// AttachReceiptHandler uploads a receipt file and links it to the expense
func AttachReceiptHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Receipt file is required")
	}

	expense, err := services.AttachReceipt(c.Request().Context(), db.DB, id, file)
	if err != nil {
		if err == services.ErrExpenseNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to store receipt")
	}
	return c.JSON(http.StatusOK, expense)
}

// GetReceiptURLHandler returns a time-limited download URL for the receipt
func GetReceiptURLHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	expense, err := services.GetExpenseByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch expense")
	}
	if expense.ReceiptKey == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Expense has no receipt")
	}

	url, err := services.Storage.GetSignedURL(c.Request().Context(), *expense.ReceiptKey, 15*time.Minute)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to sign receipt URL")
	}
	return c.JSON(http.StatusOK, map[string]string{"url": url})
}

// DownloadReceiptHandler streams the stored receipt file
func DownloadReceiptHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	expense, err := services.GetExpenseByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch expense")
	}
	if expense.ReceiptKey == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Expense has no receipt")
	}

	reader, contentType, err := services.Storage.Get(c.Request().Context(), *expense.ReceiptKey)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read receipt")
	}
	defer reader.Close()

	return c.Stream(http.StatusOK, contentType, reader)
}
