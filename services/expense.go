package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"clinic_flow_app_go/models"

	"gorm.io/gorm"
)

// expenseUpdatableColumns enumerates the storage columns a partial expense
// update may touch
var expenseUpdatableColumns = map[string]bool{
	"description":    true,
	"amount":         true,
	"date":           true,
	"category":       true,
	"payment_method": true,
	"notes":          true,
}

// CreateExpense persists a new expense
func CreateExpense(db *gorm.DB, expense *models.Expense) error {
	if expense.Category == "" {
		expense.Category = models.ExpenseCategoryOther
	}
	if !models.IsValidExpenseCategory(expense.Category) {
		return fmt.Errorf("invalid expense category: %s", expense.Category)
	}
	if _, err := ParseDayMonthYear(expense.Date); err != nil {
		return err
	}
	return db.Create(expense).Error
}

// GetExpenseByID fetches a single expense
func GetExpenseByID(db *gorm.DB, id uint) (*models.Expense, error) {
	var expense models.Expense
	err := db.First(&expense, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &expense, nil
}

// ListExpenses fetches all expenses, most recent first
func ListExpenses(db *gorm.DB) ([]models.Expense, error) {
	var expenses []models.Expense
	err := db.Order("created_at desc").Find(&expenses).Error
	return expenses, err
}

// GetExpensesByCategory fetches expenses in a category
func GetExpensesByCategory(db *gorm.DB, category string) ([]models.Expense, error) {
	var expenses []models.Expense
	err := db.Where("category = ?", category).
		Order("created_at desc").
		Find(&expenses).Error
	return expenses, err
}

// GetExpensesByDateRange fetches expenses whose date falls within the
// inclusive range. Dates are compared on parsed day values since the stored
// pattern does not sort lexically.
func GetExpensesByDateRange(db *gorm.DB, start, end time.Time) ([]models.Expense, error) {
	var expenses []models.Expense
	err := db.Order("created_at desc").Find(&expenses).Error
	if err != nil {
		return nil, err
	}

	var filtered []models.Expense
	for _, expense := range expenses {
		date, parseErr := ParseDayMonthYear(expense.Date)
		if parseErr != nil {
			continue
		}
		if !date.Before(start) && !date.After(end) {
			filtered = append(filtered, expense)
		}
	}
	return filtered, nil
}

// UpdateExpense applies a partial update to an expense
func UpdateExpense(db *gorm.DB, id uint, updates map[string]interface{}) (*models.Expense, error) {
	var existing models.Expense
	err := db.First(&existing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrExpenseNotFound
	}
	if err != nil {
		return nil, err
	}

	for column := range updates {
		if !expenseUpdatableColumns[column] {
			return nil, fmt.Errorf("unknown expense field: %s", column)
		}
	}
	if category, ok := updates["category"].(string); ok {
		if !models.IsValidExpenseCategory(category) {
			return nil, fmt.Errorf("invalid expense category: %s", category)
		}
	}

	if len(updates) > 0 {
		if err := db.Model(&existing).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	var updated models.Expense
	if err := db.First(&updated, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteExpense removes an expense and its stored receipt, if any
func DeleteExpense(db *gorm.DB, id uint) error {
	expense, err := GetExpenseByID(db, id)
	if err != nil {
		return err
	}

	if expense.ReceiptKey != nil && Storage != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// Best-effort: an orphaned object is acceptable, a dangling row is not
		_ = Storage.Delete(ctx, *expense.ReceiptKey)
	}

	return db.Delete(&models.Expense{}, "id = ?", id).Error
}

// AttachReceipt uploads a receipt file and links it to the expense
func AttachReceipt(ctx context.Context, db *gorm.DB, id uint, file *multipart.FileHeader) (*models.Expense, error) {
	expense, err := GetExpenseByID(db, id)
	if err != nil {
		return nil, err
	}
	if Storage == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	key := GenerateReceiptKey(expense.ID, file.Filename)
	result, err := Storage.Upload(ctx, file, key)
	if err != nil {
		return nil, fmt.Errorf("failed to upload receipt: %w", err)
	}

	if err := db.Model(expense).Update("receipt_key", result.Key).Error; err != nil {
		return nil, err
	}
	expense.ReceiptKey = &result.Key
	return expense, nil
}
