package models

import (
	"time"

	"gorm.io/gorm"
)

// Expense category constants
const (
	ExpenseCategoryRent      = "rent"
	ExpenseCategorySupplies  = "supplies"
	ExpenseCategoryInsurance = "insurance"
	ExpenseCategoryTraining  = "training"
	ExpenseCategoryOther     = "other"
)

// Expense tracks a practice cost, independent of the appointment/invoice graph
type Expense struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Description string  `gorm:"not null" json:"description"`
	Amount      float64 `gorm:"not null" json:"amount"`

	// Day-precision, DD/MM/YYYY
	Date string `gorm:"size:10;index;not null" json:"date"`

	Category      string  `gorm:"size:50;index;default:'other'" json:"category"`
	PaymentMethod string  `gorm:"size:50" json:"payment_method"`
	Notes         *string `gorm:"type:text" json:"notes,omitempty"`

	// Storage key of the uploaded receipt, if any
	ReceiptKey *string `gorm:"size:255" json:"receipt_key,omitempty"`
}

// TableName specifies the table name for Expense model
func (Expense) TableName() string {
	return "expenses"
}

// IsValidExpenseCategory checks if the category is one of the known set
func IsValidExpenseCategory(category string) bool {
	switch category {
	case ExpenseCategoryRent, ExpenseCategorySupplies, ExpenseCategoryInsurance,
		ExpenseCategoryTraining, ExpenseCategoryOther:
		return true
	}
	return false
}
