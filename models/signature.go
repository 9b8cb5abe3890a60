package models

import "time"

// Signature holds the administrative signature and stamp images applied to
// generated invoices. A single logical record is kept; it is not part of the
// appointment/invoice transaction graph.
type Signature struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name string `gorm:"size:150;not null" json:"name"`

	// Base64-encoded image data
	SignatureData      string  `gorm:"type:text;not null" json:"signature_data"`
	PaidStampData      *string `gorm:"type:text" json:"paid_stamp_data,omitempty"`
	PermanentStampData *string `gorm:"type:text" json:"permanent_stamp_data,omitempty"`
}

// TableName specifies the table name for Signature model
func (Signature) TableName() string {
	return "signatures"
}
