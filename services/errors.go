package services

import (
	"errors"
	"fmt"
)

// Domain refusal errors. These carry messages meant to be shown to the user
// directly.
var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrExpenseNotFound     = errors.New("expense not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrTherapistNotFound   = errors.New("therapist not found")
	ErrSignatureNotFound   = errors.New("signature not found")

	// ErrAppointmentSettled blocks deletion once a therapist payment exists
	// against the appointment's invoice
	ErrAppointmentSettled = errors.New("cannot delete this appointment: a therapist payment has already been recorded for its invoice")

	// ErrInvoiceSettled blocks invoice deletion once a therapist payment exists
	ErrInvoiceSettled = errors.New("cannot delete this invoice: a therapist payment has already been recorded for it")
)

// ErrSlotOccupied builds the refusal returned when a recurring occurrence
// lands on a slot already booked for another patient
func ErrSlotOccupied(date, timeOfDay, patientName string) error {
	return fmt.Errorf("le créneau du %s à %s est déjà occupé par %s", date, timeOfDay, patientName)
}
