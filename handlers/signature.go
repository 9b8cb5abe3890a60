package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"clinic_flow_app_go/db"
	"clinic_flow_app_go/models"
	"clinic_flow_app_go/services"
)

// GetSignaturesHandler returns all signature records
func GetSignaturesHandler(c echo.Context) error {
	signatures, err := services.ListSignatures(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch signatures")
	}
	return c.JSON(http.StatusOK, signatures)
}

// GetCurrentSignatureHandler returns the most recently updated signature
func GetCurrentSignatureHandler(c echo.Context) error {
	signature, err := services.GetCurrentSignature(db.DB)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch signature")
	}
	if signature == nil {
		return echo.NewHTTPError(http.StatusNotFound, "No signature recorded")
	}
	return c.JSON(http.StatusOK, signature)
}

// GetSignatureHandler returns a single signature record
func GetSignatureHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	signature, err := services.GetSignatureByID(db.DB, id)
	if err != nil {
		return serviceError(err, "Failed to fetch signature")
	}
	return c.JSON(http.StatusOK, signature)
}

// CreateSignatureHandler stores a new signature/stamp record
func CreateSignatureHandler(c echo.Context) error {
	var signature models.Signature
	if err := c.Bind(&signature); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid signature payload")
	}
	if signature.Name == "" || signature.SignatureData == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Name and signature data are required")
	}

	if err := services.CreateSignature(db.DB, &signature); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create signature")
	}
	return c.JSON(http.StatusCreated, signature)
}

// UpdateSignatureHandler applies a partial update
func UpdateSignatureHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var updates map[string]interface{}
	if err := c.Bind(&updates); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid update payload")
	}

	signature, err := services.UpdateSignature(db.DB, id, updates)
	if err != nil {
		if err == services.ErrSignatureNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, signature)
}

// DeleteSignatureHandler removes a signature record
func DeleteSignatureHandler(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := services.DeleteSignature(db.DB, id); err != nil {
		return serviceError(err, "Failed to delete signature")
	}
	return c.NoContent(http.StatusNoContent)
}
