package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/rosarium/internal/gardenservice"
	"github.com/starford/rosarium/internal/models"
	"github.com/starford/rosarium/internal/timeline"
)

// SpecimenRequest is the request body for creating or replacing a specimen.
type SpecimenRequest struct {
	Name            string `json:"name" example:"Gabriel" validate:"required"`
	Brand           string `json:"brand" example:"David Austin (UK)"`
	Year            int    `json:"year,omitempty" example:"2018"`
	AcquisitionDate string `json:"acquisitionDate,omitempty" example:"2024-03-15"`
	Description     string `json:"description,omitempty"`
}

// Validate implements validation.Validatable.
func (r *SpecimenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Year, validation.Min(0)),
		validation.Field(&r.AcquisitionDate, models.IsDate),
	)
}

func (r *SpecimenRequest) specimen(id string) models.Specimen {
	return models.Specimen{
		ID:              id,
		Name:            r.Name,
		Brand:           r.Brand,
		Year:            r.Year,
		AcquisitionDate: r.AcquisitionDate,
		Description:     r.Description,
	}
}

// CareRequest is the request body for recording or editing care in a cell.
// The year and month come from the cell; only the day is chosen.
type CareRequest struct {
	Day       int                 `json:"day" example:"14" validate:"required"`
	TypeID    models.CareTypeID   `json:"typeId" example:"liquid"`
	ProductID string              `json:"productId,omitempty" example:"hyponex-liquid"`
	Note      string              `json:"note,omitempty"`
	SoilMix   models.SoilMix      `json:"soilMix,omitempty"`
	PotChange *models.PotChange   `json:"potChangeDetail,omitempty"`
	Images    *models.EventImages `json:"images,omitempty"`

	typeRequired bool
}

// Validate implements validation.Validatable.
func (r *CareRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Day, validation.Required, validation.Min(1), validation.Max(31)),
		validation.Field(&r.TypeID, validation.When(r.typeRequired, validation.Required)),
		validation.Field(&r.SoilMix),
		validation.Field(&r.PotChange),
	)
}

// BatchRequest is the request body for recording one care across several
// specimens.
type BatchRequest struct {
	SpecimenIDs []string          `json:"specimenIds" validate:"required"`
	Date        string            `json:"date" example:"2025-04-01" validate:"required"`
	TypeID      models.CareTypeID `json:"typeId" example:"soil" validate:"required"`
	ProductID   string            `json:"productId,omitempty"`
	SoilID      string            `json:"soilId,omitempty" example:"akadama"`
	Note        string            `json:"note,omitempty"`
}

// Validate implements validation.Validatable.
func (r *BatchRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SpecimenIDs, validation.Required),
		validation.Field(&r.Date, validation.Required, models.IsDate),
		validation.Field(&r.TypeID, validation.Required),
	)
}

func (r *BatchRequest) input() gardenservice.BatchInput {
	return gardenservice.BatchInput{
		SpecimenIDs: r.SpecimenIDs,
		Date:        r.Date,
		TypeID:      r.TypeID,
		ProductID:   r.ProductID,
		SoilID:      r.SoilID,
		Note:        r.Note,
	}
}

// MetricsRequest carries the client's scroll metrics.
type MetricsRequest struct {
	timeline.Metrics
}

// Validate implements validation.Validatable.
func (r *MetricsRequest) Validate() error {
	return validation.ValidateStruct(&r.Metrics,
		validation.Field(&r.Metrics.Offset, validation.Min(0.0)),
		validation.Field(&r.Metrics.ScrollableWidth, validation.Min(0.0)),
		validation.Field(&r.Metrics.ViewportWidth, validation.Min(0.0)),
	)
}

// SeekRequest asks for the offset that brings a month into view.
type SeekRequest struct {
	MetricsRequest
	Year  int `json:"year" example:"2024" validate:"required"`
	Month int `json:"month" example:"3" validate:"required"`
}

// Validate implements validation.Validatable.
func (r *SeekRequest) Validate() error {
	if err := r.MetricsRequest.Validate(); err != nil {
		return err
	}
	return validation.ValidateStruct(r,
		validation.Field(&r.Year, validation.Required),
		validation.Field(&r.Month, validation.Required, validation.Min(1), validation.Max(12)),
	)
}

// ResetRequest rebuilds the window, widened to TargetYear when non-zero.
type ResetRequest struct {
	TargetYear int `json:"targetYear,omitempty" example:"2021"`
}

// Validate implements validation.Validatable.
func (r *ResetRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.TargetYear, validation.Min(0)),
	)
}

// SettingsRequest is the request body for updating presentation settings.
type SettingsRequest struct {
	models.AppSettings
}

// Validate implements validation.Validatable.
func (r *SettingsRequest) Validate() error {
	return r.AppSettings.Validate()
}

// SeekResponse is returned by POST /sheet/seek.
type SeekResponse struct {
	Offset float64 `json:"scrollOffset" example:"960"`
}

// YearsResponse wraps the current year window.
type YearsResponse struct {
	Years []int `json:"years" validate:"required"`
}

// ImportResponse is returned after an import. Warnings lists the records
// that were dropped because they could not be read.
type ImportResponse struct {
	Specimens int      `json:"specimens" example:"12"`
	Events    int      `json:"events" example:"340"`
	Years     []int    `json:"years"`
	Warnings  []string `json:"warnings,omitempty"`
}

// PhotoUploadResponse is returned after a successful photo upload.
type PhotoUploadResponse struct {
	EventID     string `json:"eventId" validate:"required"`
	Slot        string `json:"slot" example:"before" validate:"required"`
	ContentType string `json:"contentType" example:"image/jpeg" validate:"required"`
	Size        int    `json:"size" example:"12345" validate:"required"`
}
