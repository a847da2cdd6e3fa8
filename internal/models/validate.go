package models

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var errDate = errors.New("must be a valid YYYY-MM-DD date")

// IsDate checks that a non-empty string is a real YYYY-MM-DD calendar date.
var IsDate = validation.By(func(v interface{}) error {
	s, _ := v.(string)
	if s == "" {
		return nil
	}
	y, m, d, ok := SplitDate(s)
	if !ok || d > DaysIn(y, m) {
		return errDate
	}
	return nil
})

// DaysIn returns the number of days in the given month.
func DaysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Validate validates the specimen.
func (s Specimen) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.Name, validation.Required),
		validation.Field(&s.Year, validation.Min(0)),
		validation.Field(&s.AcquisitionDate, IsDate),
	)
}

// Validate validates the soil part.
func (p SoilPart) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.SoilID, validation.Required),
		validation.Field(&p.Value, validation.Min(0.0)),
	)
}

// Validate validates the pot change.
func (p PotChange) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Direction, validation.Required, validation.In(PotUp, PotDown, PotSame)),
		validation.Field(&p.FromSize, validation.Min(0)),
		validation.Field(&p.ToSize, validation.Min(0)),
	)
}

// Validate validates the photos.
func (i EventImages) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.Before, IsImageDataURL),
		validation.Field(&i.After, IsImageDataURL),
	)
}

// Validate validates the event. Nested soil parts, pot change and photos
// are checked too.
func (e CareEvent) Validate() error {
	return validation.ValidateStruct(&e,
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.SpecimenID, validation.Required),
		validation.Field(&e.Date, validation.Required, IsDate),
		validation.Field(&e.TypeID, validation.Required),
		validation.Field(&e.SoilMix),
		validation.Field(&e.PotChange),
		validation.Field(&e.Images),
	)
}

// Validate validates the settings.
func (s AppSettings) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.FontSize, validation.Required, validation.In(FontNormal, FontLarge, FontXL)),
	)
}
