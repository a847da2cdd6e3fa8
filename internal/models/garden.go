// Package models defines the domain types for Rosarium.
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// CareTypeID tags the kind of care activity recorded by an event.
type CareTypeID string

const (
	CarePruning  CareTypeID = "pruning"
	CareRepot    CareTypeID = "repot"
	CareSoil     CareTypeID = "soil"
	CareLiquid   CareTypeID = "liquid"
	CareSolid    CareTypeID = "solid"
	CareVital    CareTypeID = "vital"
	CarePest     CareTypeID = "pest"
	CareBlooming CareTypeID = "blooming"
)

// UnknownBrand is stored when a specimen has no recognised origin.
const UnknownBrand = "unknown"

// Specimen is a tracked plant individual.
type Specimen struct {
	ID              string `json:"id" yaml:"id"`
	Name            string `json:"name" yaml:"name"`
	Brand           string `json:"brand" yaml:"brand"`
	Year            int    `json:"year,omitempty" yaml:"year,omitempty"` // release year
	AcquisitionDate string `json:"acquisitionDate,omitempty" yaml:"acquisitionDate,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SoilPart is one component of a soil blend. Value is a unit-less relative part.
type SoilPart struct {
	SoilID string  `json:"soilId" yaml:"soilId"`
	Value  float64 `json:"value" yaml:"value"`
}

// SoilMix is an ordered soil blend.
type SoilMix []SoilPart

// Shares returns the percentage of each part, in order. A blend whose parts
// sum to zero yields 0 for every part.
func (m SoilMix) Shares() []float64 {
	out := make([]float64, len(m))
	var total float64
	for _, p := range m {
		total += p.Value
	}
	if total <= 0 {
		return out
	}
	for i, p := range m {
		out[i] = p.Value / total * 100
	}
	return out
}

// PotDirection describes how the pot size changed on repot.
type PotDirection string

const (
	PotUp   PotDirection = "up"
	PotDown PotDirection = "down"
	PotSame PotDirection = "same"
)

// PotChange records the pot sizes before and after a repot.
type PotChange struct {
	Direction PotDirection `json:"direction" yaml:"direction"`
	FromSize  int          `json:"fromSize" yaml:"fromSize"`
	ToSize    int          `json:"toSize" yaml:"toSize"`
}

// EventImages holds embedded before/after photos (data URLs).
type EventImages struct {
	Before string `json:"before,omitempty" yaml:"before,omitempty"`
	After  string `json:"after,omitempty" yaml:"after,omitempty"`
}

// Empty reports whether neither photo is set.
func (i *EventImages) Empty() bool {
	return i == nil || (i.Before == "" && i.After == "")
}

// CareEvent is a single dated care record for a specimen.
type CareEvent struct {
	ID         string       `json:"id" yaml:"id"`
	SpecimenID string       `json:"roseId" yaml:"roseId"`
	Date       string       `json:"date" yaml:"date"` // YYYY-MM-DD
	TypeID     CareTypeID   `json:"typeId" yaml:"typeId"`
	ProductID  string       `json:"productId,omitempty" yaml:"productId,omitempty"`
	Note       string       `json:"note,omitempty" yaml:"note,omitempty"`
	SoilMix    SoilMix      `json:"soilMix,omitempty" yaml:"soilMix,omitempty"`
	PotChange  *PotChange   `json:"potChangeDetail,omitempty" yaml:"potChangeDetail,omitempty"`
	Images     *EventImages `json:"images,omitempty" yaml:"images,omitempty"`
}

// YearMonth returns the year and month encoded in Date. ok is false when the
// date is not in YYYY-MM-DD form.
func (e CareEvent) YearMonth() (year, month int, ok bool) {
	y, m, _, ok := SplitDate(e.Date)
	return y, m, ok
}

// Day returns the day-of-month component of Date, or 0 when unparseable.
func (e CareEvent) Day() int {
	_, _, d, ok := SplitDate(e.Date)
	if !ok {
		return 0
	}
	return d
}

// Clone returns a deep copy of the event.
func (e CareEvent) Clone() CareEvent {
	c := e
	if e.SoilMix != nil {
		c.SoilMix = append(SoilMix(nil), e.SoilMix...)
	}
	if e.PotChange != nil {
		pc := *e.PotChange
		c.PotChange = &pc
	}
	if e.Images != nil {
		im := *e.Images
		c.Images = &im
	}
	return c
}

// MonthPrefix returns the zero-padded "YYYY-MM" bucket key.
func MonthPrefix(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// FormatDate renders a YYYY-MM-DD date string.
func FormatDate(year, month, day int) string {
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// SplitDate parses a YYYY-MM-DD string into its components.
func SplitDate(date string) (year, month, day int, ok bool) {
	parts := strings.Split(date, "-")
	if len(parts) != 3 || len(parts[0]) != 4 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, 0, 0, false
	}
	var err error
	if year, err = strconv.Atoi(parts[0]); err != nil {
		return 0, 0, 0, false
	}
	if month, err = strconv.Atoi(parts[1]); err != nil || month < 1 || month > 12 {
		return 0, 0, 0, false
	}
	if day, err = strconv.Atoi(parts[2]); err != nil || day < 1 || day > 31 {
		return 0, 0, 0, false
	}
	return year, month, day, true
}
