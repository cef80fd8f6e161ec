package domain

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ReportKind selects which report schema an extraction targets.
type ReportKind string

const (
	KindTherapy   ReportKind = "therapy"
	KindRadiation ReportKind = "radiation"
)

// Label returns the human-readable name used in response messages.
func (k ReportKind) Label() string {
	switch k {
	case KindRadiation:
		return "radiation therapy report"
	default:
		return "therapy report"
	}
}

// Date marshals as YYYY-MM-DD, the format the extraction prompt asks for.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(dateLayout))
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		d.Time = time.Time{}
		return nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", raw, err)
	}
	d.Time = parsed
	return nil
}

// DrugAdministered is a single drug given during a therapy cycle.
type DrugAdministered struct {
	DrugName string   `json:"drug_name" validate:"required"`
	Dosage   *float64 `json:"dosage"`
	Unit     *string  `json:"unit"`
}

// TherapyReport is the structured record for chemotherapy, biological,
// targeted, hormonal and immunotherapy reports.
type TherapyReport struct {
	PatientID              string             `json:"patient_id" validate:"required"`
	TherapyType            string             `json:"therapy_type" validate:"required"`
	AdministrationRoute    string             `json:"administration_route" validate:"required"`
	DrugsAdministered      []DrugAdministered `json:"drugs_administered" validate:"required,min=1,dive"`
	FirstDateOfTherapy     Date               `json:"first_date_of_therapy" validate:"required"`
	NumberOfCycles         int                `json:"number_of_cycles" validate:"required"`
	CycleIntervalDays      int                `json:"cycle_interval_days" validate:"required"`
	AdverseEventObserved   *bool              `json:"adverse_event_observed" validate:"required"`
	AdverseEventMedication *string            `json:"adverse_event_medication"`
	Comment                *string            `json:"comment"`
	HospitalName           string             `json:"hospital_name" validate:"required"`
	HospitalLocation       string             `json:"hospital_location" validate:"required"`
}

// RadiationTherapyReport is the structured record for radiation therapy reports.
type RadiationTherapyReport struct {
	PatientName   string  `json:"patient_name" validate:"required"`
	TestTherapy   string  `json:"test_therapy" validate:"required"`
	RadiationType string  `json:"radiation_type" validate:"required"`
	StartDate     Date    `json:"start_date" validate:"required"`
	EndDate       Date    `json:"end_date" validate:"required"`
	Fractions     int     `json:"fractions" validate:"required"`
	Dosage        float64 `json:"dosage" validate:"required"`
	Unit          string  `json:"unit" validate:"required"`
	AreaTreated   string  `json:"area_treated" validate:"required"`
	Events        *string `json:"events"`
	Medication    *string `json:"medication"`
	LabName       string  `json:"lab_name" validate:"required"`
	LabLocation   string  `json:"lab_location" validate:"required"`
	Comment       *string `json:"comment"`
}

// RawExtraction is the loosely-typed field mapping returned by the
// extraction model. Keys are not guaranteed to match any schema.
type RawExtraction map[string]any

// ExtractionOutcome distinguishes a schema-validated report record from the
// raw unvalidated mapping. When Validated is false, Data is the RawExtraction
// passed through as-is so partial results remain available to callers.
type ExtractionOutcome struct {
	Validated bool
	Data      any
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(Date); ok {
			return d.Time
		}
		return nil
	}, Date{})
	return v
}

// BuildReport constructs the typed report record for kind from a raw
// extraction. On any decode or validation failure it returns the raw mapping
// as an unvalidated outcome together with the failure reason; callers are
// expected to log the reason and serve the raw payload anyway.
func BuildReport(kind ReportKind, raw RawExtraction) (ExtractionOutcome, error) {
	fallback := ExtractionOutcome{Validated: false, Data: raw}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return fallback, fmt.Errorf("encode extraction: %w", err)
	}

	switch kind {
	case KindTherapy:
		var report TherapyReport
		if err := json.Unmarshal(encoded, &report); err != nil {
			return fallback, fmt.Errorf("decode therapy report: %w", err)
		}
		if err := validate.Struct(report); err != nil {
			return fallback, fmt.Errorf("validate therapy report: %w", err)
		}
		return ExtractionOutcome{Validated: true, Data: report}, nil
	case KindRadiation:
		var report RadiationTherapyReport
		if err := json.Unmarshal(encoded, &report); err != nil {
			return fallback, fmt.Errorf("decode radiation therapy report: %w", err)
		}
		if err := validate.Struct(report); err != nil {
			return fallback, fmt.Errorf("validate radiation therapy report: %w", err)
		}
		return ExtractionOutcome{Validated: true, Data: report}, nil
	default:
		return fallback, fmt.Errorf("unknown report kind: %s", kind)
	}
}
