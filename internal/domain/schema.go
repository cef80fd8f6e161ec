package domain

// JSON schema definitions embedded into the extraction prompt so the model
// knows the exact field names, types and required set for each report kind.

func SchemaFor(kind ReportKind) map[string]any {
	if kind == KindRadiation {
		return radiationSchema
	}
	return therapySchema
}

var therapySchema = map[string]any{
	"title":       "TherapyReport",
	"description": "A patient's chemotherapy, biological, or hormonal therapy report.",
	"type":        "object",
	"properties": map[string]any{
		"patient_id": map[string]any{
			"type":        "string",
			"description": "Unique identifier for the patient or report.",
		},
		"therapy_type": map[string]any{
			"type":        "string",
			"description": "The overall type of therapy, e.g., 'Chemotherapy', 'Targeted Therapy'.",
		},
		"administration_route": map[string]any{
			"type":        "string",
			"description": "The route of administration, e.g., 'Intravenous'.",
		},
		"drugs_administered": map[string]any{
			"type":        "array",
			"description": "A list of drugs administered during the therapy.",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"drug_name": map[string]any{
						"type":        "string",
						"description": "The name of the drug administered, e.g., 'Docetaxel'.",
					},
					"dosage": map[string]any{
						"type":        "number",
						"description": "The dosage of the drug.",
					},
					"unit": map[string]any{
						"type":        "string",
						"description": "The unit of the dosage, e.g., 'mg'.",
					},
				},
				"required": []string{"drug_name"},
			},
		},
		"first_date_of_therapy": map[string]any{
			"type":        "string",
			"format":      "date",
			"description": "The start date of the first cycle of therapy.",
		},
		"number_of_cycles": map[string]any{
			"type":        "integer",
			"description": "The number of therapy cycles administered.",
		},
		"cycle_interval_days": map[string]any{
			"type":        "integer",
			"description": "The interval between cycles in days.",
		},
		"adverse_event_observed": map[string]any{
			"type":        "boolean",
			"description": "Indicates if an adverse event was observed.",
		},
		"adverse_event_medication": map[string]any{
			"type":        "string",
			"description": "Medication given for the adverse event.",
		},
		"comment": map[string]any{
			"type":        "string",
			"description": "General comments about the therapy or patient's condition.",
		},
		"hospital_name": map[string]any{
			"type":        "string",
			"description": "Name of the hospital or laboratory.",
		},
		"hospital_location": map[string]any{
			"type":        "string",
			"description": "Location of the hospital or laboratory.",
		},
	},
	"required": []string{
		"patient_id", "therapy_type", "administration_route", "drugs_administered",
		"first_date_of_therapy", "number_of_cycles", "cycle_interval_days",
		"adverse_event_observed", "hospital_name", "hospital_location",
	},
}

var radiationSchema = map[string]any{
	"title":       "RadiationTherapyReport",
	"description": "A patient's radiation therapy report.",
	"type":        "object",
	"properties": map[string]any{
		"patient_name": map[string]any{
			"type":        "string",
			"description": "Name of the patient.",
		},
		"test_therapy": map[string]any{
			"type":        "string",
			"description": "The type of test or therapy, e.g., 'therapy'.",
		},
		"radiation_type": map[string]any{
			"type":        "string",
			"description": "The specific type of radiation therapy, e.g., 'EBRT'.",
		},
		"start_date": map[string]any{
			"type":        "string",
			"format":      "date",
			"description": "The start date of the radiation therapy.",
		},
		"end_date": map[string]any{
			"type":        "string",
			"format":      "date",
			"description": "The end date of the radiation therapy.",
		},
		"fractions": map[string]any{
			"type":        "integer",
			"description": "The number of fractions administered.",
		},
		"dosage": map[string]any{
			"type":        "number",
			"description": "The total dosage of radiation.",
		},
		"unit": map[string]any{
			"type":        "string",
			"description": "The unit of the dosage, e.g., 'GY'.",
		},
		"area_treated": map[string]any{
			"type":        "string",
			"description": "The anatomical area treated, e.g., 'Spine'.",
		},
		"events": map[string]any{
			"type":        "string",
			"description": "Any adverse events noted during therapy.",
		},
		"medication": map[string]any{
			"type":        "string",
			"description": "Medication given for adverse events.",
		},
		"lab_name": map[string]any{
			"type":        "string",
			"description": "Name of the hospital or laboratory.",
		},
		"lab_location": map[string]any{
			"type":        "string",
			"description": "Location of the hospital or laboratory.",
		},
		"comment": map[string]any{
			"type":        "string",
			"description": "General comments about the therapy.",
		},
	},
	"required": []string{
		"patient_name", "test_therapy", "radiation_type", "start_date", "end_date",
		"fractions", "dosage", "unit", "area_treated", "lab_name", "lab_location",
	},
}
