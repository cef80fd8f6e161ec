package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/atomikkus/therapies-api/internal/domain"
)

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const therapyPromptHeader = `Extract structured therapy report data from this markdown text. This could be a chemotherapy, biological therapy, or hormonal therapy report. Return only a JSON object conforming to this schema:`

const therapyPromptNotes = `Important notes:
- therapy_type should be one of: 'Chemotherapy', 'Biological Therapy', 'Targeted Therapy', 'Hormonal Therapy', 'Immunotherapy'
- administration_route examples: 'Intravenous', 'Oral', 'Subcutaneous', 'Intramuscular'
- Extract all drugs mentioned with their dosages and units
- Convert dates to YYYY-MM-DD format
- Set adverse_event_observed to true if any side effects or adverse events are mentioned`

const radiationPromptHeader = `Extract structured radiation therapy report data from this markdown text. Return only a JSON object conforming to this schema:`

const radiationPromptNotes = `Important notes:
- radiation_type examples: 'EBRT' (External Beam Radiation Therapy), 'IMRT', 'IGRT', 'Stereotactic', 'Brachytherapy'
- test_therapy should typically be 'therapy' for radiation therapy reports
- Convert dates to YYYY-MM-DD format
- Extract total dosage and unit (commonly 'Gy' for Gray)
- area_treated should specify the anatomical region (e.g., 'Spine', 'Brain', 'Chest', 'Pelvis')
- Include any adverse events or side effects mentioned
- Extract number of fractions (treatment sessions)`

// Extractor asks a Mistral chat model to pull structured report fields out of
// markdown text.
type Extractor struct {
	client *Client
	model  string
	logger *zap.Logger
}

func NewExtractor(client *Client, model string, logger *zap.Logger) *Extractor {
	return &Extractor{client: client, model: model, logger: logger}
}

// Extract sends text to the chat model with the schema for kind and decodes
// the JSON object it returns. The mapping is not validated here; downstream
// schema construction decides whether it conforms.
func (e *Extractor) Extract(ctx context.Context, text string, kind domain.ReportKind) (domain.RawExtraction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("extraction text is empty")
	}

	prompt, err := buildPrompt(kind, text)
	if err != nil {
		return nil, err
	}

	req := chatRequest{
		Model:          e.model,
		Messages:       []chatMessage{{Role: "user", Content: prompt}},
		ResponseFormat: &responseFormat{Type: "json_object"},
		MaxTokens:      4000,
		Temperature:    0.1,
	}

	var resp chatResponse
	if err := e.client.postJSON(ctx, "/chat/completions", req, &resp); err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no extraction returned")
	}

	content := unfence(resp.Choices[0].Message.Content)
	if strings.TrimSpace(content) == "" {
		return nil, errors.New("empty response from extraction model")
	}

	var raw domain.RawExtraction
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode extraction response: %w", err)
	}

	e.logger.Debug("extraction completed", zap.String("kind", string(kind)), zap.Int("fields", len(raw)))

	return raw, nil
}

func buildPrompt(kind domain.ReportKind, text string) (string, error) {
	schema, err := json.MarshalIndent(domain.SchemaFor(kind), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}

	header, notes := therapyPromptHeader, therapyPromptNotes
	if kind == domain.KindRadiation {
		header, notes = radiationPromptHeader, radiationPromptNotes
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s\n\nReport:\n%s", header, schema, notes, text), nil
}

// unfence strips a surrounding markdown code fence when the model wraps its
// JSON answer in one despite the json_object response format.
func unfence(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
