package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

type ocrRequest struct {
	Model              string      `json:"model"`
	Document           documentURL `json:"document"`
	IncludeImageBase64 bool        `json:"include_image_base64"`
}

type documentURL struct {
	Type        string `json:"type"`
	DocumentURL string `json:"document_url"`
}

type ocrResponse struct {
	Pages []ocrPage `json:"pages"`
}

type ocrPage struct {
	Index    int        `json:"index"`
	Markdown string     `json:"markdown"`
	Images   []ocrImage `json:"images"`
}

type ocrImage struct {
	ID          string `json:"id"`
	ImageBase64 string `json:"image_base64"`
}

// Converter turns a PDF file into markdown text via the Mistral OCR API.
type Converter struct {
	client *Client
	model  string
	logger *zap.Logger
}

func NewConverter(client *Client, model string, logger *zap.Logger) *Converter {
	return &Converter{client: client, model: model, logger: logger}
}

// ConvertPDF runs OCR on the file at path and returns the combined markdown
// for all pages. When includeImages is false, image references are stripped;
// when true, they are rewritten to their base64 payloads.
func (c *Converter) ConvertPDF(ctx context.Context, path string, includeImages bool) (string, error) {
	docData, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pdf file: %w", err)
	}

	encoded := base64.StdEncoding.EncodeToString(docData)

	req := ocrRequest{
		Model: c.model,
		Document: documentURL{
			Type:        "document_url",
			DocumentURL: "data:application/pdf;base64," + encoded,
		},
		IncludeImageBase64: includeImages,
	}

	var resp ocrResponse
	if err := c.client.postJSON(ctx, "/ocr", req, &resp); err != nil {
		return "", err
	}

	c.logger.Debug("ocr completed", zap.String("path", path), zap.Int("pages", len(resp.Pages)))

	return combineMarkdown(resp, includeImages), nil
}

// combineMarkdown joins per-page markdown under "## Page N" headers. An empty
// page list yields an empty string, which callers treat as extraction failure.
func combineMarkdown(resp ocrResponse, includeImages bool) string {
	var parts []string
	for i, page := range resp.Pages {
		parts = append(parts, fmt.Sprintf("\n## Page %d\n---\n", i+1))

		content := page.Markdown
		if includeImages {
			for _, img := range page.Images {
				content = strings.ReplaceAll(content,
					fmt.Sprintf("![%s](%s)", img.ID, img.ID),
					fmt.Sprintf("![%s](%s)", img.ID, img.ImageBase64))
			}
		} else {
			var kept []string
			for _, line := range strings.Split(content, "\n") {
				if strings.HasPrefix(strings.TrimSpace(line), "![") {
					continue
				}
				kept = append(kept, line)
			}
			content = strings.Join(kept, "\n")
		}

		parts = append(parts, content, "\n")
	}
	return strings.Join(parts, "\n")
}
