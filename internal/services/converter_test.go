package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/atomikkus/therapies-api/internal/config"
)

func testConfig(apiKey, baseURL string) config.Config {
	return config.Config{
		MistralAPIKey:  apiKey,
		MistralBaseURL: baseURL,
		OCRModel:       "mistral-ocr-latest",
		ExtractModel:   "mistral-medium-latest",
	}
}

func writeTestPDF(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.pdf")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write test pdf: %v", err)
	}
	return path
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(testConfig("", "")); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if _, err := NewClient(testConfig("  ", "")); err != ErrNotConfigured {
		t.Fatalf("expected ErrNotConfigured for blank key, got %v", err)
	}
}

func TestConvertPDFCombinesPages(t *testing.T) {
	docContent := "%PDF-1.4 fake document"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ocr" {
			t.Errorf("expected /ocr, got %s", r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			t.Error("expected Bearer token in Authorization header")
		}

		var req ocrRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "mistral-ocr-latest" {
			t.Errorf("unexpected model %s", req.Model)
		}

		wantURL := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte(docContent))
		if req.Document.DocumentURL != wantURL {
			t.Error("document data url does not match uploaded bytes")
		}

		json.NewEncoder(w).Encode(ocrResponse{
			Pages: []ocrPage{
				{Index: 0, Markdown: "# First page\n![img-0](img-0)\nIntro text"},
				{Index: 1, Markdown: "Second page body"},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(testConfig("test-key", server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	converter := NewConverter(client, "mistral-ocr-latest", zap.NewNop())

	text, err := converter.ConvertPDF(context.Background(), writeTestPDF(t, docContent), false)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if !strings.Contains(text, "## Page 1") || !strings.Contains(text, "## Page 2") {
		t.Fatalf("expected page headers, got %q", text)
	}
	if strings.Contains(text, "![img-0]") {
		t.Fatalf("expected image references stripped, got %q", text)
	}
	if !strings.Contains(text, "Intro text") || !strings.Contains(text, "Second page body") {
		t.Fatalf("expected page content preserved, got %q", text)
	}
}

func TestConvertPDFEmbedsImages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ocrRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if !req.IncludeImageBase64 {
			t.Error("expected include_image_base64 to be true")
		}

		json.NewEncoder(w).Encode(ocrResponse{
			Pages: []ocrPage{
				{
					Index:    0,
					Markdown: "![img-0](img-0)",
					Images:   []ocrImage{{ID: "img-0", ImageBase64: "data:image/png;base64,AAAA"}},
				},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(testConfig("test-key", server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	converter := NewConverter(client, "mistral-ocr-latest", zap.NewNop())

	text, err := converter.ConvertPDF(context.Background(), writeTestPDF(t, "%PDF-1.4"), true)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}

	if !strings.Contains(text, "![img-0](data:image/png;base64,AAAA)") {
		t.Fatalf("expected base64 image embedded, got %q", text)
	}
}

func TestConvertPDFEmptyDocumentYieldsEmptyText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ocrResponse{Pages: []ocrPage{}})
	}))
	defer server.Close()

	client, err := NewClient(testConfig("test-key", server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	converter := NewConverter(client, "mistral-ocr-latest", zap.NewNop())

	text, err := converter.ConvertPDF(context.Background(), writeTestPDF(t, "%PDF-1.4"), false)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if strings.TrimSpace(text) != "" {
		t.Fatalf("expected empty text for zero pages, got %q", text)
	}
}

func TestConvertPDFMissingFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request should be sent for a missing file")
	}))
	defer server.Close()

	client, err := NewClient(testConfig("test-key", server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	converter := NewConverter(client, "mistral-ocr-latest", zap.NewNop())

	if _, err := converter.ConvertPDF(context.Background(), "/nonexistent/file.pdf", false); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestConvertPDFAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"message": "invalid api key", "type": "authentication_error"})
	}))
	defer server.Close()

	client, err := NewClient(testConfig("bad-key", server.URL))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	converter := NewConverter(client, "mistral-ocr-latest", zap.NewNop())

	_, err = converter.ConvertPDF(context.Background(), writeTestPDF(t, "%PDF-1.4"), false)
	if err == nil {
		t.Fatal("expected API error")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected decoded api error message, got %v", err)
	}
}
