package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/labelspy/labelspy-backend/pkg/config"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/gemini"
)

type stubScanService struct {
	result *gemini.AnalysisResult
	err    error

	calls    int
	gotUID   string
	gotMime  string
	gotBytes []byte
}

func (s *stubScanService) Scan(ctx context.Context, uid string, imageBytes []byte, mimeType string) (*gemini.AnalysisResult, error) {
	s.calls++
	s.gotUID = uid
	s.gotMime = mimeType
	s.gotBytes = imageBytes
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func scanConfig() config.ScanConfig {
	return config.ScanConfig{AllowAnonymous: true, MaxUploadMB: 10, TopIngredientLimit: 10}
}

func multipartImage(t *testing.T, field, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+field+`"; filename="label.jpg"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, writer.FormDataContentType()
}

func TestScanLabelSuccess(t *testing.T) {
	svc := &stubScanService{result: &gemini.AnalysisResult{
		ScanID:      "scan-1",
		Ingredients: []gemini.IngredientInfo{{Name: "Sugar"}},
		Summary:     "one sweetener",
	}}
	handler := ScanLabel(svc, scanConfig(), nil)

	body, contentType := multipartImage(t, "file", "image/jpeg", []byte{0xFF, 0xD8, 0xFF})
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var decoded gemini.AnalysisResult
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if decoded.ScanID != "scan-1" || len(decoded.Ingredients) != 1 {
		t.Fatalf("unexpected payload %+v", decoded)
	}
	if svc.gotMime != "image/jpeg" {
		t.Fatalf("expected forwarded mime type, got %q", svc.gotMime)
	}
	if svc.gotUID != "" {
		t.Fatalf("expected anonymous uid, got %q", svc.gotUID)
	}
}

func TestScanLabelRejectsMissingFilePart(t *testing.T) {
	svc := &stubScanService{}
	handler := ScanLabel(svc, scanConfig(), nil)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("other", "value")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("expected no analysis for a request without the file part")
	}
}

func TestScanLabelRejectsUnsupportedImageType(t *testing.T) {
	svc := &stubScanService{}
	handler := ScanLabel(svc, scanConfig(), nil)

	body, contentType := multipartImage(t, "file", "image/gif", []byte{0x47, 0x49, 0x46})
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("expected no analysis for an unsupported image type")
	}

	var decoded struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if decoded.Error == "" {
		t.Fatal("expected an error message in the body")
	}
}

func TestScanLabelRejectsEmptyFile(t *testing.T) {
	svc := &stubScanService{}
	handler := ScanLabel(svc, scanConfig(), nil)

	body, contentType := multipartImage(t, "file", "image/png", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatal("expected no analysis for an empty upload")
	}
}

func TestScanLabelMapsAnalysisFailure(t *testing.T) {
	svc := &stubScanService{err: pkgerrors.New(pkgerrors.CodeAnalysis, "blocked by safety filter")}
	handler := ScanLabel(svc, scanConfig(), nil)

	body, contentType := multipartImage(t, "file", "image/jpeg", []byte{0x01})
	req := httptest.NewRequest(http.MethodPost, "/api/scan", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
