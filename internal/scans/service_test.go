package scans

import (
	"context"
	"io"
	"testing"

	"github.com/labelspy/labelspy-backend/internal/users"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/gemini"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

type stubAnalyzer struct {
	result *gemini.AnalysisResult
	err    error

	gotBytes []byte
	gotMime  string
}

func (s *stubAnalyzer) Analyze(ctx context.Context, imageBytes []byte, mimeType string) (*gemini.AnalysisResult, error) {
	s.gotBytes = imageBytes
	s.gotMime = mimeType
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAnalyzer) Model() string { return "test-model" }

type stubUsers struct {
	users.Service

	recordErr error
	recorded  []string
}

func (s *stubUsers) RecordScan(ctx context.Context, uid string, result *gemini.AnalysisResult) error {
	s.recorded = append(s.recorded, uid)
	return s.recordErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestScanRecordsForAuthenticatedUser(t *testing.T) {
	analyzer := &stubAnalyzer{result: &gemini.AnalysisResult{ScanID: "scan-1"}}
	userStub := &stubUsers{}
	svc, err := NewService(analyzer, userStub, testLogger(), nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.Scan(context.Background(), "uid-1", []byte{0xFF, 0xD8}, "image/jpeg")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if result.ScanID != "scan-1" {
		t.Fatalf("unexpected result %+v", result)
	}
	if analyzer.gotMime != "image/jpeg" {
		t.Fatalf("expected mime type forwarded, got %q", analyzer.gotMime)
	}
	if len(userStub.recorded) != 1 || userStub.recorded[0] != "uid-1" {
		t.Fatalf("expected one recorded scan for uid-1, got %v", userStub.recorded)
	}
}

func TestScanSkipsRecordingForAnonymous(t *testing.T) {
	analyzer := &stubAnalyzer{result: &gemini.AnalysisResult{ScanID: "scan-1"}}
	userStub := &stubUsers{}
	svc, _ := NewService(analyzer, userStub, testLogger(), nil)

	if _, err := svc.Scan(context.Background(), "", []byte{0x01}, "image/png"); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(userStub.recorded) != 0 {
		t.Fatalf("expected no history for anonymous scan, got %v", userStub.recorded)
	}
}

func TestScanReturnsAnalyzerError(t *testing.T) {
	analyzer := &stubAnalyzer{err: pkgerrors.New(pkgerrors.CodeAnalysis, "blocked")}
	userStub := &stubUsers{}
	svc, _ := NewService(analyzer, userStub, testLogger(), nil)

	_, err := svc.Scan(context.Background(), "uid-1", []byte{0x01}, "image/jpeg")
	if err == nil {
		t.Fatal("expected analyzer error")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeAnalysis {
		t.Fatalf("expected ANALYSIS_ERROR, got %v", err)
	}
	if len(userStub.recorded) != 0 {
		t.Fatal("expected no recording after failed analysis")
	}
}

func TestScanSurvivesRecordingFailure(t *testing.T) {
	analyzer := &stubAnalyzer{result: &gemini.AnalysisResult{ScanID: "scan-1"}}
	userStub := &stubUsers{recordErr: pkgerrors.New(pkgerrors.CodeStore, "unavailable")}
	svc, _ := NewService(analyzer, userStub, testLogger(), nil)

	result, err := svc.Scan(context.Background(), "uid-1", []byte{0x01}, "image/jpeg")
	if err != nil {
		t.Fatalf("expected scan to succeed despite storage failure, got %v", err)
	}
	if result == nil || result.ScanID != "scan-1" {
		t.Fatalf("unexpected result %+v", result)
	}
}
