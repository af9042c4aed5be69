package scans

import (
	"context"
	"time"

	"github.com/labelspy/labelspy-backend/internal/users"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/gemini"
	"github.com/labelspy/labelspy-backend/pkg/logger"
	"github.com/labelspy/labelspy-backend/pkg/metrics"
)

// Analyzer runs the vision analysis against one label image.
type Analyzer interface {
	Analyze(ctx context.Context, imageBytes []byte, mimeType string) (*gemini.AnalysisResult, error)
	Model() string
}

// Service orchestrates one scan: analyze the image, then associate the
// result with the authenticated user when one is present.
type Service interface {
	Scan(ctx context.Context, uid string, imageBytes []byte, mimeType string) (*gemini.AnalysisResult, error)
}

type service struct {
	analyzer Analyzer
	users    users.Service
	logg     *logger.Logger
	metrics  *metrics.ScanMetrics
}

func NewService(analyzer Analyzer, userService users.Service, logg *logger.Logger, scanMetrics *metrics.ScanMetrics) (Service, error) {
	if analyzer == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "scans service requires an analyzer")
	}
	if userService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "scans service requires a users service")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "scans service requires a logger")
	}
	return &service{
		analyzer: analyzer,
		users:    userService,
		logg:     logg,
		metrics:  scanMetrics,
	}, nil
}

// Scan analyzes the image and, for authenticated callers, records the
// result against their profile. Recording is best-effort: a storage
// failure after a successful analysis is logged and the result is
// returned anyway.
func (s *service) Scan(ctx context.Context, uid string, imageBytes []byte, mimeType string) (*gemini.AnalysisResult, error) {
	started := time.Now()
	result, err := s.analyzer.Analyze(ctx, imageBytes, mimeType)
	s.metrics.ObserveDuration(s.analyzer.Model(), time.Since(started))
	if err != nil {
		s.metrics.IncFailure(s.analyzer.Model())
		return nil, err
	}
	s.metrics.IncSuccess(s.analyzer.Model())

	ctx = s.logg.WithScanID(ctx, result.ScanID)
	if uid == "" {
		s.logg.Info(ctx, "anonymous scan completed, skipping history")
		return result, nil
	}

	if err := s.users.RecordScan(ctx, uid, result); err != nil {
		s.logg.Error(ctx, "failed to record scan for user", err)
	}
	return result, nil
}
