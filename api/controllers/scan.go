package controllers

import (
	"io"
	"net/http"

	"github.com/labelspy/labelspy-backend/api/middleware"
	"github.com/labelspy/labelspy-backend/api/responses"
	"github.com/labelspy/labelspy-backend/internal/scans"
	"github.com/labelspy/labelspy-backend/pkg/config"
	pkgerrors "github.com/labelspy/labelspy-backend/pkg/errors"
	"github.com/labelspy/labelspy-backend/pkg/logger"
)

const scanFileField = "file"

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// ScanLabel accepts a multipart label image, runs the vision analysis,
// and returns the structured result. Works for both authenticated and
// anonymous callers; only authenticated scans are written to history.
func ScanLabel(svc scans.Service, cfg config.ScanConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "scan service unavailable"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes())
		if err := r.ParseMultipartForm(cfg.MaxUploadBytes()); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart request or file too large"))
			return
		}

		file, header, err := r.FormFile(scanFileField)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file part is required"))
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")
		if !allowedImageTypes[mimeType] {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unsupported image type, expected JPEG or PNG"))
			return
		}

		imageBytes, err := io.ReadAll(file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "failed to read uploaded file"))
			return
		}
		if len(imageBytes) == 0 {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "uploaded file is empty"))
			return
		}

		uid := middleware.UserIDFromContext(r.Context())
		result, err := svc.Scan(r.Context(), uid, imageBytes, mimeType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
