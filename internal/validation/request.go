package validation

import (
	"bytes"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// spreadsheet extensions accepted for uploads
var allowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
}

// zipMagic is the local-file-header signature every OOXML workbook starts with.
var zipMagic = []byte{0x50, 0x4b, 0x03, 0x04}

// AuditRequest carries the validated parameters of an audit run.
type AuditRequest struct {
	FilterText    string  `json:"mawb_filter"`
	LowThreshold  float64 `json:"low_threshold" validate:"gte=0,lt=1"`
	HighThreshold float64 `json:"high_threshold" validate:"gt=0,lte=1,gtfield=LowThreshold"`
	Format        string  `json:"format" validate:"omitempty,oneof=xlsx json"`
}

// RequestValidator validates audit requests and uploaded workbooks.
type RequestValidator struct {
	validate       *validator.Validate
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewRequestValidator creates a request validator with the given upload cap.
func NewRequestValidator(logger *slog.Logger, maxUploadBytes int64) *RequestValidator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{
		validate:       v,
		logger:         logger.With(slog.String("component", "request_validator")),
		maxUploadBytes: maxUploadBytes,
	}
}

// ValidateRequest checks the run parameters against their struct tags.
func (v *RequestValidator) ValidateRequest(req AuditRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var errs validator.ValidationErrors
		if ok := isValidationErrors(err, &errs); ok && len(errs) > 0 {
			first := errs[0]
			return fmt.Errorf("invalid %s: failed %s constraint", first.Field(), first.Tag())
		}
		return err
	}
	return nil
}

// ValidateUpload checks filename, size and magic bytes of an uploaded workbook.
func (v *RequestValidator) ValidateUpload(filename string, size int64, head []byte) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[ext] {
		return fmt.Errorf("unsupported file type %q: expected .xlsx or .xlsm", ext)
	}

	if size <= 0 {
		return fmt.Errorf("uploaded file %s is empty", filename)
	}
	if size > v.maxUploadBytes {
		v.logger.Warn("upload rejected: too large",
			slog.String("filename", filename),
			slog.Int64("size", size),
			slog.Int64("limit", v.maxUploadBytes))
		return fmt.Errorf("uploaded file %s exceeds %d byte limit", filename, v.maxUploadBytes)
	}

	if len(head) >= len(zipMagic) && !bytes.HasPrefix(head, zipMagic) {
		return fmt.Errorf("uploaded file %s is not a valid workbook", filename)
	}

	return nil
}

// MaxUploadBytes reports the configured upload cap.
func (v *RequestValidator) MaxUploadBytes() int64 {
	return v.maxUploadBytes
}

func isValidationErrors(err error, target *validator.ValidationErrors) bool {
	errs, ok := err.(validator.ValidationErrors)
	if ok {
		*target = errs
	}
	return ok
}
