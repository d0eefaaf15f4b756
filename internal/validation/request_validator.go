package validation

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "econviz/internal/errors"
	api "econviz/pkg/contracts/api/v1"
	"econviz/pkg/contracts/domain"
)

// Accepted values for the enumerated chart parameters
var (
	ChartTypes = []string{string(domain.ChartTypeLine), string(domain.ChartTypeBar)}

	InflationModes = []string{
		string(domain.InflationExclude),
		string(domain.InflationByCategory),
		string(domain.InflationTotal),
	}

	EarningsBuckets = []string{
		domain.BucketExclude, "Total", "By Education", "By Gender", "By Race", "By Race and Gender",
	}

	UnemploymentBuckets = []string{
		domain.BucketExclude, "Total", "By Education", "By Gender", "By Race",
	}

	Toggles = []string{api.ToggleExclude, api.ToggleInclude}
)

const maxSeriesIDLength = 32

// RequestValidator validates chart API requests using struct tags
type RequestValidator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewRequestValidator creates a validator with the chart tags registered
func NewRequestValidator(logger *slog.Logger) *RequestValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("chart_type", oneOfToken(ChartTypes))
	_ = v.RegisterValidation("inflation", oneOfToken(InflationModes))
	_ = v.RegisterValidation("earnings_bucket", oneOfToken(EarningsBuckets))
	_ = v.RegisterValidation("unemployment_bucket", oneOfToken(UnemploymentBuckets))
	_ = v.RegisterValidation("toggle", oneOfToken(Toggles))
	_ = v.RegisterValidation("series_id", isSeriesID)

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RequestValidator{
		validate: v,
		logger:   logger.With(slog.String("component", "request_validator")),
	}
}

// ValidateChartRequest checks every field of a chart request
func (v *RequestValidator) ValidateChartRequest(req api.ChartRequest) error {
	return v.ValidateStruct(req)
}

// ValidateExportRequest checks the export format
func (v *RequestValidator) ValidateExportRequest(req api.ExportRequest) error {
	return v.ValidateStruct(req)
}

// ValidateStruct validates a struct and returns an APIError listing every failed field
func (v *RequestValidator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}

	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}

	v.logger.Debug("request validation failed", slog.Int("fields", len(out)))
	return apierrors.NewValidationErrors(out)
}

// formatValidationError formats validation error messages
func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "chart_type":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(ChartTypes, ", "))
	case "inflation":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(InflationModes, ", "))
	case "earnings_bucket":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(EarningsBuckets, ", "))
	case "unemployment_bucket":
		return fmt.Sprintf("%s must be one of: %s", field, strings.Join(UnemploymentBuckets, ", "))
	case "toggle":
		return fmt.Sprintf("%s must be %s or %s", field, api.ToggleInclude, api.ToggleExclude)
	case "series_id":
		return fmt.Sprintf("%s must be a series identifier", field)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// oneOfToken matches a form token against allowed values after "+" decoding
func oneOfToken(allowed []string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := api.NormalizeToken(fl.Field().String())
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// isSeriesID accepts upper-case letters, digits, dots and underscores
func isSeriesID(fl validator.FieldLevel) bool {
	id := fl.Field().String()
	if id == "" || len(id) > maxSeriesIDLength {
		return false
	}
	for _, ch := range id {
		if !((ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9') || ch == '.' || ch == '_') {
			return false
		}
	}
	return true
}
