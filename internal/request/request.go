// Package request loads and validates analysis requests from YAML, JSON or
// CUE files.
package request

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/roach88/taylorlab/internal/taylor"
)

// Defaults applied to fields a request leaves out.
const (
	DefaultOrder     = 5
	DefaultNumPoints = taylor.DefaultNumPoints
)

// Request is one analysis job.
//
// Plot sampling happens when Plot is set or when both plot bounds are
// given. Bounds are both-or-none and must satisfy plot_min < plot_max.
type Request struct {
	Expression string   `json:"expression" yaml:"expression" validate:"required"`
	Center     float64  `json:"center" yaml:"center" validate:"finite"`
	X          float64  `json:"x_eval" yaml:"x_eval" validate:"finite"`
	Order      int      `json:"order" yaml:"order" validate:"gte=0"`
	Plot       bool     `json:"plot,omitempty" yaml:"plot,omitempty"`
	PlotMin    *float64 `json:"plot_min,omitempty" yaml:"plot_min,omitempty" validate:"omitempty,finite"`
	PlotMax    *float64 `json:"plot_max,omitempty" yaml:"plot_max,omitempty" validate:"omitempty,finite"`
	NumPoints  int      `json:"num_points" yaml:"num_points" validate:"gte=10,lte=2000"`
}

// Default returns a request with every optional field at its default.
func Default() Request {
	return Request{Order: DefaultOrder, NumPoints: DefaultNumPoints}
}

// requestValidate is shared; validator.Validate caches struct metadata and
// is safe for concurrent use.
var requestValidate *validator.Validate

func init() {
	requestValidate = validator.New(validator.WithRequiredStructEnabled())
	requestValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = requestValidate.RegisterValidation("finite", validateFinite)
	requestValidate.RegisterStructValidation(validatePlotRange, Request{})
}

func validateFinite(fl validator.FieldLevel) bool {
	v := fl.Field().Float()
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func validatePlotRange(sl validator.StructLevel) {
	r := sl.Current().Interface().(Request)
	switch {
	case r.PlotMin == nil && r.PlotMax == nil:
	case r.PlotMin == nil:
		sl.ReportError(r.PlotMin, "plot_min", "PlotMin", "plotpair", "")
	case r.PlotMax == nil:
		sl.ReportError(r.PlotMax, "plot_max", "PlotMax", "plotpair", "")
	case !(*r.PlotMin < *r.PlotMax):
		sl.ReportError(r.PlotMax, "plot_max", "PlotMax", "plotorder", "")
	}
}

// Error describes the first invalid field of a request.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return "invalid request: " + e.Message
	}
	return fmt.Sprintf("invalid request: %s %s", e.Field, e.Message)
}

// IsRequestError reports whether err is or wraps an *Error.
func IsRequestError(err error) bool {
	var re *Error
	return errors.As(err, &re)
}

// Validate checks field bounds and the plot range.
func (r *Request) Validate() error {
	err := requestValidate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &Error{Message: err.Error()}
	}
	fe := verrs[0]
	return &Error{Field: fe.Field(), Message: describe(fe)}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "finite":
		return "must be a finite number"
	case "plotpair":
		return "requires both plot_min and plot_max"
	case "plotorder":
		return "must be greater than plot_min"
	}
	return fmt.Sprintf("failed %q", fe.Tag())
}

// PlotRange returns the sampling range, or nil when no plot was requested.
// Without bounds the analyzer's default window applies.
func (r *Request) PlotRange() *taylor.PlotRange {
	if r.PlotMin != nil && r.PlotMax != nil {
		return &taylor.PlotRange{Min: *r.PlotMin, Max: *r.PlotMax, NumPoints: r.NumPoints}
	}
	if r.Plot {
		return &taylor.PlotRange{NumPoints: r.NumPoints}
	}
	return nil
}
