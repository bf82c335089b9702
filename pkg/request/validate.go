package request

import (
	"fmt"

	"github.com/chazu/mandrel/pkg/boss"
	"github.com/chazu/mandrel/pkg/dome"
	"github.com/chazu/mandrel/pkg/lathe"
	"github.com/chazu/mandrel/pkg/vessel"
)

// ValidationSeverity indicates whether a validation finding blocks a
// build, documents a clamp, or is merely advisory.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks a build
	SeverityWarning                           // the build proceeds with clamped values
	SeverityInfo                              // engineering advisory
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string             `json:"field,omitempty"` // request field, yaml spelling (zero if request-level)
	Message  string             `json:"message"`
	Severity ValidationSeverity `json:"-"`
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationWarning describes a non-blocking finding.
type ValidationWarning struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationResult bundles findings from all validation tiers.
type ValidationResult struct {
	Errors   []ValidationError   `json:"errors"`
	Warnings []ValidationWarning `json:"warnings"`
	Info     []ValidationWarning `json:"info"`
}

// OK reports whether the request can be built as given.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs the Tier 1 structural checks on a request and returns
// the blocking findings. An empty slice means the request is buildable;
// non-blocking tier 1 findings (token fallbacks) appear only in
// ValidateAll. Validation never mutates the request.
func Validate(r TankRequest) []ValidationError {
	var errs []ValidationError
	for _, e := range tier1Findings(r) {
		if e.Severity == SeverityError {
			errs = append(errs, e)
		}
	}
	return errs
}

// tier1Findings collects every structural finding, blocking or not.
func tier1Findings(r TankRequest) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDimensions(r)...)
	errs = append(errs, validateResolution(r)...)
	errs = append(errs, validateTokens(r)...)
	return errs
}

// ValidateAll runs all validation tiers (structural, geometric,
// advisory) and returns a ValidationResult with separated findings.
func ValidateAll(r TankRequest) ValidationResult {
	// Tier 1: structural validation.
	tier1 := tier1Findings(r)

	// Tier 2: geometric validation.
	tier2Errs, tier2Warnings := validateGeometry(r)

	// Tier 3: engineering advisories.
	tier3 := adviseEngineering(r)

	// Separate Tier 1 findings by severity.
	var result ValidationResult
	for _, e := range tier1 {
		switch e.Severity {
		case SeverityWarning:
			result.Warnings = append(result.Warnings, ValidationWarning{Field: e.Field, Message: e.Message})
		case SeverityInfo:
			result.Info = append(result.Info, ValidationWarning{Field: e.Field, Message: e.Message})
		default:
			result.Errors = append(result.Errors, e)
		}
	}

	result.Errors = append(result.Errors, tier2Errs...)
	result.Warnings = append(result.Warnings, tier2Warnings...)
	result.Info = append(result.Info, tier3...)

	return result
}

// validateDimensions checks that the barrel dimensions are physical.
func validateDimensions(r TankRequest) []ValidationError {
	var errs []ValidationError

	if r.RadiusMM <= 0 {
		errs = append(errs, ValidationError{
			Field:    "radius_mm",
			Message:  fmt.Sprintf("cylinder radius is %.1fmm, must be positive", r.RadiusMM),
			Severity: SeverityError,
		})
	}
	if r.LengthMM < 0 {
		errs = append(errs, ValidationError{
			Field:    "length_mm",
			Message:  fmt.Sprintf("cylinder length is %.1fmm, must be non-negative", r.LengthMM),
			Severity: SeverityError,
		})
	}

	return errs
}

// validateResolution checks the tessellation counts against the lathe's
// minimums. Zero means "use the default" and passes.
func validateResolution(r TankRequest) []ValidationError {
	var errs []ValidationError

	if r.Segments != 0 && r.Segments < lathe.MinSegments {
		errs = append(errs, ValidationError{
			Field:    "segments",
			Message:  fmt.Sprintf("%d revolution segments, need at least %d", r.Segments, lathe.MinSegments),
			Severity: SeverityError,
		})
	}
	if r.ProfilePoints != 0 && r.ProfilePoints < lathe.MinProfilePoints {
		errs = append(errs, ValidationError{
			Field:    "profile_points",
			Message:  fmt.Sprintf("%d profile points, need at least %d", r.ProfilePoints, lathe.MinProfilePoints),
			Severity: SeverityError,
		})
	}
	if r.Boss.Segments != 0 && r.Boss.Segments < lathe.MinSegments {
		errs = append(errs, ValidationError{
			Field:    "boss.segments",
			Message:  fmt.Sprintf("%d fitting segments, need at least %d", r.Boss.Segments, lathe.MinSegments),
			Severity: SeverityError,
		})
	}

	return errs
}

// validateTokens warns about unrecognized name tokens. Each resolves to
// a documented fallback, so these never block a build.
func validateTokens(r TankRequest) []ValidationError {
	var errs []ValidationError

	if r.Type != "" {
		if _, ok := vessel.LookupType(r.Type); !ok {
			errs = append(errs, ValidationError{
				Field:    "type",
				Message:  fmt.Sprintf("unrecognized construction type %q, assuming %s", r.Type, vessel.TypeIV),
				Severity: SeverityWarning,
			})
		}
	}
	if r.Dome != "" {
		if _, ok := dome.LookupKind(r.Dome); !ok {
			errs = append(errs, ValidationError{
				Field:    "dome",
				Message:  fmt.Sprintf("unrecognized dome family %q, assuming %s", r.Dome, dome.KindIsotensoid),
				Severity: SeverityWarning,
			})
		}
	}
	if r.Boss.Family != "" {
		if _, ok := boss.LookupFamily(r.Boss.Family); !ok {
			errs = append(errs, ValidationError{
				Field:    "boss.family",
				Message:  fmt.Sprintf("unrecognized boss family %q, assuming %s", r.Boss.Family, boss.FamilyStandard),
				Severity: SeverityWarning,
			})
		}
	}

	return errs
}
