package mining

import (
	"fmt"
	"math"
)

// Thresholds is the parameter triple of one mining run. It is comparable and
// is used as part of the service cache keys.
type Thresholds struct {
	MinSupport    float64 `json:"min_support"`
	MinConfidence float64 `json:"min_confidence"`
	MinLift       float64 `json:"min_lift"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSupport:    0.02,
		MinConfidence: 0.3,
		MinLift:       3.0,
	}
}

func (t Thresholds) Validate() error {
	if err := validateSupport(t.MinSupport); err != nil {
		return err
	}
	return validateRuleThresholds(t.MinConfidence, t.MinLift)
}

func validateSupport(minSupport float64) error {
	if math.IsNaN(minSupport) || minSupport <= 0 || minSupport > 1 {
		return fmt.Errorf("%w: min_support must be in (0, 1], got %v", ErrInvalidThreshold, minSupport)
	}
	return nil
}

// min_lift must be finite: thresholds are echoed back in JSON responses.
func validateRuleThresholds(minConfidence, minLift float64) error {
	if math.IsNaN(minConfidence) || minConfidence <= 0 || minConfidence > 1 {
		return fmt.Errorf("%w: min_confidence must be in (0, 1], got %v", ErrInvalidThreshold, minConfidence)
	}
	if math.IsNaN(minLift) || math.IsInf(minLift, 0) || minLift < 0 {
		return fmt.Errorf("%w: min_lift must be a finite value >= 0, got %v", ErrInvalidThreshold, minLift)
	}
	return nil
}
