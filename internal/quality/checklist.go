package quality

import (
	"github.com/thermolaq/atelier-backend/pkg/enums"
	"github.com/thermolaq/atelier-backend/pkg/types"
)

// Film thickness bounds in microns applied when a check does not set its own.
const (
	DefaultMinThickness = 60.0
	DefaultMaxThickness = 120.0
)

// DefaultChecklist is the control sheet every finished job goes through.
func DefaultChecklist() types.ChecklistItems {
	return types.ChecklistItems{
		{Key: "visual_aspect", Label: "Aspect visuel (coulures, grains, manques)"},
		{Key: "adhesion_crosscut", Label: "Adhérence quadrillage ISO 2409"},
		{Key: "thickness", Label: "Épaisseur du film", Unit: "µm"},
		{Key: "gloss", Label: "Brillance", Unit: "GU"},
		{Key: "colour_match", Label: "Conformité teinte RAL"},
		{Key: "curing", Label: "Polymérisation (test solvant MEK)"},
	}
}

// Evaluate grades a checklist. It is pending while any item is unanswered or
// no thickness was measured; otherwise it passes only when every item passed
// and the mean thickness lies within [lo, hi].
func Evaluate(items types.ChecklistItems, thickness []float64, lo, hi float64) (enums.QualityStatus, float64) {
	mean := Mean(thickness)
	if len(thickness) == 0 {
		return enums.QualityStatusPending, 0
	}
	for _, item := range items {
		if item.Passed == nil {
			return enums.QualityStatusPending, mean
		}
	}
	for _, item := range items {
		if !*item.Passed {
			return enums.QualityStatusFailed, mean
		}
	}
	if mean < lo || mean > hi {
		return enums.QualityStatusFailed, mean
	}
	return enums.QualityStatusPassed, mean
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
