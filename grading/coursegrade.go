package grading

import "math"

// DefaultMinOverallScore is the course-wide weighted score required to
// pass when a course does not configure its own minimum.
const DefaultMinOverallScore = 70.0

// ModuleGrade is one module's weighting plus its current ledger grade,
// if any. Graded=false means no grade record exists yet.
type ModuleGrade struct {
	ModuleID     uint
	Title        string
	Weight       float64 // 0-100, percentage contribution
	IsCritical   bool
	PassingScore float64
	Graded       bool
	Score        float64
	Passed       bool
}

// ModuleBreakdown is the per-module line of a course grade calculation.
type ModuleBreakdown struct {
	ModuleID      uint    `json:"module_id"`
	Title         string  `json:"title"`
	Weight        float64 `json:"weight"`
	IsCritical    bool    `json:"is_critical"`
	Graded        bool    `json:"graded"`
	Score         float64 `json:"score"`
	Passed        bool    `json:"passed"`
	WeightedScore float64 `json:"weighted_score"`
}

// Calculation is a derived course grade. It is always a pure function of
// the module list and the current grade per module, never hand-edited.
type Calculation struct {
	OverallScore          float64           `json:"overall_score"`
	OverallPassed         bool              `json:"overall_passed"`
	TotalCriticalModules  int               `json:"total_critical_modules"`
	CriticalModulesPassed int               `json:"critical_modules_passed"`
	AllCriticalPassed     bool              `json:"all_critical_modules_passed"`
	TotalModules          int               `json:"total_modules"`
	GradedModules         int               `json:"graded_modules"`
	TotalWeight           float64           `json:"total_weight"`
	CompletionPercent     float64           `json:"completion_percent"`
	IsComplete            bool              `json:"is_complete"`
	Breakdown             []ModuleBreakdown `json:"breakdown"`
}

// CalculateCourseGrade aggregates module grades into a weighted course
// grade with critical-module gating.
//
// The overall score is the plain sum of score*weight/100 over graded
// modules; it is NOT normalised by the graded weight. Stored grade
// snapshots were produced by the same sum, so a partially graded course
// under-reports its running score rather than diverging from its audit
// trail. TotalWeight is exposed so callers can see how much of the
// course the sum covers.
func CalculateCourseGrade(modules []ModuleGrade, minOverallScore float64) Calculation {
	calc := Calculation{
		TotalModules: len(modules),
		Breakdown:    make([]ModuleBreakdown, 0, len(modules)),
	}

	for _, m := range modules {
		line := ModuleBreakdown{
			ModuleID:   m.ModuleID,
			Title:      m.Title,
			Weight:     m.Weight,
			IsCritical: m.IsCritical,
			Graded:     m.Graded,
			Score:      m.Score,
			Passed:     m.Passed,
		}

		if m.IsCritical {
			calc.TotalCriticalModules++
			if m.Graded && m.Passed {
				calc.CriticalModulesPassed++
			}
		}

		if m.Graded {
			calc.GradedModules++
			line.WeightedScore = m.Score * m.Weight / 100
			calc.OverallScore += line.WeightedScore
			calc.TotalWeight += m.Weight
		}

		calc.Breakdown = append(calc.Breakdown, line)
	}

	calc.AllCriticalPassed = calc.CriticalModulesPassed == calc.TotalCriticalModules
	calc.OverallPassed = calc.OverallScore >= minOverallScore && calc.AllCriticalPassed
	if calc.TotalModules > 0 {
		calc.CompletionPercent = math.Round(100 * float64(calc.GradedModules) / float64(calc.TotalModules))
	}
	calc.IsComplete = calc.GradedModules == calc.TotalModules

	return calc
}
