package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCourseGradeCriticalGate(t *testing.T) {
	modules := []ModuleGrade{
		{ModuleID: 1, Weight: 60, IsCritical: true, Graded: true, Score: 90, Passed: true},
		{ModuleID: 2, Weight: 40, IsCritical: true, Graded: true, Score: 50, Passed: false},
	}

	calc := CalculateCourseGrade(modules, DefaultMinOverallScore)
	assert.Equal(t, 74.0, calc.OverallScore) // 90*0.6 + 50*0.4
	assert.Equal(t, 2, calc.TotalCriticalModules)
	assert.Equal(t, 1, calc.CriticalModulesPassed)
	assert.False(t, calc.AllCriticalPassed)
	assert.False(t, calc.OverallPassed, "score above minimum cannot compensate for a failed critical module")
}

func TestCalculateCourseGradeAllPassed(t *testing.T) {
	modules := []ModuleGrade{
		{ModuleID: 1, Weight: 50, IsCritical: true, Graded: true, Score: 85, Passed: true},
		{ModuleID: 2, Weight: 50, IsCritical: false, Graded: true, Score: 75, Passed: true},
	}

	calc := CalculateCourseGrade(modules, DefaultMinOverallScore)
	assert.Equal(t, 80.0, calc.OverallScore)
	assert.True(t, calc.AllCriticalPassed)
	assert.True(t, calc.OverallPassed)
	assert.True(t, calc.IsComplete)
	assert.Equal(t, 100.0, calc.CompletionPercent)
}

func TestCalculateCourseGradeOrderInvariant(t *testing.T) {
	forward := []ModuleGrade{
		{ModuleID: 1, Weight: 30, Graded: true, Score: 90, Passed: true},
		{ModuleID: 2, Weight: 45, Graded: true, Score: 60, Passed: false},
		{ModuleID: 3, Weight: 25, Graded: true, Score: 80, Passed: true},
	}
	reversed := []ModuleGrade{forward[2], forward[1], forward[0]}

	a := CalculateCourseGrade(forward, DefaultMinOverallScore)
	b := CalculateCourseGrade(reversed, DefaultMinOverallScore)
	assert.Equal(t, a.OverallScore, b.OverallScore)
	assert.Equal(t, a.OverallPassed, b.OverallPassed)
	assert.Equal(t, a.TotalWeight, b.TotalWeight)
}

func TestCalculateCourseGradeUngradedModules(t *testing.T) {
	modules := []ModuleGrade{
		{ModuleID: 1, Weight: 20, Graded: true, Score: 100, Passed: true},
		{ModuleID: 2, Weight: 80, Graded: false},
	}

	calc := CalculateCourseGrade(modules, DefaultMinOverallScore)
	// The sum is deliberately not normalised by graded weight: a course
	// graded only on a low-weight module reports a low running score.
	assert.Equal(t, 20.0, calc.OverallScore)
	assert.Equal(t, 20.0, calc.TotalWeight)
	assert.Equal(t, 1, calc.GradedModules)
	assert.Equal(t, 50.0, calc.CompletionPercent)
	assert.False(t, calc.IsComplete)
	assert.False(t, calc.OverallPassed)
}

func TestCalculateCourseGradeNoCriticalModules(t *testing.T) {
	modules := []ModuleGrade{
		{ModuleID: 1, Weight: 100, Graded: true, Score: 72, Passed: true},
	}

	calc := CalculateCourseGrade(modules, DefaultMinOverallScore)
	assert.True(t, calc.AllCriticalPassed, "vacuously true with no critical modules")
	assert.True(t, calc.OverallPassed)
}

func TestCalculateCourseGradeEmpty(t *testing.T) {
	calc := CalculateCourseGrade(nil, DefaultMinOverallScore)
	assert.Equal(t, 0.0, calc.OverallScore)
	assert.Equal(t, 0.0, calc.CompletionPercent)
	assert.False(t, calc.OverallPassed)
}

func TestOverallPassedImpliesCriticalsPassed(t *testing.T) {
	cases := [][]ModuleGrade{
		{
			{ModuleID: 1, Weight: 70, IsCritical: true, Graded: true, Score: 95, Passed: true},
			{ModuleID: 2, Weight: 30, IsCritical: true, Graded: true, Score: 40, Passed: false},
		},
		{
			{ModuleID: 1, Weight: 100, IsCritical: true, Graded: true, Score: 90, Passed: true},
		},
		{
			{ModuleID: 1, Weight: 50, IsCritical: false, Graded: true, Score: 90, Passed: true},
			{ModuleID: 2, Weight: 50, IsCritical: true, Graded: false},
		},
	}

	for i, modules := range cases {
		calc := CalculateCourseGrade(modules, DefaultMinOverallScore)
		if calc.OverallPassed {
			assert.True(t, calc.AllCriticalPassed, "case %d", i)
		}
	}
}
