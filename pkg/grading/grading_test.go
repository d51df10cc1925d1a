package grading

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltInTablesValidate(t *testing.T) {
	require.NoError(t, Coarse7.Validate())
	require.NoError(t, NU10.Validate())
}

func TestTableValidateRejectsBadOrdering(t *testing.T) {
	bad := Table{Name: "bad", Bands: []Band{{Threshold: 50, Grade: "P", Point: 1}, {Threshold: 60, Grade: "X", Point: 2}, {Threshold: 0, Grade: "F"}}}
	assert.Error(t, bad.Validate())
	assert.Error(t, Table{Name: "open", Bands: []Band{{Threshold: 40, Grade: "P", Point: 1}}}.Validate())
	assert.Error(t, Table{Name: "empty"}.Validate())
}

func TestTableByName(t *testing.T) {
	tbl, err := TableByName("")
	require.NoError(t, err)
	assert.Equal(t, TableNU10, tbl.Name)

	tbl, err = TableByName("COARSE7")
	require.NoError(t, err)
	assert.Equal(t, TableCoarse7, tbl.Name)

	_, err = TableByName("letters")
	assert.Error(t, err)
}

func TestComputeBoundaries(t *testing.T) {
	for _, tbl := range []Table{Coarse7, NU10} {
		calc := MustCalculator(tbl)
		t.Run(tbl.Name, func(t *testing.T) {
			for _, band := range tbl.Bands {
				if band.Threshold == 0 {
					continue
				}
				at := calc.Compute(band.Threshold, 100)
				assert.Equal(t, band.Grade, at.Grade, "exactly %v", band.Threshold)

				below := calc.Compute(band.Threshold-0.01, 100)
				assert.NotEqual(t, band.Grade, below.Grade, "just below %v", band.Threshold)
			}
		})
	}
}

func TestComputeEightyFive(t *testing.T) {
	for _, tbl := range []Table{Coarse7, NU10} {
		g := MustCalculator(tbl).Compute(85, 100)
		assert.Equal(t, "A+", g.Grade)
		assert.Equal(t, 4.0, g.GradePoint)
		assert.Equal(t, "85.0%", fmt.Sprintf("%.1f%%", g.Percentage))
	}
}

func TestComputeMonotonic(t *testing.T) {
	for _, tbl := range []Table{Coarse7, NU10} {
		calc := MustCalculator(tbl)
		prev := -1.0
		for m := 0.0; m <= 100; m += 0.25 {
			point := calc.Compute(m, 100).GradePoint
			assert.GreaterOrEqual(t, point, prev, "%s at %v", tbl.Name, m)
			prev = point
		}
	}
}

func TestComputeZeroTotal(t *testing.T) {
	g := MustCalculator(NU10).Compute(10, 0)
	assert.Equal(t, "F", g.Grade)
	assert.Zero(t, g.Percentage)
}

func TestFloatingBoundaryReachesD(t *testing.T) {
	g := MustCalculator(Coarse7).Compute(3.3, 10)
	assert.Equal(t, "D", g.Grade)
	assert.True(t, Passed(3.3, 10, StatisticsPassFraction))
	assert.False(t, Passed(3.29, 10, StatisticsPassFraction))
}

func TestGPA(t *testing.T) {
	calc := MustCalculator(NU10)
	assert.Equal(t, 3.25, calc.GPA(66))
	assert.Equal(t, 0.0, calc.GPA(39.99))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.13, Round(0.125, 2))
	assert.Equal(t, 12.3, Round(12.34, 1))
}

func TestReachesPercentageMatchesBandLookup(t *testing.T) {
	assert.True(t, ReachesPercentage(ReportCardPassPercentage, ReportCardPassPercentage))
	assert.True(t, ReachesPercentage(Percentage(1.2, 3), ReportCardPassPercentage))
	assert.False(t, ReachesPercentage(39.99, ReportCardPassPercentage))

	calc := MustCalculator(NU10)
	for _, p := range []float64{39.99, 40, Percentage(1.2, 3), 40.01} {
		passed := ReachesPercentage(p, ReportCardPassPercentage)
		assert.Equal(t, passed, calc.ForPercentage(p).Grade != "F", "percentage %v", p)
	}
}

func TestPassThresholdsAreDistinct(t *testing.T) {
	assert.NotEqual(t, StatisticsPassFraction*100, ReportCardPassPercentage)
}
