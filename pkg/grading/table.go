// Package grading maps marks onto letter grades and grade points.
//
// A Table is plain data: bands are evaluated top-down and the first band whose
// threshold the percentage reaches wins, so a score sitting exactly on a
// boundary earns the higher grade.
package grading

import (
	"fmt"
	"math"
	"strings"
)

// epsilon absorbs binary floating error in percentage arithmetic, so that
// 3.3 of 10 reaches a 33% threshold.
const epsilon = 1e-9

const (
	// StatisticsPassFraction is the share of exam total marks a result needs to
	// count as passed in exam statistics.
	StatisticsPassFraction = 0.33
	// ReportCardPassPercentage is the overall percentage a report card needs to
	// be marked PASS.
	ReportCardPassPercentage = 40.0
)

// Band is one grade boundary.
type Band struct {
	Threshold float64 `json:"threshold"`
	Grade     string  `json:"grade"`
	Point     float64 `json:"point"`
}

// Table is an ordered list of bands, highest threshold first. The last band
// must have a zero threshold.
type Table struct {
	Name  string `json:"name"`
	Bands []Band `json:"bands"`
}

const (
	TableCoarse7 = "coarse7"
	TableNU10    = "nu10"
)

// Coarse7 is the seven band table also used for statistics distribution buckets.
var Coarse7 = Table{
	Name: TableCoarse7,
	Bands: []Band{
		{Threshold: 80, Grade: "A+", Point: 4.0},
		{Threshold: 70, Grade: "A", Point: 3.5},
		{Threshold: 60, Grade: "A-", Point: 3.0},
		{Threshold: 50, Grade: "B", Point: 2.5},
		{Threshold: 40, Grade: "C", Point: 2.0},
		{Threshold: 33, Grade: "D", Point: 1.0},
		{Threshold: 0, Grade: "F", Point: 0.0},
	},
}

// NU10 is the ten band national university table.
var NU10 = Table{
	Name: TableNU10,
	Bands: []Band{
		{Threshold: 80, Grade: "A+", Point: 4.00},
		{Threshold: 75, Grade: "A", Point: 3.75},
		{Threshold: 70, Grade: "A-", Point: 3.50},
		{Threshold: 65, Grade: "B+", Point: 3.25},
		{Threshold: 60, Grade: "B", Point: 3.00},
		{Threshold: 55, Grade: "B-", Point: 2.75},
		{Threshold: 50, Grade: "C+", Point: 2.50},
		{Threshold: 45, Grade: "C", Point: 2.25},
		{Threshold: 40, Grade: "D", Point: 2.00},
		{Threshold: 0, Grade: "F", Point: 0.00},
	},
}

// TableByName resolves a configured table. Empty selects NU10.
func TableByName(name string) (Table, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", TableNU10:
		return NU10, nil
	case TableCoarse7:
		return Coarse7, nil
	default:
		return Table{}, fmt.Errorf("unknown grading table %q", name)
	}
}

// Validate checks that bands descend strictly and end at zero.
func (t Table) Validate() error {
	if len(t.Bands) == 0 {
		return fmt.Errorf("grading table %q has no bands", t.Name)
	}
	for i := 1; i < len(t.Bands); i++ {
		if t.Bands[i].Threshold >= t.Bands[i-1].Threshold {
			return fmt.Errorf("grading table %q: band %d threshold does not descend", t.Name, i)
		}
		if t.Bands[i].Point > t.Bands[i-1].Point {
			return fmt.Errorf("grading table %q: band %d point increases", t.Name, i)
		}
	}
	if last := t.Bands[len(t.Bands)-1]; last.Threshold != 0 {
		return fmt.Errorf("grading table %q: last band must start at 0", t.Name)
	}
	return nil
}

// Lookup returns the band percentage falls into.
func (t Table) Lookup(percentage float64) Band {
	for _, band := range t.Bands {
		if ReachesPercentage(percentage, band.Threshold) {
			return band
		}
	}
	return t.Bands[len(t.Bands)-1]
}

// Grades lists grade letters in table order.
func (t Table) Grades() []string {
	out := make([]string, len(t.Bands))
	for i, b := range t.Bands {
		out[i] = b.Grade
	}
	return out
}

// Percentage returns marks as a percentage of total, or 0 when total is not positive.
func Percentage(marks, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return marks / total * 100
}

// Round rounds v half away from zero to the given decimal places.
func Round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// Passed reports whether marks reach fraction of total.
func Passed(marks, total, fraction float64) bool {
	return marks+epsilon >= total*fraction
}

// ReachesPercentage reports whether percentage reaches threshold, within the
// same tolerance band lookups use.
func ReachesPercentage(percentage, threshold float64) bool {
	return percentage+epsilon >= threshold
}
