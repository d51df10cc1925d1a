package grading

// Grade is the outcome of grading one score.
type Grade struct {
	Grade      string  `json:"grade"`
	GradePoint float64 `json:"grade_point"`
	Percentage float64 `json:"percentage"`
}

// Calculator applies a single Table. It holds no mutable state.
type Calculator struct {
	table Table
}

// NewCalculator validates table and returns a Calculator for it.
func NewCalculator(table Table) (*Calculator, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Calculator{table: table}, nil
}

// MustCalculator is NewCalculator for the built-in tables.
func MustCalculator(table Table) *Calculator {
	c, err := NewCalculator(table)
	if err != nil {
		panic(err)
	}
	return c
}

// Table returns the active table.
func (c *Calculator) Table() Table {
	return c.table
}

// TableName returns the active table name.
func (c *Calculator) TableName() string {
	return c.table.Name
}

// Compute grades marksObtained out of totalMarks.
func (c *Calculator) Compute(marksObtained, totalMarks float64) Grade {
	return c.ForPercentage(Percentage(marksObtained, totalMarks))
}

// ForPercentage grades an already computed percentage.
func (c *Calculator) ForPercentage(percentage float64) Grade {
	band := c.table.Lookup(percentage)
	return Grade{Grade: band.Grade, GradePoint: band.Point, Percentage: percentage}
}

// GPA returns the grade point for an overall percentage.
func (c *Calculator) GPA(percentage float64) float64 {
	return c.table.Lookup(percentage).Point
}
