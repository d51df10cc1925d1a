package seed

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMarksDeterministic(t *testing.T) {
	a := Marks("student-1", "exam-1", "final", 100)
	b := Marks("student-1", "exam-1", "final", 100)
	assert.Equal(t, a, b)
}

func TestMarksVaryByKey(t *testing.T) {
	assert.NotEqual(t, Key("student-1", "exam-1", "final"), Key("student-2", "exam-1", "final"))
	assert.NotEqual(t, Key("student-1", "exam-1", "final"), Key("student-1", "exam-1", "incourse_1st"))
}

func TestMarksStayInRange(t *testing.T) {
	for i := 0; i < 500; i++ {
		for _, typ := range []string{"incourse_1st", "incourse_2nd", "final", "legacy"} {
			m := Marks(fmt.Sprintf("s-%d", i), "exam-9", typ, 50)
			assert.GreaterOrEqual(t, m, 0.0)
			assert.LessOrEqual(t, m, 50.0)
			assert.Equal(t, m, float64(int64(m*100+0.5))/100)
		}
	}
}

func TestMarksDefaultsTotal(t *testing.T) {
	m := Marks("s", "e", "final", 0)
	assert.LessOrEqual(t, m, 100.0)
}
