package naming

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Sum", "sum"},
		{"BinaryAccuracy", "binary_accuracy"},
		{"F1Score", "f1_score"},
		{"mean", "mean"},
		{"TPCount", "tp_count"},
		{"", ""},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q", tc.in), func(t *testing.T) {
			assert.Equal(t, tc.want, ToSnakeCase(tc.in))
		})
	}
}

func TestAutoName(t *testing.T) {
	t.Run("UniqueSequence", func(t *testing.T) {
		Reset()
		assert.Equal(t, "sum", AutoName("Sum"))
		assert.Equal(t, "sum_1", AutoName("Sum"))
		assert.Equal(t, "sum_2", AutoName("Sum"))
	})

	t.Run("IndependentPrefixes", func(t *testing.T) {
		Reset()
		assert.Equal(t, "mean", AutoName("Mean"))
		assert.Equal(t, "count", AutoName("Count"))
		assert.Equal(t, "mean_1", AutoName("Mean"))
	})

	t.Run("EmptyPrefix", func(t *testing.T) {
		Reset()
		assert.Equal(t, "metric", AutoName(""))
		assert.Equal(t, "metric_1", AutoName(""))
	})
}
