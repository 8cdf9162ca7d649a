package initializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metricflow/metricflow/internal/core/variable"
)

func TestBuiltinInitializers(t *testing.T) {
	shape := variable.Shape{2, 2}

	t.Run("Zeros", func(t *testing.T) {
		got := NewZeros().Init(shape, variable.DTypeFloat64)
		assert.Equal(t, []float64{0, 0, 0, 0}, got)
	})

	t.Run("Ones", func(t *testing.T) {
		got := NewOnes().Init(shape, variable.DTypeFloat64)
		assert.Equal(t, []float64{1, 1, 1, 1}, got)
	})

	t.Run("Constant", func(t *testing.T) {
		got := NewConstant(3.5).Init(variable.Scalar, variable.DTypeFloat64)
		assert.Equal(t, []float64{3.5}, got)
	})
}

func TestNewByType(t *testing.T) {
	cases := []struct {
		initType Type
		want     any
	}{
		{TypeZeros, &Zeros{}},
		{TypeOnes, &Ones{}},
		{TypeConstant, &Constant{}},
	}

	for _, tc := range cases {
		t.Run(string(tc.initType), func(t *testing.T) {
			got, err := New(tc.initType)
			require.NoError(t, err)
			assert.IsType(t, tc.want, got)
		})
	}

	t.Run("Unknown", func(t *testing.T) {
		_, err := New("glorot_uniform")
		assert.ErrorIs(t, err, ErrUnknownInitializer)
	})
}

func TestGet(t *testing.T) {
	t.Run("NilDefaultsToZeros", func(t *testing.T) {
		got, err := Get(nil)
		require.NoError(t, err)
		assert.IsType(t, &Zeros{}, got)
	})

	t.Run("PassThrough", func(t *testing.T) {
		ones := NewOnes()
		got, err := Get(ones)
		require.NoError(t, err)
		assert.Same(t, ones, got)
	})

	t.Run("StringName", func(t *testing.T) {
		got, err := Get("ones")
		require.NoError(t, err)
		assert.IsType(t, &Ones{}, got)
	})

	t.Run("TypeValue", func(t *testing.T) {
		got, err := Get(TypeZeros)
		require.NoError(t, err)
		assert.IsType(t, &Zeros{}, got)
	})

	t.Run("UnsupportedSpec", func(t *testing.T) {
		_, err := Get(42)
		assert.ErrorIs(t, err, ErrInvalidInitializer)
	})
}
