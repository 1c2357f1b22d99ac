package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name    string
		num     float64
		den     float64
		want    float64
		defined bool
	}{
		{name: "simple division", num: 150, den: 50, want: 3, defined: true},
		{name: "zero numerator", num: 0, den: 50, want: 0, defined: true},
		{name: "zero denominator", num: 150, den: 0, defined: false},
		{name: "both zero", num: 0, den: 0, defined: false},
		{name: "negative numerator", num: -10, den: 4, want: -2.5, defined: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Ratio(tt.num, tt.den)
			v, ok := m.Value()
			assert.Equal(t, tt.defined, ok)
			if tt.defined {
				assert.Equal(t, tt.want, v)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	m := Percent(20, 1000)
	v, ok := m.Value()
	require.True(t, ok)
	assert.Equal(t, 2.0, v)

	assert.False(t, Percent(20, 0).Valid())
}

func TestMetricScale(t *testing.T) {
	m := Ratio(50, 1000).Scale(1000)
	v, ok := m.Value()
	require.True(t, ok)
	assert.Equal(t, 50.0, v)

	// Scaling an undefined metric keeps it undefined.
	assert.False(t, UndefinedMetric().Scale(1000).Valid())
}

func TestMetricOr(t *testing.T) {
	assert.Equal(t, 3.0, DefinedMetric(3).Or(99))
	assert.Equal(t, 99.0, UndefinedMetric().Or(99))
}

func TestMetricJSON(t *testing.T) {
	t.Run("undefined marshals as null", func(t *testing.T) {
		data, err := json.Marshal(UndefinedMetric())
		require.NoError(t, err)
		assert.Equal(t, "null", string(data))
	})

	t.Run("defined marshals as number", func(t *testing.T) {
		data, err := json.Marshal(DefinedMetric(2.5))
		require.NoError(t, err)
		assert.Equal(t, "2.5", string(data))
	})

	t.Run("null unmarshals as undefined", func(t *testing.T) {
		var m Metric
		require.NoError(t, json.Unmarshal([]byte("null"), &m))
		assert.False(t, m.Valid())
	})

	t.Run("number unmarshals as defined", func(t *testing.T) {
		var m Metric
		require.NoError(t, json.Unmarshal([]byte("3.75"), &m))
		v, ok := m.Value()
		require.True(t, ok)
		assert.Equal(t, 3.75, v)
	})

	t.Run("round trip", func(t *testing.T) {
		orig := Ratio(240, 80)
		data, err := json.Marshal(orig)
		require.NoError(t, err)
		var back Metric
		require.NoError(t, json.Unmarshal(data, &back))
		assert.Equal(t, orig, back)
	})
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "N/A", UndefinedMetric().String())
	assert.Equal(t, "3", DefinedMetric(3).String())
	assert.Equal(t, "2.5", DefinedMetric(2.5).String())
}

func TestParseMetric(t *testing.T) {
	t.Run("round trips String", func(t *testing.T) {
		for _, m := range []Metric{DefinedMetric(0.016666666666666666), DefinedMetric(3), UndefinedMetric()} {
			back, err := ParseMetric(m.String())
			require.NoError(t, err)
			assert.Equal(t, m, back)
		}
	})

	t.Run("empty is undefined", func(t *testing.T) {
		m, err := ParseMetric("")
		require.NoError(t, err)
		assert.False(t, m.Valid())
	})

	t.Run("garbage errors", func(t *testing.T) {
		_, err := ParseMetric("not-a-number")
		assert.Error(t, err)
	})
}
