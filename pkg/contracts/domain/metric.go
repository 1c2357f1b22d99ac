package domain

import (
	"encoding/json"
	"strconv"
)

// Metric is a ratio metric that may be undefined when its denominator is
// zero. An undefined metric is not an error: it marshals as JSON null and
// renders as "N/A" in tabular output. It is never reported as zero, because
// zero means measured-and-zero while undefined means not measurable.
type Metric struct {
	value   float64
	defined bool
}

// Ratio divides num by den. A zero denominator yields an undefined metric.
func Ratio(num, den float64) Metric {
	if den == 0 {
		return Metric{}
	}
	return Metric{value: num / den, defined: true}
}

// Percent divides num by den and scales to a percentage.
func Percent(num, den float64) Metric {
	return Ratio(num, den).Scale(100)
}

// DefinedMetric wraps a known value.
func DefinedMetric(v float64) Metric {
	return Metric{value: v, defined: true}
}

// UndefinedMetric returns the undefined sentinel.
func UndefinedMetric() Metric {
	return Metric{}
}

// Valid reports whether the metric holds a defined value.
func (m Metric) Valid() bool {
	return m.defined
}

// Value returns the metric value and whether it is defined.
func (m Metric) Value() (float64, bool) {
	return m.value, m.defined
}

// Or returns the metric value, or fallback when undefined.
func (m Metric) Or(fallback float64) float64 {
	if !m.defined {
		return fallback
	}
	return m.value
}

// Scale multiplies a defined metric by factor; undefined stays undefined.
func (m Metric) Scale(factor float64) Metric {
	if !m.defined {
		return m
	}
	return Metric{value: m.value * factor, defined: true}
}

// String renders the metric for tabular output: the full-precision decimal
// form for defined values, "N/A" otherwise. Full precision keeps written
// artifacts byte-stable under a write/read round trip.
func (m Metric) String() string {
	if !m.defined {
		return "N/A"
	}
	return strconv.FormatFloat(m.value, 'f', -1, 64)
}

// ParseMetric is the inverse of String.
func ParseMetric(s string) (Metric, error) {
	if s == "" || s == "N/A" {
		return Metric{}, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Metric{}, err
	}
	return Metric{value: v, defined: true}, nil
}

// MarshalJSON encodes undefined metrics as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.defined {
		return []byte("null"), nil
	}
	return json.Marshal(m.value)
}

// UnmarshalJSON decodes null as the undefined sentinel.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Metric{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Metric{value: v, defined: true}
	return nil
}
