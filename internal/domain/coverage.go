package domain

import (
	"encoding/json"
	"fmt"
)

// Coverage is a days-of-stock value that can be infinite. Items with no
// consumption never run out, and representing that as a float division
// result would either fault or leak +Inf into JSON, so the sentinel is
// explicit.
type Coverage struct {
	Days     float64
	Infinite bool
}

// FiniteCoverage returns a bounded coverage value.
func FiniteCoverage(days float64) Coverage {
	return Coverage{Days: days}
}

// InfiniteCoverage returns the zero-rate sentinel.
func InfiniteCoverage() Coverage {
	return Coverage{Infinite: true}
}

// Below reports whether the coverage is finite and under the threshold.
// Infinite coverage is never below any threshold.
func (c Coverage) Below(thresholdDays float64) bool {
	return !c.Infinite && c.Days < thresholdDays
}

func (c Coverage) String() string {
	if c.Infinite {
		return "∞"
	}
	return fmt.Sprintf("%.1f", c.Days)
}

// MarshalJSON encodes infinite coverage as null so API clients get a
// distinguishable sentinel instead of an out-of-band float.
func (c Coverage) MarshalJSON() ([]byte, error) {
	if c.Infinite {
		return []byte("null"), nil
	}
	return json.Marshal(c.Days)
}

// UnmarshalJSON accepts the null sentinel or a number.
func (c *Coverage) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = InfiniteCoverage()
		return nil
	}

	var days float64
	if err := json.Unmarshal(data, &days); err != nil {
		return err
	}
	*c = FiniteCoverage(days)
	return nil
}
