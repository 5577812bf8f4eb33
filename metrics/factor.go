package metrics

import (
	"encoding/json"
	"math"
	"strconv"
)

// Factor is a ratio that may be +Inf. It marshals +Inf as the JSON
// string "+Inf" since JSON has no infinity.
type Factor float64

func (f Factor) IsInf() bool { return math.IsInf(float64(f), 1) }

func (f Factor) String() string {
	if f.IsInf() {
		return "+Inf"
	}
	return strconv.FormatFloat(float64(f), 'f', 2, 64)
}

func (f Factor) MarshalJSON() ([]byte, error) {
	if f.IsInf() {
		return []byte(`"+Inf"`), nil
	}
	return json.Marshal(float64(f))
}

func (f *Factor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return err
		}
		*f = Factor(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*f = Factor(v)
	return nil
}
