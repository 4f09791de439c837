// Package verdict defines the judge outcome model: per-testcase verdicts,
// results, testcases, and the overall-verdict reduction.
package verdict

import (
	"github.com/TSOJO/isolate-wrapper/pkg/errors"
)

// Verdict is the outcome category for a single testcase or an aggregate.
type Verdict string

const (
	WJ  Verdict = "WJ"
	SE  Verdict = "SE"
	CE  Verdict = "CE"
	NOF Verdict = "NOF"
	WA  Verdict = "WA"
	RE  Verdict = "RE"
	TLE Verdict = "TLE"
	MLE Verdict = "MLE"
	AC  Verdict = "AC"
)

// reductionOrder lists non-AC verdicts by importance. Reduce returns the
// first of these present; a collection with none of them is AC overall.
var reductionOrder = []Verdict{WJ, SE, CE, NOF, WA, RE, TLE, MLE}

var longNames = map[Verdict]string{
	WJ:  "Waiting for Judge",
	SE:  "System Error",
	CE:  "Compilation Error",
	NOF: "No Output File",
	WA:  "Wrong Answer",
	RE:  "Runtime Error",
	TLE: "Time Limit Exceeded",
	MLE: "Memory Limit Exceeded",
	AC:  "Accepted",
}

// FromName resolves a short symbolic name to a Verdict.
func FromName(name string) (Verdict, error) {
	v := Verdict(name)
	if _, ok := longNames[v]; !ok {
		return "", errors.Newf(errors.InvalidFormat, "unknown verdict: %s", name)
	}
	return v, nil
}

// LongName returns the human-readable verdict name.
func (v Verdict) LongName() string {
	return longNames[v]
}

func (v Verdict) String() string {
	return string(v)
}

// IsAC reports whether the verdict is Accepted.
func (v Verdict) IsAC() bool {
	return v == AC
}

// IsWJ reports whether the verdict is the pending sentinel.
func (v Verdict) IsWJ() bool {
	return v == WJ
}

// UnmarshalYAML resolves a short name, rejecting unknown verdicts.
func (v *Verdict) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := FromName(name)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML emits the short name.
func (v Verdict) MarshalYAML() (interface{}, error) {
	return string(v), nil
}

// Reduce decides the overall verdict for a collection of per-testcase
// verdicts. It is order-independent and returns AC iff the collection
// contains no non-AC verdict.
func Reduce(verdicts []Verdict) Verdict {
	present := make(map[Verdict]bool, len(verdicts))
	for _, v := range verdicts {
		present[v] = true
	}
	for _, v := range reductionOrder {
		if present[v] {
			return v
		}
	}
	return AC
}
