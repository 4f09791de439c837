package verdict

import "fmt"

// Result is the judge's answer for one testcase.
//
// Time is in milliseconds and Memory in kilobytes; both are -1 when the
// sandbox did not report them. Message carries the compiler or runtime
// error text when the verdict warrants one.
type Result struct {
	Verdict Verdict `yaml:"verdict"`
	Time    int64   `yaml:"time"`
	Memory  int64   `yaml:"memory"`
	Message string  `yaml:"message,omitempty"`
}

// NewResult returns the empty pending result.
func NewResult() Result {
	return Result{Verdict: WJ, Time: -1, Memory: -1}
}

func (r Result) String() string {
	return fmt.Sprintf("(Verdict: %s; time: %d; memory: %d)", r.Verdict, r.Time, r.Memory)
}
