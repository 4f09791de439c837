package verdict

// Testcase pairs an input with its expected answer. BatchNumber groups
// testcases that share a batch; it defaults to 1.
type Testcase struct {
	Input       string `yaml:"input"`
	Answer      string `yaml:"answer"`
	BatchNumber int    `yaml:"batchNumber"`
}

// UnmarshalYAML applies the batch number default.
func (t *Testcase) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain Testcase
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	if p.BatchNumber <= 0 {
		p.BatchNumber = 1
	}
	*t = Testcase(p)
	return nil
}

// ReduceByBatch reduces per-testcase verdicts into one verdict per batch.
// Testcases and verdicts correspond by index; extra verdicts are ignored.
func ReduceByBatch(testcases []Testcase, verdicts []Verdict) map[int]Verdict {
	grouped := make(map[int][]Verdict)
	for i, v := range verdicts {
		if i >= len(testcases) {
			break
		}
		batch := testcases[i].BatchNumber
		if batch <= 0 {
			batch = 1
		}
		grouped[batch] = append(grouped[batch], v)
	}
	out := make(map[int]Verdict, len(grouped))
	for batch, vs := range grouped {
		out[batch] = Reduce(vs)
	}
	return out
}
