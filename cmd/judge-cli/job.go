package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TSOJO/isolate-wrapper/internal/pack"
	"github.com/TSOJO/isolate-wrapper/internal/source"
	"github.com/TSOJO/isolate-wrapper/internal/verdict"
)

// Job describes one judging operation. Testcases come either inline or
// from a pack archive; GenerateAnswers switches to answer-generation mode,
// overwriting each testcase's answer with the captured output.
type Job struct {
	Source          source.Document    `yaml:"source"`
	Grader          *source.Document   `yaml:"grader,omitempty"`
	TimeLimitMs     int64              `yaml:"timeLimitMs"`
	MemoryLimitKB   int64              `yaml:"memoryLimitKB"`
	FileIn          string             `yaml:"fileIn,omitempty"`
	FileOut         string             `yaml:"fileOut,omitempty"`
	Testcases       []verdict.Testcase `yaml:"testcases,omitempty"`
	Pack            string             `yaml:"pack,omitempty"`
	GenerateAnswers bool               `yaml:"generateAnswers,omitempty"`

	path string
}

func loadJob(path string) (*Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	job := &Job{}
	if err := yaml.Unmarshal(data, job); err != nil {
		return nil, err
	}
	job.path = path

	if job.Pack != "" {
		if len(job.Testcases) > 0 {
			return nil, fmt.Errorf("job sets both testcases and pack")
		}
		job.Testcases, err = pack.Load(job.Pack)
		if err != nil {
			return nil, err
		}
	}
	if len(job.Testcases) == 0 {
		return nil, fmt.Errorf("job has no testcases")
	}
	if job.TimeLimitMs <= 0 || job.MemoryLimitKB <= 0 {
		return nil, fmt.Errorf("job needs positive time and memory limits")
	}
	return job, nil
}

// writeAnswers rewrites the job file with the generated answers inlined.
func writeAnswers(job *Job) error {
	out := *job
	out.Pack = ""
	out.GenerateAnswers = false
	data, err := yaml.Marshal(&out)
	if err != nil {
		return err
	}
	return os.WriteFile(job.path, data, 0644)
}
