// Command judge-cli judges one submission described by a YAML job file and
// prints per-testcase results plus the overall verdict.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/TSOJO/isolate-wrapper/internal/config"
	"github.com/TSOJO/isolate-wrapper/internal/judge"
	"github.com/TSOJO/isolate-wrapper/internal/source"
	"github.com/TSOJO/isolate-wrapper/internal/verdict"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"
)

var configFile = flag.String("f", "", "config file (optional)")

func main() {
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: judge-cli [-f config.yaml] <job.yaml>")
		os.Exit(2)
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	job, err := loadJob(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load job failed: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, job); err != nil {
		fmt.Fprintf(os.Stderr, "judging failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, job *Job) error {
	j := judge.New(cfg)
	unit := source.FromDocument(job.Source)

	opts := judge.Options{FileIn: job.FileIn, FileOut: job.FileOut}
	if job.Grader != nil {
		opts.Grader = source.FromDocument(*job.Grader)
	}

	if job.GenerateAnswers {
		return generate(ctx, j, unit, job, opts)
	}

	var results []verdict.Result
	for res, err := range j.Judge(ctx, unit, job.Testcases, job.TimeLimitMs, job.MemoryLimitKB, opts) {
		if err != nil {
			return err
		}
		results = append(results, res)
		fmt.Printf("testcase %d: %s\n", len(results), formatResult(res))
	}

	final := judge.FinalVerdict(results)
	fmt.Printf("overall: %s (%s)\n", final, final.LongName())
	return nil
}

func generate(ctx context.Context, j *judge.Judge, unit *source.Unit, job *Job, opts judge.Options) error {
	inputs := make([]string, len(job.Testcases))
	for i, tc := range job.Testcases {
		inputs[i] = tc.Input
	}

	i := 0
	for gen, err := range j.GenerateOutputs(ctx, unit, inputs, job.TimeLimitMs, job.MemoryLimitKB, opts) {
		if err != nil {
			return err
		}
		job.Testcases[i].Answer = gen.Output
		fmt.Printf("input %d: %s\n", i+1, formatResult(gen.Result))
		i++
	}
	return writeAnswers(job)
}

func formatResult(res verdict.Result) string {
	line := fmt.Sprintf("%s (time %d ms, memory %d KB)", res.Verdict, res.Time, res.Memory)
	if res.Message != "" {
		line += "\n" + indent(res.Message)
	}
	return line
}

func indent(s string) string {
	out := ""
	for _, line := range splitKeepAll(s) {
		out += "    " + line + "\n"
	}
	return out[:len(out)-1]
}

func splitKeepAll(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
