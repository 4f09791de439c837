// Package judge drives the judging pipeline: it owns one sandbox box per
// operation, feeds testcases through the submitted code, and classifies
// each run into a Result.
package judge

import (
	"context"
	"iter"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/TSOJO/isolate-wrapper/internal/checker"
	"github.com/TSOJO/isolate-wrapper/internal/config"
	"github.com/TSOJO/isolate-wrapper/internal/sandbox"
	"github.com/TSOJO/isolate-wrapper/internal/source"
	"github.com/TSOJO/isolate-wrapper/internal/verdict"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/contextkey"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"
)

// Sandbox is everything the driver needs from the box layer.
type Sandbox interface {
	sandbox.Executor
	Acquire(ctx context.Context) (*sandbox.Box, error)
	Release(ctx context.Context, box *sandbox.Box)
	MetadataPath(boxID int) string
	ReadMetadata(boxID int) (sandbox.Metadata, error)
}

// Options carries the optional parts of one judging operation. FileIn and
// FileOut switch the whole operation to named-file I/O; they are
// per-operation, not per-testcase.
type Options struct {
	Grader  *source.Unit
	FileIn  string
	FileOut string
}

// Judge runs judging operations against a sandbox.
type Judge struct {
	cfg *config.Config
	sb  Sandbox
}

// New creates a judge backed by the real sandbox manager.
func New(cfg *config.Config) *Judge {
	return &Judge{cfg: cfg, sb: sandbox.NewManager(cfg)}
}

// NewWithSandbox creates a judge with an injected sandbox layer.
func NewWithSandbox(cfg *config.Config, sb Sandbox) *Judge {
	return &Judge{cfg: cfg, sb: sb}
}

// runOutcome distinguishes the ways one testcase execution can end before
// classification.
type runOutcome int

const (
	outcomeRan runOutcome = iota
	outcomeCompileFailed
	outcomeNoOutputFile
)

// Judge evaluates the source against each testcase in order, yielding one
// Result per testcase. The sequence is lazy: the next testcase only runs
// when the consumer asks for it, and the owned box is released when the
// consumer finishes or abandons iteration. A non-nil error means an
// infrastructure fault; the sequence stops after yielding it.
func (j *Judge) Judge(
	ctx context.Context,
	unit *source.Unit,
	testcases []verdict.Testcase,
	timeLimitMs, memoryLimitKB int64,
	opts Options,
) iter.Seq2[verdict.Result, error] {
	return func(yield func(verdict.Result, error) bool) {
		ctx := context.WithValue(ctx, contextkey.TraceID, uuid.NewString())
		logger.Info(ctx, "judging code", zap.Int("testcases", len(testcases)))

		box, err := j.sb.Acquire(ctx)
		if err != nil {
			yield(verdict.Result{}, err)
			return
		}
		defer func() {
			logger.Info(ctx, "finished judging code")
			j.sb.Release(ctx, box)
		}()

		if opts.Grader != nil {
			opts.Grader.FileName = "grader"
		}

		for i, tc := range testcases {
			res, err := j.runTestcase(ctx, box, unit, tc, timeLimitMs, memoryLimitKB, opts)
			if err != nil {
				yield(verdict.Result{}, err)
				return
			}
			logger.Info(ctx, "testcase judged",
				zap.Int("testcase", i+1),
				zap.String("verdict", res.Verdict.String()))
			if !yield(res, nil) {
				return
			}
		}
	}
}

// Generated pairs one captured output with the Result of producing it.
type Generated struct {
	Output string
	Result verdict.Result
}

// GenerateOutputs runs the source once per input and captures what it
// prints; an AC Result means the output is usable as a reference answer.
// Outputs map 1:1 to inputs by index.
func (j *Judge) GenerateOutputs(
	ctx context.Context,
	unit *source.Unit,
	inputs []string,
	timeLimitMs, memoryLimitKB int64,
	opts Options,
) iter.Seq2[Generated, error] {
	return func(yield func(Generated, error) bool) {
		ctx := context.WithValue(ctx, contextkey.TraceID, uuid.NewString())
		logger.Info(ctx, "generating outputs", zap.Int("inputs", len(inputs)))

		box, err := j.sb.Acquire(ctx)
		if err != nil {
			yield(Generated{}, err)
			return
		}
		defer func() {
			logger.Info(ctx, "finished generating outputs")
			j.sb.Release(ctx, box)
		}()

		for _, input := range inputs {
			output, digest, md, outcome, err := j.runOnce(ctx, box, unit, input, timeLimitMs, memoryLimitKB, opts)
			if err != nil {
				yield(Generated{}, err)
				return
			}

			res := verdict.NewResult()
			switch {
			case outcome == outcomeCompileFailed:
				res.Verdict = verdict.CE
				res.Message = digest
			case outcome == outcomeNoOutputFile:
				res.Verdict = verdict.NOF
			case md.ExitCode != 0:
				res.Verdict = j.classifyNonZero(ctx, md.Metadata, memoryLimitKB)
				res.Message = digest
			default:
				res.Verdict = verdict.AC
			}
			fillUsage(&res, md.Metadata)
			if !yield(Generated{Output: output, Result: res}, nil) {
				return
			}
		}
	}
}

// FinalVerdict reduces per-testcase results into the overall verdict.
func FinalVerdict(results []verdict.Result) verdict.Verdict {
	verdicts := make([]verdict.Verdict, len(results))
	for i, r := range results {
		verdicts[i] = r.Verdict
	}
	return verdict.Reduce(verdicts)
}

// runMeta bundles the raw facts of one execution for classification.
type runMeta struct {
	ExitCode int
	Metadata sandbox.Metadata
}

func (j *Judge) runTestcase(
	ctx context.Context,
	box *sandbox.Box,
	unit *source.Unit,
	tc verdict.Testcase,
	timeLimitMs, memoryLimitKB int64,
	opts Options,
) (verdict.Result, error) {
	output, digest, md, outcome, err := j.runOnce(ctx, box, unit, tc.Input, timeLimitMs, memoryLimitKB, opts)
	if err != nil {
		return verdict.Result{}, err
	}

	res := verdict.NewResult()
	switch {
	case outcome == outcomeCompileFailed:
		res.Verdict = verdict.CE
		res.Message = digest
	case outcome == outcomeNoOutputFile:
		res.Verdict = verdict.NOF
	case md.ExitCode != 0:
		res.Verdict = j.classifyNonZero(ctx, md.Metadata, memoryLimitKB)
		res.Message = digest
	case opts.Grader != nil:
		v, err := j.runGrader(ctx, box, opts.Grader, tc, output, timeLimitMs, memoryLimitKB)
		if err != nil {
			return verdict.Result{}, err
		}
		res.Verdict = v
	case checker.Accept(output, tc.Answer):
		res.Verdict = verdict.AC
	default:
		res.Verdict = verdict.WA
	}
	fillUsage(&res, md.Metadata)
	return res, nil
}

// runOnce prepares and executes the unit for one input, resolving file
// redirection and reading the run's metadata. Outcomes other than
// outcomeRan short-circuit classification.
func (j *Judge) runOnce(
	ctx context.Context,
	box *sandbox.Box,
	unit *source.Unit,
	input string,
	timeLimitMs, memoryLimitKB int64,
	opts Options,
) (string, string, runMeta, runOutcome, error) {
	unit.Bind(box.Path)
	diagnostic, err := unit.Prepare(ctx, j.cfg)
	if err != nil {
		return "", "", runMeta{}, 0, err
	}
	if diagnostic != "" {
		return "", diagnostic, runMeta{}, outcomeCompileFailed, nil
	}

	if opts.FileIn != "" {
		path := filepath.Join(box.Path, opts.FileIn)
		if err := os.WriteFile(path, []byte(input), 0644); err != nil {
			return "", "", runMeta{}, 0, appErr.Wrapf(err, appErr.JudgeSystemError, "write input file failed")
		}
		input = ""
	}

	output, digest, exitCode, err := unit.Run(
		ctx, j.sb, box.ID, j.sb.MetadataPath(box.ID), timeLimitMs, memoryLimitKB, input)
	if err != nil {
		return "", "", runMeta{}, 0, err
	}
	if digest != "" {
		logger.Info(ctx, "user code gave error", zap.String("error", digest))
	}

	md, err := j.sb.ReadMetadata(box.ID)
	if err != nil {
		return "", "", runMeta{}, 0, err
	}

	if opts.FileOut != "" {
		data, err := os.ReadFile(filepath.Join(box.Path, opts.FileOut))
		if err != nil {
			if os.IsNotExist(err) {
				logger.Errorf(ctx, "user code does not produce output file: %s", opts.FileOut)
				return "", "", runMeta{}, outcomeNoOutputFile, nil
			}
			return "", "", runMeta{}, 0, appErr.Wrapf(err, appErr.JudgeSystemError, "read output file failed")
		}
		output = string(data)
	}

	return output, digest, runMeta{ExitCode: exitCode, Metadata: md}, outcomeRan, nil
}

// classifyNonZero maps a failed run onto a verdict; metadata the classifier
// cannot interpret is a system error on our side, not the user's.
func (j *Judge) classifyNonZero(ctx context.Context, md sandbox.Metadata, memoryLimitKB int64) verdict.Verdict {
	v, err := sandbox.ClassifyNonZero(md, memoryLimitKB, j.cfg.MLEThreshold)
	if err != nil {
		logger.Error(ctx, "metadata classification failed", zap.Error(err))
		return verdict.SE
	}
	return v
}

// runGrader delegates the accept/reject decision to the grader program,
// feeding it the testcase input followed by the user's output. Anything
// other than a clean exit printing AC or WA is a system error.
func (j *Judge) runGrader(
	ctx context.Context,
	box *sandbox.Box,
	grader *source.Unit,
	tc verdict.Testcase,
	output string,
	timeLimitMs, memoryLimitKB int64,
) (verdict.Verdict, error) {
	grader.Bind(box.Path)
	diagnostic, err := grader.Prepare(ctx, j.cfg)
	if err != nil {
		return "", err
	}
	if diagnostic != "" {
		logger.Warnf(ctx, "grader failed to compile: %s", diagnostic)
		return verdict.SE, nil
	}

	graderInput := tc.Input + "\n" + output
	graderOutput, graderDigest, exitCode, err := grader.Run(
		ctx, j.sb, box.ID, j.sb.MetadataPath(box.ID), timeLimitMs, memoryLimitKB, graderInput)
	if err != nil {
		return "", err
	}
	if exitCode != 0 {
		logger.Warnf(ctx, "grader returned non-zero exit code with error: %s", graderDigest)
		return verdict.SE, nil
	}
	switch {
	case checker.Accept(graderOutput, "AC"):
		return verdict.AC, nil
	case checker.Accept(graderOutput, "WA"):
		return verdict.WA, nil
	default:
		logger.Warnf(ctx, "grader returned unexpected output: %s", graderOutput)
		return verdict.SE, nil
	}
}

// fillUsage copies reported time and memory into the result, leaving the
// unknown sentinel in place when the sandbox did not report them.
func fillUsage(res *verdict.Result, md sandbox.Metadata) {
	if ms, ok := md.TimeMs(); ok {
		res.Time = ms
	}
	if kb, ok := md.MaxRSS(); ok {
		res.Memory = kb
	}
}
