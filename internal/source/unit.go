// Package source encapsulates one piece of submitted code: writing it into
// a box, compiling it when the language needs that, and running it under
// the sandbox.
package source

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/shlex"

	"github.com/TSOJO/isolate-wrapper/internal/config"
	"github.com/TSOJO/isolate-wrapper/internal/language"
	"github.com/TSOJO/isolate-wrapper/internal/sandbox"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"
)

// CachedCompileErrorMessage is returned by Prepare on every call after a
// failed compilation; the full diagnostic was already reported once.
const CachedCompileErrorMessage = "See error details in the first testcase."

// interpreterName is the file name the aqaasm binary gets inside the box.
const interpreterName = "aqaasm"

// promptShim redefines Python's input to ignore its prompt argument, so
// submissions written for prompted stdin don't consume input as a prompt.
const promptShim = "_JUDGE_INPUT = input; input = lambda _=0: _JUDGE_INPUT()\n"

// prepState is the unit lifecycle: unprepared, ready to run, or failed to
// compile.
type prepState int

const (
	stateUnprepared prepState = iota
	stateReady
	stateFailedCompile
)

// Unit holds one piece of source code plus everything needed to run it.
type Unit struct {
	Code     string
	Lang     language.Language
	FileName string

	// AQAInputs and AQAOutputs are memory addresses the interpreter seeds
	// from stdin and prints after HALT, for AQAASM submissions.
	AQAInputs  []string
	AQAOutputs []string

	// PythonIgnorePrompts prefixes the source with a shim so that
	// input("prompt") behaves like input().
	PythonIgnorePrompts bool

	boxPath string
	state   prepState
	runArgs []string
}

// NewUnit creates an unprepared unit with the default file name.
func NewUnit(code string, lang language.Language) *Unit {
	return &Unit{Code: code, Lang: lang, FileName: "code"}
}

// Bind points the unit at the box it will be prepared into.
func (u *Unit) Bind(boxPath string) {
	u.boxPath = boxPath
}

// Prepared reports whether Prepare has already succeeded.
func (u *Unit) Prepared() bool {
	return u.state == stateReady
}

// RunArgs returns a copy of the prepared program argv, for inspection.
func (u *Unit) RunArgs() []string {
	return append([]string(nil), u.runArgs...)
}

// Prepare writes the source into the box and compiles it when needed. It
// is idempotent: once the unit is ready, later calls do nothing, and once
// compilation has failed, later calls return the cached short message.
//
// The returned string is the compile diagnostic; empty means the unit is
// ready to run. The error return is reserved for infrastructure faults.
func (u *Unit) Prepare(ctx context.Context, cfg *config.Config) (string, error) {
	switch u.state {
	case stateReady:
		return "", nil
	case stateFailedCompile:
		return CachedCompileErrorMessage, nil
	}
	if u.boxPath == "" {
		return "", appErr.New(appErr.InvalidParams).WithMessage("box path has not been set")
	}
	if !u.Lang.Known() {
		return "", appErr.Newf(appErr.LanguageNotSupported, "unknown language: %s", u.Lang)
	}

	switch u.Lang {
	case language.Python:
		return u.preparePython(cfg)
	case language.Cpp:
		return u.prepareCpp(ctx, cfg)
	default:
		return u.prepareAQAAsm(cfg)
	}
}

func (u *Unit) preparePython(cfg *config.Config) (string, error) {
	code := u.Code
	if u.PythonIgnorePrompts {
		code = promptShim + code
	}
	sourceName := u.FileName + "." + language.Python.FileExtension()
	if err := u.writeBoxFile(sourceName, []byte(code)); err != nil {
		return "", err
	}
	u.runArgs = []string{cfg.PythonPath, sourceName}
	u.state = stateReady
	return "", nil
}

func (u *Unit) prepareCpp(ctx context.Context, cfg *config.Config) (string, error) {
	sourceName := u.FileName + "." + language.Cpp.FileExtension()
	if err := u.writeBoxFile(sourceName, []byte(u.Code)); err != nil {
		return "", err
	}

	flags, err := shlex.Split(cfg.CppCompileFlags)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.InvalidParams, "parse compile flags failed")
	}
	args := append(flags,
		"-o", filepath.Join(u.boxPath, u.FileName),
		filepath.Join(u.boxPath, sourceName),
	)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, cfg.CppCompiler, args...)
	cmd.Stderr = &stderr
	runErr := cmd.Run()
	if runErr != nil {
		if _, ok := runErr.(*exec.ExitError); !ok {
			return "", appErr.Wrapf(runErr, appErr.PrepareFailed, "invoke compiler failed")
		}
	}
	if diagnostic := stderr.String(); diagnostic != "" {
		logger.Info(ctx, "compilation failed")
		u.state = stateFailedCompile
		u.runArgs = nil
		return diagnostic, nil
	}

	// Executed relative to the box.
	u.runArgs = []string{u.FileName}
	u.state = stateReady
	return "", nil
}

func (u *Unit) prepareAQAAsm(cfg *config.Config) (string, error) {
	sourceName := u.FileName + "." + language.AQAAsm.FileExtension()
	if err := u.writeBoxFile(sourceName, []byte(u.Code)); err != nil {
		return "", err
	}
	interpreter, err := os.ReadFile(cfg.InterpreterPath)
	if err != nil {
		return "", appErr.Wrapf(err, appErr.PrepareFailed, "read interpreter binary failed")
	}
	target := filepath.Join(u.boxPath, interpreterName)
	if err := os.WriteFile(target, interpreter, 0755); err != nil {
		return "", appErr.Wrapf(err, appErr.PrepareFailed, "copy interpreter into box failed")
	}

	args := []string{interpreterName, sourceName, "-i"}
	args = append(args, u.AQAInputs...)
	args = append(args, "-o")
	args = append(args, u.AQAOutputs...)
	u.runArgs = args
	u.state = stateReady
	return "", nil
}

func (u *Unit) writeBoxFile(name string, data []byte) error {
	if err := os.WriteFile(filepath.Join(u.boxPath, name), data, 0644); err != nil {
		return appErr.Wrapf(err, appErr.PrepareFailed, "write source into box failed")
	}
	return nil
}

// Run executes the prepared unit inside the box and digests its stderr.
// Returns (stdout, error digest, exit code).
func (u *Unit) Run(
	ctx context.Context,
	exe sandbox.Executor,
	boxID int,
	metadataPath string,
	timeLimitMs, memoryLimitKB int64,
	input string,
) (string, string, int, error) {
	if u.state != stateReady {
		return "", "", 0, appErr.New(appErr.InvalidParams).WithMessage("source has not been prepared")
	}
	res, err := exe.Run(ctx, sandbox.RunSpec{
		BoxID:         boxID,
		MetadataPath:  metadataPath,
		TimeLimitMs:   timeLimitMs,
		MemoryLimitKB: memoryLimitKB,
		Args:          u.runArgs,
		Stdin:         input,
	})
	if err != nil {
		return "", "", 0, err
	}
	return res.Stdout, u.errorDigest(res.Stderr), res.ExitCode, nil
}
