// Package sandbox manages isolate box lifecycles and executes programs
// inside them. It speaks only the sandbox tool's CLI contract; the tool
// itself is an external collaborator.
package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/TSOJO/isolate-wrapper/internal/config"
	appErr "github.com/TSOJO/isolate-wrapper/pkg/errors"
	"github.com/TSOJO/isolate-wrapper/pkg/utils/logger"

	"go.uber.org/zap"
)

// Box is one live sandbox: an id in [0, MaxBox) and the working directory
// exposed to sandboxed processes.
type Box struct {
	ID   int
	Path string
}

// RunSpec describes one sandboxed execution.
type RunSpec struct {
	BoxID         int
	MetadataPath  string
	TimeLimitMs   int64
	MemoryLimitKB int64
	Args          []string
	Stdin         string
}

// RawResult captures what the sandbox tool reported for one execution.
type RawResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Executor runs one program inside an already-acquired box.
type Executor interface {
	Run(ctx context.Context, spec RunSpec) (RawResult, error)
}

// Manager acquires, runs in, and releases boxes.
type Manager struct {
	cfg *config.Config
}

// NewManager creates a manager bound to the given config.
func NewManager(cfg *config.Config) *Manager {
	return &Manager{cfg: cfg}
}

// EnsureInstalled probes the sandbox tool.
func (m *Manager) EnsureInstalled(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, m.cfg.IsolatePath, "--version")
	if err := cmd.Run(); err != nil {
		return appErr.Wrap(err, appErr.SandboxUnavailable)
	}
	return nil
}

// Acquire scans box ids from 0 upward and claims the first one the sandbox
// tool initialises successfully.
func (m *Manager) Acquire(ctx context.Context) (*Box, error) {
	if err := os.MkdirAll(m.cfg.MetadataDir, 0755); err != nil {
		return nil, appErr.Wrapf(err, appErr.InternalServerError, "create metadata folder failed")
	}

	for id := 0; id < m.cfg.MaxBox; id++ {
		var stdout bytes.Buffer
		cmd := exec.CommandContext(ctx, m.cfg.IsolatePath, "--box-id", strconv.Itoa(id), "--init")
		cmd.Stdout = &stdout
		err := cmd.Run()
		if err != nil {
			if _, ok := err.(*exec.ExitError); ok {
				// Box already in use.
				logger.Debug(ctx, "box in use, trying next", zap.Int("box_id", id))
				continue
			}
			return nil, appErr.Wrap(err, appErr.SandboxUnavailable)
		}

		// Usually /var/local/lib/isolate/{box-id}/box
		root := strings.TrimSuffix(stdout.String(), "\n")
		box := &Box{ID: id, Path: root + "/box"}
		logger.Info(ctx, "box acquired", zap.Int("box_id", box.ID), zap.String("box_path", box.Path))
		return box, nil
	}
	return nil, appErr.New(appErr.AllBoxesFull)
}

// Release cleans up the box. Double cleanup is tolerated; failures are
// logged, not returned, since the box will be swept eventually.
func (m *Manager) Release(ctx context.Context, box *Box) {
	if box == nil {
		return
	}
	cmd := exec.CommandContext(ctx, m.cfg.IsolatePath, "--box-id", strconv.Itoa(box.ID), "--cleanup")
	if err := cmd.Run(); err != nil {
		logger.Warn(ctx, "box cleanup failed", zap.Int("box_id", box.ID), zap.Error(err))
		return
	}
	logger.Info(ctx, "box released", zap.Int("box_id", box.ID))
}

// SweepAll cleans up every box under the sandbox root, interpreting each
// immediate child name as a box id.
func (m *Manager) SweepAll(ctx context.Context) error {
	entries, err := os.ReadDir(m.cfg.BoxRoot)
	if err != nil {
		return appErr.Wrapf(err, appErr.NotFound, "read sandbox root failed")
	}
	for _, entry := range entries {
		cmd := exec.CommandContext(ctx, m.cfg.IsolatePath, "--box-id", entry.Name(), "--cleanup")
		if err := cmd.Run(); err != nil {
			logger.Warn(ctx, "sweep cleanup failed", zap.String("box_id", entry.Name()), zap.Error(err))
		}
	}
	return nil
}

// MetadataPath returns the per-box metadata file path.
func (m *Manager) MetadataPath(boxID int) string {
	return filepath.Join(m.cfg.MetadataDir, fmt.Sprintf("%d.txt", boxID))
}

// ReadMetadata parses the metadata file written by the last run in the box.
func (m *Manager) ReadMetadata(boxID int) (Metadata, error) {
	return ReadMetadataFile(m.MetadataPath(boxID))
}

// Run executes one program inside the box. The CPU limit is the time limit
// in seconds; the wall limit adds one second of margin for scheduling
// jitter. A non-zero exit from the tool signals a limit hit, fault, or
// internal error and is reported through ExitCode, not the error value.
func (m *Manager) Run(ctx context.Context, spec RunSpec) (RawResult, error) {
	cpuSeconds := float64(spec.TimeLimitMs) / 1000
	args := []string{
		"--box-id", strconv.Itoa(spec.BoxID),
		"-M", spec.MetadataPath,
		"-t", strconv.FormatFloat(cpuSeconds, 'f', -1, 64),
		"-w", strconv.FormatFloat(cpuSeconds+1, 'f', -1, 64),
		"-m", strconv.FormatInt(spec.MemoryLimitKB, 10),
		"--run", "--",
	}
	args = append(args, spec.Args...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, m.cfg.IsolatePath, args...)
	cmd.Stdin = strings.NewReader(spec.Stdin)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := RawResult{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			return res, appErr.Wrap(err, appErr.SandboxUnavailable)
		}
		res.ExitCode = exitErr.ExitCode()
	}
	return res, nil
}
