package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"summarizer-session-be/internal/entity"
	"summarizer-session-be/internal/pkg/apperror"
	"summarizer-session-be/internal/pkg/logger"
	"summarizer-session-be/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/semaphore"
)

const (
	resultFile     = "result.json"
	stateInFile    = "state-in.pkl"
	stateOutFile   = "state-out.pkl"
	labelsFile     = "labels.json"
	rougeInputFile = "rouge-input.json"
)

type Config struct {
	// Command is the engine entry point plus leading arguments, e.g. ["/bin/sh", "cascade.sh"].
	Command []string
	WorkDir string
	BaseDir string
	TempDir string
	Timeout time.Duration
	// MaxConcurrent caps simultaneous engine processes. Zero means unlimited.
	MaxConcurrent int
	// PrepareCommand, when set, is run by Prepare unless PrepareMarker exists in WorkDir.
	PrepareCommand []string
	PrepareMarker  string
}

// ProcessGateway runs the engine as a child process.
type ProcessGateway struct {
	cfg       Config
	logger    logger.ILogger
	engineLog logger.ILogger
	slots     *semaphore.Weighted
}

// NewProcessGateway returns a gateway. engineLog receives the full captured
// output of every run; logger gets one line per invocation.
func NewProcessGateway(cfg Config, log logger.ILogger, engineLog logger.ILogger) (*ProcessGateway, error) {
	if len(cfg.Command) == 0 {
		return nil, errors.New("engine command is empty")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Minute
	}
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if engineLog == nil {
		engineLog = log
	}
	g := &ProcessGateway{cfg: cfg, logger: log, engineLog: engineLog}
	if cfg.MaxConcurrent > 0 {
		g.slots = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	return g, nil
}

// invocation is one engine run inside its own scratch directory.
type invocation struct {
	subcommand string
	dir        string
}

func (inv *invocation) path(name string) string {
	return filepath.Join(inv.dir, name)
}

func (g *ProcessGateway) newInvocation(subcommand string) (*invocation, error) {
	dir, err := os.MkdirTemp(g.cfg.TempDir, "engine-"+subcommand+"-*")
	if err != nil {
		return nil, &Error{Kind: apperror.ErrEngineExecutionFailed, Subcommand: subcommand, ExitCode: -1, Err: err}
	}
	return &invocation{subcommand: subcommand, dir: dir}, nil
}

func (inv *invocation) cleanup() {
	os.RemoveAll(inv.dir)
}

func (inv *invocation) fail(kind error, err error) *Error {
	return &Error{Kind: kind, Subcommand: inv.subcommand, Err: err}
}

func (g *ProcessGateway) ColdStart(ctx context.Context, topic entity.Topic, variant entity.Variant) (*Result, error) {
	inv, err := g.newInvocation(SubcommandSummarize)
	if err != nil {
		return nil, err
	}
	defer inv.cleanup()

	args := summarizeArgs(topic, variant, inv.path(stateOutFile))
	if err := g.run(ctx, inv, args, attribute.String("engine.topic", string(topic)), attribute.String("engine.variant", variant.String())); err != nil {
		return nil, err
	}
	return g.readResult(inv)
}

func (g *ProcessGateway) Continue(ctx context.Context, snapshot []byte, labels []Label) (*Result, error) {
	inv, err := g.newInvocation(SubcommandContinue)
	if err != nil {
		return nil, err
	}
	defer inv.cleanup()

	if err := os.WriteFile(inv.path(stateInFile), snapshot, 0600); err != nil {
		return nil, inv.fail(apperror.ErrEngineExecutionFailed, fmt.Errorf("write input snapshot: %w", err))
	}
	if labels == nil {
		labels = []Label{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return nil, inv.fail(apperror.ErrEngineExecutionFailed, fmt.Errorf("encode labels: %w", err))
	}
	if err := os.WriteFile(inv.path(labelsFile), labelsJSON, 0600); err != nil {
		return nil, inv.fail(apperror.ErrEngineExecutionFailed, fmt.Errorf("write labels: %w", err))
	}

	args := continueArgs(inv.path(stateInFile), inv.path(stateOutFile), inv.path(labelsFile))
	if err := g.run(ctx, inv, args, attribute.Int("engine.labels", len(labels))); err != nil {
		return nil, err
	}
	return g.readResult(inv)
}

func (g *ProcessGateway) Score(ctx context.Context, topic entity.Topic, text string) (*RougeScore, error) {
	inv, err := g.newInvocation(SubcommandRouge)
	if err != nil {
		return nil, err
	}
	defer inv.cleanup()

	// the engine reads the text as a JSON string
	input, err := json.Marshal(text)
	if err != nil {
		return nil, inv.fail(apperror.ErrEngineExecutionFailed, err)
	}
	if err := os.WriteFile(inv.path(rougeInputFile), input, 0600); err != nil {
		return nil, inv.fail(apperror.ErrEngineExecutionFailed, fmt.Errorf("write rouge input: %w", err))
	}

	if err := g.run(ctx, inv, rougeArgs(topic, inv.path(rougeInputFile)), attribute.String("engine.topic", string(topic))); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inv.path(resultFile))
	if err != nil {
		return nil, g.invalid(inv, fmt.Errorf("read result: %w", err))
	}
	score, err := parseRouge(data)
	if err != nil {
		return nil, g.invalid(inv, err)
	}
	return score, nil
}

func (g *ProcessGateway) readResult(inv *invocation) (*Result, error) {
	data, err := os.ReadFile(inv.path(resultFile))
	if err != nil {
		return nil, g.invalid(inv, fmt.Errorf("read result: %w", err))
	}
	res, err := parseResult(data)
	if err != nil {
		return nil, g.invalid(inv, err)
	}
	state, err := os.ReadFile(inv.path(stateOutFile))
	if err != nil {
		return nil, g.invalid(inv, fmt.Errorf("read output snapshot: %w", err))
	}
	if len(state) == 0 {
		return nil, g.invalid(inv, errors.New("output snapshot is empty"))
	}
	res.Snapshot = state
	return res, nil
}

func (g *ProcessGateway) invalid(inv *invocation, err error) error {
	metrics.EngineInvocations.WithLabelValues(inv.subcommand, metrics.OutcomeInvalidResult).Inc()
	g.logger.Error("ENGINE", "Engine result invalid", map[string]interface{}{
		"subcommand": inv.subcommand,
		"error":      err.Error(),
	})
	return inv.fail(apperror.ErrEngineResultInvalid, err)
}

// run executes the engine and classifies its exit. Output files are left for
// the caller to read.
func (g *ProcessGateway) run(ctx context.Context, inv *invocation, subArgs []string, attrs ...attribute.KeyValue) error {
	ctx, span := otel.Tracer("engine").Start(ctx, "engine."+inv.subcommand)
	defer span.End()
	span.SetAttributes(attrs...)

	if g.slots != nil {
		if err := g.slots.Acquire(ctx, 1); err != nil {
			return inv.fail(apperror.ErrEngineTimeout, err)
		}
		defer g.slots.Release(1)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	args := append([]string{}, g.cfg.Command[1:]...)
	args = append(args, "-out", inv.path(resultFile), "--iobasedir", g.cfg.BaseDir, inv.subcommand)
	args = append(args, subArgs...)

	cmd := exec.CommandContext(ctx, g.cfg.Command[0], args...)
	cmd.Dir = g.cfg.WorkDir
	configureKill(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)
	metrics.EngineDuration.WithLabelValues(inv.subcommand).Observe(elapsed.Seconds())

	exitCode := 0
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	g.engineLog.Info("ENGINE", "Engine process finished", map[string]interface{}{
		"subcommand": inv.subcommand,
		"args":       args,
		"exit_code":  exitCode,
		"elapsed_ms": elapsed.Milliseconds(),
		"stdout":     stdout.String(),
		"stderr":     stderr.String(),
	})

	if runErr == nil {
		metrics.EngineInvocations.WithLabelValues(inv.subcommand, metrics.OutcomeSuccess).Inc()
		g.logger.Info("ENGINE", "Engine invocation succeeded", map[string]interface{}{
			"subcommand": inv.subcommand,
			"elapsed_ms": elapsed.Milliseconds(),
		})
		return nil
	}

	engineErr := &Error{
		Subcommand: inv.subcommand,
		ExitCode:   exitCode,
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Err:        runErr,
	}
	switch {
	case ctx.Err() != nil:
		engineErr.Kind = apperror.ErrEngineTimeout
		engineErr.Err = fmt.Errorf("%w after %v", ctx.Err(), elapsed.Round(time.Millisecond))
		metrics.EngineInvocations.WithLabelValues(inv.subcommand, metrics.OutcomeTimeout).Inc()
	default:
		engineErr.Kind = apperror.ErrEngineExecutionFailed
		metrics.EngineInvocations.WithLabelValues(inv.subcommand, metrics.OutcomeFailed).Inc()
	}

	span.RecordError(engineErr)
	span.SetStatus(codes.Error, engineErr.Kind.Error())
	g.logger.Error("ENGINE", "Engine invocation failed", map[string]interface{}{
		"subcommand": inv.subcommand,
		"exit_code":  exitCode,
		"elapsed_ms": elapsed.Milliseconds(),
		"error":      engineErr.Error(),
	})
	return engineErr
}

// Prepare runs the one-off engine setup, e.g. creating its virtualenv, unless
// the marker already exists.
func (g *ProcessGateway) Prepare(ctx context.Context) error {
	if len(g.cfg.PrepareCommand) == 0 {
		return nil
	}
	if g.cfg.PrepareMarker != "" {
		if _, err := os.Stat(filepath.Join(g.cfg.WorkDir, g.cfg.PrepareMarker)); err == nil {
			g.logger.Debug("ENGINE", "Engine already prepared", map[string]interface{}{"marker": g.cfg.PrepareMarker})
			return nil
		}
	}

	cmd := exec.CommandContext(ctx, g.cfg.PrepareCommand[0], g.cfg.PrepareCommand[1:]...)
	cmd.Dir = g.cfg.WorkDir
	configureKill(cmd)
	out, err := cmd.CombinedOutput()
	g.engineLog.Info("ENGINE", "Engine prepare finished", map[string]interface{}{
		"command": g.cfg.PrepareCommand,
		"output":  string(out),
	})
	if err != nil {
		return &Error{Kind: apperror.ErrEngineExecutionFailed, Subcommand: "prepare", Stdout: string(out), Err: err}
	}
	return nil
}
