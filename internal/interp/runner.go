package interp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/noodle-dev/noodle-bridge/internal/config"
)

// ErrNotFound reports that the requested script file does not exist.
var ErrNotFound = errors.New("file not found")

// ExitError reports a run that finished with a non-zero exit status.
// Its message is the interpreter's captured stderr, untouched.
type ExitError struct {
	Stderr string
}

func (e *ExitError) Error() string { return e.Stderr }

// Runner invokes the external Noodle interpreter as a subprocess.
// Noodle scripts go through the interpreter's module runner from
// CoreDir; plain Python files are run directly. Each call spawns one
// process and makes one attempt.
type Runner struct {
	Interpreter string
	CoreDir     string
	EntryModule string
	TempDir     string // empty means the system temp directory
	Timeout     time.Duration
}

// New builds a Runner from configuration.
func New(cfg *config.Config) *Runner {
	return &Runner{
		Interpreter: cfg.Interpreter.Binary,
		CoreDir:     cfg.Interpreter.CoreDir,
		EntryModule: cfg.Interpreter.EntryModule,
		TempDir:     cfg.Interpreter.TempDir,
		Timeout:     cfg.RunTimeout(),
	}
}

// ExecuteInline runs Noodle script text. The text is written to a
// uniquely named temp file owned by this call, handed to the module
// runner, and removed best-effort once the process exits.
func (r *Runner) ExecuteInline(ctx context.Context, code string) (string, error) {
	tmp, err := os.CreateTemp(r.TempDir, "noodle-*.nl")
	if err != nil {
		return "", fmt.Errorf("create temp script: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path) // removal failure is not the caller's problem

	if _, err := tmp.WriteString(code); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp script: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write temp script: %w", err)
	}

	return r.runModule(ctx, path)
}

// ExecutePythonFile runs an existing Python file directly, with no
// temp-file indirection. The path must exist at call time.
func (r *Runner) ExecutePythonFile(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Interpreter, path)
	return collect(ctx, cmd)
}

// ExecuteNoodleFile reads a Noodle file and runs its content the same
// way ExecuteInline does.
func (r *Runner) ExecuteNoodleFile(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	code, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read noodle file: %w", err)
	}

	return r.ExecuteInline(ctx, string(code))
}

func (r *Runner) runModule(ctx context.Context, scriptPath string) (string, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Interpreter, "-m", r.EntryModule, scriptPath)
	cmd.Dir = r.CoreDir
	return collect(ctx, cmd)
}

func (r *Runner) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.Timeout > 0 {
		return context.WithTimeout(ctx, r.Timeout)
	}
	return ctx, func() {}
}

// collect waits for the process and buffers its output in full.
// Invalid byte sequences in the output never fail a run; they are
// replaced with the Unicode replacement character.
func collect(ctx context.Context, cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// If the process is killed on cancellation, don't wait forever on
	// pipes inherited by its children.
	cmd.WaitDelay = 2 * time.Second

	err := cmd.Run()
	if err == nil {
		return sanitize(stdout.String()), nil
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("interpreter: %w", ctx.Err())
	}

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return "", &ExitError{Stderr: sanitize(stderr.String())}
	}
	return "", fmt.Errorf("start interpreter: %w", err)
}

func sanitize(s string) string {
	return strings.ToValidUTF8(s, "�")
}
