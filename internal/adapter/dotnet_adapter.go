package adapter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	m "testament.dev/pkg/testament/internal/model"
)

// DotnetAdapter abstracts the dotnet CLI invocations used for enumerating,
// running, and building test projects. Exit status and captured output are the
// only contract; interpretation of the output belongs to the domain layer.
type DotnetAdapter interface {
	// ListTests asks dotnet to list the project's tests without rebuilding.
	// It returns the combined stdout/stderr output and the process exit code.
	// err is non-nil only when the process could not be started.
	ListTests(ctx context.Context, project m.Path) (output string, exitCode int, err error)

	// ListQualified lists fully qualified test names directly from a built
	// test assembly.
	ListQualified(ctx context.Context, artifact m.Path) ([]string, error)

	// RunTests executes the project's tests, writing a TRX report to
	// trxPath. filter, when non-empty, is passed as the test case filter
	// expression. Each stdout line is delivered to onLine as it appears.
	RunTests(ctx context.Context, project m.Path, filter string, trxPath m.Path, onLine func(string)) (exitCode int, err error)

	// Build compiles the project, streaming stdout lines to onLine.
	Build(ctx context.Context, project m.Path, onLine func(string)) (exitCode int, err error)
}

// LocalDotnetAdapter invokes the dotnet binary via os/exec.
type LocalDotnetAdapter struct {
	extraArgs []string
}

// NewLocalDotnetAdapter constructs a LocalDotnetAdapter. extraArgs are
// appended to every `dotnet test` invocation.
func NewLocalDotnetAdapter(extraArgs []string) *LocalDotnetAdapter {
	return &LocalDotnetAdapter{extraArgs: extraArgs}
}

// ListTests runs `dotnet test --list-tests --no-build`.
func (a *LocalDotnetAdapter) ListTests(ctx context.Context, project m.Path) (string, int, error) {
	args := []string{"test", string(project), "--list-tests", "--no-build", "--verbosity", "quiet"}
	args = append(args, a.extraArgs...)

	cmd := exec.CommandContext(ctx, "dotnet", args...)

	var stdout, stderr bytes.Buffer

	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	output := stdout.String() + stderr.String()

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return output, exitErr.ExitCode(), nil
		}

		return output, -1, fmt.Errorf("failed to start dotnet: %w", err)
	}

	return output, 0, nil
}

// ListQualified runs `dotnet vstest --ListFullyQualifiedTests` against a test
// assembly, collecting the names through a temporary target file.
func (a *LocalDotnetAdapter) ListQualified(ctx context.Context, artifact m.Path) ([]string, error) {
	target, err := os.CreateTemp("", "testament-fqlist-*.txt")
	if err != nil {
		return nil, err
	}

	targetPath := target.Name()
	_ = target.Close()

	defer func() { _ = os.Remove(targetPath) }()

	cmd := exec.CommandContext(ctx, "dotnet", "vstest", string(artifact),
		"--ListFullyQualifiedTests",
		"--ListTestsTargetPath:"+targetPath,
	)

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("vstest listing failed: %w", err)
	}

	content, err := os.ReadFile(targetPath)
	if err != nil {
		return nil, err
	}

	var names []string

	for _, line := range strings.Split(string(content), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			names = append(names, trimmed)
		}
	}

	return names, nil
}

// RunTests runs `dotnet test` with a TRX logger, streaming stdout lines.
func (a *LocalDotnetAdapter) RunTests(ctx context.Context, project m.Path, filter string, trxPath m.Path, onLine func(string)) (int, error) {
	args := []string{
		"test", string(project),
		"--logger", "trx;LogFileName=" + string(trxPath),
		"--verbosity", "normal",
	}
	if filter != "" {
		args = append(args, "--filter", filter)
	}

	args = append(args, a.extraArgs...)

	return a.stream(ctx, args, onLine)
}

// Build runs `dotnet build`, streaming stdout lines.
func (a *LocalDotnetAdapter) Build(ctx context.Context, project m.Path, onLine func(string)) (int, error) {
	return a.stream(ctx, []string{"build", string(project)}, onLine)
}

func (a *LocalDotnetAdapter) stream(ctx context.Context, args []string, onLine func(string)) (int, error) {
	cmd := exec.CommandContext(ctx, "dotnet", args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return -1, fmt.Errorf("failed to open stdout pipe: %w", err)
	}

	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return -1, fmt.Errorf("failed to start dotnet: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		onLine(scanner.Text())
	}

	_ = cmd.Wait()

	return cmd.ProcessState.ExitCode(), nil
}

// ArtifactName returns the assembly file name a project descriptor builds to.
func ArtifactName(project m.Path) string {
	base := filepath.Base(string(project))
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	return stem + ".dll"
}
