package domain

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

// Executor runs selected tests through the toolchain, streaming progress and
// output while the run is live and delivering the parsed report at the end.
type Executor struct {
	dotnet adapter.DotnetAdapter
}

func NewExecutor(dotnet adapter.DotnetAdapter) *Executor {
	return &Executor{dotnet: dotnet}
}

// BuildFilter composes the test selection filter for a run: one
// FullyQualifiedName~ clause per test, parameter suffixes stripped, joined
// with |. An empty selection yields an empty filter, meaning run everything.
func BuildFilter(tests []string) string {
	clauses := make([]string, 0, len(tests))
	for _, test := range tests {
		clauses = append(clauses, "FullyQualifiedName~"+stripParams(test))
	}

	return strings.Join(clauses, "|")
}

// Run executes the selected tests of a project. The returned channel yields
// ExecOutput and ExecProgress events while the run is live, then exactly one
// ExecCompleted or ExecFailed before closing.
func (e *Executor) Run(ctx context.Context, project m.Path, tests []string) <-chan m.ExecEvent {
	events := make(chan m.ExecEvent, 64)

	go func() {
		defer close(events)

		trxPath := filepath.Join(os.TempDir(), fmt.Sprintf("testament-%d.trx", time.Now().UnixNano()))
		defer os.Remove(trxPath)

		exitCode, err := e.dotnet.RunTests(ctx, project, BuildFilter(tests), m.Path(trxPath),
			func(line string) {
				trimmed := strings.TrimSpace(line)

				if strings.HasPrefix(trimmed, "Passed") || strings.HasPrefix(trimmed, "Failed") {
					events <- m.ExecProgress{}

					return
				}

				if trimmed != "" && !isExecutionNoise(trimmed) {
					events <- m.ExecOutput{Line: line}
				}
			})
		if err != nil {
			events <- m.ExecFailed{Message: err.Error()}

			return
		}

		data, err := os.ReadFile(trxPath)
		if err != nil {
			events <- m.ExecFailed{
				Message: fmt.Sprintf("no test report produced (exit code %d)", exitCode),
			}

			return
		}

		records, err := ParseReport(bytes.NewReader(data))
		if err != nil {
			events <- m.ExecFailed{Message: err.Error()}

			return
		}

		events <- m.ExecCompleted{Records: records}
	}()

	return events
}

// Build compiles a project without running tests, streaming output and
// finishing with an ExecBuildDone carrying the result.
func (e *Executor) Build(ctx context.Context, project m.Path) <-chan m.ExecEvent {
	events := make(chan m.ExecEvent, 64)

	go func() {
		defer close(events)

		exitCode, err := e.dotnet.Build(ctx, project, func(line string) {
			if trimmed := strings.TrimSpace(line); trimmed != "" && !isExecutionNoise(trimmed) {
				events <- m.ExecOutput{Line: line}
			}
		})
		if err != nil {
			events <- m.ExecFailed{Message: err.Error()}

			return
		}

		events <- m.ExecBuildDone{Success: exitCode == 0}
	}()

	return events
}

// isExecutionNoise drops restore/build banners plus the stack frames and
// per-assertion diagnostics that follow a failure marker; the failure detail
// itself arrives through the parsed report.
func isExecutionNoise(line string) bool {
	for _, prefix := range []string{
		"Determining projects to restore",
		"Restored ",
		"All projects are up-to-date",
		"Microsoft (R)",
		"Copyright (C)",
		"at ",
		"Error Message:",
		"Stack Trace:",
		"Expected:",
		"Actual:",
	} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}

	return false
}
