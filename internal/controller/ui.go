// Package controller renders discovered tests and run results, either as an
// interactive terminal UI or as plain text output.
package controller

import (
	"context"
	"os"

	"golang.org/x/term"

	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

// SessionParams carries everything a UI needs to drive one session: the
// placeholder projects, the discovery event stream filling them in, and any
// preselection narrowing the session to specific tests.
type SessionParams struct {
	// Projects holds one placeholder per discovered project descriptor, in
	// discovery order. Discovery events reference projects by index.
	Projects []m.Project

	// Discovery streams per-project results and closes after the terminal
	// event.
	Discovery <-chan m.DiscoveryEvent

	// SolutionDir is the directory watched in watch mode.
	SolutionDir m.Path

	// Label names the session in the header: the solution file or a pull
	// request URL.
	Label string

	// Preselected narrows the tree to the given tests when non-empty. Tests
	// that discovery never finds are still shown, grouped from the
	// preselection itself, so a run can be assembled for them.
	Preselected []domain.ChangedTest

	// Watch starts the session with file watching enabled.
	Watch bool

	// WatchDebounce is the window for collapsing file-change bursts.
	WatchDebounce int
}

// UI drives one discovery-and-run session to completion.
type UI interface {
	Run(ctx context.Context, params SessionParams) error
}

// IsTTY reports whether stdout is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
