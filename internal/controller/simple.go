package controller

import (
	"bytes"
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"testament.dev/pkg/testament/internal/domain"
	m "testament.dev/pkg/testament/internal/model"
)

// SimpleUI prints the discovered test tree as a table. It drains discovery
// to completion; non-interactive contexts use it for listing and for
// out-of-tty fallback. With an executor attached, a preselection is run
// after discovery and the output and summary printed plainly.
type SimpleUI struct {
	cmd      *cobra.Command
	executor *domain.Executor
}

// NewSimpleUI creates a SimpleUI writing through the command's output.
func NewSimpleUI(cmd *cobra.Command) *SimpleUI {
	return &SimpleUI{cmd: cmd}
}

// NewSimpleRunUI creates a SimpleUI that also runs the session's preselected
// tests once discovery finishes.
func NewSimpleRunUI(cmd *cobra.Command, executor *domain.Executor) *SimpleUI {
	return &SimpleUI{cmd: cmd, executor: executor}
}

// Run waits for discovery to finish, prints the resulting tree, and runs any
// preselection when an executor is attached.
func (s *SimpleUI) Run(ctx context.Context, params SessionParams) error {
	projects := params.Projects
	failures := map[int]string{}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-params.Discovery:
			if !ok {
				if err := s.render(projects, failures, params); err != nil {
					return err
				}

				if s.executor != nil && len(params.Preselected) > 0 {
					return s.runPreselected(ctx, projects, params)
				}

				return nil
			}

			switch e := event.(type) {
			case m.ProjectDiscovered:
				projects[e.Index].Classes = e.Classes
			case m.ProjectFailed:
				failures[e.Index] = e.Message
			case m.DiscoveryComplete:
			}
		}
	}
}

// runPreselected runs every project narrowed to the preselected methods,
// streaming surviving output lines and finishing with a combined summary.
func (s *SimpleUI) runPreselected(ctx context.Context, projects []m.Project, params SessionParams) error {
	var names []string

	seen := map[string]bool{}
	for _, ct := range params.Preselected {
		if !seen[ct.MethodName] {
			seen[ct.MethodName] = true
			names = append(names, ct.MethodName)
		}
	}

	var total domain.RunSummary

	for i := range projects {
		project := &projects[i]
		if project.Path == "" {
			continue
		}

		s.cmd.Printf("\nrunning %s\n", project.Name)

		for event := range s.executor.Run(ctx, project.Path, names) {
			switch e := event.(type) {
			case m.ExecOutput:
				s.cmd.Println(e.Line)
			case m.ExecProgress:
			case m.ExecCompleted:
				summary := domain.Correlate(project, e.Records)
				total.Passed += summary.Passed
				total.Failed += summary.Failed
				total.Skipped += summary.Skipped
			case m.ExecFailed:
				return fmt.Errorf("%s: %s", project.Name, e.Message)
			}
		}
	}

	s.cmd.Printf("\n%d passed, %d failed, %d skipped\n", total.Passed, total.Failed, total.Skipped)

	if total.Failed > 0 {
		return fmt.Errorf("%d tests failed", total.Failed)
	}

	return nil
}

func (s *SimpleUI) render(projects []m.Project, failures map[int]string, params SessionParams) error {
	if params.Label != "" {
		s.cmd.Printf("%s\n\n", params.Label)
	}

	total := 0

	for i := range projects {
		if len(params.Preselected) > 0 {
			projects[i].Classes = domain.FilterClassesToTests(projects[i].Classes, params.Preselected)
		}

		total += projects[i].TestCount()
	}

	s.cmd.Print(renderTestTable(projects, failures, total))

	for i, project := range projects {
		if message, ok := failures[i]; ok {
			s.cmd.Printf("\n%s: %s\n", project.Name, message)
		}
	}

	return nil
}

func renderTestTable(projects []m.Project, failures map[int]string, total int) string {
	var tableBuffer bytes.Buffer

	table := tablewriter.NewWriter(&tableBuffer)
	table.SetHeader([]string{"Project", "Class", "Test"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetAutoMergeCells(true)
	table.SetRowLine(false)
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT, tablewriter.ALIGN_LEFT})

	for i, project := range projects {
		if _, failed := failures[i]; failed {
			table.Append([]string{project.Name, "(discovery failed)", ""})

			continue
		}

		if len(project.Classes) == 0 {
			table.Append([]string{project.Name, "(no tests)", ""})

			continue
		}

		for _, class := range project.Classes {
			className := class.FullName()
			if className == "" {
				className = "(uncategorized)"
			}

			for _, test := range class.Tests {
				table.Append([]string{project.Name, className, test.Name})
			}
		}
	}

	table.SetFooter([]string{
		fmt.Sprintf("Projects %d", len(projects)),
		"",
		fmt.Sprintf("Tests %d", total),
	})
	table.Render()

	return tableBuffer.String()
}
