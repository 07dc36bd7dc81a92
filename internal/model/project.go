package model

import "path/filepath"

// TestStatus represents the lifecycle state of a single test.
type TestStatus int

const (
	// StatusNotRun indicates the test has not been executed yet.
	StatusNotRun TestStatus = iota
	// StatusRunning indicates the test is part of an in-flight run.
	StatusRunning
	// StatusPassed indicates the last run reported the test as passing.
	StatusPassed
	// StatusFailed indicates the last run reported the test as failing.
	StatusFailed
	// StatusSkipped indicates the last run did not execute the test.
	StatusSkipped
)

func (s TestStatus) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "not run"
	}
}

// Test is a single discovered test. FullName is the join key used when
// correlating run results back onto the tree; Name is the short display name.
type Test struct {
	Name          string
	FullName      string
	Status        TestStatus
	DurationMS    int64
	FailureDetail string
}

// NewTest creates a Test in the not-run state.
func NewTest(name, fullName string) Test {
	return Test{Name: name, FullName: fullName, Status: StatusNotRun}
}

// Class groups the tests declared by one class.
type Class struct {
	Name      string
	Namespace string
	Tests     []Test
}

// FullName returns the namespace-qualified class name, or the bare class name
// when the namespace is empty.
func (c *Class) FullName() string {
	if c.Namespace == "" {
		return c.Name
	}

	return c.Namespace + "." + c.Name
}

// Project is one test project discovered from the solution. Its Classes slice
// is replaced wholesale when a discovery round completes; result updates only
// ever mutate the tests in place.
type Project struct {
	Name    string
	Path    Path
	Classes []Class
}

// NewProject creates a named project with no classes yet.
func NewProject(name string, path Path) Project {
	return Project{Name: name, Path: path}
}

// ProjectNameFromPath derives a project display name from its descriptor path.
func ProjectNameFromPath(path Path) string {
	base := filepath.Base(string(path))
	ext := filepath.Ext(base)

	return base[:len(base)-len(ext)]
}

// TestCount returns the total number of tests across all classes.
func (p *Project) TestCount() int {
	count := 0
	for i := range p.Classes {
		count += len(p.Classes[i].Tests)
	}

	return count
}
