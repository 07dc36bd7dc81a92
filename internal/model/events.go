package model

// DiscoveryEvent is emitted by the discovery coordinator while projects are
// enumerated in the background. Per-project events may arrive in any order;
// DiscoveryComplete is always last.
type DiscoveryEvent interface {
	discoveryEvent()
}

// ProjectDiscovered carries the resolved class tree for one project.
type ProjectDiscovered struct {
	Index   int
	Classes []Class
}

// ProjectFailed carries the enumeration error for one project. It does not
// stop discovery of sibling projects.
type ProjectFailed struct {
	Index   int
	Message string
}

// DiscoveryComplete is the terminal event of a discovery round.
type DiscoveryComplete struct{}

func (ProjectDiscovered) discoveryEvent() {}
func (ProjectFailed) discoveryEvent()     {}
func (DiscoveryComplete) discoveryEvent() {}

// ExecEvent is emitted by the execution driver while a run or build command
// is in flight. Exactly one of ExecCompleted, ExecBuildDone, or ExecFailed
// terminates the stream.
type ExecEvent interface {
	execEvent()
}

// ExecOutput is one surviving line of tool output.
type ExecOutput struct {
	Line string
}

// ExecProgress signals that one test finished; the line it came from is
// consumed rather than forwarded.
type ExecProgress struct{}

// ExecBuildDone terminates a build command.
type ExecBuildDone struct {
	Success bool
}

// ExecCompleted terminates a test run with the parsed report records.
type ExecCompleted struct {
	Records []OutcomeRecord
}

// ExecFailed terminates a run or build that could not produce a result.
type ExecFailed struct {
	Message string
}

func (ExecOutput) execEvent()    {}
func (ExecProgress) execEvent()  {}
func (ExecBuildDone) execEvent() {}
func (ExecCompleted) execEvent() {}
func (ExecFailed) execEvent()    {}
