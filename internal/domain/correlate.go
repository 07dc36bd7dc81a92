package domain

import (
	"strings"

	m "testament.dev/pkg/testament/internal/model"
)

// RunSummary tallies the outcome records of a single run.
type RunSummary struct {
	Passed      int
	Failed      int
	Skipped     int
	FailedNames []string
}

// Correlate applies a run's outcome records to the project tree. Matching
// runs in three passes of decreasing strictness: exact full-name and
// suffix-token equality first, then record names ending in ".<test full
// name>", then raw record names against the test's display name or its final
// token. Each record is consumed by at most one test; records sharing a name
// satisfy one test each, in report order. Tests still marked running
// afterwards revert to not-run via ResetRunning on the caller's side.
func Correlate(project *m.Project, records []m.OutcomeRecord) RunSummary {
	var summary RunSummary

	for _, record := range records {
		switch record.Outcome {
		case m.OutcomePassed:
			summary.Passed++
		case m.OutcomeFailed:
			summary.Failed++
			summary.FailedNames = append(summary.FailedNames, record.TestName)
		case m.OutcomeSkipped:
			summary.Skipped++
		}
	}

	consumed := make([]bool, len(records))

	byFullName := map[string][]int{}
	bySuffix := map[string][]int{}

	for i, record := range records {
		name := record.TestName
		byFullName[name] = append(byFullName[name], i)

		if last := strings.LastIndexByte(name, '.'); last >= 0 {
			suffix := name[last+1:]
			bySuffix[suffix] = append(bySuffix[suffix], i)
		}
	}

	// unconsumed returns the first unconsumed record index for a key; records
	// sharing a name are handed out in report order.
	unconsumed := func(candidates map[string][]int, key string) (int, bool) {
		for _, i := range candidates[key] {
			if !consumed[i] {
				return i, true
			}
		}

		return 0, false
	}

	apply := func(test *m.Test, i int) {
		record := records[i]
		consumed[i] = true

		switch record.Outcome {
		case m.OutcomePassed:
			test.Status = m.StatusPassed
		case m.OutcomeFailed:
			test.Status = m.StatusFailed
		case m.OutcomeSkipped:
			test.Status = m.StatusSkipped
		}

		test.DurationMS = record.DurationMS
		test.FailureDetail = record.ErrorDetail
	}

	// Pass 1: exact full-name match, or the record's final dotted segment
	// matching the test's full name.
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			test := &project.Classes[ci].Tests[ti]

			if i, ok := unconsumed(byFullName, test.FullName); ok {
				apply(test, i)

				continue
			}

			if i, ok := unconsumed(bySuffix, test.FullName); ok {
				apply(test, i)
			}
		}
	}

	// Pass 2: record names that end in ".<full name>", for tests whose own
	// qualification is a suffix of the record's.
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			test := &project.Classes[ci].Tests[ti]
			if test.Status != m.StatusRunning {
				continue
			}

			for i, record := range records {
				if consumed[i] {
					continue
				}

				if record.TestName == test.FullName ||
					strings.HasSuffix(record.TestName, "."+test.FullName) {
					apply(test, i)

					break
				}
			}
		}
	}

	// Pass 3: raw record names against the test's display name, falling back
	// to the token after its final dot.
	for ci := range project.Classes {
		for ti := range project.Classes[ci].Tests {
			test := &project.Classes[ci].Tests[ti]
			if test.Status != m.StatusRunning {
				continue
			}

			if i, ok := unconsumed(byFullName, test.Name); ok {
				apply(test, i)

				continue
			}

			if last := strings.LastIndexByte(test.Name, '.'); last >= 0 {
				if i, ok := unconsumed(byFullName, test.Name[last+1:]); ok {
					apply(test, i)
				}
			}
		}
	}

	return summary
}

// ResetRunning reverts every test still marked running back to not-run. Runs
// can end without reporting every selected test; stale running markers would
// otherwise persist across the whole tree.
func ResetRunning(projects []m.Project) {
	for pi := range projects {
		for ci := range projects[pi].Classes {
			for ti := range projects[pi].Classes[ci].Tests {
				test := &projects[pi].Classes[ci].Tests[ti]
				if test.Status == m.StatusRunning {
					test.Status = m.StatusNotRun
				}
			}
		}
	}
}
