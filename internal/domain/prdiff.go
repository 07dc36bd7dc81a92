package domain

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

// PRInfo identifies a pull request.
type PRInfo struct {
	Owner  string
	Repo   string
	Number int
}

var prURLPattern = regexp.MustCompile(`^https?://github\.com/([^/]+)/([^/]+)/pull/(\d+)`)

// ParsePRURL extracts owner, repository, and number from a pull request URL.
func ParsePRURL(url string) (PRInfo, error) {
	match := prURLPattern.FindStringSubmatch(strings.TrimSpace(url))
	if match == nil {
		return PRInfo{}, fmt.Errorf("not a pull request URL: %s", url)
	}

	number, err := strconv.Atoi(match[3])
	if err != nil {
		return PRInfo{}, fmt.Errorf("not a pull request URL: %s", url)
	}

	return PRInfo{Owner: match[1], Repo: match[2], Number: number}, nil
}

// ChangedTest is a test method a pull request adds or modifies.
type ChangedTest struct {
	FilePath   string
	ClassName  string
	MethodName string
	FullName   string
}

var (
	testAttrPattern   = regexp.MustCompile(`(?i)\[(Fact|Theory|Test|TestMethod|TestCase)\b[^\]]*\]`)
	testMethodPattern = regexp.MustCompile(`(?:public\s+)?(?:async\s+)?(?:Task|void)\s+(\w+)\s*\(`)
	testNamePattern   = regexp.MustCompile(`^(Test\w*|\w+Test|\w+Tests|\w+Should\w*|Should\w+)$`)
)

// attrWindow is how many added lines after a test attribute may still carry
// the method declaration it annotates.
const attrWindow = 5

// ExtractChangedTests scans a unified diff for test methods touched by added
// lines. A method counts when an added line declares it beneath a test
// attribute added within the last few lines, or when its name follows a test
// naming convention. Only files whose path looks like a test file are
// considered; class names come from the file stem.
func ExtractChangedTests(diff string) []ChangedTest {
	var (
		changed     []ChangedTest
		currentFile string
		pendingAttr int
	)

	seen := map[string]bool{}

	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+++ b/") {
			currentFile = strings.TrimPrefix(line, "+++ b/")
			pendingAttr = 0

			continue
		}

		if !strings.HasPrefix(line, "+") || strings.HasPrefix(line, "+++") {
			continue
		}

		if currentFile == "" || !isTestFile(currentFile) {
			continue
		}

		added := line[1:]

		if testAttrPattern.MatchString(added) {
			pendingAttr = attrWindow

			continue
		}

		if match := testMethodPattern.FindStringSubmatch(added); match != nil {
			name := match[1]

			if pendingAttr > 0 || testNamePattern.MatchString(name) {
				class := classNameFromPath(currentFile)
				full := class + "." + name

				if !seen[full] {
					seen[full] = true
					changed = append(changed, ChangedTest{
						FilePath:   currentFile,
						ClassName:  class,
						MethodName: name,
						FullName:   full,
					})
				}
			}

			pendingAttr = 0

			continue
		}

		if pendingAttr > 0 {
			pendingAttr--
		}
	}

	return changed
}

func isTestFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".cs") {
		return false
	}

	lower := strings.ToLower(path)

	return strings.Contains(lower, "test") || strings.Contains(lower, "spec")
}

func classNameFromPath(path string) string {
	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ProjectsForChangedTests maps each changed file to its owning project
// descriptor by searching upward from the file under root. Projects come back
// deduplicated in encounter order; files without a project above them are
// skipped.
func ProjectsForChangedTests(fs adapter.SourceFSAdapter, root m.Path, changed []ChangedTest) []m.Path {
	var projects []m.Path

	seen := map[m.Path]bool{}

	for _, ct := range changed {
		start := m.Path(filepath.Join(root.String(), filepath.FromSlash(ct.FilePath)))

		project, ok := fs.FindProjectFile(start, ".csproj")
		if !ok || seen[project] {
			continue
		}

		seen[project] = true
		projects = append(projects, project)
	}

	return projects
}

// FilterClassesToTests narrows discovered classes down to the tests a pull
// request touched, matching on bare method name. Classes left without tests
// are dropped.
func FilterClassesToTests(classes []m.Class, changed []ChangedTest) []m.Class {
	wanted := map[string]bool{}
	for _, ct := range changed {
		wanted[ct.MethodName] = true
	}

	var filtered []m.Class

	for _, class := range classes {
		var kept []m.Test

		for _, test := range class.Tests {
			name := stripParams(test.Name)
			if last := strings.LastIndexByte(name, '.'); last >= 0 {
				name = name[last+1:]
			}

			if wanted[name] {
				kept = append(kept, test)
			}
		}

		if len(kept) > 0 {
			class.Tests = kept
			filtered = append(filtered, class)
		}
	}

	return filtered
}

// BuildSyntheticClasses groups changed tests into display classes for when
// discovery finds no matching project, so a run can still be assembled from
// the diff alone.
func BuildSyntheticClasses(changed []ChangedTest) []m.Class {
	var order []string

	grouped := map[string][]m.Test{}

	for _, ct := range changed {
		if _, ok := grouped[ct.ClassName]; !ok {
			order = append(order, ct.ClassName)
		}

		grouped[ct.ClassName] = append(grouped[ct.ClassName], m.NewTest(ct.MethodName, ct.FullName))
	}

	sort.Strings(order)

	classes := make([]m.Class, 0, len(order))
	for _, name := range order {
		classes = append(classes, m.Class{Name: name, Tests: grouped[name]})
	}

	return classes
}
