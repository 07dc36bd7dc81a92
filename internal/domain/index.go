package domain

import (
	"testament.dev/pkg/testament/internal/adapter"
	m "testament.dev/pkg/testament/internal/model"
)

// SourceIndex maps bare method names to every declaration carrying that name
// across a project's sources. Lookups preserve encounter order so ambiguous
// names resolve deterministically.
type SourceIndex struct {
	byMethod map[string][]MethodInfo
	count    int
}

func NewSourceIndex() *SourceIndex {
	return &SourceIndex{byMethod: map[string][]MethodInfo{}}
}

func (si *SourceIndex) Add(mi MethodInfo) {
	si.byMethod[mi.Method] = append(si.byMethod[mi.Method], mi)
	si.count++
}

// Lookup returns all declarations for a bare method name, in the order the
// scanner encountered them.
func (si *SourceIndex) Lookup(method string) []MethodInfo {
	return si.byMethod[method]
}

func (si *SourceIndex) Len() int {
	return si.count
}

// BuildSourceIndex scans every .cs file under projectDir and indexes each
// method declaration found. Unreadable files are skipped.
func BuildSourceIndex(fs adapter.SourceFSAdapter, projectDir m.Path) *SourceIndex {
	index := NewSourceIndex()

	fs.WalkSources(projectDir, ".cs", func(_ m.Path, content []byte) {
		for _, mi := range ParseSourceStructure(string(content)) {
			index.Add(mi)
		}
	})

	return index
}
