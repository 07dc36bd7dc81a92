package domain

import (
	"sort"
	"strings"

	m "testament.dev/pkg/testament/internal/model"
)

// stripParams removes a parameterized-case suffix such as "(value: 3)" from a
// test name.
func stripParams(name string) string {
	if paren := strings.IndexByte(name, '('); paren >= 0 {
		return strings.TrimSpace(name[:paren])
	}

	return name
}

// MostlyQualified reports whether a strict majority of the enumerated names
// already carry namespace qualification (two or more dots, ignoring any
// parameter suffix). When they do, source scanning is unnecessary.
func MostlyQualified(names []string) bool {
	qualified := 0

	for _, name := range names {
		if strings.Count(stripParams(name), ".") >= 2 {
			qualified++
		}
	}

	return qualified*2 > len(names)
}

// Resolve turns enumerated test names into classes. Names that are already
// namespace-qualified are split directly; bare names are matched against the
// source index, with repeated occurrences of the same name distributed
// round-robin across the declarations that share it. Names that resolve
// nowhere land in a single uncategorized class.
func Resolve(names []string, index *SourceIndex) []m.Class {
	mostly := MostlyQualified(names)

	type classKey struct {
		name      string
		namespace string
	}

	var (
		order   []classKey
		grouped = map[classKey][]m.Test{}
		seen    = map[string]int{}
	)

	add := func(key classKey, test m.Test) {
		if _, ok := grouped[key]; !ok {
			order = append(order, key)
		}

		grouped[key] = append(grouped[key], test)
	}

	for _, raw := range names {
		stripped := stripParams(raw)

		if mostly && strings.Count(stripped, ".") >= 1 {
			last := strings.LastIndexByte(stripped, '.')
			penult := strings.LastIndexByte(stripped[:last], '.')

			// One-dot names carry class.method with no namespace.
			namespace := ""
			if penult >= 0 {
				namespace = stripped[:penult]
			}

			key := classKey{
				name:      stripped[penult+1 : last],
				namespace: namespace,
			}

			// The method keeps any parameter suffix from the raw name.
			method := stripped[last+1:] + raw[len(stripped):]

			add(key, m.NewTest(method, raw))

			continue
		}

		mi, ok := resolveBare(raw, stripped, index, seen)
		if !ok {
			add(classKey{}, m.NewTest(raw, raw))

			continue
		}

		key := classKey{name: mi.Class, namespace: mi.Namespace}

		full := mi.Class + "." + raw
		if mi.Namespace != "" {
			full = mi.Namespace + "." + full
		}

		add(key, m.NewTest(raw, full))
	}

	classes := make([]m.Class, 0, len(order))

	for _, key := range order {
		classes = append(classes, m.Class{
			Name:      key.name,
			Namespace: key.namespace,
			Tests:     grouped[key],
		})
	}

	for i := range classes {
		tests := classes[i].Tests
		sort.SliceStable(tests, func(a, b int) bool {
			return strings.ToLower(tests[a].Name) < strings.ToLower(tests[b].Name)
		})
	}

	sort.SliceStable(classes, func(a, b int) bool {
		return strings.ToLower(classes[a].FullName()) < strings.ToLower(classes[b].FullName())
	})

	return classes
}

// resolveBare looks a name up in the source index, falling back from the raw
// name to its parameterless form to its final dotted segment. Duplicate
// occurrences of the same lookup key rotate through the matching
// declarations.
func resolveBare(raw, stripped string, index *SourceIndex, seen map[string]int) (MethodInfo, bool) {
	if index == nil {
		return MethodInfo{}, false
	}

	candidates := []string{raw}

	if stripped != raw {
		candidates = append(candidates, stripped)
	}

	if last := strings.LastIndexByte(stripped, '.'); last >= 0 {
		candidates = append(candidates, stripped[last+1:])
	}

	for _, key := range candidates {
		hits := index.Lookup(key)
		if len(hits) == 0 {
			continue
		}

		pick := hits[seen[key]%len(hits)]
		seen[key]++

		return pick, true
	}

	return MethodInfo{}, false
}
