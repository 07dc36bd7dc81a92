package domain

import "strings"

// MethodInfo records one method declaration found in source: the method name
// plus the class and namespace that declare it. Every method is recorded, not
// just attributed tests - the enumerator's output is the authority on which
// methods are tests; source parsing exists only to recover qualification.
type MethodInfo struct {
	Method    string
	Class     string
	Namespace string
}

// FullName returns the dotted namespace.class.method qualification.
func (mi MethodInfo) FullName() string {
	if mi.Namespace == "" {
		return mi.Class + "." + mi.Method
	}

	return mi.Namespace + "." + mi.Class + "." + mi.Method
}

const (
	scopeNamespace = iota
	scopeClass
	scopeOther
)

type sourceScope struct {
	kind int
	name string
}

// ParseSourceStructure extracts every method declaration from a C# source
// file, tracking block-scoped, nested, and file-scoped namespaces and nested
// classes. It is a structural scanner, not a parser: string literals and
// comments are blanked first, then declarations are classified from the
// statement text preceding each brace or semicolon.
func ParseSourceStructure(content string) []MethodInfo {
	clean := blankLiteralsAndComments(content)

	var (
		methods       []MethodInfo
		stack         []sourceScope
		stmt          strings.Builder
		fileNamespace string
	)

	currentNamespace := func() string {
		parts := make([]string, 0, 4)
		if fileNamespace != "" {
			parts = append(parts, fileNamespace)
		}

		for _, scope := range stack {
			if scope.kind == scopeNamespace {
				parts = append(parts, scope.name)
			}
		}

		return strings.Join(parts, ".")
	}

	currentClass := func() (string, bool) {
		if len(stack) == 0 {
			return "", false
		}

		top := stack[len(stack)-1]

		return top.name, top.kind == scopeClass
	}

	record := func(method string) {
		class, ok := currentClass()
		if !ok {
			return
		}

		methods = append(methods, MethodInfo{
			Method:    method,
			Class:     class,
			Namespace: currentNamespace(),
		})
	}

	for i := 0; i < len(clean); i++ {
		switch clean[i] {
		case '{':
			text := stmt.String()
			stmt.Reset()

			if name, ok := namespaceDecl(text); ok {
				stack = append(stack, sourceScope{kind: scopeNamespace, name: name})
				continue
			}

			if name, ok := classDecl(text); ok {
				stack = append(stack, sourceScope{kind: scopeClass, name: name})
				continue
			}

			if name, ok := methodDecl(text); ok {
				record(name)
			}

			stack = append(stack, sourceScope{kind: scopeOther})
		case '}':
			stmt.Reset()

			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		case ';':
			text := stmt.String()
			stmt.Reset()

			// File-scoped namespace applies to the remainder of the file.
			if name, ok := namespaceDecl(text); ok && len(stack) == 0 {
				fileNamespace = joinNamespace(fileNamespace, name)
				continue
			}

			// Expression-bodied and abstract methods end at a semicolon.
			if name, ok := methodDecl(text); ok {
				record(name)
			}
		default:
			stmt.WriteByte(clean[i])
		}
	}

	return methods
}

func joinNamespace(outer, inner string) string {
	if outer == "" {
		return inner
	}

	return outer + "." + inner
}

// stripAttributes removes leading [Attribute(...)] groups from a declaration.
func stripAttributes(text string) string {
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "[") {
		end := strings.IndexByte(text, ']')
		if end < 0 {
			return ""
		}

		text = strings.TrimSpace(text[end+1:])
	}

	return text
}

func namespaceDecl(text string) (string, bool) {
	fields := strings.Fields(stripAttributes(text))
	if len(fields) < 2 || fields[0] != "namespace" {
		return "", false
	}

	return fields[1], true
}

func classDecl(text string) (string, bool) {
	fields := strings.Fields(stripAttributes(text))
	for i, field := range fields {
		if field != "class" || i+1 >= len(fields) {
			continue
		}

		name := fields[i+1]
		if angle := strings.IndexByte(name, '<'); angle >= 0 {
			name = name[:angle]
		}

		name = strings.TrimSuffix(name, ":")
		if isIdentifier(name) {
			return name, true
		}
	}

	return "", false
}

// methodModifiers are declaration modifiers stripped before deciding whether
// a return type remains.
var methodModifiers = map[string]bool{
	"public": true, "private": true, "protected": true, "internal": true,
	"static": true, "async": true, "virtual": true, "override": true,
	"sealed": true, "abstract": true, "partial": true, "extern": true,
	"unsafe": true, "new": true,
}

// controlKeywords are statement keywords that rule out a method declaration.
var controlKeywords = map[string]bool{
	"if": true, "else": true, "for": true, "foreach": true, "while": true,
	"do": true, "switch": true, "catch": true, "using": true, "lock": true,
	"fixed": true, "return": true, "throw": true, "yield": true,
	"get": true, "set": true, "add": true, "remove": true,
	"delegate": true, "operator": true,
}

// methodDecl reports the method name when text is a method declaration: a
// modifier/type sequence followed by an identifier and a parameter list, with
// no assignment before the parameter list (which would make it a field
// initializer).
func methodDecl(text string) (string, bool) {
	text = stripAttributes(text)

	paren := strings.IndexByte(text, '(')
	if paren < 0 {
		return "", false
	}

	head := text[:paren]
	if strings.ContainsAny(head, "=") {
		return "", false
	}

	fields := strings.Fields(head)
	if len(fields) < 2 {
		return "", false
	}

	name := fields[len(fields)-1]
	if angle := strings.IndexByte(name, '<'); angle >= 0 {
		name = name[:angle]
	}

	if !isIdentifier(name) || controlKeywords[name] {
		return "", false
	}

	rest := fields[:len(fields)-1]

	typeTokens := 0

	for _, field := range rest {
		if controlKeywords[field] {
			return "", false
		}

		if !methodModifiers[field] {
			typeTokens++
		}
	}

	// No return type left means a constructor or an invocation.
	if typeTokens == 0 {
		return "", false
	}

	return name, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}

	return true
}

// blankLiteralsAndComments replaces comments and string/char literal contents
// with spaces so brace tracking and declaration matching see only structure.
func blankLiteralsAndComments(src string) string {
	b := []byte(src)
	n := len(b)

	blank := func(i int) {
		if b[i] != '\n' {
			b[i] = ' '
		}
	}

	for i := 0; i < n; {
		switch {
		case b[i] == '/' && i+1 < n && b[i+1] == '/':
			for i < n && b[i] != '\n' {
				b[i] = ' '
				i++
			}
		case b[i] == '/' && i+1 < n && b[i+1] == '*':
			b[i], b[i+1] = ' ', ' '
			i += 2

			for i < n {
				if b[i] == '*' && i+1 < n && b[i+1] == '/' {
					b[i], b[i+1] = ' ', ' '
					i += 2

					break
				}

				blank(i)
				i++
			}
		case b[i] == '@' && i+1 < n && b[i+1] == '"':
			b[i], b[i+1] = ' ', ' '
			i += 2

			for i < n {
				if b[i] == '"' {
					if i+1 < n && b[i+1] == '"' {
						b[i], b[i+1] = ' ', ' '
						i += 2

						continue
					}

					b[i] = ' '
					i++

					break
				}

				blank(i)
				i++
			}
		case b[i] == '"':
			b[i] = ' '
			i++

			for i < n {
				if b[i] == '\\' && i+1 < n {
					blank(i)
					blank(i + 1)

					i += 2

					continue
				}

				if b[i] == '"' {
					b[i] = ' '
					i++

					break
				}

				blank(i)
				i++
			}
		case b[i] == '\'':
			b[i] = ' '
			i++

			for i < n {
				if b[i] == '\\' && i+1 < n {
					blank(i)
					blank(i + 1)

					i += 2

					continue
				}

				if b[i] == '\'' {
					b[i] = ' '
					i++

					break
				}

				blank(i)
				i++
			}
		default:
			i++
		}
	}

	return string(b)
}
