package extract

import (
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/tdkit/tdselect/internal/parser"
	sitter "github.com/smacker/go-tree-sitter"
)

// IsTestPath reports whether a slash-separated path relative to the project
// root names a Java test source: anything under src/test/, a test/tests
// directory outside src/main/, or a file named *Test.java, *Tests.java,
// Test*.java or *IT.java. Under src/main/ a test or tests directory is a
// package name.
func IsTestPath(relPath string) bool {
	p := filepath.ToSlash(relPath)
	if strings.HasPrefix(p, "src/test/") || strings.Contains(p, "/src/test/") {
		return true
	}
	parts := strings.Split(p, "/")
	mainSource := strings.HasPrefix(p, "src/main/") || strings.Contains(p, "/src/main/")
	if !mainSource {
		for _, dir := range parts[:len(parts)-1] {
			if dir == "test" || dir == "tests" {
				return true
			}
		}
	}

	base := strings.TrimSuffix(parts[len(parts)-1], filepath.Ext(p))
	if strings.HasSuffix(base, "Test") || strings.HasSuffix(base, "Tests") || strings.HasSuffix(base, "IT") {
		return true
	}
	if rest, ok := strings.CutPrefix(base, "Test"); ok && rest != "" && unicode.IsUpper([]rune(rest)[0]) {
		return true
	}
	return false
}

// testFacts walks a whole test file. Receivers resolve against every
// variable declared anywhere in the file. Unqualified calls to methods the
// test file declares itself are dropped: they are test helpers.
func (e *javaExtractor) testFacts(relPath string) *TestFacts {
	facts := &TestFacts{
		Path:    relPath,
		Package: e.pkg,
		Imports: e.imports(),
	}
	root := e.result.Root
	if root == nil {
		return facts
	}

	sc := &scope{locals: make(map[string]string)}
	e.collectLocals(root, sc.locals)

	declared := make(map[string]bool)
	for _, m := range e.result.FindNodesByType("method_declaration") {
		if nameNode := m.ChildByFieldName("name"); nameNode != nil {
			declared[e.nodeText(nameNode)] = true
		}
	}

	for _, site := range e.callSites(root, sc) {
		if site.Kind != ReceiverIdentifier && site.Kind != ReceiverOther && declared[site.Name] {
			continue
		}
		facts.Calls = append(facts.Calls, site)
	}

	facts.TypeRefs = e.typeRefs(root, facts)
	return facts
}

// typeRefs collects the simple type names a test file mentions: type
// identifiers, imported names and capitalized call receivers.
func (e *javaExtractor) typeRefs(root *sitter.Node, facts *TestFacts) []string {
	seen := make(map[string]bool)
	parser.Walk(root, func(n *sitter.Node) bool {
		if n.Type() == "type_identifier" {
			seen[e.nodeText(n)] = true
		}
		return true
	})
	for _, imp := range facts.Imports {
		seen[imp[strings.LastIndex(imp, ".")+1:]] = true
	}
	for _, site := range facts.Calls {
		if site.Kind != ReceiverIdentifier || site.Receiver == "" {
			continue
		}
		if r := []rune(site.Receiver)[0]; unicode.IsUpper(r) {
			seen[site.Receiver] = true
		}
	}

	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}
