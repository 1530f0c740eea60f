package model

import (
	"sort"
)

// Builder accumulates methods, call edges and test references during a
// scan. It is not safe for concurrent use; the scanner feeds it from a
// single goroutine after the parallel parse has joined.
type Builder struct {
	root      string
	methods   map[string]*MethodInfo
	calls     map[string]map[string]struct{}
	testFiles map[string]map[string]struct{}
	mainFiles []string
	tests     []string
	frozen    bool
}

// NewBuilder returns an empty Builder for the project rooted at root.
func NewBuilder(root string) *Builder {
	return &Builder{
		root:      root,
		methods:   make(map[string]*MethodInfo),
		calls:     make(map[string]map[string]struct{}),
		testFiles: make(map[string]map[string]struct{}),
	}
}

// AddMethod inserts a method. Derived fields (Calls, Callers, Recursive,
// TestReferences, TestFiles) on m are ignored; they are owned by the
// builder. A second method with the same id yields a DuplicateMethodError.
func (b *Builder) AddMethod(m MethodInfo) error {
	if b.frozen {
		return &FrozenError{Op: "AddMethod"}
	}
	if prev, ok := b.methods[m.ID]; ok {
		return &DuplicateMethodError{ID: m.ID, First: prev.File, Second: m.File}
	}
	c := m.clone()
	c.Calls = nil
	c.Callers = nil
	c.Recursive = false
	c.TestReferences = 0
	c.TestFiles = 0
	b.methods[m.ID] = &c
	return nil
}

// AddCall records that from references to. A self-reference marks the
// method Recursive instead of adding an edge. Edges touching unknown ids
// are dropped and reported as false.
func (b *Builder) AddCall(from, to string) bool {
	if b.frozen {
		return false
	}
	caller, ok := b.methods[from]
	if !ok {
		return false
	}
	if _, ok := b.methods[to]; !ok {
		return false
	}
	if from == to {
		caller.Recursive = true
		return true
	}
	set := b.calls[from]
	if set == nil {
		set = make(map[string]struct{})
		b.calls[from] = set
	}
	set[to] = struct{}{}
	return true
}

// AddTestReference credits one occurrence of id in the given test file.
func (b *Builder) AddTestReference(id, testFile string) bool {
	if b.frozen {
		return false
	}
	m, ok := b.methods[id]
	if !ok {
		return false
	}
	m.TestReferences++
	files := b.testFiles[id]
	if files == nil {
		files = make(map[string]struct{})
		b.testFiles[id] = files
	}
	files[testFile] = struct{}{}
	return true
}

// SetFiles records the main and test source files of the project.
func (b *Builder) SetFiles(mainFiles, testFiles []string) {
	b.mainFiles = sortedCopy(mainFiles)
	b.tests = sortedCopy(testFiles)
}

// Freeze finalizes the index. Callers is computed here as the transpose of
// Calls, so the two can never disagree. The builder is unusable afterwards.
func (b *Builder) Freeze() *Project {
	b.frozen = true

	callers := make(map[string][]string, len(b.methods))
	for from, set := range b.calls {
		for to := range set {
			callers[to] = append(callers[to], from)
		}
	}

	ids := make([]string, 0, len(b.methods))
	for id, m := range b.methods {
		ids = append(ids, id)
		m.Calls = setToSorted(b.calls[id])
		m.Callers = sortedCopy(callers[id])
		m.TestFiles = len(b.testFiles[id])
	}
	sort.Strings(ids)

	p := &Project{
		root:      b.root,
		methods:   b.methods,
		ids:       ids,
		mainFiles: b.mainFiles,
		testFiles: b.tests,
	}
	b.methods = nil
	b.calls = nil
	b.testFiles = nil
	return p
}

// Project is the frozen Method Index of one analyzed source tree.
type Project struct {
	root      string
	methods   map[string]*MethodInfo
	ids       []string
	mainFiles []string
	testFiles []string
}

// Root returns the project root the index was built from.
func (p *Project) Root() string {
	return p.root
}

// Len returns the number of indexed methods.
func (p *Project) Len() int {
	return len(p.ids)
}

// IDs returns all method ids in ascending order.
func (p *Project) IDs() []string {
	return sortedCopy(p.ids)
}

// Method returns a copy of the method with the id.
func (p *Project) Method(id string) (MethodInfo, bool) {
	m, ok := p.methods[id]
	if !ok {
		return MethodInfo{}, false
	}
	return m.clone(), true
}

// Methods returns copies of all methods ordered by id.
func (p *Project) Methods() []MethodInfo {
	out := make([]MethodInfo, 0, len(p.ids))
	for _, id := range p.ids {
		out = append(out, p.methods[id].clone())
	}
	return out
}

// Calls returns the sorted callees of id.
func (p *Project) Calls(id string) []string {
	if m, ok := p.methods[id]; ok {
		return cloneStrings(m.Calls)
	}
	return nil
}

// Callers returns the sorted callers of id.
func (p *Project) Callers(id string) []string {
	if m, ok := p.methods[id]; ok {
		return cloneStrings(m.Callers)
	}
	return nil
}

// EdgeCount returns the number of call edges in the graph.
func (p *Project) EdgeCount() int {
	n := 0
	for _, m := range p.methods {
		n += len(m.Calls)
	}
	return n
}

// MainFiles returns the main source files, relative to the root.
func (p *Project) MainFiles() []string {
	return cloneStrings(p.mainFiles)
}

// TestFiles returns the test source files, relative to the root.
func (p *Project) TestFiles() []string {
	return cloneStrings(p.testFiles)
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedCopy(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := cloneStrings(s)
	sort.Strings(out)
	return out
}
