package scan

import (
	"strings"

	"github.com/tdkit/tdselect/internal/extract"
)

// classEntry is one declared type and the methods it declares.
type classEntry struct {
	facts   extract.ClassFacts
	file    *extract.FileFacts
	methods []*methodEntry
	outer   *classEntry
	// nested maps member type simple names to their entries.
	nested map[string]*classEntry

	superResolved bool
	super         *classEntry
}

// methodEntry is one indexed method with its owner.
type methodEntry struct {
	id    string
	facts *extract.MethodFacts
	file  *extract.FileFacts
	class *classEntry
}

// index is the project-wide lookup structure pass 2 resolves against.
type index struct {
	// methods in file order, then declaration order
	methods     []*methodEntry
	byQualified map[string]*classEntry
	bySimple    map[string][]*classEntry
	byName      map[string][]*methodEntry
}

func newIndex(files []*extract.FileFacts) *index {
	idx := &index{
		byQualified: make(map[string]*classEntry),
		bySimple:    make(map[string][]*classEntry),
		byName:      make(map[string][]*methodEntry),
	}
	for _, f := range files {
		for i := range f.Classes {
			c := &classEntry{facts: f.Classes[i], file: f, nested: make(map[string]*classEntry)}
			// A class declared twice keeps its first declaration here; the
			// builder reports the duplicate methods.
			if _, dup := idx.byQualified[c.facts.QualifiedName]; dup {
				continue
			}
			idx.byQualified[c.facts.QualifiedName] = c
			idx.bySimple[c.facts.Name] = append(idx.bySimple[c.facts.Name], c)
		}
	}
	for _, c := range idx.byQualified {
		if c.facts.Outer == "" {
			continue
		}
		if outer := idx.byQualified[c.facts.Outer]; outer != nil {
			c.outer = outer
			outer.nested[c.facts.Name] = c
		}
	}
	for _, f := range files {
		for i := range f.Methods {
			mf := &f.Methods[i]
			m := &methodEntry{id: mf.ID(), facts: mf, file: f, class: idx.byQualified[mf.Class]}
			idx.methods = append(idx.methods, m)
			if m.class != nil {
				m.class.methods = append(m.class.methods, m)
			}
			idx.byName[mf.Name] = append(idx.byName[mf.Name], m)
		}
	}
	return idx
}

// lookupClass resolves a simple type name as seen from a file and,
// optionally, an enclosing class: member types of the class and its outer
// classes, then the file's package, then single-type imports, then a unique
// simple name across the project.
func (idx *index) lookupClass(simple string, file *extract.FileFacts, from *classEntry) *classEntry {
	if simple == "" {
		return nil
	}
	for c := from; c != nil; c = c.outer {
		if c.facts.Name == simple {
			return c
		}
		if n := c.nested[simple]; n != nil {
			return n
		}
	}
	if file != nil {
		q := simple
		if file.Package != "" {
			q = file.Package + "." + simple
		}
		if c := idx.byQualified[q]; c != nil {
			return c
		}
		for _, imp := range file.Imports {
			if strings.HasSuffix(imp, "."+simple) {
				if c := idx.byQualified[imp]; c != nil {
					return c
				}
			}
		}
	}
	if candidates := idx.bySimple[simple]; len(candidates) == 1 {
		return candidates[0]
	}
	return nil
}

// superclass returns the resolved superclass of c, or nil.
func (idx *index) superclass(c *classEntry) *classEntry {
	if !c.superResolved {
		c.superResolved = true
		if s := idx.lookupClass(c.facts.Superclass, c.file, c.outer); s != c {
			c.super = s
		}
	}
	return c.super
}

// superChain returns c's superclasses, nearest first. Cycles terminate.
func (idx *index) superChain(c *classEntry) []*classEntry {
	var chain []*classEntry
	seen := map[*classEntry]bool{c: true}
	for s := idx.superclass(c); s != nil && !seen[s]; s = idx.superclass(s) {
		seen[s] = true
		chain = append(chain, s)
	}
	return chain
}

// matching returns the methods of c that site can target.
func matching(c *classEntry, site extract.CallSite) []*methodEntry {
	var out []*methodEntry
	for _, m := range c.methods {
		if m.facts.Name == site.Name && m.facts.AcceptsArgs(site.Args) {
			out = append(out, m)
		}
	}
	return out
}

// firstLevel searches classes in order and stops at the first class with
// any match. It returns the single match, or nil when the first matching
// class is ambiguous or nothing matched.
func firstLevel(classes []*classEntry, site extract.CallSite) *methodEntry {
	for _, c := range classes {
		if found := matching(c, site); len(found) > 0 {
			if len(found) == 1 {
				return found[0]
			}
			return nil
		}
	}
	return nil
}

// inClassOrSupers resolves site against c and its superclass chain.
func (idx *index) inClassOrSupers(c *classEntry, site extract.CallSite) *methodEntry {
	if c == nil {
		return nil
	}
	return firstLevel(append([]*classEntry{c}, idx.superChain(c)...), site)
}

// resolveCall maps a main call site to a single method, or nil when the
// target is unknown or ambiguous.
func (idx *index) resolveCall(caller *methodEntry, site extract.CallSite) *methodEntry {
	c := caller.class
	switch site.Kind {
	case extract.ReceiverNone:
		if c == nil {
			return nil
		}
		var order []*classEntry
		for o := c; o != nil; o = o.outer {
			order = append(order, o)
		}
		order = append(order, idx.superChain(c)...)
		return firstLevel(order, site)

	case extract.ReceiverThis:
		return idx.inClassOrSupers(c, site)

	case extract.ReceiverSuper:
		if c == nil {
			return nil
		}
		return firstLevel(idx.superChain(c), site)

	case extract.ReceiverIdentifier:
		if site.ReceiverType != "" {
			return idx.inClassOrSupers(idx.lookupClass(site.ReceiverType, caller.file, c), site)
		}
		if target := idx.lookupClass(site.Receiver, caller.file, c); target != nil {
			return idx.inClassOrSupers(target, site)
		}
		return idx.uniqueByName(site)

	default:
		if site.ReceiverType != "" {
			return idx.inClassOrSupers(idx.lookupClass(site.ReceiverType, caller.file, c), site)
		}
		return idx.uniqueByName(site)
	}
}

// uniqueByName returns the only method in the project with the site's
// name and a compatible arity.
func (idx *index) uniqueByName(site extract.CallSite) *methodEntry {
	var found *methodEntry
	for _, m := range idx.byName[site.Name] {
		if !m.facts.AcceptsArgs(site.Args) {
			continue
		}
		if found != nil {
			return nil
		}
		found = m
	}
	return found
}
