package scan

import (
	"github.com/tdkit/tdselect/internal/extract"
)

// resolveTestCall returns the main methods a test call site is credited to.
// Candidates are narrowed by name and arity, then by receiver class when the
// receiver's type or class is known. If several remain, those whose class
// the test file mentions are preferred; if that still leaves several, or
// none of them is mentioned, all remaining candidates are credited.
func (idx *index) resolveTestCall(tf *extract.TestFacts, site extract.CallSite) []*methodEntry {
	var candidates []*methodEntry
	for _, m := range idx.byName[site.Name] {
		if m.facts.AcceptsArgs(site.Args) {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	if owner := idx.testReceiverClass(tf, site); owner != "" {
		candidates = idx.ownedBy(candidates, owner)
	} else if site.ReceiverType != "" {
		// typed receiver outside the project, e.g. a List
		return nil
	}
	if len(candidates) <= 1 {
		return candidates
	}

	var mentioned []*methodEntry
	for _, m := range candidates {
		if m.class != nil && tf.References(m.class.facts.Name) {
			mentioned = append(mentioned, m)
		}
	}
	if len(mentioned) > 0 {
		return mentioned
	}
	return candidates
}

// testReceiverClass returns the qualified name of the project class a test
// call is made on, or "" when unknown.
func (idx *index) testReceiverClass(tf *extract.TestFacts, site extract.CallSite) string {
	view := &extract.FileFacts{Path: tf.Path, Package: tf.Package, Imports: tf.Imports}
	typeName := site.ReceiverType
	if typeName == "" && site.Kind == extract.ReceiverIdentifier {
		// Calculator.add(...) on a class name
		typeName = site.Receiver
	}
	if c := idx.lookupClass(typeName, view, nil); c != nil {
		return c.facts.QualifiedName
	}
	return ""
}

// ownedBy keeps candidates declared by the class or one of its
// superclasses, since a call on a subclass reaches inherited methods.
func (idx *index) ownedBy(candidates []*methodEntry, qualified string) []*methodEntry {
	c := idx.byQualified[qualified]
	if c == nil {
		return nil
	}
	owners := map[*classEntry]bool{c: true}
	for _, s := range idx.superChain(c) {
		owners[s] = true
	}
	var out []*methodEntry
	for _, m := range candidates {
		if owners[m.class] {
			out = append(out, m)
		}
	}
	return out
}
