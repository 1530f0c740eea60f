// Package exclude decides which directories and files a Java scan skips:
// build output detected from build-tool marker files, tool and VCS
// directories, and user-configured glob patterns.
package exclude

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// alwaysSkip lists directory names never worth descending into.
var alwaysSkip = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	".idea":        true,
	".vscode":      true,
	".gradle":      true,
	".mvn":         true,
	"node_modules": true,
}

// AutoExcludeResult contains the directories to exclude and why.
type AutoExcludeResult struct {
	// Directories to exclude (slash-separated, relative to project root)
	Directories []string
	// Reasons maps each directory to why it was excluded
	Reasons map[string]string
}

// Contains reports whether relDir is excluded, either directly or through an
// excluded ancestor.
func (r *AutoExcludeResult) Contains(relDir string) bool {
	relDir = filepath.ToSlash(relDir)
	for _, d := range r.Directories {
		if relDir == d || strings.HasPrefix(relDir, d+"/") {
			return true
		}
	}
	return false
}

func (r *AutoExcludeResult) add(dir, reason string) {
	dir = filepath.ToSlash(dir)
	if _, ok := r.Reasons[dir]; ok {
		return
	}
	r.Directories = append(r.Directories, dir)
	r.Reasons[dir] = reason
}

// DetectAutoExcludes scans the project root for build output directories.
// Only marker-file evidence is used: a target/ next to pom.xml, a build/ next
// to a Gradle build script, an out/ next to an IntelliJ module. Nested
// modules are detected at any depth.
func DetectAutoExcludes(projectRoot string) *AutoExcludeResult {
	result := &AutoExcludeResult{
		Directories: []string{},
		Reasons:     make(map[string]string),
	}

	_ = filepath.WalkDir(projectRoot, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // Skip directories we can't read
		}
		if path == projectRoot {
			return nil
		}

		relPath, err := filepath.Rel(projectRoot, path)
		if err != nil {
			return nil
		}

		if d.IsDir() {
			if alwaysSkip[d.Name()] || result.Contains(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		relDir := filepath.Dir(relPath)
		sibling := func(name string) string {
			if relDir == "." {
				return name
			}
			return filepath.Join(relDir, name)
		}

		name := d.Name()
		switch {
		case name == "pom.xml":
			if dir := sibling("target"); dirExists(filepath.Join(projectRoot, dir)) {
				result.add(dir, "Maven build output (pom.xml detected)")
			}
		case name == "build.gradle" || name == "build.gradle.kts" ||
			name == "settings.gradle" || name == "settings.gradle.kts":
			if dir := sibling("build"); dirExists(filepath.Join(projectRoot, dir)) {
				result.add(dir, "Gradle build output ("+name+" detected)")
			}
		case strings.HasSuffix(name, ".iml"):
			if dir := sibling("out"); dirExists(filepath.Join(projectRoot, dir)) {
				result.add(dir, "IntelliJ build output ("+name+" detected)")
			}
		case name == "build.xml":
			for _, out := range []string{"bin", "dist"} {
				if dir := sibling(out); dirExists(filepath.Join(projectRoot, dir)) {
					result.add(dir, "Ant build output (build.xml detected)")
				}
			}
		}

		return nil
	})

	sort.Strings(result.Directories)
	return result
}

// SkipDir reports whether a directory name is always skipped.
func SkipDir(name string) bool {
	return alwaysSkip[name]
}

// dirExists checks if a directory exists.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
