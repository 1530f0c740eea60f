package scan

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/tdkit/tdselect/internal/exclude"
	"github.com/tdkit/tdselect/internal/extract"
	"github.com/tdkit/tdselect/internal/parser"
)

// sourceFiles is the outcome of walking the project root.
type sourceFiles struct {
	main         []string
	test         []string
	autoExcluded []string
}

// discover walks root and splits Java files into main and test sources.
// Paths are slash-separated, relative to root and sorted.
func discover(root string, matcher *exclude.Matcher) (*sourceFiles, error) {
	auto := exclude.DetectAutoExcludes(root)
	files := &sourceFiles{autoExcluded: auto.Directories}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if exclude.SkipDir(d.Name()) || auto.Contains(rel) || matcher.Match(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !parser.IsJavaFile(rel) || matcher.Match(rel) {
			return nil
		}
		if extract.IsTestPath(rel) {
			files.test = append(files.test, rel)
		} else {
			files.main = append(files.main, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files.main)
	sort.Strings(files.test)
	return files, nil
}
