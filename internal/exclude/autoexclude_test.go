package exclude

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	p := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
}

func mkdir(t *testing.T, root string, rel string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, rel), 0o755))
}

func TestDetectAutoExcludes_Empty(t *testing.T) {
	result := DetectAutoExcludes(t.TempDir())
	assert.Empty(t, result.Directories)
}

func TestDetectAutoExcludes_Maven(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, tmpDir, "pom.xml")
	mkdir(t, tmpDir, "target/classes")

	result := DetectAutoExcludes(tmpDir)

	assert.Equal(t, []string{"target"}, result.Directories)
	assert.NotEmpty(t, result.Reasons["target"])
	assert.True(t, result.Contains("target/classes"))
	assert.False(t, result.Contains("src"))
}

func TestDetectAutoExcludes_MavenNoTarget(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, tmpDir, "pom.xml")

	assert.Empty(t, DetectAutoExcludes(tmpDir).Directories)
}

func TestDetectAutoExcludes_NestedGradle(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, tmpDir, "settings.gradle")
	touch(t, tmpDir, "app/build.gradle.kts")
	mkdir(t, tmpDir, "app/build/generated")
	touch(t, tmpDir, "lib/build.gradle")
	mkdir(t, tmpDir, "lib/src/main/java")

	result := DetectAutoExcludes(tmpDir)

	assert.Equal(t, []string{"app/build"}, result.Directories)
	assert.Contains(t, result.Reasons["app/build"], "build.gradle.kts")
}

func TestDetectAutoExcludes_IntelliJ(t *testing.T) {
	tmpDir := t.TempDir()
	touch(t, tmpDir, "demo.iml")
	mkdir(t, tmpDir, "out/production")

	assert.Equal(t, []string{"out"}, DetectAutoExcludes(tmpDir).Directories)
}

func TestDetectAutoExcludes_SkipsVCS(t *testing.T) {
	tmpDir := t.TempDir()
	// a pom.xml inside .git must not be considered
	touch(t, tmpDir, ".git/pom.xml")
	mkdir(t, tmpDir, ".git/target")

	assert.Empty(t, DetectAutoExcludes(tmpDir).Directories)
	assert.True(t, SkipDir(".git"))
	assert.True(t, SkipDir("node_modules"))
	assert.False(t, SkipDir("src"))
}

func TestMatcher(t *testing.T) {
	m, err := NewMatcher([]string{
		"**/generated/**",
		"*Dto.java",
		"legacy/",
		"src/main/java/ca/example/Old*.java",
	})
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"src/main/java/generated/Foo.java", true},
		{"generated/Foo.java", true},
		{"src/main/java/ca/example/UserDto.java", true},
		{"legacy", true},
		{"legacy/src/A.java", true},
		{"src/legacy/A.java", false},
		{"src/main/java/ca/example/OldBank.java", true},
		{"src/main/java/ca/example/Bank.java", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, m.Match(tt.path))
		})
	}
}

func TestMatcherEmptyAndInvalid(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.True(t, m.Empty())
	assert.False(t, m.Match("anything.java"))

	_, err = NewMatcher([]string{"src/[bad"})
	assert.Error(t, err)
}
