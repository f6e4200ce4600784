package discover

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func layout(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeFile(t, dir, "src/com/acme/A.java", "class A {}")
	writeFile(t, dir, "src/com/acme/B.java", "class B {}")
	writeFile(t, dir, "src/com/acme/gen/G.java", "class G {}")
	writeFile(t, dir, "README.md", "hello")
	writeFile(t, dir, ".hidden/H.java", "class H {}")
	writeFile(t, dir, "build/classes/X.java", "class X {}")
	return dir
}

func TestFiles_Walk(t *testing.T) {
	t.Parallel()
	dir := layout(t)

	paths, err := Files(dir, WithoutGit())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"src/com/acme/A.java",
		"src/com/acme/B.java",
		"src/com/acme/gen/G.java",
	}, paths)
}

func TestFiles_WalkHonorsGitignore(t *testing.T) {
	t.Parallel()
	dir := layout(t)
	writeFile(t, dir, ".gitignore", "gen/\nB.java\n")

	paths, err := Files(dir, WithoutGit())
	require.NoError(t, err)
	assert.Equal(t, []string{"src/com/acme/A.java"}, paths)
}

func TestFiles_Exclude(t *testing.T) {
	t.Parallel()
	dir := layout(t)

	paths, err := Files(dir, WithoutGit(), WithExclude("**/gen/**", "*B.java"))
	require.NoError(t, err)
	assert.Equal(t, []string{"src/com/acme/A.java"}, paths)
}

func TestFiles_NotARepositoryFallsBackToWalk(t *testing.T) {
	t.Parallel()
	dir := layout(t)

	paths, err := Files(dir)
	require.NoError(t, err)
	assert.Len(t, paths, 3)
}

func TestFiles_Git(t *testing.T) {
	t.Parallel()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	dir := layout(t)
	writeFile(t, dir, ".gitignore", "gen/\n")

	cmd := exec.Command("git", "init", "-q")
	cmd.Dir = dir
	require.NoError(t, cmd.Run())

	paths, err := Files(dir)
	require.NoError(t, err)
	// Untracked files are listed; ignored ones and non-Java files are not.
	assert.Equal(t, []string{
		".hidden/H.java",
		"build/classes/X.java",
		"src/com/acme/A.java",
		"src/com/acme/B.java",
	}, paths)
}

func TestIsSource(t *testing.T) {
	t.Parallel()
	assert.True(t, IsSource("a/B.java"))
	assert.True(t, IsSource("B.JAVA"))
	assert.False(t, IsSource("B.class"))
	assert.False(t, IsSource("java"))
}
