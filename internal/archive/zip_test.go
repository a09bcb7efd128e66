package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"

	"tuto-go/internal/testutil"
)

func TestZipArchiver_IsArchive(t *testing.T) {
	a := NewZipArchiver(".zip", nil)
	tests := []struct {
		name string
		want bool
	}{
		{"hw1.zip", true},
		{"HW1.ZIP", true},
		{"zip.java", false},
		{"notes.txt", false},
	}
	for _, tt := range tests {
		if got := a.IsArchive(tt.name); got != tt.want {
			t.Errorf("IsArchive(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestZipArchiver_Extract(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "hw1.zip")
	testutil.WriteZip(t, archivePath, map[string]string{
		"Main.java":     "class Main {}",
		"src/":          "",
		"src/Util.java": "class Util {}",
		"a/b/c.txt":     "deep",
	})

	target := filepath.Join(dir, "hw1")
	if err := NewZipArchiver(".zip", nil).Extract(archivePath, target); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	testutil.AssertFileContent(t, filepath.Join(target, "Main.java"), "class Main {}")
	testutil.AssertFileContent(t, filepath.Join(target, "src", "Util.java"), "class Util {}")
	testutil.AssertFileContent(t, filepath.Join(target, "a", "b", "c.txt"), "deep")
}

func TestZipArchiver_Extract_Errors(t *testing.T) {
	t.Run("missing archive", func(t *testing.T) {
		dir := t.TempDir()
		err := NewZipArchiver(".zip", nil).Extract(filepath.Join(dir, "missing.zip"), filepath.Join(dir, "out"))
		if err == nil {
			t.Error("Extract() expected error for missing archive")
		}
	})

	t.Run("corrupt archive", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "broken.zip")
		if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
			t.Fatalf("writing fixture: %v", err)
		}
		if err := NewZipArchiver(".zip", nil).Extract(path, filepath.Join(dir, "out")); err == nil {
			t.Error("Extract() expected error for corrupt archive")
		}
	})

	t.Run("entry escaping target", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "evil.zip")
		testutil.WriteZip(t, path, map[string]string{"../escape.txt": "gotcha"})

		if err := NewZipArchiver(".zip", nil).Extract(path, filepath.Join(dir, "out")); err == nil {
			t.Error("Extract() expected error for entry outside target")
		}
		testutil.AssertNotExists(t, filepath.Join(dir, "escape.txt"))
	})
}

func TestZipArchiver_Create(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"student/Main.java":     "main",
		"student/notes.txt":     "notes",
		"student/sub/extra.txt": "extra",
	})

	dest := filepath.Join(root, "student", "feedback.zip")
	paths := []string{
		filepath.Join(root, "student", "Main.java"),
		filepath.Join(root, "student", "notes.txt"),
		filepath.Join(root, "student", "sub"),
	}

	n, err := NewZipArchiver(".zip", nil).Create(dest, filepath.Join(root, "student"), paths)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Create() = %d files, want 3", n)
	}

	got := testutil.ReadZip(t, dest)
	want := map[string]string{"Main.java": "main", "notes.txt": "notes", "sub/extra.txt": "extra"}
	if len(got) != len(want) {
		t.Fatalf("entries = %v, want %v", got, want)
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("entry %s = %q, want %q", name, got[name], content)
		}
	}

	r, err := zip.OpenReader(dest)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.Method != zip.Deflate {
			t.Errorf("entry %s method = %d, want deflate", f.Name, f.Method)
		}
		if f.Mode().Perm() != 0644 {
			t.Errorf("entry %s mode = %v, want 0644", f.Name, f.Mode().Perm())
		}
	}
}

func TestZipArchiver_Create_SkipsDestination(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"a.txt": "a"})

	dest := filepath.Join(root, "bundle.zip")
	n, err := NewZipArchiver(".zip", nil).Create(dest, root, []string{root})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Create() = %d files, want 1", n)
	}
	if _, ok := testutil.ReadZip(t, dest)["bundle.zip"]; ok {
		t.Error("archive should not contain itself")
	}
}

func TestZipArchiver_RoundTrip(t *testing.T) {
	src := t.TempDir()
	testutil.WriteTree(t, src, map[string]string{"x/y/z.txt": "z", "top.txt": "top"})

	dir := t.TempDir()
	dest := filepath.Join(dir, "rt.zip")
	a := NewZipArchiver(".zip", nil)
	if _, err := a.Create(dest, src, []string{src}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	out := filepath.Join(dir, "rt")
	if err := a.Extract(dest, out); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	testutil.AssertFileContent(t, filepath.Join(out, "x", "y", "z.txt"), "z")
	testutil.AssertFileContent(t, filepath.Join(out, "top.txt"), "top")
}
