package tuto_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"tuto-go/internal/config"

	"tuto-go/internal/testutil"
	"tuto-go/internal/tuto"
)

func TestCount(t *testing.T) {
	tests := []struct {
		name      string
		files     map[string]string
		maxPoints *float64
		want      string
	}{
		{
			name:  "single deduction",
			files: map[string]string{"1234567_Jane/Main.java": "class Main {} // Tutor: -2.5\n"},
			want:  "Jane,22.5\n",
		},
		{
			name: "deductions summed across nested files",
			files: map[string]string{
				"1234567_Jane/Main.java":     "// Tutor: -2\n// Tutor: -1,5\n",
				"1234567_Jane/src/Util.java": "// Tutor: -3\n",
			},
			want: "Jane,18.5\n",
		},
		{
			name:  "clamped at zero",
			files: map[string]string{"7654321_Bob/Main.java": "// Tutor: -20\n// Tutor: -10\n"},
			want:  "Bob,0\n",
		},
		{
			name:  "non-source files are not scanned",
			files: map[string]string{"1234567_Jane/notes.txt": "// Tutor: -5\n"},
			want:  "Jane,25\n",
		},
		{
			name:      "explicit max points",
			files:     map[string]string{"1234567_Jane/main.py": "# nothing\n// Tutor: -1\n"},
			maxPoints: points(10),
			want:      "Jane,9\n",
		},
		{
			name:      "explicit zero max points",
			files:     map[string]string{"1234567_Jane/Main.java": "// Tutor: -1\n"},
			maxPoints: points(0),
			want:      "Jane,0\n",
		},
		{
			name: "minified sources are scanned",
			files: map[string]string{
				"1234567_Jane/Main.java":  "// Tutor: -2.5\n",
				"1234567_Jane/lib.min.js": strings.Repeat("x", 2<<20) + " // Tutor: -1\n",
				"7654321_Bob/Main.java":   "// Tutor: -1\n",
			},
			want: "Jane,21.5\nBob,24\n",
		},
		{
			name: "folders without a name are skipped",
			files: map[string]string{
				"1234567/Main.java":     "// Tutor: -1\n",
				"7654321_Bob/Main.java": "",
			},
			want: "Bob,25\n",
		},
		{
			name: "sorted by folder",
			files: map[string]string{
				"2_Zoe/a.c":   "// Tutor: -1\n",
				"1_Adam/a.go": "",
			},
			want: "Adam,25\nZoe,24\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			testutil.WriteTree(t, root, tt.files)
			target := filepath.Join(t.TempDir(), "out", "nested")

			svc := defaultService(t)
			_, resultPath, err := svc.Count(tuto.CountOptions{Root: root, TargetDir: target, MaxPoints: tt.maxPoints})
			if err != nil {
				t.Fatalf("Count() error = %v", err)
			}

			if resultPath != filepath.Join(target, tuto.ResultFileName) {
				t.Errorf("result path = %q", resultPath)
			}
			testutil.AssertFileContent(t, resultPath, tt.want)
		})
	}
}

func points(v float64) *float64 { return &v }

func TestCount_SignedBonusCappedAtMax(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"1234567_Jane/Main.java": "// Tutor: -1\n// Tutor: 3\n",
		"7654321_Bob/Main.java":  "// Tutor: -4\n// Tutor: 1\n",
	})

	cfg := config.Default(t.TempDir())
	cfg.Grading.SignedDeductions = true
	svc := newTestService(t, cfg)

	_, resultPath, err := svc.Count(tuto.CountOptions{Root: root, TargetDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	testutil.AssertFileContent(t, resultPath, "Jane,25\nBob,22\n")
}

func TestCount_ReturnsTallies(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"1234567_Jane/Main.java": "// Tutor: -2.5\n",
	})

	svc := defaultService(t)
	tallies, _, err := svc.Count(tuto.CountOptions{Root: root, TargetDir: t.TempDir()})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}

	if len(tallies) != 1 {
		t.Fatalf("len(tallies) = %d, want 1", len(tallies))
	}
	if tallies[0].Name != "Jane" || tallies[0].Points != 22.5 {
		t.Errorf("tally = %+v, want {Jane 22.5}", tallies[0])
	}
}

func TestCount_NotADirectory(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"file.txt": "x"})

	svc := defaultService(t)
	_, _, err := svc.Count(tuto.CountOptions{Root: filepath.Join(root, "file.txt"), TargetDir: root})
	if !errors.Is(err, tuto.ErrNotDirectory) {
		t.Errorf("Count() error = %v, want ErrNotDirectory", err)
	}
}

func TestCount_EmptyRoot(t *testing.T) {
	root := t.TempDir()
	target := t.TempDir()

	svc := defaultService(t)
	tallies, resultPath, err := svc.Count(tuto.CountOptions{Root: root, TargetDir: target})
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if len(tallies) != 0 {
		t.Errorf("tallies = %v, want none", tallies)
	}
	testutil.AssertFileContent(t, resultPath, "")
}
