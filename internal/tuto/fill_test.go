package tuto_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tuto-go/internal/config"
	"tuto-go/internal/ident"
	"tuto-go/internal/model"
	"tuto-go/internal/table"
	"tuto-go/internal/testutil"
	"tuto-go/internal/tuto"
)

const grades = `ID,Vollständiger Name,ID-Nummer,E-Mail-Adresse,Status,Bewertung,Bestwertung,Bewertung kann geändert werden,Zuletzt geändert (Abgabe),Zuletzt geändert (Bewertung),Feedback als Kommentar
Teilnehmer/in1234567,Jane Doe,12345678,K12345678@students.jku.at,Zur Bewertung abgegeben,,"24,00",Ja,"Mittwoch, 13. März 2024, 10:15",-,
Teilnehmer/in7654321,Bob Roe,87654321,K87654321@students.jku.at,Zur Bewertung abgegeben,,"24,00",Ja,"Mittwoch, 13. März 2024, 15:10",-,
Teilnehmer/inXYZ,Broken Row,1,x@students.jku.at,Kein Versuch,,"24,00",Ja,-,-,
`

// readTable loads a result table with the default codecs.
func readTable(t *testing.T, path string) []*model.Record {
	t.Helper()
	ids, err := ident.NewPatternExtractor(config.DefaultIDPattern, config.DefaultNamePattern)
	if err != nil {
		t.Fatalf("NewPatternExtractor() error = %v", err)
	}
	records, err := table.NewStore(config.DefaultIDPrefix, ids).Read(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return records
}

func TestFill(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "grades.csv")
	testutil.WriteTree(t, dir, map[string]string{
		"grades.csv":                                                    grades,
		"submissions/Jane Doe_1234567_assignsubmission_file_/Main.java": "// Tutor: -3.5\n",
		"submissions/Jane Doe_1234567_assignsubmission_file_/notes.md":  "// Tutor: -10\n",
		"submissions/no-id/Main.java":                                   "// Tutor: -1\n",
	})

	svc := defaultService(t)
	resultPath, n, err := svc.Fill(tuto.FillOptions{TablePath: tablePath, Root: filepath.Join(dir, "submissions")})
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	if resultPath != filepath.Join(dir, "grades_filled.csv") {
		t.Errorf("result path = %q, want grades_filled.csv next to the input", resultPath)
	}
	if n != 1 {
		t.Errorf("records written = %d, want 1", n)
	}

	rating := 20.5
	want := []*model.Record{{
		ID:                   "1234567",
		Name:                 "Jane Doe",
		IDNumber:             "12345678",
		Email:                "K12345678@students.jku.at",
		Status:               "Zur Bewertung abgegeben",
		Rating:               &rating,
		BestRating:           24,
		RatingChangeable:     "Ja",
		LastChangeSubmission: "Mittwoch, 13. März 2024, 10:15",
		LastChangeRating:     "-",
		Feedback:             config.DefaultFeedbackMessage,
	}}
	if diff := cmp.Diff(want, readTable(t, resultPath)); diff != "" {
		t.Errorf("result table mismatch (-want +got):\n%s", diff)
	}
}

func TestFill_ClampsAndLastFolderWins(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "grades.csv")
	testutil.WriteTree(t, dir, map[string]string{
		"grades.csv":            grades,
		"subs/a_7654321/A.java": "// Tutor: -1\n",
		"subs/b_7654321/B.java": "// Tutor: -30\n",
	})

	svc := defaultService(t)
	resultPath, _, err := svc.Fill(tuto.FillOptions{TablePath: tablePath, Root: filepath.Join(dir, "subs")})
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}

	records := readTable(t, resultPath)
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].ID != "7654321" || records[0].Rating == nil || *records[0].Rating != 0 {
		t.Errorf("record = %+v, want 7654321 rated 0", records[0])
	}
}

func TestFill_XLSXResult(t *testing.T) {
	dir := t.TempDir()
	tablePath := filepath.Join(dir, "grades.csv")
	resultPath := filepath.Join(dir, "out", "graded.xlsx")
	testutil.WriteTree(t, dir, map[string]string{
		"grades.csv":            grades,
		"subs/1234567_Jane/a.c": "// Tutor: -4\n",
	})
	if err := os.MkdirAll(filepath.Dir(resultPath), 0755); err != nil {
		t.Fatal(err)
	}

	svc := defaultService(t)
	got, _, err := svc.Fill(tuto.FillOptions{TablePath: tablePath, Root: filepath.Join(dir, "subs"), ResultPath: resultPath})
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if got != resultPath {
		t.Errorf("result path = %q, want %q", got, resultPath)
	}

	records := readTable(t, resultPath)
	if len(records) != 1 || *records[0].Rating != 20 {
		t.Errorf("records = %+v, want one record rated 20", records)
	}
}

func TestFill_InvalidTable(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{
		"grades.txt":       "x",
		"folder.csv/x.txt": "x",
		"grades.csv":       grades,
	})

	tests := []struct {
		name   string
		table  string
		result string
	}{
		{"missing", filepath.Join(dir, "missing.csv"), ""},
		{"directory", filepath.Join(dir, "folder.csv"), ""},
		{"unsupported extension", filepath.Join(dir, "grades.txt"), ""},
		{"unsupported result extension", filepath.Join(dir, "grades.csv"), filepath.Join(dir, "out.json")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := defaultService(t)
			_, _, err := svc.Fill(tuto.FillOptions{TablePath: tt.table, Root: dir, ResultPath: tt.result})
			if !errors.Is(err, tuto.ErrInvalidTable) {
				t.Errorf("Fill() error = %v, want ErrInvalidTable", err)
			}
		})
	}
}

func TestFill_RootNotADirectory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"grades.csv": grades})

	svc := defaultService(t)
	_, _, err := svc.Fill(tuto.FillOptions{TablePath: filepath.Join(dir, "grades.csv"), Root: filepath.Join(dir, "grades.csv")})
	if !errors.Is(err, tuto.ErrNotDirectory) {
		t.Errorf("Fill() error = %v, want ErrNotDirectory", err)
	}
}
