package mapfile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ItayH27/tanks-game-simulation/pkg/battle"
)

func TestRead_Valid(t *testing.T) {
	src := "Arena\nMaxSteps = 100\nNumShells=5\nRows= 3\nCols =4\n1  #\n @\n   2\n"

	m, warns, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(warns) != 0 {
		t.Errorf("expected no warnings, got %v", warns)
	}
	if m.Name != "Arena" || m.MaxSteps != 100 || m.NumShells != 5 || m.Rows != 3 || m.Cols != 4 {
		t.Errorf("unexpected header %+v", m)
	}
	want := []string{"1  #", " @  ", "   2"}
	for y, row := range want {
		if got := m.Grid.Row(y); got != row {
			t.Errorf("row %d: expected %q, got %q", y, row, got)
		}
	}
	if got := m.TankCounts(); got != [2]int{1, 1} {
		t.Errorf("expected tank counts {1,1}, got %v", got)
	}
}

func TestRead_MissingRowsArePadded(t *testing.T) {
	m, _, err := Read(strings.NewReader("M\nMaxSteps=1\nNumShells=0\nRows=3\nCols=2\n12\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := m.Grid.Rows(); got[1] != "  " || got[2] != "  " {
		t.Errorf("expected padded rows, got %q", got)
	}
}

func TestRead_ExtrasRecovered(t *testing.T) {
	src := "ExtraRowsColsTest\nMaxSteps = 10\nNumShells = 2\nRows = 2\nCols = 3\n1  xx\n  2\nExtraRow1\nExtraRow2\n"

	m, warns, err := Read(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := m.Grid.Row(0); got != "1  " {
		t.Errorf("expected truncated row, got %q", got)
	}

	var buf bytes.Buffer
	if err := WriteWarnings(&buf, warns); err != nil {
		t.Fatalf("WriteWarnings: %v", err)
	}
	want := "Error recovered from: Extra 2 columns at row 0 ignored.\n" +
		"Error recovered from: Extra 2 rows beyond declared height ignored.\n"
	if buf.String() != want {
		t.Errorf("expected warnings:\n%s\ngot:\n%s", want, buf.String())
	}
}

func TestRead_UnknownCharacter(t *testing.T) {
	m, warns, err := Read(strings.NewReader("M\nMaxSteps=1\nNumShells=0\nRows=1\nCols=3\n1x2\n"))
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got := m.Grid.Row(0); got != "1 2" {
		t.Errorf("expected unknown cell emptied, got %q", got)
	}
	if len(warns) != 1 {
		t.Errorf("expected 1 warning, got %v", warns)
	}
}

func TestRead_Malformed(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty", ""},
		{"missing MaxSteps", "M\n"},
		{"bad key", "M\nSteps=1\nNumShells=0\nRows=1\nCols=1\n"},
		{"bad number", "M\nMaxSteps=abc\nNumShells=0\nRows=1\nCols=1\n"},
		{"zero rows", "M\nMaxSteps=1\nNumShells=0\nRows=0\nCols=1\n"},
		{"negative shells", "M\nMaxSteps=1\nNumShells=-1\nRows=1\nCols=1\n"},
		{"missing Cols", "M\nMaxSteps=1\nNumShells=0\nRows=1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.src))
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("expected ErrMalformed, got %v", err)
			}
		})
	}
}

func TestLoad_SetsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.txt")
	if err := os.WriteFile(path, []byte("S\nMaxSteps=1\nNumShells=0\nRows=1\nCols=2\n12\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	m, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.File != "small.txt" {
		t.Errorf("expected File small.txt, got %q", m.File)
	}

	g := m.Game(battleSide("a"), battleSide("b"))
	if g.Width != 2 || g.Height != 1 || g.Player1.Name != "a" {
		t.Errorf("unexpected game %+v", g)
	}

	if _, _, err := Load(filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func battleSide(name string) battle.Side { return battle.Side{Name: name} }

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{filepath.Join(dir, "a.txt"), filepath.Join(dir, "b.txt")}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected %v, got %v", want, got)
	}

	if _, err := List(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing folder")
	}
}
