package analyzer

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/ntwalibas/avalon-sub000/internal/astio"
	"github.com/ntwalibas/avalon-sub000/internal/modules"
	"golang.org/x/tools/txtar"
)

// TestGolden checks every archive under testdata. The last program of an
// archive is the root; its `want` section is either "ok" or a fragment of
// the expected diagnostic.
func TestGolden(t *testing.T) {
	files, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no golden archives found")
	}
	for _, file := range files {
		t.Run(strings.TrimSuffix(filepath.Base(file), ".txtar"), func(t *testing.T) {
			ar, err := txtar.ParseFile(file)
			if err != nil {
				t.Fatal(err)
			}
			want := ""
			for _, f := range ar.Files {
				if f.Name == "want" {
					want = strings.TrimSpace(string(f.Data))
				}
			}
			if want == "" {
				t.Fatal("archive has no want section")
			}

			programs, derr := astio.DecodeArchive(ar)
			if derr != nil {
				t.Fatalf("decode: %v", derr)
			}
			table := modules.NewTable()
			for _, p := range programs {
				if err := table.Add(p); err != nil {
					t.Fatal(err)
				}
			}
			_, err = NewChecker(nil, nil).CheckTable(table, programs[len(programs)-1].Name)

			if want == "ok" {
				if err != nil {
					t.Errorf("expected success, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error containing %q", want)
			}
			if !strings.Contains(err.Error(), want) {
				t.Errorf("expected an error containing %q, got: %v", want, err)
			}
		})
	}
}
