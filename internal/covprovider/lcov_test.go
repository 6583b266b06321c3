package covprovider

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLCOVProviderRecords(t *testing.T) {
	content := `SF:src/lib.rs
FN:3,add
FN:8,subtract
DA:3,1
DA:4,1
DA:5,0
DA:8,0
DA:9,0
end_of_record
`
	path := filepath.Join(t.TempDir(), "lcov.info")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p := &LCOVProvider{Path: path}
	records, err := p.Records()
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	var add *struct{ hit, total int }
	for _, r := range records {
		if r.FunctionName == "add" {
			add = &struct{ hit, total int }{r.HitLines, r.TotalLines}
		}
	}
	if add == nil {
		t.Fatal("no record for add")
	}
	if add.hit != 2 || add.total != 3 {
		t.Errorf("add coverage = %d/%d, want 2/3", add.hit, add.total)
	}
}

func TestLCOVProviderMultipleFiles(t *testing.T) {
	content := `SF:src/a.rs
FN:1,f
DA:1,5
end_of_record
SF:src/b.rs
FN:1,g
DA:1,0
end_of_record
`
	path := filepath.Join(t.TempDir(), "lcov.info")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p := &LCOVProvider{Path: path}
	records, err := p.Records()
	if err != nil {
		t.Fatalf("Records() error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].File != "src/a.rs" || records[1].File != "src/b.rs" {
		t.Errorf("unexpected file assignment: %+v", records)
	}
}
