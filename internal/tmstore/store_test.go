package tmstore

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	tmxerrors "github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/FocuswithJustin/tmxparser/core/sqlite"
	"github.com/FocuswithJustin/tmxparser/core/tmx"
)

const memory = `<?xml version="1.0" encoding="UTF-8"?>
<tmx version="1.4">
  <header srclang="en-US" datatype="plaintext"/>
  <body>
    <tu tuid="greeting" segtype="sentence">
      <prop type="x-segment-id">0</prop>
      <prop type="x-context">home</prop>
      <tuv xml:lang="en-US"><seg>Hello <ph type="x-name">{0}</ph>!</seg></tuv>
      <tuv xml:lang="de-DE"><seg>Hallo <ph type="x-name">{0}</ph>!</seg></tuv>
    </tu>
    <tu tuid="bold" segtype="block">
      <tuv xml:lang="en-US"><seg><bpt i="1">&lt;b&gt;</bpt>Go<ept i="1">&lt;/b&gt;</ept></seg></tuv>
      <tuv><seg></seg></tuv>
    </tu>
    <tu tuid="greeting" segtype="sentence">
      <prop type="x-segment-id">0</prop>
      <prop type="x-context">home</prop>
      <tuv xml:lang="en-US"><seg>Hello <ph type="x-name">{0}</ph>!</seg></tuv>
      <tuv xml:lang="de-DE"><seg>Hallo <ph type="x-name">{0}</ph>!</seg></tuv>
    </tu>
  </body>
</tmx>`

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "tm.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func parsed(t *testing.T) []*tmx.Unit {
	t.Helper()
	units, err := tmx.LoadString(memory).All()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return units
}

func TestImportDeduplicates(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	rec, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx")
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if rec.ID == "" || rec.Source != "memory.tmx" {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Units != 2 || rec.Skipped != 1 {
		t.Errorf("units=%d skipped=%d, want 2/1", rec.Units, rec.Skipped)
	}

	again, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx")
	if err != nil {
		t.Fatalf("second Import failed: %v", err)
	}
	if again.Units != 0 || again.Skipped != 3 {
		t.Errorf("re-import units=%d skipped=%d, want 0/3", again.Units, again.Skipped)
	}
	if again.ID == rec.ID {
		t.Error("imports should get distinct IDs")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want 2", n)
	}

	imports, err := s.Imports(ctx)
	if err != nil {
		t.Fatalf("Imports failed: %v", err)
	}
	if len(imports) != 2 || imports[0].ID != rec.ID || imports[1].ID != again.ID {
		t.Fatalf("unexpected imports %+v", imports)
	}
	if imports[0].Units != 2 || imports[0].Skipped != 1 {
		t.Errorf("stored record = %+v", imports[0])
	}
	if !imports[0].StartedAt.Equal(rec.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", imports[0].StartedAt, rec.StartedAt)
	}
}

func TestRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	if _, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	units := parsed(t)
	for _, want := range units[:2] {
		got, err := s.Get(ctx, want.TUID)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", want.TUID, err)
		}
		if len(got) != 1 {
			t.Fatalf("Get(%q) returned %d units, want 1", want.TUID, len(got))
		}
		if !got[0].Equal(want) {
			t.Errorf("Get(%q) = %+v, want %+v", want.TUID, got[0], want)
		}
	}

	bold, _ := s.Get(ctx, "bold")
	if bold[0].Variants[1].Locale != nil {
		t.Error("absent locale should stay absent")
	}
}

func TestPut(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	start, length := 6, 3
	en := "en"
	u := tmx.NewUnit("cursor", "")
	u.Variants = []*tmx.Variant{{
		Locale: &en,
		Elements: []tmx.Element{
			tmx.Text("Hello "),
			&tmx.Placeholder{Type: "x", Text: "{0}", Start: &start, Length: &length},
		},
	}}

	added, err := s.Put(ctx, u)
	if err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if !added {
		t.Error("first Put should add the unit")
	}
	if added, _ := s.Put(ctx, u.Copy()); added {
		t.Error("Put of an equal unit should be skipped")
	}

	changed := u.Copy()
	changed.Variants[0].Elements[0] = tmx.Text("Hi ")
	if added, err := s.Put(ctx, changed); err != nil || !added {
		t.Fatalf("Put of a changed unit: added=%v err=%v", added, err)
	}

	got, err := s.Get(ctx, "cursor")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Get returned %d units, want 2", len(got))
	}
	if !got[0].Equal(u) || !got[1].Equal(changed) {
		t.Errorf("round trip mismatch: %+v", got)
	}
}

func TestGetMissing(t *testing.T) {
	s := openStore(t)
	_, err := s.Get(context.Background(), "nope")
	if !errors.Is(err, tmxerrors.ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestImportRollsBackOnParseError(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	broken := `<tmx><body><tu tuid="1"><tuv xml:lang="en"><seg>a</seg></tuv></tu><tu tuid="2"></body></tmx>`
	if _, err := s.Import(ctx, tmx.LoadString(broken), "broken.tmx"); err == nil {
		t.Fatal("Import of malformed input should fail")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Count = %d after a failed import, want 0", n)
	}
	imports, err := s.Imports(ctx)
	if err != nil {
		t.Fatalf("Imports failed: %v", err)
	}
	if len(imports) != 0 {
		t.Errorf("failed import left %d records", len(imports))
	}
}

func TestImportHonorsCancellation(t *testing.T) {
	s := openStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx"); !errors.Is(err, context.Canceled) {
		t.Errorf("Import error = %v, want context.Canceled", err)
	}
}

func TestStorePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tm.db")

	s, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if _, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	s.Close()

	s, err = Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	if n, _ := s.Count(ctx); n != 2 {
		t.Errorf("Count after reopen = %d, want 2", n)
	}
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s, err := Open(ctx, sqlite.MemoryPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	if _, err := s.Import(ctx, tmx.LoadString(memory), "memory.tmx"); err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	got, err := s.Get(ctx, "greeting")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got[0].Equal(parsed(t)[0]) {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}
