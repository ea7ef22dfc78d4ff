package pathrewrite

import "testing"

func TestRewriteFirstIncludeWins(t *testing.T) {
	e, err := New([]Rule{
		{Pattern: "readme.txt", Template: "README.TXT"},
		{Pattern: "*.txt", Template: "OTHER-{0}"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok, err := e.Rewrite("readme.txt")
	if err != nil || !ok {
		t.Fatalf("Rewrite: ok=%v err=%v", ok, err)
	}
	if got != "README.TXT" {
		t.Errorf("got %q, want README.TXT", got)
	}
}

func TestExcludeDropsMatch(t *testing.T) {
	// The Exclude comes after the catch-all Include: an Include placed
	// after an Exclude would re-claim the path (see
	// TestLaterIncludeReclaimsAfterEarlierExclude).
	e, err := New([]Rule{
		{Pattern: "**", Template: "{0}"},
		{Pattern: "**/*.pdb", Exclude: true},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, ok, err := e.Rewrite("bin/debug/game.pdb")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if ok {
		t.Fatal("expected .pdb to be excluded")
	}
	got, ok, err := e.Rewrite("bin/release/default.xbe")
	if err != nil || !ok {
		t.Fatalf("Rewrite: ok=%v err=%v", ok, err)
	}
	if got != "bin/release/default.xbe" {
		t.Errorf("got %q", got)
	}
}

func TestLaterIncludeReclaimsAfterEarlierExclude(t *testing.T) {
	e, err := New([]Rule{
		{Pattern: "bin", Template: "/"},
		{Pattern: "assets/**", Template: "/assets/{1}"},
		{Pattern: "sound/excluded.*", Exclude: true},
		{Pattern: "sound/excluded.c", Template: "/c/excluded"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, ok, err := e.Rewrite("sound/excluded.b")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if ok {
		t.Fatal("expected sound/excluded.b to be dropped")
	}
	got, ok, err := e.Rewrite("sound/excluded.c")
	if err != nil || !ok {
		t.Fatalf("Rewrite: ok=%v err=%v", ok, err)
	}
	if got != "/c/excluded" {
		t.Errorf("got %q, want /c/excluded", got)
	}
}

func TestNoMatchDrops(t *testing.T) {
	e, err := New([]Rule{{Pattern: "*.xbe", Template: "{0}"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, ok, err := e.Rewrite("readme.txt")
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}
	if ok {
		t.Fatal("expected unmatched path to be dropped")
	}
}

func TestBraceAlternationAndCaptures(t *testing.T) {
	e, err := New([]Rule{
		{Pattern: "assets/{en,fr,de}/*.dat", Template: "LANG_{1}/{2}.DAT"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok, err := e.Rewrite("assets/fr/menu.dat")
	if err != nil || !ok {
		t.Fatalf("Rewrite: ok=%v err=%v", ok, err)
	}
	if got != "LANG_fr/menu.DAT" {
		t.Errorf("got %q", got)
	}
}

func TestDoubleStarCrossesSegments(t *testing.T) {
	e, err := New([]Rule{{Pattern: "src/**/*.c", Template: "OUT/{2}.C"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, ok, err := e.Rewrite("src/a/b/c/file.c")
	if err != nil || !ok {
		t.Fatalf("Rewrite: ok=%v err=%v", ok, err)
	}
	if got != "OUT/file.C" {
		t.Errorf("got %q", got)
	}
}

func TestRewriteAllCollisionIsFatal(t *testing.T) {
	e, err := New([]Rule{{Pattern: "*.txt", Template: "SAME.TXT"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = e.RewriteAll([]string{"a.txt", "b.txt"})
	if err == nil {
		t.Fatal("expected colliding mapping error")
	}
}

func TestRewriteAllOrdersByInput(t *testing.T) {
	e, err := New([]Rule{{Pattern: "*", Template: "{0}"}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	mapped, err := e.RewriteAll([]string{"b", "a"})
	if err != nil {
		t.Fatalf("RewriteAll: %v", err)
	}
	if len(mapped) != 2 || mapped[0].HostPath != "b" || mapped[1].HostPath != "a" {
		t.Errorf("unexpected order: %+v", mapped)
	}
}
