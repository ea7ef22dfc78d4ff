package pathrewrite

import "testing"

func TestCompileGlobCaptureCount(t *testing.T) {
	cases := []struct {
		pattern  string
		captures int
	}{
		{"readme.txt", 0},
		{"*.xbe", 1},
		{"**/*.dat", 2},
		{"{a,b,c}/*.txt", 2},
		{"file?.bin", 1},
	}
	for _, c := range cases {
		_, n, err := compileGlob(c.pattern)
		if err != nil {
			t.Fatalf("compileGlob(%q): %v", c.pattern, err)
		}
		if n != c.captures {
			t.Errorf("compileGlob(%q) captures = %d, want %d", c.pattern, n, c.captures)
		}
	}
}

func TestCompileGlobMatchesExpectedStrings(t *testing.T) {
	re, _, err := compileGlob("assets/*.dat")
	if err != nil {
		t.Fatalf("compileGlob: %v", err)
	}
	if re.FindStringSubmatch("assets/level1.dat") == nil {
		t.Error("expected match")
	}
	if re.FindStringSubmatch("assets/sub/level1.dat") != nil {
		t.Error("single star should not cross a path segment")
	}
}
