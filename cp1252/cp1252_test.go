package cp1252

import "testing"

func TestCompareCaseInsensitive(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"DEFAULT.XBE", "default.xbe", 0},
		{"abc", "abd", -1},
		{"abd", "abc", 1},
		{"AB", "ABC", -1},
		{"ABC", "AB", 1},
	}
	for _, c := range cases {
		got := Compare([]byte(c.a), []byte(c.b))
		if sign(got) != sign(c.want) {
			t.Errorf("Compare(%q, %q) = %d, want sign %d", c.a, c.b, got, c.want)
		}
	}
}

func TestEqualFoldsCase(t *testing.T) {
	if !Equal([]byte("Game.XBE"), []byte("GAME.xbe")) {
		t.Fatal("expected fold-equal names to compare equal")
	}
	if Equal([]byte("Game.XBE"), []byte("Game2.XBE")) {
		t.Fatal("expected different names to compare unequal")
	}
}

func TestFoldExtendedLatin(t *testing.T) {
	if FoldByte(0xE0) != 0xC0 { // à -> À
		t.Errorf("fold(0xE0) = %#x, want 0xC0", FoldByte(0xE0))
	}
	if FoldByte(0x9A) != 0x8A { // š -> Š
		t.Errorf("fold(0x9A) = %#x, want 0x8A", FoldByte(0x9A))
	}
	if FoldByte(0xDF) != 0xDF { // ß has no uppercase fold
		t.Errorf("fold(0xDF) = %#x, want 0xDF", FoldByte(0xDF))
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	name := "CAFÉ.TXT"
	enc, err := Encode(name)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	dec, err := Decode(enc)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if dec != name {
		t.Errorf("round trip: got %q, want %q", dec, name)
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
