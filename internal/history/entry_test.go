package history

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestFingerprintOf_Deterministic(t *testing.T) {
	a := FingerprintOf([]byte("hello"))
	b := FingerprintOf([]byte("hello"))
	if a != b {
		t.Error("identical payloads produced different fingerprints")
	}
	if a == FingerprintOf([]byte("hello!")) {
		t.Error("different payloads produced the same fingerprint")
	}

	// sha256("hello")
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if a.String() != want {
		t.Errorf("String() = %s, want %s", a.String(), want)
	}
	if a.Short() != want[:12] {
		t.Errorf("Short() = %s, want %s", a.Short(), want[:12])
	}
}

func TestParseFingerprint(t *testing.T) {
	fp := FingerprintOf([]byte("round trip"))

	got, err := ParseFingerprint(fp.String())
	if err != nil {
		t.Fatalf("ParseFingerprint() error = %v", err)
	}
	if got != fp {
		t.Error("ParseFingerprint(String()) did not round trip")
	}

	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"md5 length", "5d41402abc4b2a76b9719d911017c592"},
		{"not hex", strings.Repeat("zz", 32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseFingerprint(tt.input); !errors.Is(err, ErrBadFingerprint) {
				t.Errorf("error = %v, want ErrBadFingerprint", err)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{KindText, KindImage} {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("video"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(video) error = %v, want ErrUnknownKind", err)
	}
}

func TestRestoreEntry_KeepsGivenFingerprint(t *testing.T) {
	stored := FingerprintOf([]byte("something else"))
	e, err := RestoreEntry(stored, KindText, []byte("content"), time.Unix(0, 0))
	if err != nil {
		t.Fatalf("RestoreEntry() error = %v", err)
	}
	if e.Fingerprint() != stored {
		t.Error("RestoreEntry recomputed the fingerprint")
	}
}

func TestEntry_TextOnImage(t *testing.T) {
	e, err := NewEntry(KindImage, []byte{1, 2, 3}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if e.Text() != "" {
		t.Errorf("Text() on image = %q, want empty", e.Text())
	}
	if e.Size() != 3 {
		t.Errorf("Size() = %d, want 3", e.Size())
	}
}

func TestEntry_Preview(t *testing.T) {
	mk := func(kind Kind, payload string) Entry {
		e, err := NewEntry(kind, []byte(payload), time.Now())
		if err != nil {
			t.Fatal(err)
		}
		return e
	}

	tests := []struct {
		name   string
		entry  Entry
		maxLen int
		want   string
	}{
		{"simple", mk(KindText, "hello"), 50, "hello"},
		{"first non-empty line", mk(KindText, "\n\n  first line  \nsecond"), 50, "first line"},
		{"control chars", mk(KindText, "a\tb\x07c"), 50, "a b c"},
		{"truncated", mk(KindText, strings.Repeat("x", 60)), 10, "xxxxxxx..."},
		{"empty", mk(KindText, ""), 50, "[empty]"},
		{"blank", mk(KindText, "  \n\t "), 50, "[blank]"},
		{"image", mk(KindImage, strings.Repeat("p", 2048)), 50, "[image 2.0 KiB]"},
		{"small image", mk(KindImage, "abc"), 50, "[image 3 B]"},
		{"multibyte", mk(KindText, "héllo wörld"), 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Preview(tt.maxLen); got != tt.want {
				t.Errorf("Preview(%d) = %q, want %q", tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is long", 7, "this..."},
		{"abc", 2, ".."},
		{"  padded  ", 10, "padded"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}
