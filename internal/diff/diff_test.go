package diff

import "testing"

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected int
	}{
		{"identical strings", "kitten", "kitten", 0},
		{"both empty", "", "", 0},
		{"insert into empty", "", "abc", 3},
		{"delete to empty", "abc", "", 3},
		{"classic kitten/sitting", "kitten", "sitting", 3},
		{"single substitution", "cat", "car", 1},
		{"single insertion", "cat", "cart", 1},
		{"single deletion", "cart", "cat", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); got != tt.expected {
				t.Errorf("Distance(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}

func TestDiffShortCircuitsOnEquality(t *testing.T) {
	if got := Diff("same", "same"); got != "same" {
		t.Errorf("expected unmarked string back for equal inputs, got %q", got)
	}
}

func TestDiffAnnotatesInsertion(t *testing.T) {
	got := Diff("ab", "aXb")
	want := "a{{X}}b"
	if got != want {
		t.Errorf("Diff(ab, aXb) = %q, want %q", got, want)
	}
}

func TestDiffAnnotatesDeletion(t *testing.T) {
	got := Diff("aXb", "ab")
	want := "a[[X]]b"
	if got != want {
		t.Errorf("Diff(aXb, ab) = %q, want %q", got, want)
	}
}

func TestDiffAnnotatesModification(t *testing.T) {
	got := Diff("cat", "car")
	want := "ca{{r}}[[t]]"
	if got != want {
		t.Errorf("Diff(cat, car) = %q, want %q", got, want)
	}
}

func TestDiffMatchesKittenSittingWorkedExample(t *testing.T) {
	got := Diff("kitten", "sitting")
	want := "{{s}}[[k]]itt{{i}}[[e]]n{{g}}"
	if got != want {
		t.Errorf("Diff(kitten, sitting) = %q, want %q", got, want)
	}
}

func TestDiffOnEmptyOriginal(t *testing.T) {
	got := Diff("", "new")
	want := "{{new}}"
	if got != want {
		t.Errorf("Diff(\"\", new) = %q, want %q", got, want)
	}
}

func TestDiffOnEmptyTarget(t *testing.T) {
	got := Diff("old", "")
	want := "[[old]]"
	if got != want {
		t.Errorf("Diff(old, \"\") = %q, want %q", got, want)
	}
}
