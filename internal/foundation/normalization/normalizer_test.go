package normalization

import (
	"testing"
)

type testEnum string

const (
	testAlpha testEnum = "alpha"
	testBeta  testEnum = "beta"
)

func newTestNormalizer() *Normalizer[testEnum] {
	return NewNormalizer(map[string]testEnum{
		"alpha": testAlpha,
		"a":     testAlpha,
		"Beta":  testBeta,
	}, testAlpha)
}

func TestNormalizer_Normalize(t *testing.T) {
	n := newTestNormalizer()

	tests := []struct {
		name     string
		input    string
		expected testEnum
	}{
		{"exact match", "alpha", testAlpha},
		{"alias", "A", testAlpha},
		{"case insensitive key", "beta", testBeta},
		{"with spaces", "  BETA ", testBeta},
		{"unknown falls back", "gamma", testAlpha},
		{"empty falls back", "", testAlpha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizer_Parse(t *testing.T) {
	n := newTestNormalizer()

	got, err := n.Parse(" Beta")
	if err != nil || got != testBeta {
		t.Fatalf("Parse(Beta) = %v, %v", got, err)
	}

	got, err = n.Parse("")
	if err != nil || got != testAlpha {
		t.Fatalf("Parse(empty) = %v, %v; want default", got, err)
	}

	if _, err := n.Parse("gamma"); err == nil {
		t.Fatal("expected error for unknown value")
	}
}

func TestNormalizer_KeysAndValid(t *testing.T) {
	n := newTestNormalizer()

	keys := n.Keys()
	want := []string{"a", "alpha", "beta"}
	if len(keys) != len(want) {
		t.Fatalf("Keys() = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", keys, want)
		}
	}

	if !n.Valid(testBeta) {
		t.Error("expected beta to be valid")
	}
	if n.Valid(testEnum("gamma")) {
		t.Error("expected gamma to be invalid")
	}
}
