package level

import "testing"

func TestOrdering(t *testing.T) {
	levels := AllLevels()
	for i := 1; i < len(levels); i++ {
		if levels[i-1] >= levels[i] {
			t.Errorf("AllLevels() not strictly increasing at index %d: %v", i, levels)
		}
	}
	if Fatal >= Disabled {
		t.Error("Disabled must sit above Fatal")
	}
}

func TestParseLevelAbbreviations(t *testing.T) {
	tests := map[string]Level{
		"trc":      Trace,
		"TRACE":    Trace,
		"dbg":      Debug,
		"inf":      Info,
		"info":     Info,
		"wrn":      Warning,
		"warn":     Warning,
		"err":      Error,
		"ftl":      Fatal,
		" fatal ":  Fatal,
		"disabled": Disabled,
		"off":      Disabled,
	}
	for input, want := range tests {
		got, err := ParseLevel(input)
		if err != nil {
			t.Errorf("ParseLevel(%q) returned error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestParseLevelUnknown(t *testing.T) {
	_, err := ParseLevel("bogus")
	if err == nil {
		t.Fatal("expected an error for an unknown level token")
	}
	var invalid *InvalidInputError
	if !asInvalidInput(err, &invalid) {
		t.Errorf("expected *InvalidInputError, got %T", err)
	}
}

func asInvalidInput(err error, target **InvalidInputError) bool {
	if e, ok := err.(*InvalidInputError); ok {
		*target = e
		return true
	}
	return false
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	for _, l := range AllLevels() {
		text, err := l.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", l, err)
		}
		var got Level
		if err := got.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if got != l {
			t.Errorf("round-trip mismatch: %v -> %q -> %v", l, text, got)
		}
	}
}
