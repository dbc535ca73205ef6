package match

import (
	"reflect"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercase", "Radiohead", "radiohead"},
		{"diacritics", "Björk", "bjork"},
		{"leading the", "The Beatles", "beatles"},
		{"leading the dropped even when repeated", "The The", "the"},
		{"trailing band", "Dave Matthews Band", "dave matthews"},
		{"band alone survives", "Band", "band"},
		{"parenthetical dropped", "Nirvana (US grunge band)", "nirvana"},
		{"bracket dropped", "Mogwai [live]", "mogwai"},
		{"punctuation collapses", "AC/DC", "ac dc"},
		{"ampersand", "Simon & Garfunkel", "simon garfunkel"},
		{"whitespace", "  Portishead  ", "portishead"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"The Beatles", "Björk", "Nirvana (band)", "AC/DC"} {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens(Normalize("Nick Cave & The Bad Seeds"))
	want := []string{"nick", "cave", "the", "bad", "seeds"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokens = %v, want %v", got, want)
	}
}
