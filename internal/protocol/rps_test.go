package protocol

import "testing"

func TestBeatsCycle(t *testing.T) {
	cases := []struct {
		a, b Move
		won  bool
		ok   bool
	}{
		{Rock, Scissors, true, true},
		{Scissors, Rock, false, true},
		{Scissors, Paper, true, true},
		{Paper, Scissors, false, true},
		{Paper, Rock, true, true},
		{Rock, Paper, false, true},
		{Rock, Rock, false, false},
		{Paper, Paper, false, false},
		{Scissors, Scissors, false, false},
	}
	for _, c := range cases {
		won, ok := Beats(c.a, c.b)
		if won != c.won || ok != c.ok {
			t.Errorf("Beats(%s, %s) = (%v, %v), want (%v, %v)", c.a, c.b, won, ok, c.won, c.ok)
		}
	}
}

func TestMoveValid(t *testing.T) {
	for _, m := range []Move{Rock, Paper, Scissors} {
		if !m.Valid() {
			t.Errorf("%s should be valid", m)
		}
	}
	if Move("Lizard").Valid() {
		t.Errorf("Lizard should not be valid")
	}
}

func TestIdRoundTrip(t *testing.T) {
	id := NewId()
	s := id.String()
	parsed, err := ParseId(s)
	if err != nil {
		t.Fatalf("ParseId(%q) failed: %v", s, err)
	}
	if parsed != id {
		t.Errorf("round-trip mismatch: got %s, want %s", parsed, id)
	}
}

func TestIdJSONRoundTrip(t *testing.T) {
	id := NewId()
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON failed: %v", err)
	}
	var got Id
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON failed: %v", err)
	}
	if got != id {
		t.Errorf("JSON round-trip mismatch: got %s, want %s", got, id)
	}
}

func TestParseIdRejectsGarbage(t *testing.T) {
	if _, err := ParseId("not-a-uuid"); err == nil {
		t.Errorf("expected an error parsing a malformed id")
	}
}
