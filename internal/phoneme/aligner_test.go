package phoneme

import (
	"reflect"
	"testing"
)

func TestAlign_Identity(t *testing.T) {
	t.Parallel()

	seq := []string{"b", "ɔ̃", "ʒ", "u", "ʁ"}
	a := Align(seq, seq)

	if !a.IsPerfect {
		t.Error("IsPerfect = false, want true")
	}
	if a.MatchRatio != 1.0 {
		t.Errorf("MatchRatio = %v, want 1.0", a.MatchRatio)
	}
	if len(a.Entries) != len(seq) {
		t.Fatalf("len(Entries) = %d, want %d", len(a.Entries), len(seq))
	}
	for i, e := range a.Entries {
		if !e.Match || e.Target != seq[i] || e.Spoken != seq[i] {
			t.Errorf("entry %d = %+v, want matched %q", i, e, seq[i])
		}
	}
}

func TestAlign_BothEmpty(t *testing.T) {
	t.Parallel()

	a := Align(nil, nil)
	if !a.IsPerfect {
		t.Error("IsPerfect = false for two empty sequences, want true")
	}
	if a.MatchRatio != 0 {
		t.Errorf("MatchRatio = %v, want 0", a.MatchRatio)
	}
	if len(a.Entries) != 0 {
		t.Errorf("len(Entries) = %d, want 0", len(a.Entries))
	}
}

func TestAlign_EmptySpoken(t *testing.T) {
	t.Parallel()

	a := Align([]string{"e", "t"}, nil)
	if a.IsPerfect {
		t.Error("IsPerfect = true, want false")
	}
	if a.MatchRatio != 0 {
		t.Errorf("MatchRatio = %v, want 0", a.MatchRatio)
	}
	for i, e := range a.Entries {
		if e.Spoken != "" || e.Target == "" {
			t.Errorf("entry %d = %+v, want deletion", i, e)
		}
	}
}

func TestAlign_EmptyTarget(t *testing.T) {
	t.Parallel()

	a := Align(nil, []string{"ə"})
	if len(a.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(a.Entries))
	}
	e := a.Entries[0]
	if e.Target != "" || e.Spoken != "ə" || e.Match {
		t.Errorf("entry = %+v, want insertion of ə", e)
	}
}

// The classic learner slip: oral /e/ produced as nasal /ɛ̃/. One
// substitution, zero match ratio, tip attached.
func TestAlign_NasalSubstitution(t *testing.T) {
	t.Parallel()

	target := Tokenize("e")
	spoken := Tokenize("ɛ̃")
	if !reflect.DeepEqual(target, []string{"e"}) {
		t.Fatalf("Tokenize(e) = %q", target)
	}
	if !reflect.DeepEqual(spoken, []string{"ɛ̃"}) {
		t.Fatalf("Tokenize(ɛ̃) = %q", spoken)
	}

	a := Align(target, spoken)
	if a.MatchRatio != 0.0 {
		t.Errorf("MatchRatio = %v, want 0.0", a.MatchRatio)
	}
	if a.IsPerfect {
		t.Error("IsPerfect = true, want false")
	}
	if len(a.Entries) != 1 {
		t.Fatalf("len(Entries) = %d, want 1", len(a.Entries))
	}
	e := a.Entries[0]
	if e.Target != "e" || e.Spoken != "ɛ̃" || e.Match {
		t.Errorf("entry = %+v, want substitution e→ɛ̃", e)
	}
	if e.Tip == "" {
		t.Error("Tip is empty, want the nasalisation tip")
	}
}

func TestAlign_SubstitutionRunPadsShorterSide(t *testing.T) {
	t.Parallel()

	// Target has two phonemes where spoken has one; the run pairs
	// positionally and pads with an absence.
	a := Align([]string{"a", "θ", "s", "a"}, []string{"a", "f", "a"})

	var subs, dels int
	for _, e := range a.Entries {
		switch {
		case e.Target != "" && e.Spoken != "" && !e.Match:
			subs++
		case e.Target != "" && e.Spoken == "":
			dels++
		}
	}
	if subs != 1 || dels != 1 {
		t.Errorf("substitutions = %d, deletions = %d, want 1 and 1 (entries: %+v)", subs, dels, a.Entries)
	}
}

func TestAlign_MatchRatioBounds(t *testing.T) {
	t.Parallel()

	cases := [][2][]string{
		{{"a"}, {"b"}},
		{{"a", "b", "c"}, {"a"}},
		{{"a"}, {"a", "b", "c", "d"}},
		{nil, {"x"}},
		{{"x"}, nil},
	}
	for _, c := range cases {
		a := Align(c[0], c[1])
		if a.MatchRatio < 0 || a.MatchRatio > 1 {
			t.Errorf("Align(%q, %q).MatchRatio = %v, out of [0,1]", c[0], c[1], a.MatchRatio)
		}
	}
}

func TestAlign_MatchRatioUsesLongerLength(t *testing.T) {
	t.Parallel()

	// 2 matches over max(2, 4) = 4.
	a := Align([]string{"a", "b"}, []string{"a", "b", "c", "d"})
	if a.MatchRatio != 0.5 {
		t.Errorf("MatchRatio = %v, want 0.5", a.MatchRatio)
	}
}

func TestTipFor_OrderIndependent(t *testing.T) {
	t.Parallel()

	if TipFor("e", "ɛ̃") == "" {
		t.Error("TipFor(e, ɛ̃) is empty")
	}
	if TipFor("ɛ̃", "e") != TipFor("e", "ɛ̃") {
		t.Error("TipFor is order dependent")
	}
	if TipFor("a", "z") != "" {
		t.Error("TipFor(a, z) should be empty for an unknown pair")
	}
}
