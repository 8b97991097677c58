package phoneme

// Entry is one position of a phoneme alignment. Exactly one of Target and
// Spoken may be empty: an empty Target marks an insertion (the learner said
// an extra sound), an empty Spoken marks a deletion (a sound was dropped).
type Entry struct {
	// Target is the expected phoneme, or "" for an insertion.
	Target string `json:"target,omitempty"`

	// Spoken is the produced phoneme, or "" for a deletion.
	Spoken string `json:"spoken,omitempty"`

	// Match reports whether Target and Spoken are the same phoneme.
	Match bool `json:"match"`

	// Tip is a short corrective hint for known confusion pairs, or "".
	Tip string `json:"tip,omitempty"`
}

// Alignment is the result of aligning a spoken phoneme sequence against a
// target sequence. It is ephemeral: produced and consumed within a single
// diagnostic call, never persisted.
type Alignment struct {
	// TargetPhonemes is the target token sequence as given.
	TargetPhonemes []string `json:"targetPhonemes"`

	// SpokenPhonemes is the spoken token sequence as given.
	SpokenPhonemes []string `json:"spokenPhonemes"`

	// Entries is the ordered alignment.
	Entries []Entry `json:"alignment"`

	// MatchRatio is matches / max(len(target), len(spoken), 1).
	MatchRatio float64 `json:"matchRatio"`

	// IsPerfect reports whether every entry matched.
	IsPerfect bool `json:"isPerfect"`
}

// opKind is an alignment opcode produced by the LCS backtrack.
type opKind int

const (
	opEqual opKind = iota
	opDelete
	opInsert
)

type op struct {
	kind  opKind
	token string
}

// Align computes a minimum-edit alignment (longest-common-subsequence diff)
// between target and spoken phoneme sequences.
//
// Equal runs become per-token match entries. Runs of deletions and
// insertions that sit next to each other are paired positionally into
// substitution entries, with the shorter side padded by absences; each
// substitution is looked up in the confusion table for a corrective tip.
// Empty sequences on either side are handled without error.
func Align(target, spoken []string) *Alignment {
	ops := diff(target, spoken)

	a := &Alignment{
		TargetPhonemes: target,
		SpokenPhonemes: spoken,
		Entries:        make([]Entry, 0, len(ops)),
	}

	matches := 0
	var dels, inss []string

	flush := func() {
		for k := 0; k < len(dels) || k < len(inss); k++ {
			var e Entry
			if k < len(dels) {
				e.Target = dels[k]
			}
			if k < len(inss) {
				e.Spoken = inss[k]
			}
			if e.Target != "" && e.Spoken != "" {
				e.Tip = TipFor(e.Target, e.Spoken)
			}
			a.Entries = append(a.Entries, e)
		}
		dels = dels[:0]
		inss = inss[:0]
	}

	for _, o := range ops {
		switch o.kind {
		case opEqual:
			flush()
			a.Entries = append(a.Entries, Entry{Target: o.token, Spoken: o.token, Match: true})
			matches++
		case opDelete:
			dels = append(dels, o.token)
		case opInsert:
			inss = append(inss, o.token)
		}
	}
	flush()

	denom := max(len(target), len(spoken), 1)
	a.MatchRatio = float64(matches) / float64(denom)

	a.IsPerfect = true
	for _, e := range a.Entries {
		if !e.Match {
			a.IsPerfect = false
			break
		}
	}

	return a
}

// diff produces the opcode sequence of an LCS-based minimum-edit diff.
// The DP table is O(len(a)*len(b)); phoneme sequences are short (a word or
// phrase), so quadratic space is fine.
func diff(a, b []string) []op {
	la, lb := len(a), len(b)

	dp := make([][]int, la+1)
	for i := range dp {
		dp[i] = make([]int, lb+1)
	}
	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				dp[i][j] = dp[i-1][j-1] + 1
			} else if dp[i-1][j] >= dp[i][j-1] {
				dp[i][j] = dp[i-1][j]
			} else {
				dp[i][j] = dp[i][j-1]
			}
		}
	}

	// Backtrack from the corner, collecting ops in reverse.
	rev := make([]op, 0, la+lb)
	i, j := la, lb
	for i > 0 && j > 0 {
		switch {
		case a[i-1] == b[j-1]:
			rev = append(rev, op{opEqual, a[i-1]})
			i--
			j--
		case dp[i-1][j] >= dp[i][j-1]:
			rev = append(rev, op{opDelete, a[i-1]})
			i--
		default:
			rev = append(rev, op{opInsert, b[j-1]})
			j--
		}
	}
	for i > 0 {
		rev = append(rev, op{opDelete, a[i-1]})
		i--
	}
	for j > 0 {
		rev = append(rev, op{opInsert, b[j-1]})
		j--
	}

	// Reverse into forward order.
	for l, r := 0, len(rev)-1; l < r; l, r = l+1, r-1 {
		rev[l], rev[r] = rev[r], rev[l]
	}
	return rev
}
