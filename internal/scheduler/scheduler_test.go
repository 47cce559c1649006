package scheduler

import (
	"testing"
)

type recordingSink struct {
	calls       []string
	nextPassIdx map[int]int
}

func (r *recordingSink) DecodeLfGlobal(data []byte) error {
	r.calls = append(r.calls, "LfGlobal")
	return nil
}
func (r *recordingSink) DecodeLfGroup(group int, data []byte) error {
	r.calls = append(r.calls, "Lf"+itoa(group))
	return nil
}
func (r *recordingSink) DecodeHfGlobal(data []byte) error {
	r.calls = append(r.calls, "HfGlobal")
	return nil
}
func (r *recordingSink) DecodeAndRenderHfGroups(group int, passes [][]byte) error {
	if r.nextPassIdx == nil {
		r.nextPassIdx = map[int]int{}
	}
	start := r.nextPassIdx[group]
	for i := range passes {
		r.calls = append(r.calls, "Hf"+itoa(group)+"p"+itoa(start+i))
	}
	r.nextPassIdx[group] = start + len(passes)
	return nil
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := []byte{}
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

// TestCanonicalOrderIndependentOfFeedOrder exercises I3: regardless of
// the order sections are fed in, the sink observes them in canonical
// order (LfGlobal, every Lf group, HfGlobal, then each group's passes
// ascending).
func TestCanonicalOrderIndependentOfFeedOrder(t *testing.T) {
	feedOrders := [][]SectionID{
		{
			{Kind: SectionHfGroupPass, Group: 0, Pass: 1},
			{Kind: SectionHfGroupPass, Group: 0, Pass: 0},
			{Kind: SectionHfGlobal},
			{Kind: SectionLfGroup, Group: 1},
			{Kind: SectionLfGroup, Group: 0},
			{Kind: SectionLfGlobal},
			{Kind: SectionHfGroupPass, Group: 1, Pass: 0},
			{Kind: SectionHfGroupPass, Group: 1, Pass: 1},
		},
		{
			{Kind: SectionLfGlobal},
			{Kind: SectionLfGroup, Group: 0},
			{Kind: SectionLfGroup, Group: 1},
			{Kind: SectionHfGlobal},
			{Kind: SectionHfGroupPass, Group: 0, Pass: 0},
			{Kind: SectionHfGroupPass, Group: 1, Pass: 0},
			{Kind: SectionHfGroupPass, Group: 0, Pass: 1},
			{Kind: SectionHfGroupPass, Group: 1, Pass: 1},
		},
	}

	for _, order := range feedOrders {
		sink := &recordingSink{}
		s := New(2, 2, 2, sink)
		for _, id := range order {
			if err := s.Feed(id, []byte{1}); err != nil {
				t.Fatalf("Feed(%+v): %v", id, err)
			}
		}
		if !s.IsFullyDecoded() {
			t.Fatalf("expected fully decoded after feeding all sections, calls=%v", sink.calls)
		}
		if s.NumCompletedPasses() != 2 {
			t.Fatalf("NumCompletedPasses() = %d, want 2", s.NumCompletedPasses())
		}
		assertCanonicalPhaseOrder(t, sink.calls)
	}
}

// assertCanonicalPhaseOrder checks I3: LfGlobal precedes every Lf*,
// every Lf* precedes HfGlobal, HfGlobal precedes every Hf*, and within
// each group Hf passes appear in ascending order. Dispatch timing
// across different groups may legitimately interleave depending on
// when each group's data arrived, so only these per-phase and
// per-group relations are checked, not one global total order.
func assertCanonicalPhaseOrder(t *testing.T, calls []string) {
	t.Helper()
	indexOf := func(s string) int {
		for i, c := range calls {
			if c == s {
				return i
			}
		}
		return -1
	}
	lfGlobalIdx := indexOf("LfGlobal")
	hfGlobalIdx := indexOf("HfGlobal")
	if lfGlobalIdx < 0 || hfGlobalIdx < 0 {
		t.Fatalf("missing LfGlobal/HfGlobal in %v", calls)
	}
	lastPassSeen := map[int]int{}
	for i, c := range calls {
		switch {
		case len(c) >= 2 && c[:2] == "Lf" && c != "LfGlobal":
			if i > hfGlobalIdx || i < lfGlobalIdx {
				t.Fatalf("Lf group call %q out of phase order in %v", c, calls)
			}
		case len(c) >= 2 && c[:2] == "Hf" && c != "HfGlobal":
			if i < hfGlobalIdx {
				t.Fatalf("Hf call %q appears before HfGlobal in %v", c, calls)
			}
			group := int(c[2] - '0')
			pass := int(c[len(c)-1] - '0')
			if prev, ok := lastPassSeen[group]; ok && pass != prev+1 {
				t.Fatalf("group %d pass order broken at %q in %v", group, c, calls)
			}
			lastPassSeen[group] = pass
		}
	}
}

func TestOutOfRangeSection(t *testing.T) {
	s := New(1, 1, 1, &recordingSink{})
	if err := s.Feed(SectionID{Kind: SectionLfGroup, Group: 5}, nil); err != ErrSectionOutOfRange {
		t.Fatalf("got %v, want ErrSectionOutOfRange", err)
	}
}
