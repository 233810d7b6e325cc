package callparse

// fenceTracker maintains a running count of consecutive backticks seen by
// the parser and the inline-code latch that count toggles. It is shared,
// Parser-level state: the same tracker gates both FREE_TEXT's inline-code
// suppression of line-start @ and TEXTING_CALL_BODY's suppression of a
// fresh call mid-backtick-run, exactly as §4.2/§4.3 describe "the fence
// tracker" as a single piece of state.
type fenceTracker struct {
	count            int
	inSingleBacktick bool
}

// onBacktick records one more consecutive backtick.
func (f *fenceTracker) onBacktick() {
	f.count++
}

// onOther resolves a non-backtick code point: a run of exactly one
// backtick toggles the inline-code latch, then the run resets.
func (f *fenceTracker) onOther() {
	if f.count == 1 {
		f.inSingleBacktick = !f.inSingleBacktick
	}
	f.count = 0
}

// active reports whether a backtick run is currently open (count > 0).
// Per the resolved open question in SPEC_FULL.md, any nonzero count
// suppresses a fresh-call transition in TEXTING_CALL_BODY.
func (f *fenceTracker) active() bool {
	return f.count > 0
}

// reset clears the run without resolving the latch, used when a run is
// consumed as a fence marker rather than resolved as ordinary text.
func (f *fenceTracker) reset() {
	f.count = 0
}
