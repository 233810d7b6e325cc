package callparse

import "strings"

// ExtractMentions returns the ordered list of mention names (without '@',
// trailing dot stripped) appearing in s outside of inline single-backtick
// regions. Per the resolved open question in SPEC_FULL.md, triple-fenced
// regions are skipped entirely rather than scanned as prose: a mention
// written inside a code sample is not an addressable call target.
//
// This is the canonical mention-discovery path for callers that have a
// complete string in hand and do not want to stand up a streaming Parser
// (access-control warnings, UI hinting, and the mention-set-equivalence
// test for markdown-only input).
func ExtractMentions(s string) []string {
	rs := []rune(s)
	n := len(rs)
	var mentions []string
	inSingleBacktick := false
	atLineStart := true

	i := 0
	for i < n {
		ch := rs[i]

		if ch == '`' {
			run := backtickRunLength(rs, i)
			if run >= 3 && atLineStart {
				i = skipFencedRegion(rs, i, run)
				atLineStart = false
				continue
			}
			// Only a run of exactly one backtick toggles the inline-code
			// latch, matching fenceTracker.onOther's "count==1 toggles"
			// rule; longer non-fence runs are literal text.
			if run == 1 {
				inSingleBacktick = !inSingleBacktick
			}
			i += run
			atLineStart = false
			continue
		}

		if ch == '@' && !inSingleBacktick {
			j := i + 1
			for j < n && isMentionChar(rs[j]) {
				j++
			}
			name := string(rs[i+1 : j])
			name = strings.TrimSuffix(name, ".")
			if name != "" {
				mentions = append(mentions, name)
			}
			i = j
			atLineStart = false
			continue
		}

		switch ch {
		case '\n':
			atLineStart = true
		case ' ', '\t':
			// preserve atLineStart across leading indentation
		default:
			atLineStart = false
		}
		i++
	}
	return mentions
}

func backtickRunLength(rs []rune, start int) int {
	j := start
	for j < len(rs) && rs[j] == '`' {
		j++
	}
	return j - start
}

// skipFencedRegion returns the index immediately after the closing fence
// (a line-start run of 3+ backticks) that follows the opening fence at
// [start, start+openRun), or len(rs) if no closing fence is found.
func skipFencedRegion(rs []rune, start, openRun int) int {
	i := start + openRun
	// skip the info line
	for i < len(rs) && rs[i] != '\n' {
		i++
	}
	for i < len(rs) {
		if rs[i] == '\n' {
			i++
			lineStart := i
			run := backtickRunLength(rs, i)
			if run >= 3 {
				end := lineStart + run
				if end >= len(rs) || rs[end] == '\n' {
					return end
				}
			}
			continue
		}
		i++
	}
	return len(rs)
}
