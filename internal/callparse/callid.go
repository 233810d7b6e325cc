package callparse

import (
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// normalizeForHash applies the §4.4 field normalization: CRLF to LF, then
// trailing whitespace stripped.
func normalizeForHash(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.TrimRight(s, " \t\r\n")
}

// computeCallID hashes the trimmed first mention, normalized headline, and
// normalized body, joined by single newlines, combined with the
// monotonic per-parser call counter. xxhash gives a deterministic,
// cross-platform 64-bit digest on a single streaming hash call (the
// counter is written as a suffix into the same hash rather than folded in
// separately, per the §9 redesign note); cryptographic strength is not
// required, only collision resistance within one conversation.
func computeCallID(firstMention, headLine, body string, counter uint64) string {
	h := xxhash.New()
	_, _ = h.WriteString(strings.TrimSpace(firstMention))
	_, _ = h.Write([]byte{'\n'})
	_, _ = h.WriteString(normalizeForHash(headLine))
	_, _ = h.Write([]byte{'\n'})
	_, _ = h.WriteString(normalizeForHash(body))
	_, _ = h.Write([]byte{'#'})
	_, _ = h.WriteString(strconv.FormatUint(counter, 10))
	sum := h.Sum64()
	const hexDigits = "0123456789abcdef"
	out := make([]byte, 16)
	for i := 15; i >= 0; i-- {
		out[i] = hexDigits[sum&0xf]
		sum >>= 4
	}
	return string(out)
}
