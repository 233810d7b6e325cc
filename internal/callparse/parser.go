package callparse

import (
	"fmt"
	"strings"
)

// mode is one of the six states of the call-invocation grammar's
// automaton (§4.3).
type mode int

const (
	modeFreeText mode = iota
	modeCallHeadline
	modeCallBeforeBody
	modeCallBody
	modeCodeBlockInfo
	modeCodeBlockContent
)

// Parser is a single streaming instance of the call-invocation grammar.
// It is not safe for concurrent use: per §5, all state mutation is
// serialized by the caller invoking Consume and Finish in order.
type Parser struct {
	recv Receiver

	mode mode

	// carry holds code points received but not yet resolvable: a lone
	// trailing '@' awaiting its next character, a backtick run still
	// touching the end of the buffer, or a headline newline's
	// lookahead run. It is reprocessed at the front of the next
	// Consume call, or, at Finish, with no further input possible.
	carry []rune

	finished bool
	fatal    error

	atLineStart bool
	fence       fenceTracker

	mdOpen      bool
	mdBuf       strings.Builder
	mdFlushed   int

	mentionBuf strings.Builder

	callOpen     bool
	curMention   string
	headlineBuf  strings.Builder
	headFlushed  int

	bodyOpen     bool
	bodyTriple   bool
	bodyBuf      strings.Builder
	bodyFlushed  int

	codeInfoBuf strings.Builder

	codeOpen         bool
	codeContentBuf   strings.Builder
	codeFlushed      int
	codePendingClose bool

	counter uint64
	calls   []Call
}

// New constructs a parser bound to recv.
func New(recv Receiver) *Parser {
	return &Parser{
		recv:        recv,
		mode:        modeFreeText,
		atLineStart: true,
	}
}

// Consume feeds one chunk of upstream text to the parser, returning when
// recv has acknowledged every event this chunk produced.
func (p *Parser) Consume(chunk string) error {
	if p.finished {
		return &ConsistencyError{Diagnostic: "Consume called after Finish"}
	}
	if p.fatal != nil {
		return p.fatal
	}
	p.carry = append(p.carry, []rune(chunk)...)
	if err := p.run(false); err != nil {
		p.fatal = err
		return err
	}
	if err := p.flushActive(); err != nil {
		p.fatal = err
		return err
	}
	return nil
}

// Finish finalizes the parser. Calling it twice is a contract violation
// per §6.3.
func (p *Parser) Finish() error {
	if p.finished {
		return &ConsistencyError{Diagnostic: "Finish called twice"}
	}
	if p.fatal != nil {
		return p.fatal
	}
	if err := p.run(true); err != nil {
		p.fatal = err
		return err
	}
	if err := p.finalize(); err != nil {
		p.fatal = err
		return err
	}
	p.finished = true
	return nil
}

// CollectedCalls returns a snapshot of finalized calls with their
// computed callIds.
func (p *Parser) CollectedCalls() []Call {
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// ---- buffer plumbing ----

func (p *Parser) ensureMarkdownStart() error {
	if !p.mdOpen {
		p.mdOpen = true
		p.mdFlushed = 0
		p.mdBuf.Reset()
		return p.recv.MarkdownStart()
	}
	return nil
}

// flushActive flushes whatever segment is currently open, holding back a
// trailing ambiguous backtick run (length 0-2) from markdown and code
// content, since a third backtick arriving in the next chunk would need
// to retroactively resolve into a fence rather than literal text.
func (p *Parser) flushActive() error {
	switch {
	case p.mdOpen:
		return p.flushBuilder(&p.mdBuf, &p.mdFlushed, true, p.recv.MarkdownChunk)
	case p.mode == modeCallHeadline && p.callOpen:
		return p.flushBuilder(&p.headlineBuf, &p.headFlushed, false, p.recv.CallHeadLineChunk)
	case p.bodyOpen:
		return p.flushBuilder(&p.bodyBuf, &p.bodyFlushed, p.bodyTriple, p.recv.CallBodyChunk)
	case p.codeOpen:
		return p.flushBuilder(&p.codeContentBuf, &p.codeFlushed, true, p.recv.CodeBlockChunk)
	}
	return nil
}

func (p *Parser) flushBuilder(b *strings.Builder, flushed *int, holdback bool, emit func(string) error) error {
	s := b.String()
	limit := len(s)
	if holdback {
		limit -= trailingBacktickHoldback(s)
	}
	if limit < *flushed {
		limit = *flushed
	}
	if limit > *flushed {
		chunk := s[*flushed:limit]
		*flushed = limit
		if chunk != "" {
			return emit(chunk)
		}
	}
	return nil
}

// trailingBacktickHoldback returns how many trailing backtick bytes
// (0, 1, or 2) must not yet be flushed because a third backtick in the
// next chunk would resolve them into a fence.
func trailingBacktickHoldback(s string) int {
	n := 0
	for n < 2 && n < len(s) && s[len(s)-1-n] == '`' {
		n++
	}
	return n
}

func (p *Parser) appendMarkdown(s string) error {
	if err := p.ensureMarkdownStart(); err != nil {
		return err
	}
	p.mdBuf.WriteString(s)
	return nil
}

// ---- top-level drive loop ----

// run processes every currently-available rune in p.carry under the
// current mode, leaving any genuinely undecidable suffix in p.carry for
// the next call. final indicates no further input will ever arrive (the
// call originates from Finish), which resolves every lookahead that would
// otherwise defer.
func (p *Parser) run(final bool) error {
	rs := p.carry
	i := 0
	for i < len(rs) {
		next, err := p.step(rs, i, final)
		if err != nil {
			return err
		}
		if next < 0 {
			// deferral: keep rs[i:] (i unchanged) for next call.
			p.carry = append([]rune(nil), rs[i:]...)
			return nil
		}
		i = next
	}
	p.carry = nil
	return nil
}

// step processes exactly one decision at rs[i] under the current mode,
// returning the next cursor position, or -1 if the decision cannot be
// made without more input and final is false.
func (p *Parser) step(rs []rune, i int, final bool) (int, error) {
	switch p.mode {
	case modeFreeText:
		return p.stepFreeText(rs, i, final)
	case modeCallHeadline:
		return p.stepHeadline(rs, i, final)
	case modeCallBeforeBody:
		return p.stepBeforeBody(rs, i, final)
	case modeCallBody:
		return p.stepBody(rs, i, final)
	case modeCodeBlockInfo:
		return p.stepCodeInfo(rs, i, final)
	case modeCodeBlockContent:
		return p.stepCodeContent(rs, i, final)
	}
	return -1, &ConsistencyError{Diagnostic: fmt.Sprintf("unknown mode %d", p.mode)}
}

func need(rs []rune, i, n int, final bool) bool {
	return i+n > len(rs) && !final
}

func at(rs []rune, i int) (rune, bool) {
	if i < len(rs) {
		return rs[i], true
	}
	return 0, false
}

// ---- FREE_TEXT ----

func (p *Parser) stepFreeText(rs []rune, i int, final bool) (int, error) {
	ch := rs[i]

	if classify(ch) == classAt && p.atLineStart && !p.fence.inSingleBacktick {
		if need(rs, i, 2, final) {
			return -1, nil
		}
		if nxt, ok := at(rs, i+1); ok && nxt == '/' {
			if err := p.appendMarkdown("@/"); err != nil {
				return 0, err
			}
			p.atLineStart = false
			return i + 2, nil
		}
		if err := p.beginHeadlineAt(); err != nil {
			return 0, err
		}
		return i + 1, nil
	}

	if classify(ch) == classBacktick {
		run := backtickRunLength(rs, i)
		if i+run == len(rs) && !final {
			return -1, nil
		}
		if run >= 3 && p.atLineStart {
			if err := p.closeMarkdownIfOpen(); err != nil {
				return 0, err
			}
			p.mode = modeCodeBlockInfo
			p.codeInfoBuf.Reset()
			p.atLineStart = false
			return i + run, nil
		}
		for k := 0; k < run; k++ {
			p.fence.onBacktick()
		}
		p.fence.onOther()
		if err := p.appendMarkdown(strings.Repeat("`", run)); err != nil {
			return 0, err
		}
		p.atLineStart = false
		return i + run, nil
	}

	if classify(ch) == classNewline {
		if err := p.appendMarkdown("\n"); err != nil {
			return 0, err
		}
		p.atLineStart = true
		p.fence.onOther()
		return i + 1, nil
	}

	if err := p.appendMarkdown(string(ch)); err != nil {
		return 0, err
	}
	if classify(ch) != classSpace {
		p.atLineStart = false
	}
	p.fence.onOther()
	return i + 1, nil
}

func (p *Parser) closeMarkdownIfOpen() error {
	if p.mdOpen {
		if err := p.flushBuilder(&p.mdBuf, &p.mdFlushed, false, p.recv.MarkdownChunk); err != nil {
			return err
		}
		p.mdOpen = false
		p.mdBuf.Reset()
		p.mdFlushed = 0
		return p.recv.MarkdownFinish()
	}
	return nil
}

// beginHeadlineAt switches into TEXTING_CALL_HEADLINE, having already
// confirmed the '@' is not an '@/' terminator. It does not consume the
// mention; the caller advances past the '@' itself.
func (p *Parser) beginHeadlineAt() error {
	if err := p.closeMarkdownIfOpen(); err != nil {
		return err
	}
	p.mode = modeCallHeadline
	p.mentionBuf.Reset()
	p.callOpen = false
	p.atLineStart = false
	return nil
}

// ---- TEXTING_CALL_HEADLINE ----

func (p *Parser) stepHeadline(rs []rune, i int, final bool) (int, error) {
	ch := rs[i]

	if !p.callOpen {
		if isMentionChar(ch) {
			p.mentionBuf.WriteRune(ch)
			return i + 1, nil
		}
		raw := p.mentionBuf.String()
		mention := strings.TrimSuffix(raw, ".")
		if mention == "" {
			if err := p.appendMarkdown("@" + raw); err != nil {
				return 0, err
			}
			p.mentionBuf.Reset()
			p.mode = modeFreeText
			return i, nil // reprocess ch as FREE_TEXT
		}
		if err := p.startCall(mention); err != nil {
			return 0, err
		}
		p.mentionBuf.Reset()
		if mention != raw {
			p.headlineBuf.WriteString(".")
		}
		return i, nil // reprocess ch as headline content
	}

	if classify(ch) == classNewline {
		return p.headlineNewline(rs, i, final)
	}

	p.headlineBuf.WriteRune(ch)
	return i + 1, nil
}

func (p *Parser) startCall(mention string) error {
	if p.callOpen {
		return &ConsistencyError{Diagnostic: "callStart while a call is already open"}
	}
	p.callOpen = true
	p.curMention = mention
	p.headlineBuf.Reset()
	p.headFlushed = 0
	return p.recv.CallStart(mention)
}

// headlineNewline implements the five-way decision at a headline-ending
// newline: continuation, body start, triple-fenced body, fresh call, or
// an explicit @/ terminator.
func (p *Parser) headlineNewline(rs []rune, i int, final bool) (int, error) {
	j := i + 1
	indentStart := j
	for j < len(rs) && isHeadlineIndent(rs[j]) {
		j++
	}
	if j == len(rs) && !final {
		return -1, nil
	}
	d, ok := at(rs, j)
	if !ok {
		// end of input right after the newline (and any indent): the
		// headline simply ends with no body.
		return j, p.finishHeadlineNoBody()
	}

	switch {
	case d == '\n':
		return p.headlineAfterBlankLine(rs, j, final)
	case d == '@':
		return p.headlineAfterAt(rs, j, final)
	case d == '`':
		return p.headlineAfterBacktick(rs, i, j, final)
	default:
		hasIndent := j > indentStart
		if hasIndent {
			p.headlineBuf.WriteRune('\n')
			p.headlineBuf.WriteString(string(rs[indentStart:j]))
			return j, nil
		}
		if err := p.finishHeadlineForBody(); err != nil {
			return 0, err
		}
		return j, nil
	}
}

func (p *Parser) headlineAfterBlankLine(rs []rune, j int, final bool) (int, error) {
	if need(rs, j, 2, final) {
		return -1, nil
	}
	d2, ok := at(rs, j+1)
	if !ok {
		return j + 1, p.finishHeadlineNoBody()
	}
	if d2 == '@' {
		if err := p.finishHeadlineNoBody(); err != nil {
			return 0, err
		}
		if err := p.beginHeadlineAt(); err != nil {
			return 0, err
		}
		return j + 2, nil
	}
	if err := p.finishHeadlineForBody(); err != nil {
		return 0, err
	}
	return j + 1, nil
}

func (p *Parser) headlineAfterAt(rs []rune, j int, final bool) (int, error) {
	if need(rs, j, 2, final) {
		return -1, nil
	}
	nxt, ok := at(rs, j+1)
	if ok && nxt == '/' {
		end := j + 2
		end = consumeOptionalTrailingNewline(rs, end, final)
		if end < 0 {
			return -1, nil
		}
		if err := p.finishHeadlineNoBody(); err != nil {
			return 0, err
		}
		p.mode = modeFreeText
		p.atLineStart = true
		return end, nil
	}
	if err := p.finishHeadlineNoBody(); err != nil {
		return 0, err
	}
	if err := p.beginHeadlineAt(); err != nil {
		return 0, err
	}
	return j + 1, nil
}

func (p *Parser) headlineAfterBacktick(rs []rune, newlineIdx, j int, final bool) (int, error) {
	run := backtickRunLength(rs, j)
	if j+run == len(rs) && !final {
		return -1, nil
	}
	if run >= 3 {
		if err := p.finishHeadlineForBody(); err != nil {
			return 0, err
		}
		if err := p.beginTripleBody(); err != nil {
			return 0, err
		}
		return j + run, nil
	}
	// Not a fence: a short backtick run is ordinary content. Treat as
	// continuation if indented, else as body start.
	hasIndent := j > newlineIdx+1
	if hasIndent {
		p.headlineBuf.WriteRune('\n')
		p.headlineBuf.WriteString(string(rs[newlineIdx+1 : j]))
		return j, nil
	}
	if err := p.finishHeadlineForBody(); err != nil {
		return 0, err
	}
	return j, nil
}

func (p *Parser) finishHeadlineNoBody() error {
	if err := p.flushBuilder(&p.headlineBuf, &p.headFlushed, false, p.recv.CallHeadLineChunk); err != nil {
		return err
	}
	if err := p.recv.CallHeadLineFinish(); err != nil {
		return err
	}
	return p.completeCall("", false)
}

func (p *Parser) finishHeadlineForBody() error {
	if err := p.flushBuilder(&p.headlineBuf, &p.headFlushed, false, p.recv.CallHeadLineChunk); err != nil {
		return err
	}
	if err := p.recv.CallHeadLineFinish(); err != nil {
		return err
	}
	p.mode = modeCallBeforeBody
	p.atLineStart = true
	return nil
}

func (p *Parser) beginTripleBody() error {
	p.mode = modeCallBody
	p.bodyOpen = true
	p.bodyTriple = true
	p.bodyBuf.Reset()
	p.bodyFlushed = 0
	p.fence.reset()
	p.atLineStart = false
	if err := p.recv.CallBodyStart("```"); err != nil {
		return err
	}
	p.bodyBuf.WriteString("```")
	return nil
}

// completeCall finalizes curMention/headline/body into a Call, computes
// its callId, emits CallFinish, and returns to FREE_TEXT.
func (p *Parser) completeCall(body string, fenced bool) error {
	headline := p.headlineBuf.String()
	id := computeCallID(p.curMention, headline, body, p.counter)
	p.counter++
	p.calls = append(p.calls, Call{
		FirstMention: p.curMention,
		HeadLine:     headline,
		Body:         body,
		BodyFenced:   fenced,
		CallID:       id,
	})
	p.callOpen = false
	p.curMention = ""
	p.headlineBuf.Reset()
	p.headFlushed = 0
	p.mode = modeFreeText
	return p.recv.CallFinish(id)
}

// ---- TEXTING_CALL_BEFORE_BODY ----

func (p *Parser) stepBeforeBody(rs []rune, i int, final bool) (int, error) {
	ch := rs[i]

	if cls := classify(ch); cls == classSpace || cls == classNewline || ch == '\t' {
		if cls == classNewline {
			p.atLineStart = true
		}
		return i + 1, nil
	}

	if classify(ch) == classBacktick {
		run := backtickRunLength(rs, i)
		if i+run == len(rs) && !final {
			return -1, nil
		}
		if run >= 3 {
			if err := p.beginTripleBody(); err != nil {
				return 0, err
			}
			return i + run, nil
		}
		if err := p.beginFreeBody(); err != nil {
			return 0, err
		}
		return i, nil
	}

	if classify(ch) == classAt {
		if need(rs, i, 2, final) {
			return -1, nil
		}
		nxt, _ := at(rs, i+1)
		if nxt == '/' {
			end := consumeOptionalTrailingNewline(rs, i+2, final)
			if end < 0 {
				return -1, nil
			}
			if err := p.completeCall("", false); err != nil {
				return 0, err
			}
			p.mode = modeFreeText
			p.atLineStart = true
			return end, nil
		}
		if err := p.completeCall("", false); err != nil {
			return 0, err
		}
		if err := p.beginHeadlineAt(); err != nil {
			return 0, err
		}
		return i + 1, nil
	}

	if err := p.beginFreeBody(); err != nil {
		return 0, err
	}
	return i, nil
}

func (p *Parser) beginFreeBody() error {
	p.mode = modeCallBody
	p.bodyOpen = true
	p.bodyTriple = false
	p.bodyBuf.Reset()
	p.bodyFlushed = 0
	p.fence.reset()
	return p.recv.CallBodyStart("")
}

// ---- TEXTING_CALL_BODY ----

func (p *Parser) stepBody(rs []rune, i int, final bool) (int, error) {
	ch := rs[i]

	if classify(ch) == classAt {
		if need(rs, i, 2, final) {
			return -1, nil
		}
		nxt, _ := at(rs, i+1)
		if nxt == '/' {
			end := consumeOptionalTrailingNewline(rs, i+2, final)
			if end < 0 {
				return -1, nil
			}
			if err := p.finishBody(""); err != nil {
				return 0, err
			}
			p.mode = modeFreeText
			p.atLineStart = true
			return end, nil
		}
		if !p.bodyTriple && p.atLineStart && !p.fence.active() {
			if err := p.finishBody(""); err != nil {
				return 0, err
			}
			if err := p.beginHeadlineAt(); err != nil {
				return 0, err
			}
			return i + 1, nil
		}
		p.bodyBuf.WriteRune('@')
		p.fence.onOther()
		p.atLineStart = false
		return i + 1, nil
	}

	if p.bodyTriple && classify(ch) == classBacktick && p.atLineStart {
		run := backtickRunLength(rs, i)
		if i+run == len(rs) && !final {
			return -1, nil
		}
		if run >= 3 {
			end := consumeOptionalTrailingNewline(rs, i+run, final)
			if end < 0 {
				return -1, nil
			}
			p.bodyBuf.WriteString("```")
			if err := p.finishBody("```"); err != nil {
				return 0, err
			}
			p.mode = modeFreeText
			p.atLineStart = true
			return end, nil
		}
		p.bodyBuf.WriteString(strings.Repeat("`", run))
		p.atLineStart = false
		return i + run, nil
	}

	if classify(ch) == classBacktick {
		p.bodyBuf.WriteRune('`')
		p.fence.onBacktick()
		p.atLineStart = false
		return i + 1, nil
	}

	p.bodyBuf.WriteRune(ch)
	if classify(ch) == classNewline {
		p.atLineStart = true
	} else {
		p.atLineStart = false
	}
	p.fence.onOther()
	return i + 1, nil
}

func (p *Parser) finishBody(endQuote string) error {
	if err := p.flushBuilder(&p.bodyBuf, &p.bodyFlushed, false, p.recv.CallBodyChunk); err != nil {
		return err
	}
	if err := p.recv.CallBodyFinish(endQuote); err != nil {
		return err
	}
	body := p.bodyBuf.String()
	fenced := p.bodyTriple
	p.bodyOpen = false
	p.bodyBuf.Reset()
	p.bodyFlushed = 0
	return p.completeCall(body, fenced)
}

// ---- CODE_BLOCK_INFO ----

func (p *Parser) stepCodeInfo(rs []rune, i int, final bool) (int, error) {
	ch := rs[i]
	if classify(ch) == classNewline {
		info := p.codeInfoBuf.String()
		if err := p.recv.CodeBlockStart(info); err != nil {
			return 0, err
		}
		p.mode = modeCodeBlockContent
		p.codeOpen = true
		p.codeContentBuf.Reset()
		p.codeFlushed = 0
		p.codeContentBuf.WriteRune('\n')
		p.fence.reset()
		return i + 1, nil
	}
	p.codeInfoBuf.WriteRune(ch)
	return i + 1, nil
}

// ---- CODE_BLOCK_CONTENT ----

func (p *Parser) stepCodeContent(rs []rune, i int, final bool) (int, error) {
	if p.codePendingClose {
		// The closing run of three backticks has already been fully
		// consumed and stripped; only whether one trailing newline is
		// also part of the terminator remains undecided.
		end := consumeOptionalTrailingNewline(rs, i, final)
		if end < 0 {
			return -1, nil
		}
		p.codePendingClose = false
		if err := p.finishCodeBlock(); err != nil {
			return 0, err
		}
		return end, nil
	}

	ch := rs[i]

	if classify(ch) == classBacktick {
		p.fence.onBacktick()
		if p.fence.count == 3 {
			s := p.codeContentBuf.String()
			p.codeContentBuf.Reset()
			p.codeContentBuf.WriteString(s[:len(s)-2])
			if p.codeFlushed > p.codeContentBuf.Len() {
				p.codeFlushed = p.codeContentBuf.Len()
			}
			p.codePendingClose = true
			return i + 1, nil
		}
		p.codeContentBuf.WriteRune('`')
		return i + 1, nil
	}

	p.fence.onOther()
	p.codeContentBuf.WriteRune(ch)
	return i + 1, nil
}

func (p *Parser) finishCodeBlock() error {
	if err := p.flushBuilder(&p.codeContentBuf, &p.codeFlushed, false, p.recv.CodeBlockChunk); err != nil {
		return err
	}
	p.codeOpen = false
	p.codeContentBuf.Reset()
	p.codeFlushed = 0
	p.mode = modeFreeText
	p.atLineStart = true
	return p.recv.CodeBlockFinish("")
}

// ---- shared lookahead helper ----

// consumeOptionalTrailingNewline returns the index after pos, skipping
// exactly one '\n' at pos if present, or -1 if more input is needed to
// decide and final is false.
func consumeOptionalTrailingNewline(rs []rune, pos int, final bool) int {
	if pos >= len(rs) {
		if final {
			return pos
		}
		return -1
	}
	if classify(rs[pos]) == classNewline {
		return pos + 1
	}
	return pos
}

// ---- finalization ----

// finalize drains all buffers per the §4.3 Finalization rules once the
// stream has genuinely ended (Finish, with no carry left undecided).
func (p *Parser) finalize() error {
	switch p.mode {
	case modeFreeText:
		return p.closeMarkdownIfOpen()
	case modeCallHeadline:
		if !p.callOpen {
			raw := p.mentionBuf.String()
			mention := strings.TrimSuffix(raw, ".")
			if mention == "" {
				if err := p.appendMarkdown("@" + raw); err != nil {
					return err
				}
				return p.closeMarkdownIfOpen()
			}
			if err := p.startCall(mention); err != nil {
				return err
			}
			if mention != raw {
				p.headlineBuf.WriteString(".")
			}
		}
		return p.finishHeadlineNoBody()
	case modeCallBeforeBody:
		return p.completeCall("", false)
	case modeCallBody:
		endQuote := ""
		if p.bodyTriple {
			endQuote = "```"
		}
		return p.finishBody(endQuote)
	case modeCodeBlockInfo:
		info := p.codeInfoBuf.String()
		if err := p.recv.CodeBlockStart(info); err != nil {
			return err
		}
		p.codeOpen = true
		return p.recv.CodeBlockFinish("")
	case modeCodeBlockContent:
		return p.finishCodeBlock()
	}
	return nil
}
