package callparse

// Call is the finalized record of one mention-addressed invocation.
type Call struct {
	FirstMention string
	HeadLine     string
	Body         string
	BodyFenced   bool
	CallID       string
}

// CodeBlock is the finalized record of one top-level fenced code block.
type CodeBlock struct {
	InfoLine string
	Content  string
}

// Receiver is the capability the parser drives. Every method is required;
// implementations that do not care about a given event kind still provide
// a stub, per the redesign note in DESIGN.md replacing a dynamic,
// optional-callback receiver with an explicit trait. Methods may suspend
// (e.g. to perform I/O); the parser awaits each one before advancing, so
// the receiver observes a serial timeline equivalent to the parser's own.
type Receiver interface {
	MarkdownStart() error
	MarkdownChunk(text string) error
	MarkdownFinish() error

	CallStart(firstMention string) error
	CallHeadLineChunk(text string) error
	CallHeadLineFinish() error

	// CallBodyStart's infoLine is "```" when the body is wholly
	// triple-fenced, or "" otherwise.
	CallBodyStart(infoLine string) error
	CallBodyChunk(text string) error
	// CallBodyFinish's endQuote mirrors CallBodyStart's infoLine.
	CallBodyFinish(endQuote string) error

	CallFinish(callID string) error

	CodeBlockStart(infoLine string) error
	CodeBlockChunk(text string) error
	CodeBlockFinish(endQuote string) error
}

// ConsistencyError reports an internal-consistency violation (§7): a
// programmer-contract failure, never raised for grammatical ambiguity in
// the input text itself.
type ConsistencyError struct {
	Diagnostic string
}

func (e *ConsistencyError) Error() string {
	return "callparse: internal consistency violation: " + e.Diagnostic
}

// NopReceiver embeds into a partial Receiver implementation to stub out
// event kinds a particular consumer does not care about.
type NopReceiver struct{}

func (NopReceiver) MarkdownStart() error          { return nil }
func (NopReceiver) MarkdownChunk(string) error    { return nil }
func (NopReceiver) MarkdownFinish() error         { return nil }
func (NopReceiver) CallStart(string) error        { return nil }
func (NopReceiver) CallHeadLineChunk(string) error { return nil }
func (NopReceiver) CallHeadLineFinish() error     { return nil }
func (NopReceiver) CallBodyStart(string) error    { return nil }
func (NopReceiver) CallBodyChunk(string) error    { return nil }
func (NopReceiver) CallBodyFinish(string) error   { return nil }
func (NopReceiver) CallFinish(string) error       { return nil }
func (NopReceiver) CodeBlockStart(string) error   { return nil }
func (NopReceiver) CodeBlockChunk(string) error   { return nil }
func (NopReceiver) CodeBlockFinish(string) error  { return nil }
