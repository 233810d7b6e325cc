// Package replay persists parsed transcripts to SQLite and diffs two
// recorded calls, storing the call/code-block shape this grammar produces.
package replay

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	diff "github.com/shogoki/gotextdiff"
	_ "modernc.org/sqlite"

	"github.com/callmesh/dialogrt/internal/callparse"
)

const schema = `
CREATE TABLE IF NOT EXISTS transcripts (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS calls (
    id TEXT PRIMARY KEY,
    transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    first_mention TEXT NOT NULL,
    head_line TEXT NOT NULL,
    body TEXT NOT NULL,
    body_fenced BOOLEAN NOT NULL
);

CREATE TABLE IF NOT EXISTS code_blocks (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    transcript_id TEXT NOT NULL REFERENCES transcripts(id) ON DELETE CASCADE,
    sequence INTEGER NOT NULL,
    info_line TEXT NOT NULL,
    content TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calls_transcript ON calls(transcript_id, sequence);
CREATE INDEX IF NOT EXISTS idx_code_blocks_transcript ON code_blocks(transcript_id, sequence);
`

// Store persists transcripts produced by a Parser run.
type Store struct {
	db *sql.DB
}

// NewStore opens (creating if absent) a SQLite database at path and applies
// the schema.
func NewStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("replay: open db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("replay: apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save records one transcript's calls and code blocks, returning the
// generated transcript id.
func (s *Store) Save(ctx context.Context, source string, calls []callparse.Call, blocks []callparse.CodeBlock) (string, error) {
	id := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("replay: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO transcripts (id, source) VALUES (?, ?)`, id, source); err != nil {
		return "", fmt.Errorf("replay: insert transcript: %w", err)
	}
	for i, c := range calls {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO calls (id, transcript_id, sequence, first_mention, head_line, body, body_fenced) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.CallID, id, i, c.FirstMention, c.HeadLine, c.Body, c.BodyFenced,
		); err != nil {
			return "", fmt.Errorf("replay: insert call: %w", err)
		}
	}
	for i, b := range blocks {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO code_blocks (transcript_id, sequence, info_line, content) VALUES (?, ?, ?, ?)`,
			id, i, b.InfoLine, b.Content,
		); err != nil {
			return "", fmt.Errorf("replay: insert code block: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("replay: commit: %w", err)
	}
	return id, nil
}

// Load retrieves every call recorded for a transcript, in sequence order.
func (s *Store) Load(ctx context.Context, transcriptID string) ([]callparse.Call, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, first_mention, head_line, body, body_fenced FROM calls WHERE transcript_id = ? ORDER BY sequence`,
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("replay: query calls: %w", err)
	}
	defer rows.Close()

	var out []callparse.Call
	for rows.Next() {
		var c callparse.Call
		if err := rows.Scan(&c.CallID, &c.FirstMention, &c.HeadLine, &c.Body, &c.BodyFenced); err != nil {
			return nil, fmt.Errorf("replay: scan call: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadOne(ctx context.Context, transcriptID, callID string) (callparse.Call, error) {
	var c callparse.Call
	row := s.db.QueryRowContext(ctx,
		`SELECT id, first_mention, head_line, body, body_fenced FROM calls WHERE transcript_id = ? AND id = ?`,
		transcriptID, callID,
	)
	if err := row.Scan(&c.CallID, &c.FirstMention, &c.HeadLine, &c.Body, &c.BodyFenced); err != nil {
		return c, fmt.Errorf("replay: load call %s: %w", callID, err)
	}
	return c, nil
}

// Diff renders a unified diff between the bodies of two recorded calls
// within the same transcript.
func (s *Store) Diff(ctx context.Context, transcriptID, callIDA, callIDB string) (string, error) {
	a, err := s.loadOne(ctx, transcriptID, callIDA)
	if err != nil {
		return "", err
	}
	b, err := s.loadOne(ctx, transcriptID, callIDB)
	if err != nil {
		return "", err
	}
	out := diff.Diff(callIDA, []byte(a.Body), callIDB, []byte(b.Body))
	return string(out), nil
}

// RecordingReceiver is a callparse.Receiver that collects events only to
// the extent needed to reconstruct CodeBlock records; calls are taken from
// Parser.CollectedCalls() instead, since the parser already accumulates
// them for callId computation.
type RecordingReceiver struct {
	callparse.NopReceiver

	blocks       []callparse.CodeBlock
	curInfo      string
	curContent   string
}

func (r *RecordingReceiver) CodeBlockStart(infoLine string) error {
	r.curInfo = infoLine
	r.curContent = ""
	return nil
}

func (r *RecordingReceiver) CodeBlockChunk(text string) error {
	r.curContent += text
	return nil
}

func (r *RecordingReceiver) CodeBlockFinish(string) error {
	r.blocks = append(r.blocks, callparse.CodeBlock{InfoLine: r.curInfo, Content: r.curContent})
	return nil
}

// CodeBlocks returns every code block recorded so far.
func (r *RecordingReceiver) CodeBlocks() []callparse.CodeBlock {
	out := make([]callparse.CodeBlock, len(r.blocks))
	copy(out, r.blocks)
	return out
}
