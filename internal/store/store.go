// Package store persists imported questions in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/QuizImport/internal/core"
)

// BulkImportTimeout bounds a single commit.
var BulkImportTimeout = 30 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS question_imports (
	id             UUID PRIMARY KEY,
	kind           TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	quiz_id        TEXT,
	question_count INTEGER NOT NULL,
	source_ip      TEXT,
	user_agent     TEXT,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS questions (
	id         UUID PRIMARY KEY,
	import_id  UUID NOT NULL REFERENCES question_imports(id) ON DELETE CASCADE,
	quiz_id    TEXT,
	position   INTEGER NOT NULL,
	image_url  TEXT NOT NULL DEFAULT '',
	question   TEXT NOT NULL,
	option1    TEXT NOT NULL,
	option2    TEXT NOT NULL,
	option3    TEXT NOT NULL,
	option4    TEXT NOT NULL,
	answer     INTEGER NOT NULL,
	time_limit INTEGER NOT NULL,
	points     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS questions_import_id_idx ON questions (import_id, position);
CREATE INDEX IF NOT EXISTS question_imports_created_at_idx ON question_imports (created_at DESC);
`

// questionColumns is the COPY column order used by questionRows.
var questionColumns = []string{
	"id", "import_id", "quiz_id", "position", "image_url",
	"question", "option1", "option2", "option3", "option4",
	"answer", "time_limit", "points",
}

// Store implements core.Sink on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var _ core.Sink = (*Store)(nil)

// New creates a Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// BulkImport stores every record of a commit in one transaction. Question
// ids are assigned here; either all questions are stored or none.
func (s *Store) BulkImport(ctx context.Context, c core.Commit) error {
	importID, err := uuid.Parse(c.ImportID)
	if err != nil {
		return fmt.Errorf("import id %q: %w", c.ImportID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, BulkImportTimeout)
	defer cancel()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	origin := core.OriginFromContext(ctx)
	_, err = tx.Exec(ctx,
		`INSERT INTO question_imports (id, kind, file_name, quiz_id, question_count, source_ip, user_agent)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pgUUID(importID), string(c.Kind), c.FileName, pgText(c.Target), len(c.Records),
		pgText(origin.IPAddress), pgText(origin.UserAgent),
	)
	if err != nil {
		return describePgError("record import", err)
	}

	n, err := tx.CopyFrom(ctx, pgx.Identifier{"questions"}, questionColumns, pgx.CopyFromRows(questionRows(importID, c, uuid.New)))
	if err != nil {
		return describePgError("copy questions", err)
	}
	if int(n) != len(c.Records) {
		return fmt.Errorf("copy questions: wrote %d of %d rows", n, len(c.Records))
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// questionRows converts a commit to COPY rows in questionColumns order.
func questionRows(importID uuid.UUID, c core.Commit, newID func() uuid.UUID) [][]any {
	rows := make([][]any, len(c.Records))
	for i, rec := range c.Records {
		id := newID()
		if rec.ID != "" {
			if parsed, err := uuid.Parse(rec.ID); err == nil {
				id = parsed
			}
		}
		rows[i] = []any{
			pgUUID(id), pgUUID(importID), pgText(c.Target), int32(i + 1), rec.ImageURL,
			rec.Question, rec.Option1, rec.Option2, rec.Option3, rec.Option4,
			int32(rec.Answer), int32(rec.TimeLimit), int32(rec.Points),
		}
	}
	return rows
}

// ImportSummary is one row of import history.
type ImportSummary struct {
	ID            string          `json:"id"`
	Kind          core.ImportKind `json:"kind"`
	FileName      string          `json:"fileName"`
	QuizID        string          `json:"quizId,omitempty"`
	QuestionCount int             `json:"questionCount"`
	SourceIP      string          `json:"sourceIp,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// ListImports returns the most recent imports, newest first.
func (s *Store) ListImports(ctx context.Context, limit int) ([]ImportSummary, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, kind, file_name, quiz_id, question_count, source_ip, created_at
		 FROM question_imports ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	defer rows.Close()

	var out []ImportSummary
	for rows.Next() {
		var (
			id        pgtype.UUID
			kind      string
			fileName  string
			quizID    pgtype.Text
			count     int32
			sourceIP  pgtype.Text
			createdAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &kind, &fileName, &quizID, &count, &sourceIP, &createdAt); err != nil {
			return nil, fmt.Errorf("scan import: %w", err)
		}
		out = append(out, ImportSummary{
			ID:            uuid.UUID(id.Bytes).String(),
			Kind:          core.ImportKind(kind),
			FileName:      fileName,
			QuizID:        quizID.String,
			QuestionCount: int(count),
			SourceIP:      sourceIP.String,
			CreatedAt:     createdAt.Time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	return out, nil
}

// ImportQuestions returns the stored questions of one import in file order.
func (s *Store) ImportQuestions(ctx context.Context, importID string) ([]core.QuestionRecord, error) {
	id, err := uuid.Parse(importID)
	if err != nil {
		return nil, fmt.Errorf("import not found: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, image_url, question, option1, option2, option3, option4, answer, time_limit, points
		 FROM questions WHERE import_id = $1 ORDER BY position`, pgUUID(id))
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.QuestionRecord, error) {
		var (
			qid                       pgtype.UUID
			rec                       core.QuestionRecord
			answer, timeLimit, points int32
		)
		err := row.Scan(&qid, &rec.ImageURL, &rec.Question, &rec.Option1, &rec.Option2, &rec.Option3, &rec.Option4,
			&answer, &timeLimit, &points)
		rec.ID = uuid.UUID(qid.Bytes).String()
		rec.Answer, rec.TimeLimit, rec.Points = int(answer), int(timeLimit), int(points)
		return rec, err
	})
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return records, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func pgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

// describePgError keeps the constraint detail in the message so the web
// layer can map it to a user-facing code.
func describePgError(op string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch pgErr.Code {
	case "23505":
		return fmt.Errorf("%s: duplicate key (%s): %w", op, pgErr.ConstraintName, err)
	case "23503":
		return fmt.Errorf("%s: violates foreign key (%s): %w", op, pgErr.ConstraintName, err)
	case "40P01":
		return fmt.Errorf("%s: deadlock: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
