package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/domain"
)

type questionRow struct {
	bun.BaseModel `bun:"table:quiz_questions"`

	ID            string   `bun:"id,pk"`
	QuestionText  string   `bun:"question_text"`
	Choices       []string `bun:"choices,array"`
	CorrectChoice int      `bun:"correct_choice"`
	OwnerID       *string  `bun:"owner_id"`
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts"`

	ID         string    `bun:"id,pk"`
	UserID     string    `bun:"user_id"`
	Score      int       `bun:"score"`
	StartedAt  time.Time `bun:"started_at"`
	FinishedAt time.Time `bun:"finished_at"`
}

type answerRow struct {
	bun.BaseModel `bun:"table:quiz_answers"`

	ID             string    `bun:"id,pk"`
	AttemptID      string    `bun:"attempt_id"`
	QuestionID     string    `bun:"question_id"`
	SelectedChoice int       `bun:"selected_choice"`
	IsCorrect      bool      `bun:"is_correct"`
	AnsweredAt     time.Time `bun:"answered_at"`
}

// NewDB opens a bun handle over the pgdriver connector.
func NewDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

// Store hands out caller-scoped handles over the quiz tables. Every handle
// runs its queries inside a transaction that sets the caller's JWT claims as
// transaction-local GUCs, so the row-level security policies installed by the
// migrations evaluate as that end user. No shared privileged handle exists.
type Store struct {
	db *bun.DB
}

func NewStore(db *bun.DB) *Store {
	return &Store{db: db}
}

// ForUser returns a handle scoped to one authenticated user.
func (s *Store) ForUser(user domain.User) app.Store {
	return &scopedStore{db: s.db, user: user}
}

// SeedQuestions inserts question rows under the service role, the only role
// the insert policy admits for unowned questions. Used by the seed command.
func (s *Store) SeedQuestions(ctx context.Context, questions []domain.Question) (int, error) {
	scoped := &scopedStore{db: s.db, user: domain.User{Role: "service_role"}}

	var inserted int
	err := scoped.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		count, err := tx.NewSelect().Model((*questionRow)(nil)).Count(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		rows := make([]questionRow, 0, len(questions))
		for _, question := range questions {
			id := question.ID
			if id == "" {
				id = uuid.New().String()
			}
			rows = append(rows, questionRow{
				ID:            id,
				QuestionText:  question.QuestionText,
				Choices:       question.Choices,
				CorrectChoice: question.CorrectChoice,
				OwnerID:       question.OwnerID,
			})
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return err
		}
		inserted = len(rows)
		return nil
	})
	return inserted, err
}

type scopedStore struct {
	db   *bun.DB
	user domain.User
}

// withCaller wraps fn in a transaction whose request.jwt.claim.* settings are
// local to the transaction (set_config third argument true), matching how the
// hosted provider's API gateway presents claims to Postgres.
func (s *scopedStore) withCaller(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	role := s.user.Role
	if role == "" {
		role = "authenticated"
	}
	return s.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT set_config('request.jwt.claim.sub', ?, true),
			        set_config('request.jwt.claim.role', ?, true),
			        set_config('request.jwt.claim.email', ?, true)`,
			s.user.ID, role, s.user.Email,
		); err != nil {
			return fmt.Errorf("set caller claims: %w", err)
		}
		return fn(ctx, tx)
	})
}

func (s *scopedStore) GlobalQuestionIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model((*questionRow)(nil)).
			Column("id").
			Where("owner_id IS NULL").
			Scan(ctx, &ids)
	})
	return ids, err
}

func (s *scopedStore) QuestionsByID(ctx context.Context, ids []string) ([]domain.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return nil, nil
	}

	var rows []questionRow
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Where("id IN (?)", bun.In(valid)).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	questions := make([]domain.Question, 0, len(rows))
	for _, row := range rows {
		questions = append(questions, domain.Question{
			ID:            row.ID,
			QuestionText:  row.QuestionText,
			Choices:       row.Choices,
			CorrectChoice: row.CorrectChoice,
			OwnerID:       row.OwnerID,
		})
	}
	return questions, nil
}

func (s *scopedStore) CreateAttempt(ctx context.Context, attempt domain.Attempt, answers []domain.Answer) error {
	return s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		row := attemptRow{
			ID:         attempt.ID,
			UserID:     attempt.UserID,
			Score:      attempt.Score,
			StartedAt:  attempt.StartedAt,
			FinishedAt: attempt.FinishedAt,
		}
		if _, err := tx.NewInsert().Model(&row).Exec(ctx); err != nil {
			return fmt.Errorf("insert attempt: %w", err)
		}

		rows := make([]answerRow, 0, len(answers))
		for _, answer := range answers {
			rows = append(rows, answerRow{
				ID:             answer.ID,
				AttemptID:      answer.AttemptID,
				QuestionID:     answer.QuestionID,
				SelectedChoice: answer.SelectedChoice,
				IsCorrect:      answer.IsCorrect,
				AnsweredAt:     answer.AnsweredAt,
			})
		}
		if len(rows) > 0 {
			if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
				return fmt.Errorf("insert answers: %w", err)
			}
		}
		return nil
	})
}

func (s *scopedStore) ListAttempts(ctx context.Context) ([]domain.Attempt, error) {
	var rows []attemptRow
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&rows).
			Order("finished_at DESC").
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	attempts := make([]domain.Attempt, 0, len(rows))
	for _, row := range rows {
		attempts = append(attempts, attemptFromRow(row))
	}
	return attempts, nil
}

func (s *scopedStore) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	if uuid.Validate(attemptID) != nil {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}

	var row attemptRow
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewSelect().
			Model(&row).
			Where("id = ?", attemptID).
			Scan(ctx)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, err
	}
	return attemptFromRow(row), nil
}

// AttemptOwner probes attempt existence through the attempt_owner SECURITY
// DEFINER function, which sees past the select policy. Without it a foreign
// attempt would be indistinguishable from a missing one.
func (s *scopedStore) AttemptOwner(ctx context.Context, attemptID string) (string, error) {
	if uuid.Validate(attemptID) != nil {
		return "", domain.ErrAttemptNotFound
	}

	var owner sql.NullString
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		return tx.NewRaw(`SELECT attempt_owner(?)`, attemptID).Scan(ctx, &owner)
	})
	if err != nil {
		return "", err
	}
	if !owner.Valid {
		return "", domain.ErrAttemptNotFound
	}
	return owner.String, nil
}

func (s *scopedStore) AttemptAnswers(ctx context.Context, attemptID string) ([]domain.AnswerDetail, error) {
	if uuid.Validate(attemptID) != nil {
		return nil, domain.ErrAttemptNotFound
	}

	var answers []answerRow
	var questions []questionRow
	err := s.withCaller(ctx, func(ctx context.Context, tx bun.Tx) error {
		if err := tx.NewSelect().
			Model(&answers).
			Where("attempt_id = ?", attemptID).
			Order("answered_at ASC").
			Scan(ctx); err != nil {
			return err
		}
		if len(answers) == 0 {
			return nil
		}

		questionIDs := make([]string, 0, len(answers))
		for _, answer := range answers {
			questionIDs = append(questionIDs, answer.QuestionID)
		}
		return tx.NewSelect().
			Model(&questions).
			Where("id IN (?)", bun.In(questionIDs)).
			Scan(ctx)
	})
	if err != nil {
		return nil, err
	}

	questionsByID := make(map[string]domain.Question, len(questions))
	for _, row := range questions {
		questionsByID[row.ID] = domain.Question{
			ID:            row.ID,
			QuestionText:  row.QuestionText,
			Choices:       row.Choices,
			CorrectChoice: row.CorrectChoice,
			OwnerID:       row.OwnerID,
		}
	}

	details := make([]domain.AnswerDetail, 0, len(answers))
	for _, answer := range answers {
		details = append(details, domain.AnswerDetail{
			ID:             answer.ID,
			SelectedChoice: answer.SelectedChoice,
			IsCorrect:      answer.IsCorrect,
			Question:       questionsByID[answer.QuestionID],
		})
	}
	return details, nil
}

func attemptFromRow(row attemptRow) domain.Attempt {
	return domain.Attempt{
		ID:         row.ID,
		UserID:     row.UserID,
		Score:      row.Score,
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}
}
