package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"quiz-rest-service/internal/domain"
)

// DefaultQuestionsPerQuiz is the fixed quiz length.
const DefaultQuestionsPerQuiz = 5

// Store is a caller-scoped handle over the question and attempt tables.
// Implementations evaluate row-level security as the user the handle was built
// for; the service never sees rows the caller may not read.
type Store interface {
	// GlobalQuestionIDs returns the ids of all questions with no owner.
	GlobalQuestionIDs(ctx context.Context) ([]string, error)
	// QuestionsByID fetches full question rows for the given ids in one read.
	QuestionsByID(ctx context.Context, ids []string) ([]domain.Question, error)
	// CreateAttempt persists an attempt and its answers atomically.
	CreateAttempt(ctx context.Context, attempt domain.Attempt, answers []domain.Answer) error
	// ListAttempts returns the caller's attempts, most recently finished first.
	ListAttempts(ctx context.Context) ([]domain.Attempt, error)
	// GetAttempt returns one of the caller's attempts.
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	// AttemptOwner reports who owns an attempt regardless of row visibility,
	// or domain.ErrAttemptNotFound. It exists so "missing" and "not yours"
	// stay distinguishable under row-level security.
	AttemptOwner(ctx context.Context, attemptID string) (string, error)
	// AttemptAnswers returns the attempt's answers joined to their questions.
	AttemptAnswers(ctx context.Context, attemptID string) ([]domain.AnswerDetail, error)
}

// StoreProvider builds a fresh caller-scoped Store per request. There is no
// shared privileged handle; scoping per end user is what keeps row-level
// security meaningful.
type StoreProvider interface {
	ForUser(user domain.User) Store
}

// QuizService contains the quiz use cases: sampling, submission scoring,
// history reads and export shaping.
type QuizService struct {
	questionsPerQuiz int
	now              func() time.Time
}

func NewQuizService(questionsPerQuiz int) *QuizService {
	if questionsPerQuiz <= 0 {
		questionsPerQuiz = DefaultQuestionsPerQuiz
	}
	return &QuizService{
		questionsPerQuiz: questionsPerQuiz,
		now:              time.Now,
	}
}

// NewQuizServiceWithClock is test-only for deterministic timestamps.
func NewQuizServiceWithClock(questionsPerQuiz int, now func() time.Time) *QuizService {
	s := NewQuizService(questionsPerQuiz)
	s.now = now
	return s
}

// RandomQuestions draws a quiz from the global question pool, uniformly
// without replacement, and strips the answer key from every question.
// A pool that cannot fill a whole quiz is an error: every attempt must
// consist of exactly questionsPerQuiz answers.
func (s *QuizService) RandomQuestions(ctx context.Context, store Store) ([]domain.PublicQuestion, error) {
	ids, err := store.GlobalQuestionIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list question ids: %w", err)
	}
	if len(ids) == 0 {
		return nil, domain.ErrNoQuestions
	}
	if len(ids) < s.questionsPerQuiz {
		return nil, fmt.Errorf("%w: pool has %d questions, need %d", domain.ErrNoQuestions, len(ids), s.questionsPerQuiz)
	}

	selected := sampleWithoutReplacement(ids, s.questionsPerQuiz)
	questions, err := store.QuestionsByID(ctx, selected)
	if err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	public := make([]domain.PublicQuestion, 0, len(questions))
	for _, question := range questions {
		public = append(public, question.Public())
	}
	return public, nil
}

// Submit scores exactly questionsPerQuiz answers against the current question
// rows and persists the attempt with its answers in one transaction before
// returning. Submitted ids that match no question score as incorrect.
func (s *QuizService) Submit(ctx context.Context, store Store, userID string, answers []domain.SubmittedAnswer) (domain.SubmissionResult, error) {
	if len(answers) != s.questionsPerQuiz {
		return domain.SubmissionResult{}, domain.ErrValidation
	}

	questionIDs := make([]string, 0, len(answers))
	for _, answer := range answers {
		questionIDs = append(questionIDs, answer.QuestionID)
	}
	questions, err := store.QuestionsByID(ctx, questionIDs)
	if err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("fetch correct choices: %w", err)
	}
	correctByID := make(map[string]int, len(questions))
	for _, question := range questions {
		correctByID[question.ID] = question.CorrectChoice
	}

	now := s.now().UTC()
	attemptID := uuid.New().String()

	score := 0
	results := make([]domain.AnswerResult, 0, len(answers))
	rows := make([]domain.Answer, 0, len(answers))
	for _, answer := range answers {
		correct, known := correctByID[answer.QuestionID]
		isCorrect := known && answer.SelectedChoice == correct

		if isCorrect {
			score++
		}

		result := domain.AnswerResult{
			QuestionID:     answer.QuestionID,
			IsCorrect:      isCorrect,
			SelectedChoice: answer.SelectedChoice,
		}
		if known {
			correctCopy := correct
			result.CorrectChoice = &correctCopy
		}
		results = append(results, result)

		rows = append(rows, domain.Answer{
			ID:             uuid.New().String(),
			AttemptID:      attemptID,
			QuestionID:     answer.QuestionID,
			SelectedChoice: answer.SelectedChoice,
			IsCorrect:      isCorrect,
			AnsweredAt:     now,
		})
	}

	attempt := domain.Attempt{
		ID:     attemptID,
		UserID: userID,
		Score:  score,
		// Per-question timing is not tracked; both stamps are submission time.
		StartedAt:  now,
		FinishedAt: now,
	}
	if err := store.CreateAttempt(ctx, attempt, rows); err != nil {
		return domain.SubmissionResult{}, fmt.Errorf("persist attempt: %w", err)
	}

	return domain.SubmissionResult{
		Score:     fmt.Sprintf("%d / %d", score, s.questionsPerQuiz),
		Results:   results,
		AttemptID: attemptID,
	}, nil
}

// History lists the caller's attempts, most recently finished first.
func (s *QuizService) History(ctx context.Context, store Store) ([]domain.Attempt, error) {
	attempts, err := store.ListAttempts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// AttemptDetail returns the per-answer review for one attempt. Existence is
// checked before ownership, always in that order, so the two failure modes
// stay deterministic.
func (s *QuizService) AttemptDetail(ctx context.Context, store Store, userID, attemptID string) ([]domain.AnswerDetail, error) {
	if err := s.checkOwnership(ctx, store, userID, attemptID); err != nil {
		return nil, err
	}
	details, err := store.AttemptAnswers(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("fetch attempt answers: %w", err)
	}
	return details, nil
}

// Export shapes one attempt into the downloadable document. Choice indices are
// resolved against the stored choices array at render time; is_correct is the
// flag frozen at submission.
func (s *QuizService) Export(ctx context.Context, store Store, userID, attemptID string) (domain.AttemptExport, error) {
	if err := s.checkOwnership(ctx, store, userID, attemptID); err != nil {
		return domain.AttemptExport{}, err
	}

	attempt, err := store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AttemptExport{}, fmt.Errorf("fetch attempt: %w", err)
	}
	details, err := store.AttemptAnswers(ctx, attemptID)
	if err != nil {
		return domain.AttemptExport{}, fmt.Errorf("fetch attempt answers: %w", err)
	}

	export := domain.AttemptExport{
		AttemptID: attempt.ID,
		Score:     attempt.Score,
		Date:      attempt.FinishedAt,
		Details:   make([]domain.ExportAnswer, 0, len(details)),
	}
	for _, detail := range details {
		export.Details = append(export.Details, domain.ExportAnswer{
			Question:      detail.Question.QuestionText,
			YourChoice:    choiceAt(detail.Question.Choices, detail.SelectedChoice),
			CorrectChoice: choiceAt(detail.Question.Choices, detail.Question.CorrectChoice),
			IsCorrect:     detail.IsCorrect,
		})
	}
	return export, nil
}

func (s *QuizService) checkOwnership(ctx context.Context, store Store, userID, attemptID string) error {
	owner, err := store.AttemptOwner(ctx, attemptID)
	if err != nil {
		return err
	}
	if owner != userID {
		return domain.ErrForbidden
	}
	return nil
}

// sampleWithoutReplacement picks n distinct elements uniformly via a partial
// Fisher-Yates pass over a copy of ids.
func sampleWithoutReplacement(ids []string, n int) []string {
	pool := make([]string, len(ids))
	copy(pool, ids)
	for i := 0; i < n; i++ {
		j := i + rand.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

func choiceAt(choices []string, index int) string {
	if index < 0 || index >= len(choices) {
		return ""
	}
	return choices[index]
}
