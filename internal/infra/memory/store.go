package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/domain"
)

// Store keeps questions and attempts in process. It is the provider-less dev
// and test stand-in for the Postgres store: ForUser hands out a view that
// filters rows the way the RLS policies do, so cross-user isolation behaves
// the same in both backends.
type Store struct {
	mu        sync.RWMutex
	questions map[string]domain.Question
	order     []string
	attempts  map[string]domain.Attempt
	answers   map[string][]domain.Answer
}

func NewStore() *Store {
	return &Store{
		questions: make(map[string]domain.Question),
		attempts:  make(map[string]domain.Attempt),
		answers:   make(map[string][]domain.Answer),
	}
}

// SeedQuestions loads question rows, assigning ids where missing.
func (s *Store) SeedQuestions(questions []domain.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, question := range questions {
		if question.ID == "" {
			question.ID = uuid.New().String()
		}
		if _, exists := s.questions[question.ID]; !exists {
			s.order = append(s.order, question.ID)
		}
		s.questions[question.ID] = question
	}
}

// ForUser returns a handle whose reads and writes are scoped to one user.
func (s *Store) ForUser(user domain.User) app.Store {
	return &scopedStore{store: s, userID: user.ID}
}

type scopedStore struct {
	store  *Store
	userID string
}

func (s *scopedStore) GlobalQuestionIDs(_ context.Context) ([]string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	ids := make([]string, 0, len(s.store.order))
	for _, id := range s.store.order {
		if s.store.questions[id].OwnerID == nil {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *scopedStore) QuestionsByID(_ context.Context, ids []string) ([]domain.Question, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	questions := make([]domain.Question, 0, len(ids))
	for _, id := range ids {
		question, ok := s.store.questions[id]
		if !ok {
			continue
		}
		if question.OwnerID != nil && *question.OwnerID != s.userID {
			continue
		}
		questions = append(questions, question)
	}
	return questions, nil
}

func (s *scopedStore) CreateAttempt(_ context.Context, attempt domain.Attempt, answers []domain.Answer) error {
	if attempt.UserID != s.userID {
		return domain.ErrForbidden
	}
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	s.store.attempts[attempt.ID] = attempt
	s.store.answers[attempt.ID] = append([]domain.Answer(nil), answers...)
	return nil
}

func (s *scopedStore) ListAttempts(_ context.Context) ([]domain.Attempt, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	attempts := make([]domain.Attempt, 0)
	for _, attempt := range s.store.attempts {
		if attempt.UserID == s.userID {
			attempts = append(attempts, attempt)
		}
	}
	sort.Slice(attempts, func(i, j int) bool {
		return attempts[i].FinishedAt.After(attempts[j].FinishedAt)
	})
	return attempts, nil
}

func (s *scopedStore) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	attempt, ok := s.store.attempts[attemptID]
	if !ok || attempt.UserID != s.userID {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// AttemptOwner reports ownership regardless of row visibility, mirroring the
// SECURITY DEFINER probe in the Postgres store.
func (s *scopedStore) AttemptOwner(_ context.Context, attemptID string) (string, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	attempt, ok := s.store.attempts[attemptID]
	if !ok {
		return "", domain.ErrAttemptNotFound
	}
	return attempt.UserID, nil
}

func (s *scopedStore) AttemptAnswers(_ context.Context, attemptID string) ([]domain.AnswerDetail, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	attempt, ok := s.store.attempts[attemptID]
	if !ok || attempt.UserID != s.userID {
		return nil, domain.ErrAttemptNotFound
	}
	answers := s.store.answers[attemptID]
	details := make([]domain.AnswerDetail, 0, len(answers))
	for _, answer := range answers {
		details = append(details, domain.AnswerDetail{
			ID:             answer.ID,
			SelectedChoice: answer.SelectedChoice,
			IsCorrect:      answer.IsCorrect,
			Question:       s.store.questions[answer.QuestionID],
		})
	}
	return details, nil
}
