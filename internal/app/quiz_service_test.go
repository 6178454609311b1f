package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/domain"
	"quiz-rest-service/internal/infra/memory"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
)

func TestRandomQuestionsAreDistinctAndStripped(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 8)
	service := app.NewQuizService(5)

	questions, err := service.RandomQuestions(ctx, store.ForUser(domain.User{ID: aliceID}))
	if err != nil {
		t.Fatalf("random questions: %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("expected 5 questions, got %d", len(questions))
	}

	seen := map[string]bool{}
	for _, question := range questions {
		if seen[question.ID] {
			t.Fatalf("duplicate question id %s in one quiz", question.ID)
		}
		seen[question.ID] = true
	}

	payload, err := json.Marshal(questions)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(payload), "correct_choice") {
		t.Fatalf("quiz payload leaks the answer key: %s", payload)
	}
}

func TestRandomQuestionsPoolTooSmall(t *testing.T) {
	ctx := context.Background()
	service := app.NewQuizService(5)

	empty := memory.NewStore()
	if _, err := service.RandomQuestions(ctx, empty.ForUser(domain.User{ID: aliceID})); !errorsIsNoQuestions(err) {
		t.Fatalf("expected ErrNoQuestions for empty pool, got %v", err)
	}

	small := newSeededStore(t, 3)
	if _, err := service.RandomQuestions(ctx, small.ForUser(domain.User{ID: aliceID})); !errorsIsNoQuestions(err) {
		t.Fatalf("expected ErrNoQuestions for 3-question pool, got %v", err)
	}
}

func TestSubmitScoring(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	service := app.NewQuizService(5)
	scoped := store.ForUser(domain.User{ID: aliceID})

	// q-0 is "2+2?" with correct_choice 1; answer it right, the rest wrong.
	answers := []domain.SubmittedAnswer{
		{QuestionID: "q-0", SelectedChoice: 1},
		{QuestionID: "q-1", SelectedChoice: 0},
		{QuestionID: "q-2", SelectedChoice: 0},
		{QuestionID: "q-3", SelectedChoice: 0},
		{QuestionID: "q-4", SelectedChoice: 0},
	}
	result, err := service.Submit(ctx, scoped, aliceID, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Score != "1 / 5" {
		t.Fatalf("expected score 1 / 5, got %q", result.Score)
	}
	if result.AttemptID == "" {
		t.Fatalf("expected attempt id in result")
	}
	if len(result.Results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(result.Results))
	}
	if !result.Results[0].IsCorrect {
		t.Fatalf("expected q-0 to be correct: %+v", result.Results[0])
	}
	for _, r := range result.Results[1:] {
		if r.IsCorrect {
			t.Fatalf("expected %s to be incorrect", r.QuestionID)
		}
	}

	// Selecting choice 0 on q-0 flips it to incorrect.
	answers[0].SelectedChoice = 0
	result, err = service.Submit(ctx, scoped, aliceID, answers)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if result.Score != "0 / 5" || result.Results[0].IsCorrect {
		t.Fatalf("expected all wrong, got %q %+v", result.Score, result.Results[0])
	}
}

func TestSubmitRequiresExactlyFiveAnswers(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	service := app.NewQuizService(5)
	scoped := store.ForUser(domain.User{ID: aliceID})

	for _, count := range []int{0, 4, 6} {
		answers := make([]domain.SubmittedAnswer, count)
		for i := range answers {
			answers[i] = domain.SubmittedAnswer{QuestionID: fmt.Sprintf("q-%d", i), SelectedChoice: 0}
		}
		if _, err := service.Submit(ctx, scoped, aliceID, answers); err != domain.ErrValidation {
			t.Fatalf("expected validation error for %d answers, got %v", count, err)
		}
	}
}

func TestSubmitUnknownQuestionScoresIncorrect(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	service := app.NewQuizService(5)
	scoped := store.ForUser(domain.User{ID: aliceID})

	answers := []domain.SubmittedAnswer{
		{QuestionID: "q-0", SelectedChoice: 1},
		{QuestionID: "q-1", SelectedChoice: 1},
		{QuestionID: "q-2", SelectedChoice: 1},
		{QuestionID: "q-3", SelectedChoice: 1},
		{QuestionID: "never-existed", SelectedChoice: 1},
	}
	result, err := service.Submit(ctx, scoped, aliceID, answers)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	last := result.Results[4]
	if last.IsCorrect {
		t.Fatalf("unknown question must score incorrect")
	}
	if last.CorrectChoice != nil {
		t.Fatalf("unknown question must not report a correct choice, got %d", *last.CorrectChoice)
	}
	if result.Score != "4 / 5" {
		t.Fatalf("expected 4 / 5, got %q", result.Score)
	}
}

func TestHistoryIsolationBetweenUsers(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	service := app.NewQuizService(5)

	aliceAttempt := submitAll(t, service, store, aliceID)
	bobAttempt := submitAll(t, service, store, bobID)

	aliceHistory, err := service.History(ctx, store.ForUser(domain.User{ID: aliceID}))
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(aliceHistory) != 1 || aliceHistory[0].ID != aliceAttempt {
		t.Fatalf("expected only alice's attempt, got %+v", aliceHistory)
	}
	for _, attempt := range aliceHistory {
		if attempt.ID == bobAttempt {
			t.Fatalf("alice's history contains bob's attempt")
		}
	}
}

func TestHistoryOrderedByFinishDescending(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	scoped := store.ForUser(domain.User{ID: aliceID})

	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i := 0; i < 3; i++ {
		stamp := base.Add(time.Duration(i) * time.Hour)
		service := app.NewQuizServiceWithClock(5, func() time.Time { return stamp })
		result, err := service.Submit(ctx, scoped, aliceID, validAnswers())
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		ids = append(ids, result.AttemptID)
	}

	history, err := app.NewQuizService(5).History(ctx, scoped)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 attempts, got %d", len(history))
	}
	// Most recently finished first.
	if history[0].ID != ids[2] || history[2].ID != ids[0] {
		t.Fatalf("history not ordered newest first: %+v", history)
	}
}

func TestAttemptDetailOwnership(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t, 5)
	service := app.NewQuizService(5)

	attemptID := submitAll(t, service, store, aliceID)

	if _, err := service.AttemptDetail(ctx, store.ForUser(domain.User{ID: bobID}), bobID, attemptID); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden for foreign attempt, got %v", err)
	}
	if _, err := service.AttemptDetail(ctx, store.ForUser(domain.User{ID: bobID}), bobID, "33333333-3333-3333-3333-333333333333"); err != domain.ErrAttemptNotFound {
		t.Fatalf("expected not found for missing attempt, got %v", err)
	}

	details, err := service.AttemptDetail(ctx, store.ForUser(domain.User{ID: aliceID}), aliceID, attemptID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(details) != 5 {
		t.Fatalf("expected 5 answer details, got %d", len(details))
	}
	if details[0].Question.QuestionText == "" || len(details[0].Question.Choices) == 0 {
		t.Fatalf("detail must join the question row: %+v", details[0])
	}
}

func TestExportResolvesChoiceStrings(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	store.SeedQuestions([]domain.Question{
		{ID: "q-capital", QuestionText: "Capital of France?", Choices: []string{"Paris", "London", "Berlin", "Madrid"}, CorrectChoice: 0},
		{ID: "q-1", QuestionText: "f1", Choices: []string{"a", "b"}, CorrectChoice: 0},
		{ID: "q-2", QuestionText: "f2", Choices: []string{"a", "b"}, CorrectChoice: 0},
		{ID: "q-3", QuestionText: "f3", Choices: []string{"a", "b"}, CorrectChoice: 0},
		{ID: "q-4", QuestionText: "f4", Choices: []string{"a", "b"}, CorrectChoice: 0},
	})
	service := app.NewQuizService(5)
	scoped := store.ForUser(domain.User{ID: aliceID})

	result, err := service.Submit(ctx, scoped, aliceID, []domain.SubmittedAnswer{
		{QuestionID: "q-capital", SelectedChoice: 0},
		{QuestionID: "q-1", SelectedChoice: 1},
		{QuestionID: "q-2", SelectedChoice: 1},
		{QuestionID: "q-3", SelectedChoice: 1},
		{QuestionID: "q-4", SelectedChoice: 1},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	export, err := service.Export(ctx, scoped, aliceID, result.AttemptID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if export.AttemptID != result.AttemptID || export.Score != 1 {
		t.Fatalf("unexpected export header: %+v", export)
	}

	var capital *domain.ExportAnswer
	for i := range export.Details {
		if export.Details[i].Question == "Capital of France?" {
			capital = &export.Details[i]
		}
	}
	if capital == nil {
		t.Fatalf("capital question missing from export: %+v", export.Details)
	}
	if capital.YourChoice != "Paris" || capital.CorrectChoice != "Paris" || !capital.IsCorrect {
		t.Fatalf("expected both choices resolved to Paris, got %+v", capital)
	}

	if _, err := service.Export(ctx, store.ForUser(domain.User{ID: bobID}), bobID, result.AttemptID); err != domain.ErrForbidden {
		t.Fatalf("expected forbidden export for foreign attempt, got %v", err)
	}
}

func newSeededStore(t *testing.T, n int) *memory.Store {
	t.Helper()
	store := memory.NewStore()
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		question := domain.Question{
			ID:            fmt.Sprintf("q-%d", i),
			QuestionText:  fmt.Sprintf("question %d", i),
			Choices:       []string{"3", "4", "5", "6"},
			CorrectChoice: 2,
		}
		if i == 0 {
			question.QuestionText = "2+2?"
			question.CorrectChoice = 1
		}
		questions = append(questions, question)
	}
	store.SeedQuestions(questions)
	return store
}

func validAnswers() []domain.SubmittedAnswer {
	answers := make([]domain.SubmittedAnswer, 5)
	for i := range answers {
		answers[i] = domain.SubmittedAnswer{QuestionID: fmt.Sprintf("q-%d", i), SelectedChoice: 0}
	}
	return answers
}

func submitAll(t *testing.T, service *app.QuizService, store *memory.Store, userID string) string {
	t.Helper()
	result, err := service.Submit(context.Background(), store.ForUser(domain.User{ID: userID}), userID, validAnswers())
	if err != nil {
		t.Fatalf("submit for %s: %v", userID, err)
	}
	return result.AttemptID
}

func errorsIsNoQuestions(err error) bool {
	return errors.Is(err, domain.ErrNoQuestions)
}
