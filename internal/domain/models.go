package domain

import "time"

// User is the identity extracted from a validated bearer token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Question is the full question row, including the answer key.
// Only stores and the scorer ever see CorrectChoice.
type Question struct {
	ID            string   `json:"id"`
	QuestionText  string   `json:"question_text"`
	Choices       []string `json:"choices"`
	CorrectChoice int      `json:"correct_choice"`
	OwnerID       *string  `json:"owner_id,omitempty"`
}

// PublicQuestion is a question as handed to quiz takers: no correct_choice.
type PublicQuestion struct {
	ID           string   `json:"id"`
	QuestionText string   `json:"question_text"`
	Choices      []string `json:"choices"`
}

// Public strips the answer-revealing field from a question.
func (q Question) Public() PublicQuestion {
	return PublicQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		Choices:      q.Choices,
	}
}

// SubmittedAnswer is one answer in a submission payload.
type SubmittedAnswer struct {
	QuestionID     string `json:"question_id"`
	SelectedChoice int    `json:"selected_choice"`
}

// AnswerResult reports the outcome for a single submitted answer.
// CorrectChoice is nil when the submitted question id matched no question.
type AnswerResult struct {
	QuestionID     string `json:"question_id"`
	IsCorrect      bool   `json:"is_correct"`
	CorrectChoice  *int   `json:"correct_choice,omitempty"`
	SelectedChoice int    `json:"selected_choice"`
}

// SubmissionResult is the full response to a scored submission.
type SubmissionResult struct {
	Score     string         `json:"score"`
	Results   []AnswerResult `json:"results"`
	AttemptID string         `json:"attemptId"`
}

// Attempt is one completed run of a quiz by one user. Immutable after creation.
type Attempt struct {
	ID         string    `json:"id"`
	UserID     string    `json:"-"`
	Score      int       `json:"score"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Answer is one persisted answer row within an attempt. IsCorrect is frozen at
// submission time and never recomputed.
type Answer struct {
	ID             string    `json:"id"`
	AttemptID      string    `json:"-"`
	QuestionID     string    `json:"question_id"`
	SelectedChoice int       `json:"selected_choice"`
	IsCorrect      bool      `json:"is_correct"`
	AnsweredAt     time.Time `json:"answered_at"`
}

// AnswerDetail joins a persisted answer to its question for the review screen.
type AnswerDetail struct {
	ID             string   `json:"id"`
	SelectedChoice int      `json:"selected_choice"`
	IsCorrect      bool     `json:"is_correct"`
	Question       Question `json:"question"`
}

// ExportAnswer resolves stored choice indices into human-readable strings.
type ExportAnswer struct {
	Question      string `json:"question"`
	YourChoice    string `json:"your_choice"`
	CorrectChoice string `json:"correct_choice"`
	IsCorrect     bool   `json:"is_correct"`
}

// AttemptExport is the downloadable document for one attempt.
type AttemptExport struct {
	AttemptID string         `json:"attempt_id"`
	Score     int            `json:"score"`
	Date      time.Time      `json:"date"`
	Details   []ExportAnswer `json:"details"`
}
