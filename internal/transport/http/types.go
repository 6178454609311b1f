package http

import "quiz-rest-service/internal/domain"

type submitRequest struct {
	Answers []domain.SubmittedAnswer `json:"answers"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type versionResponse struct {
	Version  string   `json:"version"`
	Features []string `json:"features"`
}
