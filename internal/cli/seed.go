package cli

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"quiz-rest-service/internal/config"
	"quiz-rest-service/internal/domain"
	"quiz-rest-service/internal/infra/postgres"
)

// NewSeedCmd loads the sample question catalog into Postgres. Seeding is
// skipped when the pool already has rows.
func NewSeedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Seed the question pool with sample questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg); err != nil {
				return err
			}

			db := postgres.NewDB(cfg.Postgres.URL)
			defer db.Close()

			inserted, err := postgres.NewStore(db).SeedQuestions(cmd.Context(), sampleQuestions())
			if err != nil {
				return err
			}
			if inserted == 0 {
				log.Printf("question pool already has data, skipping seed")
				return nil
			}
			log.Printf("seeded %d questions", inserted)
			return nil
		},
	}
}

// sampleQuestions is the demo catalog; it also backs the in-memory store in
// provider-less runs.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{
			QuestionText:  "What is the capital of France?",
			Choices:       []string{"London", "Berlin", "Paris", "Madrid"},
			CorrectChoice: 2,
		},
		{
			QuestionText:  "Which planet is known as the Red Planet?",
			Choices:       []string{"Mars", "Venus", "Jupiter", "Saturn"},
			CorrectChoice: 0,
		},
		{
			QuestionText:  "Who wrote 'Romeo and Juliet'?",
			Choices:       []string{"Charles Dickens", "William Shakespeare", "Mark Twain", "Jane Austen"},
			CorrectChoice: 1,
		},
		{
			QuestionText:  "What is the largest mammal in the world?",
			Choices:       []string{"African Elephant", "Blue Whale", "Giraffe", "Hippopotamus"},
			CorrectChoice: 1,
		},
		{
			QuestionText:  "What is the chemical symbol for Gold?",
			Choices:       []string{"Au", "Ag", "Fe", "Cu"},
			CorrectChoice: 0,
		},
		{
			QuestionText:  "In which year did World War II end?",
			Choices:       []string{"1945", "1939", "1918", "1955"},
			CorrectChoice: 0,
		},
		{
			QuestionText:  "What is the hardest natural substance on Earth?",
			Choices:       []string{"Gold", "Iron", "Diamond", "Platinum"},
			CorrectChoice: 2,
		},
		{
			QuestionText:  "Which programming language is known as the 'language of the web'?",
			Choices:       []string{"Python", "Java", "C++", "JavaScript"},
			CorrectChoice: 3,
		},
	}
}
