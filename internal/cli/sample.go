package cli

import "quiz-runner/internal/domain"

// sampleQuestionSet is served when quiz.source is static. It mixes indexed
// and keyed options.
func sampleQuestionSet() domain.QuestionSet {
	return domain.QuestionSet{
		ID:    "sample",
		Title: "General knowledge",
		Questions: []domain.Question{
			{
				ID:            1,
				Prompt:        "What is 2 + 2?",
				Options:       domain.Indexed("3", "4", "5", "22"),
				CorrectAnswer: domain.IndexChoice(1),
			},
			{
				ID:     2,
				Prompt: "Which planet is known as the Red Planet?",
				Options: domain.Keyed(
					domain.KeyedOption{Key: "a", Text: "Venus"},
					domain.KeyedOption{Key: "b", Text: "Mars"},
					domain.KeyedOption{Key: "c", Text: "Jupiter"},
				),
				CorrectAnswer: domain.KeyChoice("b"),
				Explanation:   "Iron oxide on its surface gives Mars its color.",
			},
			{
				ID:            3,
				Prompt:        "Which language is the Go runtime mostly written in?",
				Options:       domain.Indexed("C", "Go", "Rust"),
				CorrectAnswer: domain.IndexChoice(1),
			},
			{
				ID:     4,
				Prompt: "What is the chemical symbol for gold?",
				Options: domain.Keyed(
					domain.KeyedOption{Key: "ag", Text: "Ag"},
					domain.KeyedOption{Key: "au", Text: "Au"},
					domain.KeyedOption{Key: "gd", Text: "Gd"},
				),
				CorrectAnswer: domain.KeyChoice("au"),
			},
			{
				ID:            5,
				Prompt:        "How many continents are there?",
				Options:       domain.Indexed("5", "6", "7"),
				CorrectAnswer: domain.IndexChoice(2),
			},
		},
	}
}
