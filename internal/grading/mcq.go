package grading

import "github.com/noah-isme/intervue-api/internal/models"

// CorrectAnswerNotFound marks a graded response whose question id is missing
// from the question bank. Such responses score zero but stay in the detail
// list for audit.
const CorrectAnswerNotFound = "Not found"

// MCQDetail is the per-question grading record produced for every MCQ
// response, in submission order. Both answers are normalized symbols.
type MCQDetail struct {
	QuestionNumber int      `json:"question_number"`
	QuestionID     uint     `json:"question_id"`
	Question       string   `json:"question"`
	UserAnswer     string   `json:"user_answer"`
	CorrectAnswer  string   `json:"correct_answer"`
	IsCorrect      bool     `json:"is_correct"`
	Options        []string `json:"options,omitempty"`
}

// GradeMCQ compares the MCQ responses against the question bank and returns
// the number of correct answers plus an ordered detail record per response.
// Pure function: no side effects, detail order mirrors submission order.
func GradeMCQ(responses []models.Response, questions []models.Question) (int, []MCQDetail) {
	bank := make(map[uint]models.Question, len(questions))
	for _, question := range questions {
		if question.IsMCQ() {
			bank[question.ID] = question
		}
	}

	marks := 0
	details := make([]MCQDetail, 0, len(responses))
	number := 0

	for _, response := range responses {
		if response.QuestionType != models.QuestionTypeMCQ {
			continue
		}
		number++

		detail := MCQDetail{
			QuestionNumber: number,
			QuestionID:     response.QuestionID,
			Question:       response.QuestionText,
			UserAnswer:     NormalizeAnswer(response.Answer),
			CorrectAnswer:  CorrectAnswerNotFound,
		}

		if question, ok := bank[response.QuestionID]; ok {
			detail.CorrectAnswer = NormalizeAnswer(question.CorrectAnswer)
			detail.Options = question.Options()
			if detail.Question == "" {
				detail.Question = question.Text
			}
			if detail.UserAnswer == detail.CorrectAnswer {
				detail.IsCorrect = true
				marks++
			}
		}

		details = append(details, detail)
	}

	return marks, details
}
