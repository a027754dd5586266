// Package ai wraps the external grading model: prompt construction, the
// Mistral chat-completion client, response parsing/repair, and bounded retry.
package ai

import (
	"context"
	"errors"
	"fmt"
)

// FreeTextAnswer is one short or long form response to grade qualitatively.
type FreeTextAnswer struct {
	QuestionNumber   int    `json:"question_number"`
	QuestionType     string `json:"question_type"`
	Question         string `json:"question"`
	Answer           string `json:"answer"`
	TimeSpentSeconds int    `json:"time_spent"`
}

// MCQOutcome is the locally graded result for one multiple-choice question,
// supplied to the model as context rather than left for it to re-derive.
type MCQOutcome struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	UserAnswer     string `json:"user_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
}

// MCQContext bundles the deterministic MCQ results embedded in the prompt.
type MCQContext struct {
	Marks    int          `json:"marks"`
	Total    int          `json:"total"`
	Outcomes []MCQOutcome `json:"outcomes"`
}

// Percentage returns the MCQ score as a 0-100 percentage.
func (c MCQContext) Percentage() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Marks) / float64(c.Total) * 100
}

// EvaluationInput contains everything needed to grade one interview session.
type EvaluationInput struct {
	TechStack     string
	ResumeContext string
	Answers       []FreeTextAnswer
	MCQ           MCQContext
}

// MCQAnalysis is the model's commentary on one multiple-choice question.
type MCQAnalysis struct {
	QuestionNumber int    `json:"question_number"`
	Question       string `json:"question"`
	UserAnswer     string `json:"user_answer"`
	CorrectAnswer  string `json:"correct_answer"`
	IsCorrect      bool   `json:"is_correct"`
	Explanation    string `json:"explanation"`
}

// WrittenAnalysis is the model's per-answer assessment of a free-text response.
type WrittenAnalysis struct {
	QuestionNumber int     `json:"question_number"`
	Question       string  `json:"question"`
	WhatIsCorrect  string  `json:"what_is_correct"`
	WhatIsMissing  string  `json:"what_is_missing"`
	ModelAnswer    string  `json:"model_answer"`
	Score          float64 `json:"score"`
	Feedback       string  `json:"feedback"`
}

// Pass/fail result tokens. A session passes iff the overall score is >= 60.
const (
	ResultPass = "Pass"
	ResultFail = "Fail"

	passThreshold = 60.0
)

// EvaluationResult is the structured grading outcome for a session.
type EvaluationResult struct {
	OverallScore       float64           `json:"overall_score"`
	MCQScorePercentage float64           `json:"mcq_score_percentage"`
	WrittenAnswerScore float64           `json:"written_answer_score"`
	TechnicalRating    float64           `json:"technical_rating"`
	MCQAnalysis        []MCQAnalysis     `json:"mcq_analysis,omitempty"`
	WrittenAnalysis    []WrittenAnalysis `json:"written_answer_analysis,omitempty"`
	Strengths          []string          `json:"strengths"`
	Weaknesses         []string          `json:"weaknesses"`
	Recommendations    []string          `json:"recommendations"`
	Result             string            `json:"result"`

	// Note is set locally on synthesized provisional results ("processing"
	// placeholder); the model never produces it.
	Note string `json:"note,omitempty"`
}

// Passed reports whether the overall score clears the pass threshold.
func (r EvaluationResult) Passed() bool {
	return r.OverallScore >= passThreshold
}

// Evaluator grades an interview session through an external model.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}

// ErrNoJSONObject indicates the model output contained no '{' ... '}' span.
var ErrNoJSONObject = errors.New("no json object in model output")

// ErrParse indicates the model output could not be parsed even after repair.
// Parse failures are evaluator failures: the caller re-invokes the full model
// call rather than re-parsing.
var ErrParse = errors.New("malformed evaluation response")

// EvaluationError aggregates a retry loop that exhausted all attempts.
type EvaluationError struct {
	Attempts int
	Last     error
}

func (e *EvaluationError) Error() string {
	return fmt.Sprintf("evaluation failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *EvaluationError) Unwrap() error {
	return e.Last
}
