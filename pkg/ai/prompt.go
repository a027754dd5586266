package ai

import (
	"fmt"
	"strings"
)

const resumeContextLimit = 1000

func evaluatorSystemPrompt() string {
	return "You are an expert technical interviewer and evaluator. Analyze the candidate's responses and return ONLY a valid" +
		" JSON object matching the requested schema. No markdown, no prose outside the JSON."
}

// buildUserPrompt renders the grading prompt: free-text answers with time
// spent, the locally graded MCQ outcomes, and the exact output schema the
// model must fill in. MCQ figures are computed locally and handed to the
// model so it has fewer degrees of freedom.
func buildUserPrompt(input EvaluationInput) string {
	b := &strings.Builder{}

	fmt.Fprintf(b, "Please evaluate this technical interview for a %s position.\n\n", input.TechStack)

	if input.ResumeContext != "" {
		fmt.Fprintf(b, "Resume Context: %s\n\n", truncate(input.ResumeContext, resumeContextLimit))
	} else {
		b.WriteString("No resume provided.\n\n")
	}

	b.WriteString("Candidate Responses (free-text):\n")
	for _, answer := range input.Answers {
		fmt.Fprintf(b, "Question %d (%s):\nQuestion: %s\nAnswer: %s\nTime Spent: %d seconds\n\n",
			answer.QuestionNumber, answer.QuestionType, answer.Question, answer.Answer, answer.TimeSpentSeconds)
	}

	fmt.Fprintf(b, "Multiple-choice results (already graded, %d/%d correct, %.1f%%):\n",
		input.MCQ.Marks, input.MCQ.Total, input.MCQ.Percentage())
	for _, outcome := range input.MCQ.Outcomes {
		marker := "INCORRECT"
		if outcome.IsCorrect {
			marker = "CORRECT"
		}
		fmt.Fprintf(b, "Question %d: %s\nCandidate answered %q, correct answer %q [%s]\n",
			outcome.QuestionNumber, outcome.Question, outcome.UserAnswer, outcome.CorrectAnswer, marker)
	}

	b.WriteString("\nReturn a JSON object with exactly this shape:\n")
	b.WriteString(outputSchemaPrompt(input.MCQ.Percentage()))
	b.WriteString("\nUse the provided mcq_score_percentage verbatim. " +
		"result must be \"Pass\" when overall_score is 60 or above, otherwise \"Fail\". Return JSON only.")

	return b.String()
}

func outputSchemaPrompt(mcqPercentage float64) string {
	return fmt.Sprintf(`{
  "overall_score": number between 0 and 100,
  "mcq_score_percentage": %.1f,
  "written_answer_score": number between 0 and 10,
  "technical_rating": number between 1 and 10,
  "mcq_analysis": [
    {"question_number": number, "question": string, "user_answer": string, "correct_answer": string, "is_correct": boolean, "explanation": string}
  ],
  "written_answer_analysis": [
    {"question_number": number, "question": string, "what_is_correct": string, "what_is_missing": string, "model_answer": string, "score": number between 0 and 10, "feedback": string}
  ],
  "strengths": [string],
  "weaknesses": [string],
  "recommendations": [string],
  "result": "Pass" or "Fail"
}`, mcqPercentage)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
