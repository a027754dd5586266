package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Schema the repaired model output must satisfy before it is accepted.
// Violations feed the retry loop as parse failures.
const evaluationSchemaJSON = `{
  "type": "object",
  "required": [
    "overall_score",
    "mcq_score_percentage",
    "written_answer_score",
    "technical_rating",
    "strengths",
    "weaknesses",
    "recommendations",
    "result"
  ],
  "properties": {
    "overall_score": {"type": "number", "minimum": 0, "maximum": 100},
    "mcq_score_percentage": {"type": "number", "minimum": 0, "maximum": 100},
    "written_answer_score": {"type": "number", "minimum": 0, "maximum": 10},
    "technical_rating": {"type": "number", "minimum": 0, "maximum": 10},
    "mcq_analysis": {"type": "array"},
    "written_answer_analysis": {"type": "array"},
    "strengths": {"type": "array", "items": {"type": "string"}},
    "weaknesses": {"type": "array", "items": {"type": "string"}},
    "recommendations": {"type": "array", "items": {"type": "string"}},
    "result": {"type": "string"}
  }
}`

var evaluationSchema = jsonschema.MustCompileString("evaluation.schema.json", evaluationSchemaJSON)

var (
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
	bareKeyPattern       = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)\s*:`)
	singleQuotePattern   = regexp.MustCompile(`([:,\[{]\s*)'((?:[^'\\]|\\.)*)'`)
	blankLinePattern     = regexp.MustCompile(`(?:\n[ \t]*)+\n`)
)

// ParseEvaluation extracts a structured result from raw model output. Model
// responses are treated as untrusted text: a markdown fence is stripped, the
// first-'{'-to-last-'}' span is sliced out, common formatting defects are
// repaired inside that span, and the result must then parse strictly and
// satisfy the evaluation schema. Any failure wraps ErrParse so the retry loop
// re-invokes the full model call.
func ParseEvaluation(raw string) (EvaluationResult, error) {
	text := stripCodeFence(raw)

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return EvaluationResult{}, fmt.Errorf("%w: %w", ErrParse, ErrNoJSONObject)
	}

	repaired := repairJSON(text[start : end+1])

	var generic interface{}
	if err := json.Unmarshal([]byte(repaired), &generic); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	if err := evaluationSchema.Validate(generic); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: schema: %v", ErrParse, err)
	}

	var result EvaluationResult
	if err := json.Unmarshal([]byte(repaired), &result); err != nil {
		return EvaluationResult{}, fmt.Errorf("%w: %v", ErrParse, err)
	}

	normalizeResult(&result)
	return result, nil
}

func stripCodeFence(s string) string {
	text := strings.TrimSpace(s)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	if newline := strings.Index(text, "\n"); newline != -1 {
		text = text[newline+1:]
	} else {
		text = strings.TrimPrefix(text, "```")
	}
	text = strings.TrimSpace(text)
	return strings.TrimSpace(strings.TrimSuffix(text, "```"))
}

// repairJSON applies best-effort textual fixes for defects models commonly
// produce. It operates only on the located object span, never the full
// response.
func repairJSON(span string) string {
	repaired := strings.ReplaceAll(span, "\t", "  ")
	repaired = blankLinePattern.ReplaceAllString(repaired, "\n")
	repaired = trailingCommaPattern.ReplaceAllString(repaired, "$1")
	repaired = bareKeyPattern.ReplaceAllString(repaired, `$1"$2":`)
	repaired = singleQuotePattern.ReplaceAllString(repaired, `$1"$2"`)
	return repaired
}

// normalizeResult clamps numeric fields to their documented ranges and
// recomputes the pass/fail token locally. The model is instructed to derive
// result from overall_score but is not trusted to.
func normalizeResult(result *EvaluationResult) {
	result.OverallScore = clamp(result.OverallScore, 0, 100)
	result.MCQScorePercentage = clamp(result.MCQScorePercentage, 0, 100)
	result.WrittenAnswerScore = clamp(result.WrittenAnswerScore, 0, 10)
	result.TechnicalRating = clamp(result.TechnicalRating, 1, 10)
	for i := range result.WrittenAnalysis {
		result.WrittenAnalysis[i].Score = clamp(result.WrittenAnalysis[i].Score, 0, 10)
	}

	if result.Passed() {
		result.Result = ResultPass
	} else {
		result.Result = ResultFail
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
