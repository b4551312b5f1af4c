package extract

import (
	"strings"
)

const (
	maxQuestionTextLen = 8000
	maxImages          = 8
)

var validAnswers = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// ValidateQuestion checks an extracted question for validity and
// normalizes it in place. Returns true if the question is usable.
func ValidateQuestion(q *QuestionAnswer) bool {
	if q == nil {
		return false
	}
	q.QuestionNumber = strings.TrimSpace(q.QuestionNumber)
	text := strings.TrimSpace(q.QuestionText)
	if q.QuestionNumber == "" || text == "" {
		return false
	}
	if len(text) > maxQuestionTextLen {
		return false
	}
	q.QuestionText = text

	answer := strings.ToUpper(strings.TrimSpace(q.CorrectAnswer))
	if !validAnswers[answer] {
		return false
	}
	q.CorrectAnswer = answer

	// At least one unit-system solution must be present.
	if q.CustomaryUSSolution == nil && q.SISolution == nil {
		return false
	}

	// Cap image lists.
	if len(q.QuestionImages) > maxImages {
		q.QuestionImages = q.QuestionImages[:maxImages]
	}
	for _, sol := range []*Solution{q.CustomaryUSSolution, q.SISolution} {
		if sol != nil && len(sol.Images) > maxImages {
			sol.Images = sol.Images[:maxImages]
		}
	}

	return true
}

// ValidQuestions filters a chapter's question list down to the usable
// entries, preserving order.
func ValidQuestions(qa *ChapterQA) []QuestionAnswer {
	if qa == nil {
		return nil
	}
	out := make([]QuestionAnswer, 0, len(qa.Questions))
	for i := range qa.Questions {
		if ValidateQuestion(&qa.Questions[i]) {
			out = append(out, qa.Questions[i])
		}
	}
	return out
}
