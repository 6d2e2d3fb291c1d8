package attempt

import (
	"sort"

	"classquiz/internal/models"
)

// SubmittedAnswer pairs a question with the set of answer texts the student
// selected for it. Order of the slice matters only for duplicate question
// entries: the first one wins.
type SubmittedAnswer struct {
	QuestionID uint     `json:"question_id"`
	Selected   []string `json:"selected"`
}

// ScoreResult is the outcome of scoring one attempt.
type ScoreResult struct {
	Score               int
	TotalCorrectAnswers int
}

// ComputeScore grades a batch of submitted selections against the quiz's
// answer key. Pure: neither input is mutated and nothing is persisted.
//
// A question is correct only when the selected texts equal the question's
// correct texts as unordered lists, duplicates included. Questions not in
// the quiz are skipped; repeated entries for a question are ignored after
// the first.
func ComputeScore(questions []models.Question, submitted []SubmittedAnswer) ScoreResult {
	byID := make(map[uint]*models.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	var result ScoreResult
	processed := make(map[uint]bool, len(submitted))

	for _, sub := range submitted {
		if processed[sub.QuestionID] {
			continue
		}
		question, ok := byID[sub.QuestionID]
		if !ok {
			continue
		}
		if equalIgnoreOrder(sub.Selected, question.CorrectAnswerTexts()) {
			result.Score += question.GradePoints
			result.TotalCorrectAnswers++
		}
		processed[sub.QuestionID] = true
	}
	return result
}

// equalIgnoreOrder compares two string lists as multisets: same length and
// same elements after sorting. Duplicates are not collapsed.
func equalIgnoreOrder(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}
