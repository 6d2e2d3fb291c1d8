package attempt

import (
	"testing"

	"classquiz/internal/models"
)

func question(id uint, points int, correct []string, wrong []string) models.Question {
	q := models.Question{ID: id, GradePoints: points}
	for _, text := range correct {
		q.Answers = append(q.Answers, models.QuestionAnswer{AnswerText: text, IsCorrect: true})
	}
	for _, text := range wrong {
		q.Answers = append(q.Answers, models.QuestionAnswer{AnswerText: text, IsCorrect: false})
	}
	return q
}

func TestComputeScore(t *testing.T) {
	questions := []models.Question{
		question(1, 5, []string{"A", "C"}, []string{"B", "D"}),
		question(2, 3, []string{"True"}, []string{"False"}),
	}

	tests := []struct {
		name        string
		submitted   []SubmittedAnswer
		wantScore   int
		wantCorrect int
	}{
		{
			name: "exact match",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"A", "C"}},
			},
			wantScore:   5,
			wantCorrect: 1,
		},
		{
			name: "order does not matter",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"C", "A"}},
			},
			wantScore:   5,
			wantCorrect: 1,
		},
		{
			name: "subset scores zero",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"A"}},
			},
			wantScore:   0,
			wantCorrect: 0,
		},
		{
			name: "superset scores zero",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"A", "C", "B"}},
			},
			wantScore:   0,
			wantCorrect: 0,
		},
		{
			name: "duplicate selection is not collapsed",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"A", "A"}},
			},
			wantScore:   0,
			wantCorrect: 0,
		},
		{
			name: "first entry wins for a repeated question",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"B"}},
				{QuestionID: 1, Selected: []string{"A", "C"}},
			},
			wantScore:   0,
			wantCorrect: 0,
		},
		{
			name: "repeated question does not double count",
			submitted: []SubmittedAnswer{
				{QuestionID: 2, Selected: []string{"True"}},
				{QuestionID: 2, Selected: []string{"True"}},
			},
			wantScore:   3,
			wantCorrect: 1,
		},
		{
			name: "unknown question is skipped",
			submitted: []SubmittedAnswer{
				{QuestionID: 99, Selected: []string{"A", "C"}},
				{QuestionID: 2, Selected: []string{"True"}},
			},
			wantScore:   3,
			wantCorrect: 1,
		},
		{
			name: "points accumulate across questions",
			submitted: []SubmittedAnswer{
				{QuestionID: 1, Selected: []string{"A", "C"}},
				{QuestionID: 2, Selected: []string{"True"}},
			},
			wantScore:   8,
			wantCorrect: 2,
		},
		{
			name:        "no submissions",
			submitted:   nil,
			wantScore:   0,
			wantCorrect: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeScore(questions, tt.submitted)
			if got.Score != tt.wantScore {
				t.Errorf("Score = %d, want %d", got.Score, tt.wantScore)
			}
			if got.TotalCorrectAnswers != tt.wantCorrect {
				t.Errorf("TotalCorrectAnswers = %d, want %d", got.TotalCorrectAnswers, tt.wantCorrect)
			}
		})
	}
}

func TestComputeScoreEmptySelection(t *testing.T) {
	// A question whose answers are all wrong has an empty correct set, so an
	// empty selection matches it.
	questions := []models.Question{
		question(1, 2, nil, []string{"A", "B"}),
	}
	got := ComputeScore(questions, []SubmittedAnswer{{QuestionID: 1, Selected: nil}})
	if got.Score != 2 || got.TotalCorrectAnswers != 1 {
		t.Errorf("got %+v, want score 2 with 1 correct", got)
	}
}

func TestComputeScoreDoesNotMutateInputs(t *testing.T) {
	questions := []models.Question{
		question(1, 5, []string{"C", "A"}, nil),
	}
	selected := []string{"C", "A"}
	ComputeScore(questions, []SubmittedAnswer{{QuestionID: 1, Selected: selected}})
	if selected[0] != "C" || selected[1] != "A" {
		t.Errorf("submitted selection was reordered: %v", selected)
	}
}
