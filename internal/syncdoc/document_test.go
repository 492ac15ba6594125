package syncdoc_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ubc-cpsc/canvasgrading/internal/syncdoc"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func TestLoadKeepsEntryOrder(t *testing.T) {
	doc, err := syncdoc.Load(strings.NewReader(`{
		"quiz": {"id": 5, "title": "Midterm"},
		"questions": {
			"beta": {"question_name": "B"},
			"alpha": {"question_name": "A"},
			"42": {"question_name": "existing"}
		}
	}`))
	require.NoError(t, err)

	require.Equal(t, "Midterm", canvas.String(doc.Quiz["title"]))
	require.Len(t, doc.Questions, 3)
	require.Equal(t, "beta", doc.Questions[0].Key)
	require.Equal(t, "alpha", doc.Questions[1].Key)
	require.Equal(t, "42", doc.Questions[2].Key)
}

func TestLoadDistinguishesEmptyFromAbsentSections(t *testing.T) {
	doc, err := syncdoc.Load(strings.NewReader(`{"quiz": {}, "questions": {}, "order": []}`))
	require.NoError(t, err)

	require.NotNil(t, doc.Quiz)
	require.NotNil(t, doc.Questions)
	require.Empty(t, doc.Questions)
	require.NotNil(t, doc.Order)
	require.Nil(t, doc.Groups)
}

func TestLoadRejectsBadOrderEntry(t *testing.T) {
	_, err := syncdoc.Load(strings.NewReader(`{
		"order": [{"type": "banana", "id": 1}]
	}`))
	require.Error(t, err)
}

func TestLoadRejectsOrderEntryWithoutID(t *testing.T) {
	_, err := syncdoc.Load(strings.NewReader(`{
		"order": [{"type": "question"}]
	}`))
	require.Error(t, err)
}

func TestLoadRejectsNonObjectSections(t *testing.T) {
	_, err := syncdoc.Load(strings.NewReader(`{"groups": [1, 2]}`))
	require.Error(t, err)
}

func TestSaveLoadRoundTripPreservesOrder(t *testing.T) {
	doc := &syncdoc.Document{
		Quiz:  map[string]any{"id": float64(5)},
		Order: []canvas.OrderItem{{Type: "question", ID: float64(9)}},
		Groups: []syncdoc.Entry{
			{Key: "z", Data: map[string]any{"name": "Z"}},
			{Key: "a", Data: map[string]any{"name": "A"}},
		},
		Questions: []syncdoc.Entry{
			{Key: "9", Data: map[string]any{"question_name": "Q"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))

	// sections come out as quiz, order, groups, questions
	out := buf.String()
	require.Less(t, strings.Index(out, `"quiz"`), strings.Index(out, `"order"`))
	require.Less(t, strings.Index(out, `"order"`), strings.Index(out, `"groups"`))
	require.Less(t, strings.Index(out, `"groups"`), strings.Index(out, `"questions"`))

	reloaded, err := syncdoc.Load(&buf)
	require.NoError(t, err)
	require.Equal(t, "z", reloaded.Groups[0].Key)
	require.Equal(t, "a", reloaded.Groups[1].Key)
	require.Len(t, reloaded.Order, 1)
}

func TestStripDropsServerDerivedFields(t *testing.T) {
	doc := &syncdoc.Document{
		Quiz: map[string]any{"id": float64(5), "title": "T", "html_url": "https://x"},
		Groups: []syncdoc.Entry{
			{Key: "1", Data: map[string]any{"name": "G", "quiz_id": float64(5)}},
		},
		Questions: []syncdoc.Entry{
			{Key: "2", Data: map[string]any{"question_name": "Q", "assessment_question_id": float64(9)}},
		},
	}

	doc.Strip()

	require.NotContains(t, doc.Quiz, "html_url")
	require.Equal(t, "T", doc.Quiz["title"])
	require.NotContains(t, doc.Groups[0].Data, "quiz_id")
	require.NotContains(t, doc.Questions[0].Data, "assessment_question_id")
	require.Equal(t, "Q", doc.Questions[0].Data["question_name"])
}

func TestAlternateFormatRoundTrip(t *testing.T) {
	question := map[string]any{
		"question_type": "fill_in_multiple_blanks_question",
		"answers": []any{
			map[string]any{"text": "cat", "blank_id": "animal"},
			map[string]any{"text": "kitten", "blank_id": "animal"},
			map[string]any{"text": "blue", "blank_id": "color"},
		},
	}

	syncdoc.ToAlternate(question)
	require.NotContains(t, question, "answers")
	options := question["options"].(map[string]any)
	require.Equal(t, []any{"cat", "kitten"}, options["animal"])
	require.Equal(t, "blue", options["color"])

	syncdoc.FromAlternate(question)
	answers := question["answers"].([]any)
	require.Len(t, answers, 3)
	for _, item := range answers {
		answer := item.(map[string]any)
		require.Equal(t, 100.0, answer["weight"])
	}
}

func TestToAlternateLeavesOtherTypesAlone(t *testing.T) {
	question := map[string]any{
		"question_type": "essay_question",
		"answers":       []any{},
	}
	syncdoc.ToAlternate(question)
	require.Contains(t, question, "answers")
	require.NotContains(t, question, "options")
}

func TestBuildOrderListsEachGroupOnce(t *testing.T) {
	groups := []*canvas.QuestionGroup{
		{ID: 50, Name: "Pool", QuestionPoints: 3, Position: 2},
	}
	questions := []*canvas.Question{
		{ID: 3, Position: 1, Points: 1, Raw: map[string]any{"question_name": "first"}},
		{ID: 1, GroupID: 50, Position: 2, Raw: map[string]any{}},
		{ID: 2, GroupID: 50, Position: 2, Raw: map[string]any{}},
		{ID: 4, Position: 3, Points: 2, Raw: map[string]any{"question_name": "last"}},
	}

	order := syncdoc.BuildOrder(questions, groups)
	require.Len(t, order, 3)
	require.Equal(t, "question", order[0].Type)
	require.Equal(t, int64(3), order[0].ID)
	require.Equal(t, "group", order[1].Type)
	require.Equal(t, int64(50), order[1].ID)
	require.Equal(t, "Pool", order[1].Name)
	require.Equal(t, "question", order[2].Type)
	require.Equal(t, "last", order[2].Name)
}
