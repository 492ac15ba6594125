package syncdoc

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// Confirmer decides whether a question present on Canvas but absent from
// the document should be deleted.
type Confirmer interface {
	ConfirmDelete(question *canvas.Question) (bool, error)
}

// Apply pushes a sync document onto an existing quiz. Sections apply in
// turn: quiz fields, then groups, then questions, then the order list,
// each skipped when the document omits it. Presence is what matters, not
// content: a present-but-empty questions section covers nothing, so every
// existing question is offered for deletion.
//
// A group or question whose document key parses to the id of an object
// already on the quiz is updated in place; any other key creates a new
// object, and later sections referring to that key (a question's
// quiz_group_id, an order entry's id) are rewritten to the id Canvas
// assigned. Questions on the quiz that the document's questions section
// does not cover are offered to the Confirmer for deletion.
//
// A failure aborts at the failing call; everything already pushed stays
// pushed. The returned questions and groups are re-fetched after any push
// so positions reflect the final server state.
func Apply(ctx context.Context, quiz *canvas.Quiz, questions []*canvas.Question, groups []*canvas.QuestionGroup, doc *Document, confirm Confirmer, logger zerolog.Logger) ([]*canvas.Question, []*canvas.QuestionGroup, error) {
	log := logger.With().Str("component", "quiz_patch").Logger()

	if doc.Quiz != nil {
		log.Info().Msg("pushing quiz fields")
		if _, err := quiz.Update(ctx, doc.Quiz); err != nil {
			return nil, nil, fmt.Errorf("update quiz: %w", err)
		}
	}

	existingGroups := make(map[int64]bool, len(groups))
	for _, group := range groups {
		existingGroups[group.ID] = true
	}
	groupsFromFile := make(map[string]*canvas.QuestionGroup, len(doc.Groups))
	if len(doc.Groups) > 0 {
		log.Info().Int("count", len(doc.Groups)).Msg("pushing question groups")
	}
	for _, entry := range doc.Groups {
		var existingID int64
		if id, err := strconv.ParseInt(entry.Key, 10, 64); err == nil && existingGroups[id] {
			existingID = id
		}
		group, err := quiz.UpdateGroup(ctx, existingID, entry.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("push group %q: %w", entry.Key, err)
		}
		groupsFromFile[entry.Key] = group
		existingGroups[group.ID] = true
	}

	existingQuestions := make(map[int64]bool, len(questions))
	for _, question := range questions {
		existingQuestions[question.ID] = true
	}
	questionsFromFile := make(map[string]*canvas.Question, len(doc.Questions))
	updated := make(map[int64]bool, len(doc.Questions))
	if len(doc.Questions) > 0 {
		log.Info().Int("count", len(doc.Questions)).Msg("pushing questions")
	}
	for _, entry := range doc.Questions {
		// Group ids are rewritten only when they are document keys;
		// a numeric id already names a real group.
		if key, ok := entry.Data["quiz_group_id"].(string); ok {
			if group, ok := groupsFromFile[key]; ok {
				entry.Data["quiz_group_id"] = group.ID
			}
		}
		var existingID int64
		if id, err := strconv.ParseInt(entry.Key, 10, 64); err == nil && existingQuestions[id] {
			existingID = id
		}
		FromAlternate(entry.Data)
		question, err := quiz.UpdateQuestion(ctx, existingID, entry.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("push question %q: %w", entry.Key, err)
		}
		if question != nil {
			questionsFromFile[entry.Key] = question
			updated[question.ID] = true
		}
		if existingID != 0 {
			updated[existingID] = true
		}
	}

	if doc.Questions != nil {
		for _, question := range questions {
			if updated[question.ID] {
				continue
			}
			remove, err := confirm.ConfirmDelete(question)
			if err != nil {
				return nil, nil, err
			}
			if !remove {
				continue
			}
			log.Info().Int64("question_id", question.ID).Msg("deleting question")
			if err := quiz.DeleteQuestion(ctx, question.ID); err != nil {
				return nil, nil, fmt.Errorf("delete question %d: %w", question.ID, err)
			}
		}
	}

	if doc.Order != nil {
		log.Info().Int("entries", len(doc.Order)).Msg("pushing question order")
		for i := range doc.Order {
			item := &doc.Order[i]
			key, ok := item.ID.(string)
			if !ok {
				continue
			}
			switch item.Type {
			case "question":
				if question, ok := questionsFromFile[key]; ok {
					item.ID = question.ID
				}
			case "group":
				if group, ok := groupsFromFile[key]; ok {
					item.ID = group.ID
				}
			}
		}
		if err := quiz.Reorder(ctx, doc.Order); err != nil {
			return nil, nil, fmt.Errorf("reorder questions: %w", err)
		}
	}

	if doc.Quiz == nil && doc.Groups == nil && doc.Questions == nil && doc.Order == nil {
		return questions, groups, nil
	}

	log.Info().Msg("refreshing quiz questions")
	return quiz.Questions(ctx, nil)
}
