package syncdoc

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// CloneOptions controls how a quiz copy differs from its source.
type CloneOptions struct {
	// Practice turns the copy into an open practice quiz: unlimited
	// attempts, no time limit or deadline, answers shown, unlocked from
	// the source's lock time onward.
	Practice bool
	// Published publishes the copy immediately. Off by default so the
	// copy can be reviewed first.
	Published bool
}

// Clone copies a quiz into the same course: the quiz shell first, then its
// question groups, then its questions with group memberships pointing at
// the newly created groups, and finally one reorder call reproducing the
// source ordering. Questions must be the source quiz's assembled questions
// in position order. On failure the partially created copy is left in
// place for inspection.
func Clone(ctx context.Context, course *canvas.Course, source *canvas.Quiz, questions []*canvas.Question, groups []*canvas.QuestionGroup, opts CloneOptions, logger zerolog.Logger) (*canvas.Quiz, error) {
	log := logger.With().Str("component", "quiz_clone").Logger()

	shell := make(map[string]any, len(source.Data()))
	for k, v := range source.Data() {
		if k != "id" {
			shell[k] = v
		}
	}
	if opts.Practice {
		shell["quiz_type"] = "practice_quiz"
		shell["unlock_at"] = shell["lock_at"]
		shell["due_at"] = nil
		shell["lock_at"] = nil
		shell["allowed_attempts"] = -1
		shell["time_limit"] = nil
		shell["show_correct_answers"] = true
		shell["show_correct_answers_at"] = nil
		shell["title"] = canvas.String(shell["title"]) + " (Practice Version)"
	} else {
		shell["title"] = canvas.String(shell["title"]) + " (copy)"
	}
	shell["published"] = opts.Published

	log.Info().Str("title", canvas.String(shell["title"])).Msg("creating quiz copy")
	clone, err := canvas.NewQuiz(course, shell).Update(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("create quiz copy: %w", err)
	}

	byID := make(map[int64]*canvas.QuestionGroup, len(groups))
	idMap := make(map[int64]int64, len(groups))
	log.Info().Int("count", len(groups)).Msg("pushing question groups")
	for _, group := range groups {
		byID[group.ID] = group
		data := make(map[string]any, len(group.Raw))
		for k, v := range group.Raw {
			if k != "id" {
				data[k] = v
			}
		}
		created, err := clone.UpdateGroup(ctx, 0, data)
		if err != nil {
			return nil, fmt.Errorf("create group %q: %w", group.Name, err)
		}
		idMap[group.ID] = created.ID
	}

	var order []canvas.OrderItem
	listed := make(map[int64]bool)
	log.Info().Int("count", len(questions)).Msg("pushing questions")
	for _, question := range questions {
		data := make(map[string]any, len(question.Raw))
		for k, v := range question.Raw {
			if k != "id" {
				data[k] = v
			}
		}
		if newID, ok := idMap[question.GroupID]; ok {
			data["quiz_group_id"] = newID
		}
		created, err := clone.UpdateQuestion(ctx, 0, data)
		if err != nil {
			return nil, fmt.Errorf("create question %q: %w", question.Name(), err)
		}

		if question.GroupID != 0 {
			group := byID[question.GroupID]
			if group != nil && !listed[question.GroupID] {
				listed[question.GroupID] = true
				order = append(order, canvas.OrderItem{
					Type:   "group",
					ID:     idMap[question.GroupID],
					Name:   group.Name,
					Points: group.QuestionPoints,
				})
			}
			continue
		}
		order = append(order, canvas.OrderItem{
			Type:   "question",
			ID:     created.ID,
			Name:   question.Name(),
			Points: question.Points,
		})
	}

	if len(order) > 0 {
		log.Info().Int("entries", len(order)).Msg("restoring question order")
		if err := clone.Reorder(ctx, order); err != nil {
			return nil, fmt.Errorf("reorder questions: %w", err)
		}
	}
	return clone, nil
}
