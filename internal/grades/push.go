package grades

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// Push sends every grade row to its matching quiz submission. Submissions
// are matched to rows through the student's SIS user id and the attempt
// number; a student can have several submissions, and every one with a
// matching attempt receives the grade. Rows for unknown students or
// attempts are skipped with a warning rather than aborting the run.
func Push(ctx context.Context, quiz *canvas.Quiz, rows []Grade, logger zerolog.Logger) error {
	log := logger.With().Str("component", "grade_push").Logger()

	log.Info().Msg("retrieving quiz submissions")
	quizSubmissions, submissions, err := quiz.Submissions(ctx, canvas.SubmissionOptions{
		IncludeUser:       true,
		IncludeSubmission: true,
	})
	if err != nil {
		return fmt.Errorf("fetch submissions: %w", err)
	}

	// Group quiz submissions by the owning student's SIS user id.
	byStudent := make(map[string][]map[string]any)
	for _, qs := range quizSubmissions {
		submission, ok := submissions[canvas.Int64(qs["submission_id"])]
		if !ok {
			continue
		}
		user, ok := submission["user"].(map[string]any)
		if !ok {
			continue
		}
		sis := canvas.String(user["sis_user_id"])
		byStudent[sis] = append(byStudent[sis], qs)
	}
	log.Info().Int("submissions", len(quizSubmissions)).Int("grades", len(rows)).Msg("sending grades")

	for i, row := range rows {
		matched := false
		for _, qs := range byStudent[row.Student] {
			if int(canvas.Int64(qs["attempt"])) != row.Attempt {
				continue
			}
			matched = true
			err := quiz.SendGrade(ctx, canvas.Int64(qs["id"]), row.Attempt, row.QuestionID, row.Score, row.Comments)
			if err != nil {
				return fmt.Errorf("send grade for student %s question %d: %w", row.Student, row.QuestionID, err)
			}
		}
		if !matched {
			log.Warn().Str("student", row.Student).Int("attempt", row.Attempt).Msg("no matching submission")
		}
		log.Debug().Int("sent", i+1).Int("total", len(rows)).Msg("grade sent")
	}
	return nil
}
