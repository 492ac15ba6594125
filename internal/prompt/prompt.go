// Package prompt implements interactive terminal selection and
// confirmation for the quiz tools.
package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// Terminal prompts on an input/output pair, normally stdin and stdout.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
}

// New builds a Terminal reading from in and writing to out.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out}
}

// Select shows a numbered list and reads an index. Bad input re-prompts
// until a valid index arrives.
func (t *Terminal) Select(question string, options []string) (int, error) {
	for i, option := range options {
		fmt.Fprintf(t.out, "%2d: %s\n", i, option)
	}
	for {
		fmt.Fprintf(t.out, "%s ", question)
		line, err := t.in.ReadString('\n')
		if err != nil && line == "" {
			return 0, fmt.Errorf("read selection: %w", err)
		}
		index, convErr := strconv.Atoi(strings.TrimSpace(line))
		if convErr == nil && index >= 0 && index < len(options) {
			return index, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read selection: %w", err)
		}
	}
}

// Confirm asks a yes/no question and re-prompts until it gets one.
func (t *Terminal) Confirm(question string) (bool, error) {
	for {
		fmt.Fprintf(t.out, "%s [y/n]? ", question)
		line, err := t.in.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch answer {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
		if err != nil {
			return false, fmt.Errorf("read confirmation: %w", err)
		}
	}
}

// ConfirmDelete reports whether a question missing from a sync document
// should be deleted from the quiz.
func (t *Terminal) ConfirmDelete(question *canvas.Question) (bool, error) {
	fmt.Fprintf(t.out, "Question %d (%s) not found in JSON file. Text:\n%s\n",
		question.ID, question.Name(), question.Text())
	return t.Confirm("Delete")
}

// SelectCourse resolves a course: by id when one is given, otherwise
// interactively from the caller's available courses.
func (t *Terminal) SelectCourse(ctx context.Context, client *canvas.Client, id int64) (*canvas.Course, error) {
	if id != 0 {
		return client.Course(ctx, id)
	}

	courses, err := client.Courses(ctx)
	if err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, canvas.ErrNotFound
	}
	options := make([]string, len(courses))
	for i, course := range courses {
		options[i] = fmt.Sprintf("%7d - %s", course.IntID(), course.Label())
	}
	index, err := t.Select("Which course?", options)
	if err != nil {
		return nil, err
	}
	return courses[index], nil
}

// SelectQuiz resolves a quiz within a course: by id when one is given,
// otherwise interactively from the course's graded quizzes.
func (t *Terminal) SelectQuiz(ctx context.Context, course *canvas.Course, id int64) (*canvas.Quiz, error) {
	if id != 0 {
		return course.Quiz(ctx, id)
	}

	quizzes, err := course.Quizzes(ctx)
	if err != nil {
		return nil, err
	}
	if len(quizzes) == 0 {
		return nil, canvas.ErrNotFound
	}
	options := make([]string, len(quizzes))
	for i, quiz := range quizzes {
		options[i] = fmt.Sprintf("%7d - %s", quiz.IntID(), canvas.String(quiz.Field("title")))
	}
	index, err := t.Select("Which quiz?", options)
	if err != nil {
		return nil, err
	}
	return quizzes[index], nil
}

// SelectAssignment resolves an assignment within a course: by id when one
// is given, otherwise interactively.
func (t *Terminal) SelectAssignment(ctx context.Context, course *canvas.Course, id int64) (*canvas.Assignment, error) {
	if id != 0 {
		return course.Assignment(ctx, id)
	}

	assignments, err := course.Assignments(ctx)
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, canvas.ErrNotFound
	}
	options := make([]string, len(assignments))
	for i, assignment := range assignments {
		options[i] = fmt.Sprintf("%7d - %s", assignment.IntID(), canvas.String(assignment.Field("name")))
	}
	index, err := t.Select("Which assignment?", options)
	if err != nil {
		return nil, err
	}
	return assignments[index], nil
}
