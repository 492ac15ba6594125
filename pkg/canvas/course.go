package canvas

import (
	"context"
	"fmt"
)

// Course is the root scope that owns every other resource.
type Course struct {
	*Resource
}

// NewCourse wraps already-fetched course data in a Course.
func NewCourse(client *Client, data map[string]any) *Course {
	return &Course{Resource: &Resource{
		client:  client,
		route:   "courses",
		idField: "id",
		wrapKey: "course",
		data:    data,
	}}
}

// Label renders "term / course code" for selection listings.
func (co *Course) Label() string {
	term := "NO TERM"
	if t, ok := co.Field("term").(map[string]any); ok {
		if name := String(t["name"]); name != "" {
			term = name
		}
	}
	code := String(co.Field("course_code"))
	if code == "" {
		code = "UNKNOWN COURSE"
	}
	return fmt.Sprintf("%-10s / %s", term, code)
}

// Courses lists the caller's available courses with their enrollment terms.
func (c *Client) Courses(ctx context.Context) ([]*Course, error) {
	pages, err := c.Get(ctx, "/courses?include[]=term&state[]=available", false)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(pages)
	if err != nil {
		return nil, err
	}

	courses := make([]*Course, 0, len(items))
	for _, item := range items {
		courses = append(courses, NewCourse(c, item))
	}
	return courses, nil
}

// Course fetches a single course by id.
func (c *Client) Course(ctx context.Context, id int64) (*Course, error) {
	pages, err := c.Get(ctx, fmt.Sprintf("/courses/%d?include[]=term", id), false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNotFound
	}
	data, err := decodeObject(pages[0])
	if err != nil {
		return nil, err
	}
	return NewCourse(c, data), nil
}

// File fetches file metadata by id.
func (c *Client) File(ctx context.Context, id int64) (map[string]any, error) {
	pages, err := c.Get(ctx, fmt.Sprintf("/files/%d", id), false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNotFound
	}
	return decodeObject(pages[0])
}

// Quizzes lists the course's graded quizzes. Practice quizzes and surveys
// are filtered out.
func (co *Course) Quizzes(ctx context.Context) ([]*Quiz, error) {
	pages, err := co.client.Get(ctx, co.URL()+"/quizzes", false)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(pages)
	if err != nil {
		return nil, err
	}

	var quizzes []*Quiz
	for _, item := range items {
		if String(item["quiz_type"]) != "assignment" {
			continue
		}
		quizzes = append(quizzes, NewQuiz(co, item))
	}
	return quizzes, nil
}

// Quiz fetches a single quiz by id.
func (co *Course) Quiz(ctx context.Context, id int64) (*Quiz, error) {
	pages, err := co.client.Get(ctx, fmt.Sprintf("%s/quizzes/%d", co.URL(), id), false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNotFound
	}
	data, err := decodeObject(pages[0])
	if err != nil {
		return nil, err
	}
	return NewQuiz(co, data), nil
}

// Assignments lists the course's non-quiz assignments.
func (co *Course) Assignments(ctx context.Context) ([]*Assignment, error) {
	pages, err := co.client.Get(ctx, co.URL()+"/assignments", false)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(pages)
	if err != nil {
		return nil, err
	}

	var assignments []*Assignment
	for _, item := range items {
		if hasSubmissionType(item, "online_quiz") {
			continue
		}
		assignments = append(assignments, newAssignment(co, item))
	}
	return assignments, nil
}

// Assignment fetches a single assignment by id.
func (co *Course) Assignment(ctx context.Context, id int64) (*Assignment, error) {
	pages, err := co.client.Get(ctx, fmt.Sprintf("%s/assignments/%d", co.URL(), id), false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNotFound
	}
	data, err := decodeObject(pages[0])
	if err != nil {
		return nil, err
	}
	return newAssignment(co, data), nil
}

// Pages lists the course's wiki pages. Listing responses omit page bodies,
// so every page is fetched individually.
func (co *Course) Pages(ctx context.Context) ([]*Page, error) {
	listing, err := co.client.Get(ctx, co.URL()+"/pages", false)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(listing)
	if err != nil {
		return nil, err
	}

	var pages []*Page
	for _, item := range items {
		result, err := co.client.Get(ctx, fmt.Sprintf("%s/pages/%s", co.URL(), String(item["url"])), false)
		if err != nil {
			return nil, err
		}
		if len(result) != 1 {
			return nil, ErrNotFound
		}
		data, err := decodeObject(result[0])
		if err != nil {
			return nil, err
		}
		pages = append(pages, newPage(co, data))
	}
	return pages, nil
}

// Rubrics lists the course's rubrics with their associations.
func (co *Course) Rubrics(ctx context.Context) ([]map[string]any, error) {
	pages, err := co.client.Get(ctx, co.URL()+"/rubrics?include[]=associations", false)
	if err != nil {
		return nil, err
	}
	return decodeList(pages)
}

// Students lists the enrolled students keyed by SIS user id. Students
// without one are keyed "0".
func (co *Course) Students(ctx context.Context) (map[string]map[string]any, error) {
	pages, err := co.client.Get(ctx, co.URL()+"/users?enrollment_type=student", false)
	if err != nil {
		return nil, err
	}
	items, err := decodeList(pages)
	if err != nil {
		return nil, err
	}

	students := make(map[string]map[string]any, len(items))
	for _, item := range items {
		sis := String(item["sis_user_id"])
		if sis == "" {
			sis = "0"
		}
		students[sis] = item
	}
	return students, nil
}

func hasSubmissionType(item map[string]any, want string) bool {
	types, ok := item["submission_types"].([]any)
	if !ok {
		return false
	}
	for _, t := range types {
		if String(t) == want {
			return true
		}
	}
	return false
}
