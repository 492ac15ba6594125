package canvas

import (
	"context"
	"fmt"
)

// Assignment wraps a non-quiz Canvas assignment.
type Assignment struct {
	*Resource
}

func newAssignment(course *Course, data map[string]any) *Assignment {
	return &Assignment{Resource: NewResource(course.Resource, "assignments", data, "", "")}
}

// Rubric fetches the full rubric attached to the assignment, or nil when
// none is attached.
func (a *Assignment) Rubric(ctx context.Context) (map[string]any, error) {
	settings, ok := a.Field("rubric_settings").(map[string]any)
	if !ok {
		return nil, nil
	}
	rubricID := Int64(settings["id"])
	if rubricID == 0 {
		return nil, nil
	}

	course := a.Course()
	pages, err := a.client.Get(ctx, fmt.Sprintf("%s/rubrics/%d?include[]=associations", course.URL(), rubricID), false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNotFound
	}
	return decodeObject(pages[0])
}

// UpdateRubric creates or updates the assignment's rubric, associating it
// for grading with points applied.
func (a *Assignment) UpdateRubric(ctx context.Context, rubric map[string]any) error {
	body := map[string]any{
		"rubric": rubric,
		"rubric_association": map[string]any{
			"association_id":   a.ID(),
			"association_type": "Assignment",
			"use_for_grading":  true,
			"purpose":          "grading",
		},
	}
	_, err := a.client.Post(ctx, a.Course().URL()+"/rubrics", body)
	return err
}

// SendGrade submits a rubric assessment for one student.
func (a *Assignment) SendGrade(ctx context.Context, studentID int64, assessment map[string]any) error {
	body := map[string]any{"rubric_assessment": assessment}
	_, err := a.client.Put(ctx, fmt.Sprintf("%s/submissions/%d", a.URL(), studentID), body)
	return err
}
