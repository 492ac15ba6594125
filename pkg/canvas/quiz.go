package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
)

// Quiz wraps a Canvas quiz and its nested question, group, and submission
// routes.
type Quiz struct {
	*Resource
}

// NewQuiz wraps quiz data under a course. Data without an id describes a
// quiz that does not exist yet; calling Update on it issues a create.
func NewQuiz(course *Course, data map[string]any) *Quiz {
	return &Quiz{Resource: NewResource(course.Resource, "quizzes", data, "", "quiz")}
}

// Update pushes the quiz's held data, creating the quiz on Canvas when it
// has no id yet. Returns the quiz for chaining.
func (q *Quiz) Update(ctx context.Context, data map[string]any) (*Quiz, error) {
	if _, err := q.Resource.Update(ctx, data); err != nil {
		return nil, err
	}
	return q, nil
}

// QuestionGroup is a question group. Its position and per-question point
// value override those of every member question.
type QuestionGroup struct {
	ID             int64
	Name           string
	PickCount      int
	QuestionPoints float64
	Position       int

	// Raw is the full backend payload, kept for round-tripping fields
	// this package does not model.
	Raw map[string]any
}

func groupFromRaw(raw map[string]any) *QuestionGroup {
	return &QuestionGroup{
		ID:             Int64(raw["id"]),
		Name:           String(raw["name"]),
		PickCount:      int(Int64(raw["pick_count"])),
		QuestionPoints: Float64(raw["question_points"]),
		Position:       int(Int64(raw["position"])),
		Raw:            raw,
	}
}

// Question is a quiz question. Position and Points are computed during
// assembly (see Questions), not trusted from the server; Raw keeps the
// full backend payload for round-tripping.
type Question struct {
	ID       int64
	GroupID  int64 // 0 when ungrouped
	Type     string
	Position int
	Points   float64
	Raw      map[string]any
}

// Name returns the question's display name.
func (q *Question) Name() string {
	return String(q.Raw["question_name"])
}

// Text returns the question's body text.
func (q *Question) Text() string {
	return String(q.Raw["question_text"])
}

func questionFromRaw(raw map[string]any) *Question {
	return &Question{
		ID:      Int64(raw["id"]),
		GroupID: Int64(raw["quiz_group_id"]),
		Type:    String(raw["question_type"]),
		Points:  Float64(raw["points_possible"]),
		Raw:     raw,
	}
}

func (q *Question) setPosition(p int) {
	q.Position = p
	q.Raw["position"] = p
}

func (q *Question) setPoints(v float64) {
	q.Points = v
	q.Raw["points_possible"] = v
}

// Group fetches a question group by id. A zero id means "no group", and a
// 404 from Canvas is treated the same way; both return nil without error.
func (q *Quiz) Group(ctx context.Context, groupID int64) (*QuestionGroup, error) {
	if groupID == 0 {
		return nil, nil
	}

	pages, err := q.client.Get(ctx, fmt.Sprintf("%s/groups/%d", q.URL(), groupID), false)
	if err != nil {
		var httpErr *HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if len(pages) == 0 {
		return nil, nil
	}

	raw, err := decodeObject(pages[0])
	if err != nil {
		return nil, err
	}
	return groupFromRaw(raw), nil
}

// UpdateGroup updates the group with the given id, or creates a new group
// when groupID is zero. Group payloads ride in a one-element "quiz_groups"
// array in both directions.
func (q *Quiz) UpdateGroup(ctx context.Context, groupID int64, data map[string]any) (*QuestionGroup, error) {
	var (
		resp map[string]any
		err  error
	)
	body := map[string]any{"quiz_groups": []any{data}}
	if groupID != 0 {
		resp, err = q.client.Put(ctx, fmt.Sprintf("%s/groups/%d", q.URL(), groupID), body)
	} else {
		resp, err = q.client.Post(ctx, q.URL()+"/groups", body)
	}
	if err != nil {
		return nil, err
	}

	groups, ok := resp["quiz_groups"].([]any)
	if !ok || len(groups) == 0 {
		return nil, fmt.Errorf("canvas: malformed quiz_groups response")
	}
	raw, ok := groups[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("canvas: malformed quiz_groups response")
	}
	return groupFromRaw(raw), nil
}

// QuestionFilter decides whether a question id is included in an assembly
// result. Filtering never affects position assignment.
type QuestionFilter func(id int64) bool

// Questions fetches every question in the quiz and resolves the merged
// ordering of groups and ungrouped questions.
//
// Grouped questions take their position and point value from their group;
// group lookups are memoized per distinct group id, including the
// "no group" case. Ungrouped questions are numbered 1..n in arrival order,
// then shifted one slot for each group whose position is at or before
// theirs, so every group occupies a single contiguous slot. The shift
// compounds when several groups precede the same question; groups are
// applied in first-seen order, which makes the result deterministic. A
// question whose group id no longer resolves is treated as ungrouped.
//
// Both sequences are returned in ascending position order. Positions are
// recomputed from scratch on every call, so call it only on freshly
// fetched state.
func (q *Quiz) Questions(ctx context.Context, filter QuestionFilter) ([]*Question, []*QuestionGroup, error) {
	pages, err := q.client.Get(ctx, q.URL()+"/questions?per_page=100", false)
	if err != nil {
		return nil, nil, err
	}

	memo := make(map[int64]*QuestionGroup)
	var seen []int64
	var questions []*Question
	counter := 1

	for _, page := range pages {
		var items []map[string]any
		if err := json.Unmarshal(page, &items); err != nil {
			return nil, nil, fmt.Errorf("decode questions page: %w", err)
		}
		for _, raw := range items {
			question := questionFromRaw(raw)

			group, cached := memo[question.GroupID]
			if !cached {
				group, err = q.Group(ctx, question.GroupID)
				if err != nil {
					return nil, nil, err
				}
				memo[question.GroupID] = group
				if question.GroupID != 0 {
					seen = append(seen, question.GroupID)
				}
			}

			if group != nil {
				question.setPoints(group.QuestionPoints)
				question.setPosition(group.Position)
			} else {
				question.setPosition(counter)
				counter++
			}

			if filter == nil || filter(question.ID) {
				questions = append(questions, question)
			}
		}
	}

	delete(memo, 0)

	groups := make([]*QuestionGroup, 0, len(seen))
	for _, id := range seen {
		group := memo[id]
		if group == nil {
			// unresolved group id; its members were numbered as ungrouped
			continue
		}
		groups = append(groups, group)
		for _, question := range questions {
			if question.GroupID == 0 && question.Position >= group.Position {
				question.setPosition(question.Position + 1)
			}
		}
	}

	sort.SliceStable(questions, func(i, j int) bool { return questions[i].Position < questions[j].Position })
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Position < groups[j].Position })

	q.client.logger.Debug().
		Int("questions", len(questions)).
		Int("groups", len(groups)).
		Msg("assembled quiz questions")
	return questions, groups, nil
}

// UpdateQuestion pushes question data, updating when questionID is nonzero
// and creating otherwise. Answer fields are rewritten to the write shape
// first: Canvas does not accept its own read representation back.
func (q *Quiz) UpdateQuestion(ctx context.Context, questionID int64, data map[string]any) (*Question, error) {
	NormalizeAnswers(data)

	var (
		resp map[string]any
		err  error
	)
	body := map[string]any{"question": data}
	if questionID != 0 {
		resp, err = q.client.Put(ctx, fmt.Sprintf("%s/questions/%d", q.URL(), questionID), body)
	} else {
		resp, err = q.client.Post(ctx, q.URL()+"/questions", body)
	}
	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, nil
	}
	return questionFromRaw(resp), nil
}

// DeleteQuestion removes a question from the quiz.
func (q *Quiz) DeleteQuestion(ctx context.Context, questionID int64) error {
	_, err := q.client.Delete(ctx, fmt.Sprintf("%s/questions/%d", q.URL(), questionID))
	return err
}

// OrderItem is one entry of an explicit quiz ordering: a group or an
// ungrouped question. Grouped questions are never listed individually.
// The id may be a string when the entry still refers to a sync-document
// local key rather than a Canvas id.
type OrderItem struct {
	Type   string `json:"type" validate:"required,oneof=group question"`
	ID     any    `json:"id" validate:"required"`
	Name   string `json:"name,omitempty"`
	Points any    `json:"points,omitempty"`
}

// Reorder pushes an explicit ordering of groups and ungrouped questions.
func (q *Quiz) Reorder(ctx context.Context, items []OrderItem) error {
	_, err := q.client.Post(ctx, q.URL()+"/reorder", map[string]any{"order": items})
	return err
}

// SubmissionOptions controls which associations a submissions fetch asks
// for and whether settings-only placeholder submissions are kept.
type SubmissionOptions struct {
	IncludeUser         bool
	IncludeSubmission   bool
	IncludeHistory      bool
	IncludeSettingsOnly bool
}

// Submissions fetches every quiz submission for the quiz. It returns the
// quiz submissions in page order and, when IncludeSubmission is set, the
// owning assignment submissions keyed by id.
func (q *Quiz) Submissions(ctx context.Context, opts SubmissionOptions) ([]map[string]any, map[int64]map[string]any, error) {
	var include []string
	if opts.IncludeUser {
		include = append(include, "include[]=user")
	}
	if opts.IncludeSubmission {
		include = append(include, "include[]=submission")
	}
	if opts.IncludeHistory {
		include = append(include, "include[]=submission_history")
	}
	path := q.URL() + "/submissions"
	if len(include) > 0 {
		path += "?" + strings.Join(include, "&")
	}

	pages, err := q.client.Get(ctx, path, false)
	if err != nil {
		return nil, nil, err
	}

	var quizSubmissions []map[string]any
	submissions := make(map[int64]map[string]any)
	for _, page := range pages {
		var body struct {
			QuizSubmissions []map[string]any `json:"quiz_submissions"`
			Submissions     []map[string]any `json:"submissions"`
		}
		if err := json.Unmarshal(page, &body); err != nil {
			return nil, nil, fmt.Errorf("decode submissions page: %w", err)
		}
		for _, qs := range body.QuizSubmissions {
			if !opts.IncludeSettingsOnly && String(qs["workflow_state"]) == "settings_only" {
				continue
			}
			quizSubmissions = append(quizSubmissions, qs)
		}
		if opts.IncludeSubmission {
			for _, sub := range body.Submissions {
				submissions[Int64(sub["id"])] = sub
			}
		}
	}
	return quizSubmissions, submissions, nil
}

// SubmissionQuestions fetches the question snapshots attached to one quiz
// submission, keyed by question id.
func (q *Quiz) SubmissionQuestions(ctx context.Context, quizSubmissionID int64) (map[int64]map[string]any, error) {
	pages, err := q.client.Get(ctx, fmt.Sprintf("/quiz_submissions/%d/questions", quizSubmissionID), false)
	if err != nil {
		return nil, err
	}

	questions := make(map[int64]map[string]any)
	for _, page := range pages {
		var body struct {
			QuizSubmissionQuestions []map[string]any `json:"quiz_submission_questions"`
		}
		if err := json.Unmarshal(page, &body); err != nil {
			return nil, fmt.Errorf("decode submission questions page: %w", err)
		}
		for _, question := range body.QuizSubmissionQuestions {
			questions[Int64(question["id"])] = question
		}
	}
	return questions, nil
}

// SendGrade posts a score and comment for one question of one attempt.
// An empty comment is sent as null.
func (q *Quiz) SendGrade(ctx context.Context, quizSubmissionID int64, attempt int, questionID int64, score float64, comment string) error {
	var commentValue any
	if comment != "" {
		commentValue = comment
	}
	body := map[string]any{
		"quiz_submissions": []any{map[string]any{
			"attempt": attempt,
			"questions": map[string]any{
				strconv.FormatInt(questionID, 10): map[string]any{
					"score":   score,
					"comment": commentValue,
				},
			},
		}},
	}
	_, err := q.client.Put(ctx, fmt.Sprintf("%s/submissions/%d", q.URL(), quizSubmissionID), body)
	return err
}
