// Package syncdoc reads, writes, and applies quiz sync documents: JSON
// files carrying a quiz, its question groups, its questions, and an
// explicit ordering, used to mirror quiz content between the local
// filesystem and Canvas.
package syncdoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

// documentSchema is checked before anything touches the network, so a
// malformed file fails fast instead of half-applying.
const documentSchema = `{
  "type": "object",
  "properties": {
    "quiz": {"type": "object"},
    "order": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["type", "id"],
        "properties": {
          "type": {"enum": ["group", "question"]},
          "id": {"type": ["integer", "string"]}
        }
      }
    },
    "groups": {"type": "object", "additionalProperties": {"type": "object"}},
    "questions": {"type": "object", "additionalProperties": {"type": "object"}}
  }
}`

var (
	schema   = jsonschema.MustCompileString("syncdoc.json", documentSchema)
	validate = validator.New()
)

// Entry is one keyed element of the groups or questions section. Keys are
// kept as strings: a key that parses to the id of an existing object means
// "update it", anything else means "create". Entry order follows the file.
type Entry struct {
	Key  string
	Data map[string]any
}

// Document is a parsed sync document. A nil section means the file omitted
// it; an empty non-nil section was present and empty, which is not the
// same thing (an empty questions section means "the quiz has no
// questions", not "leave the questions alone").
type Document struct {
	Quiz      map[string]any
	Order     []canvas.OrderItem
	Groups    []Entry
	Questions []Entry
}

// Load parses and validates a sync document. The groups and questions
// sections keep the key order of the file, which is the order entries are
// pushed in. Sections present in the file come back non-nil even when
// empty.
func Load(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read sync document: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("parse sync document: %w", err)
	}
	if err := schema.Validate(generic); err != nil {
		return nil, fmt.Errorf("invalid sync document: %w", err)
	}

	doc := &Document{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	if _, err := dec.Token(); err != nil { // opening brace
		return nil, fmt.Errorf("parse sync document: %w", err)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse sync document: %w", err)
		}
		key, _ := tok.(string)
		switch key {
		case "quiz":
			err = dec.Decode(&doc.Quiz)
		case "order":
			err = dec.Decode(&doc.Order)
		case "groups":
			doc.Groups, err = decodeEntries(dec)
		case "questions":
			doc.Questions, err = decodeEntries(dec)
		default:
			var skip any
			err = dec.Decode(&skip)
		}
		if err != nil {
			return nil, fmt.Errorf("parse %s section: %w", key, err)
		}
	}

	for i, item := range doc.Order {
		if err := validate.Struct(item); err != nil {
			return nil, fmt.Errorf("order entry %d: %w", i, err)
		}
	}
	return doc, nil
}

func decodeEntries(dec *json.Decoder) ([]Entry, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	entries := []Entry{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var data map[string]any
		if err := dec.Decode(&data); err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		entries = append(entries, Entry{Key: key, Data: data})
	}
	_, err = dec.Token() // closing brace
	return entries, err
}

// MarshalJSON writes the document sections as quiz, order, groups,
// questions, with entry keys in held order.
func (d *Document) MarshalJSON() ([]byte, error) {
	quiz := d.Quiz
	if quiz == nil {
		quiz = map[string]any{}
	}
	order := d.Order
	if order == nil {
		order = []canvas.OrderItem{}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	sections := []struct {
		name  string
		value any
	}{
		{"quiz", quiz},
		{"order", order},
		{"groups", entryMap(d.Groups)},
		{"questions", entryMap(d.Questions)},
	}
	for i, section := range sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		fmt.Fprintf(&buf, "%q:", section.name)
		raw, err := json.Marshal(section.value)
		if err != nil {
			return nil, fmt.Errorf("marshal %s section: %w", section.name, err)
		}
		buf.Write(raw)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// entryMap renders entries as a JSON object without losing their order.
type entryMap []Entry

func (e entryMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		data, err := json.Marshal(entry.Data)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", entry.Key, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Save writes the document as indented JSON.
func (d *Document) Save(w io.Writer) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, raw, "", "  "); err != nil {
		return err
	}
	out.WriteByte('\n')
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("write sync document: %w", err)
	}
	return nil
}

// Writable field sets. Anything outside these is server-derived and
// rejected or ignored on update, so Strip removes it.
var (
	quizWriteFields = []string{
		"id", "title", "description", "quiz_type", "assignment_group_id",
		"time_limit", "shuffle_answers", "hide_results",
		"show_correct_answers", "show_correct_answers_at",
		"hide_correct_answers_at", "show_correct_answers_last_attempt",
		"allowed_attempts", "scoring_policy", "one_question_at_a_time",
		"cant_go_back", "access_code", "ip_filter", "due_at", "lock_at",
		"unlock_at", "published", "one_time_results",
		"only_visible_to_overrides",
	}
	groupWriteFields = []string{
		"id", "name", "pick_count", "question_points",
		"assessment_question_bank_id", "position",
	}
	questionWriteFields = []string{
		"id", "question_name", "question_text", "quiz_group_id",
		"question_type", "position", "points_possible", "correct_comments",
		"incorrect_comments", "neutral_comments", "text_after_answers",
		"answers",
	}
)

// Strip reduces every section to its writable field set.
func (d *Document) Strip() {
	d.Quiz = pick(d.Quiz, quizWriteFields)
	for i := range d.Groups {
		d.Groups[i].Data = pick(d.Groups[i].Data, groupWriteFields)
	}
	for i := range d.Questions {
		d.Questions[i].Data = pick(d.Questions[i].Data, questionWriteFields)
	}
}

func pick(m map[string]any, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		if v, ok := m[field]; ok {
			out[field] = v
		}
	}
	return out
}

// ToAlternate rewrites a fill-in-multiple-blanks question's answers into
// the compact "options" form: blank id mapped to its accepted text, or to
// a list of texts when a blank accepts several. Other question types are
// left alone.
func ToAlternate(question map[string]any) {
	if canvas.String(question["question_type"]) != "fill_in_multiple_blanks_question" {
		return
	}
	answers, ok := question["answers"].([]any)
	if !ok {
		return
	}

	options := make(map[string]any)
	for _, item := range answers {
		answer, ok := item.(map[string]any)
		if !ok {
			continue
		}
		blank := canvas.String(answer["blank_id"])
		text := canvas.String(answer["text"])
		switch cur := options[blank].(type) {
		case nil:
			options[blank] = text
		case []any:
			options[blank] = append(cur, text)
		default:
			options[blank] = []any{cur, text}
		}
	}
	question["options"] = options
	delete(question, "answers")
}

// FromAlternate expands the "options" form back into full answers. Every
// accepted text gets weight 100. Questions without options pass through.
func FromAlternate(question map[string]any) {
	options, ok := question["options"].(map[string]any)
	if !ok {
		return
	}
	if canvas.String(question["question_type"]) != "fill_in_multiple_blanks_question" {
		return
	}

	blanks := make([]string, 0, len(options))
	for blank := range options {
		blanks = append(blanks, blank)
	}
	sort.Strings(blanks)

	var answers []any
	for _, blank := range blanks {
		values, ok := options[blank].([]any)
		if !ok {
			values = []any{options[blank]}
		}
		for _, value := range values {
			answers = append(answers, map[string]any{
				"text":     value,
				"weight":   100.0,
				"blank_id": blank,
			})
		}
	}
	question["answers"] = answers
}

// BuildOrder derives the explicit ordering from assembled questions: one
// entry per group at its first occurrence, one entry per ungrouped
// question. Questions must already be in position order.
func BuildOrder(questions []*canvas.Question, groups []*canvas.QuestionGroup) []canvas.OrderItem {
	byID := make(map[int64]*canvas.QuestionGroup, len(groups))
	for _, group := range groups {
		byID[group.ID] = group
	}

	var order []canvas.OrderItem
	listed := make(map[int64]bool)
	for _, question := range questions {
		if question.GroupID != 0 {
			group := byID[question.GroupID]
			if group == nil || listed[group.ID] {
				continue
			}
			listed[group.ID] = true
			order = append(order, canvas.OrderItem{
				Type:   "group",
				ID:     group.ID,
				Name:   group.Name,
				Points: group.QuestionPoints,
			})
			continue
		}
		order = append(order, canvas.OrderItem{
			Type:   "question",
			ID:     question.ID,
			Name:   question.Name(),
			Points: question.Points,
		})
	}
	return order
}

// FromCanvas builds a document from freshly assembled quiz state, keyed by
// Canvas ids.
func FromCanvas(quiz *canvas.Quiz, questions []*canvas.Question, groups []*canvas.QuestionGroup) *Document {
	doc := &Document{
		Quiz:  quiz.Data(),
		Order: BuildOrder(questions, groups),
	}
	for _, group := range groups {
		doc.Groups = append(doc.Groups, Entry{
			Key:  strconv.FormatInt(group.ID, 10),
			Data: group.Raw,
		})
	}
	for _, question := range questions {
		doc.Questions = append(doc.Questions, Entry{
			Key:  strconv.FormatInt(question.ID, 10),
			Data: question.Raw,
		})
	}
	return doc
}
