// Package grades loads question grades from CSV and pushes them onto quiz
// submissions.
package grades

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Grade is one graded question attempt for one student. Student is the SIS
// user id, not the Canvas user id.
type Grade struct {
	QuestionID int64
	Student    string
	Attempt    int
	Score      float64
	Comments   string
}

var requiredColumns = []string{"Question", "Student", "Attempt", "Grade", "Comments"}

// LoadCSV reads a grade sheet. The header must carry at least the columns
// Question, Student, Attempt, Grade, and Comments; anything else is
// ignored.
func LoadCSV(r io.Reader) ([]Grade, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read grade sheet header: %w", err)
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("grade sheet must contain at least the following columns: Question,Student,Attempt,Grade,Comments")
		}
	}

	var out []Grade
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read grade sheet line %d: %w", line, err)
		}

		field := func(name string) string {
			i := columns[name]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}
		questionID, err := strconv.ParseInt(field("Question"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("grade sheet line %d: bad question id %q", line, field("Question"))
		}
		attempt, err := strconv.Atoi(field("Attempt"))
		if err != nil {
			return nil, fmt.Errorf("grade sheet line %d: bad attempt %q", line, field("Attempt"))
		}
		score, err := strconv.ParseFloat(field("Grade"), 64)
		if err != nil {
			return nil, fmt.Errorf("grade sheet line %d: bad grade %q", line, field("Grade"))
		}

		out = append(out, Grade{
			QuestionID: questionID,
			Student:    field("Student"),
			Attempt:    attempt,
			Score:      score,
			Comments:   field("Comments"),
		})
	}
	return out, nil
}
