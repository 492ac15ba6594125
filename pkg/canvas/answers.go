package canvas

// NormalizeAnswers rewrites a question's answers from the shape Canvas
// returns on reads to the shape its write endpoints accept. The two differ:
// reads expose "html", "left"/"right" and "text"/"weight" fields that
// writes expect under "answer_"-prefixed names, and pushing the read shape
// back silently drops the answer content.
//
// "html" is copied for every question type. Matching questions get
// "left"/"right" moved to "answer_match_left"/"answer_match_right", and
// multiple-dropdowns questions get "weight"/"text" moved to
// "answer_weight"/"answer_text". Moves delete the source field, so the
// rewrite is idempotent. The question map is modified in place.
func NormalizeAnswers(question map[string]any) {
	answers, ok := answerList(question["answers"])
	if !ok {
		return
	}

	qtype := String(question["question_type"])
	for _, answer := range answers {
		if html, ok := answer["html"]; ok {
			answer["answer_html"] = html
		}
		switch qtype {
		case "matching_question":
			moveField(answer, "left", "answer_match_left")
			moveField(answer, "right", "answer_match_right")
		case "multiple_dropdowns_question":
			moveField(answer, "weight", "answer_weight")
			moveField(answer, "text", "answer_text")
		}
	}
}

func moveField(m map[string]any, from, to string) {
	if v, ok := m[from]; ok {
		m[to] = v
		delete(m, from)
	}
}

// answerList accepts both decoding shapes an answers field can arrive in.
func answerList(v any) ([]map[string]any, bool) {
	switch list := v.(type) {
	case []map[string]any:
		return list, true
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, false
			}
			out = append(out, m)
		}
		return out, true
	default:
		return nil, false
	}
}
