package canvas_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func newTestCourse(t *testing.T, handler http.Handler) *canvas.Course {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := canvas.New(canvas.Config{BaseURL: srv.URL, Token: "secret"}, zerolog.Nop())
	require.NoError(t, err)
	return canvas.NewCourse(client, map[string]any{"id": float64(1)})
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
	return body
}

func TestUpdateCreatesWhenIdentifierAbsent(t *testing.T) {
	var method, path string
	var body map[string]any
	course := newTestCourse(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body = decodeBody(t, r)
		w.Write([]byte(`{"id": 42, "title": "new quiz"}`))
	}))

	quiz, err := canvas.NewQuiz(course, map[string]any{"title": "new quiz"}).Update(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "/courses/1/quizzes", path)

	// creates wrap the payload under the route name
	payload, ok := body["quizzes"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "new quiz", payload["title"])

	require.Equal(t, int64(42), quiz.IntID())
	require.Equal(t, "/courses/1/quizzes/42", quiz.URL())
}

func TestUpdateModifiesWhenIdentifierPresent(t *testing.T) {
	var method, path string
	var body map[string]any
	course := newTestCourse(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		body = decodeBody(t, r)
		w.Write([]byte(`{"id": 7, "title": "renamed"}`))
	}))

	quiz := canvas.NewQuiz(course, map[string]any{"id": float64(7), "title": "old"})
	quiz, err := quiz.Update(context.Background(), map[string]any{"id": float64(7), "title": "renamed"})
	require.NoError(t, err)
	require.Equal(t, http.MethodPut, method)
	require.Equal(t, "/courses/1/quizzes/7", path)

	// updates wrap the payload under the singular wrap key
	payload, ok := body["quiz"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "renamed", payload["title"])
	require.Equal(t, "renamed", canvas.String(quiz.Field("title")))
}

func TestUpdateFailureLeavesIdentifierUntouched(t *testing.T) {
	course := newTestCourse(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))

	quiz := canvas.NewQuiz(course, map[string]any{"title": "doomed"})
	_, err := quiz.Update(context.Background(), nil)
	require.Error(t, err)
	require.Nil(t, quiz.ID())
}

func TestCourseWalksParentChain(t *testing.T) {
	course := newTestCourse(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	quiz := canvas.NewQuiz(course, map[string]any{"id": float64(3)})

	require.Equal(t, int64(1), quiz.Course().IntID())
}

func TestPageIdentifierIsSlug(t *testing.T) {
	var path string
	var body map[string]any
	course := newTestCourse(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			switch r.URL.Path {
			case "/courses/1/pages":
				w.Write([]byte(`[{"url": "syllabus"}]`))
			default:
				w.Write([]byte(`{"url": "syllabus", "body": "<p>hi</p>"}`))
			}
			return
		}
		path = r.URL.Path
		body = decodeBody(t, r)
		w.Write([]byte(`{"url": "syllabus", "body": "<p>bye</p>"}`))
	}))

	pages, err := course.Pages(context.Background())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	require.Equal(t, "syllabus", pages[0].ID())

	_, err = pages[0].Update(context.Background(), map[string]any{"url": "syllabus", "body": "<p>bye</p>"})
	require.NoError(t, err)
	require.Equal(t, "/courses/1/pages/syllabus", path)
	_, ok := body["wiki_page"]
	require.True(t, ok)
}

func TestCoercionHelpers(t *testing.T) {
	require.Equal(t, int64(5), canvas.Int64(float64(5)))
	require.Equal(t, int64(5), canvas.Int64("5"))
	require.Equal(t, int64(0), canvas.Int64(nil))
	require.Equal(t, 2.5, canvas.Float64(2.5))
	require.Equal(t, "x", canvas.String("x"))
	require.Equal(t, "", canvas.String(12))
}
