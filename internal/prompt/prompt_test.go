package prompt_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ubc-cpsc/canvasgrading/internal/prompt"
	"github.com/ubc-cpsc/canvasgrading/pkg/canvas"
)

func TestSelectShowsOptionsAndReadsIndex(t *testing.T) {
	var out bytes.Buffer
	term := prompt.New(strings.NewReader("1\n"), &out)

	index, err := term.Select("Which course?", []string{"CPSC 110", "CPSC 210"})
	require.NoError(t, err)
	require.Equal(t, 1, index)
	require.Contains(t, out.String(), " 0: CPSC 110")
	require.Contains(t, out.String(), " 1: CPSC 210")
}

func TestSelectRepromptsOnBadInput(t *testing.T) {
	var out bytes.Buffer
	term := prompt.New(strings.NewReader("nope\n7\n0\n"), &out)

	index, err := term.Select("Which quiz?", []string{"only"})
	require.NoError(t, err)
	require.Equal(t, 0, index)
	require.Equal(t, 3, strings.Count(out.String(), "Which quiz?"))
}

func TestSelectFailsWhenInputEnds(t *testing.T) {
	term := prompt.New(strings.NewReader(""), new(bytes.Buffer))
	_, err := term.Select("Which quiz?", []string{"only"})
	require.Error(t, err)
}

func TestConfirmRepromptsUntilYesOrNo(t *testing.T) {
	var out bytes.Buffer
	term := prompt.New(strings.NewReader("maybe\nY\n"), &out)

	ok, err := term.Confirm("Delete")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, strings.Count(out.String(), "Delete [y/n]?"))
}

func TestConfirmNo(t *testing.T) {
	term := prompt.New(strings.NewReader("n\n"), new(bytes.Buffer))
	ok, err := term.Confirm("Delete")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestConfirmDeleteShowsQuestionText(t *testing.T) {
	var out bytes.Buffer
	term := prompt.New(strings.NewReader("y\n"), &out)

	question := &canvas.Question{ID: 7, Raw: map[string]any{
		"question_name": "Sorting",
		"question_text": "What is the complexity of merge sort?",
	}}
	ok, err := term.ConfirmDelete(question)
	require.NoError(t, err)
	require.True(t, ok)
	require.Contains(t, out.String(), "Question 7 (Sorting)")
	require.Contains(t, out.String(), "merge sort")
}
