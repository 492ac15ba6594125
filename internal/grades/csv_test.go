package grades_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ubc-cpsc/canvasgrading/internal/grades"
)

func TestLoadCSVParsesRows(t *testing.T) {
	rows, err := grades.LoadCSV(strings.NewReader(
		"Question,Student,Attempt,Grade,Comments\n" +
			"12,11223344,1,1.5,partial credit\n" +
			"12,55667788,2,2,\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, int64(12), rows[0].QuestionID)
	require.Equal(t, "11223344", rows[0].Student)
	require.Equal(t, 1, rows[0].Attempt)
	require.Equal(t, 1.5, rows[0].Score)
	require.Equal(t, "partial credit", rows[0].Comments)
	require.Equal(t, "", rows[1].Comments)
}

func TestLoadCSVIgnoresExtraColumns(t *testing.T) {
	rows, err := grades.LoadCSV(strings.NewReader(
		"Student,Section,Question,Attempt,Grade,Comments\n" +
			"11223344,101,12,1,3,ok\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "11223344", rows[0].Student)
	require.Equal(t, 3.0, rows[0].Score)
}

func TestLoadCSVRequiresAllColumns(t *testing.T) {
	_, err := grades.LoadCSV(strings.NewReader(
		"Question,Student,Grade\n12,11223344,1\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "Question,Student,Attempt,Grade,Comments")
}

func TestLoadCSVRejectsBadGrade(t *testing.T) {
	_, err := grades.LoadCSV(strings.NewReader(
		"Question,Student,Attempt,Grade,Comments\n12,11223344,1,abc,\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "line 2")
}
