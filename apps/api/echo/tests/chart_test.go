package tests

import (
	"bytes"
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"github.com/xuri/excelize/v2"

	"github.com/trezcool/maendeleo/core/chart"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/services/export"
	"github.com/trezcool/maendeleo/tests"
)

func Test_chartApi(t *testing.T) {
	a := setup(t)
	f := a.NewFixture(t)
	classmate := testutil.CreateUser(t, a.Roster, "Classmate", roster.RoleStudent)
	require.NoError(t, a.Roster.AddMember(context.Background(), f.Classroom.ID, classmate.ID))
	trm := testutil.CreateTerm(t, a.TermSvc, f.Classroom.ID, "2021-03-01", "2021-03-19") // 4 weeks

	teacherToken := getToken(t, a.Conf, f.Teacher)
	studentToken := getToken(t, a.Conf, f.Student)
	path := "/v1/terms/" + trm.ID + "/charts"

	for _, req := range []httpTest{
		{method: http.MethodPut, path: "/v1/terms/" + trm.ID + "/goals/1", body: []byte(`{"pages": 10}`), token: teacherToken},
		{method: http.MethodPut, path: "/v1/terms/" + trm.ID + "/goals/3", body: []byte(`{"pages": 30}`), token: teacherToken},
		{method: http.MethodPut, path: "/v1/progress", token: studentToken, body: []byte(
			`{"subject_id": "` + f.Subject.ID + `", "student_id": "` + f.Student.ID + `", "date": "2021-03-09", "page_from": 0, "page_set": 20, "page_done": 14}`,
		)},
	} {
		rec := a.do(req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	tests := []httpTest{
		{name: "no token", method: http.MethodGet, path: path + "/goals", wantCode: http.StatusUnauthorized},
		{name: "unknown term", method: http.MethodGet, path: "/v1/terms/lol/charts/goals", token: teacherToken, wantCode: http.StatusNotFound},
		{name: "student charts a classmate", method: http.MethodGet, path: path + "/progress?student=" + classmate.ID, token: studentToken, wantCode: http.StatusForbidden},
		{name: "teacher charts a teacher", method: http.MethodGet, path: path + "/progress?student=" + f.Teacher.ID, token: teacherToken, wantCode: http.StatusBadRequest},
		{name: "goals", method: http.MethodGet, path: path + "/goals", token: studentToken, wantCode: http.StatusOK, wantData: []byte(`{
			"labels": ["Week 1", "Week 2", "Week 3", "Week 4"],
			"datasets": [{"label": "Goals", "data": [10, 20, 30, null], "fill": false, "borderColor": "#4dc9f6", "backgroundColor": "#4dc9f6", "borderWidth": 2}],
			"options": {"scales": {"yAxes": [{"ticks": {"min": 0, "max": 30, "stepSize": 10}}]}}
		}`)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, a.do(tt))
		})
	}

	t.Run("student defaults to themselves", func(t *testing.T) {
		rec := a.do(httpTest{method: http.MethodGet, path: path + "/progress", token: studentToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var cfg chart.Config
		unmarshall(t, rec.Body.Bytes(), &cfg)
		require.Len(t, cfg.Datasets, 2)
		assert.Equal(t, f.Student.Name, cfg.Datasets[1].Label)
		assert.Equal(t, []null.Float64{{}, null.Float64From(14), null.Float64From(14), null.Float64From(14)}, cfg.Datasets[1].Data)
	})

	t.Run("teacher charts the class", func(t *testing.T) {
		rec := a.do(httpTest{method: http.MethodGet, path: path + "/progress?student=" + f.Student.ID + "&student=" + classmate.ID, token: teacherToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var cfg chart.Config
		unmarshall(t, rec.Body.Bytes(), &cfg)
		require.Len(t, cfg.Datasets, 3)
		assert.Equal(t, "Classmate", cfg.Datasets[2].Label)
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := a.do(httpTest{method: http.MethodGet, path: path + "/goals?format=xlsx", token: teacherToken})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, export.ContentTypeXLSX, rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "goals-"+trm.ID+".xlsx")

		xf, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer func() { _ = xf.Close() }()
		rows, err := xf.GetRows("Chart")
		require.NoError(t, err)
		require.Len(t, rows, 5)
		assert.Equal(t, []string{"Week 1", "10"}, rows[1])
	})
}
