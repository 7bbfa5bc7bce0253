package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/core/term"
	"github.com/trezcool/maendeleo/tests"
)

func Test_termApi_create(t *testing.T) {
	a := setup(t)
	f := a.NewFixture(t)
	outsider := testutil.CreateUser(t, a.Roster, "Outsider", roster.RoleTeacher)
	testutil.CreateTerm(t, a.TermSvc, f.Classroom.ID, "2021-01-04", "2021-03-26")

	path := "/v1/classrooms/" + f.Classroom.ID + "/terms"
	teacherToken := getToken(t, a.Conf, f.Teacher)
	overlap := []byte(`{"start": "2021-03-01", "end": "2021-04-30"}`)

	tests := []httpTest{
		{name: "no token", method: http.MethodPost, path: path, body: overlap, wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{name: "student", method: http.MethodPost, path: path, body: overlap, token: getToken(t, a.Conf, f.Student), wantCode: http.StatusForbidden},
		{name: "outsider", method: http.MethodPost, path: path, body: overlap, token: getToken(t, a.Conf, outsider), wantCode: http.StatusForbidden},
		{name: "unknown classroom", method: http.MethodPost, path: "/v1/classrooms/lol/terms", body: overlap, token: teacherToken, wantCode: http.StatusNotFound},
		{name: "overlap", method: http.MethodPost, path: path, body: overlap, token: teacherToken, wantCode: http.StatusConflict},
		{name: "no dates", method: http.MethodPost, path: path, body: []byte(`{}`), token: teacherToken, wantCode: http.StatusBadRequest},
		{name: "bad date", method: http.MethodPost, path: path, body: []byte(`{"start": "lol", "end": "2021-06-25"}`), token: teacherToken, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, a.do(tt))
		})
	}

	t.Run("created", func(t *testing.T) {
		rec := a.do(httpTest{
			method: http.MethodPost,
			path:   path,
			body:   []byte(`{"start": "2021-04-12", "end": "2021-07-02", "allowed_days": ["monday", 3, "friday"]}`),
			token:  teacherToken,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var got map[string]interface{}
		unmarshall(t, rec.Body.Bytes(), &got)
		assert.Equal(t, f.Classroom.ID, got["classroom_id"])
		assert.Equal(t, "2021-04-12", got["start"])
		assert.Equal(t, "2021-07-02", got["end"])
		assert.Equal(t, []interface{}{"monday", "wednesday", "friday"}, got["allowed_days"])
	})

	t.Run("query", func(t *testing.T) {
		rec := a.do(httpTest{method: http.MethodGet, path: path, token: getToken(t, a.Conf, f.Student)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got []term.Term
		unmarshall(t, rec.Body.Bytes(), &got)
		require.Len(t, got, 2)
		assert.Equal(t, "2021-01-04", got[0].Start.String())
		assert.Equal(t, term.SchoolDays, got[0].AllowedDays)
	})
}

func Test_termApi_update(t *testing.T) {
	a := setup(t)
	f := a.NewFixture(t)
	t1 := testutil.CreateTerm(t, a.TermSvc, f.Classroom.ID, "2021-01-04", "2021-03-26")
	t2 := testutil.CreateTerm(t, a.TermSvc, f.Classroom.ID, "2021-04-12", "2021-07-02")

	teacherToken := getToken(t, a.Conf, f.Teacher)
	path := "/v1/terms/" + t1.ID

	tests := []httpTest{
		{name: "student", method: http.MethodPatch, path: path, body: []byte(`{"end": "2021-04-02"}`), token: getToken(t, a.Conf, f.Student), wantCode: http.StatusForbidden},
		{name: "unknown term", method: http.MethodPatch, path: "/v1/terms/lol", body: []byte(`{"end": "2021-04-02"}`), token: teacherToken, wantCode: http.StatusNotFound},
		{name: "end in next term", method: http.MethodPatch, path: path, body: []byte(`{"end": "2021-04-12"}`), token: teacherToken, wantCode: http.StatusConflict},
		{name: "start in previous term", method: http.MethodPatch, path: "/v1/terms/" + t2.ID, body: []byte(`{"start": "2021-03-01"}`), token: teacherToken, wantCode: http.StatusConflict},
		{name: "end before start", method: http.MethodPatch, path: path, body: []byte(`{"start": "2021-03-01", "end": "2021-02-01"}`), token: teacherToken, wantCode: http.StatusBadRequest},
		{name: "bad weekday", method: http.MethodPatch, path: path, body: []byte(`{"allowed_days": ["funday"]}`), token: teacherToken, wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, a.do(tt))
		})
	}

	t.Run("rejected as a whole", func(t *testing.T) {
		rec := a.do(httpTest{
			method: http.MethodPatch,
			path:   path,
			body:   []byte(`{"end": "2021-04-12", "allowed_days": ["saturday"]}`),
			token:  teacherToken,
		})
		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())

		got, err := a.TermSvc.Get(context.Background(), t1.ID)
		require.NoError(t, err)
		assert.Equal(t, term.SchoolDays, got.AllowedDays)
		assert.Equal(t, "2021-03-26", got.End.String())
	})

	t.Run("updated", func(t *testing.T) {
		rec := a.do(httpTest{
			method: http.MethodPatch,
			path:   path,
			body:   []byte(`{"end": "2021-04-02", "allowed_days": ["saturday"]}`),
			token:  teacherToken,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got term.Term
		unmarshall(t, rec.Body.Bytes(), &got)
		assert.Equal(t, "2021-01-04", got.Start.String())
		assert.Equal(t, "2021-04-02", got.End.String())
		assert.Equal(t, []string{"saturday"}, got.AllowedDays.Names())
	})

	t.Run("weeks", func(t *testing.T) {
		rec := a.do(httpTest{method: http.MethodGet, path: "/v1/terms/" + t2.ID + "/weeks", token: getToken(t, a.Conf, f.Student)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var weeks []term.Week
		unmarshall(t, rec.Body.Bytes(), &weeks)
		require.Len(t, weeks, t2.NumberOfWeeks())
		assert.Equal(t, 1, weeks[0].Number)
		assert.Equal(t, "2021-04-18", weeks[0].End.String())
	})
}

func Test_termApi_destroy(t *testing.T) {
	a := setup(t)
	f := a.NewFixture(t)
	trm := testutil.CreateTerm(t, a.TermSvc, f.Classroom.ID, "2021-01-04", "2021-03-26")

	path := "/v1/terms/" + trm.ID
	teacherToken := getToken(t, a.Conf, f.Teacher)

	tests := []httpTest{
		{name: "student", method: http.MethodDelete, path: path, token: getToken(t, a.Conf, f.Student), wantCode: http.StatusForbidden},
		{name: "deleted", method: http.MethodDelete, path: path, token: teacherToken, wantCode: http.StatusNoContent},
		{name: "gone", method: http.MethodGet, path: path, token: teacherToken, wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: term.ErrNotFound.Error()})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, a.do(tt))
		})
	}
}
