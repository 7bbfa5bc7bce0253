package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/maendeleo/apps/api/echo"
	"github.com/trezcool/maendeleo/core"
	"github.com/trezcool/maendeleo/core/roster"
	"github.com/trezcool/maendeleo/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type app struct {
	*Server
	*testutil.Engine
}

func setup(t *testing.T) app {
	e := testutil.NewEngine(t)

	translator := core.NewTranslator()
	validate := validator.New()
	core.InitValidators(validate, translator)

	srv := NewServer(&Deps{
		Conf:        e.Conf,
		Logger:      e.Logger,
		Validate:    validate,
		Translator:  translator,
		Roster:      e.Roster,
		TermSvc:     e.TermSvc,
		ProgressSvc: e.ProgressSvc,
		GoalSvc:     e.GoalSvc,
		ChartSvc:    e.ChartSvc,
	})
	return app{Server: srv, Engine: e}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (a app) do(tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	a.ServeHTTP(rec, req)
	return rec
}

func getToken(t *testing.T, conf *core.Config, usr roster.User) string {
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func unmarshall(t *testing.T, data []byte, obj interface{}) {
	if err := json.Unmarshal(data, obj); err != nil {
		t.Fatalf("unmarshall(%s) failed: %v", data, err)
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

// checkCodeAndData checks the response code, and the body when tt.wantData is set.
func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// fieldErrors decodes a 400 response body.
func fieldErrors(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	var errs map[string]string
	unmarshall(t, rec.Body.Bytes(), &errs)
	return errs
}

func assertFieldError(t *testing.T, rec *httptest.ResponseRecorder, field string) {
	t.Helper()
	if assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String()) {
		assert.Contains(t, fieldErrors(t, rec), field)
	}
}
