package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/metrics"
	"github.com/KaramelBytes/ews-cli/internal/rules"
	"github.com/KaramelBytes/ews-cli/internal/runner"
)

const meetingsCSV = "\xEF\xBB\xBFState,Branch_Name,Region_Name,Attended By ID,\"Month, Day, Year of Meeting Date\",Center_ID\n" +
	"TX,B1,R1,A1,2024-01-01,C1\n" +
	"TX,B1,R1,A1,2024-01-01,C1\n" +
	"TX,B1,R1,A1,2024-01-01,C2\n"

const loansCSV = "State,Branch_Name,Cust_ID,Loan_ID,LMS_Application_Status\n" +
	"TX,B1,CU1,L1,active\n" +
	"TX,B1,CU1,L2,ACTIVE \n" +
	"TX,B1,CU1,L3,Rejected\n"

func newTestServer(t *testing.T) (*Server, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	log := logger.New(&logger.Config{Level: "error", Output: io.Discard})
	r := runner.New(rules.New(rules.Options{}), log)
	r.Metrics = metrics.New(reg)
	return New(r, reg, Options{MaxUploadMB: 1}, log), reg
}

func upload(t *testing.T, url, filename, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, url, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func TestHealthAndRules(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, "/api/v1/rules", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Loan Status Funnel")
}

func TestRunRule_JSON(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, upload(t, "/api/v1/rules/rule1", "meetings.csv", meetingsCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, rec.Header().Get("X-Run-ID"))
	assert.Equal(t, "rule1", resp.Rule)
	assert.Equal(t, []string{
		"state", "branch_name", "region_name", "attended by id", "2024-01-01",
		"Total", "Days_Visited", "P97_5", "Above_97_5",
	}, resp.Header)
	assert.Equal(t, [][]string{{"TX", "B1", "R1", "A1", "2", "2", "1", "1", "True"}}, resp.Rows)
}

func TestRunRule_Rule2BlanksZeros(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, upload(t, "/api/v1/rules/rule2", "loans.csv", loansCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp reportResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, [][]string{{"TX", "B1", "CU1", "2", "", "", "", "", "", "", "1", "", "3"}}, resp.Rows)
}

func TestRunRule_XLSXDownload(t *testing.T) {
	s, _ := newTestServer(t)

	rec := serve(s, upload(t, "/api/v1/rules/rule2?format=xlsx", "loans.csv", loansCSV))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Rule_2_Output.xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Grand Total", rows[0][12])
	assert.Equal(t, "3", rows[1][12])
}

func TestRunRule_Errors(t *testing.T) {
	s, reg := newTestServer(t)

	t.Run("Should surface missing column verbatim", func(t *testing.T) {
		rec := serve(s, upload(t, "/api/v1/rules/rule1", "loans.csv", loansCSV))
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.JSONEq(t, `{"error":"missing column: region_name"}`, rec.Body.String())
	})

	t.Run("Should 404 unknown rules", func(t *testing.T) {
		rec := serve(s, upload(t, "/api/v1/rules/rule7", "loans.csv", loansCSV))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Should reject unsupported uploads", func(t *testing.T) {
		rec := serve(s, upload(t, "/api/v1/rules/rule2", "loans.pdf", loansCSV))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})

	t.Run("Should reject unknown formats", func(t *testing.T) {
		rec := serve(s, upload(t, "/api/v1/rules/rule2?format=pdf", "loans.csv", loansCSV))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should require the file field", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/rules/rule2", nil)
		rec := serve(s, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Should count runs in metrics", func(t *testing.T) {
		rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `ews_rule_runs_total{outcome="missing_column",rule="rule1"} 1`)
		_, err := reg.Gather()
		assert.NoError(t, err)
	})
}
