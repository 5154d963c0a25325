package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KaramelBytes/ews-cli/internal/logger"
	"github.com/KaramelBytes/ews-cli/internal/parser"
	"github.com/KaramelBytes/ews-cli/internal/report"
	"github.com/KaramelBytes/ews-cli/internal/rules"
	"github.com/KaramelBytes/ews-cli/internal/runner"
)

// Server is the HTTP shell: upload a dataset, get a rule report back.
type Server struct {
	runner    *runner.Runner
	gatherer  prometheus.Gatherer
	parseOpt  parser.Options
	maxUpload int64
	log       logger.Logger
}

// Options configures a Server.
type Options struct {
	Parse       parser.Options
	MaxUploadMB int
}

// New returns a Server. The runner's metrics, if any, should be registered
// on gatherer's registry so /metrics exposes them.
func New(r *runner.Runner, gatherer prometheus.Gatherer, opt Options, log logger.Logger) *Server {
	limit := int64(opt.MaxUploadMB) << 20
	if limit <= 0 {
		limit = 32 << 20
	}
	return &Server{runner: r, gatherer: gatherer, parseOpt: opt.Parse, maxUpload: limit, log: log}
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/rules", s.listRules)
		r.Post("/rules/{rule}", s.runRule)
	})
	return r
}

// HTTPServer wraps Routes in an *http.Server with conservative timeouts.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       2 * time.Minute,
		WriteTimeout:      2 * time.Minute,
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

type ruleInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (s *Server) listRules(w http.ResponseWriter, r *http.Request) {
	out := make([]ruleInfo, 0, len(rules.Catalog))
	for _, d := range rules.Catalog {
		out = append(out, ruleInfo{ID: d.ID, Title: d.Title})
	}
	render.JSON(w, r, out)
}

type reportResponse struct {
	RunID  string     `json:"run_id"`
	Rule   string     `json:"rule"`
	Title  string     `json:"title"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: msg})
}

// runRule handles POST /api/v1/rules/{rule} with a multipart "file" field.
// ?format=json (default) returns the display cells; xlsx or csv returns a
// download named Rule_N_Output.<format>.
func (s *Server) runRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "rule")
	def, ok := rules.Lookup(id)
	if !ok {
		s.fail(w, r, http.StatusNotFound, fmt.Sprintf("unknown rule: %s", id))
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	var outFmt report.Format
	if format != "json" {
		f, err := report.ParseFormat(format)
		if err != nil {
			s.fail(w, r, http.StatusBadRequest, err.Error())
			return
		}
		outFmt = f
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, "missing upload field \"file\": "+err.Error())
		return
	}
	defer file.Close()
	if !parser.Supported(hdr.Filename) {
		s.fail(w, r, http.StatusUnsupportedMediaType, fmt.Sprintf("%s: %q", parser.ErrUnsupported, hdr.Filename))
		return
	}

	tb, err := parser.Parse(file, hdr.Filename, s.parseOpt)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := s.runner.Run(id, tb)
	if err != nil {
		var mc *rules.MissingColumnError
		if errors.As(err, &mc) {
			s.fail(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.log.Error("rule run failed", "rule", id, "request_id", middleware.GetReqID(r.Context()), "err", err)
		s.fail(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	w.Header().Set("X-Run-ID", res.RunID)

	if format == "json" {
		render.JSON(w, r, reportResponse{
			RunID:  res.RunID,
			Rule:   def.ID,
			Title:  def.Title,
			Header: res.Report.Header(),
			Rows:   report.Strings(res.Report),
		})
		return
	}
	w.Header().Set("Content-Type", report.ContentType(outFmt))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", def.OutputBase+"."+string(outFmt)))
	if err := report.Write(w, res.Report, outFmt); err != nil {
		s.log.Error("write report", "rule", id, "run_id", res.RunID, "err", err)
	}
}
