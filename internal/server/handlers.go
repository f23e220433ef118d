package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/cpkdash/internal/analysis"
	"github.com/KaramelBytes/cpkdash/internal/chart"
	"github.com/KaramelBytes/cpkdash/internal/dataset"
	"github.com/KaramelBytes/cpkdash/internal/parser"
	"github.com/KaramelBytes/cpkdash/internal/session"
)

var errBadUpload = errors.New("unreadable upload")

// handlePeriods lists the named periods for top/bottom mode.
// GET /api/v1/periods
func (s *Server) handlePeriods(c *gin.Context) {
	out := make([]gin.H, 0, len(analysis.Periods))
	for _, p := range analysis.Periods {
		months := make([]string, 0, len(p.Months))
		for _, ym := range p.Months {
			months = append(months, fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month)))
		}
		out = append(out, gin.H{"name": p.Name, "months": months})
	}
	c.JSON(http.StatusOK, gin.H{
		"data": out,
		"meta": gin.H{"count": len(out), "top_n": s.topN()},
	})
}

// handleUpload loads a CSV or XLSX file into a new session.
// POST /api/v1/datasets (multipart field "file")
func (s *Server) handleUpload(c *gin.Context) {
	if limit := s.cfg.MaxUploadBytes(); limit > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("upload exceeds %d MB", s.cfg.MaxUploadMB)})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	tbl, err := dataset.Load(fh.Filename, f, s.cfg.DatasetOptions())
	if err != nil {
		writeError(c, fmt.Errorf("%w: %w", errBadUpload, err))
		return
	}
	sess := s.store.Put(tbl)
	log.Printf("session %s: loaded %s (%d rows)", sess.ID, tbl.Name, tbl.Len())
	c.JSON(http.StatusCreated, gin.H{"data": sess.Info()})
}

// handleGetDataset returns session metadata and filter options.
// GET /api/v1/datasets/:id
func (s *Server) handleGetDataset(c *gin.Context) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": sess.Info()})
}

// handleDeleteDataset drops a session.
// DELETE /api/v1/datasets/:id
func (s *Server) handleDeleteDataset(c *gin.Context) {
	if err := s.store.Delete(c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handleView returns the JSON projection of one view.
// GET /api/v1/datasets/:id/views/:view
func (s *Server) handleView(c *gin.Context) {
	v, proj, sel, ok := s.project(c)
	if !ok {
		return
	}
	meta := gin.H{
		"view":  v,
		"title": v.Title(),
		"rows":  sel.Table.Len(),
	}
	if sel.Ranking != nil {
		meta["ranking"] = sel.Ranking
	}
	c.JSON(http.StatusOK, gin.H{"data": proj, "meta": meta})
}

// handleChart renders one view as PNG.
// GET /api/v1/datasets/:id/views/:view/chart.png
func (s *Server) handleChart(c *gin.Context) {
	v, proj, _, ok := s.project(c)
	if !ok {
		return
	}
	img, err := chart.Render(v, proj, s.cfg.ChartOptions())
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", img)
}

// handleExport streams the filtered rows as CSV.
// GET /api/v1/datasets/:id/export
func (s *Server) handleExport(c *gin.Context) {
	sel, ok := s.selection(c)
	if !ok {
		return
	}
	b, err := sel.Table.CSV()
	if err != nil {
		writeError(c, err)
		return
	}
	name := s.cfg.ExportFilename
	if name == "" {
		name = dataset.DefaultExportName
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", b)
}

func (s *Server) project(c *gin.Context) (analysis.View, analysis.Projection, *analysis.Selection, bool) {
	v, err := analysis.ParseView(c.Param("view"))
	if err != nil {
		writeError(c, err)
		return "", nil, nil, false
	}
	sel, ok := s.selection(c)
	if !ok {
		return "", nil, nil, false
	}
	proj, err := analysis.Build(v, sel.Table)
	if err != nil {
		writeError(c, err)
		return "", nil, nil, false
	}
	return v, proj, sel, true
}

// selection loads the session and applies the filter from the query string.
func (s *Server) selection(c *gin.Context) (*analysis.Selection, bool) {
	sess, err := s.store.Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	req, err := s.filterRequest(c)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	f, err := req.Filter()
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	sel, err := f.Apply(sess.Table)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return sel, true
}

func (s *Server) filterRequest(c *gin.Context) (analysis.FilterRequest, error) {
	req := analysis.FilterRequest{
		Mode:       c.Query("mode"),
		Fleets:     c.QueryArray("fleet"),
		Units:      c.QueryArray("unit"),
		CargoTypes: c.QueryArray("cargo"),
		From:       c.Query("from"),
		To:         c.Query("to"),
		CPKMin:     c.Query("cpk_min"),
		CPKMax:     c.Query("cpk_max"),
		Period:     c.Query("period"),
		TopN:       s.topN(),
	}
	if raw := c.Query("n"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return req, fmt.Errorf("%w: n %q must be a positive integer", analysis.ErrBadFilter, raw)
		}
		req.TopN = n
	}
	return req, nil
}

func (s *Server) topN() int {
	if s.cfg.TopN > 0 {
		return s.cfg.TopN
	}
	return analysis.DefaultTopN
}

// writeError maps pipeline errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dataset.ErrMissingColumn), errors.Is(err, chart.ErrNoData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, parser.ErrUnsupported):
		status = http.StatusUnsupportedMediaType
	case errors.Is(err, analysis.ErrUnknownView), errors.Is(err, analysis.ErrUnknownPeriod),
		errors.Is(err, analysis.ErrBadFilter), errors.Is(err, chart.ErrNoChart),
		errors.Is(err, errBadUpload):
		status = http.StatusBadRequest
	}
	body := gin.H{"error": err.Error()}
	var mce *dataset.MissingColumnError
	if errors.As(err, &mce) {
		body["missing"] = mce.Missing
	}
	if status == http.StatusInternalServerError {
		log.Printf("internal error: %v", err)
	}
	c.JSON(status, body)
}
