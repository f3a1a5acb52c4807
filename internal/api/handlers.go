package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gocleanse/adapters/stats/sampling"
	"gocleanse/adapters/tableio"
	"gocleanse/app"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
	apperrors "gocleanse/internal/errors"
)

// TablePayload is the JSON form of a table preview
type TablePayload struct {
	Columns []string        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`
	Total   int             `json:"total_rows"`
}

func newTablePayload(t *dataset.Table, limit int) TablePayload {
	head := t.Head(limit)
	payload := TablePayload{
		Columns: head.ColumnNames(),
		Rows:    make([][]interface{}, head.RowCount()),
		Total:   t.RowCount(),
	}
	for i := range payload.Rows {
		row := head.Row(i)
		out := make([]interface{}, len(row))
		for j, v := range row {
			switch {
			case v.IsMissing():
				out[j] = nil
			case v.Type == dataset.ValueTypeNumeric:
				out[j] = v.AsFloat64()
			case v.Type == dataset.ValueTypeBoolean:
				out[j] = v.AsBoolean()
			default:
				out[j] = v.String()
			}
		}
		payload.Rows[i] = out
	}
	return payload
}

// receiveTable stores the multipart "file" field and loads it as a table.
// The stored upload is removed once the table is in memory.
func (s *Server) receiveTable(c *gin.Context) (*dataset.Table, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.InvalidInput(`multipart field "file" is required`)
	}
	if s.options.MaxUploadBytes > 0 && header.Size > s.options.MaxUploadBytes {
		return nil, apperrors.ValidationError(fmt.Sprintf("file size %d exceeds the %d byte limit", header.Size, s.options.MaxUploadBytes))
	}

	file, err := header.Open()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to open upload")
	}
	defer file.Close()

	ctx := c.Request.Context()
	path, err := s.uploads.Store(ctx, file, header.Filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := s.uploads.Delete(ctx, path); err != nil {
			s.logger.Warn("failed to remove upload", "path", path, "error", err)
		}
	}()

	return s.service.Load(ctx, tableio.Source{Path: path})
}

// runService resolves the run a request belongs to and returns a service whose
// artifacts live under that run's names. An empty value starts a new run; a
// supplied one must be a run ID issued by an earlier response.
func (s *Server) runService(value string) (string, *app.CleaningService, error) {
	run := strings.TrimSpace(value)
	if run == "" {
		run = core.NewID().String()
	} else if _, err := uuid.Parse(run); err != nil {
		return "", nil, apperrors.InvalidInput("run must be a run ID returned by an earlier request")
	}
	return run, s.service.WithNames(s.service.Names().Scoped(run)), nil
}

// stepsFromForm accepts repeated "steps" fields and comma separated lists
func stepsFromForm(c *gin.Context) []string {
	var raw []string
	for _, field := range c.PostFormArray("steps") {
		raw = append(raw, strings.Split(field, ",")...)
	}
	return raw
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleProfile(c *gin.Context) {
	table, err := s.receiveTable(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	result, err := s.service.Profile(table)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleClean(c *gin.Context) {
	steps, err := app.ParseSteps(stepsFromForm(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	if len(steps) == 0 {
		s.respondError(c, apperrors.InvalidInput(`at least one "steps" value is required`))
		return
	}

	preview := DefaultPreviewRows
	if raw := c.PostForm("preview"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.respondError(c, apperrors.InvalidInput("preview must be a non-negative integer"))
			return
		}
		preview = n
	}

	run, svc, err := s.runService(c.PostForm("run"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	table, err := s.receiveTable(c)
	if err != nil {
		s.respondError(c, err)
		return
	}

	report, err := app.NewPipeline(svc, steps).Run(c.Request.Context(), table)
	if err != nil {
		status := apperrors.HTTPStatus(err)
		c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.CodeOf(err), "run": run, "report": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "report": report, "table": newTablePayload(table, preview)})
}

func (s *Server) handleOutliers(c *gin.Context) {
	table, err := s.receiveTable(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	run, svc, err := s.runService(c.PostForm("run"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	registry, err := svc.DetectOutliers(c.Request.Context(), table)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"run": run, "flagged": registry.Len(), "registry": registry})
}

func (s *Server) handleCorrelation(c *gin.Context) {
	table, err := s.receiveTable(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	_, svc, err := s.runService(c.PostForm("run"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	matrix, err := svc.Correlation(table)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matrix)
}

func (s *Server) handleSampleSize(c *gin.Context) {
	population, err := strconv.ParseFloat(c.Query("population"), 64)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("population must be a number"))
		return
	}
	confidence, err := strconv.ParseFloat(c.DefaultQuery("confidence", "0.95"), 64)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("confidence must be a number"))
		return
	}
	margin, err := strconv.ParseFloat(c.DefaultQuery("margin", "0.05"), 64)
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("margin must be a number"))
		return
	}

	result, err := s.service.SampleSize(sampling.Request{Population: population, Confidence: confidence, MarginError: margin})
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// runQuery returns the service of the run named by the required "run" query parameter
func (s *Server) runQuery(c *gin.Context) (*app.CleaningService, error) {
	if strings.TrimSpace(c.Query("run")) == "" {
		return nil, apperrors.InvalidInput(`"run" query parameter is required`)
	}
	_, svc, err := s.runService(c.Query("run"))
	return svc, err
}

func (s *Server) handleRegistry(c *gin.Context) {
	svc, err := s.runQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	registry, err := svc.Store().LoadRegistry(c.Request.Context(), svc.Names().Registry)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, registry)
}

func (s *Server) handleMapping(c *gin.Context) {
	svc, err := s.runQuery(c)
	if err != nil {
		s.respondError(c, err)
		return
	}
	mapping, err := svc.Store().LoadMapping(c.Request.Context(), svc.Names().Mapping)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapping)
}
