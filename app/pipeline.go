package app

import (
	"context"
	"fmt"
	"strings"

	"gocleanse/adapters/cleaning"
	domaincleaning "gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/dataset"
)

// StepKind names one cleaning operation of a pipeline
type StepKind string

const (
	StepNormalize     StepKind = "normalize"
	StepFill          StepKind = "fill"
	StepDropMissing   StepKind = "dropna"
	StepDedupe        StepKind = "dedupe"
	StepOutlierDetect StepKind = "outliers:detect"
	StepOutlierHandle StepKind = "outliers:handle"
	StepEncode        StepKind = "encode"
	StepDecode        StepKind = "decode"
	StepCorrelation   StepKind = "correlation"
)

// Step is a parsed pipeline step
type Step struct {
	Kind     StepKind
	Column   string
	Fill     domaincleaning.FillStrategy
	Outliers domaincleaning.OutlierMethod
	Reuse    bool
}

func (s Step) String() string {
	switch s.Kind {
	case StepFill:
		out := fmt.Sprintf("fill:%s:%s", s.Column, s.Fill.Method)
		if s.Fill.Constant != "" {
			out += ":" + s.Fill.Constant
		}
		return out
	case StepDropMissing:
		return "dropna:" + s.Column
	case StepOutlierHandle:
		return "outliers:handle:" + string(s.Outliers)
	case StepEncode:
		if s.Reuse {
			return "encode:reuse"
		}
	}
	return string(s.Kind)
}

// ParseStep parses one step description:
//
//	normalize
//	fill:<column>:<method>[:<constant>]
//	dropna[:<column>|*]
//	dedupe
//	outliers:detect
//	outliers:handle:<method>
//	encode[:reuse]
//	decode
//	correlation
func ParseStep(raw string) (Step, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	invalid := func(reason string) (Step, error) {
		return Step{}, core.NewValidationError("step", fmt.Sprintf("%q: %s", raw, reason))
	}

	switch strings.ToLower(parts[0]) {
	case "normalize", "dedupe", "decode", "correlation":
		if len(parts) != 1 {
			return invalid("takes no arguments")
		}
		return Step{Kind: StepKind(strings.ToLower(parts[0]))}, nil

	case "fill":
		if len(parts) < 3 || parts[1] == "" {
			return invalid("expected fill:<column>:<method>[:<constant>]")
		}
		method, err := domaincleaning.ParseFillMethod(parts[2])
		if err != nil {
			return Step{}, err
		}
		strategy := domaincleaning.FillStrategy{Method: method}
		if len(parts) > 3 {
			strategy.Constant = strings.Join(parts[3:], ":")
		}
		return Step{Kind: StepFill, Column: parts[1], Fill: strategy}, nil

	case "dropna":
		column := domaincleaning.AllColumns
		if len(parts) > 2 {
			return invalid("expected dropna[:<column>]")
		}
		if len(parts) == 2 && parts[1] != "" {
			column = parts[1]
		}
		return Step{Kind: StepDropMissing, Column: column}, nil

	case "encode":
		switch {
		case len(parts) == 1:
			return Step{Kind: StepEncode}, nil
		case len(parts) == 2 && parts[1] == "reuse":
			return Step{Kind: StepEncode, Reuse: true}, nil
		}
		return invalid("expected encode[:reuse]")

	case "outliers":
		if len(parts) == 2 && parts[1] == "detect" {
			return Step{Kind: StepOutlierDetect}, nil
		}
		if len(parts) == 3 && parts[1] == "handle" {
			method, err := domaincleaning.ParseOutlierMethod(parts[2])
			if err != nil {
				return Step{}, err
			}
			return Step{Kind: StepOutlierHandle, Outliers: method}, nil
		}
		return invalid("expected outliers:detect or outliers:handle:<method>")
	}
	return invalid("unknown operation")
}

// ParseSteps parses a list of step descriptions, stopping at the first invalid one
func ParseSteps(raw []string) ([]Step, error) {
	steps := make([]Step, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		step, err := ParseStep(r)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// StepResult records what one step did
type StepResult struct {
	Step     string `json:"step"`
	Affected int    `json:"affected"`
	Detail   any    `json:"detail,omitempty"`
}

// Report summarizes a pipeline run
type Report struct {
	Steps       []StepResult `json:"steps"`
	RowsBefore  int          `json:"rows_before"`
	RowsAfter   int          `json:"rows_after"`
	ColumnCount int          `json:"column_count"`
}

// Pipeline applies steps to a table in order through a CleaningService.
// Artifacts produced by earlier steps of a run feed the later ones directly;
// only steps with no earlier producer read the artifact store.
type Pipeline struct {
	service *CleaningService
	steps   []Step
}

// runArtifacts holds what earlier steps of one run produced
type runArtifacts struct {
	registry domaincleaning.OutlierRegistry
	mapping  domaincleaning.CategoricalMapping
}

// NewPipeline creates a pipeline
func NewPipeline(service *CleaningService, steps []Step) *Pipeline {
	return &Pipeline{service: service, steps: steps}
}

// Run executes the steps in order. The first failing step aborts the run and
// the report covers the steps completed so far; the table keeps their effects.
func (p *Pipeline) Run(ctx context.Context, t *dataset.Table) (*Report, error) {
	report := &Report{RowsBefore: t.RowCount()}
	produced := &runArtifacts{}

	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := p.runStep(ctx, t, step, produced)
		if err != nil {
			report.RowsAfter = t.RowCount()
			report.ColumnCount = t.ColumnCount()
			return report, fmt.Errorf("step %s: %w", step, err)
		}
		result.Step = step.String()
		report.Steps = append(report.Steps, result)
		p.service.logger.Info("pipeline step completed", "step", result.Step, "affected", result.Affected)
	}

	report.RowsAfter = t.RowCount()
	report.ColumnCount = t.ColumnCount()
	return report, nil
}

func (p *Pipeline) runStep(ctx context.Context, t *dataset.Table, step Step, produced *runArtifacts) (StepResult, error) {
	s := p.service
	switch step.Kind {
	case StepNormalize:
		changes, err := s.Normalize(t)
		return StepResult{Affected: countChanged(changes), Detail: changes}, err
	case StepFill:
		n, err := s.Fill(t, step.Column, step.Fill)
		return StepResult{Affected: n}, err
	case StepDropMissing:
		n, err := s.DropMissing(t, step.Column)
		return StepResult{Affected: n}, err
	case StepDedupe:
		return StepResult{Affected: s.RemoveDuplicates(t)}, nil
	case StepOutlierDetect:
		registry, err := s.DetectOutliers(ctx, t)
		if err == nil {
			produced.registry = registry
		}
		return StepResult{Affected: registry.Len(), Detail: registry}, err
	case StepOutlierHandle:
		var (
			actions []cleaning.OutlierAction
			err     error
		)
		if produced.registry != nil {
			actions, err = s.ApplyOutliers(t, produced.registry, step.Outliers)
		} else {
			actions, err = s.HandleOutliers(ctx, t, step.Outliers)
		}
		return StepResult{Affected: len(actions), Detail: actions}, err
	case StepEncode:
		mapping, err := s.Encode(ctx, t, step.Reuse)
		if err == nil {
			produced.mapping = mapping
		}
		return StepResult{Affected: len(mapping), Detail: mapping}, err
	case StepDecode:
		if produced.mapping != nil {
			return StepResult{}, s.DecodeWith(t, produced.mapping)
		}
		return StepResult{}, s.Decode(ctx, t)
	case StepCorrelation:
		m, err := s.Correlation(t)
		return StepResult{Affected: len(m.Columns), Detail: m}, err
	}
	return StepResult{}, core.NewUnsupportedOperationError("pipeline", "unknown step "+string(step.Kind))
}

func countChanged(changes []cleaning.ColumnNormalization) int {
	n := 0
	for _, c := range changes {
		if c.Action != "none" {
			n++
		}
	}
	return n
}
