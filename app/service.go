package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/jmoiron/sqlx"

	"gocleanse/adapters/artifactstore"
	"gocleanse/adapters/cleaning"
	"gocleanse/adapters/datareadiness"
	"gocleanse/adapters/datareadiness/coercer"
	"gocleanse/adapters/stats/lookup"
	"gocleanse/adapters/stats/sampling"
	"gocleanse/adapters/tableio"
	domaincleaning "gocleanse/domain/cleaning"
	"gocleanse/domain/core"
	"gocleanse/domain/datareadiness/profiling"
	"gocleanse/domain/dataset"
	"gocleanse/internal/config"
	"gocleanse/internal/logging"
	"gocleanse/ports"
)

// ArtifactNames are the storage locations the service reads and writes
type ArtifactNames struct {
	Registry        string
	Mapping         string
	CorrelationPath string // empty disables the correlation export
}

// Scoped returns names private to one run: the run ID prefixes each file name
// and the directory part is kept.
func (n ArtifactNames) Scoped(run string) ArtifactNames {
	scope := func(name string) string {
		if name == "" {
			return ""
		}
		dir, base := filepath.Split(name)
		return dir + run + "_" + base
	}
	return ArtifactNames{
		Registry:        scope(n.Registry),
		Mapping:         scope(n.Mapping),
		CorrelationPath: scope(n.CorrelationPath),
	}
}

// Options wires a CleaningService
type Options struct {
	Profiling profiling.ProfilingConfig
	Coercion  coercer.CoercionConfig
	Encoder   cleaning.EncoderConfig
	Lookup    ports.CriticalValueLookup
	Store     ports.ArtifactStore
	Names     ArtifactNames
	Logger    *slog.Logger
}

// CleaningService exposes every cleaning operation behind one entry point.
// It holds no table state; callers pass the table they own.
type CleaningService struct {
	coercer    *coercer.TypeCoercer
	profiler   *datareadiness.ProfilerAdapter
	normalizer *cleaning.Normalizer
	missing    *cleaning.MissingManager
	duplicates *cleaning.DuplicateManager
	outliers   *cleaning.OutlierEngine
	encoder    *cleaning.Encoder
	sampling   *sampling.Checker
	store      ports.ArtifactStore
	names      ArtifactNames
	logger     *slog.Logger
}

// NewCleaningService creates the service from explicit collaborators
func NewCleaningService(opts Options) *CleaningService {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Coercion.TimestampFormats == nil {
		opts.Coercion = coercer.DefaultCoercionConfig()
	}
	c := coercer.NewTypeCoercer(opts.Coercion)
	profiler := datareadiness.NewProfilerAdapter(c, opts.Profiling)

	return &CleaningService{
		coercer:    c,
		profiler:   profiler,
		normalizer: cleaning.NewNormalizer(profiler, c, logger),
		missing:    cleaning.NewMissingManager(logger),
		duplicates: cleaning.NewDuplicateManager(logger),
		outliers:   cleaning.NewOutlierEngine(logger),
		encoder:    cleaning.NewEncoder(opts.Encoder, logger),
		sampling:   sampling.NewChecker(opts.Lookup),
		store:      opts.Store,
		names:      opts.Names,
		logger:     logging.WithComponent(logger, "service"),
	}
}

// WithNames returns a service sharing every collaborator but reading and
// writing artifacts under names
func (s *CleaningService) WithNames(names ArtifactNames) *CleaningService {
	scoped := *s
	scoped.names = names
	return &scoped
}

// NewFromConfig builds the service and its artifact store from configuration.
// The returned close function releases the database when the sql store is used.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*CleaningService, func() error, error) {
	table, err := lookup.Load(cfg.Lookup.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load lookup table: %w", err)
	}

	order, err := domaincleaning.ParseCategoryOrder(cfg.Encoding.CategoryOrder)
	if err != nil {
		return nil, nil, err
	}
	policy, err := domaincleaning.ParseUnknownCategoryPolicy(cfg.Encoding.UnknownCategoryPolicy)
	if err != nil {
		return nil, nil, err
	}

	closer := func() error { return nil }
	var store ports.ArtifactStore
	switch cfg.Storage.Backend {
	case "sql":
		db, err := sqlx.ConnectContext(ctx, cfg.Database.Driver, cfg.Database.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to artifact database: %w", err)
		}
		sqlStore := artifactstore.NewSQLStore(db)
		if err := sqlStore.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		store = sqlStore
		closer = db.Close
	default:
		store = artifactstore.NewFileStore(cfg.Storage.Dir)
	}

	svc := NewCleaningService(Options{
		Profiling: profiling.ProfilingConfig{
			InferenceSampleSize: cfg.Profiling.InferenceSampleSize,
			MajorityThreshold:   cfg.Profiling.MajorityThreshold,
		},
		Encoder: cleaning.EncoderConfig{Order: order, UnknownPolicy: policy},
		Lookup:  table,
		Store:   store,
		Names: ArtifactNames{
			Registry:        cfg.Storage.RegistryName,
			Mapping:         cfg.Storage.MappingName,
			CorrelationPath: cfg.Storage.CorrelationPath,
		},
		Logger: logger,
	})
	return svc, closer, nil
}

// Load reads a table from a source using the service's coercion rules
func (s *CleaningService) Load(ctx context.Context, source tableio.Source) (*dataset.Table, error) {
	var reader ports.TableReader = tableio.NewReader(source, s.coercer, s.logger)
	return reader.Read(ctx)
}

// Export writes a table; the format follows the path extension
func (s *CleaningService) Export(ctx context.Context, t *dataset.Table, path string) error {
	w, err := tableio.NewWriter(path, "", s.logger)
	if err != nil {
		return err
	}
	return writeTable(ctx, w, t)
}

func writeTable(ctx context.Context, writer ports.TableWriter, t *dataset.Table) error {
	return writer.Write(ctx, t)
}

// Profile produces the data quality report
func (s *CleaningService) Profile(t *dataset.Table) (*profiling.ProfilingResult, error) {
	return s.profiler.Profile(t)
}

// Classify infers the kind of every column
func (s *CleaningService) Classify(t *dataset.Table) map[string]profiling.Kind {
	return s.profiler.ClassifyAll(t)
}

// Normalize rewrites every column into its canonical representation
func (s *CleaningService) Normalize(t *dataset.Table) ([]cleaning.ColumnNormalization, error) {
	return s.normalizer.Normalize(t)
}

// MissingCounts reports missing cells per column
func (s *CleaningService) MissingCounts(t *dataset.Table) profiling.MissingReport {
	return s.missing.Detect(t)
}

// Fill imputes one column
func (s *CleaningService) Fill(t *dataset.Table, column string, strategy domaincleaning.FillStrategy) (int, error) {
	return s.missing.FillColumn(t, column, strategy)
}

// DropMissing removes rows with a missing cell in column, or in any column for "*"
func (s *CleaningService) DropMissing(t *dataset.Table, column string) (int, error) {
	return s.missing.DropRows(t, column)
}

// RemoveDuplicates drops repeated rows
func (s *CleaningService) RemoveDuplicates(t *dataset.Table) int {
	return s.duplicates.RemoveDuplicates(t)
}

// DuplicateCount counts repeated rows
func (s *CleaningService) DuplicateCount(t *dataset.Table) int {
	return s.duplicates.Count(t)
}

// DetectOutliers flags outliers and persists the registry
func (s *CleaningService) DetectOutliers(ctx context.Context, t *dataset.Table) (domaincleaning.OutlierRegistry, error) {
	return s.outliers.DetectAndPersist(ctx, t, s.store, s.names.Registry)
}

// HandleOutliers replays the persisted registry against the table
func (s *CleaningService) HandleOutliers(ctx context.Context, t *dataset.Table, method domaincleaning.OutlierMethod) ([]cleaning.OutlierAction, error) {
	return s.outliers.LoadAndHandle(ctx, t, s.store, s.names.Registry, method)
}

// ApplyOutliers remediates the rows of a registry the caller already holds
func (s *CleaningService) ApplyOutliers(t *dataset.Table, registry domaincleaning.OutlierRegistry, method domaincleaning.OutlierMethod) ([]cleaning.OutlierAction, error) {
	return s.outliers.Handle(t, registry, method)
}

// Encode encodes categorical columns and persists the mapping. With reuse set,
// a previously persisted mapping supplies the codes of the columns it covers.
func (s *CleaningService) Encode(ctx context.Context, t *dataset.Table, reuse bool) (domaincleaning.CategoricalMapping, error) {
	var existing domaincleaning.CategoricalMapping
	if reuse {
		loaded, err := s.store.LoadMapping(ctx, s.names.Mapping)
		switch {
		case err == nil:
			existing = loaded
		case errors.Is(err, core.ErrNotFound):
			s.logger.Info("no persisted mapping to reuse", "name", s.names.Mapping)
		default:
			return nil, err
		}
	}
	return s.encoder.EncodeAndPersist(ctx, t, existing, s.store, s.names.Mapping)
}

// Decode reverses the persisted mapping
func (s *CleaningService) Decode(ctx context.Context, t *dataset.Table) error {
	mapping, err := s.store.LoadMapping(ctx, s.names.Mapping)
	if err != nil {
		return err
	}
	return s.encoder.Decode(t, mapping)
}

// DecodeWith reverses a mapping the caller already holds
func (s *CleaningService) DecodeWith(t *dataset.Table, mapping domaincleaning.CategoricalMapping) error {
	return s.encoder.Decode(t, mapping)
}

// Correlation computes the correlation matrix and writes it when an export path is configured
func (s *CleaningService) Correlation(t *dataset.Table) (cleaning.CorrelationMatrix, error) {
	m := cleaning.Correlation(t)
	if s.names.CorrelationPath == "" {
		return m, nil
	}
	if err := tableio.WriteCorrelationCSV(s.names.CorrelationPath, m); err != nil {
		return m, fmt.Errorf("failed to export correlation matrix: %w", err)
	}
	s.logger.Info("correlation matrix exported", "path", s.names.CorrelationPath, "columns", len(m.Columns))
	return m, nil
}

// SampleSize computes the required sample size
func (s *CleaningService) SampleSize(req sampling.Request) (sampling.Result, error) {
	return s.sampling.Calculate(req)
}

// IsAdequate reports whether the table is larger than the required sample
func (s *CleaningService) IsAdequate(t *dataset.Table, population float64, confidence, margin float64) (bool, int, error) {
	return s.sampling.IsAdequate(t, population, confidence, margin)
}

// Store returns the artifact store in use
func (s *CleaningService) Store() ports.ArtifactStore {
	return s.store
}

// Names returns the configured artifact locations
func (s *CleaningService) Names() ArtifactNames {
	return s.names
}
