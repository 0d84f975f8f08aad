package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/dataset"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/engine"
)

// ErrDatasetNotFound is returned when a dataset ID is unknown.
var ErrDatasetNotFound = errors.New("dataset not found")

const uploadWorkers = 4

// storedDataset is one uploaded table held in memory for the session,
// together with the column-role resolution computed at upload time.
type storedDataset struct {
	meta       domain.Dataset
	table      *dataset.Table
	resolution engine.Resolution
}

// ForecastService owns the uploaded datasets and runs the engine over them.
// Datasets live only in memory; restarting the process forgets them.
type ForecastService struct {
	mu       sync.RWMutex
	datasets map[string]*storedDataset

	cache     cache.ForecastCache
	defaults  config.EngineConfig
	outputDir string
}

func NewForecastService(cfg *config.Config, cacheImpl cache.ForecastCache) *ForecastService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &ForecastService{
		datasets:  make(map[string]*storedDataset),
		cache:     cacheImpl,
		defaults:  cfg.Engine,
		outputDir: cfg.App.OutputDir,
	}
}

// UploadInput is one file to ingest.
type UploadInput struct {
	Filename string
	Open     func() (io.ReadCloser, error)
}

// AddDatasets parses and registers multiple uploads concurrently. A file that
// fails to parse fails the whole call; nothing is registered halfway.
func (s *ForecastService) AddDatasets(ctx context.Context, inputs []UploadInput) ([]domain.Dataset, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadWorkers)

	parsed := make([]*storedDataset, len(inputs))
	for i, input := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			r, err := input.Open()
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", input.Filename, err)
			}
			defer r.Close()

			stored, err := s.parseDataset(input.Filename, r)
			if err != nil {
				return fmt.Errorf("failed to parse %s: %w", input.Filename, err)
			}
			parsed[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]domain.Dataset, 0, len(parsed))
	for _, stored := range parsed {
		s.datasets[stored.meta.ID] = stored
		results = append(results, stored.meta)
	}
	return results, nil
}

// AddDataset parses and registers a single upload.
func (s *ForecastService) AddDataset(ctx context.Context, filename string, r io.Reader) (domain.Dataset, error) {
	stored, err := s.parseDataset(filename, r)
	if err != nil {
		return domain.Dataset{}, err
	}

	s.mu.Lock()
	s.datasets[stored.meta.ID] = stored
	s.mu.Unlock()

	log.Info().
		Str("dataset_id", stored.meta.ID).
		Str("filename", filename).
		Int("rows", stored.meta.Rows).
		Msg("dataset registered")

	return stored.meta, nil
}

func (s *ForecastService) parseDataset(filename string, r io.Reader) (*storedDataset, error) {
	table, err := dataset.Read(r)
	if err != nil {
		return nil, err
	}

	return &storedDataset{
		meta: domain.Dataset{
			ID:         uuid.NewString(),
			Filename:   filename,
			Rows:       len(table.Rows),
			Columns:    table.Header,
			UploadedAt: time.Now(),
		},
		table:      table,
		resolution: engine.ResolveColumns(table.Header, nil),
	}, nil
}

// Dataset returns the metadata for a registered dataset.
func (s *ForecastService) Dataset(id string) (domain.Dataset, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return domain.Dataset{}, err
	}
	return stored.meta, nil
}

// Datasets lists all registered datasets.
func (s *ForecastService) Datasets() []domain.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]domain.Dataset, 0, len(s.datasets))
	for _, stored := range s.datasets {
		list = append(list, stored.meta)
	}
	return list
}

// Columns returns the column-role resolution computed for a dataset at upload
// time, including any misses and ambiguities the client should resolve.
func (s *ForecastService) Columns(id string) (engine.Resolution, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return engine.Resolution{}, err
	}
	return stored.resolution, nil
}

// RunForecast executes the engine over a dataset. Unset parameters fall back
// to the configured defaults, and an empty mapping falls back to the
// auto-detected one. Results are served from cache when possible.
func (s *ForecastService) RunForecast(ctx context.Context, id string, params engine.Params) (*engine.Result, error) {
	stored, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	params = s.applyDefaults(stored, params)

	if result, ok, err := s.cache.GetResult(ctx, id, params); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Str("dataset_id", id).Msg("forecast cache get failed")
	}

	result, err := engine.Run(stored.table, params)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetResult(ctx, id, params, result); err != nil {
		log.Warn().Err(err).Str("dataset_id", id).Msg("forecast cache set failed")
	}

	return result, nil
}

// ExportForecastCSV runs the engine and writes the forecast table to the
// output directory, returning the file path for download.
func (s *ForecastService) ExportForecastCSV(ctx context.Context, id string, params engine.Params) (string, error) {
	result, err := s.RunForecast(ctx, id, params)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("forecast_%s.csv", id))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create export file: %w", err)
	}
	defer f.Close()

	if err := engine.WriteForecastCSV(f, result.Forecasts); err != nil {
		return "", fmt.Errorf("failed to export forecasts: %w", err)
	}

	return path, nil
}

// Remove drops a dataset and invalidates its cached results.
func (s *ForecastService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	_, ok := s.datasets[id]
	delete(s.datasets, id)
	s.mu.Unlock()

	if !ok {
		return ErrDatasetNotFound
	}

	if err := s.cache.InvalidateDataset(ctx, id); err != nil {
		log.Warn().Err(err).Str("dataset_id", id).Msg("forecast cache invalidate failed")
	}
	return nil
}

func (s *ForecastService) lookup(id string) (*storedDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.datasets[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	return stored, nil
}

func (s *ForecastService) applyDefaults(stored *storedDataset, params engine.Params) engine.Params {
	if params.Mapping == (engine.Mapping{}) {
		params.Mapping = stored.resolution.Mapping
	}
	if params.Granularity == "" {
		params.Granularity, _ = domain.ParseGranularity(s.defaults.Granularity)
	}
	if params.Strategy == "" {
		params.Strategy, _ = domain.ParseStrategy(s.defaults.Strategy)
	}
	if params.Policy == "" {
		params.Policy, _ = domain.ParseReorderPolicy(s.defaults.Policy)
	}
	if params.Horizon == 0 && s.defaults.Horizon > 0 {
		params.Horizon = s.defaults.Horizon
	}
	if params.LeadTime == 0 {
		params.LeadTime = s.defaults.LeadTime
	}
	if params.ServiceLevel == 0 {
		params.ServiceLevel = s.defaults.ServiceLevel
	}
	return params
}
