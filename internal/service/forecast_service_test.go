package service

import (
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/domain"
	"github.com/andresuchdata/demandcast/internal/engine"
)

const sampleCSV = `Date,Product ID,Units Sold,Inventory Level
2024-01-10,P1,100,40
2024-02-10,P1,110,40
2024-03-10,P1,121,40
2024-01-05,P2,50,500
2024-02-05,P2,55,500
`

func newTestService(t *testing.T) *ForecastService {
	t.Helper()
	cfg := &config.Config{
		Engine: config.EngineConfig{
			Granularity:  "monthly",
			Strategy:     "growth",
			Policy:       "simple",
			Horizon:      2,
			LeadTime:     7,
			ServiceLevel: 1.65,
		},
		App: config.AppConfig{OutputDir: t.TempDir()},
	}
	return NewForecastService(cfg, nil)
}

func TestAddDatasetAndRunForecast(t *testing.T) {
	s := newTestService(t)

	ds, err := s.AddDataset(context.Background(), "sales.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, 5, ds.Rows)
	assert.Equal(t, "sales.csv", ds.Filename)

	// auto-detected mapping and configured defaults are applied
	result, err := s.RunForecast(context.Background(), ds.ID, engine.Params{})
	require.NoError(t, err)
	require.Len(t, result.Forecasts, 2)
	assert.InDelta(t, 146.41, result.Forecasts[0].Forecast, 1e-9)
	assert.Equal(t, domain.StatusReorder, result.Alerts[0].Status)
	assert.Equal(t, domain.StatusOK, result.Alerts[1].Status)
}

func TestAddDatasetsConcurrent(t *testing.T) {
	s := newTestService(t)

	inputs := []UploadInput{
		{Filename: "a.csv", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(sampleCSV)), nil
		}},
		{Filename: "b.csv", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(sampleCSV)), nil
		}},
	}

	datasets, err := s.AddDatasets(context.Background(), inputs)
	require.NoError(t, err)
	assert.Len(t, datasets, 2)
	assert.Len(t, s.Datasets(), 2)
}

func TestAddDatasetsFailureRegistersNothing(t *testing.T) {
	s := newTestService(t)

	inputs := []UploadInput{
		{Filename: "good.csv", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(sampleCSV)), nil
		}},
		{Filename: "empty.csv", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("")), nil
		}},
	}

	_, err := s.AddDatasets(context.Background(), inputs)
	require.Error(t, err)
	assert.Empty(t, s.Datasets())
}

func TestColumnsResolution(t *testing.T) {
	s := newTestService(t)

	ds, err := s.AddDataset(context.Background(), "sales.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	res, err := s.Columns(ds.ID)
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Equal(t, "Units Sold", res.Mapping.Demand)
	assert.Equal(t, "Inventory Level", res.Mapping.Inventory)
}

func TestDatasetNotFound(t *testing.T) {
	s := newTestService(t)

	_, err := s.RunForecast(context.Background(), "nope", engine.Params{})
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	_, err = s.Columns("nope")
	assert.ErrorIs(t, err, ErrDatasetNotFound)

	assert.ErrorIs(t, s.Remove(context.Background(), "nope"), ErrDatasetNotFound)
}

func TestExportForecastCSV(t *testing.T) {
	s := newTestService(t)

	ds, err := s.AddDataset(context.Background(), "sales.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	path, err := s.ExportForecastCSV(context.Background(), ds.ID, engine.Params{})
	require.NoError(t, err)

	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "product,last_value,forecast,growth_rate", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "P1,121,146,"))
}

func TestRemoveDataset(t *testing.T) {
	s := newTestService(t)

	ds, err := s.AddDataset(context.Background(), "sales.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.NoError(t, s.Remove(context.Background(), ds.ID))
	_, err = s.Dataset(ds.ID)
	assert.ErrorIs(t, err, ErrDatasetNotFound)
}
