package bulkload_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/buger/jsonparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	graphbulk "github.com/graphbulk/graphbulk.go"
	"github.com/graphbulk/graphbulk.go/contrib/bulkload"
	"github.com/graphbulk/graphbulk.go/contrib/memstore"
	"github.com/graphbulk/graphbulk.go/pkg/constants"
	"github.com/graphbulk/graphbulk.go/pkg/logger"
	"github.com/graphbulk/graphbulk.go/pkg/schema"
)

type Person struct {
	schema.Vertex `label:"PERSON"`
	ID            string `graph:"id" json:"id"`
	Country       string `graph:"partitionKey" json:"country"`
	Name          string `json:"name"`
}

type Knows struct {
	schema.Edge `label:"knows" partitionKey:"country"`
	From        *Person `graph:"source"`
	To          *Person `graph:"destination"`
}

// Unpartitioned is missing its partition key and fails validation.
type Unpartitioned struct {
	schema.Vertex `label:"broken"`
	ID            string `graph:"id"`
}

// Link accepts any vertex as its source.
type Link struct {
	schema.Edge `label:"link" partitionKey:"country"`
	From        any     `graph:"source"`
	To          *Person `graph:"destination"`
}

// countingExecutor records the size of every batch it receives.
type countingExecutor struct {
	graphbulk.BulkWriteExecutor
	mu      sync.Mutex
	batches []int
}

func (c *countingExecutor) Execute(ctx context.Context, ops []graphbulk.WriteOperation) ([]graphbulk.OperationResult, error) {
	c.mu.Lock()
	c.batches = append(c.batches, len(ops))
	c.mu.Unlock()
	return c.BulkWriteExecutor.Execute(ctx, ops)
}

type failingExecutor struct{}

func (failingExecutor) Execute(context.Context, []graphbulk.WriteOperation) ([]graphbulk.OperationResult, error) {
	return nil, errors.New("service unavailable")
}

type LoaderTestSuite struct {
	suite.Suite
	store  *memstore.Store
	people []*Person
}

func TestLoaderSuite(t *testing.T) {
	suite.Run(t, new(LoaderTestSuite))
}

func (s *LoaderTestSuite) SetupTest() {
	s.store = memstore.New()
	s.people = nil
	for i := 0; i < 5; i++ {
		s.people = append(s.people, &Person{ID: fmt.Sprintf("p-%d", i), Country: "USA", Name: fmt.Sprintf("person %d", i)})
	}
}

func (s *LoaderTestSuite) vertices() []any {
	objs := make([]any, len(s.people))
	for i, p := range s.people {
		objs[i] = p
	}
	return objs
}

func (s *LoaderTestSuite) edges() []any {
	var objs []any
	for i := 1; i < len(s.people); i++ {
		objs = append(objs, Knows{From: s.people[i-1], To: s.people[i]})
	}
	return objs
}

func (s *LoaderTestSuite) config() bulkload.Config {
	cfg := bulkload.DefaultConfig()
	cfg.BatchSize = 2
	cfg.Workers = 3
	return cfg
}

func (s *LoaderTestSuite) TestLoad() {
	executor := &countingExecutor{BulkWriteExecutor: s.store}
	loader, err := bulkload.New(executor, s.config())
	s.Require().NoError(err)

	results, err := loader.Load(context.Background(), s.vertices(), s.edges())
	s.Require().NoError(err)

	s.Equal(5, results.VertexCount)
	s.Equal(4, results.EdgeCount)
	s.Equal(9, results.Succeeded)
	s.Equal(0, results.Failed)
	s.Empty(results.Errors)
	s.Equal(9, s.store.Len())

	s.ElementsMatch([]int{2, 2, 1, 2, 2}, executor.batches)

	s.Require().Len(results.States, 4)
	s.Equal(bulkload.StateConvertVertices, results.States[0].StateName)
	s.Equal(bulkload.StateLoadEdges, results.States[3].StateName)
	for _, state := range results.States {
		s.False(state.EndTime.IsZero())
	}
	s.False(results.EndTime.IsZero())

	doc, ok := s.store.Get("USA", "p-0")
	s.Require().True(ok)
	name, err := jsonparser.GetString(doc, "name", "[0]", "_value")
	s.Require().NoError(err)
	s.Equal("person 0", name)
}

func (s *LoaderTestSuite) TestAbortOnConversionError() {
	s.people[2].ID = ""
	loader, err := bulkload.New(s.store, s.config())
	s.Require().NoError(err)

	results, err := loader.Load(context.Background(), s.vertices(), s.edges())
	s.Require().Error(err)
	s.ErrorIs(err, constants.ErrMissingID)
	s.Contains(results.Exception, "vertex 2")
	s.Equal(0, s.store.Len(), "nothing is written when conversion aborts")
}

func (s *LoaderTestSuite) TestContinueOnConversionError() {
	s.people[2].ID = ""
	cfg := s.config()
	cfg.ContinueOnError = true
	loader, err := bulkload.New(s.store, cfg)
	s.Require().NoError(err)

	results, err := loader.Load(context.Background(), s.vertices(), s.edges())
	s.Require().NoError(err)

	// p-2 has no id, so it and both edges touching it fail to convert
	s.Equal(4, results.VertexCount)
	s.Equal(2, results.EdgeCount)
	s.Equal(3, results.Failed)
	s.Equal(6, results.Succeeded)
	s.Len(results.Errors, 3)
	s.Equal(6, s.store.Len())
}

func (s *LoaderTestSuite) TestValidationErrorSkipsType() {
	cfg := s.config()
	cfg.ContinueOnError = true
	loader, err := bulkload.New(s.store, cfg)
	s.Require().NoError(err)

	vertices := append(s.vertices(), Unpartitioned{ID: "u-1"}, Unpartitioned{ID: "u-2"}, &Unpartitioned{ID: "u-3"})

	results, err := loader.Load(context.Background(), vertices, nil)
	s.Require().NoError(err)

	s.Equal(5, results.VertexCount)
	s.Require().Len(results.Errors, 1, "reported once per type")
	s.ErrorIs(results.Errors[0].Err, constants.ErrValidation)
	s.Equal(1, results.Failed)
	s.Equal(2, results.Skipped)
}

func (s *LoaderTestSuite) TestInvalidEndpointTypeFailsOnlyItsRecord() {
	cfg := s.config()
	cfg.ContinueOnError = true
	loader, err := bulkload.New(s.store, cfg)
	s.Require().NoError(err)

	edges := []any{
		Link{From: Unpartitioned{ID: "u-1"}, To: s.people[1]},
		Link{From: s.people[0], To: s.people[1]},
		&Link{From: s.people[2], To: s.people[3]},
	}

	results, err := loader.Load(context.Background(), s.vertices(), edges)
	s.Require().NoError(err)

	s.Equal(2, results.EdgeCount)
	s.Equal(1, results.Failed)
	s.Equal(0, results.Skipped)
	s.Equal(7, results.Succeeded)
	s.Require().Len(results.Errors, 1)
	s.Equal(0, results.Errors[0].Index)
	s.ErrorIs(results.Errors[0].Err, constants.ErrConversion)
	s.ErrorIs(results.Errors[0].Err, constants.ErrValidation)
	s.Equal(7, s.store.Len())
}

func (s *LoaderTestSuite) TestWriteFailures() {
	s.store.AddFailure(memstore.FailureConfig{
		Matcher:    memstore.MatchID("p-3"),
		StatusCode: http.StatusTooManyRequests,
	})

	cfg := s.config()
	cfg.ContinueOnError = true
	loader, err := bulkload.New(s.store, cfg)
	s.Require().NoError(err)

	results, err := loader.Load(context.Background(), s.vertices(), nil)
	s.Require().NoError(err)
	s.Equal(4, results.Succeeded)
	s.Equal(1, results.Failed)
	s.Require().Len(results.Errors, 1)
	s.Equal("p-3", results.Errors[0].ID)
	s.Equal(http.StatusTooManyRequests, results.Errors[0].StatusCode)
	s.ErrorIs(results.Errors[0].Err, constants.ErrWriteFailed)

	s.store = memstore.New()
	s.store.AddFailure(memstore.FailureConfig{Matcher: memstore.MatchID("p-0"), StatusCode: http.StatusConflict})
	loader, err = bulkload.New(s.store, s.config())
	s.Require().NoError(err)
	_, err = loader.Load(context.Background(), s.vertices(), s.edges())
	s.ErrorIs(err, constants.ErrWriteFailed)
}

func (s *LoaderTestSuite) TestExecutorFailure() {
	loader, err := bulkload.New(failingExecutor{}, s.config())
	s.Require().NoError(err)

	results, err := loader.Load(context.Background(), s.vertices(), nil)
	s.ErrorIs(err, constants.ErrWriteFailed)
	s.Contains(results.Exception, "service unavailable")
}

func (s *LoaderTestSuite) TestCanceled() {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	loader, err := bulkload.New(s.store, s.config())
	s.Require().NoError(err)

	_, err = loader.Load(ctx, s.vertices(), s.edges())
	s.ErrorIs(err, context.Canceled)
	s.Equal(0, s.store.Len())
}

func (s *LoaderTestSuite) TestLogging() {
	buff := bytes.NewBuffer([]byte{})
	log, err := logger.NewBuilder().FromBuffer(buff).Make()
	s.Require().NoError(err)

	loader, err := bulkload.New(s.store, s.config(), bulkload.WithLogger(log))
	s.Require().NoError(err)

	_, err = loader.Load(context.Background(), s.vertices(), nil)
	s.Require().NoError(err)
	s.Contains(buff.String(), bulkload.StateLoadVertices)
	s.Contains(buff.String(), "bulkload complete")
}

func TestNew(t *testing.T) {
	_, err := bulkload.New(nil, bulkload.DefaultConfig())
	assert.ErrorIs(t, err, constants.ErrInvalidConfig)

	cfg := bulkload.DefaultConfig()
	cfg.BatchSize = 0
	_, err = bulkload.New(memstore.New(), cfg)
	assert.ErrorIs(t, err, constants.ErrInvalidConfig)
}

func TestConfig_Validate(t *testing.T) {
	testcases := []struct {
		name   string
		modify func(*bulkload.Config)
		valid  bool
	}{
		{"default", func(*bulkload.Config) {}, true},
		{"upsert", func(c *bulkload.Config) { c.Mode = graphbulk.ModeUpsert }, true},
		{"unknown mode", func(c *bulkload.Config) { c.Mode = graphbulk.Mode(3) }, false},
		{"no workers", func(c *bulkload.Config) { c.Workers = 0 }, false},
		{"negative batch", func(c *bulkload.Config) { c.BatchSize = -1 }, false},
	}

	for _, tc := range testcases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := bulkload.DefaultConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, constants.ErrInvalidConfig)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := bulkload.ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, bulkload.DefaultConfig(), cfg)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv(bulkload.EnvMode, "upsert")
		t.Setenv(bulkload.EnvWorkers, "8")
		t.Setenv(bulkload.EnvBatchSize, "500")
		t.Setenv(bulkload.EnvContinueOnError, "true")

		cfg, err := bulkload.ConfigFromEnv()
		require.NoError(t, err)
		assert.Equal(t, bulkload.Config{
			Mode:            graphbulk.ModeUpsert,
			Workers:         8,
			BatchSize:       500,
			ContinueOnError: true,
		}, cfg)
	})

	for _, env := range []string{bulkload.EnvMode, bulkload.EnvWorkers, bulkload.EnvBatchSize, bulkload.EnvContinueOnError} {
		t.Run("invalid "+env, func(t *testing.T) {
			t.Setenv(env, "not-a-value")
			_, err := bulkload.ConfigFromEnv()
			assert.ErrorIs(t, err, constants.ErrInvalidConfig)
		})
	}

	t.Run("zero workers", func(t *testing.T) {
		t.Setenv(bulkload.EnvWorkers, "0")
		_, err := bulkload.ConfigFromEnv()
		assert.ErrorIs(t, err, constants.ErrInvalidConfig)
	})
}

func TestResults_JSON(t *testing.T) {
	results := bulkload.NewResults(logger.Nop())
	results.SetCounts(100, 500)
	results.TransitionState("Adding Counts")
	results.TransitionState("Loading to Data Store")
	results.AddRecordError(bulkload.RecordError{Index: 3, Kind: "vertex", Err: errors.New("boom")})
	results.End()

	data, err := results.JSON()
	require.NoError(t, err)

	vertexCount, err := jsonparser.GetInt(data, "vertexCount")
	require.NoError(t, err)
	assert.Equal(t, int64(100), vertexCount)

	edgeCount, err := jsonparser.GetInt(data, "edgeCount")
	require.NoError(t, err)
	assert.Equal(t, int64(500), edgeCount)

	state, err := jsonparser.GetString(data, "states", "[1]", "stateName")
	require.NoError(t, err)
	assert.Equal(t, "Loading to Data Store", state)

	message, err := jsonparser.GetString(data, "errors", "[0]", "error")
	require.NoError(t, err)
	assert.Equal(t, "boom", message)

	_, _, _, err = jsonparser.Get(data, "exception")
	assert.ErrorIs(t, err, jsonparser.KeyPathNotFoundError)
}

func TestResults_Empty(t *testing.T) {
	data, err := bulkload.NewResults(logger.Nop()).JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"states":[]`)
	assert.Contains(t, string(data), `"vertexCount":0`)
	assert.Contains(t, string(data), `"durationInNanoSeconds":0`)
}
