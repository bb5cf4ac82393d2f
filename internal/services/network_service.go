package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vitalsight/vitalsight/internal/analytics"
	"github.com/vitalsight/vitalsight/internal/analytics/neural"
	"github.com/vitalsight/vitalsight/internal/compression"
	"github.com/vitalsight/vitalsight/internal/config"
	"github.com/vitalsight/vitalsight/internal/logging"
	"github.com/vitalsight/vitalsight/internal/metrics"
	"github.com/vitalsight/vitalsight/internal/models"
)

// networkEntry serialises every use of one network.
type networkEntry struct {
	mu      sync.Mutex
	network *neural.Network
	created time.Time
}

// NetworkService keeps neural networks in memory for the process lifetime,
// keyed by a random UUID.
type NetworkService struct {
	logger  *logging.Logger
	cfg     config.NetworkConfig
	seed    uint64
	metrics *metrics.Recorder

	mu       sync.RWMutex
	networks map[uuid.UUID]*networkEntry
}

// NewNetworkService creates a new NetworkService
func NewNetworkService(logger *logging.Logger, cfg config.AnalyticsConfig, recorder *metrics.Recorder) *NetworkService {
	return &NetworkService{
		logger:   logging.OrNop(logger),
		cfg:      cfg.Network,
		seed:     cfg.Seed,
		metrics:  recorder,
		networks: make(map[uuid.UUID]*networkEntry),
	}
}

func (s *NetworkService) observe(ctx context.Context, algorithm string, start time.Time, err error) error {
	return observe(ctx, s.logger, s.metrics, algorithm, start, err)
}

// Create builds a network with freshly initialised weights.
func (s *NetworkService) Create(ctx context.Context, req models.CreateNetworkRequest) (*models.NetworkResponse, error) {
	start := time.Now()

	activation, err := neural.ParseActivation(req.Activation)
	if err != nil {
		return nil, s.observe(ctx, "network_create", start, err)
	}
	if req.Activation == "" {
		if activation, err = neural.ParseActivation(s.cfg.Activation); err != nil {
			return nil, s.observe(ctx, "network_create", start, err)
		}
	}

	cfg := neural.Config{
		InputSize:    req.InputSize,
		HiddenSizes:  req.HiddenSizes,
		OutputSize:   req.OutputSize,
		LearningRate: orFloat(req.LearningRate, s.cfg.LearningRate),
		Activation:   activation,
		MinExamples:  orInt(req.MinExamples, s.cfg.MinExamples),
		Logger:       s.logger,
	}
	network, err := neural.New(cfg, seededRand(req.Seed, s.seed))
	if err != nil {
		return nil, s.observe(ctx, "network_create", start, err)
	}

	id, entry, err := s.store(network)
	if err != nil {
		return nil, err
	}
	s.logger.WithContext(ctx).Info("Network created", "id", id, "topology", cfg.Topology())
	return describe(id, entry), s.observe(ctx, "network_create", start, nil)
}

// Import registers a network from an exported blob, either plain JSON or a
// compressed blob from ExportCompressed.
func (s *NetworkService) Import(ctx context.Context, blob []byte) (*models.NetworkResponse, error) {
	start := time.Now()

	var (
		network *neural.Network
		err     error
	)
	switch {
	case len(blob) == 0:
		err = analytics.Errorf("import", analytics.ErrInvalidParameter, "empty body")
	case blob[0] == '{':
		network, err = neural.Import(blob)
	default:
		network, err = neural.ImportCompressed(blob)
	}
	if err != nil {
		return nil, s.observe(ctx, "network_import", start, err)
	}

	id, entry, err := s.store(network)
	if err != nil {
		return nil, err
	}
	return describe(id, entry), s.observe(ctx, "network_import", start, nil)
}

func (s *NetworkService) store(network *neural.Network) (uuid.UUID, *networkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxNetworks > 0 && len(s.networks) >= s.cfg.MaxNetworks {
		return uuid.Nil, nil, NewServiceErrorWithDetails(CodeCapacityExceeded,
			"network limit reached", map[string]interface{}{"max_networks": s.cfg.MaxNetworks})
	}
	id := uuid.New()
	entry := &networkEntry{network: network, created: time.Now().UTC()}
	s.networks[id] = entry
	s.metrics.SetNetworks(len(s.networks))
	return id, entry, nil
}

func (s *NetworkService) lookup(id string) (uuid.UUID, *networkEntry, error) {
	parsed, err := uuid.Parse(id)
	if err == nil {
		s.mu.RLock()
		entry, ok := s.networks[parsed]
		s.mu.RUnlock()
		if ok {
			return parsed, entry, nil
		}
	}
	return uuid.Nil, nil, NewServiceErrorWithDetails(CodeModelNotFound,
		fmt.Sprintf("network %q not found", id), map[string]interface{}{"id": id})
}

func describe(id uuid.UUID, entry *networkEntry) *models.NetworkResponse {
	return &models.NetworkResponse{
		ID:        id.String(),
		Config:    entry.network.Config(),
		Trained:   entry.network.Trained(),
		CreatedAt: entry.created,
	}
}

// Get describes one network.
func (s *NetworkService) Get(ctx context.Context, id string) (*models.NetworkResponse, error) {
	parsed, entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return describe(parsed, entry), nil
}

// List describes every network, oldest first.
func (s *NetworkService) List(ctx context.Context) *models.NetworkListResponse {
	s.mu.RLock()
	ids := make([]uuid.UUID, 0, len(s.networks))
	entries := make([]*networkEntry, 0, len(s.networks))
	for id, entry := range s.networks {
		ids = append(ids, id)
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	out := make([]models.NetworkResponse, len(ids))
	for i := range ids {
		entries[i].mu.Lock()
		out[i] = *describe(ids[i], entries[i])
		entries[i].mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return &models.NetworkListResponse{Networks: out}
}

// Capacity reports how many networks are held and the configured limit,
// zero when unbounded.
func (s *NetworkService) Capacity() (held, limit int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.networks), s.cfg.MaxNetworks
}

// Delete forgets a network.
func (s *NetworkService) Delete(ctx context.Context, id string) error {
	parsed, _, err := s.lookup(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.networks, parsed)
	s.metrics.SetNetworks(len(s.networks))
	s.mu.Unlock()
	return nil
}

// Train fits a network in place. Concurrent calls on the same network run
// one after another.
func (s *NetworkService) Train(ctx context.Context, id string, req models.TrainRequest) (*models.TrainResponse, error) {
	_, entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	opts := neural.TrainOptions{
		Epochs:         orInt(req.Epochs, s.cfg.Epochs),
		BatchSize:      orInt(req.BatchSize, s.cfg.BatchSize),
		ErrorThreshold: orFloat(req.ErrorThreshold, s.cfg.ErrorThreshold),
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	start := time.Now()
	res, err := entry.network.Train(neural.TrainingSet(req.Examples), opts, seededRand(req.Seed, s.seed))
	if err != nil {
		return nil, s.observe(ctx, "network_train", start, err)
	}
	s.logger.WithContext(ctx).Info("Network trained",
		"id", id,
		"epochs", res.Epochs,
		"final_error", res.FinalError,
		"converged", res.Converged)
	return &models.TrainResponse{ID: id, TrainResult: res}, s.observe(ctx, "network_train", start, nil)
}

// Predict runs a network on one input. With dropout and no sample count the
// configured number of Monte-Carlo passes is used.
func (s *NetworkService) Predict(ctx context.Context, id string, req models.PredictRequest) (*neural.Prediction, error) {
	_, entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	opts := neural.PredictOptions{Samples: req.Samples, Dropout: req.Dropout}
	if opts.Samples == 0 && opts.Dropout > 0 {
		opts.Samples = s.cfg.Samples
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	start := time.Now()
	pred, err := entry.network.Predict(req.Input, opts, seededRand(req.Seed, s.seed))
	if err != nil {
		return nil, s.observe(ctx, "network_predict", start, err)
	}
	return pred, s.observe(ctx, "network_predict", start, nil)
}

// Export serialises a network, snappy-compressed when compressed is set.
func (s *NetworkService) Export(ctx context.Context, id string, compressed bool) ([]byte, error) {
	_, entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	start := time.Now()
	var blob []byte
	if compressed {
		blob, err = entry.network.ExportCompressed(compression.Snappy)
	} else {
		blob, err = entry.network.Export()
	}
	return blob, s.observe(ctx, "network_export", start, err)
}
