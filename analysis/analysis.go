// Package analysis - Metadaten-Analyse fuer Tensor-Termgraphen
//
// Dieses Paket uebersetzt jeden neu eingefuegten Knoten in Metadaten seiner
// Aequivalenzklasse. Tensor-Knoten werden dabei im Backend-Graphen angelegt:
// - TensorAnalysis: Make, Merge, Modify fuer egraph.EGraph
// - Session/Handle: exklusiver Backend-Zugang und geliehene Tensor-Verweise
// - Metadata: Name, Scalar, Tensor oder TensorPair
package analysis

import (
	"log/slog"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/jakobhartmann/tensat/costcache"
	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/envconfig"
	"github.com/jakobhartmann/tensat/ml"
	"github.com/jakobhartmann/tensat/model"
)

// Config controls a TensorAnalysis.
type Config struct {
	// Backend is the registered backend name.
	Backend string

	// Seed initializes the weight RNG. Zero selects a time based seed.
	Seed uint64

	WeightDType ml.DType

	// StrictMerge makes Merge check that both records are interchangeable.
	StrictMerge bool

	// CostCacheDir, if set, persists op costs in a BadgerDB directory.
	// Otherwise costs are cached in memory for the lifetime of the analysis.
	CostCacheDir string

	PeakFLOPS float64
	Bandwidth float64

	Logger *slog.Logger
}

// DefaultConfig reads the configuration from the environment.
func DefaultConfig() (Config, error) {
	dtype, err := ml.ParseDType(envconfig.WeightDType())
	if err != nil {
		return Config{}, errors.Wrap(err, "TENSAT_WEIGHT_DTYPE")
	}

	return Config{
		Backend:      envconfig.Backend(),
		Seed:         envconfig.Seed(),
		WeightDType:  dtype,
		StrictMerge:  envconfig.StrictMerge(true),
		CostCacheDir: envconfig.CostCache(),
		PeakFLOPS:    float64(envconfig.PeakFLOPS()),
		Bandwidth:    float64(envconfig.Bandwidth()),
		Logger:       slog.Default(),
	}, nil
}

// TensorAnalysis computes class metadata by building the corresponding
// tensor graph in a backend session. It implements
// egraph.Analysis[model.Node, Metadata].
type TensorAnalysis struct {
	session *Session
	cache   costcache.Cache
	rng     *rand.Rand
	strict  bool
	logger  *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

var _ egraph.Analysis[model.Node, Metadata] = (*TensorAnalysis)(nil)

// New opens a backend session for cfg.
func New(cfg Config) (*TensorAnalysis, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Backend == "" {
		cfg.Backend = "ref"
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	cache := costcache.NewMemory()
	if cfg.CostCacheDir != "" {
		var err error
		cache, err = costcache.Open(costcache.Config{Path: cfg.CostCacheDir, Logger: cfg.Logger})
		if err != nil {
			return nil, errors.Wrap(err, "open cost cache")
		}
	}

	session, err := OpenSession(cfg.Backend, ml.BackendParams{
		WeightDType: cfg.WeightDType,
		CostCache:   cache,
		PeakFLOPS:   cfg.PeakFLOPS,
		Bandwidth:   cfg.Bandwidth,
		Logger:      cfg.Logger,
	})
	if err != nil {
		cache.Close()
		return nil, err
	}

	cfg.Logger.Debug("tensor analysis ready", "backend", cfg.Backend, "seed", seed, "dtype", cfg.WeightDType, "strict", cfg.StrictMerge)
	return &TensorAnalysis{
		session: session,
		cache:   cache,
		rng:     rand.New(rand.NewPCG(seed, seed>>32|seed<<32)),
		strict:  cfg.StrictMerge,
		logger:  cfg.Logger,
	}, nil
}

// Session returns the backend session, e.g. for graph introspection.
func (a *TensorAnalysis) Session() *Session {
	return a.session
}

// Close tears down the backend session and the cost cache. Handles obtained
// from the analysis become unusable.
func (a *TensorAnalysis) Close() error {
	a.closeOnce.Do(func() {
		a.session.Close()
		a.closeErr = a.cache.Close()
	})
	return a.closeErr
}
