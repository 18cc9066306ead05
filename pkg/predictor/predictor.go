// Package predictor owns the model lifecycle: loading a persisted
// artifact, training on demand, and serving uncertainty-aware yield
// predictions.
package predictor

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/stat"

	"github.com/Chirayu-blip/nasa-agrosim/pkg/dataset"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/ensemble"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/features"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/models"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/store"
	"github.com/Chirayu-blip/nasa-agrosim/pkg/weather"
)

// State is the model lifecycle state.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateTraining
	StateReady
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateTraining:
		return "training"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// WeatherSource provides aggregated climate observations for a location.
type WeatherSource interface {
	RecentWeather(ctx context.Context, latitude, longitude float64, daysBack int) (*weather.Observation, error)
}

// Config holds the predictor's operational settings.
type Config struct {
	Training ensemble.Config
	// SampleSize is the number of records requested from the provider
	// per training run.
	SampleSize int
	// NBootstrap is the number of noise draws backing the confidence
	// interval.
	NBootstrap int
	Seed       int64
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		Training:   ensemble.DefaultConfig(),
		SampleSize: 5000,
		NBootstrap: 100,
		Seed:       42,
	}
}

// Predictor serves yield predictions from a trained artifact. Training
// runs are serialized; a previously trained artifact keeps serving
// predictions while a retrain is in flight and is swapped atomically
// when the new one is ready.
type Predictor struct {
	store    *store.Store
	provider dataset.Provider
	weather  WeatherSource
	cfg      Config

	mu       sync.RWMutex
	state    State
	artifact *store.Artifact
	training bool

	trainMu sync.Mutex

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a predictor. The weather source may be nil if location
// predictions are not used.
func New(st *store.Store, provider dataset.Provider, ws WeatherSource, cfg Config) *Predictor {
	return &Predictor{
		store:    st,
		provider: provider,
		weather:  ws,
		cfg:      cfg,
		state:    StateUnloaded,
		rng:      rand.New(rand.NewSource(cfg.Seed)),
	}
}

// State returns the current lifecycle state.
func (p *Predictor) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Metrics returns the current artifact's training metrics, or nil when
// no model is loaded.
func (p *Predictor) Metrics() *models.ModelMetrics {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.artifact == nil {
		return nil
	}
	return p.artifact.Metrics
}

// Artifact returns the currently served artifact, or nil.
func (p *Predictor) Artifact() *store.Artifact {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.artifact
}

// Load restores a persisted artifact if one exists. It is idempotent
// and a no-op when a model is already loaded.
func (p *Predictor) Load() error {
	p.mu.Lock()
	if p.state == StateReady {
		p.mu.Unlock()
		return nil
	}
	p.state = StateLoading
	p.mu.Unlock()

	artifact, err := p.store.Load()
	if err != nil {
		p.setState(StateUnloaded)
		return fmt.Errorf("failed to load model artifact: %w", err)
	}
	if artifact == nil {
		p.setState(StateUnloaded)
		return nil
	}

	p.mu.Lock()
	p.artifact = artifact
	p.state = StateReady
	p.mu.Unlock()

	log.Printf("✓ Loaded model %s trained at %s (R²=%.4f)",
		artifact.ID, artifact.TrainedAt.Format(time.RFC3339), artifact.Metrics.R2)
	return nil
}

// TrainingInProgress reports whether a training run is active. It is
// independent of State, which stays ready while a retrain replaces an
// already serving artifact.
func (p *Predictor) TrainingInProgress() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.training
}

// Train fetches training data, fits a new stacked ensemble and swaps it
// in. Concurrent calls are serialized; the previous artifact keeps
// serving until the new one is persisted.
func (p *Predictor) Train(ctx context.Context) (*models.ModelMetrics, error) {
	p.trainMu.Lock()
	defer p.trainMu.Unlock()
	return p.train(ctx)
}

// train runs one training pass. The caller must hold trainMu.
func (p *Predictor) train(ctx context.Context) (*models.ModelMetrics, error) {
	p.mu.Lock()
	p.training = true
	if p.artifact == nil {
		p.state = StateTraining
	}
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.training = false
		p.mu.Unlock()
	}()

	records, err := p.provider.Records(ctx, p.cfg.SampleSize)
	if err != nil {
		p.recoverState()
		return nil, fmt.Errorf("failed to obtain training data: %w", err)
	}

	result, err := ensemble.NewTrainer(p.cfg.Training).Train(ctx, records)
	if err != nil {
		p.recoverState()
		return nil, err
	}

	artifact := &store.Artifact{
		ID:           uuid.New(),
		TrainedAt:    time.Now().UTC(),
		FeatureNames: result.Engineer.FeatureNames,
		Engineer:     result.Engineer,
		Ensemble:     result.Ensemble,
		Metrics:      result.Metrics,
	}

	if err := p.store.Save(artifact); err != nil {
		log.Printf("⚠ Trained model could not be persisted, serving it in memory only: %v", err)
	}

	p.mu.Lock()
	p.artifact = artifact
	p.state = StateReady
	p.mu.Unlock()

	return artifact.Metrics, nil
}

// recoverState resets the lifecycle after a failed train without
// touching an artifact that is already serving.
func (p *Predictor) recoverState() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.artifact == nil {
		p.state = StateUnloaded
	} else {
		p.state = StateReady
	}
}

func (p *Predictor) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

// ensureReady makes sure an artifact is available: it tries a disk load
// first and trains from scratch as a last resort.
func (p *Predictor) ensureReady(ctx context.Context) (*store.Artifact, error) {
	p.mu.RLock()
	artifact := p.artifact
	p.mu.RUnlock()
	if artifact != nil {
		return artifact, nil
	}

	if err := p.Load(); err != nil {
		log.Printf("⚠ Model load failed: %v", err)
	}

	p.mu.RLock()
	artifact = p.artifact
	p.mu.RUnlock()
	if artifact != nil {
		return artifact, nil
	}

	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	// A concurrent caller may have trained while this one waited for the
	// lock; serve its artifact instead of training again.
	p.mu.RLock()
	artifact = p.artifact
	p.mu.RUnlock()
	if artifact != nil {
		return artifact, nil
	}

	log.Println("Model not trained yet, training now...")
	if _, err := p.train(ctx); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.artifact, nil
}

// Predict runs inference for a scenario. Crop validation happens before
// any model work, so an unsupported crop never triggers a lazy train.
func (p *Predictor) Predict(ctx context.Context, scenario models.Scenario) (*models.PredictionResult, error) {
	scenario.ApplyDefaults()
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	params, err := models.CropParams(scenario.Crop)
	if err != nil {
		return nil, err
	}

	artifact, err := p.ensureReady(ctx)
	if err != nil {
		return nil, err
	}

	record, err := scenario.Record()
	if err != nil {
		return nil, err
	}
	x, err := artifact.Engineer.TransformOne(record)
	if err != nil {
		return nil, fmt.Errorf("failed to build feature vector: %w", err)
	}

	predicted := artifact.Ensemble.Predict(x)
	lower, upper := p.confidenceInterval(artifact.Ensemble, x, predicted)

	risks := analyzeRisks(params, scenario)

	return &models.PredictionResult{
		Crop:              scenario.Crop,
		PredictedYield:    round2(predicted),
		ConfidenceLower:   round2(lower),
		ConfidenceUpper:   round2(upper),
		ConfidenceLevel:   0.95,
		RiskFactors:       risks,
		Recommendations:   recommendations(risks, scenario.TempAvg),
		ModelMetrics:      *artifact.Metrics,
		FeatureImportance: p.rankedImportances(artifact),
	}, nil
}

// PredictAtLocation fetches recent NASA POWER weather for the location
// and predicts with it, falling back to a latitude-based climate
// estimate when the API is unavailable.
func (p *Predictor) PredictAtLocation(ctx context.Context, crop string, latitude, longitude float64, scenario models.Scenario) (*models.PredictionResult, error) {
	if _, err := models.CropParams(crop); err != nil {
		return nil, err
	}

	var obs *weather.Observation
	if p.weather != nil {
		var err error
		obs, err = p.weather.RecentWeather(ctx, latitude, longitude, 30)
		if err != nil {
			log.Printf("⚠ Could not fetch weather for (%.2f, %.2f), using climate estimate: %v",
				latitude, longitude, err)
		}
	}
	if obs == nil {
		obs = weather.EstimateFromLatitude(latitude, longitude)
	}

	precipitation := obs.TotalPrecipitation
	if precipitation == 0 {
		precipitation = obs.AvgPrecipitation
	}

	scenario.Crop = crop
	scenario.Latitude = latitude
	scenario.Longitude = longitude
	scenario.TempAvg = obs.TempAvg
	scenario.TempMin = obs.TempMin
	scenario.TempMax = obs.TempMax
	scenario.Precipitation = precipitation
	scenario.Humidity = obs.Humidity
	scenario.SolarRadiation = obs.SolarRadiation
	scenario.WindSpeed = obs.WindSpeed

	return p.Predict(ctx, scenario)
}

// confidenceInterval derives a 95% interval by adding Gaussian noise
// scaled to 5% of the point estimate onto each base model's prediction.
// The bounds are clamped so lower <= predicted <= upper and lower >= 0.
func (p *Predictor) confidenceInterval(ens *ensemble.Ensemble, x []float64, predicted float64) (float64, float64) {
	base := ens.BasePredictions(x)
	perModel := p.cfg.NBootstrap / 3
	if perModel < 1 {
		perModel = 1
	}

	sigma := math.Abs(predicted) * 0.05
	draws := make([]float64, 0, perModel*len(base))

	p.rngMu.Lock()
	for _, pred := range base {
		for i := 0; i < perModel; i++ {
			draws = append(draws, pred+p.rng.NormFloat64()*sigma)
		}
	}
	p.rngMu.Unlock()

	sort.Float64s(draws)
	lower := stat.Quantile(0.025, stat.LinInterp, draws, nil)
	upper := stat.Quantile(0.975, stat.LinInterp, draws, nil)

	lower = math.Max(0, lower)
	if lower > predicted {
		lower = predicted
	}
	if upper < predicted {
		upper = predicted
	}
	return lower, upper
}

// rankedImportances returns the ensemble's feature importances in
// descending order with display names.
func (p *Predictor) rankedImportances(artifact *store.Artifact) []models.FeatureImportance {
	values := artifact.Ensemble.FeatureImportances()

	ranked := make([]models.FeatureImportance, len(values))
	for i, v := range values {
		ranked[i] = models.FeatureImportance{
			Feature:    features.DisplayName(artifact.FeatureNames[i]),
			Importance: math.Round(v*10000) / 10000,
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Importance > ranked[j].Importance
	})
	return ranked
}
