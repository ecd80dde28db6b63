package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	particlesFile = "particles.csv"
)

var seriesHeader = []string{"time", "live", "kinetic_energy", "collisions", "emitted", "culled"}

var particleHeader = []string{"id", "generator", "x", "y", "z", "vx", "vy", "vz", "age", "lifespan", "r", "g", "b"}

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// RunDir is the directory holding a run's files.
func (s *Store) RunDir(runID string) string {
	return filepath.Join(s.baseDir, runID)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Integrator string             `json:"integrator"`
	Boundary   string             `json:"boundary"`
	PostImpact string             `json:"post_impact"`
	Eviction   string             `json:"eviction"`
	Generators int                `json:"generators"`
	Particles  int                `json:"particles"`
	Metrics    map[string]float64 `json:"metrics"`
}

// MetadataFor fills the configuration part of a run record from opts.
func MetadataFor(name string, opts sim.Options) RunMetadata {
	boundary := "none"
	if opts.Boundary != nil {
		boundary = opts.Boundary.Kind()
	}
	integ := opts.Integrator
	if integ == "" {
		integ = "euler"
	}
	return RunMetadata{
		Name:       name,
		Seed:       opts.Seed,
		Dt:         opts.Dt,
		Integrator: integ,
		Boundary:   boundary,
		PostImpact: opts.PostImpact.String(),
		Eviction:   opts.Eviction.String(),
		Generators: len(opts.Generators),
	}
}

// Save writes metadata.json, series.csv and a final particles.csv snapshot
// into a new run directory and returns its ID.
func (s *Store) Save(meta RunMetadata, result *sim.Result, particles []sim.Particle) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", meta.Name, now.Unix())
	runDir := filepath.Join(s.baseDir, runID)
	for n := 2; ; n++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%d_%d", meta.Name, now.Unix(), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta.ID = runID
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Particles = len(particles)
	meta.Metrics = result.Metrics

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), result); err != nil {
		return "", err
	}
	if err := writeParticles(filepath.Join(runDir, particlesFile), particles); err != nil {
		return "", err
	}

	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSeries(path string, result *sim.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(seriesHeader); err != nil {
		return err
	}
	for i := range result.Times {
		row := []string{
			formatFloat(result.Times[i]),
			strconv.Itoa(at(result.Live, i)),
			formatFloat(atFloat(result.Energy, i)),
			strconv.Itoa(at(result.Collisions, i)),
			strconv.Itoa(at(result.Emitted, i)),
			strconv.Itoa(at(result.Culled, i)),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeParticles(path string, particles []sim.Particle) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(particleHeader); err != nil {
		return err
	}
	for _, p := range particles {
		c := p.Color()
		row := []string{
			strconv.FormatUint(p.ID, 10),
			strconv.Itoa(p.Generator),
			formatFloat(p.Position[0]), formatFloat(p.Position[1]), formatFloat(p.Position[2]),
			formatFloat(p.Velocity[0]), formatFloat(p.Velocity[1]), formatFloat(p.Velocity[2]),
			formatFloat(p.Age), formatFloat(p.Lifespan),
			formatFloat(c[0]), formatFloat(c[1]), formatFloat(c[2]),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func at(xs []int, i int) int {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

func atFloat(xs []float64, i int) float64 {
	if i < len(xs) {
		return xs[i]
	}
	return 0
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

func readRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// LoadSeries reads series.csv back into a Result. Malformed rows are skipped.
func (s *Store) LoadSeries(runID string) (*sim.Result, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, seriesFile))
	if err != nil {
		return nil, err
	}

	result := &sim.Result{Metrics: make(map[string]float64)}
	if meta, err := s.Load(runID); err == nil && meta.Metrics != nil {
		result.Metrics = meta.Metrics
	}

	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(seriesHeader) {
			continue
		}
		t, err1 := strconv.ParseFloat(rec[0], 64)
		live, err2 := strconv.Atoi(rec[1])
		energy, err3 := strconv.ParseFloat(rec[2], 64)
		collisions, err4 := strconv.Atoi(rec[3])
		emitted, err5 := strconv.Atoi(rec[4])
		culled, err6 := strconv.Atoi(rec[5])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil || err5 != nil || err6 != nil {
			continue
		}
		result.Times = append(result.Times, t)
		result.Live = append(result.Live, live)
		result.Energy = append(result.Energy, energy)
		result.Collisions = append(result.Collisions, collisions)
		result.Emitted = append(result.Emitted, emitted)
		result.Culled = append(result.Culled, culled)
		result.StepsTaken++
	}

	return result, nil
}

// LoadParticles reads the final snapshot. Mass and material are not stored.
func (s *Store) LoadParticles(runID string) ([]sim.Particle, error) {
	records, err := readRecords(filepath.Join(s.baseDir, runID, particlesFile))
	if err != nil {
		return nil, err
	}

	out := make([]sim.Particle, 0, len(records))
	for i := 1; i < len(records); i++ {
		rec := records[i]
		if len(rec) != len(particleHeader) {
			continue
		}
		id, err := strconv.ParseUint(rec[0], 10, 64)
		if err != nil {
			continue
		}
		gen, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		vals := make([]float64, 8)
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(rec[2+j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}
		out = append(out, sim.Particle{
			ID:        id,
			Generator: gen,
			State: dynamo.State{
				Position: mgl64.Vec3{vals[0], vals[1], vals[2]},
				Velocity: mgl64.Vec3{vals[3], vals[4], vals[5]},
				Age:      vals[6],
				Lifespan: vals[7],
			},
		})
	}

	return out, nil
}
