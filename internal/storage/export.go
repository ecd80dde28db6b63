package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/particlesim/internal/dynamo"
	"github.com/san-kum/particlesim/internal/sim"
)

type ExportParticle struct {
	ID        uint64     `json:"id"`
	Generator int        `json:"generator"`
	Position  [3]float64 `json:"position"`
	Velocity  [3]float64 `json:"velocity"`
	Age       float64    `json:"age"`
	Color     string     `json:"color"`
}

type ExportData struct {
	Name       string             `json:"name"`
	Integrator string             `json:"integrator"`
	Boundary   string             `json:"boundary"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Times      []float64          `json:"times"`
	Live       []int              `json:"live"`
	Energy     []float64          `json:"kinetic_energy"`
	Collisions []int              `json:"collisions"`
	Particles  []ExportParticle   `json:"particles,omitempty"`
	Metrics    map[string]float64 `json:"metrics"`
}

// NewExportData flattens a run into its JSON form. Colors are hex strings.
func NewExportData(meta RunMetadata, result *sim.Result, particles []sim.Particle) ExportData {
	data := ExportData{
		Name:       meta.Name,
		Integrator: meta.Integrator,
		Boundary:   meta.Boundary,
		Dt:         meta.Dt,
		Steps:      len(result.Times),
		Times:      result.Times,
		Live:       result.Live,
		Energy:     result.Energy,
		Collisions: result.Collisions,
		Metrics:    result.Metrics,
	}
	for _, p := range particles {
		data.Particles = append(data.Particles, ExportParticle{
			ID:        p.ID,
			Generator: p.Generator,
			Position:  p.Position,
			Velocity:  p.Velocity,
			Age:       p.Age,
			Color:     hexColor(p),
		})
	}
	return data
}

func ExportJSON(path string, meta RunMetadata, result *sim.Result, particles []sim.Particle) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, meta, result, particles)
}

func WriteJSON(w io.Writer, meta RunMetadata, result *sim.Result, particles []sim.Particle) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, result, particles))
}

func ExportJSONStdout(meta RunMetadata, result *sim.Result, particles []sim.Particle) error {
	return WriteJSON(os.Stdout, meta, result, particles)
}

func hexColor(p sim.Particle) string {
	return dynamo.SpeedColor(p.Velocity).Hex()
}
