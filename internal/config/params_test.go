package config

import (
	"errors"
	"testing"

	"github.com/san-kum/particlesim/internal/dynamo"
)

func TestParams_RoundTrip(t *testing.T) {
	for _, p := range Params() {
		t.Run(p.Name, func(t *testing.T) {
			cfg := GetPreset("rain")
			want := p.Get(cfg) + p.Step
			if err := cfg.SetParam(p.Name, want); err != nil {
				t.Fatal(err)
			}
			got, err := cfg.Param(p.Name)
			if err != nil {
				t.Fatal(err)
			}
			if got != want {
				t.Errorf("%s = %v after set, want %v", p.Name, got, want)
			}
		})
	}
}

func TestSetParam_AllGenerators(t *testing.T) {
	cfg := GetPreset("rain")
	if err := cfg.SetParam("generator.speed", 4); err != nil {
		t.Fatal(err)
	}
	for _, g := range cfg.Generators {
		if g.Speed != 4 {
			t.Errorf("generator %s speed = %v", g.Name, g.Speed)
		}
	}
}

func TestSetParam_Unknown(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.SetParam("particle.charge", 1); !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("SetParam(unknown) = %v", err)
	}
	if _, err := cfg.Param("particle.charge"); !errors.Is(err, dynamo.ErrUnknownMode) {
		t.Errorf("Param(unknown) = %v", err)
	}
}

func TestSetParam_ValidationStillApplies(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SetParam("particle.friction", 1.5)
	if err := cfg.Validate(); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("Validate() = %v, want ErrParameterBounds", err)
	}
}
