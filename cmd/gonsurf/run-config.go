package main

import (
	"os"
	"strings"
	"time"

	"github.com/2x3systems/gonsurf/gonsurf"
	"github.com/2x3systems/gonsurf/libnsurf/tri"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// RunConfig is the yaml form of a batch of enumeration runs.
//
//	coords: standard
//	which: vertex
//	algorithm: tree
//	constraints: euler-positive
//	ban: edge
//	edge: 2
//	coefficient_bits: 0
//	timeout: 30s
//	catalog: /tmp/nsurf.db
//	jobs: 4
//	samples: [figure8, s3]
//	triangulations:
//	  - "1: 0.0 0 (1023), 0.3 0 (0132)"
type RunConfig struct {
	Coords          string   `yaml:"coords"`
	Which           string   `yaml:"which"`
	Algorithm       string   `yaml:"algorithm"`
	Constraints     string   `yaml:"constraints"`
	Ban             string   `yaml:"ban"`
	Edge            int      `yaml:"edge"`
	CoefficientBits int      `yaml:"coefficient_bits"`
	Timeout         string   `yaml:"timeout"`
	Catalog         string   `yaml:"catalog"`
	Jobs            int      `yaml:"jobs"`
	Samples         []string `yaml:"samples"`
	Triangulations  []string `yaml:"triangulations"`
}

func DefaultRunConfig() RunConfig {
	return RunConfig{
		Coords: "standard",
		Which:  "vertex",
		Jobs:   1,
	}
}

// LoadRunConfig overlays the yaml file at pathname onto cfg.
func LoadRunConfig(pathname string, cfg *RunConfig) error {
	buf, err := os.ReadFile(pathname)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(buf, cfg); err != nil {
		return errors.Wrapf(gonsurf.ErrInvalidArgument, "run config %q: %v", pathname, err)
	}
	return nil
}

// EnumOpts converts cfg to library options.
func (cfg *RunConfig) EnumOpts() (opts gonsurf.EnumOpts, err error) {
	if opts.Coords, err = gonsurf.ParseCoords(cfg.Coords); err != nil {
		return
	}
	if opts.Which, err = gonsurf.ParseWhich(cfg.Which); err != nil {
		return
	}
	if opts.Algorithm, err = gonsurf.ParseAlgorithm(cfg.Algorithm); err != nil {
		return
	}
	if opts.Constraints, err = gonsurf.ParseConstraint(cfg.Constraints); err != nil {
		return
	}
	if opts.Ban.Kind, err = gonsurf.ParseBanKind(cfg.Ban); err != nil {
		return
	}
	opts.Ban.Edge = cfg.Edge
	opts.CoefficientBits = cfg.CoefficientBits
	return
}

func (cfg *RunConfig) TimeoutDuration() (time.Duration, error) {
	if len(cfg.Timeout) == 0 {
		return 0, nil
	}
	d, err := time.ParseDuration(cfg.Timeout)
	if err != nil {
		return 0, errors.Wrapf(gonsurf.ErrInvalidArgument, "timeout %q", cfg.Timeout)
	}
	return d, nil
}

// Inputs returns the sample triangulations followed by the gluing lists of cfg and then args.
func (cfg *RunConfig) Inputs(args []string) ([]*tri.Triangulation, error) {
	var all []*tri.Triangulation
	for _, name := range cfg.Samples {
		mk := tri.Samples[strings.ToLower(strings.TrimSpace(name))]
		if mk == nil {
			return nil, errors.Wrapf(gonsurf.ErrInvalidArgument, "no sample named %q", name)
		}
		all = append(all, mk())
	}
	for _, list := range [][]string{cfg.Triangulations, args} {
		for _, expr := range list {
			T, err := tri.Parse(expr)
			if err != nil {
				return nil, err
			}
			all = append(all, T)
		}
	}
	if len(all) == 0 {
		return nil, errors.Wrap(gonsurf.ErrInvalidArgument, "no triangulations given")
	}
	return all, nil
}
