package cmd

import (
	"os"

	"github.com/APanico12/MCMC/mcmc/sampler/model"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// observationsFile is the YAML layout of a data file, e.g.
//
//	groups:
//	  - [62, 60, 63]
//	  - [63, 67, 71]
//
// The optional dimensions are checked against the groups when given.
type observationsFile struct {
	NGroups int         `yaml:"n_groups"`
	NObs    int         `yaml:"n_obs"`
	Groups  [][]float64 `yaml:"groups"`
}

// loadModel creates the hierarchical normal model from the observations in the given data
// file, or from the default observations if the path is empty.
func loadModel(path string, hp *model.Hyperparameters) (*model.HierarchicalNormal, error) {
	if path == "" {
		return model.New(model.DefaultObservations(), hp)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading data file")
	}
	var f observationsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, errors.Wrapf(err, "parsing data file %s", path)
	}
	if len(f.Groups) == 0 {
		return nil, errors.Errorf("data file %s has no groups", path)
	}
	nGroups, nObs := f.NGroups, f.NObs
	if nGroups == 0 {
		nGroups = len(f.Groups)
	}
	if nObs == 0 {
		nObs = len(f.Groups[0])
	}
	return model.NewWithDims(nGroups, nObs, f.Groups, hp)
}
