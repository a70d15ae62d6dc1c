package deploy

import (
	"github.com/arthur-debert/deployrev/pkg/errors"
	"github.com/arthur-debert/deployrev/pkg/release"
)

// Status is a read-only view of a deploy root
type Status struct {
	DeployRoot  string            `json:"deploy_root" yaml:"deploy_root"`
	Deployed    bool              `json:"deployed" yaml:"deployed"`
	Revision    string            `json:"revision,omitempty" yaml:"revision,omitempty"`
	ReleasePath string            `json:"release_path,omitempty" yaml:"release_path,omitempty"`
	Releases    []release.Release `json:"releases" yaml:"releases"`
}

// Status reports the active revision and the releases on disk
func (d *Deployer) Status() (*Status, error) {
	revision, ok, err := d.pointer.Read()
	if err != nil {
		return nil, stageError(err, errors.ErrSwitch, StageCheckIdempotent)
	}

	releases, err := d.store.List(revision)
	if err != nil {
		return nil, err
	}

	status := &Status{
		DeployRoot: d.cfg.Layout.DeployRoot(),
		Deployed:   ok,
		Revision:   revision,
		Releases:   releases,
	}
	if ok {
		status.ReleasePath = d.cfg.Layout.ReleasePath(revision)
	}
	return status, nil
}

// Prune removes the oldest releases beyond keep, never the active one
func (d *Deployer) Prune(keep int) ([]release.Release, error) {
	active, _, err := d.pointer.Read()
	if err != nil {
		return nil, stageError(err, errors.ErrSwitch, StageCheckIdempotent)
	}
	return d.store.Prune(keep, active)
}
