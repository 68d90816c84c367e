// Package catalog registers the built-in control groups.
package catalog

import (
	"github.com/de-tools/evidence-atlas/pkg/services/controls"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/billing"
	"github.com/de-tools/evidence-atlas/pkg/services/controls/service"
)

// NewRegistry returns a registry holding the service group followed by the billing group.
func NewRegistry() (controls.Registry, error) {
	registry := controls.NewRegistry()
	if err := registry.Register(service.Group, service.Checks); err != nil {
		return nil, err
	}
	if err := registry.Register(billing.Group, billing.Checks); err != nil {
		return nil, err
	}
	return registry, nil
}
