package model

import (
	"fmt"
	"strings"

	"benchopt/pkg/types"
)

// Capability is a bit set of what a model declares it supports.
type Capability uint16

const (
	CapFP16Half Capability = 1 << iota
	CapAMP
	CapChannelsLast
	CapStagedTrain
	CapModuleIO
	CapOptimizerStep
	CapCfgOptimizerStep
)

var capabilityNames = []struct {
	name string
	cap  Capability
}{
	{types.CapabilityFP16Half, CapFP16Half},
	{types.CapabilityAMP, CapAMP},
	{types.CapabilityChannelsLast, CapChannelsLast},
	{types.CapabilityStagedTrain, CapStagedTrain},
	{types.CapabilityModuleIO, CapModuleIO},
	{types.CapabilityOptimizer, CapOptimizerStep},
	{types.CapabilityCfgOptimizer, CapCfgOptimizerStep},
}

// Has reports whether every bit of o is set in c.
func (c Capability) Has(o Capability) bool { return o != 0 && c&o == o }

func (c Capability) String() string {
	var names []string
	for _, n := range capabilityNames {
		if c.Has(n.cap) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// ParseCapabilities converts manifest capability names into a set.
func ParseCapabilities(names []string) (Capability, error) {
	var c Capability
outer:
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		if name == "" {
			continue
		}
		for _, n := range capabilityNames {
			if n.name == name {
				c |= n.cap
				continue outer
			}
		}
		return 0, fmt.Errorf("unknown capability %q", raw)
	}
	return c, nil
}
