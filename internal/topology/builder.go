package topology

import (
	"fmt"
	"log/slog"
	"sort"

	"static-topology-analyzer/internal/model"
	"static-topology-analyzer/internal/utils"
)

// Builder infers the network graph from a parsed device set. Links come from
// interfaces sharing an IPv4 subnet; a shared broadcast domain becomes a
// full mesh of pairwise links.
type Builder struct {
	topo *model.Topology
}

func NewBuilder() *Builder {
	return &Builder{topo: model.NewTopology()}
}

func (b *Builder) Build(devices map[string]*model.Device) *model.Topology {
	for _, name := range sortedNames(devices) {
		b.topo.AddDevice(devices[name])
	}
	b.discoverLinks(devices)
	b.buildSubnetMap(devices)
	return b.topo
}

type subnetMember struct {
	device string
	ifc    *model.Interface
}

func (b *Builder) discoverLinks(devices map[string]*model.Device) {
	groups := make(map[string][]subnetMember)
	var order []string // first-seen key order keeps link output stable

	for _, devName := range sortedNames(devices) {
		dev := devices[devName]
		for _, ifName := range dev.InterfaceNames() {
			ifc := dev.Interfaces[ifName]
			if !ifc.HasAddress() {
				continue
			}
			key, err := utils.NetworkKey(ifc.Address, ifc.Mask)
			if err != nil {
				slog.Warn("Skipping interface with unparseable address",
					"device", devName, "interface", ifName,
					"address", ifc.Address, "mask", ifc.Mask, "error", err)
				continue
			}
			if _, seen := groups[key]; !seen {
				order = append(order, key)
			}
			groups[key] = append(groups[key], subnetMember{device: devName, ifc: ifc})
		}
	}

	// Quadratic in the members of each subnet group. Fine at config-dump
	// scale; a broadcast domain with hundreds of hosts would need a
	// star-shaped representation instead.
	for _, key := range order {
		members := groups[key]
		if len(members) < 2 {
			continue
		}
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				first, second := members[i], members[j]
				b.topo.AddLink(model.Link{
					ADevice:    first.device,
					AInterface: first.ifc.Name,
					BDevice:    second.device,
					BInterface: second.ifc.Name,
					Bandwidth:  linkBandwidth(first.ifc, second.ifc),
					Cost:       model.DefaultLinkCost,
				})
			}
		}
	}
}

// buildSubnetMap records subnet membership for the singleton-subnet check.
// Keys are the literal "address/mask" text as configured, NOT the normalized
// network used for link inference above, so the same wire subnet written
// with different literals counts as distinct entries here.
func (b *Builder) buildSubnetMap(devices map[string]*model.Device) {
	for _, devName := range sortedNames(devices) {
		dev := devices[devName]
		for _, ifName := range dev.InterfaceNames() {
			ifc := dev.Interfaces[ifName]
			if !ifc.HasAddress() {
				continue
			}
			b.topo.AddSubnetMember(fmt.Sprintf("%s/%s", ifc.Address, ifc.Mask), devName)
		}
	}
}

// DetectMissingComponents reports structural anomalies of the built graph:
// devices no link touches, and subnets with a single member.
func (b *Builder) DetectMissingComponents() []string {
	var findings []string
	for _, name := range b.topo.DeviceNames() {
		if len(b.topo.Neighbors(name)) == 0 {
			findings = append(findings, fmt.Sprintf("Device %s appears to be isolated (no connections found)", name))
		}
	}
	for _, subnet := range b.topo.SubnetKeys() {
		members := b.topo.Subnets[subnet]
		if len(members) == 1 {
			findings = append(findings, fmt.Sprintf("Subnet %s has only one device (%s) - possible missing switch/endpoint", subnet, members[0]))
		}
	}
	return findings
}

func linkBandwidth(a, b *model.Interface) int {
	ab, bb := a.Bandwidth, b.Bandwidth
	if ab == 0 {
		ab = model.DefaultBandwidth
	}
	if bb == 0 {
		bb = model.DefaultBandwidth
	}
	if ab < bb {
		return ab
	}
	return bb
}

func sortedNames(devices map[string]*model.Device) []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
