package engine

import (
	"fmt"
	"net"
	"sort"
	"strings"

	"static-topology-analyzer/internal/model"
	"static-topology-analyzer/internal/utils"
)

// Validator runs the semantic check pipeline over a built topology. It only
// reads the topology; all results come back as finding strings.
type Validator struct {
	topo *model.Topology
}

func NewValidator(topo *model.Topology) *Validator {
	return &Validator{topo: topo}
}

// ValidateAll runs every check in fixed order and returns the combined
// findings. Each call allocates a fresh result, so a Validator is reusable
// across runs (though not concurrently against the same topology).
func (v *Validator) ValidateAll() []string {
	var findings []string
	findings = append(findings, v.checkDuplicateIPs()...)
	findings = append(findings, v.checkVLANConsistency()...)
	findings = append(findings, v.checkGatewayAddresses()...)
	findings = append(findings, v.checkMTUMismatches()...)
	findings = append(findings, v.checkNetworkLoops()...)
	findings = append(findings, v.suggestProtocolOptimization()...)
	findings = append(findings, v.suggestNodeAggregation()...)
	return findings
}

// checkDuplicateIPs flags an address appearing on more than one interface.
// Addresses are scoped by VLAN: the same IP on two different VLAN ids is
// legitimate. VLAN id 0 means unconfigured and falls into the "no_vlan"
// bucket.
func (v *Validator) checkDuplicateIPs() []string {
	locations := make(map[string][]string)
	var order []string

	for _, devName := range v.topo.DeviceNames() {
		dev := v.topo.Devices[devName]
		for _, ifName := range dev.InterfaceNames() {
			ifc := dev.Interfaces[ifName]
			if ifc.Address == "" {
				continue
			}
			key := duplicateKey(ifc)
			if _, seen := locations[key]; !seen {
				order = append(order, key)
			}
			locations[key] = append(locations[key], fmt.Sprintf("%s:%s", devName, ifName))
		}
	}

	var findings []string
	for _, key := range order {
		locs := locations[key]
		if len(locs) < 2 {
			continue
		}
		ip, _, _ := strings.Cut(key, "_")
		findings = append(findings, fmt.Sprintf("Duplicate IP %s found on: %s", ip, strings.Join(locs, ", ")))
	}
	return findings
}

func duplicateKey(ifc *model.Interface) string {
	if ifc.VLANID == 0 {
		return ifc.Address + "_no_vlan"
	}
	return fmt.Sprintf("%s_%d", ifc.Address, ifc.VLANID)
}

// checkVLANConsistency flags a VLAN id labeled differently on different
// devices.
func (v *Validator) checkVLANConsistency() []string {
	labels := make(map[int]map[string]struct{})
	for _, devName := range v.topo.DeviceNames() {
		for id, label := range v.topo.Devices[devName].VLANs {
			if labels[id] == nil {
				labels[id] = make(map[string]struct{})
			}
			labels[id][label] = struct{}{}
		}
	}

	ids := make([]int, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	var findings []string
	for _, id := range ids {
		if len(labels[id]) < 2 {
			continue
		}
		names := make([]string, 0, len(labels[id]))
		for label := range labels[id] {
			names = append(names, label)
		}
		sort.Strings(names)
		findings = append(findings, fmt.Sprintf("VLAN %d has inconsistent names: %s", id, strings.Join(names, ", ")))
	}
	return findings
}

// checkGatewayAddresses flags interfaces whose host address is actually the
// network or broadcast address of their subnet.
func (v *Validator) checkGatewayAddresses() []string {
	var findings []string
	for _, devName := range v.topo.DeviceNames() {
		dev := v.topo.Devices[devName]
		for _, ifName := range dev.InterfaceNames() {
			ifc := dev.Interfaces[ifName]
			if !ifc.HasAddress() {
				continue
			}
			network, err := utils.ParseNetwork(ifc.Address, ifc.Mask)
			if err != nil {
				findings = append(findings, fmt.Sprintf("Invalid IP/subnet on %s:%s", devName, ifName))
				continue
			}
			ip := net.ParseIP(ifc.Address).To4()
			switch {
			case ip.Equal(network.IP):
				findings = append(findings, fmt.Sprintf("Device %s:%s using network address as IP", devName, ifName))
			case ip.Equal(utils.Broadcast(network)):
				findings = append(findings, fmt.Sprintf("Device %s:%s using broadcast address as IP", devName, ifName))
			}
		}
	}
	return findings
}

// checkMTUMismatches flags links whose endpoint interfaces disagree on MTU.
// A link whose endpoint can no longer be resolved is skipped.
func (v *Validator) checkMTUMismatches() []string {
	var findings []string
	for _, link := range v.topo.Links() {
		devA, okA := v.topo.Devices[link.ADevice]
		devB, okB := v.topo.Devices[link.BDevice]
		if !okA || !okB {
			continue
		}
		ifA := devA.Interfaces[link.AInterface]
		ifB := devB.Interfaces[link.BInterface]
		if ifA == nil || ifB == nil {
			continue
		}
		if ifA.MTU != ifB.MTU {
			findings = append(findings, fmt.Sprintf("MTU mismatch between %s:%s (%d) and %s:%s (%d)",
				link.ADevice, link.AInterface, ifA.MTU, link.BDevice, link.BInterface, ifB.MTU))
		}
	}
	return findings
}

// checkNetworkLoops reports the first cycle found per DFS root in the
// undirected link graph.
func (v *Validator) checkNetworkLoops() []string {
	var findings []string
	visited := make(map[string]bool)

	for _, root := range v.topo.DeviceNames() {
		if visited[root] {
			continue
		}
		recStack := make(map[string]bool)

		var dfs func(name, parent string, path []string) bool
		dfs = func(name, parent string, path []string) bool {
			visited[name] = true
			recStack[name] = true

			// The edge back to the parent is not a loop. Exactly one parent
			// occurrence is skipped, so a second parallel link to the same
			// neighbor still closes a cycle.
			skippedParent := false
			for _, neighbor := range v.topo.Neighbors(name) {
				if neighbor == parent && !skippedParent {
					skippedParent = true
					continue
				}
				if !visited[neighbor] {
					if dfs(neighbor, name, append(path, neighbor)) {
						return true
					}
				} else if recStack[neighbor] {
					start := indexOf(path, neighbor)
					cycle := append(append([]string{}, path[start:]...), neighbor)
					findings = append(findings, "Potential loop detected: "+strings.Join(cycle, " -> "))
					return true
				}
			}
			recStack[name] = false
			return false
		}
		dfs(root, "", []string{root})
	}
	return findings
}

// suggestProtocolOptimization nudges large OSPF deployments toward BGP.
func (v *Validator) suggestProtocolOptimization() []string {
	if len(v.topo.Devices) <= 20 && v.topo.LinkCount() <= 30 {
		return nil
	}
	var ospfDevices []string
	for _, name := range v.topo.DeviceNames() {
		if v.topo.Devices[name].HasProtocol(model.OSPF) {
			ospfDevices = append(ospfDevices, name)
		}
	}
	if len(ospfDevices) == 0 {
		return nil
	}
	listed := ospfDevices
	ellipsis := ""
	if len(ospfDevices) > 5 {
		listed = ospfDevices[:5]
		ellipsis = "..."
	}
	return []string{fmt.Sprintf("Consider using BGP instead of OSPF for large network. OSPF devices: %s%s",
		strings.Join(listed, ", "), ellipsis)}
}

// suggestNodeAggregation flags pass-through devices: exactly two link
// adjacencies and at most two up, addressed interfaces.
func (v *Validator) suggestNodeAggregation() []string {
	var findings []string
	for _, name := range v.topo.DeviceNames() {
		neighbors := v.topo.Neighbors(name)
		if len(neighbors) != 2 {
			continue
		}
		active := 0
		for _, ifc := range v.topo.Devices[name].Interfaces {
			if ifc.IsUp() && ifc.Address != "" {
				active++
			}
		}
		if active <= 2 {
			findings = append(findings, fmt.Sprintf("Device %s might be aggregated with neighbors: %s",
				name, strings.Join(neighbors, ", ")))
		}
	}
	return findings
}

func indexOf(names []string, target string) int {
	for i, n := range names {
		if n == target {
			return i
		}
	}
	return -1
}
