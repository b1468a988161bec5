package engine

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"static-topology-analyzer/internal/model"
)

func testDevice(name string) *model.Device {
	return model.NewDevice(name, model.Router)
}

func addIface(dev *model.Device, name, addr, mask string) *model.Interface {
	ifc := model.NewInterface(name)
	ifc.Address = addr
	ifc.Mask = mask
	dev.AddInterface(ifc)
	return ifc
}

func testTopology(devs ...*model.Device) *model.Topology {
	topo := model.NewTopology()
	for _, dev := range devs {
		topo.AddDevice(dev)
	}
	return topo
}

func connect(t *testing.T, topo *model.Topology, devA, ifA, devB, ifB string) {
	t.Helper()
	added := topo.AddLink(model.Link{
		ADevice: devA, AInterface: ifA,
		BDevice: devB, BInterface: ifB,
		Bandwidth: model.DefaultBandwidth,
		Cost:      model.DefaultLinkCost,
	})
	if !added {
		t.Fatalf("fixture link %s:%s-%s:%s already present", devA, ifA, devB, ifB)
	}
}

func TestCheckDuplicateIPs(t *testing.T) {
	t.Run("same address without VLANs", func(t *testing.T) {
		r1 := testDevice("R1")
		addIface(r1, "eth0", "10.0.0.1", "255.255.255.0")
		r2 := testDevice("R2")
		addIface(r2, "eth0", "10.0.0.1", "255.255.255.0")

		v := NewValidator(testTopology(r1, r2))
		findings := v.checkDuplicateIPs()
		want := "Duplicate IP 10.0.0.1 found on: R1:eth0, R2:eth0"
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})

	t.Run("same address on different VLANs is allowed", func(t *testing.T) {
		sw1 := testDevice("SW1")
		addIface(sw1, "Vlan10", "10.0.0.1", "255.255.255.0").VLANID = 10
		sw2 := testDevice("SW2")
		addIface(sw2, "Vlan20", "10.0.0.1", "255.255.255.0").VLANID = 20

		v := NewValidator(testTopology(sw1, sw2))
		if findings := v.checkDuplicateIPs(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("same address on the same VLAN", func(t *testing.T) {
		sw1 := testDevice("SW1")
		addIface(sw1, "Vlan10", "10.0.0.1", "255.255.255.0").VLANID = 10
		sw2 := testDevice("SW2")
		addIface(sw2, "Vlan10", "10.0.0.1", "255.255.255.0").VLANID = 10

		v := NewValidator(testTopology(sw1, sw2))
		findings := v.checkDuplicateIPs()
		if len(findings) != 1 || !strings.Contains(findings[0], "Duplicate IP 10.0.0.1") {
			t.Fatalf("findings = %v, want one duplicate for 10.0.0.1", findings)
		}
	})
}

func TestCheckVLANConsistency(t *testing.T) {
	sw1 := testDevice("SW1")
	sw1.VLANs[10] = "users"
	sw1.VLANs[20] = "servers"
	sw2 := testDevice("SW2")
	sw2.VLANs[10] = "staff"
	sw2.VLANs[20] = "servers"

	v := NewValidator(testTopology(sw1, sw2))
	findings := v.checkVLANConsistency()
	want := "VLAN 10 has inconsistent names: staff, users"
	if len(findings) != 1 || findings[0] != want {
		t.Fatalf("findings = %v, want [%q]", findings, want)
	}
}

func TestCheckGatewayAddresses(t *testing.T) {
	tests := []struct {
		name string
		addr string
		mask string
		want string // empty means no finding expected
	}{
		{"network address", "192.168.1.0", "255.255.255.0", "Device R1:eth0 using network address as IP"},
		{"broadcast address", "192.168.1.255", "255.255.255.0", "Device R1:eth0 using broadcast address as IP"},
		{"plain host address", "192.168.1.10", "255.255.255.0", ""},
		{"host route reports network address", "10.0.0.5", "255.255.255.255", "Device R1:eth0 using network address as IP"},
		{"unparseable address", "10.0.0.999", "255.255.255.0", "Invalid IP/subnet on R1:eth0"},
		{"non-contiguous mask", "10.0.0.5", "255.0.255.0", "Invalid IP/subnet on R1:eth0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r1 := testDevice("R1")
			addIface(r1, "eth0", tt.addr, tt.mask)

			v := NewValidator(testTopology(r1))
			findings := v.checkGatewayAddresses()
			if tt.want == "" {
				if len(findings) != 0 {
					t.Fatalf("expected no findings, got %v", findings)
				}
				return
			}
			if len(findings) != 1 || findings[0] != tt.want {
				t.Fatalf("findings = %v, want [%q]", findings, tt.want)
			}
		})
	}
}

func TestCheckMTUMismatches(t *testing.T) {
	t.Run("mismatched endpoints", func(t *testing.T) {
		r1 := testDevice("R1")
		addIface(r1, "eth0", "10.0.0.1", "255.255.255.252")
		r2 := testDevice("R2")
		addIface(r2, "eth0", "10.0.0.2", "255.255.255.252").MTU = 1400

		topo := testTopology(r1, r2)
		connect(t, topo, "R1", "eth0", "R2", "eth0")

		v := NewValidator(topo)
		findings := v.checkMTUMismatches()
		want := "MTU mismatch between R1:eth0 (1500) and R2:eth0 (1400)"
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})

	t.Run("matching endpoints stay quiet", func(t *testing.T) {
		r1 := testDevice("R1")
		addIface(r1, "eth0", "10.0.0.1", "255.255.255.252")
		r2 := testDevice("R2")
		addIface(r2, "eth0", "10.0.0.2", "255.255.255.252")

		topo := testTopology(r1, r2)
		connect(t, topo, "R1", "eth0", "R2", "eth0")

		if findings := NewValidator(topo).checkMTUMismatches(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("dangling endpoint is skipped", func(t *testing.T) {
		r1 := testDevice("R1")
		addIface(r1, "eth0", "10.0.0.1", "255.255.255.252")

		topo := testTopology(r1)
		connect(t, topo, "R1", "eth0", "RX", "eth0")

		if findings := NewValidator(topo).checkMTUMismatches(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})
}

func TestCheckNetworkLoopsFindsTriangle(t *testing.T) {
	topo := testTopology(testDevice("R1"), testDevice("R2"), testDevice("R3"))
	connect(t, topo, "R1", "eth0", "R2", "eth0")
	connect(t, topo, "R2", "eth1", "R3", "eth0")
	connect(t, topo, "R1", "eth1", "R3", "eth1")

	v := NewValidator(topo)
	findings := v.checkNetworkLoops()
	want := "Potential loop detected: R1 -> R2 -> R3 -> R1"
	if len(findings) != 1 || findings[0] != want {
		t.Fatalf("findings = %v, want [%q]", findings, want)
	}
}

func TestCheckNetworkLoopsChainIsQuiet(t *testing.T) {
	topo := testTopology(testDevice("R1"), testDevice("R2"), testDevice("R3"))
	connect(t, topo, "R1", "eth0", "R2", "eth0")
	connect(t, topo, "R2", "eth1", "R3", "eth0")

	if findings := NewValidator(topo).checkNetworkLoops(); len(findings) != 0 {
		t.Fatalf("chain must not report loops, got %v", findings)
	}
}

func TestCheckNetworkLoopsParallelLinks(t *testing.T) {
	// Two distinct links between the same pair close a two-node loop.
	topo := testTopology(testDevice("R1"), testDevice("R2"))
	connect(t, topo, "R1", "eth0", "R2", "eth0")
	connect(t, topo, "R1", "eth1", "R2", "eth1")

	v := NewValidator(topo)
	findings := v.checkNetworkLoops()
	want := "Potential loop detected: R1 -> R2 -> R1"
	if len(findings) != 1 || findings[0] != want {
		t.Fatalf("findings = %v, want [%q]", findings, want)
	}
}

func TestCheckNetworkLoopsScansComponentsIndependently(t *testing.T) {
	// A loop in one component must not leak traversal state into the next.
	topo := testTopology(
		testDevice("R1"), testDevice("R2"), testDevice("R3"),
		testDevice("S1"), testDevice("S2"),
	)
	connect(t, topo, "R1", "eth0", "R2", "eth0")
	connect(t, topo, "R2", "eth1", "R3", "eth0")
	connect(t, topo, "R1", "eth1", "R3", "eth1")
	connect(t, topo, "S1", "eth0", "S2", "eth0")

	findings := NewValidator(topo).checkNetworkLoops()
	if len(findings) != 1 {
		t.Fatalf("expected one loop from the triangle component, got %v", findings)
	}
}

func TestSuggestProtocolOptimization(t *testing.T) {
	t.Run("small network stays quiet", func(t *testing.T) {
		r1 := testDevice("R1")
		r1.AddProtocol(model.OSPF)

		v := NewValidator(testTopology(r1, testDevice("R2")))
		if findings := v.suggestProtocolOptimization(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("large network without OSPF stays quiet", func(t *testing.T) {
		topo := model.NewTopology()
		for i := 1; i <= 25; i++ {
			topo.AddDevice(testDevice(fmt.Sprintf("D%02d", i)))
		}

		if findings := NewValidator(topo).suggestProtocolOptimization(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("large OSPF deployment lists the first five devices", func(t *testing.T) {
		topo := model.NewTopology()
		for i := 1; i <= 21; i++ {
			dev := testDevice(fmt.Sprintf("D%02d", i))
			if i <= 7 {
				dev.AddProtocol(model.OSPF)
			}
			topo.AddDevice(dev)
		}

		findings := NewValidator(topo).suggestProtocolOptimization()
		want := "Consider using BGP instead of OSPF for large network. OSPF devices: D01, D02, D03, D04, D05..."
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})

	t.Run("short OSPF list is printed without ellipsis", func(t *testing.T) {
		topo := model.NewTopology()
		for i := 1; i <= 21; i++ {
			topo.AddDevice(testDevice(fmt.Sprintf("D%02d", i)))
		}
		topo.Devices["D03"].AddProtocol(model.OSPF)

		findings := NewValidator(topo).suggestProtocolOptimization()
		want := "Consider using BGP instead of OSPF for large network. OSPF devices: D03"
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})

	t.Run("dense link fabric triggers on the link threshold", func(t *testing.T) {
		topo := model.NewTopology()
		names := make([]string, 0, 10)
		for i := 0; i < 10; i++ {
			name := fmt.Sprintf("D%02d", i)
			dev := testDevice(name)
			dev.AddProtocol(model.OSPF)
			topo.AddDevice(dev)
			names = append(names, name)
		}
		// Full mesh over 10 devices: C(10,2)=45 links, over the threshold.
		for i := 0; i < len(names); i++ {
			for j := i + 1; j < len(names); j++ {
				connect(t, topo, names[i], "to-"+names[j], names[j], "to-"+names[i])
			}
		}

		findings := NewValidator(topo).suggestProtocolOptimization()
		want := "Consider using BGP instead of OSPF for large network. OSPF devices: D00, D01, D02, D03, D04..."
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})
}

func TestSuggestNodeAggregation(t *testing.T) {
	chain := func(t *testing.T) (*model.Topology, *model.Device) {
		t.Helper()
		r1 := testDevice("R1")
		addIface(r1, "eth0", "10.0.1.1", "255.255.255.252")
		r2 := testDevice("R2")
		addIface(r2, "eth0", "10.0.1.2", "255.255.255.252")
		addIface(r2, "eth1", "10.0.2.1", "255.255.255.252")
		r3 := testDevice("R3")
		addIface(r3, "eth0", "10.0.2.2", "255.255.255.252")

		topo := testTopology(r1, r2, r3)
		connect(t, topo, "R1", "eth0", "R2", "eth0")
		connect(t, topo, "R2", "eth1", "R3", "eth0")
		return topo, r2
	}

	t.Run("pass-through device in a chain", func(t *testing.T) {
		topo, _ := chain(t)

		findings := NewValidator(topo).suggestNodeAggregation()
		want := "Device R2 might be aggregated with neighbors: R1, R3"
		if len(findings) != 1 || findings[0] != want {
			t.Fatalf("findings = %v, want [%q]", findings, want)
		}
	})

	t.Run("extra active interface keeps the device", func(t *testing.T) {
		topo, r2 := chain(t)
		addIface(r2, "eth2", "10.0.3.1", "255.255.255.252")

		if findings := NewValidator(topo).suggestNodeAggregation(); len(findings) != 0 {
			t.Fatalf("expected no findings, got %v", findings)
		}
	})

	t.Run("shut interface does not count as active", func(t *testing.T) {
		topo, r2 := chain(t)
		addIface(r2, "eth2", "10.0.3.1", "255.255.255.252").Status = model.StatusDown

		findings := NewValidator(topo).suggestNodeAggregation()
		if len(findings) != 1 {
			t.Fatalf("expected R2 still flagged, got %v", findings)
		}
	})
}

func TestValidateAllRunsChecksInOrder(t *testing.T) {
	// R1 and R2 share an address and disagree on MTU across their link, so
	// two different checks fire.
	r1 := testDevice("R1")
	addIface(r1, "eth0", "10.0.0.1", "255.255.255.252")
	r2 := testDevice("R2")
	addIface(r2, "eth0", "10.0.0.1", "255.255.255.252").MTU = 1400

	topo := testTopology(r1, r2)
	connect(t, topo, "R1", "eth0", "R2", "eth0")

	v := NewValidator(topo)
	first := v.ValidateAll()
	if len(first) != 2 {
		t.Fatalf("expected duplicate-IP and MTU findings, got %v", first)
	}
	if !strings.HasPrefix(first[0], "Duplicate IP") || !strings.HasPrefix(first[1], "MTU mismatch") {
		t.Errorf("unexpected check order: %v", first)
	}

	second := v.ValidateAll()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated validation changed results: first %v, second %v", first, second)
	}
}
