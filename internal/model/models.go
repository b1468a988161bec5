package model

import "sort"

type DeviceType string

const (
	Router DeviceType = "router"
	Switch DeviceType = "switch"
	Host   DeviceType = "host"
)

type Protocol string

const (
	OSPF   Protocol = "ospf"
	BGP    Protocol = "bgp"
	Static Protocol = "static"
)

const (
	StatusUp   = "up"
	StatusDown = "down"

	// DefaultMTU is assumed when a config carries no mtu statement.
	DefaultMTU = 1500
	// DefaultBandwidth (Mbps) is assumed for link math when an interface
	// carries no bandwidth statement.
	DefaultBandwidth = 100
	// DefaultLinkCost is the cost assigned to every inferred link.
	DefaultLinkCost = 1
)

// Interface is one L3/L2 port on a device. Address and Mask are either both
// set or both empty; VLANID 0 and Bandwidth 0 mean "not configured".
type Interface struct {
	Name      string
	Address   string // IPv4 dotted quad
	Mask      string // dotted-decimal subnet mask
	VLANID    int
	MTU       int
	Bandwidth int // Mbps
	Status    string
}

func NewInterface(name string) *Interface {
	return &Interface{Name: name, MTU: DefaultMTU, Status: StatusUp}
}

// HasAddress reports whether the interface carries a complete address/mask pair.
func (i *Interface) HasAddress() bool {
	return i.Address != "" && i.Mask != ""
}

func (i *Interface) IsUp() bool {
	return i.Status == StatusUp
}

// Device is one parsed configuration source. Name is its identity and never
// changes after construction.
type Device struct {
	Name       string
	Type       DeviceType
	Interfaces map[string]*Interface
	Protocols  map[Protocol]struct{}
	VLANs      map[int]string // VLAN id -> label
}

func NewDevice(name string, t DeviceType) *Device {
	return &Device{
		Name:       name,
		Type:       t,
		Interfaces: make(map[string]*Interface),
		Protocols:  make(map[Protocol]struct{}),
		VLANs:      make(map[int]string),
	}
}

func (d *Device) AddInterface(ifc *Interface) {
	d.Interfaces[ifc.Name] = ifc
}

func (d *Device) AddProtocol(p Protocol) {
	d.Protocols[p] = struct{}{}
}

func (d *Device) HasProtocol(p Protocol) bool {
	_, ok := d.Protocols[p]
	return ok
}

// InterfaceNames returns the device's interface names in sorted order, for
// deterministic iteration.
func (d *Device) InterfaceNames() []string {
	names := make([]string, 0, len(d.Interfaces))
	for name := range d.Interfaces {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ManagementIP returns the first interface address in sorted interface-name
// order, or "" when the device has no addressed interface.
func (d *Device) ManagementIP() string {
	for _, name := range d.InterfaceNames() {
		if addr := d.Interfaces[name].Address; addr != "" {
			return addr
		}
	}
	return ""
}

// ProtocolNames returns the active protocol set in sorted order.
func (d *Device) ProtocolNames() []string {
	names := make([]string, 0, len(d.Protocols))
	for p := range d.Protocols {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

type endpoint struct {
	device string
	iface  string
}

func (e endpoint) less(o endpoint) bool {
	if e.device != o.device {
		return e.device < o.device
	}
	return e.iface < o.iface
}

// LinkKey is the order-insensitive identity of a link: the same two endpoints
// always produce the same key regardless of which side is A.
type LinkKey struct {
	lo, hi endpoint
}

// Link is an inferred adjacency between two device interfaces that share a
// subnet. Links are bidirectional; endpoint order carries no meaning.
type Link struct {
	ADevice    string
	AInterface string
	BDevice    string
	BInterface string
	Bandwidth  int // Mbps, min of the two endpoint bandwidths
	Cost       int
}

func (l Link) Key() LinkKey {
	a := endpoint{l.ADevice, l.AInterface}
	b := endpoint{l.BDevice, l.BInterface}
	if b.less(a) {
		a, b = b, a
	}
	return LinkKey{lo: a, hi: b}
}

// Canonical returns the link with its endpoints in sorted order.
func (l Link) Canonical() Link {
	k := l.Key()
	l.ADevice, l.AInterface = k.lo.device, k.lo.iface
	l.BDevice, l.BInterface = k.hi.device, k.hi.iface
	return l
}

// Topology is the inferred network graph. It is populated by the topology
// builder and treated as read-only by every later stage.
type Topology struct {
	Devices map[string]*Device
	// Subnets maps the raw "address/mask" string of each addressed interface
	// to the devices seen in it. The raw key is intentionally NOT the
	// normalized CIDR used for link inference; see the builder.
	Subnets map[string][]string

	links     []Link
	linkIndex map[LinkKey]struct{}
}

func NewTopology() *Topology {
	return &Topology{
		Devices:   make(map[string]*Device),
		Subnets:   make(map[string][]string),
		linkIndex: make(map[LinkKey]struct{}),
	}
}

func (t *Topology) AddDevice(d *Device) {
	t.Devices[d.Name] = d
}

// AddLink stores the canonical form of l, dropping exact duplicates. It
// reports whether the link was new.
func (t *Topology) AddLink(l Link) bool {
	key := l.Key()
	if _, dup := t.linkIndex[key]; dup {
		return false
	}
	t.linkIndex[key] = struct{}{}
	t.links = append(t.links, l.Canonical())
	return true
}

// Links returns the deduplicated links in insertion order.
func (t *Topology) Links() []Link {
	return t.links
}

func (t *Topology) LinkCount() int {
	return len(t.links)
}

// Neighbors returns the name of every device one link away. A device joined
// by parallel links appears once per link, as each link is one adjacency.
func (t *Topology) Neighbors(name string) []string {
	var neighbors []string
	for _, l := range t.links {
		switch name {
		case l.ADevice:
			neighbors = append(neighbors, l.BDevice)
		case l.BDevice:
			neighbors = append(neighbors, l.ADevice)
		}
	}
	return neighbors
}

// AddSubnetMember records that device has an interface in the raw subnet,
// keeping each device at most once per subnet.
func (t *Topology) AddSubnetMember(subnet, device string) {
	for _, existing := range t.Subnets[subnet] {
		if existing == device {
			return
		}
	}
	t.Subnets[subnet] = append(t.Subnets[subnet], device)
}

// DeviceNames returns all device names in sorted order.
func (t *Topology) DeviceNames() []string {
	names := make([]string, 0, len(t.Devices))
	for name := range t.Devices {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubnetKeys returns the raw subnet keys in sorted order.
func (t *Topology) SubnetKeys() []string {
	keys := make([]string, 0, len(t.Subnets))
	for key := range t.Subnets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Export is the JSON snapshot consumed by downstream tooling. Link cost and
// canonical-identity details stay internal.
type Export struct {
	Devices map[string]*DeviceExport `json:"devices"`
	Links   []*LinkExport            `json:"links"`
}

type DeviceExport struct {
	Type       string                      `json:"type"`
	Interfaces map[string]*InterfaceExport `json:"interfaces"`
	Protocols  []string                    `json:"protocols"`
	VLANs      map[int]string              `json:"vlans"`
}

type InterfaceExport struct {
	IP         string `json:"ip,omitempty"`
	SubnetMask string `json:"subnet_mask,omitempty"`
	VLAN       int    `json:"vlan,omitempty"`
	MTU        int    `json:"mtu"`
	Bandwidth  int    `json:"bandwidth,omitempty"`
}

type LinkExport struct {
	Device1    string `json:"device1"`
	Interface1 string `json:"interface1"`
	Device2    string `json:"device2"`
	Interface2 string `json:"interface2"`
	Bandwidth  int    `json:"bandwidth"`
}

// Export builds the wire snapshot of the topology.
func (t *Topology) Export() *Export {
	out := &Export{
		Devices: make(map[string]*DeviceExport, len(t.Devices)),
		Links:   make([]*LinkExport, 0, len(t.links)),
	}
	for name, dev := range t.Devices {
		de := &DeviceExport{
			Type:       string(dev.Type),
			Interfaces: make(map[string]*InterfaceExport, len(dev.Interfaces)),
			Protocols:  dev.ProtocolNames(),
			VLANs:      dev.VLANs,
		}
		for ifName, ifc := range dev.Interfaces {
			de.Interfaces[ifName] = &InterfaceExport{
				IP:         ifc.Address,
				SubnetMask: ifc.Mask,
				VLAN:       ifc.VLANID,
				MTU:        ifc.MTU,
				Bandwidth:  ifc.Bandwidth,
			}
		}
		out.Devices[name] = de
	}
	for _, l := range t.links {
		out.Links = append(out.Links, &LinkExport{
			Device1:    l.ADevice,
			Interface1: l.AInterface,
			Device2:    l.BDevice,
			Interface2: l.BInterface,
			Bandwidth:  l.Bandwidth,
		})
	}
	return out
}
