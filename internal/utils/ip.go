package utils

import (
	"fmt"
	"net"
)

// ParseIPv4Mask converts a dotted-decimal mask like "255.255.255.0" into a
// net.IPMask. Non-contiguous masks are rejected.
func ParseIPv4Mask(mask string) (net.IPMask, error) {
	ip := net.ParseIP(mask)
	if ip == nil {
		return nil, fmt.Errorf("invalid subnet mask %q", mask)
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("subnet mask %q is not IPv4", mask)
	}
	m := net.IPMask(v4)
	if _, bits := m.Size(); bits == 0 {
		return nil, fmt.Errorf("non-contiguous subnet mask %q", mask)
	}
	return m, nil
}

// ParseNetwork resolves an interface address and mask to its containing
// network.
func ParseNetwork(addr, mask string) (*net.IPNet, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil, fmt.Errorf("invalid IP address %q", addr)
	}
	v4 := ip.To4()
	if v4 == nil {
		return nil, fmt.Errorf("address %q is not IPv4", addr)
	}
	m, err := ParseIPv4Mask(mask)
	if err != nil {
		return nil, err
	}
	return &net.IPNet{IP: v4.Mask(m), Mask: m}, nil
}

// NetworkKey returns the canonical "network/prefixlen" form of an
// address/mask pair, e.g. "10.0.0.0/24". Two interfaces share a subnet iff
// they share a key.
func NetworkKey(addr, mask string) (string, error) {
	n, err := ParseNetwork(addr, mask)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// Broadcast returns the highest address of an IPv4 network.
func Broadcast(n *net.IPNet) net.IP {
	ip := n.IP.To4()
	out := make(net.IP, len(ip))
	for i := range ip {
		out[i] = ip[i] | ^n.Mask[i]
	}
	return out
}
