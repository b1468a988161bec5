package parser

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"static-topology-analyzer/internal/model"
	"static-topology-analyzer/pkg/ifname"
)

// CiscoParser scans an IOS-style configuration dump line by line. Block
// stanzas (interface, vlan) carry indented bodies; a non-indented line that
// is not a "!" separator ends the current block and starts the next stanza.
type CiscoParser struct {
	scanner    *bufio.Scanner
	pending    string
	hasPending bool

	Device *model.Device
}

// NewCiscoParser prepares a parser for one config source. deviceName is the
// identity derived from the source (file path or archive row); a hostname
// line inside the config overrides it.
func NewCiscoParser(reader io.Reader, deviceName string) *CiscoParser {
	return &CiscoParser{
		scanner: bufio.NewScanner(reader),
		Device:  model.NewDevice(deviceName, model.Router),
	}
}

func (p *CiscoParser) Parse() error {
	for {
		raw, ok := p.nextLine()
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		switch {
		case strings.HasPrefix(line, "hostname "):
			if name := strings.TrimSpace(strings.TrimPrefix(line, "hostname ")); name != "" {
				p.Device.Name = name
			}
		case strings.HasPrefix(line, "interface "):
			p.parseInterfaceBlock(line)
		case strings.HasPrefix(line, "router ospf"):
			p.Device.AddProtocol(model.OSPF)
		case strings.HasPrefix(line, "router bgp"):
			p.Device.AddProtocol(model.BGP)
		case strings.HasPrefix(line, "ip route "):
			p.Device.AddProtocol(model.Static)
		case strings.HasPrefix(line, "vlan "):
			p.parseVLANBlock(line)
		}
	}
	if err := p.scanner.Err(); err != nil {
		return fmt.Errorf("error reading config: %w", err)
	}
	p.inferDeviceType()
	return nil
}

// nextLine returns the pushed-back line if one is waiting, otherwise the
// next line from the scanner.
func (p *CiscoParser) nextLine() (string, bool) {
	if p.hasPending {
		p.hasPending = false
		return p.pending, true
	}
	if p.scanner.Scan() {
		return p.scanner.Text(), true
	}
	return "", false
}

// pushBack hands a line back so the top-level loop can dispatch it. Needed
// because a block has no end marker; the line that terminates it is the
// first line of the next stanza.
func (p *CiscoParser) pushBack(line string) {
	p.pending = line
	p.hasPending = true
}

func endsBlock(raw, trimmed string) bool {
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(raw, " ") || strings.HasPrefix(raw, "\t") {
		return false
	}
	return !strings.HasPrefix(trimmed, "!")
}

func (p *CiscoParser) parseInterfaceBlock(header string) {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return
	}
	ifc := model.NewInterface(ifname.Canonical(parts[1]))

	for {
		raw, ok := p.nextLine()
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		if endsBlock(raw, line) {
			p.pushBack(raw)
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "ip":
			if len(fields) >= 4 && fields[1] == "address" {
				ifc.Address = fields[2]
				ifc.Mask = fields[3]
			}
		case "switchport":
			if len(fields) >= 4 && fields[1] == "access" && fields[2] == "vlan" {
				if id, err := strconv.Atoi(fields[3]); err == nil {
					ifc.VLANID = id
				}
			}
		case "mtu":
			if len(fields) >= 2 {
				if mtu, err := strconv.Atoi(fields[1]); err == nil {
					ifc.MTU = mtu
				}
			}
		case "bandwidth":
			if len(fields) >= 2 {
				if bw, err := strconv.Atoi(fields[1]); err == nil {
					ifc.Bandwidth = bw
				}
			}
		case "shutdown":
			ifc.Status = model.StatusDown
		}
	}
	p.Device.AddInterface(ifc)
}

func (p *CiscoParser) parseVLANBlock(header string) {
	parts := strings.Fields(header)
	if len(parts) < 2 {
		return
	}
	// "vlan 10" opens a named block; "vlan 10,20,30" declares several at once.
	var ids []int
	for _, tok := range strings.Split(parts[1], ",") {
		if id, err := strconv.Atoi(tok); err == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	name := ""
	for {
		raw, ok := p.nextLine()
		if !ok {
			break
		}
		line := strings.TrimSpace(raw)
		if endsBlock(raw, line) {
			p.pushBack(raw)
			break
		}
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "name" {
			name = strings.Join(fields[1:], " ")
		}
	}

	for _, id := range ids {
		label := fmt.Sprintf("VLAN_%d", id)
		if name != "" && len(ids) == 1 {
			label = name
		}
		p.Device.VLANs[id] = label
	}
}

// inferDeviceType upgrades the default router kind to switch when the config
// shows L2 features and no routing stanzas.
func (p *CiscoParser) inferDeviceType() {
	if len(p.Device.Protocols) > 0 {
		return
	}
	if len(p.Device.VLANs) > 0 {
		p.Device.Type = model.Switch
		return
	}
	for _, ifc := range p.Device.Interfaces {
		if ifc.VLANID != 0 || ifname.Type(ifc.Name) == "Vlan" {
			p.Device.Type = model.Switch
			return
		}
	}
}
