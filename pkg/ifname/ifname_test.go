package ifname

import "testing"

func TestCanonicalExpandsAbbreviations(t *testing.T) {
	// This test covers the abbreviation styles seen in real show-run dumps.
	cases := []struct {
		in, want string
	}{
		{"Gi0/0", "GigabitEthernet0/0"},
		{"fa1/0/24", "FastEthernet1/0/24"},
		{"Te1/1", "TenGigabitEthernet1/1"},
		{"Po10", "Port-channel10"},
		{"vl100", "Vlan100"},
		{"Lo0", "Loopback0"},
		{"Se0/0/0", "Serial0/0/0"},
	}
	for _, c := range cases {
		if got := Canonical(c.in); got != c.want {
			t.Errorf("Canonical(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalNormalizesFullForms(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"GigabitEthernet0/1", "GigabitEthernet0/1"},
		{"gigabitethernet0/1", "GigabitEthernet0/1"},
		{"port-channel5", "Port-channel5"},
		{"VLAN20", "Vlan20"},
	}
	for _, c := range cases {
		if got := Canonical(c.in); got != c.want {
			t.Errorf("Canonical(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCanonicalPassesUnknownThrough(t *testing.T) {
	for _, name := range []string{"Dialer1", "0/0", "", "br-lan"} {
		if got := Canonical(name); got != name {
			t.Errorf("Canonical(%q) = %q, want unchanged", name, got)
		}
	}
}

func TestTypeReturnsCanonicalType(t *testing.T) {
	if got := Type("Gi0/0"); got != "GigabitEthernet" {
		t.Fatalf("Type(Gi0/0) = %q, want GigabitEthernet", got)
	}
	if got := Type("Vlan100"); got != "Vlan" {
		t.Fatalf("Type(Vlan100) = %q, want Vlan", got)
	}
	if got := Type("Dialer1"); got != "" {
		t.Fatalf("Type(Dialer1) = %q, want empty", got)
	}
}
