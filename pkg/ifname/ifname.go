package ifname

import (
	"bytes"
	"encoding/csv"
	"io"
	"log"
	"strings"

	_ "embed"
)

//go:embed interface_aliases.csv
var interfaceAliasData string

var aliasRegistry map[string]string

func init() {
	aliasRegistry = make(map[string]string)
	reader := csv.NewReader(bytes.NewBufferString(interfaceAliasData))
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		log.Fatalf("Failed to read header from embedded interface_aliases.csv: %v", err)
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to parse embedded interface_aliases.csv: %v", err)
		}
		if len(record) < 2 {
			continue
		}

		abbrev := strings.TrimSpace(record[0])
		canonical := strings.TrimSpace(record[1])
		if abbrev == "" || canonical == "" {
			continue
		}
		aliasRegistry[strings.ToLower(abbrev)] = canonical
		// Register the full form too so casing gets normalized.
		aliasRegistry[strings.ToLower(canonical)] = canonical
	}
}

// typePrefix splits an interface name into its leading type token and the
// unit suffix, e.g. "Gi0/0/1" -> "Gi", "0/0/1". Hyphens belong to the type
// token (Port-channel).
func typePrefix(name string) (string, string) {
	i := 0
	for i < len(name) {
		c := name[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' {
			i++
			continue
		}
		break
	}
	return name[:i], name[i:]
}

// Canonical expands an abbreviated interface name like "Gi0/0" to its full
// form "GigabitEthernet0/0" and fixes the casing of full forms. Names with
// an unknown type token pass through unchanged.
func Canonical(name string) string {
	prefix, rest := typePrefix(name)
	if prefix == "" {
		return name
	}
	canonical, ok := aliasRegistry[strings.ToLower(prefix)]
	if !ok {
		return name
	}
	return canonical + rest
}

// Type returns the canonical interface type for a name, e.g.
// "GigabitEthernet" for "Gi0/1". It returns "" when the type is unknown.
func Type(name string) string {
	prefix, _ := typePrefix(name)
	if canonical, ok := aliasRegistry[strings.ToLower(prefix)]; ok {
		return canonical
	}
	return ""
}
