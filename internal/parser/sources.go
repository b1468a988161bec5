package parser

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"static-topology-analyzer/internal/model"
)

// DeviceNameFromPath derives the device identity from a config file path:
// the base name without its extension, or the parent directory when the base
// is a generic "config.*" (the layout "Conf/R1/config.dump" names the
// device R1).
func DeviceNameFromPath(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if !strings.EqualFold(stem, "config") {
		return stem
	}
	if parent := filepath.Base(filepath.Dir(path)); parent != "." && parent != "/" && parent != "" {
		return parent
	}
	return stem
}

func isConfigFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dump", ".cfg", ".conf":
		return true
	}
	return false
}

func parseConfigFile(path string) (*model.Device, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p := NewCiscoParser(f, DeviceNameFromPath(path))
	if err := p.Parse(); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return p.Device, nil
}

type parsedConfig struct {
	path string
	dev  *model.Device
}

// LoadDirectory walks root for config dumps (*.dump, *.cfg, *.conf), parses
// them on a small worker pool, and returns the resulting device set. Files
// are merged in sorted path order so name collisions resolve the same way on
// every run; the later path wins and the collision is logged.
func LoadDirectory(root string, workers int) (map[string]*model.Device, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if isConfigFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan config directory: %w", err)
	}
	sort.Strings(paths)

	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string, len(paths))
	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	parsed := make(chan parsedConfig, len(paths))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				dev, err := parseConfigFile(path)
				if err != nil {
					slog.Warn("Skipping unreadable config", "path", path, "error", err)
					continue
				}
				slog.Debug("Parsed device config", "path", path, "device", dev.Name, "management_ip", dev.ManagementIP())
				parsed <- parsedConfig{path: path, dev: dev}
			}
		}()
	}
	wg.Wait()
	close(parsed)

	byPath := make(map[string]*model.Device, len(paths))
	for pc := range parsed {
		byPath[pc.path] = pc.dev
	}

	devices := make(map[string]*model.Device, len(byPath))
	for _, path := range paths {
		dev, ok := byPath[path]
		if !ok {
			continue
		}
		if _, dup := devices[dev.Name]; dup {
			slog.Warn("Duplicate device name, keeping latest", "device", dev.Name, "path", path)
		}
		devices[dev.Name] = dev
	}
	return devices, nil
}
