// Package registrygen regenerates the EVM chain table overlay from the
// public ethereum-lists chain registry. It is an offline tool, run from
// cmd/chainsgen; the portal itself only reads the generated file.
package registrygen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	getter "github.com/hashicorp/go-getter"
	"github.com/neptune-labs/intents-portal/config"
	"github.com/pelletier/go-toml/v2"
)

// chainRecord is the subset of one ethereum-lists chain file the generator
// needs. Files are named eip155-<chainId>.json.
type chainRecord struct {
	Name      string `json:"name"`
	ChainID   int64  `json:"chainId"`
	ShortName string `json:"shortName"`
}

// RegistryGitDownload downloads the EVM chain registry from the GitHub
// repository into dst.
func RegistryGitDownload(dst string) error {
	// format for using go getter
	url := "github.com/ethereum-lists/chains//_data/chains"
	deadline := time.Now().Add(120 * time.Second)
	ctx, cancel := context.WithDeadline(context.Background(), deadline)
	defer cancel()

	opts := getter.Client{
		Ctx:  ctx,
		Src:  url,
		Dst:  dst,
		Mode: getter.ClientModeDir,
		Detectors: []getter.Detector{
			&getter.GitHubDetector{},
		},
		Getters: map[string]getter.Getter{
			"git": &getter.GitGetter{},
		},
	}
	fmt.Printf("Downloading chain registry from %s to %s\n", url, dst)
	if err := opts.Get(); err != nil {
		return fmt.Errorf("failed to download chain registry: %w", err)
	}
	return nil
}

// ProcessChainRegistry reads the downloaded registry and keeps the chains
// whose ids appear in wanted. An empty wanted list keeps everything, which
// produces a very large table; callers normally pass the ids they route to.
func ProcessChainRegistry(dst string, wanted []int64) ([]config.EVMChainEntry, error) {
	files, err := os.ReadDir(dst)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain registry: %w", err)
	}

	keep := make(map[int64]bool, len(wanted))
	for _, id := range wanted {
		keep[id] = true
	}

	var entries []config.EVMChainEntry
	for _, file := range files {
		if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
			continue
		}

		body, err := os.ReadFile(filepath.Join(dst, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file.Name(), err)
		}
		var record chainRecord
		if err := json.Unmarshal(body, &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", file.Name(), err)
		}

		if record.ChainID <= 0 || record.ShortName == "" {
			continue
		}
		if len(wanted) > 0 && !keep[record.ChainID] {
			continue
		}
		entries = append(entries, config.EVMChainEntry{
			ID:    record.ChainID,
			Label: strings.ToLower(record.ShortName),
		})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })
	return entries, nil
}

// WriteChainTable writes the overlay file that config.LoadChainRegistry
// consumes.
func WriteChainTable(path string, entries []config.EVMChainEntry, aliases []config.AliasEntry) error {
	table := config.ChainTable{
		EVMChains: entries,
		Aliases:   aliases,
	}
	data, err := toml.Marshal(table)
	if err != nil {
		return fmt.Errorf("failed to marshal chain table: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write chain table: %w", err)
	}
	return nil
}
