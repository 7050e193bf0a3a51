package config

import (
	"fmt"
	"os"

	"github.com/neptune-labs/intents-portal/chains"
	"github.com/pelletier/go-toml/v2"
)

// ChainTable is the on-disk overlay for the built-in chain tables,
// generated by chainsgen or maintained by hand. Overlay entries win over
// the built-ins, so a stale built-in label can be corrected without a
// code change.
type ChainTable struct {
	EVMChains []EVMChainEntry `toml:"evm_chains"`
	Aliases   []AliasEntry    `toml:"aliases"`
}

type EVMChainEntry struct {
	ID    int64  `toml:"id"`
	Label string `toml:"label"`
}

type AliasEntry struct {
	Alias string `toml:"alias"`
	Label string `toml:"label"`
}

// LoadChainRegistry builds a chain registry from the built-in tables plus
// an optional overlay file. An empty path returns the built-ins alone.
func LoadChainRegistry(overlayPath string) (*chains.Registry, error) {
	registry := chains.NewRegistry()
	if overlayPath == "" {
		return registry, nil
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain table file: %w", err)
	}

	var table ChainTable
	if err := toml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse chain table: %w", err)
	}

	for _, entry := range table.EVMChains {
		if entry.ID <= 0 || entry.Label == "" {
			return nil, fmt.Errorf("invalid evm chain entry (id=%d, label=%q)", entry.ID, entry.Label)
		}
		registry.AddEVMChain(entry.ID, entry.Label)
	}
	for _, entry := range table.Aliases {
		if entry.Alias == "" || entry.Label == "" {
			return nil, fmt.Errorf("invalid alias entry (alias=%q, label=%q)", entry.Alias, entry.Label)
		}
		registry.AddAlias(entry.Alias, entry.Label)
	}
	return registry, nil
}
