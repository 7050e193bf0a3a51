// Command chainsgen regenerates the EVM chain table overlay from the public
// ethereum-lists registry.
//
// Usage:
//
//	go run ./cmd/chainsgen \
//	  --ids 1,10,56,137,8453,42161 \
//	  --out ./chains.toml
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/neptune-labs/intents-portal/registrygen"
)

func main() {
	// Define command-line flags
	cacheDir := flag.String("cache", "", "Directory holding a previously downloaded registry (skips the download)")
	out := flag.String("out", "./chains.toml", "Output path for the chain table overlay")
	ids := flag.String("ids", "", "Comma-separated chain ids to keep; empty keeps every chain")

	flag.Parse()

	wanted, err := parseIDs(*ids)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid --ids: %v\n", err)
		os.Exit(1)
	}

	dir := *cacheDir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "chainsgen-*")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create temp dir: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			_ = os.RemoveAll(tmp)
		}()
		if err := registrygen.RegistryGitDownload(tmp); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dir = tmp
	}

	entries, err := registrygen.ProcessChainRegistry(dir, wanted)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no chains matched")
		os.Exit(1)
	}

	if err := registrygen.WriteChainTable(*out, entries, nil); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Wrote %d chains to %s\n", len(entries), *out)
}

func parseIDs(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad chain id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
