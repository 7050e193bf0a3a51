package registrygen

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neptune-labs/intents-portal/config"
	"github.com/zeebo/assert"
)

func writeChainFile(t *testing.T, dir, name, body string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestProcessChainRegistry(t *testing.T) {
	dir := t.TempDir()
	writeChainFile(t, dir, "eip155-1.json", `{"name":"Ethereum Mainnet","chainId":1,"shortName":"eth"}`)
	writeChainFile(t, dir, "eip155-8453.json", `{"name":"Base","chainId":8453,"shortName":"Base"}`)
	writeChainFile(t, dir, "eip155-999.json", `{"name":"Unwanted","chainId":999,"shortName":"nope"}`)
	writeChainFile(t, dir, "notes.txt", "not json")

	entries, err := ProcessChainRegistry(dir, []int64{1, 8453})
	assert.NoError(t, err)
	assert.Equal(t, 2, len(entries))
	assert.Equal(t, int64(1), entries[0].ID)
	assert.Equal(t, "eth", entries[0].Label)
	assert.Equal(t, int64(8453), entries[1].ID)
	assert.Equal(t, "base", entries[1].Label)
}

func TestProcessChainRegistrySkipsBadRecords(t *testing.T) {
	dir := t.TempDir()
	writeChainFile(t, dir, "eip155-0.json", `{"name":"No id","chainId":0,"shortName":"zero"}`)
	writeChainFile(t, dir, "eip155-5.json", `{"name":"No short name","chainId":5,"shortName":""}`)

	entries, err := ProcessChainRegistry(dir, nil)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(entries))
}

func TestWriteChainTableRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.toml")
	entries := []config.EVMChainEntry{
		{ID: 747474, Label: "katana"},
	}
	aliases := []config.AliasEntry{
		{Alias: "kat", Label: "katana"},
	}
	assert.NoError(t, WriteChainTable(path, entries, aliases))

	registry, err := config.LoadChainRegistry(path)
	assert.NoError(t, err)
	assert.Equal(t, "katana", registry.ResolveID(747474))
	assert.Equal(t, "katana", registry.ResolveName("kat"))
}
