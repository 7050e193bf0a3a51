// Package chains maps provider-specific chain identifiers to the portal's
// canonical chain labels. Providers disagree on how to name a network: EVM
// wallets report numeric chain IDs, the multi-chain connector uses small
// negative sentinel codes for non-EVM networks, and some sources only hand
// back a free-form name. The registry folds all three into one short label
// ("eth", "near", "btc", ...) used everywhere else in the portal.
package chains

import (
	"strconv"
	"strings"
)

// ChainCode is an identifier as supplied by a provider. Either ID or Name is
// set; when both are present the numeric code takes precedence, string
// heuristics are a last resort only.
type ChainCode struct {
	ID   *int64
	Name string
}

// NumericCode builds a ChainCode from a numeric provider identifier.
func NumericCode(id int64) ChainCode {
	return ChainCode{ID: &id}
}

// NamedCode builds a ChainCode from a free-form chain name.
func NamedCode(name string) ChainCode {
	return ChainCode{Name: name}
}

// Registry resolves chain codes against static lookup tables. Adding a chain
// is a data change in table.go (or an overlay file), never a code change.
type Registry struct {
	evm      map[int64]string
	sentinel map[int64]string
	aliases  map[string]string
	// reverse index for the bidirectional lookups
	evmByLabel map[string]int64
}

// NewRegistry builds a registry from the built-in tables.
func NewRegistry() *Registry {
	r := &Registry{
		evm:        make(map[int64]string, len(evmChainIDs)),
		sentinel:   make(map[int64]string, len(sentinelCodes)),
		aliases:    make(map[string]string, len(chainAliases)),
		evmByLabel: make(map[string]int64, len(evmChainIDs)),
	}
	for id, label := range evmChainIDs {
		r.evm[id] = label
		r.evmByLabel[label] = id
	}
	for code, label := range sentinelCodes {
		r.sentinel[code] = label
	}
	for alias, label := range chainAliases {
		r.aliases[alias] = label
	}
	return r
}

// AddEVMChain registers an additional EVM chain id. Used by the overlay
// loader; later entries win so an overlay can correct the built-in table.
func (r *Registry) AddEVMChain(id int64, label string) {
	label = strings.ToLower(label)
	r.evm[id] = label
	r.evmByLabel[label] = id
}

// AddAlias registers an additional name alias.
func (r *Registry) AddAlias(alias, label string) {
	r.aliases[strings.ToLower(alias)] = strings.ToLower(label)
}

// Resolve maps a chain code to its canonical label. It never fails: unknown
// codes fall back to the lower-cased string form of the code itself.
func (r *Registry) Resolve(code ChainCode) string {
	if code.ID != nil {
		return r.ResolveID(*code.ID)
	}
	return r.ResolveName(code.Name)
}

// ResolveID maps a numeric provider code (positive EVM chain id or negative
// non-EVM sentinel) to its canonical label.
func (r *Registry) ResolveID(id int64) string {
	if id < 0 {
		if label, ok := r.sentinel[id]; ok {
			return label
		}
	} else if label, ok := r.evm[id]; ok {
		return label
	}
	return strconv.FormatInt(id, 10)
}

// ResolveName maps a free-form chain name to its canonical label. Unknown
// names resolve to their own lower-cased form.
func (r *Registry) ResolveName(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	if label, ok := r.aliases[lower]; ok {
		return label
	}
	return lower
}

// EVMChainID returns the numeric chain id for a canonical label, when the
// label names an EVM network.
func (r *Registry) EVMChainID(label string) (int64, bool) {
	id, ok := r.evmByLabel[r.ResolveName(label)]
	return id, ok
}

// IsEVM reports whether the label names an EVM network.
func (r *Registry) IsEVM(label string) bool {
	_, ok := r.EVMChainID(label)
	return ok
}
