package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// displayCapPerChain bounds how many tokens a single chain group contributes
// to the listing. Display only; the snapshot itself is never truncated.
const displayCapPerChain = 20

// FormatForDisplay renders a token list grouped by chain, symbols sorted
// lexicographically, at most 20 tokens per chain group.
func FormatForDisplay(tokens []TokenDescriptor) string {
	if len(tokens) == 0 {
		return "No tokens available at the moment."
	}

	byChain := make(map[string][]TokenDescriptor)
	for _, t := range tokens {
		byChain[t.Chain] = append(byChain[t.Chain], t)
	}

	chainNames := make([]string, 0, len(byChain))
	for chain := range byChain {
		chainNames = append(chainNames, chain)
	}
	sort.Strings(chainNames)

	var b strings.Builder
	for _, chain := range chainNames {
		group := byChain[chain]
		sort.Slice(group, func(i, j int) bool {
			return strings.ToUpper(group[i].Symbol) < strings.ToUpper(group[j].Symbol)
		})
		if len(group) > displayCapPerChain {
			group = group[:displayCapPerChain]
		}

		fmt.Fprintf(&b, "\n**%s Tokens:**\n", titleCase(chain))
		for _, t := range group {
			fmt.Fprintf(&b, "  - %s - %s\n", t.Symbol, t.Name)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
