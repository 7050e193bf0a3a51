package chains

// Lookup tables for chain resolution. These are configuration data: new
// chains are appended here (or supplied through the chains.toml overlay)
// without touching the resolution logic.

// evmChainIDs maps EVM chain ids to canonical labels.
var evmChainIDs = map[int64]string{
	// major L1s
	1:     "eth",
	56:    "bnb",
	137:   "polygon",
	43114: "avax",
	250:   "fantom",
	100:   "gnosis",
	25:    "cronos",
	2222:  "kava",
	// L2s / rollups
	42161:   "arb",
	8453:    "base",
	10:      "op",
	59144:   "linea",
	534352:  "scroll",
	324:     "zksync",
	5000:    "mantle",
	169:     "manta",
	81457:   "blast",
	167000:  "taiko",
	1088:    "metis",
	34443:   "mode",
	1135:    "lisk",
	146:     "sonic",
	7777777: "zora",
	57073:   "ink",
	1868:    "soneium",
	130:     "unichain",
	2741:    "apechain",
	// others
	1313161554: "aurora",
	196:        "xlayer",
	204:        "opbnb",
	80094:      "bera",
	1329:       "sei",
	88888:      "chiliz",
	1284:       "moonbeam",
	2020:       "ronin",
	143:        "monad",
	98881:      "ebichain",
	36900:      "adi",
}

// sentinelCodes maps the connector's negative codes for non-EVM networks.
var sentinelCodes = map[int64]string{
	-1:  "near",
	-2:  "sol",
	-3:  "ton",
	-4:  "tron",
	-5:  "stellar",
	-6:  "btc",
	-7:  "doge",
	-8:  "xrp",
	-9:  "ada",
	-10: "aptos",
	-11: "sui",
	-12: "ltc",
	-13: "zec",
	-14: "cosmos",
	-15: "intents",
}

// chainAliases folds the name variants providers use into canonical labels.
var chainAliases = map[string]string{
	"ethereum":  "eth",
	"bsc":       "bnb",
	"pol":       "polygon",
	"matic":     "polygon",
	"avalanche": "avax",
	"arbitrum":  "arb",
	"optimism":  "op",
	"ape":       "apechain",
	"berachain": "bera",
	"solana":    "sol",
	"bitcoin":   "btc",
	"trx":       "tron",
	"xlm":       "stellar",
	"cardano":   "ada",
	"apt":       "aptos",
	"litecoin":  "ltc",
	"zcash":     "zec",
	"atom":      "cosmos",
}
