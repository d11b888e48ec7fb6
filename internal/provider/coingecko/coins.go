package coingecko

import "strings"

type coin struct{ id, name string }

// known maps common tickers and names to CoinGecko ids.
var known = map[string]coin{
	"btc": {"bitcoin", "Bitcoin"}, "bitcoin": {"bitcoin", "Bitcoin"},
	"eth": {"ethereum", "Ethereum"}, "ethereum": {"ethereum", "Ethereum"},
	"usdt": {"tether", "Tether"}, "tether": {"tether", "Tether"},
	"bnb": {"binancecoin", "BNB"},
	"sol": {"solana", "Solana"}, "solana": {"solana", "Solana"},
	"xrp": {"ripple", "XRP"}, "ripple": {"ripple", "XRP"},
	"usdc": {"usd-coin", "USDC"},
	"ada": {"cardano", "Cardano"}, "cardano": {"cardano", "Cardano"},
	"doge": {"dogecoin", "Dogecoin"}, "dogecoin": {"dogecoin", "Dogecoin"},
	"dot": {"polkadot", "Polkadot"}, "polkadot": {"polkadot", "Polkadot"},
	"matic": {"matic-network", "Polygon"}, "polygon": {"matic-network", "Polygon"},
	"ltc": {"litecoin", "Litecoin"}, "litecoin": {"litecoin", "Litecoin"},
	"avax": {"avalanche-2", "Avalanche"}, "avalanche": {"avalanche-2", "Avalanche"},
	"link": {"chainlink", "Chainlink"}, "chainlink": {"chainlink", "Chainlink"},
	"atom": {"cosmos", "Cosmos"}, "cosmos": {"cosmos", "Cosmos"},
	"uni": {"uniswap", "Uniswap"}, "uniswap": {"uniswap", "Uniswap"},
	"xlm": {"stellar", "Stellar"}, "stellar": {"stellar", "Stellar"},
	"shib": {"shiba-inu", "Shiba Inu"},
	"trx": {"tron", "TRON"}, "tron": {"tron", "TRON"},
	"ton":  {"the-open-network", "Toncoin"},
	"pepe": {"pepe", "Pepe"},
	"near": {"near", "NEAR"},
	"apt": {"aptos", "Aptos"}, "aptos": {"aptos", "Aptos"},
	"arb": {"arbitrum", "Arbitrum"}, "arbitrum": {"arbitrum", "Arbitrum"},
	"op": {"optimism", "Optimism"}, "optimism": {"optimism", "Optimism"},
	"sui": {"sui", "Sui"},
	"xmr": {"monero", "Monero"}, "monero": {"monero", "Monero"},
}

// resolve returns the CoinGecko id for a symbol. Unknown symbols are passed
// through lowercased, so full coin ids work as symbols too.
func resolve(symbol string) coin {
	lower := strings.ToLower(strings.TrimSpace(symbol))
	if c, ok := known[lower]; ok {
		return c
	}
	name := lower
	if name != "" {
		name = strings.ToUpper(name[:1]) + name[1:]
	}
	return coin{id: lower, name: name}
}
