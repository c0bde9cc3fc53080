package chainlist

import (
	"math"
	"strings"

	dto "wallet-aggregator/internal/adapter/storage/chainlist/dto"
	"wallet-aggregator/internal/domain/entity"

	"go.uber.org/zap"
)

// toDomainChains converts raw descriptors to domain chains. RPC strings are kept as
// they are, including templated ones; URL selection decides what is usable.
func toDomainChains(rawChains []dto.ChainRaw, logger *zap.Logger) []entity.Chain {
	if rawChains == nil {
		return nil
	}
	domainChains := make([]entity.Chain, 0, len(rawChains))
	for _, raw := range rawChains {
		if raw.Currency.Decimals < 0 || raw.Currency.Decimals > math.MaxUint8 {
			logger.Warn("Skipping chain with out of range currency decimals",
				zap.String("shortName", raw.ShortName),
				zap.Int("decimals", raw.Currency.Decimals),
			)
			continue
		}

		rpcs := make([]string, 0, len(raw.RPC))
		for _, rpc := range raw.RPC {
			if rpc = strings.TrimSpace(rpc); rpc != "" {
				rpcs = append(rpcs, rpc)
			}
		}

		domainChains = append(domainChains, entity.Chain{
			Name:      raw.Name,
			ChainID:   raw.ChainID,
			ShortName: raw.ShortName,
			NetworkID: raw.NetworkID,
			Currency: entity.Currency{
				Name:     raw.Currency.Name,
				Symbol:   raw.Currency.Symbol,
				Decimals: uint8(raw.Currency.Decimals),
			},
			RPC: rpcs,
		})
	}
	return domainChains
}

// filterIncluded keeps chains whose short name is listed. An empty list keeps all.
func filterIncluded(chains []entity.Chain, include []string) []entity.Chain {
	if len(include) == 0 {
		return chains
	}
	wanted := make(map[string]struct{}, len(include))
	for _, name := range include {
		wanted[strings.TrimSpace(name)] = struct{}{}
	}
	out := make([]entity.Chain, 0, len(include))
	for _, chain := range chains {
		if _, ok := wanted[chain.ShortName]; ok {
			out = append(out, chain)
		}
	}
	return out
}
