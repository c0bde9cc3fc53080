package application

import (
	"fmt"

	"wallet-aggregator/internal/domain"
	"wallet-aggregator/internal/domain/entity"
	domainService "wallet-aggregator/internal/domain/service"
	"wallet-aggregator/internal/pkg/apperrors"

	"go.uber.org/zap"
)

// TransportFactory creates the RPC and explorer transports for one chain.
type TransportFactory func(chain entity.Chain, rpcURL entity.RPCURL) (domainService.RPCTransport, domainService.ExplorerTransport, error)

// BuildRegistry creates one client per descriptor and registers the ones that could be built.
// A descriptor is dropped, with a warning, when it has no usable RPC URL, its transports
// cannot be created, or one of its token files is invalid. Later descriptors that repeat
// an already registered short name are dropped as well.
func BuildRegistry(
	chains []entity.Chain,
	tokenDirs []string,
	factory TransportFactory,
	logger *zap.Logger,
	observer CallObserver,
) *ClientRegistry {
	log := logger.Named("RegistryBuilder")

	clients := make([]*ChainClient, 0, len(chains))
	seen := make(map[string]struct{}, len(chains))
	for _, chain := range chains {
		if _, dup := seen[chain.Key()]; dup {
			log.Warn("Skipping duplicate chain descriptor",
				zap.String("chain", chain.Key()), zap.Uint64("chainId", chain.ChainID),
			)
			continue
		}

		client, err := buildClient(chain, tokenDirs, factory, logger)
		if err != nil {
			log.Warn("Skipping chain", zap.String("chain", chain.Key()), zap.Error(err))
			continue
		}
		seen[chain.Key()] = struct{}{}
		clients = append(clients, client)
		log.Info("Chain client ready",
			zap.String("chain", chain.Key()),
			zap.String("rpc", client.RPCURL().String()),
			zap.Int("tokens", client.TokenCount()),
		)
	}

	return NewClientRegistry(clients, logger, observer)
}

func buildClient(
	chain entity.Chain,
	tokenDirs []string,
	factory TransportFactory,
	logger *zap.Logger,
) (*ChainClient, error) {
	if chain.ShortName == "" {
		return nil, fmt.Errorf("%w: chain %q has no short name", apperrors.ErrConfig, chain.Name)
	}

	rpcURL, err := entity.SelectRPCURL(chain.RPC)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNoUsableRPC, err)
	}

	rpc, explorer, err := factory(chain, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("create transports: %w", err)
	}

	client := NewChainClient(chain, rpcURL, rpc, explorer, logger)
	for _, dir := range tokenDirs {
		path, ok := tokenFileIn(dir, chain)
		if !ok {
			continue
		}
		if _, err := client.AddTokensFromFile(path); err != nil {
			return nil, err
		}
	}
	return client, nil
}
