package application

import (
	"context"
	"sync"
	"time"

	"wallet-aggregator/internal/application/port"
	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"
	domainService "wallet-aggregator/internal/domain/service"

	"go.uber.org/zap"
)

// Compile-time check to ensure endpointService implements EndpointService
var _ port.EndpointService = (*endpointService)(nil)

// endpointService probes candidate RPC endpoints of registered chains.
type endpointService struct {
	registry   *ClientRegistry
	cacheRepo  domainRepo.CacheRepository
	rpcChecker domainService.RPCChecker
	logger     *zap.Logger
	cfg        config.CheckerConfig
}

// NewEndpointService creates a new endpoint service.
func NewEndpointService(
	registry *ClientRegistry,
	cacheRepo domainRepo.CacheRepository,
	rpcChecker domainService.RPCChecker,
	logger *zap.Logger,
	cfg config.CheckerConfig,
) port.EndpointService {
	return &endpointService{
		registry:   registry,
		cacheRepo:  cacheRepo,
		rpcChecker: rpcChecker,
		logger:     logger.Named("EndpointService"),
		cfg:        cfg,
	}
}

// CheckedRPCs returns check results for every candidate URL of the chain, using the cache when possible.
func (s *endpointService) CheckedRPCs(ctx context.Context, chainKey string) ([]entity.RPCDetail, error) {
	client, err := s.registry.Get(chainKey)
	if err != nil {
		return nil, err
	}

	cached, found, err := s.cacheRepo.GetChainCheckedRPCs(ctx, chainKey)
	if err != nil {
		s.logger.Warn("Cache error when getting checked RPCs", zap.String("chain", chainKey), zap.Error(err))
	}
	if found {
		s.logger.Debug("Cache hit for checked RPCs", zap.String("chain", chainKey))
		return cached, nil
	}

	candidates := client.Chain().RPC
	s.logger.Debug("Checking candidate RPCs", zap.String("chain", chainKey), zap.Int("rpcCount", len(candidates)))
	details := s.checkRPCs(ctx, candidates)

	if ctx.Err() != nil {
		return details, nil
	}
	if cacheErr := s.cacheRepo.SetChainCheckedRPCs(ctx, chainKey, details, s.cfg.GetCacheTTL()); cacheErr != nil {
		s.logger.Error("Failed to cache checked RPCs", zap.String("chain", chainKey), zap.Error(cacheErr))
	}
	return details, nil
}

// checkRPCs checks the candidates with a bounded worker pool and returns results in candidate order.
func (s *endpointService) checkRPCs(ctx context.Context, candidates []string) []entity.RPCDetail {
	details := make([]entity.RPCDetail, len(candidates))
	if len(candidates) == 0 {
		return details
	}

	numWorkers := s.cfg.MaxWorkers
	if numWorkers <= 0 {
		numWorkers = 10
	}
	if len(candidates) < numWorkers {
		numWorkers = len(candidates)
	}

	jobs := make(chan int, len(candidates))
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				details[i] = s.checkOne(ctx, candidates[i])
			}
		}()
	}

	for i := range candidates {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return details
}

func (s *endpointService) checkOne(ctx context.Context, raw string) entity.RPCDetail {
	notWorking := false
	detail := entity.RPCDetail{URL: raw, Protocol: entity.ProtocolOf(raw)}

	if entity.IsTemplated(raw) {
		detail.Templated = true
		detail.IsWorking = &notWorking
		return detail
	}

	rpcURL, err := entity.NewRPCURL(raw)
	if err != nil {
		s.logger.Debug("Skipping invalid RPC URL", zap.String("rpc", raw), zap.Error(err))
		detail.IsWorking = &notWorking
		return detail
	}

	checkCtx, cancel := context.WithTimeout(ctx, s.timeout())
	isWorking, latency, err := s.rpcChecker.CheckRPC(checkCtx, rpcURL)
	cancel()

	if err != nil {
		s.logger.Debug("RPC check failed", zap.String("rpc", raw), zap.Error(err))
		detail.IsWorking = &notWorking
		return detail
	}

	detail.IsWorking = &isWorking
	if isWorking {
		latencyMs := latency.Milliseconds()
		detail.LatencyMs = &latencyMs
	}
	return detail
}

func (s *endpointService) timeout() time.Duration {
	if t := s.cfg.GetTimeout(); t > 0 {
		return t
	}
	return 5 * time.Second
}
