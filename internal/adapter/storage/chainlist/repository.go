package chainlist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	dto "wallet-aggregator/internal/adapter/storage/chainlist/dto"
	"wallet-aggregator/internal/config"
	"wallet-aggregator/internal/domain/entity"
	domainRepo "wallet-aggregator/internal/domain/repository"
	"wallet-aggregator/internal/pkg/apperrors"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Compile-time checks
var (
	_ domainRepo.ChainRepository = (*FileRepository)(nil)
	_ domainRepo.ChainRepository = (*RemoteRepository)(nil)
)

const defaultFetchTimeout = 15 * time.Second

// NewRepository returns a remote repository when cfg.URL is set and a file repository otherwise.
func NewRepository(cfg config.ChainsConfig, logger *zap.Logger) domainRepo.ChainRepository {
	if cfg.URL != "" {
		return NewRemoteRepository(cfg.URL, cfg.Include, logger)
	}
	return NewFileRepository(cfg.File, cfg.Include, logger)
}

// FileRepository reads chain descriptors from a local JSON or YAML document.
type FileRepository struct {
	path    string
	include []string
	logger  *zap.Logger
}

// NewFileRepository creates a repository backed by the file at path.
func NewFileRepository(path string, include []string, logger *zap.Logger) *FileRepository {
	return &FileRepository{
		path:    path,
		include: include,
		logger:  logger.Named("ChainFileStorage"),
	}
}

// GetAllChains parses the descriptor file. The format is picked by extension: .yaml/.yml, otherwise JSON.
func (r *FileRepository) GetAllChains(_ context.Context) ([]entity.Chain, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read chains file %s: %w", apperrors.ErrConfig, r.path, err)
	}

	var rawChains []dto.ChainRaw
	switch strings.ToLower(filepath.Ext(r.path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &rawChains)
	default:
		err = json.Unmarshal(data, &rawChains)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse chains file %s: %w", apperrors.ErrConfig, r.path, err)
	}

	chains := filterIncluded(toDomainChains(rawChains, r.logger), r.include)
	r.logger.Info("Loaded chain descriptors",
		zap.String("path", r.path), zap.Int("parsed", len(rawChains)), zap.Int("kept", len(chains)),
	)
	return chains, nil
}

// RemoteRepository fetches chain descriptors from a chainlist-format URL.
type RemoteRepository struct {
	client  *fasthttp.Client
	url     string
	include []string
	logger  *zap.Logger
}

// NewRemoteRepository creates a repository that downloads descriptors from url.
func NewRemoteRepository(url string, include []string, logger *zap.Logger) *RemoteRepository {
	return &RemoteRepository{
		client:  &fasthttp.Client{},
		url:     url,
		include: include,
		logger:  logger.Named("ChainlistStorage"),
	}
}

// GetAllChains fetches the full list of chains from the configured URL and keeps the included ones.
func (r *RemoteRepository) GetAllChains(ctx context.Context) ([]entity.Chain, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(r.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set(fasthttp.HeaderAcceptEncoding, "gzip")

	timeout := defaultFetchTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if requestTimeout := time.Until(deadline); requestTimeout > 0 && requestTimeout < timeout {
			timeout = requestTimeout
		}
	}

	r.logger.Debug("Fetching chains from Chainlist", zap.String("url", r.url), zap.Duration("timeout", timeout))

	if err := r.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, fmt.Errorf("%w: request to chainlist %s failed: %w", apperrors.ErrConfig, r.url, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		r.logger.Error("Chainlist returned non-OK status",
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("body", resp.Body()),
		)
		return nil, fmt.Errorf("%w: chainlist %s returned status %d", apperrors.ErrConfig, r.url, resp.StatusCode())
	}

	body := resp.Body()
	if bytes.EqualFold(resp.Header.Peek(fasthttp.HeaderContentEncoding), []byte("gzip")) {
		var err error
		body, err = resp.BodyGunzip()
		if err != nil {
			return nil, fmt.Errorf("%w: decompress chainlist response: %w", apperrors.ErrConfig, err)
		}
	}

	var rawChains []dto.ChainRaw
	if err := json.Unmarshal(body, &rawChains); err != nil {
		r.logger.Error("Failed to unmarshal Chainlist response",
			zap.Error(err), zap.ByteString("bodySample", body[:min(1024, len(body))]),
		)
		return nil, fmt.Errorf("%w: parse chainlist response: %w", apperrors.ErrConfig, err)
	}

	chains := filterIncluded(toDomainChains(rawChains, r.logger), r.include)
	r.logger.Info("Fetched chain descriptors from Chainlist",
		zap.Int("fetched", len(rawChains)), zap.Int("kept", len(chains)),
	)
	return chains, nil
}
