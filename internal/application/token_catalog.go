package application

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"wallet-aggregator/internal/domain/entity"
	"wallet-aggregator/internal/pkg/apperrors"
)

// ReadTokenFile parses a token list document of the form
// [{"name": ..., "address": ..., "symbol": ..., "decimals": ...}].
func ReadTokenFile(path string) ([]entity.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read token file %s: %w", apperrors.ErrConfig, path, err)
	}

	var tokens []entity.Token
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("%w: parse token file %s: %w", apperrors.ErrConfig, path, err)
	}
	return tokens, nil
}

// tokenFileIn returns the path of the chain's token file inside dir and whether it exists.
func tokenFileIn(dir string, chain entity.Chain) (string, bool) {
	path := filepath.Join(dir, chain.TokenFileName())
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return path, false
	}
	return path, true
}
