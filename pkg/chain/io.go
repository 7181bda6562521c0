package chain

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/Rishikoli/chaingraph/pkg/errors"
)

// =============================================================================
// Chain Serialization API
// =============================================================================

// UnmarshalChain deserializes JSON bytes into a Chain.
// Returns ErrCodeInvalidChain for malformed JSON or a missing chain id.
func UnmarshalChain(data []byte) (Chain, error) {
	var c Chain
	if err := json.Unmarshal(data, &c); err != nil {
		return Chain{}, errors.Wrap(errors.ErrCodeInvalidChain, err, "decode chain")
	}
	if c.ID == "" {
		return Chain{}, errors.New(errors.ErrCodeInvalidChain, "chain id is required")
	}
	return c, nil
}

// MarshalChain serializes a Chain to pretty-printed JSON bytes.
func MarshalChain(c Chain) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// ReadChain decodes a JSON chain from an io.Reader.
// Use ReadChainFile for files or pass bytes.NewReader for in-memory data.
func ReadChain(r io.Reader) (Chain, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Chain{}, fmt.Errorf("read chain: %w", err)
	}
	return UnmarshalChain(data)
}

// ReadChainFile reads a JSON file and returns the decoded Chain.
func ReadChainFile(path string) (Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Chain{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "chain file %s", path)
		}
		return Chain{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalChain(data)
}

// WriteChainFile writes a Chain to a JSON file.
// The file is created with 0644 permissions.
func WriteChainFile(c Chain, path string) error {
	data, err := MarshalChain(c)
	if err != nil {
		return fmt.Errorf("encode chain: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// ReadChainFiles reads multiple chain files for a merged view.
// It stops at the first failure.
func ReadChainFiles(paths []string) ([]Chain, error) {
	chains := make([]Chain, 0, len(paths))
	for _, p := range paths {
		c, err := ReadChainFile(p)
		if err != nil {
			return nil, err
		}
		chains = append(chains, c)
	}
	return chains, nil
}
