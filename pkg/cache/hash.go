package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. It names layout content, asset
// references and FileCache entry files.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// labelKey returns "label:<sha256>" over the schema hash and the render
// inputs. encoding/json writes map keys sorted, so equal data maps yield
// equal keys.
func labelKey(schemaHash string, opts ArtifactKeyOpts) string {
	data, _ := json.Marshal([]any{schemaHash, opts})
	return "label:" + Hash(data)
}
