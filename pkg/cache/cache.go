// Package cache provides byte caches for fetched assets and rendered labels.
//
// # Backends
//
//   - [FileCache]: JSON entries under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance API deployments
//   - [NullCache]: never stores anything; used when caching is disabled
//
// # Keys
//
// A [Keyer] builds namespaced keys so that one backend can hold several
// kinds of entries without collisions:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.ArtifactKey(schemaHash, cache.ArtifactKeyOpts{WidthMM: 50, HeightMM: 30, DPI: 300})
//
// [NewScopedKeyer] prefixes every key, which keeps a per-tenant or
// per-environment namespace inside a shared Redis.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	// AssetTTL bounds how long a fetched remote image is reused.
	AssetTTL = 24 * time.Hour

	// ArtifactTTL bounds how long a rendered label is reused.
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiration.
type Cache interface {
	// Get returns the value for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// AssetKey names a fetched image by its reference.
	AssetKey(ref string) string

	// ArtifactKey names a rendered label by schema hash and render inputs.
	ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts are the render inputs that change the output bytes.
type ArtifactKeyOpts struct {
	WidthMM  float64           `json:"w"`
	HeightMM float64           `json:"h"`
	DPI      float64           `json:"dpi"`
	Data     map[string]string `json:"data,omitempty"`
	Font     string            `json:"font,omitempty"`
}

// DefaultKeyer produces "asset:" and "label:" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// AssetKey hashes ref so arbitrary URLs become safe keys.
func (DefaultKeyer) AssetKey(ref string) string {
	return "asset:" + Hash([]byte(ref))
}

// ArtifactKey hashes the schema hash together with opts. Map keys are
// encoded in sorted order, so equal data yields equal keys.
func (DefaultKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return labelKey(schemaHash, opts)
}

var _ Keyer = DefaultKeyer{}
