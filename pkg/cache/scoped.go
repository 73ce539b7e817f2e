package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, for
// example when a staging and a production API share one Redis.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// AssetKey generates a prefixed key for a fetched image.
func (k *ScopedKeyer) AssetKey(ref string) string {
	return k.prefix + k.inner.AssetKey(ref)
}

// ArtifactKey generates a prefixed key for a rendered label.
func (k *ScopedKeyer) ArtifactKey(schemaHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(schemaHash, opts)
}
