package cache

// ScopedKeyer wraps a Keyer with a prefix, isolating cache namespaces when
// several investigations share one backing store.
//
// Example usage:
//
//	// Case-specific keys for an investigation workspace
//	caseKeyer := NewScopedKeyer(NewDefaultKeyer(), "case:FR-2209:")
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

// LayoutKey generates a prefixed key for layout caching.
func (k *ScopedKeyer) LayoutKey(chainHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(chainHash, opts)
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
