package chain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
)

// Hash computes a content hash over one or more chains.
//
// The hash is stable under node/edge reordering (order carries no meaning,
// see Chain) and is used as the cache key for computed layouts: the same
// chain set always maps to the same key regardless of how the backend
// happened to order its arrays.
func Hash(chains ...Chain) string {
	canon := make([]Chain, len(chains))
	copy(canon, chains)
	slices.SortFunc(canon, func(a, b Chain) int {
		return compareStrings(a.ID, b.ID)
	})

	for i := range canon {
		nodes := slices.Clone(canon[i].Nodes)
		slices.SortFunc(nodes, func(a, b Node) int { return compareStrings(a.ID, b.ID) })
		edges := slices.Clone(canon[i].Edges)
		slices.SortFunc(edges, func(a, b Edge) int { return compareStrings(a.ID, b.ID) })
		canon[i].Nodes = nodes
		canon[i].Edges = edges
	}

	data, _ := json.Marshal(canon)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
