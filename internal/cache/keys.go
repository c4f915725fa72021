package cache

import (
	"crypto/md5"
	"encoding/json"
	"fmt"
	"sort"
)

// Namespace groups keys that share a TTL and are invalidated together.
type Namespace string

const (
	NamespaceSearch     Namespace = "search"
	NamespaceColleagues Namespace = "colleagues"
	NamespaceFilters    Namespace = "filters"
	NamespaceCandidate  Namespace = "candidate"
)

// Prefix is the key prefix covering the whole namespace.
func (n Namespace) Prefix() string {
	return string(n) + ":"
}

// Key derives a deterministic key for params under namespace. Params are
// canonicalized first: object keys are sorted and every list is ordered, so
// requests that differ only in filter order share a key.
func Key(namespace Namespace, params any) (string, error) {
	hash, err := hashParams(params)
	if err != nil {
		return "", err
	}
	return namespace.Prefix() + hash, nil
}

// ScopedKey is Key with a scope segment (usually a candidate id), so that one
// candidate's entries can be invalidated by prefix.
func ScopedKey(namespace Namespace, scope string, params any) (string, error) {
	hash, err := hashParams(params)
	if err != nil {
		return "", err
	}
	return namespace.Prefix() + scope + ":" + hash, nil
}

func hashParams(params any) (string, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode cache key params: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return "", fmt.Errorf("decode cache key params: %w", err)
	}

	// encoding/json writes map keys in sorted order
	canonical, err := json.Marshal(canonicalize(generic))
	if err != nil {
		return "", fmt.Errorf("encode canonical params: %w", err)
	}

	sum := md5.Sum(canonical)
	return fmt.Sprintf("%x", sum), nil
}

func canonicalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = canonicalize(val)
		}
		return t
	case []any:
		items := make([]any, len(t))
		encoded := make([]string, len(t))
		for i, val := range t {
			items[i] = canonicalize(val)
			b, _ := json.Marshal(items[i])
			encoded[i] = string(b)
		}
		sort.Sort(byEncoding{items: items, encoded: encoded})
		return items
	default:
		return v
	}
}

type byEncoding struct {
	items   []any
	encoded []string
}

func (b byEncoding) Len() int           { return len(b.items) }
func (b byEncoding) Less(i, j int) bool { return b.encoded[i] < b.encoded[j] }
func (b byEncoding) Swap(i, j int) {
	b.items[i], b.items[j] = b.items[j], b.items[i]
	b.encoded[i], b.encoded[j] = b.encoded[j], b.encoded[i]
}
