package kv

import "context"

// Prefixed namespaces every key of the wrapped store.
type Prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix wraps s so "users" is stored as prefix+"users". An empty prefix
// returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &Prefixed{inner: s, prefix: prefix}
}

func (p *Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *Prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

func (p *Prefixed) SetMany(ctx context.Context, entries map[string]string) error {
	prefixed := make(map[string]string, len(entries))
	for k, v := range entries {
		prefixed[p.prefix+k] = v
	}
	return p.inner.SetMany(ctx, prefixed)
}

func (p *Prefixed) RemoveMany(ctx context.Context, keys ...string) error {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = p.prefix + k
	}
	return p.inner.RemoveMany(ctx, prefixed...)
}

func (p *Prefixed) Close() error {
	return p.inner.Close()
}
