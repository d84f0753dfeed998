package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Lookup resolves a configuration key. ok is false when the key is not set.
type Lookup interface {
	Lookup(key string) (value string, ok bool)
}

// EnvLookup reads the process environment.
type EnvLookup struct{}

func (EnvLookup) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// MapLookup serves keys from a fixed map.
type MapLookup map[string]string

func (m MapLookup) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Chain consults each Lookup in order; the first one that has the key wins.
type Chain []Lookup

func (c Chain) Lookup(key string) (string, bool) {
	for _, l := range c {
		if l == nil {
			continue
		}
		if v, ok := l.Lookup(key); ok {
			return v, true
		}
	}
	return "", false
}

// String returns the trimmed value of key, or fallback when unset or blank.
func String(l Lookup, key, fallback string) string {
	v, ok := l.Lookup(key)
	if !ok {
		return fallback
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func Int(l Lookup, key string, fallback int) (int, error) {
	v := String(l, key, "")
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return out, nil
}

func Duration(l Lookup, key string, fallback time.Duration) (time.Duration, error) {
	v := String(l, key, "")
	if v == "" {
		return fallback, nil
	}
	out, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return out, nil
}

func Float32(l Lookup, key string, fallback float32) (float32, error) {
	out, err := parseFloat(l, key, float64(fallback), 32)
	return float32(out), err
}

func Float64(l Lookup, key string, fallback float64) (float64, error) {
	return parseFloat(l, key, fallback, 64)
}

func parseFloat(l Lookup, key string, fallback float64, bitSize int) (float64, error) {
	v := String(l, key, "")
	if v == "" {
		return fallback, nil
	}
	out, err := strconv.ParseFloat(v, bitSize)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return out, nil
}
