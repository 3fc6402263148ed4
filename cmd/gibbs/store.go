package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/gibbs/pkg/adapters/file"
	"github.com/aretw0/gibbs/pkg/adapters/memory"
	"github.com/aretw0/gibbs/pkg/adapters/redis"
	"github.com/aretw0/gibbs/pkg/adapters/sqlite"
	"github.com/aretw0/gibbs/pkg/persistence/middleware"
	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/spf13/cobra"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore builds the run store selected by --store / GIBBS_STORE.
// The redis store also yields a distributed locker; others return nil.
// With GIBBS_STORE_KEY set, records are sealed with AES-256-GCM.
func openStore(cmd *cobra.Command) (ports.RunStore, ports.DistributedLocker, io.Closer, error) {
	store, locker, closer, err := openBackend(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	mws, err := storeMiddlewares()
	if err != nil {
		_ = closer.Close()
		return nil, nil, nil, err
	}
	return middleware.Chain(store, mws...), locker, closer, nil
}

func openBackend(cmd *cobra.Command) (ports.RunStore, ports.DistributedLocker, io.Closer, error) {
	kind := flagOrEnv(cmd, "store", "GIBBS_STORE", "file")
	path, _ := cmd.Flags().GetString("store-path")

	switch kind {
	case "memory":
		return memory.NewStore(), nil, nopCloser{}, nil
	case "file":
		return file.New(path), nil, nopCloser{}, nil
	case "sqlite":
		if path == "" {
			path = filepath.Join(".gibbs", "runs.db")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, nil, err
		}
		store, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, nil, err
		}
		return store, nil, store, nil
	case "redis":
		addr := flagOrEnv(cmd, "redis-addr", "GIBBS_REDIS_ADDR", "localhost:6379")
		store := redis.New(addr, os.Getenv("GIBBS_REDIS_PASSWORD"), 0)
		return store, redis.NewLocker(store.Client(), "gibbs:"), store, nil
	default:
		return nil, nil, nil, fmt.Errorf("unknown store %q (supported: memory, file, redis, sqlite)", kind)
	}
}

func storeMiddlewares() ([]middleware.Middleware, error) {
	active := os.Getenv("GIBBS_STORE_KEY")
	if active == "" {
		return nil, nil
	}

	key, err := middleware.ParseKey(active)
	if err != nil {
		return nil, fmt.Errorf("GIBBS_STORE_KEY: %w", err)
	}

	var fallbacks [][]byte
	for _, s := range strings.Split(os.Getenv("GIBBS_STORE_FALLBACK_KEYS"), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		k, err := middleware.ParseKey(s)
		if err != nil {
			return nil, fmt.Errorf("GIBBS_STORE_FALLBACK_KEYS: %w", err)
		}
		fallbacks = append(fallbacks, k)
	}

	return []middleware.Middleware{
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key, FallbackKeys: fallbacks}),
	}, nil
}
