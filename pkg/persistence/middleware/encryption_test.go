package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"
	"time"

	"github.com/aretw0/gibbs/pkg/adapters/memory"
	"github.com/aretw0/gibbs/pkg/domain"
	"github.com/aretw0/gibbs/pkg/persistence/middleware"
	"github.com/aretw0/gibbs/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	k := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, k); err != nil {
		t.Fatal(err)
	}
	return k
}

func sampleRun(id string) domain.RunRecord {
	return domain.RunRecord{
		ID:          id,
		Unit:        "R-101",
		Model:       "ideal",
		Feed:        domain.MaterialState{Name: "Feed", Composition: domain.Composition{"CH4": 1, "H2O": 2}},
		Product:     domain.MaterialState{Name: "Feed", Composition: domain.Composition{"CH4": 0.4, "H2O": 2.6}},
		GibbsEnergy: -12.5,
		Fingerprint: "abc",
		CreatedAt:   time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunRunStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlyingStore := memory.NewStore()
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	secureStore := mw(underlyingStore)
	ctx := context.Background()

	require.NoError(t, secureStore.Save(ctx, sampleRun("run-1")))

	// Underlying store holds only the envelope.
	stored, err := underlyingStore.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.Empty(t, stored.Product.Composition, "product must be hidden")
	assert.Empty(t, stored.Feed.Composition, "feed must be hidden")
	assert.NotEmpty(t, stored.Sealed)
	assert.Equal(t, "R-101", stored.Unit)

	loaded, err := secureStore.Load(ctx, "run-1")
	require.NoError(t, err)
	assert.InDelta(t, 0.4, loaded.Product.Composition["CH4"], 1e-12)
	assert.InDelta(t, -12.5, loaded.GibbsEnergy, 1e-12)
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlyingStore := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	secureStoreOld := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlyingStore)
	require.NoError(t, secureStoreOld.Save(ctx, sampleRun("rotation")))

	secureStoreNew := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlyingStore)

	loaded, err := secureStoreNew.Load(ctx, "rotation")
	require.NoError(t, err, "fallback key must decrypt old records")

	require.NoError(t, secureStoreNew.Save(ctx, loaded))

	_, err = secureStoreOld.Load(ctx, "rotation")
	assert.Error(t, err, "old key alone must not decrypt records sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainRecords(t *testing.T) {
	underlyingStore := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlyingStore.Save(ctx, sampleRun("plain")))

	secureStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlyingStore)
	_, err := secureStore.Load(ctx, "plain")
	assert.Error(t, err)

	_, err = secureStore.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("c2hvcnQ=")
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.RunStore) ports.RunStore {
			return recordingStore{RunStore: next, name: name, order: &order}
		}
	}

	store := middleware.Chain(memory.NewStore(), tag("outer"), tag("inner"))
	require.NoError(t, store.Save(context.Background(), sampleRun("x")))
	assert.Equal(t, []string{"outer", "inner"}, order)
}

type recordingStore struct {
	ports.RunStore
	name  string
	order *[]string
}

func (s recordingStore) Save(ctx context.Context, record domain.RunRecord) error {
	*s.order = append(*s.order, s.name)
	return s.RunStore.Save(ctx, record)
}
