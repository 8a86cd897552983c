package apikey

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Key{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestHashPrefixLength(t *testing.T) {
	hash, prefix := Hash("OoNhM6l1aCUFRoCjb8LUNYqJ2IVrVVka")
	if len(hash) != 32 {
		t.Fatalf("expected 32-byte hash, got %d", len(hash))
	}
	if !bytes.Equal(prefix, []byte("OoNhM6l1aC")) {
		t.Fatalf("unexpected prefix %q", prefix)
	}
}

func TestHashShortKeyUsesAllBytes(t *testing.T) {
	_, prefix := Hash("abc")
	if !bytes.Equal(prefix, []byte("abc")) {
		t.Fatalf("unexpected prefix %q", prefix)
	}
}

func TestVerifyIssuedKey(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	const key = "OoNhM6l1aCUFRoCjb8LUNYqJ2IVrVVka"
	if err := store.Issue(ctx, key); err != nil {
		t.Fatalf("issue: %v", err)
	}

	ok, err := store.Verify(ctx, key)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("exact key must verify")
	}
}

func TestVerifyRejectsMutations(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	const key = "OoNhM6l1aCUFRoCjb8LUNYqJ2IVrVVka"
	if err := store.Issue(ctx, key); err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Flip one byte at a time; every mutation must fail.
	for i := 0; i < len(key); i++ {
		mutated := []byte(key)
		mutated[i] ^= 0x01
		ok, err := store.Verify(ctx, string(mutated))
		if err != nil {
			t.Fatalf("verify mutation %d: %v", i, err)
		}
		if ok {
			t.Fatalf("mutated key at byte %d must not verify", i)
		}
	}
}

func TestVerifyEmptyKeyFails(t *testing.T) {
	store := NewStore(openTestDB(t))

	ok, err := store.Verify(context.Background(), "")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if ok {
		t.Fatalf("empty key must not verify")
	}
}

func TestGenerateProducesVerifiableKeys(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	k1, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	k2, err := Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if k1 == k2 {
		t.Fatalf("generated keys must differ")
	}
	if len(k1) <= PrefixLen {
		t.Fatalf("generated key too short: %d", len(k1))
	}

	if err := store.Issue(ctx, k1); err != nil {
		t.Fatalf("issue: %v", err)
	}
	ok, err := store.Verify(ctx, k1)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Fatalf("generated key must verify after issue")
	}
}

func TestPrefixesListsIssuedTuples(t *testing.T) {
	store := NewStore(openTestDB(t))
	ctx := context.Background()

	if err := store.Issue(ctx, "first-key-0123456789"); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := store.Issue(ctx, "second-key-0123456789"); err != nil {
		t.Fatalf("issue: %v", err)
	}

	prefixes, err := store.Prefixes(ctx)
	if err != nil {
		t.Fatalf("prefixes: %v", err)
	}
	if len(prefixes) != 2 {
		t.Fatalf("expected 2 prefixes, got %d", len(prefixes))
	}
	// Newest first.
	if prefixes[0] != "second-key" || prefixes[1] != "first-key-" {
		t.Fatalf("unexpected prefixes: %v", prefixes)
	}
}
