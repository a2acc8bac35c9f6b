package badger

import (
	"context"
	"testing"

	"github.com/civica/policyrag/core"
)

func TestRegistryPutAndLoad(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entry := core.RegistryEntry{
		Source:      "garbage.md",
		FilePath:    "/docs/garbage.md",
		Mtime:       1756300000,
		ContentHash: core.ContentHash("body"),
	}
	if err := registryRepo.Put(ctx, entry); err != nil {
		t.Fatalf("Failed to put entry: %v", err)
	}

	entries, err := registryRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("Expected 1 entry, got %d", len(entries))
	}
	if entries["garbage.md"] != entry {
		t.Fatalf("Loaded entry %+v does not match stored %+v", entries["garbage.md"], entry)
	}
}

func TestRegistryPutOverwrites(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	entry := core.RegistryEntry{Source: "a.md", FilePath: "/docs/a.md", Mtime: 100}
	if err := registryRepo.Put(ctx, entry); err != nil {
		t.Fatalf("Failed to put entry: %v", err)
	}
	entry.Mtime = 200
	if err := registryRepo.Put(ctx, entry); err != nil {
		t.Fatalf("Failed to update entry: %v", err)
	}

	entries, err := registryRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}
	if entries["a.md"].Mtime != 200 {
		t.Fatalf("Expected updated mtime 200, got %d", entries["a.md"].Mtime)
	}
}

func TestRegistryLoadEmpty(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	entries, err := registryRepo.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load empty registry: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("Expected empty registry, got %d entries", len(entries))
	}
}

func TestRegistryReplaceAll(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	if err := registryRepo.Put(ctx, core.RegistryEntry{Source: "old.md", FilePath: "/docs/old.md"}); err != nil {
		t.Fatalf("Failed to put entry: %v", err)
	}

	replacement := map[string]core.RegistryEntry{
		"a.md": {Source: "a.md", FilePath: "/docs/a.md", Mtime: 1},
		"b.md": {Source: "b.md", FilePath: "/docs/b.md", Mtime: 2},
	}
	if err := registryRepo.ReplaceAll(ctx, replacement); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}

	entries, err := registryRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load registry: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Expected 2 entries after replace, got %d", len(entries))
	}
	if _, ok := entries["old.md"]; ok {
		t.Fatal("ReplaceAll should have dropped the old entry")
	}
}
