package badger

import (
	"context"
	"testing"

	"github.com/civica/policyrag/core"
)

func TestBoostLoadEmpty(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	rules, err := boostRepo.Load(context.Background())
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if rules == nil {
		t.Fatal("Expected an empty rule set, got nil")
	}
	if len(rules.Source) != 0 || len(rules.Category) != 0 {
		t.Fatalf("Expected empty maps, got %d source and %d category rules",
			len(rules.Source), len(rules.Category))
	}

	// Empty set must still be mutable.
	rules.Source["garbage.md"] = 0.1
}

func TestBoostSaveAndLoad(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	rules := core.NewBoostRuleSet()
	rules.Source["garbage.md"] = 0.2
	rules.Category["activity"] = 0.1
	if err := boostRepo.Save(ctx, rules); err != nil {
		t.Fatalf("Failed to save rules: %v", err)
	}

	loaded, err := boostRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if loaded.Source["garbage.md"] != 0.2 {
		t.Fatalf("Expected source weight 0.2, got %v", loaded.Source["garbage.md"])
	}
	if loaded.Category["activity"] != 0.1 {
		t.Fatalf("Expected category weight 0.1, got %v", loaded.Category["activity"])
	}
}

func TestBoostSaveReplaces(t *testing.T) {
	chunkRepo, registryRepo, boostRepo, backend, err := NewMemoryStores()
	if err != nil {
		t.Fatalf("Failed to create stores: %v", err)
	}
	defer func() { boostRepo.Close(); registryRepo.Close(); chunkRepo.Close(); backend.Close() }()

	ctx := context.Background()

	first := core.NewBoostRuleSet()
	first.Source["garbage.md"] = 0.2
	if err := boostRepo.Save(ctx, first); err != nil {
		t.Fatalf("Failed to save first set: %v", err)
	}

	second := core.NewBoostRuleSet()
	second.Source["parking.md"] = 0.3
	if err := boostRepo.Save(ctx, second); err != nil {
		t.Fatalf("Failed to save second set: %v", err)
	}

	loaded, err := boostRepo.Load(ctx)
	if err != nil {
		t.Fatalf("Failed to load rules: %v", err)
	}
	if _, ok := loaded.Source["garbage.md"]; ok {
		t.Fatal("Save should replace the whole rule set")
	}
	if loaded.Source["parking.md"] != 0.3 {
		t.Fatalf("Expected weight 0.3, got %v", loaded.Source["parking.md"])
	}
}
