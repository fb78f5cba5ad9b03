package utils

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestBaseRegistry_BasicOperations(t *testing.T) {
	registry := NewBaseRegistry[string, int]("test", "key")

	if registry.Size() != 0 {
		t.Errorf("expected empty registry, got size %d", registry.Size())
	}

	if err := registry.Register("key1", 42); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	value, exists := registry.Get("key1")
	if !exists || value != 42 {
		t.Errorf("expected 42, got %d (exists=%t)", value, exists)
	}

	if !registry.Has("key1") {
		t.Error("expected Has to return true for key1")
	}
	if registry.Has("nonexistent") {
		t.Error("expected Has to return false for nonexistent key")
	}

	if _, err := registry.GetOrError("nonexistent"); err == nil || !strings.Contains(err.Error(), "key 'nonexistent' is not registered") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBaseRegistry_OrderSurvivesOverwrite(t *testing.T) {
	registry := NewBaseRegistry[string, string]("test", "key")
	_ = registry.Register("c", "1")
	_ = registry.Register("a", "2")
	_ = registry.Register("b", "3")
	_ = registry.Register("a", "replaced")

	if got := registry.List(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
		t.Errorf("expected registration order, got %v", got)
	}
	if v, _ := registry.Get("a"); v != "replaced" {
		t.Errorf("expected overwritten value, got %s", v)
	}
	if registry.Size() != 3 {
		t.Errorf("expected size 3, got %d", registry.Size())
	}
}

func TestBaseRegistry_Validators(t *testing.T) {
	registry := NewBaseRegistry[string, int]("marker schema", "marker kind")
	registry.SetValidator(ChainValidators[string, int](
		NotEmptyKeyValidator[string, int]("marker kind"),
		NoDuplicateValidator[string, int]("marker kind"),
		nil,
		func(key string, value int, _ map[string]int) error {
			if value < 0 {
				return errors.New("negative values are not allowed")
			}
			return nil
		},
	))

	tests := []struct {
		name    string
		key     string
		value   int
		wantErr string
	}{
		{name: "valid", key: "mock", value: 1},
		{name: "empty key", key: "", value: 1, wantErr: "marker schema registry: marker kind cannot be empty"},
		{name: "duplicate", key: "mock", value: 2, wantErr: "marker kind 'mock' is already registered"},
		{name: "custom", key: "spy", value: -1, wantErr: "negative values"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Register(tt.key, tt.value)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	if v, _ := registry.Get("mock"); v != 1 {
		t.Errorf("rejected registrations must not change the registry, got %d", v)
	}
}

func TestBaseRegistry_Clone(t *testing.T) {
	registry := NewBaseRegistry[string, int]("test", "key")
	registry.SetValidator(NoDuplicateValidator[string, int]("key"))
	_ = registry.Register("a", 1)

	clone := registry.Clone()
	if err := clone.Register("b", 2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := clone.Register("a", 3); err == nil {
		t.Error("expected the clone to keep the validator")
	}

	if registry.Has("b") {
		t.Error("expected the original to be unaffected by the clone")
	}
	if got := clone.List(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("unexpected clone order %v", got)
	}
}

func TestBaseRegistry_ConcurrentAccess(t *testing.T) {
	registry := NewBaseRegistry[int, int]("test", "key")

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = registry.Register(i*100+j, j)
				registry.Get(i*100 + j)
				registry.List()
			}
		}(i)
	}
	wg.Wait()

	if registry.Size() != 1000 {
		t.Errorf("expected 1000 items, got %d", registry.Size())
	}
}
