package store

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestUserIndexesEnforceUniqueness(t *testing.T) {
	indexed := map[string]bool{}
	for _, model := range userIndexModels() {
		keys, ok := model.Keys.(bson.D)
		if !ok || len(keys) != 1 {
			t.Fatalf("index keys = %#v, want a single field", model.Keys)
		}
		if model.Options == nil || model.Options.Unique == nil || !*model.Options.Unique {
			t.Errorf("index on %q is not unique", keys[0].Key)
		}
		indexed[keys[0].Key] = true
	}

	for _, field := range []string{"username", "email"} {
		if !indexed[field] {
			t.Errorf("no unique index on %q", field)
		}
	}
}
