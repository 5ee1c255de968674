package mongo

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/kalakrut/portal/internal/core/domain"
)

func TestWriteErr_DuplicateKeyIsConflict(t *testing.T) {
	dup := mongo.BulkWriteException{
		WriteErrors: []mongo.BulkWriteError{{WriteError: mongo.WriteError{Code: 11000, Message: "E11000 duplicate key"}}},
	}
	if err := writeErr(dup); !errors.Is(err, domain.ErrRegistrationConflict) {
		t.Errorf("expected ErrRegistrationConflict, got %v", err)
	}

	other := errors.New("server selection timeout")
	if err := writeErr(other); !errors.Is(err, other) || errors.Is(err, domain.ErrRegistrationConflict) {
		t.Errorf("expected error to pass through, got %v", err)
	}
}

func TestUserRecord_DocumentKeyedByID(t *testing.T) {
	rec := domain.UserRecord{ID: "u1", Name: "Luna", Role: domain.RoleArtist, CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}

	raw, err := bson.Marshal(rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc["_id"] != "u1" {
		t.Errorf("record must be stored under _id, got %v", doc["_id"])
	}
	if _, ok := doc["email"]; ok {
		t.Error("empty email must be omitted so the partial unique index skips it")
	}
}
