package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/princinho/o3dstudio/config"
	"github.com/princinho/o3dstudio/models"
)

// AdminSeedUpdate is the upsert that creates the admin account once and never
// overwrites an existing one.
func AdminSeedUpdate(email, passwordHash string, now time.Time) bson.M {
	return bson.M{
		"$setOnInsert": bson.M{
			"email":        email,
			"passwordHash": passwordHash,
			"role":         models.RoleAdmin,
			"isActive":     true,
			"createdAt":    now,
			"updatedAt":    now,
		},
	}
}

// SeedAdminUser reports whether a new admin was inserted.
func SeedAdminUser(ctx context.Context, usersCol *mongo.Collection, cfg config.AuthConfig) (bool, error) {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))
	if email == "" || cfg.AdminPassword == "" {
		return false, fmt.Errorf("missing ADMIN_EMAIL or ADMIN_PASSWORD env vars")
	}

	hash, err := HashPassword(cfg.AdminPassword)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	opts := options.UpdateOne().SetUpsert(true)
	res, err := usersCol.UpdateOne(ctx, bson.M{"email": email}, AdminSeedUpdate(email, hash, time.Now().UTC()), opts)
	if err != nil {
		return false, fmt.Errorf("seed admin upsert failed: %w", err)
	}
	return res.UpsertedCount == 1, nil
}
