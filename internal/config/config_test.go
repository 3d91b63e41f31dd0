package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/david-crosby/Ripple/internal/adapters/persistence/models"
	"github.com/david-crosby/Ripple/internal/adapters/persistence/repositories"
	"github.com/david-crosby/Ripple/internal/core/domain"
	"github.com/david-crosby/Ripple/internal/pkg/password"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("APP_MODE", "dev")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDev())
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 30*time.Minute, cfg.AccessTokenTTL())
	assert.Equal(t, password.DefaultCost, cfg.Security.BcryptCost)
	assert.Equal(t, "memory", cfg.RateLimit.Store)
	assert.Equal(t, 10, cfg.RateLimit.Login.Max)
	assert.Equal(t, time.Minute, cfg.RateLimit.Login.Window)
	assert.Equal(t, 5, cfg.RateLimit.Register.Max)
	assert.Equal(t, time.Hour, cfg.RateLimit.Register.Window)
	assert.Equal(t, 5*time.Second, cfg.Ledger.TxTimeout)
	assert.Equal(t, "*", cfg.GetAllowedOrigins())
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("APP_MODE", "dev")
	t.Setenv("DB_DRIVER", "SQLite")
	t.Setenv("DEV_JWT_SECRET", "dev-secret")
	t.Setenv("RATE_LIMIT_LOGIN", "3-S")
	t.Setenv("RATE_LIMIT_STORE", "redis")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("LEDGER_TX_TIMEOUT", "250ms")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "dev-secret", cfg.JWT.Secret)
	assert.Equal(t, 3, cfg.RateLimit.Login.Max)
	assert.Equal(t, time.Second, cfg.RateLimit.Login.Window)
	assert.Equal(t, "redis", cfg.RateLimit.Store)
	assert.Equal(t, 10, cfg.Security.BcryptCost)
	assert.Equal(t, 250*time.Millisecond, cfg.Ledger.TxTimeout)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad mode", map[string]string{"APP_MODE": "staging"}, "APP_MODE"},
		{"prod without secret", map[string]string{"APP_MODE": "prod"}, "JWT_SECRET"},
		{"prod short secret", map[string]string{"APP_MODE": "prod", "PROD_JWT_SECRET": "short"}, "JWT_SECRET"},
		{"bad driver", map[string]string{"APP_MODE": "dev", "DB_DRIVER": "postgres"}, "DB_DRIVER"},
		{"bad rate", map[string]string{"APP_MODE": "dev", "RATE_LIMIT_REGISTER": "five per hour"}, "RATE_LIMIT_REGISTER"},
		{"bad limiter store", map[string]string{"APP_MODE": "dev", "RATE_LIMIT_STORE": "etcd"}, "RATE_LIMIT_STORE"},
		{"bad timeout", map[string]string{"APP_MODE": "dev", "LEDGER_TX_TIMEOUT": "soon"}, "LEDGER_TX_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFromEnv_ProdSecret(t *testing.T) {
	t.Setenv("APP_MODE", "prod")
	t.Setenv("PROD_JWT_SECRET", strings.Repeat("s", minProdSecretLen))

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProd())
	assert.True(t, cfg.Cookie.Secure)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestSeeder_AdminUser(t *testing.T) {
	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, models.AutoMigrate(db))

	store := repositories.NewStore(db)
	vault := password.NewVault(bcrypt.MinCost)
	ctx := context.Background()

	// Nothing configured, nothing seeded
	require.NoError(t, NewSeeder(store, vault, AdminSeed{}).Run(ctx))
	exists, err := store.Users().ExistsByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.False(t, exists)

	seed := AdminSeed{Email: "root@example.com", Password: "Adm1nPassword"}
	require.NoError(t, NewSeeder(store, vault, seed).Run(ctx))
	require.NoError(t, NewSeeder(store, vault, seed).Run(ctx), "seeding twice is a no-op")

	admin, err := store.Users().GetByEmail(ctx, "root@example.com")
	require.NoError(t, err)
	assert.Equal(t, string(domain.RoleAdmin), admin.Role)
	assert.True(t, vault.Verify("Adm1nPassword", admin.Password))

	_, err = store.Givers().GetByUserID(ctx, admin.ID)
	assert.NoError(t, err)
}
