package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sparkauth/services/logging"
	"github.com/tech-arch1tect/sparkauth/services/tokens"
	"github.com/tech-arch1tect/sparkauth/services/users"
	"github.com/tech-arch1tect/sparkauth/testutils"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

func TestProvideDatabase(t *testing.T) {
	t.Run("unsupported driver", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Database.Driver = "oracle"

		_, err := ProvideDatabase(*cfg)
		assert.ErrorContains(t, err, "unsupported database driver")
	})

	t.Run("sqlite in memory migrates models", func(t *testing.T) {
		cfg := testutils.GetTestConfig()

		db, err := ProvideDatabase(*cfg)
		require.NoError(t, err)

		assert.True(t, db.Migrator().HasTable(&users.User{}))
		assert.True(t, db.Migrator().HasTable(&tokens.Token{}))

		sqlDB, err := db.DB()
		require.NoError(t, err)
		assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
		require.NoError(t, sqlDB.Close())
	})

	t.Run("auto-migrate disabled", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Database.AutoMigrate = false

		db, err := ProvideDatabase(*cfg)
		require.NoError(t, err)
		assert.False(t, db.Migrator().HasTable(&users.User{}))
	})
}

func TestIsMongo(t *testing.T) {
	assert.True(t, IsMongo("mongo"))
	assert.True(t, IsMongo("mongodb"))
	assert.False(t, IsMongo("sqlite"))
}

func TestOpenStores_Gorm(t *testing.T) {
	ctx := context.Background()
	stores, err := OpenStores(ctx, testutils.GetTestConfig(), nil)
	require.NoError(t, err)
	defer stores.Close(ctx)

	assert.IsType(t, &users.GormStore{}, stores.Users)
	assert.IsType(t, &tokens.GormStore{}, stores.Tokens)

	user := &users.User{Name: "Ada", Email: "ada@example.com"}
	user.SetPassword("secret1")
	require.NoError(t, stores.Users.Create(ctx, user))

	found, err := stores.Users.FindByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
}

func TestModule(t *testing.T) {
	var (
		userStore  users.Store
		tokenStore tokens.Store
	)

	app := fxtest.New(t,
		fx.Supply(testutils.GetTestConfig()),
		fx.Provide(func() *logging.Service { return nil }),
		Module,
		fx.Populate(&userStore, &tokenStore),
	)
	app.RequireStart()
	defer app.RequireStop()

	assert.NotNil(t, userStore)
	assert.NotNil(t, tokenStore)
}
