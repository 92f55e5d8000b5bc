package users

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/sparkauth/testutils"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

func newTestUser(email string) *User {
	user := &User{Name: "Ada", Email: email, Photo: "p.png", Bio: "I am a new user."}
	user.SetPassword("secret1")
	return user
}

func gormStore(t *testing.T) Store {
	db := testutils.SetupTestDB(t, &User{})
	return NewGormStore(db, bcrypt.MinCost, nil)
}

func mongoStore(t *testing.T) Store {
	uri := os.Getenv("SPARKAUTH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("SPARKAUTH_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("sparkauth_test_" + time.Now().Format("150405.000000"))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})

	store := NewMongoStore(db, bcrypt.MinCost, nil)
	require.NoError(t, store.EnsureIndexes(ctx))
	return store
}

func TestStores(t *testing.T) {
	backends := map[string]func(t *testing.T) Store{
		"gorm":  gormStore,
		"mongo": mongoStore,
	}

	for name, factory := range backends {
		t.Run(name, func(t *testing.T) {
			runStoreSuite(t, factory)
		})
	}
}

func runStoreSuite(t *testing.T, factory func(t *testing.T) Store) {
	ctx := context.Background()

	t.Run("create hashes password and applies defaults", func(t *testing.T) {
		store := factory(t)
		user := newTestUser("  Ada@Example.COM ")

		require.NoError(t, store.Create(ctx, user))

		assert.NotEmpty(t, user.ID)
		assert.Equal(t, "ada@example.com", user.Email)
		assert.Equal(t, RoleUser, user.Role)
		assert.NotEqual(t, "secret1", user.Password)
		assert.False(t, user.HasPendingPassword())
		assert.True(t, user.CheckPassword("secret1"))
		assert.False(t, user.CheckPassword("wrong-one"))
		assert.False(t, user.IsVerified)
	})

	t.Run("create rejects duplicate email", func(t *testing.T) {
		store := factory(t)
		require.NoError(t, store.Create(ctx, newTestUser("dup@example.com")))

		err := store.Create(ctx, newTestUser("DUP@example.com"))

		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("create without password fails", func(t *testing.T) {
		store := factory(t)

		err := store.Create(ctx, &User{Name: "No Pass", Email: "nopass@example.com"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "password is required")
	})

	t.Run("find by id and email", func(t *testing.T) {
		store := factory(t)
		user := newTestUser("find@example.com")
		require.NoError(t, store.Create(ctx, user))

		byID, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "find@example.com", byID.Email)
		assert.True(t, byID.CheckPassword("secret1"))

		byEmail, err := store.FindByEmail(ctx, " FIND@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, byEmail.ID)

		_, err = store.FindByID(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = store.FindByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("save persists changes and rehashes staged password", func(t *testing.T) {
		store := factory(t)
		user := newTestUser("save@example.com")
		require.NoError(t, store.Create(ctx, user))
		oldHash := user.Password

		user.Name = "Grace"
		user.IsVerified = true
		user.SetPassword("new-secret")
		require.NoError(t, store.Save(ctx, user))

		reloaded, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "Grace", reloaded.Name)
		assert.True(t, reloaded.IsVerified)
		assert.NotEqual(t, oldHash, reloaded.Password)
		assert.True(t, reloaded.CheckPassword("new-secret"))
		assert.False(t, reloaded.CheckPassword("secret1"))
	})

	t.Run("save without staged password keeps hash", func(t *testing.T) {
		store := factory(t)
		user := newTestUser("keep@example.com")
		require.NoError(t, store.Create(ctx, user))

		user.Bio = "updated"
		require.NoError(t, store.Save(ctx, user))

		reloaded, err := store.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, "updated", reloaded.Bio)
		assert.True(t, reloaded.CheckPassword("secret1"))
	})

	t.Run("save unknown user", func(t *testing.T) {
		store := factory(t)
		ghost := newTestUser("ghost@example.com")
		ghost.ID = "does-not-exist"
		ghost.Role = RoleUser

		assert.ErrorIs(t, store.Save(ctx, ghost), ErrNotFound)
	})

	t.Run("save rejects unknown role", func(t *testing.T) {
		store := factory(t)
		user := newTestUser("role@example.com")
		require.NoError(t, store.Create(ctx, user))

		user.Role = "root"
		err := store.Save(ctx, user)

		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete and list", func(t *testing.T) {
		store := factory(t)
		first := newTestUser("one@example.com")
		second := newTestUser("two@example.com")
		require.NoError(t, store.Create(ctx, first))
		require.NoError(t, store.Create(ctx, second))

		all, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, store.Delete(ctx, first.ID))
		assert.ErrorIs(t, store.Delete(ctx, first.ID), ErrNotFound)

		all, err = store.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, second.ID, all[0].ID)
	})
}

func TestRoles(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	creator := &User{Role: RoleCreator}
	regular := &User{Role: RoleUser}

	assert.True(t, admin.IsAdmin())
	assert.True(t, admin.IsCreator())
	assert.False(t, creator.IsAdmin())
	assert.True(t, creator.IsCreator())
	assert.False(t, regular.IsCreator())
	assert.False(t, Role("root").Valid())
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.com\t"))
}
