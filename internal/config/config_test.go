package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 10*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, "liftlog:revalidate", cfg.Redis.Channel)
	assert.Equal(t, 15*time.Minute, cfg.S3.URLExpiry)
	assert.Equal(t, "s3cret", cfg.JWT.Secret)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: ":9090"
database:
  driver: mongo
  uri: mongodb://db:27017/?replicaSet=rs0
  name: lifts
jwt:
  secret: from-file
s3:
  bucket_name: exports
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600))
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "lifts", cfg.Database.Name)
	assert.Equal(t, "exports", cfg.S3.BucketName)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestValidate(t *testing.T) {
	valid := Config{
		Database: DatabaseConfig{Driver: DriverMemory},
		JWT:      JWTConfig{Secret: "x"},
	}
	assert.NoError(t, valid.Validate())

	noSecret := valid
	noSecret.JWT.Secret = ""
	assert.ErrorContains(t, noSecret.Validate(), "jwt.secret")

	badDriver := valid
	badDriver.Database.Driver = "sqlite"
	assert.ErrorContains(t, badDriver.Validate(), "unknown database.driver")

	pg := valid
	pg.Database = DatabaseConfig{Driver: DriverPostgres}
	assert.Error(t, pg.Validate())

	mg := valid
	mg.Database = DatabaseConfig{Driver: DriverMongo, URI: "mongodb://x"}
	assert.Error(t, mg.Validate())
}
