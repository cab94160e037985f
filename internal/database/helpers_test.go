package database

import (
	"testing"

	"github.com/spf13/viper"
)

func setPostgresConfig(t *testing.T, host, port string) {
	t.Helper()
	viper.Reset()
	viper.Set("db.host", host)
	viper.Set("db.port", port)
	viper.Set("db.username", "editor")
	viper.Set("db.password", "secret")
	viper.Set("db.database", "fingerprints")
	t.Cleanup(viper.Reset)
}
