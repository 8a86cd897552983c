package db

import (
	"strings"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/mkrylov/tgrelay/internal/apikey"
	"github.com/mkrylov/tgrelay/internal/session"
)

// Open connects to the backing store. A DSN containing "@tcp(" is treated
// as MySQL; anything else (a file path, "file::memory:?...", "sqlite://...")
// opens sqlite, which is the default deployment.
func Open(dsn string) (*gorm.DB, error) {
	if strings.Contains(dsn, "@tcp(") {
		return gorm.Open(mysql.Open(dsn), &gorm.Config{})
	}
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	return gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
}

// Migrate applies the schema. AutoMigrate is idempotent, so repeated
// startups are safe; a failure here must abort startup before any
// request is served.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&session.UserRecord{}, &apikey.Key{})
}
