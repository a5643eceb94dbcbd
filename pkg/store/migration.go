package store

import (
	"github.com/pressly/goose/v3"
)

// Migrate applies the goose SQL migrations in dir to the open image.
func (d *DB) Migrate(dir string) error {
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	sqlDB, err := d.handle().DB()
	if err != nil {
		return err
	}
	return goose.Up(sqlDB, dir)
}
