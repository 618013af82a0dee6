// Package store is the gorm repository behind every service.
package store

import (
	"context"
	"errors"
	"fmt"

	"goldpawn/lifecycle"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

type Config struct {
	User     string
	Password string
	Host     string
	Port     int
	Database string
	Schema   string
}

func (c Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable&search_path=%s", c.User, c.Password, c.Host, c.Port, c.Database, c.Schema)
}

// Open connects to Postgres. Tables live in the configured schema.
func Open(config Config) (*gorm.DB, error) {
	const op = "Open"

	db, err := gorm.Open(postgres.Open(config.DSN()), &gorm.Config{
		TranslateError: true,
		NamingStrategy: schema.NamingStrategy{
			TablePrefix: config.Schema + ".",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[%s] Fail to connect to database, err=%w", op, err)
	}
	return db, nil
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB {
	return s.db
}

// Transaction satisfies lifecycle.Store; the callback receives a store bound to the transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx lifecycle.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
