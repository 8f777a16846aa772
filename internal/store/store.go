// Package store persists terminal registration/auth state and terminal
// parameter snapshots through GORM over a pure-Go SQLite driver, so a
// restarted server does not forget which phones are already registered.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Terminal is a registered terminal's durable identity: its phone number,
// the authentication code the platform issued it, and registration info.
type Terminal struct {
	Phone          string `gorm:"primarykey;size:12"`
	AuthCode       string `gorm:"size:64"`
	ProvinceID     uint16
	CityID         uint16
	ManufacturerID string `gorm:"size:5"`
	TerminalModel  string `gorm:"size:20"`
	TerminalID     string `gorm:"size:7"`
	PlateColor     uint8
	PlateOrVIN     string `gorm:"size:32"`
	RegisteredAt   time.Time
	UpdatedAt      time.Time
}

// TerminalParameter is a single (phone, parameter id) -> value row, the
// durable mirror of an in-memory jt808.ParameterMap.
type TerminalParameter struct {
	Phone string `gorm:"primarykey;size:12"`
	ID    uint32 `gorm:"primarykey;autoIncrement:false"`
	Value []byte
}

// Store wraps a GORM connection opened against a SQLite file.
type Store struct {
	db *gorm.DB
}

// Open creates (or reuses) the SQLite file at dsn and migrates its schema.
func Open(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = "jt808.sqlite"
	}
	if dir := filepath.Dir(dsn); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.AutoMigrate(&Terminal{}, &TerminalParameter{}); err != nil {
		return nil, fmt.Errorf("store: migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// UpsertTerminal inserts or updates a terminal's registration record.
func (s *Store) UpsertTerminal(t *Terminal) error {
	if t.RegisteredAt.IsZero() {
		t.RegisteredAt = time.Now()
	}
	t.UpdatedAt = time.Now()
	return s.db.Save(t).Error
}

// TerminalByPhone looks up a terminal's record, reporting whether it exists.
func (s *Store) TerminalByPhone(phone string) (*Terminal, bool, error) {
	var t Terminal
	err := s.db.First(&t, "phone = ?", phone).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return &t, true, nil
}

// SaveParameter upserts a single parameter value for phone.
func (s *Store) SaveParameter(phone string, id uint32, value []byte) error {
	row := TerminalParameter{Phone: phone, ID: id, Value: value}
	return s.db.Save(&row).Error
}

// ParametersByPhone returns every stored parameter row for phone.
func (s *Store) ParametersByPhone(phone string) ([]TerminalParameter, error) {
	var rows []TerminalParameter
	err := s.db.Where("phone = ?", phone).Find(&rows).Error
	return rows, err
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
