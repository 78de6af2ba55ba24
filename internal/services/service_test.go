package services

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mterrades/go-refuge-sync/internal/domain"
	"github.com/mterrades/go-refuge-sync/internal/repo"
)

// newServiceDB opens a throwaway SQLite database with the full schema.
func newServiceDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("svc_test_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	err = db.AutoMigrate(
		&domain.Refuge{},
		&domain.Doubt{},
		&domain.Answer{},
		&domain.VisitRecord{},
		&domain.Renovation{},
		&domain.RenovationParticipant{},
	)
	if err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// seedRefuge inserts a refuge and returns it.
func seedRefuge(t *testing.T, db *gorm.DB, name, region, desc string) *domain.Refuge {
	t.Helper()
	r := &domain.Refuge{Name: name, Region: region, Description: desc}
	if err := repo.CreateRefuge(context.Background(), db, r); err != nil {
		t.Fatalf("seed refuge %q: %v", name, err)
	}
	return r
}
