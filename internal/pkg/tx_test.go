package pkg

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type txRecord struct {
	ID   uint
	Name string
}

func newTxTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := db.AutoMigrate(&txRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func countRecords(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&txRecord{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestWithTx_Commit(t *testing.T) {
	db := newTxTestDB(t)

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&txRecord{Name: "a"}).Error; err != nil {
			return err
		}
		return tx.Create(&txRecord{Name: "b"}).Error
	})
	if err != nil {
		t.Fatalf("WithTx: %v", err)
	}
	if n := countRecords(t, db); n != 2 {
		t.Errorf("count = %d; want 2", n)
	}
}

func TestWithTx_RollbackOnError(t *testing.T) {
	db := newTxTestDB(t)
	sentinel := errors.New("stop")

	err := WithTx(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&txRecord{Name: "a"}).Error; err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v; want sentinel", err)
	}
	if n := countRecords(t, db); n != 0 {
		t.Errorf("count = %d; want 0 after rollback", n)
	}
}

func TestWithTx_RollbackOnPanic(t *testing.T) {
	db := newTxTestDB(t)

	func() {
		defer func() {
			if r := recover(); r != "boom" {
				t.Errorf("recovered %v; want boom", r)
			}
		}()
		_ = WithTx(context.Background(), db, func(tx *gorm.DB) error {
			tx.Create(&txRecord{Name: "a"})
			panic("boom")
		})
	}()

	if n := countRecords(t, db); n != 0 {
		t.Errorf("count = %d; want 0 after panic", n)
	}
}

func TestWithTx_CanceledContext(t *testing.T) {
	db := newTxTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := WithTx(ctx, db, func(tx *gorm.DB) error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
	if called {
		t.Error("fn should not run when the transaction cannot begin")
	}
}
