// Package testutil 提供基于 SQLite 内存库的测试数据库与基础数据
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/lindokuhlezulu42/E-LibraryLog/internal/model"
	"github.com/lindokuhlezulu42/E-LibraryLog/pkg/database"
)

var dbSeq atomic.Int64

// NewDB 创建独立的内存数据库并完成表结构迁移，测试结束时自动关闭
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, dbSeq.Add(1))

	cfg := database.GormConfig(gormlogger.Default.LogMode(gormlogger.Silent))
	cfg.DisableForeignKeyConstraintWhenMigrating = true

	db, err := gorm.Open(sqlite.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("打开测试数据库失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取连接池失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.Admin{},
		&model.Student{},
		&model.LeaveRequest{},
		&model.Schedule{},
		&model.ShiftExchange{},
		&model.Disruption{},
		&model.Report{},
	); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}

	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedAdmin 插入一名管理员
func SeedAdmin(t testing.TB, db *gorm.DB, first, last string) *model.Admin {
	t.Helper()
	admin := &model.Admin{UserID: dbSeq.Add(1), FirstName: first, LastName: last}
	if err := db.Create(admin).Error; err != nil {
		t.Fatalf("创建管理员失败: %v", err)
	}
	return admin
}

// SeedStudent 插入一名学生
func SeedStudent(t testing.TB, db *gorm.DB, number, first, last string) *model.Student {
	t.Helper()
	student := &model.Student{UserID: dbSeq.Add(1), StudentNumber: number, FirstName: first, LastName: last}
	if err := db.Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}
	return student
}
