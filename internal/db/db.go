package db

import (
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"qbank/internal/models"
)

func Connect(dsn string) *gorm.DB {
	// TranslateError lets the store layer catch duplicate-key violations as
	// gorm.ErrDuplicatedKey (the pending-request uniqueness guard).
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}

	sqlDB, _ := gdb.DB()
	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Database ping failed: %v", err)
	}

	log.Println("✅ Database connected successfully")
	return gdb
}

func AutoMigrate(gdb *gorm.DB) {
	err := gdb.AutoMigrate(
		&models.OrgNode{},
		&models.User{},
		&models.Role{},
		&models.UserOrgBinding{},
		&models.Question{},
		&models.AclEntry{},
		&models.AuditLog{},
	)
	if err != nil {
		log.Fatalf("❌ AutoMigrate failed: %v", err)
	}
	log.Println("✅ Schema migrated")
}
