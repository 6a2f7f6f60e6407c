package services

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"

	"fieldnav-backend/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNoDatabase - DB가 초기화되지 않음
var ErrNoDatabase = errors.New("database not initialized")

// DB 인스턴스
var db *gorm.DB

// InitDatabase - 환경 변수로 DB 연결
//
// DB_DRIVER가 mysql이면 MYSQL_* 변수를, 아니면 DB_PATH의 SQLite 파일을 사용한다.
func InitDatabase() error {
	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	switch driver {
	case "mysql":
		dsn, err := mysqlDSN()
		if err != nil {
			return err
		}
		return OpenDatabase(mysql.Open(dsn))
	case "sqlite":
		path := os.Getenv("DB_PATH")
		if path == "" {
			path = "fieldnav.db"
		}
		log.Printf("📂 SQLite 파일: %s", path)
		return OpenDatabase(sqlite.Open(path))
	default:
		return fmt.Errorf("지원하지 않는 DB_DRIVER: %q (mysql | sqlite)", driver)
	}
}

func mysqlDSN() (string, error) {
	host := os.Getenv("MYSQL_HOST")
	user := os.Getenv("MYSQL_USER")
	password := os.Getenv("MYSQL_PASSWORD")
	dbname := os.Getenv("MYSQL_DATABASE")

	if host == "" || user == "" || password == "" || dbname == "" {
		return "", fmt.Errorf("MySQL 환경 변수가 모두 설정되지 않았습니다: MYSQL_HOST, MYSQL_USER, MYSQL_PASSWORD, MYSQL_DATABASE")
	}

	port, err := strconv.Atoi(os.Getenv("MYSQL_PORT"))
	if err != nil || port == 0 {
		port = 3306 // 기본 포트
	}

	log.Printf("📡 연결 정보: %s@%s:%d/%s", user, host, port, dbname)
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname), nil
}

// OpenDatabase - 주어진 드라이버로 연결하고 마이그레이션
func OpenDatabase(dialector gorm.Dialector) error {
	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("DB 연결 실패: %w", err)
	}

	if err := conn.AutoMigrate(&models.FieldLog{}); err != nil {
		return fmt.Errorf("마이그레이션 실패: %w", err)
	}

	db = conn
	log.Printf("✅ DB 연결 및 마이그레이션 완료 (%s)", dialector.Name())
	return nil
}

// GetDB - GORM 인스턴스 반환
func GetDB() *gorm.DB {
	return db
}

// CloseDatabase - 연결 종료
func CloseDatabase() {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
	db = nil
}
