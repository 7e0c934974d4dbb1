package db

import (
	"fmt"

	"gorm.io/gorm"
)

// bindPartition points the session at the partition's schema. On postgres a
// transactional bind uses SET LOCAL so it ends with the transaction. MySQL
// partitions are databases. SQLite has a single schema.
func bindPartition(conn *gorm.DB, partition string, local bool) error {
	switch conn.Dialector.Name() {
	case "postgres":
		stmt := "SET search_path TO %s, public"
		if local {
			stmt = "SET LOCAL search_path TO %s, public"
		}
		return conn.Exec(fmt.Sprintf(stmt, partition)).Error
	case "mysql":
		return conn.Exec(fmt.Sprintf("USE `%s`", partition)).Error
	default:
		return nil
	}
}

func unbindPartition(conn *gorm.DB) {
	if conn.Dialector.Name() == "postgres" {
		conn.Exec("RESET search_path")
	}
}

// EnsurePartition creates the schema (postgres) or database (mysql) of
// partition when missing.
func EnsurePartition(conn *gorm.DB, partition string) error {
	if err := ValidatePartition(partition); err != nil {
		return err
	}
	switch conn.Dialector.Name() {
	case "postgres":
		return conn.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s", partition)).Error
	case "mysql":
		return conn.Exec(fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", partition)).Error
	default:
		return nil
	}
}
