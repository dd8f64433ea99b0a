package main

import (
	"github.com/sirupsen/logrus"

	"shellnote/internal/config"
	"shellnote/internal/db"
)

// Applies the full schema including the optional categories migration. The
// server refuses category operations until this has run against its database.
func main() {
	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		logrus.WithError(err).Fatal("database init")
	}

	if err := db.MigrateBase(gormDB); err != nil {
		logrus.WithError(err).Fatal("base migration")
	}
	if err := db.MigrateCategories(gormDB); err != nil {
		logrus.WithError(err).Fatal("categories migration")
	}

	caps := db.Probe(gormDB)
	logrus.WithField("categories", caps.Categories).Info("migrations applied")
}
