package db

import (
	"fmt"
	stdlog "log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/traitgame/similar-backend/internal/logger"
	"github.com/traitgame/similar-backend/internal/types"
	"github.com/traitgame/similar-backend/internal/utils"
)

type Service struct {
	db  *gorm.DB
	log *logger.Logger
}

// New opens the database selected by DB_DRIVER ("postgres" or "sqlite",
// default sqlite) and returns a service wrapping the gorm handle.
func New(logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "DBService")

	gormLog := gormLogger.New(
		stdlog.New(os.Stdout, "\r\n", stdlog.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             1 * time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	driver := utils.GetEnv("DB_DRIVER", "sqlite", logg)

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		host := utils.GetEnv("POSTGRES_HOST", "localhost", logg)
		port := utils.GetEnv("POSTGRES_PORT", "5432", logg)
		user := utils.GetEnv("POSTGRES_USER", "postgres", logg)
		password := utils.GetEnv("POSTGRES_PASSWORD", "", logg)
		name := utils.GetEnv("POSTGRES_NAME", "similar", logg)
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=disable",
			user, password, host, port, name,
		)
		dialector = postgres.Open(dsn)
	case "sqlite":
		path := utils.GetEnv("SQLITE_PATH", "similar.db", logg)
		dialector = sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormLog,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return &Service{db: gdb, log: serviceLog}, nil
}

func (s *Service) AutoMigrateAll() error {
	return s.db.AutoMigrate(
		&types.Text{},
		&types.Match{},
	)
}

func (s *Service) DB() *gorm.DB { return s.db }
