package storage

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	migrate "github.com/rubenv/sql-migrate"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// DB representa a conexão com o banco do journal de eventos.
type DB struct {
	*sqlx.DB
	log *zap.Logger
}

// NewDB conecta-se ao banco (driver "postgres" ou "sqlite3") e executa as migrações.
func NewDB(driver, dataSourceName string, log *zap.Logger) (*DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	dialect, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao banco de dados: %w", err)
	}
	if driver == "sqlite3" {
		// sqlite aceita um único escritor por vez.
		db.SetMaxOpenConns(1)
	}
	log.Info("conexão com o banco estabelecida", zap.String("driver", driver))

	if err := runMigrations(db.DB, dialect, log); err != nil {
		db.Close()
		return nil, fmt.Errorf("falha ao executar migrações: %w", err)
	}

	return &DB{DB: db, log: log}, nil
}

func dialectFor(driver string) (string, error) {
	switch driver {
	case "postgres":
		return "postgres", nil
	case "sqlite3":
		return "sqlite3", nil
	}
	return "", fmt.Errorf("driver de banco não suportado: %q", driver)
}

// runMigrations executa as migrações embutidas usando sql-migrate.
func runMigrations(db *sql.DB, dialect string, log *zap.Logger) error {
	migrations := &migrate.EmbedFileSystemMigrationSource{
		FileSystem: migrationFiles,
		Root:       "migrations",
	}

	n, err := migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return fmt.Errorf("erro ao aplicar migrações: %w", err)
	}
	if n > 0 {
		log.Info("migrações aplicadas", zap.Int("count", n))
	} else {
		log.Debug("nenhuma migração nova para aplicar")
	}
	return nil
}
