// Command migrate manages the letter service schema.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/commhub/backend/internal/infrastructure/config"
	"github.com/commhub/backend/internal/infrastructure/logger"
	"github.com/commhub/backend/internal/infrastructure/migration"
	"github.com/commhub/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type schemaCommand struct {
	usage string
	help  string
	args  int
	run   func(m *migration.Migrator, args []string) (migration.State, error)
}

var schemaCommands = map[string]schemaCommand{
	"up": {
		usage: "up", help: "Apply all pending migrations",
		run: func(m *migration.Migrator, _ []string) (migration.State, error) { return m.Up() },
	},
	"down": {
		usage: "down", help: "Roll back all migrations",
		run: func(m *migration.Migrator, _ []string) (migration.State, error) { return m.Down() },
	},
	"step": {
		usage: "step <n>", help: "Apply n migrations, negative n rolls back", args: 1,
		run: func(m *migration.Migrator, args []string) (migration.State, error) {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return migration.State{}, fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		},
	},
	"force": {
		usage: "force <version>", help: "Mark version as applied and clean", args: 1,
		run: func(m *migration.Migrator, args []string) (migration.State, error) {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return migration.State{}, fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		},
	},
	"version": {
		usage: "version", help: "Show the applied schema version",
		run: func(m *migration.Migrator, _ []string) (migration.State, error) { return m.State() },
	},
}

func main() {
	dir := flag.String("dir", "migrations", "directory create writes new migration files to")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	log := logger.New(logger.Config{Level: *logLevel, Format: "console", Output: "stdout"}, "")
	defer func() {
		_ = log.Sync()
	}()

	switch name, rest := args[0], args[1:]; name {
	case "create":
		if len(rest) == 0 {
			log.Fatal("create needs a migration name")
		}
		description := ""
		if len(rest) > 1 {
			description = rest[1]
		}
		mf, err := migration.CreateMigration(*dir, rest[0], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created", zap.String("up", mf.UpPath), zap.String("down", mf.DownPath))

	case "list":
		names, err := migration.ListMigrations(migrations.FS)
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		for _, n := range names {
			fmt.Println(n)
		}

	default:
		cmd, ok := schemaCommands[name]
		if !ok {
			log.Error("Unknown command", zap.String("command", name))
			usage()
			os.Exit(2)
		}
		if len(rest) < cmd.args {
			log.Fatal("Missing argument", zap.String("usage", cmd.usage))
		}
		if !runSchemaCommand(log, cmd, rest) {
			_ = log.Sync()
			os.Exit(1)
		}
	}
}

func runSchemaCommand(log *zap.Logger, cmd schemaCommand, args []string) bool {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	if err := db.Ping(); err != nil {
		log.Fatal("Database unreachable", zap.String("host", cfg.Database.Host), zap.Error(err))
	}

	m, err := migration.New(db, migrations.FS, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Closing migrator", zap.Error(err))
		}
	}()

	state, err := cmd.run(m, args)
	if err != nil {
		log.Error("Migration failed", zap.String("command", cmd.usage), zap.Error(err))
		return false
	}
	log.Info("Schema version", zap.Stringer("version", state))
	return true
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate [flags] <command> [args]\n\nCommands:")
	fmt.Fprintf(os.Stderr, "  %-18s %s\n", "create <name> [desc]", "Write an empty migration pair under -dir")
	fmt.Fprintf(os.Stderr, "  %-18s %s\n", "list", "List migrations embedded in this binary")
	for _, name := range []string{"up", "down", "step", "force", "version"} {
		c := schemaCommands[name]
		fmt.Fprintf(os.Stderr, "  %-18s %s\n", c.usage, c.help)
	}
	fmt.Fprintln(os.Stderr, "\nFlags:")
	flag.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\nDatabase settings come from config.toml or COMMHUB_DATABASE_* variables.")
}
