// Command migrate applies, inspects and rolls back the gateway schema.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"boatlog/internal/config"
	"boatlog/internal/database"

	"gorm.io/gorm"
)

var errUsage = errors.New("usage: migrate <up|auto|status|constraints|reset|down <version>>")

type command func(ctx context.Context, db *gorm.DB, cfg *config.Config, args []string) error

var commands = map[string]command{
	"up":          up,
	"auto":        auto,
	"status":      status,
	"down":        down,
	"constraints": constraints,
	"reset":       reset,
}

func main() {
	flag.Parse()
	if err := run(flag.Args()); err != nil {
		log.Fatal(err)
	}
}

func run(args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	cmd, ok := commands[strings.ToLower(strings.TrimSpace(args[0]))]
	if !ok {
		return errUsage
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	return cmd(context.Background(), db, cfg, args[1:])
}

func up(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	n, err := database.NewMigrator(db).Up(ctx)
	if err != nil {
		return fmt.Errorf("sql migrations failed after %d applied: %w", n, err)
	}
	log.Printf("%d sql migrations applied", n)
	return nil
}

func auto(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	cfg.DBSchemaMode = database.SchemaModeAuto
	if err := database.ApplySchema(ctx, db, cfg); err != nil {
		return fmt.Errorf("auto schema apply failed: %w", err)
	}
	log.Println("automigrations applied")
	return nil
}

func status(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	plan, err := database.PlanSchema(cfg)
	if err != nil {
		return fmt.Errorf("schema plan: %w", err)
	}
	migrator := database.NewMigrator(db)
	applied, err := migrator.Applied(ctx)
	if err != nil {
		return err
	}
	pending, err := migrator.Pending(ctx)
	if err != nil {
		return err
	}

	log.Printf("mode=%s env=%s sql=%t auto=%t applied=%v", plan.Mode, plan.Env, plan.SQL, plan.AutoMigrate, applied)
	for _, m := range pending {
		log.Printf("pending: %s", m)
	}
	return nil
}

func down(ctx context.Context, db *gorm.DB, _ *config.Config, args []string) error {
	if len(args) < 1 {
		return errUsage
	}
	version, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}
	if err := database.NewMigrator(db).Down(ctx, version); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}
	log.Printf("rolled back migration %d", version)
	return nil
}

// constraints prints every constraint in the public schema. Postgres only.
func constraints(ctx context.Context, db *gorm.DB, _ *config.Config, _ []string) error {
	var rows []struct {
		Relname string `gorm:"column:relname"`
		Conname string `gorm:"column:conname"`
		Def     string `gorm:"column:def"`
	}
	err := db.WithContext(ctx).Raw(`SELECT r.relname, c.conname, pg_get_constraintdef(c.oid) AS def
		FROM pg_constraint c
		JOIN pg_class r ON c.conrelid = r.oid
		JOIN pg_namespace n ON n.oid = r.relnamespace
		WHERE n.nspname = 'public'
		ORDER BY r.relname, c.conname`).Scan(&rows).Error
	if err != nil {
		return fmt.Errorf("list constraints: %w", err)
	}
	for _, r := range rows {
		log.Printf("%s.%s: %s", r.Relname, r.Conname, r.Def)
	}
	return nil
}

// reset drops and recreates the public schema. Refused outside development and test.
func reset(ctx context.Context, db *gorm.DB, cfg *config.Config, _ []string) error {
	switch strings.ToLower(cfg.Env) {
	case "development", "test":
	default:
		return fmt.Errorf("refusing to reset schema in env %q", cfg.Env)
	}
	if err := db.WithContext(ctx).Exec("DROP SCHEMA public CASCADE; CREATE SCHEMA public; GRANT ALL ON SCHEMA public TO public;").Error; err != nil {
		return fmt.Errorf("reset schema: %w", err)
	}
	log.Println("schema reset")
	return nil
}
