package models

import (
	"fmt"
	"log"
	"os"
	"sort"

	zlog "github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

/*
Column Mismatch Report Usage:

Compares the columns present in the database with the columns the Go models
map to, in both directions.

1. Set the environment variable: GENERATE_COLUMN_REPORT=true
2. Run the server binary

Example output:
=== COLUMN MISMATCH REPORT ===
--- Table: projects ---
Columns in database but not in model: legacy_universe
Columns in model but not in database: (none)
=== SUMMARY ===
Total mismatched columns across all tables: 1
*/

// All lists every persisted model, in migration order.
func All() []any {
	return []any{&Project{}}
}

// Migrate creates or alters the tables for every model.
func Migrate(db *gorm.DB) error {
	migrateDB := db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})
	if err := migrateDB.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("error during models migration: %w", err)
	}
	return nil
}

// GenerateModels migrates the schema and writes typed query helpers to
// ./generated.
func GenerateModels(db *gorm.DB) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("error connecting to database: %w", err)
	}

	verbose := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             0,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: false,
			Colorful:                  true,
		},
	)
	db = db.Session(&gorm.Session{Logger: verbose})

	g := gen.NewGenerator(gen.Config{
		OutPath:           "./generated",
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(Project{})

	zlog.Info().Msg("Migrating models...")
	if err := Migrate(db); err != nil {
		return err
	}

	report, err := BuildColumnReport(db)
	if err != nil {
		return err
	}
	report.Print()

	g.Execute()
	zlog.Info().Msg("Model generation complete")
	return nil
}

// TableReport lists the mismatched columns of one table.
type TableReport struct {
	Table        string
	OnlyInDB     []string
	OnlyInModel  []string
	TableMissing bool
}

// ColumnReport is the outcome of comparing every model with its table.
type ColumnReport struct {
	Tables []TableReport
}

// Total counts mismatched columns across all tables.
func (r ColumnReport) Total() int {
	total := 0
	for _, table := range r.Tables {
		total += len(table.OnlyInDB) + len(table.OnlyInModel)
	}
	return total
}

// BuildColumnReport compares database columns with model columns without
// changing the schema.
func BuildColumnReport(db *gorm.DB) (ColumnReport, error) {
	var report ColumnReport

	for _, model := range All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return report, fmt.Errorf("error parsing model %T: %w", model, err)
		}

		table := TableReport{Table: stmt.Schema.Table}
		if !db.Migrator().HasTable(model) {
			table.TableMissing = true
			table.OnlyInModel = append(table.OnlyInModel, stmt.Schema.DBNames...)
			report.Tables = append(report.Tables, table)
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return report, fmt.Errorf("error querying columns for table %s: %w", table.Table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, columnType := range columnTypes {
			dbColumns = append(dbColumns, columnType.Name())
		}

		table.OnlyInDB = difference(dbColumns, stmt.Schema.DBNames)
		table.OnlyInModel = difference(stmt.Schema.DBNames, dbColumns)
		report.Tables = append(report.Tables, table)
	}

	return report, nil
}

// Print writes the report to stdout.
func (r ColumnReport) Print() {
	fmt.Println("=== COLUMN MISMATCH REPORT ===")
	for _, table := range r.Tables {
		fmt.Printf("\n--- Table: %s ---\n", table.Table)
		if table.TableMissing {
			fmt.Println("Table does not exist yet.")
			continue
		}
		fmt.Printf("Columns in database but not in model: %s\n", listOrNone(table.OnlyInDB))
		fmt.Printf("Columns in model but not in database: %s\n", listOrNone(table.OnlyInModel))
	}
	fmt.Printf("\n=== SUMMARY ===\n")
	fmt.Printf("Total mismatched columns across all tables: %d\n", r.Total())
}

// difference returns the entries of a missing from b, sorted.
func difference(a, b []string) []string {
	seen := make(map[string]bool, len(b))
	for _, item := range b {
		seen[item] = true
	}

	var missing []string
	for _, item := range a {
		if !seen[item] {
			missing = append(missing, item)
		}
	}
	sort.Strings(missing)
	return missing
}

func listOrNone(columns []string) string {
	if len(columns) == 0 {
		return "(none)"
	}
	return fmt.Sprint(columns)
}
