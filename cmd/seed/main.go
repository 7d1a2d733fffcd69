package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"horizonx-machine/internal/domain"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	op := flag.String("op", "admin", "operation: admin, usage")
	dsn := flag.String("dsn", os.Getenv("DATABASE_URL"), "database url (usage only)")
	rows := flag.Int("rows", 720, "number of usage rows to backfill")
	interval := flag.Duration("interval", 5*time.Second, "spacing between backfilled rows")
	flag.Parse()

	switch *op {
	case "admin":
		seedAdmin()
	case "usage":
		seedUsage(*dsn, *rows, *interval)
	default:
		log.Fatal("unknown operation")
	}
}

// seedAdmin prints the hash to put in ADMIN_PASSWORD_HASH.
func seedAdmin() {
	password := "password"
	if envPass := os.Getenv("DB_ADMIN_PASSWORD"); envPass != "" {
		password = envPass
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("ADMIN_PASSWORD_HASH='%s'\n", hashed)
}

func seedUsage(dsn string, rows int, interval time.Duration) {
	if dsn == "" {
		log.Fatal("DSN required via flag -dsn or DATABASE_URL env")
	}

	machineID, err := uuid.Parse(os.Getenv("MACHINE_ID"))
	if err != nil {
		log.Fatal("MACHINE_ID must be set to a valid uuid")
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatal("Cannot ping DB:", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO machine_usage (machine_id, cpu_usage_percent, memory_used_bytes, tracked_processes, data, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	start := time.Now().UTC().Add(-time.Duration(rows) * interval)
	for i := range rows {
		report := domain.UsageReport{
			MachineID: machineID,
			System: &domain.SystemStatus{
				CPU:    rand.Float64() * 400,
				Memory: uint64(2<<30 + rand.IntN(2<<30)),
			},
			Processes:  []domain.ProcessUsage{{PID: 1, CPU: rand.Float64() * 5}},
			RecordedAt: start.Add(time.Duration(i) * interval),
		}

		data, err := json.Marshal(report)
		if err != nil {
			log.Fatal(err)
		}

		_, err = tx.ExecContext(ctx, query,
			machineID,
			report.System.CPU,
			int64(report.System.Memory),
			len(report.Processes),
			data,
			report.RecordedAt,
		)
		if err != nil {
			log.Fatalf("failed to insert usage row: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Seeded %d usage rows for machine %s\n", rows, machineID)
}
