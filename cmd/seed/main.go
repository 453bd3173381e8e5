package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ruthwik162/OTSchedular-Backend/internal/db"
	"github.com/ruthwik162/OTSchedular-Backend/internal/staff"
)

var departments = []string{
	"cardiology",
	"neurology",
	"orthopedics",
	"oncology",
	"gastroenterology",
	"urology",
	"general surgery",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	seedCtx := context.Background()
	if err := seedStaff(seedCtx, pool, staff.RoleDoctor, 2); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}
	if err := seedStaff(seedCtx, pool, staff.RoleAssistantDoctor, 2); err != nil {
		log.Fatalf("seed assistant doctors: %v", err)
	}
	if err := seedNurses(seedCtx, pool, 40); err != nil {
		log.Fatalf("seed nurses: %v", err)
	}
	if err := seedPatients(seedCtx, pool, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedStaff inserts perDepartment members of the role into every department.
func seedStaff(ctx context.Context, pool *pgxpool.Pool, role staff.Role, perDepartment int) error {
	log.Printf("seeding %d %s per department", perDepartment, role)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, dept := range departments {
		for i := 0; i < perDepartment; i++ {
			name := gofakeit.Name()
			email := fakeEmail(name)

			_, err := tx.Exec(ctx, `
				INSERT INTO staff (id, role, department, email, display_name, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
			`, uuid.New(), role, dept, email, name)
			if err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func seedNurses(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d nurses", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		email := fakeEmail(name)

		_, err := tx.Exec(ctx, `
			INSERT INTO staff (id, role, email, display_name, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
		`, uuid.New(), staff.RoleNurse, email, name)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i := 0; i < count; i++ {
		name := gofakeit.Name()
		email := fakeEmail(name)
		caseType := departments[gofakeit.Number(0, len(departments)-1)]

		_, err := tx.Exec(ctx, `
			INSERT INTO staff (id, role, email, display_name, case_type, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
		`, uuid.New(), staff.RolePatient, email, name, caseType)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// fakeEmail derives a unique address from the name so reruns do not
// collide on the email unique constraint.
func fakeEmail(name string) string {
	local := strings.ToLower(strings.ReplaceAll(name, " ", "."))
	return fmt.Sprintf("%s.%s@%s", local, uuid.NewString()[:8], gofakeit.DomainName())
}
