// Package main is a diagnostic tool for testing database connectivity and
// inspecting live GatherHub data. It connects to the database, queries the
// users, organizations, and events tables, and prints a summary to stdout.
// The binary exits with a non-zero code on any failure so it can be embedded
// in health checks or CI/CD pipeline steps to gate deployments on a
// reachable, populated database.
package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
)

func main() {
	dbPassword := os.Getenv("DATABASE_PASSWORD")
	if dbPassword == "" {
		dbPassword = "gatherhub"
	}

	connStr := fmt.Sprintf("host=localhost port=5432 user=gatherhub password=%s dbname=gatherhub sslmode=disable", dbPassword)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer db.Close()

	fmt.Println("=== USERS ===")
	rows, err := db.Query("SELECT id, email, display_name, active FROM users")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, email, displayName string
		var active bool
		if err := rows.Scan(&id, &email, &displayName, &active); err != nil {
			log.Printf("Warning: failed to scan user row: %v", err)
			continue
		}
		fmt.Printf("User: %s <%s> (ID: %s, active: %v)\n", displayName, email, id, active)
	}

	fmt.Println("\n=== ORGANIZATIONS ===")
	rows2, err := db.Query("SELECT o.id, o.name, COUNT(m.user_id) FROM organizations o LEFT JOIN memberships m ON m.organization_id = o.id GROUP BY o.id, o.name")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows2.Close()

	for rows2.Next() {
		var id, name string
		var members int
		if err := rows2.Scan(&id, &name, &members); err != nil {
			log.Printf("Warning: failed to scan organization row: %v", err)
			continue
		}
		fmt.Printf("Organization: %s (ID: %s) - %d member(s)\n", name, id, members)
	}

	fmt.Println("\n=== EVENTS ===")
	rows3, err := db.Query("SELECT id, title, start_time, end_time, created_by FROM events ORDER BY start_time")
	if err != nil {
		log.Fatalf("Query failed: %v", err)
	}
	defer rows3.Close()

	count := 0
	for rows3.Next() {
		var id, title, createdBy string
		var startTime, endTime sql.NullTime
		if err := rows3.Scan(&id, &title, &startTime, &endTime, &createdBy); err != nil {
			log.Printf("Warning: failed to scan event row: %v", err)
			continue
		}
		fmt.Printf("Event: %s (ID: %s) [%s, %s) by %s\n", title, id,
			startTime.Time.Format("2006-01-02 15:04"), endTime.Time.Format("2006-01-02 15:04"), createdBy)
		count++
	}

	if count == 0 {
		fmt.Println("No events found!")
	}
}
