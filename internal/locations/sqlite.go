package locations

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

const edgesSchema = `
	CREATE TABLE IF NOT EXISTS edges (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		area1 TEXT NOT NULL,
		area2 TEXT NOT NULL,
		distance_km REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_edges_area1 ON edges(area1);
	CREATE INDEX IF NOT EXISTS idx_edges_area2 ON edges(area2);
`

// SaveEdges replaces the edges table of the SQLite file at path.
func SaveEdges(path string, edges []Edge) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(edgesSchema); err != nil {
		return fmt.Errorf("failed to create edges table: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM edges`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO edges (area1, area2, distance_km) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range edges {
		if _, err := stmt.Exec(e.A, e.B, e.DistanceKm); err != nil {
			return fmt.Errorf("failed to insert edge %s - %s: %w", e.A, e.B, err)
		}
	}
	return tx.Commit()
}

// LoadEdges reads every edge from the SQLite file at path.
func LoadEdges(path string) ([]Edge, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.Query(`SELECT area1, area2, distance_km FROM edges ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.A, &e.B, &e.DistanceKm); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// Load builds the graph for the server: the directory from csvPath and the
// edges from areasDB when given, computed from coordinates otherwise.
func Load(csvPath, areasDB string, radiusKm float64) (*Graph, error) {
	dir, err := LoadCSV(csvPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	if areasDB == "" {
		return NewGraph(dir, BuildEdges(dir, radiusKm)), nil
	}
	edges, err := LoadEdges(areasDB)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", areasDB, err)
	}
	return NewGraph(dir, edges), nil
}
