// Command buildgraph precomputes the location proximity graph from the
// directory CSV and stores it in an SQLite areas database for the API server.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/chachabrian/uniride-backend/internal/locations"
	"github.com/spf13/cobra"
)

func main() {
	var (
		csvPath  string
		dbPath   string
		radiusKm float64
	)

	cmd := &cobra.Command{
		Use:   "buildgraph",
		Short: "Build areas.db from the locations CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if radiusKm <= 0 {
				return fmt.Errorf("--radius must be positive")
			}
			dir, err := locations.LoadCSV(csvPath)
			if err != nil {
				return err
			}
			edges := locations.BuildEdges(dir, radiusKm)
			if err := locations.SaveEdges(dbPath, edges); err != nil {
				return err
			}
			log.Printf("Wrote %d edges between %d locations to %s", len(edges), dir.Len(), dbPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&csvPath, "csv", "data/locations.csv", "locations CSV (name,lat,lon)")
	cmd.Flags().StringVar(&dbPath, "out", "data/areas.db", "SQLite file to write")
	cmd.Flags().Float64Var(&radiusKm, "radius", locations.DefaultRadiusKm, "neighbour radius in km")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
