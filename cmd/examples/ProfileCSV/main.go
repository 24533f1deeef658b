package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"go.uber.org/zap"

	"datakit/pkg/config"
	"datakit/pkg/data"
	"datakit/pkg/dataprep"
	"datakit/pkg/dataset"
	"datakit/pkg/store"
)

//
// ---------------------- CLI FLAGS DOCUMENTATION ----------------------
//
// --input    : Path to input CSV file. Default = Employee.csv
// --metadata : Comma-separated metadata (non-feature) column names
// --settings : Optional TOML settings file (categorical thresholds)
// --encode   : If true, label-encode every categorical column needing it
// --save     : Optional path to save the dataset container (SQLite)
// --force    : Overwrite the container file if it already exists
//
// Example:
//   go run main.go --input Employee.csv --metadata id,name --encode --save employee.dataset
//
// ---------------------------------------------------------------------
//

func main() {
	inputPath := flag.String("input", "Employee.csv", "Path to input CSV file")
	metadata := flag.String("metadata", "", "Comma-separated metadata column names")
	settingsPath := flag.String("settings", "", "Optional TOML settings file")
	encode := flag.Bool("encode", false, "Label-encode categorical columns needing it")
	savePath := flag.String("save", "", "Optional path to save the dataset container")
	force := flag.Bool("force", false, "Overwrite the container file if it exists")
	flag.Parse()

	zl, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Error building logger: %v", err)
	}
	defer zl.Sync()
	logger := zl.Sugar()

	settings := config.Default()
	if *settingsPath != "" {
		settings, err = config.LoadFile(*settingsPath)
		if err != nil {
			log.Fatalf("Error loading settings: %v", err)
		}
	}

	// ---- Load raw CSV ----
	fr := data.LoadCSV(*inputPath, logger)
	if fr == nil {
		log.Fatalf("Could not load %s", *inputPath)
	}

	var opts []dataset.Option
	opts = append(opts, dataset.WithSettings(settings), dataset.WithLogger(logger))
	if *metadata != "" {
		opts = append(opts, dataset.WithMetadataColumns(strings.Split(*metadata, ",")...))
	}
	ds := dataset.New(fr, opts...)

	// ---- Classify ----
	summary, err := ds.Describe()
	if err != nil {
		log.Fatalf("Error classifying columns: %v", err)
	}
	fmt.Println(summary)

	types, err := ds.ColumnTypes()
	if err != nil {
		log.Fatalf("Error typing columns: %v", err)
	}
	fmt.Println("\nElementary types:")
	for i, ct := range types {
		fmt.Printf("%d: %s -> %s\n", i, ct.Column, ct.Type)
	}

	trivial := ds.TrivialColumns()
	if len(trivial) > 0 {
		fmt.Printf("\nTrivial columns (mostly missing or constant): %v\n", trivial.Sorted())
	}

	// ---- Encode ----
	if *encode {
		needing, err := ds.ColumnsNeedingEncoding()
		if err != nil {
			log.Fatalf("Error finding columns needing encoding: %v", err)
		}
		for _, name := range needing.Sorted() {
			enc, err := dataprep.LabelEncode(ds, name, "")
			if err != nil {
				log.Fatalf("Error encoding %s: %v", name, err)
			}
			fmt.Printf("Encoded %s (%d categories, encoder %s)\n", name, len(enc.Mapping), enc.ID)
		}
	}

	// ---- Save ----
	if *savePath != "" {
		if err := store.Save(ds, *savePath, *force, logger); err != nil {
			log.Fatalf("Error saving dataset: %v", err)
		}
		fmt.Println("Dataset saved to:", *savePath)
	}
}
