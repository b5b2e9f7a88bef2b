// Command pairwise computes a distance or kernel matrix between CSV files.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/marcelobeckmann/pairwise"
)

func main() {
	xFile := flag.String("x", "", "Input CSV file (required)")
	yFile := flag.String("y", "", "Second input CSV file (optional, defaults to -x)")
	metricName := flag.String("metric", "euclidean", "Distance metric or kernel name")
	kernel := flag.Bool("kernel", false, "Treat -metric as a kernel name")
	outputFile := flag.String("output", "distances.csv", "Output CSV file")
	workers := flag.Int("workers", 1, "Number of parallel workers (-1 = all CPUs)")
	workingMemory := flag.Float64("working-memory", 0, "Working memory budget in MiB (0 = default)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *xFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -x flag is required")
		flag.Usage()
		os.Exit(1)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	X, err := loadCSV(*xFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *xFile, err)
		os.Exit(1)
	}
	var Y *mat.Dense
	if *yFile != "" {
		Y, err = loadCSV(*yFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading %s: %v\n", *yFile, err)
			os.Exit(1)
		}
	}

	opts := pairwise.Options{
		NumWorkers:       *workers,
		WorkingMemoryMiB: *workingMemory,
		Logger:           logger,
	}

	var ym mat.Matrix
	if Y != nil {
		ym = Y
	}
	var D *mat.Dense
	if *kernel {
		D, err = pairwise.Kernels(X, ym, *metricName, opts)
	} else {
		D, err = pairwise.Distances(X, ym, *metricName, opts)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := saveCSV(*outputFile, D); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving output: %v\n", err)
		os.Exit(1)
	}

	if *verbose {
		r, c := D.Dims()
		logger.Info("wrote matrix", zap.String("file", *outputFile), zap.Int("rows", r), zap.Int("cols", c))
	}
}

// loadCSV loads a dense matrix from a CSV file (no header, numeric values).
func loadCSV(filename string) (*mat.Dense, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	rows := make([][]float64, len(records))
	for i, record := range records {
		rows[i] = make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d, column %d: %w", i, j, err)
			}
			rows[i][j] = v
		}
	}
	return pairwise.DenseFromRows(rows)
}

// saveCSV writes a matrix to a CSV file.
func saveCSV(filename string, m *mat.Dense) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	r, c := m.Dims()
	record := make([]string, c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			record[j] = strconv.FormatFloat(m.At(i, j), 'g', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}
