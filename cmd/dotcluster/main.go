// Command dotcluster reads dots from CSV, builds the cluster levels over
// them and prints the markers a map would show as a GeoJSON
// FeatureCollection.
//
// Input rows are x,y or x,y,payload; lines starting with # are ignored.
// Settings come from flags, falling back to DOTCLUSTER_RADII,
// DOTCLUSTER_FUDGE and DOTCLUSTER_FUDGE_ENABLED, which may also be set in
// a .env file in the working directory.
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	geojson "github.com/paulmach/go.geojson"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/TrevorS/dotcluster"
)

func main() {
	// LOG_* may come from .env, so load it before the logger exists and
	// report a failure afterwards.
	envErr := godotenv.Load(".env")
	logger := newLogger(os.Stderr, os.Getenv)
	reportDotenv(logger, ".env", envErr)
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Getenv, logger); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger.Error("dotcluster failed", "err", err)
		os.Exit(1)
	}
}

// reportDotenv warns about a .env file that exists but could not be loaded.
func reportDotenv(logger *slog.Logger, path string, err error) {
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return
	}
	logger.Warn("ignoring env file", "path", path, "err", err)
}

func run(args []string, stdin io.Reader, stdout io.Writer, getenv func(string) string, logger *slog.Logger) error {
	cfg, err := configFromEnv(getenv)
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("dotcluster", flag.ContinueOnError)
	in := fs.String("in", "", "CSV file of x,y[,payload] rows (default stdin)")
	top := fs.Int("level", int(dotcluster.Level4), "highest cluster level to build (1-4)")
	promote := fs.Bool("promote", false, "wrap elements left over at the highest level into their own clusters")
	radii := fs.String("radii", "", "five comma-separated radii, dot first (overrides "+envRadii+")")
	fudge := fs.Float64("fudge", cfg.Fudge, "containment tolerance added to every radius")
	noFudge := fs.Bool("no-fudge", !cfg.FudgeEnabled, "disable the containment tolerance")
	metricsFile := fs.String("metrics-file", "", "write build metrics in Prometheus text format to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *radii != "" {
		if err := applyRadii(&cfg, *radii); err != nil {
			return fmt.Errorf("-radii: %w", err)
		}
	}
	if err := cfg.SetFudge(*fudge, !*noFudge); err != nil {
		return err
	}
	level := dotcluster.Level(*top)
	if !level.IsCluster() {
		return fmt.Errorf("%w: -level %d", dotcluster.ErrInvalidLevel, *top)
	}

	src := stdin
	if *in != "" {
		f, err := os.Open(*in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}
	points, err := readPoints(src)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := dotcluster.NewMetrics()
	if err := metrics.Register(reg); err != nil {
		return err
	}
	cz, err := dotcluster.New(cfg, dotcluster.WithLogger(logger), dotcluster.WithMetrics(metrics))
	if err != nil {
		return err
	}
	cz.LoadDots(points)
	logger.Info("dots loaded", "rows", len(points), "dots", cz.Len(dotcluster.LevelDot))

	for l := dotcluster.Level1; l <= level; l++ {
		if _, err := cz.BuildLevel(l, *promote && l == level); err != nil {
			return err
		}
	}

	if *metricsFile != "" {
		if err := prometheus.WriteToTextfile(*metricsFile, reg); err != nil {
			return err
		}
	}

	raw, err := markers(cz, level).MarshalJSON()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(raw))
	return err
}

// markers collects what a map shows once levels up to top are built: every
// top-level cluster plus whatever below it stayed unclaimed.
func markers(cz *dotcluster.Clusterizator, top dotcluster.Level) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for l := top; ; l-- {
		for _, e := range cz.Visible(l) {
			f := geojson.NewPointFeature([]float64{e.X, e.Y})
			f.SetProperty("level", e.Level.String())
			f.SetProperty("count", e.Count)
			f.SetProperty("radius", e.Radius)
			if e.Tag != dotcluster.TagUnset {
				f.SetProperty("tag", e.Tag)
			}
			fc.AddFeature(f)
		}
		if l == dotcluster.LevelDot {
			break
		}
	}
	return fc
}

// readPoints parses x,y[,payload] rows.
func readPoints(r io.Reader) ([]dotcluster.Point, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var points []dotcluster.Point
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(rec) < 2 || len(rec) > 3 {
			return nil, fmt.Errorf("line %d: want x,y[,payload], got %d fields", line, len(rec))
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: x: %w", line, err)
		}
		y, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", line, err)
		}
		p := dotcluster.Point{X: x, Y: y}
		if len(rec) == 3 && strings.TrimSpace(rec[2]) != "" {
			id, err := strconv.ParseUint(strings.TrimSpace(rec[2]), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: payload: %w", line, err)
			}
			p.Payloads = []uint64{id}
		}
		points = append(points, p)
	}
}
