package elevation

import (
	"context"
	"encoding/json"
	"log/slog"
	"os/exec"
	"time"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/metrics"
)

type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ScriptProvider implements ports.ElevationProvider by invoking an
// external python script that samples a GeoTIFF digital elevation model.
// The script receives a JSON array of [lon, lat] pairs and the DEM path
// as arguments and prints a JSON array of [lon, lat, elevation] triples.
type ScriptProvider struct {
	python  string
	script  string
	demPath string
	timeout time.Duration
	run     runner
}

// New creates a ScriptProvider.
func New(python, script, demPath string, timeout time.Duration) *ScriptProvider {
	return &ScriptProvider{
		python:  python,
		script:  script,
		demPath: demPath,
		timeout: timeout,
		run: func(ctx context.Context, name string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, name, args...).Output()
		},
	}
}

// AddElevation attaches an elevation to every coordinate. Enrichment is
// best-effort: any failure is logged and the input comes back with zero
// elevations, always one output point per input point.
func (p *ScriptProvider) AddElevation(ctx context.Context, coords []domain.Coordinate) []domain.Point3D {
	out := make([]domain.Point3D, len(coords))
	for i, c := range coords {
		out[i] = domain.Point3D{Lat: c.Lat, Lon: c.Lon}
	}
	if len(coords) == 0 {
		return out
	}

	pairs := make([][2]float64, len(coords))
	for i, c := range coords {
		// The sampling script expects (lon, lat).
		pairs[i] = [2]float64{c.Lon, c.Lat}
	}
	payload, err := json.Marshal(pairs)
	if err != nil {
		p.fail("marshal", err)
		return out
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	stdout, err := p.run(ctx, p.python, p.script, string(payload), p.demPath)
	if err != nil {
		p.fail("exec", err)
		return out
	}

	// Output keeps the script's (lon, lat) order; only the elevation
	// in the third slot is new information.
	var triples [][3]float64
	if err := json.Unmarshal(stdout, &triples); err != nil {
		p.fail("decode", err)
		return out
	}
	if len(triples) != len(coords) {
		slog.Warn("elevation script returned wrong point count",
			"got", len(triples), "want", len(coords))
		metrics.ElevationFailures.WithLabelValues("count_mismatch").Inc()
		return out
	}

	for i, t := range triples {
		out[i].Elevation = t[2]
	}
	return out
}

func (p *ScriptProvider) fail(reason string, err error) {
	slog.Warn("elevation enrichment failed, continuing without elevation",
		"reason", reason, "error", err)
	metrics.ElevationFailures.WithLabelValues(reason).Inc()
}
