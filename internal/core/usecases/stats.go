package usecases

import (
	"math"

	"github.com/imartinde/senderos/internal/core/domain"
	"github.com/imartinde/senderos/internal/pkg/geospatial"
)

// computeStatistics derives distance, elevation gain/loss and extrema
// from an elevation-enriched polyline.
func computeStatistics(points []domain.Point3D) domain.RouteStats {
	var stats domain.RouteStats
	if len(points) == 0 {
		return stats
	}

	var distanceM, gain, loss float64
	maxEle, minEle := points[0].Elevation, points[0].Elevation

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]
		distanceM += geospatial.Haversine(prev.Lat, prev.Lon, cur.Lat, cur.Lon)

		delta := cur.Elevation - prev.Elevation
		if delta > 0 {
			gain += delta
		} else {
			loss -= delta
		}

		if cur.Elevation > maxEle {
			maxEle = cur.Elevation
		}
		if cur.Elevation < minEle {
			minEle = cur.Elevation
		}
	}

	stats.DistanceKm = math.Round(distanceM/1000*100) / 100
	stats.ElevationGainM = math.Round(gain)
	stats.ElevationLossM = math.Round(loss)
	stats.MaxElevationM = math.Round(maxEle)
	stats.MinElevationM = math.Round(minEle)
	stats.Difficulty = classifyDifficulty(stats.DistanceKm, stats.ElevationGainM)
	return stats
}

// classifyDifficulty applies fixed policy thresholds, hardest first.
func classifyDifficulty(distanceKm, gainM float64) domain.Difficulty {
	switch {
	case gainM >= 800 || distanceKm > 15:
		return domain.DifficultyHard
	case gainM > 400 || distanceKm > 8:
		return domain.DifficultyModerate
	default:
		return domain.DifficultyEasy
	}
}
