package hotspots

import (
	"time"
)

// Snapshot is one file's scores as recorded by a stored run
type Snapshot struct {
	RunID        string    `json:"runId"`
	Path         string    `json:"path"`
	Date         time.Time `json:"date"`
	Changes      int       `json:"changes"`
	MaxCognitive int       `json:"maxCognitive"`
	Hotness      int       `json:"hotness"` // changes × max cognitive
	Score        float64   `json:"score"`   // normalized 0-1 composite
}

// Trend represents the trend analysis for a file across runs
type Trend struct {
	Direction     string  `json:"direction"`     // "increasing" | "stable" | "decreasing"
	Velocity      float64 `json:"velocity"`      // rate of change per day
	Projection30d float64 `json:"projection30d"` // predicted score in 30 days
	DataPoints    int     `json:"dataPoints"`    // number of snapshots used
}

// CalculateTrend fits a least-squares line through the snapshot scores.
// Snapshots must be ordered oldest first.
func CalculateTrend(snapshots []Snapshot) *Trend {
	if len(snapshots) < 2 {
		return &Trend{
			Direction:  "stable",
			DataPoints: len(snapshots),
		}
	}

	// y = mx + b with x in days since the first snapshot
	var sumX, sumY, sumXY, sumX2 float64
	n := float64(len(snapshots))

	baseDate := snapshots[0].Date
	for _, s := range snapshots {
		x := s.Date.Sub(baseDate).Hours() / 24
		y := s.Score
		sumX += x
		sumY += y
		sumXY += x * y
		sumX2 += x * x
	}

	denominator := n*sumX2 - sumX*sumX
	var velocity float64
	if denominator != 0 {
		velocity = (n*sumXY - sumX*sumY) / denominator
	}

	direction := "stable"
	if velocity > 0.01 {
		direction = "increasing"
	} else if velocity < -0.01 {
		direction = "decreasing"
	}

	projection30d := snapshots[len(snapshots)-1].Score + velocity*30
	if projection30d < 0 {
		projection30d = 0
	}
	if projection30d > 1 {
		projection30d = 1
	}

	return &Trend{
		Direction:     direction,
		Velocity:      velocity,
		Projection30d: projection30d,
		DataPoints:    len(snapshots),
	}
}

// Hotness is the raw radar score: how often a file changes times how hard
// its hardest function is to read.
func Hotness(changes, maxCognitive int) int {
	return changes * maxCognitive
}

// ComputeCompositeScore calculates the normalized hotspot score
// Weights: churn 50%, complexity 50%
func ComputeCompositeScore(churnScore, complexityScore float64) float64 {
	return churnScore*0.5 + complexityScore*0.5
}

// NormalizeChurnScore converts raw churn metrics to 0-1 score
func NormalizeChurnScore(changes, authors int) float64 {
	changeScore := logNormalize(float64(changes), 10) // 10 commits = 0.5
	authorScore := logNormalize(float64(authors), 3)  // 3 authors = 0.5
	return changeScore*0.7 + authorScore*0.3
}

// NormalizeComplexityScore converts cognitive complexity to 0-1 score
func NormalizeComplexityScore(maxCognitive, totalCognitive int) float64 {
	maxScore := logNormalize(float64(maxCognitive), 15)     // 15 = 0.5
	totalScore := logNormalize(float64(totalCognitive), 50) // 50 = 0.5
	return maxScore*0.7 + totalScore*0.3
}

// logNormalize maps value onto 0-1, returning 0.5 at midpoint
func logNormalize(value, midpoint float64) float64 {
	if value <= 0 {
		return 0
	}
	return value / (value + midpoint)
}
