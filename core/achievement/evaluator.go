// Package achievement evaluates which badges a user's aggregate counters
// have unlocked.
package achievement

// Metric names the counter an achievement threshold applies to.
type Metric string

const (
	MetricSubmissions  Metric = "transitions"
	MetricRatingsGiven Metric = "ratings"
	MetricMaxUpvotes   Metric = "upvotes"
)

// Definition describes one achievement.
type Definition struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Metric      Metric `json:"metric"`
	Threshold   int    `json:"threshold"`
}

// Stats are the per-user aggregate counters achievements are evaluated
// against. They are the sole source of truth; evaluation is recomputed on
// every read and must be idempotent.
type Stats struct {
	Submissions  int `json:"transitions"`
	RatingsGiven int `json:"ratings"`
	MaxUpvotes   int `json:"upvotes"` // max upvotes on any single owned transition
}

// Catalog is the built-in achievement set.
var Catalog = []Definition{
	{ID: "first_transition", Title: "First Transition", Description: "Submit your first transition", Metric: MetricSubmissions, Threshold: 1},
	{ID: "transition_enthusiast", Title: "Transition Enthusiast", Description: "Submit 5 transitions", Metric: MetricSubmissions, Threshold: 5},
	{ID: "transition_master", Title: "Transition Master", Description: "Submit 20 transitions", Metric: MetricSubmissions, Threshold: 20},
	{ID: "first_rating", Title: "First Rating", Description: "Rate your first transition", Metric: MetricRatingsGiven, Threshold: 1},
	{ID: "rating_enthusiast", Title: "Rating Enthusiast", Description: "Rate 10 transitions", Metric: MetricRatingsGiven, Threshold: 10},
	{ID: "popular_transition", Title: "Popular Transition", Description: "Get 5 upvotes on one of your transitions", Metric: MetricMaxUpvotes, Threshold: 5},
}

// Counter returns the stat value for a metric.
func (s Stats) Counter(m Metric) int {
	switch m {
	case MetricSubmissions:
		return s.Submissions
	case MetricRatingsGiven:
		return s.RatingsGiven
	case MetricMaxUpvotes:
		return s.MaxUpvotes
	default:
		return 0
	}
}

// Evaluate returns the IDs of achievements from the catalog whose threshold
// the counters meet. An achievement is earned iff counter >= threshold.
func Evaluate(stats Stats, catalog []Definition) []string {
	var earned []string
	for _, def := range catalog {
		if stats.Counter(def.Metric) >= def.Threshold {
			earned = append(earned, def.ID)
		}
	}
	return earned
}
