package domain

// DashboardStats feeds the metric cards on the dashboard page. Derived
// client-side from loaded pages; the backend may later serve it directly.
type DashboardStats struct {
	ActiveGoals    int     `json:"active_goals"`
	CompletedGoals int     `json:"completed_goals"`
	RunningRuns    int     `json:"running_runs"`
	HoursSaved     float64 `json:"hours_saved"`
}

// MetricCard is one tile on the dashboard.
type MetricCard struct {
	Title string `json:"title"`
	Value string `json:"value"`
}
