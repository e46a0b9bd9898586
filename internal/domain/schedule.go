package domain

// Schedule titles the deadline gate resolves. The rows are owned by the
// surrounding site's schedule CRUD; this engine only reads them.
const (
	ScheduleOrderDeadline = "tshirt order deadline"
	SchedulePickupWindow  = "tshirt pickup window"
)

// DeadlineEntry is a named cutoff read from the schedules table. EndTime is
// a YYYYMMDD date string; Day is a free-text label shown by the UI.
type DeadlineEntry struct {
	Title   string `json:"title"`
	Day     string `json:"day"`
	EndTime string `json:"endTime"`
}
