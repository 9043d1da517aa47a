package reporting

import (
	"workforce-lodging/internal/audit"
	"workforce-lodging/internal/rooms"
)

// Dashboards are computed on read from the request and extension tables.
// Nothing here is stored.

type EmployerStats struct {
	ActiveRequests int `json:"activeRequests"`
	// WorkersInHouse sums the headcount of CHECKED_IN requests.
	WorkersInHouse    int `json:"workersInHouse"`
	ExtensionsDue     int `json:"extensionsDue"`
	PendingExtensions int `json:"pendingExtensions"`
}

type EmployerSummary struct {
	Stats    EmployerStats       `json:"stats"`
	Upcoming []rooms.RoomRequest `json:"upcoming"`
	Requests []rooms.RoomRequest `json:"requests"`
}

type FrontdeskStats struct {
	ArrivalsToday     int `json:"arrivalsToday"`
	PendingRequests   int `json:"pendingRequests"`
	InHouse           int `json:"inHouse"`
	PendingExtensions int `json:"pendingExtensions"`
}

type FrontdeskSummary struct {
	Stats    FrontdeskStats      `json:"stats"`
	Arrivals []rooms.RoomRequest `json:"arrivals"`
	Pending  []rooms.RoomRequest `json:"pending"`
}

type AdminStats struct {
	Users            int                  `json:"users"`
	Hotels           int                  `json:"hotels"`
	RequestsByStatus map[rooms.Status]int `json:"requestsByStatus"`
}

type AdminSummary struct {
	Stats        AdminStats    `json:"stats"`
	RecentEvents []audit.Event `json:"recentEvents"`
}
