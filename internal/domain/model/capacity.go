package model

// CapacityDay is the pickup capacity snapshot for one calendar day.
type CapacityDay struct {
	Date      string `json:"date"`
	Limit     int    `json:"available"`
	Consumed  int    `json:"ordered"`
	Remaining int    `json:"remaining"`
}

// CalendarEntry is a raw row of the published capacity calendar.
type CalendarEntry struct {
	Date  string `json:"date"`
	Limit int    `json:"limit"`
}
