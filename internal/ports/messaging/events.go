package messaging

import "time"

// ShiftClosedEvent is the JSON payload sent via SQS when a pallet is checked out.
type ShiftClosedEvent struct {
	PalletID        string    `json:"palletId"`
	WorkerName      string    `json:"workerName"`
	ShiftLabel      string    `json:"shiftLabel"`
	CheckInDate     string    `json:"checkInDate"`
	CheckInTime     string    `json:"checkInTime"`
	CheckOutTime    string    `json:"checkOutTime"`
	TotalDuration   string    `json:"totalDuration"`
	DurationSeconds int64     `json:"durationSeconds"`
	ClosedAt        time.Time `json:"closedAt"`
}
