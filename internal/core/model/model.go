package model

import "strings"

// Form statuses. StatusIn is the only status an open shift can carry.
const (
	StatusIn  = "In"
	StatusOut = "Out"
)

// MaxFieldChars is the longest text a spreadsheet cell holds.
const MaxFieldChars = 32767

// Date and time layouts used for every stored record.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Column headers of the two collections. The order is the on-disk order.
var (
	OpenColumns   = []string{"Name", "Shift", "PLT ID", "Status", "Date", "In Time"}
	ClosedColumns = []string{"Name", "Shift", "PLT ID", "Date", "In Time", "Out Time", "Total Time"}
)

// OpenShift is a pallet that has been checked in and not yet checked out.
type OpenShift struct {
	WorkerName  string `json:"workerName"`
	ShiftLabel  string `json:"shiftLabel"`
	PalletID    string `json:"palletId"`
	Status      string `json:"status"`
	CheckInDate string `json:"checkInDate"`
	CheckInTime string `json:"checkInTime"`
}

// Row returns the record as cells in OpenColumns order.
func (o OpenShift) Row() []string {
	return []string{o.WorkerName, o.ShiftLabel, o.PalletID, o.Status, o.CheckInDate, o.CheckInTime}
}

// OpenShiftFromRow is the inverse of Row. Missing trailing cells are treated as empty.
func OpenShiftFromRow(row []string) OpenShift {
	c := padRow(row, len(OpenColumns))
	return OpenShift{
		WorkerName:  c[0],
		ShiftLabel:  c[1],
		PalletID:    c[2],
		Status:      c[3],
		CheckInDate: c[4],
		CheckInTime: c[5],
	}
}

// ClosedShift is a completed shift with its computed duration.
type ClosedShift struct {
	WorkerName    string `json:"workerName"`
	ShiftLabel    string `json:"shiftLabel"`
	PalletID      string `json:"palletId"`
	CheckInDate   string `json:"checkInDate"`
	CheckInTime   string `json:"checkInTime"`
	CheckOutTime  string `json:"checkOutTime"`
	TotalDuration string `json:"totalDuration"`
}

// Row returns the record as cells in ClosedColumns order.
func (c ClosedShift) Row() []string {
	return []string{c.WorkerName, c.ShiftLabel, c.PalletID, c.CheckInDate, c.CheckInTime, c.CheckOutTime, c.TotalDuration}
}

// ClosedShiftFromRow is the inverse of Row.
func ClosedShiftFromRow(row []string) ClosedShift {
	c := padRow(row, len(ClosedColumns))
	return ClosedShift{
		WorkerName:    c[0],
		ShiftLabel:    c[1],
		PalletID:      c[2],
		CheckInDate:   c[3],
		CheckInTime:   c[4],
		CheckOutTime:  c[5],
		TotalDuration: c[6],
	}
}

// padRow returns exactly n cells with surrounding whitespace removed, so ids
// typed by hand into the spreadsheet still match submitted ones.
func padRow(row []string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n && i < len(row); i++ {
		out[i] = strings.TrimSpace(row[i])
	}
	return out
}
