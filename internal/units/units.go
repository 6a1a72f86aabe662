// Package units provides shared formatting and validation for the quantities
// the service reports: signal strength, elapsed-time counters, and the local
// calendar dates sessions are grouped by.
package units

import "fmt"

// DBm formats a signal strength value for logs and reports.
func DBm(rssi int) string {
	return fmt.Sprintf("%d dBm", rssi)
}
