package services

import "bollette/internal/core"

// SetToday lets tests pin the engine's notion of the current day.
func SetToday(s *BillService, fn func() core.Date) {
	s.today = fn
}
