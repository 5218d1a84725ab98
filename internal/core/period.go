package core

// Period is one bounded budget window. Both bounds are inclusive.
type Period struct {
	StartDate Date
	EndDate   Date
}

// GeneratePeriods produces count consecutive budget windows starting at
// start.
//
// WEEKLY periods are exactly seven days (start, start+6) and back to back:
// each next period starts the day after the previous one ends.
//
// MONTHLY periods run to the end of the calendar month: the first period
// spans start to the last day of start's month, every following period
// covers one full calendar month. The end of a month is computed as the
// first day of the next month minus one day, which handles December
// rollover and variable month lengths including leap years.
func GeneratePeriods(periodType PeriodType, start Date, count int) ([]Period, error) {
	if !periodType.Valid() {
		return nil, ErrInvalidPeriodType
	}
	if err := start.Validate(); err != nil {
		return nil, err
	}

	periods := make([]Period, 0, count)
	current := start

	for i := 0; i < count; i++ {
		switch periodType {
		case Weekly:
			end := current.AddDays(6)
			periods = append(periods, Period{StartDate: current, EndDate: end})
			current = end.AddDays(1)
		case Monthly:
			var nextMonthStart Date
			if current.Month() == 12 {
				nextMonthStart = NewDate(current.Year()+1, 1, 1)
			} else {
				nextMonthStart = NewDate(current.Year(), int(current.Month())+1, 1)
			}
			periods = append(periods, Period{StartDate: current, EndDate: nextMonthStart.AddDays(-1)})
			current = nextMonthStart
		}
	}

	return periods, nil
}
