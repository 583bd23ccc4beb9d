package directory

import "time"

type termDates struct {
	start time.Time
	end   *time.Time
}

func closed(startYear int, startMonth time.Month, startDay, endYear int, endMonth time.Month, endDay int) termDates {
	end := time.Date(endYear, endMonth, endDay, 0, 0, 0, 0, time.UTC)
	return termDates{
		start: time.Date(startYear, startMonth, startDay, 0, 0, 0, 0, time.UTC),
		end:   &end,
	}
}

// constitutive session dates of each parliamentary term
var termCalendar = map[int64]termDates{
	1:  closed(1979, time.July, 17, 1984, time.July, 23),
	2:  closed(1984, time.July, 24, 1989, time.July, 24),
	3:  closed(1989, time.July, 25, 1994, time.July, 18),
	4:  closed(1994, time.July, 19, 1999, time.July, 19),
	5:  closed(1999, time.July, 20, 2004, time.July, 19),
	6:  closed(2004, time.July, 20, 2009, time.July, 13),
	7:  closed(2009, time.July, 14, 2014, time.June, 30),
	8:  closed(2014, time.July, 1, 2019, time.July, 1),
	9:  closed(2019, time.July, 2, 2024, time.July, 15),
	10: {start: time.Date(2024, time.July, 16, 0, 0, 0, 0, time.UTC)},
}

// KnownTermDates returns the calendar dates of a parliamentary term. The
// end date is nil for the sitting term.
func KnownTermDates(number int64) (start time.Time, end *time.Time, ok bool) {
	dates, ok := termCalendar[number]
	if !ok {
		return time.Time{}, nil, false
	}
	return dates.start, dates.end, true
}
