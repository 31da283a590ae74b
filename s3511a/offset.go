package s3511a

import (
	"strconv"
	"time"
)

const secondsPerDay = 86400

// DateTimeOffset counts seconds from 00-01-01 00:00:00 in the chip's 100-year
// cycle. The chip exposes no absolute epoch, so offsets are only meaningful
// relative to each other and all arithmetic on them wraps around.
type DateTimeOffset uint32

// MaxDateTimeOffset is 99-12-31 23:59:59.
const MaxDateTimeOffset DateTimeOffset = 3_155_759_999

// cumulative days before each month in a non-leap year
var daysBeforeMonth = [13]uint32{0, 0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

// leapDaysBefore counts Feb 29ths in years 0..year-1. The chip treats every
// fourth year as a leap year, year 0 included.
func leapDaysBefore(year Year) uint32 {
	if year == 0 {
		return 0
	}
	return (uint32(year)-1)/4 + 1
}

func isLeap(year Year) bool { return year%4 == 0 }

func calculateOffset(year Year, month Month, day Day, hour Hour, minute Minute, second Second) DateTimeOffset {
	days := 365*uint32(year) + leapDaysBefore(year) + daysBeforeMonth[month] + uint32(day) - 1
	if isLeap(year) && month > 2 {
		days++
	}
	return DateTimeOffset(uint32(second) + 60*uint32(minute) + 3600*uint32(hour) + secondsPerDay*days)
}

// NewDateTimeOffset validates the fields against the chip's ranges and
// returns their offset. Day is checked against 1-31 only, as the chip does.
func NewDateTimeOffset(year, month, day, hour, minute, second int) (DateTimeOffset, error) {
	switch {
	case year < 0 || year > 99:
		return 0, ErrInvalidDateTime
	case month < 1 || month > 12:
		return 0, &ValueError{Err: ErrInvalidMonth, Value: clampByte(month)}
	case day < 1 || day > 31:
		return 0, &ValueError{Err: ErrInvalidDay, Value: clampByte(day)}
	case hour < 0 || hour > 23:
		return 0, &ValueError{Err: ErrInvalidHour, Value: clampByte(hour)}
	case minute < 0 || minute > 59:
		return 0, &ValueError{Err: ErrInvalidMinute, Value: clampByte(minute)}
	case second < 0 || second > 59:
		return 0, &ValueError{Err: ErrInvalidSecond, Value: clampByte(second)}
	}
	return calculateOffset(Year(year), Month(month), Day(day), Hour(hour), Minute(minute), Second(second)), nil
}

func clampByte(v int) uint8 {
	if v < 0 {
		return 0
	}
	if v > 0xff {
		return 0xff
	}
	return uint8(v)
}

// Sub returns o - other on the circular counter: ordinary subtraction when
// o >= other, otherwise the distance across the wrap point.
func (o DateTimeOffset) Sub(other DateTimeOffset) DateTimeOffset {
	if o >= other {
		return o - other
	}
	return (MaxDateTimeOffset - other) + o + 1
}

// Add returns o + other on the circular counter.
func (o DateTimeOffset) Add(other DateTimeOffset) DateTimeOffset {
	sum := uint64(o) + uint64(other)
	if sum > uint64(MaxDateTimeOffset) {
		sum -= uint64(MaxDateTimeOffset) + 1
	}
	return DateTimeOffset(sum)
}

// Time drops whole days. The cycle length is a whole number of days, so this
// commutes with Add and Sub.
func (o DateTimeOffset) Time() TimeOffset {
	return TimeOffset(o % secondsPerDay)
}

// Days returns the number of whole days in o.
func (o DateTimeOffset) Days() int {
	return int(o / secondsPerDay)
}

// Duration converts o to a time.Duration.
func (o DateTimeOffset) Duration() time.Duration {
	return time.Duration(o) * time.Second
}

// Calendar splits o back into the chip's calendar fields.
func (o DateTimeOffset) Calendar() (Year, Month, Day, Hour, Minute, Second) {
	days := uint32(o / secondsPerDay)
	hour, minute, second := o.Time().Clock()

	// 1461 days per four-year group, the first year of each group is leap.
	year := 4 * (days / 1461)
	days %= 1461
	if days >= 366 {
		days -= 366
		year += 1 + days/365
		days %= 365
	}
	leap := isLeap(Year(year))
	month := Month(12)
	for m := Month(2); m <= 12; m++ {
		start := daysBeforeMonth[m]
		if leap && m > 2 {
			start++
		}
		if days < start {
			month = m - 1
			break
		}
	}
	start := daysBeforeMonth[month]
	if leap && month > 2 {
		start++
	}
	return Year(year), month, Day(days - start + 1), hour, minute, second
}

// String formats o as the chip's calendar, YY-MM-DD hh:mm:ss.
func (o DateTimeOffset) String() string {
	y, mo, d, _, _, _ := o.Calendar()
	buf := make([]byte, 0, 17)
	buf = append2(buf, uint8(y), '-')
	buf = append2(buf, uint8(mo), '-')
	buf = append2(buf, uint8(d), ' ')
	return string(o.Time().appendClock(buf))
}

// TimeOffset counts seconds since midnight, [0, 86399]. Reading only the time
// costs three bytes on the wire instead of seven.
type TimeOffset uint32

// MaxTimeOffset is 23:59:59.
const MaxTimeOffset TimeOffset = secondsPerDay - 1

func newTimeOffset(hour Hour, minute Minute, second Second) TimeOffset {
	return TimeOffset(3600*uint32(hour) + 60*uint32(minute) + uint32(second))
}

// Sub returns t - other modulo one day.
func (t TimeOffset) Sub(other TimeOffset) TimeOffset {
	if t >= other {
		return t - other
	}
	return (MaxTimeOffset - other) + t + 1
}

// Add returns t + other modulo one day.
func (t TimeOffset) Add(other TimeOffset) TimeOffset {
	sum := t + other
	if sum > MaxTimeOffset {
		sum -= MaxTimeOffset + 1
	}
	return sum
}

// Clock splits t into hours, minutes and seconds.
func (t TimeOffset) Clock() (Hour, Minute, Second) {
	return Hour(t / 3600), Minute(t / 60 % 60), Second(t % 60)
}

func (t TimeOffset) String() string {
	return string(t.appendClock(make([]byte, 0, 8)))
}

func (t TimeOffset) appendClock(buf []byte) []byte {
	h, m, s := t.Clock()
	buf = append2(buf, uint8(h), ':')
	buf = append2(buf, uint8(m), ':')
	if s < 10 {
		buf = append(buf, '0')
	}
	return strconv.AppendUint(buf, uint64(s), 10)
}

func append2(buf []byte, v uint8, sep byte) []byte {
	if v < 10 {
		buf = append(buf, '0')
	}
	buf = strconv.AppendUint(buf, uint64(v), 10)
	return append(buf, sep)
}
