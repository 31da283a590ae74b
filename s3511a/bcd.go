package s3511a

// bcd is a byte holding two decimal digits, one per nibble. For example 12 is
// stored as 0x12, not 0x0c.
type bcd uint8

// bcdOf wraps b, or fails if either nibble is above 9.
func bcdOf(b uint8) (bcd, error) {
	if b >= 0xa0 || b&0x0f >= 0x0a {
		return 0, &ValueError{Err: ErrInvalidBCD, Value: b}
	}
	return bcd(b), nil
}

// binary is always below 100.
func (b bcd) binary() uint8 {
	return 10*(uint8(b)>>4) + uint8(b)&0x0f
}

// toBCD encodes n, which must already be below 100.
func toBCD(n uint8) uint8 {
	return (n/10)<<4 | n%10
}

// Calendar fields as the chip counts them. Values are only produced by the
// decoders below or by NewDateTimeOffset, so they are always in range.
type (
	Year   uint8 // 0-99, years since 2000 in the chip's own cycle
	Month  uint8 // 1-12
	Day    uint8 // 1-31
	Hour   uint8 // 0-23
	Minute uint8 // 0-59
	Second uint8 // 0-59
)

func yearOf(raw uint8) (Year, error) {
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	return Year(b.binary()), nil
}

func monthOf(raw uint8) (Month, error) {
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	v := b.binary()
	if v < 1 || v > 12 {
		return 0, &ValueError{Err: ErrInvalidMonth, Value: v}
	}
	return Month(v), nil
}

func dayOf(raw uint8) (Day, error) {
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	v := b.binary()
	if v < 1 || v > 31 {
		return 0, &ValueError{Err: ErrInvalidDay, Value: v}
	}
	return Day(v), nil
}

// hourOf rejects the AM/PM flag before decoding; the driver keeps the chip in
// 24-hour mode.
func hourOf(raw uint8) (Hour, error) {
	if raw&hourPM != 0 {
		return 0, &ValueError{Err: ErrAmPmBitPresent, Value: raw}
	}
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	v := b.binary()
	if v > 23 {
		return 0, &ValueError{Err: ErrInvalidHour, Value: v}
	}
	return Hour(v), nil
}

func minuteOf(raw uint8) (Minute, error) {
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	v := b.binary()
	if v > 59 {
		return 0, &ValueError{Err: ErrInvalidMinute, Value: v}
	}
	return Minute(v), nil
}

// secondOf rejects the factory test flag before decoding.
func secondOf(raw uint8) (Second, error) {
	if raw&secondTest != 0 {
		return 0, &ValueError{Err: ErrTestMode, Value: raw}
	}
	b, err := bcdOf(raw)
	if err != nil {
		return 0, err
	}
	v := b.binary()
	if v > 59 {
		return 0, &ValueError{Err: ErrInvalidSecond, Value: v}
	}
	return Second(v), nil
}

// decodeDateTime decodes a ReadDateTime response. The weekday byte is ignored.
func decodeDateTime(raw *[dateTimeLen]byte) (DateTimeOffset, error) {
	year, err := yearOf(raw[fieldYear])
	if err != nil {
		return 0, err
	}
	month, err := monthOf(raw[fieldMonth])
	if err != nil {
		return 0, err
	}
	day, err := dayOf(raw[fieldDay])
	if err != nil {
		return 0, err
	}
	hour, minute, second, err := decodeTime(raw[fieldHour], raw[fieldMinute], raw[fieldSecond])
	if err != nil {
		return 0, err
	}
	return calculateOffset(year, month, day, hour, minute, second), nil
}

func decodeTime(h, m, s uint8) (Hour, Minute, Second, error) {
	hour, err := hourOf(h)
	if err != nil {
		return 0, 0, 0, err
	}
	minute, err := minuteOf(m)
	if err != nil {
		return 0, 0, 0, err
	}
	second, err := secondOf(s)
	if err != nil {
		return 0, 0, 0, err
	}
	return hour, minute, second, nil
}

// EncodeDateTime returns the seven raw bytes the chip would report for the
// given fields, weekday included. It is the inverse of the read path and does
// no validation.
func EncodeDateTime(year Year, month Month, day Day, weekday uint8, hour Hour, minute Minute, second Second) [dateTimeLen]byte {
	return [dateTimeLen]byte{
		fieldYear:    toBCD(uint8(year)),
		fieldMonth:   toBCD(uint8(month)),
		fieldDay:     toBCD(uint8(day)),
		fieldWeekday: toBCD(weekday),
		fieldHour:    toBCD(uint8(hour)),
		fieldMinute:  toBCD(uint8(minute)),
		fieldSecond:  toBCD(uint8(second)),
	}
}
