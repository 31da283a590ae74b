// Package s3511a implements a driver for the Seiko S-3511A real-time clock
// found on Game Boy Advance cartridges, which is reached by bit-banging a
// serial protocol over the cartridge GPIO port.
//
// The chip's date and time registers are writable on real cartridges but most
// emulators ignore writes, so this driver never writes them. A Clock instead
// remembers a host date and the chip's counter value at the moment that date's
// time of day was set, and derives every read from the time elapsed on the chip
// since then. Writes only move that anchor.
//
// Alarms, the interrupt output and the free register are not implemented.
//
// Reference: https://problemkaputt.de/gbatek.htm (GBA Cart Real-Time Clock)
package s3511a

import (
	"cloud.google.com/go/civil"
)

// MaxYear is the last host year a Clock can report.
const MaxYear = 9999

// Logger receives diagnostic messages from the driver.
type Logger interface {
	Println(string) error
}

// Log, when set, receives the decisions the driver takes while bringing up
// the chip.
var Log Logger

func l(msg string) {
	if Log != nil {
		Log.Println(msg)
	}
}

// Clock reads and writes calendar date and time through the chip.
//
// A Clock is not safe for concurrent use. Only one Clock should drive a
// given Port.
type Clock struct {
	t transport

	// midnight of this date is where elapsed chip time is counted from
	baseDate civil.Date
	// chip counter value at baseDate's midnight
	rtcOffset DateTimeOffset
}

// New brings up the chip and returns a Clock reading dt at this instant.
//
// The chip is reset when it reports lost backup power or factory test mode,
// and is always switched to 24-hour mode.
func New(port Port, dt civil.DateTime) (*Clock, error) {
	if !validDateTime(dt) {
		return nil, ErrInvalidDateTime
	}
	t := transport{port: port}
	if !t.enable() {
		return nil, ErrNotEnabled
	}

	t.reset()
	status, err := t.readStatus()
	if err != nil {
		return nil, err
	}
	if status.Has(StatusPower) {
		// register contents are undefined after a power loss
		l("s3511a: backup power was lost, resetting")
		t.reset()
	}
	if t.testMode() {
		l("s3511a: test mode set, resetting")
		t.reset()
	}
	// hour decoding rejects the AM/PM flag
	t.writeStatus(StatusHour24)

	device, err := t.readDateTime()
	if err != nil {
		return nil, err
	}
	return &Clock{
		t:         t,
		baseDate:  dt.Date,
		rtcOffset: device.Sub(DateTimeOffset(timeOffsetOf(dt.Time))),
	}, nil
}

// ReadDateTime returns the current date and time.
func (c *Clock) ReadDateTime() (civil.DateTime, error) {
	device, err := c.t.readDateTime()
	if err != nil {
		return civil.DateTime{}, err
	}
	return c.at(device.Sub(c.rtcOffset))
}

// WriteDateTime sets the date and time. The chip itself is not written.
func (c *Clock) WriteDateTime(dt civil.DateTime) error {
	if !validDateTime(dt) {
		return ErrInvalidDateTime
	}
	device, err := c.t.readDateTime()
	if err != nil {
		return err
	}
	c.baseDate = dt.Date
	c.rtcOffset = device.Sub(DateTimeOffset(timeOffsetOf(dt.Time)))
	return nil
}

// ReadDate returns the current date.
func (c *Clock) ReadDate() (civil.Date, error) {
	dt, err := c.ReadDateTime()
	if err != nil {
		return civil.Date{}, err
	}
	return dt.Date, nil
}

// WriteDate sets the date, keeping the current time of day.
func (c *Clock) WriteDate(d civil.Date) error {
	if !validDate(d) {
		return ErrInvalidDateTime
	}
	device, err := c.t.readDateTime()
	if err != nil {
		return err
	}
	elapsed := device.Sub(c.rtcOffset)
	c.baseDate = d
	c.rtcOffset = device.Sub(DateTimeOffset(elapsed.Time()))
	return nil
}

// ReadTime returns the current time of day. It needs a shorter transfer than
// ReadDateTime.
func (c *Clock) ReadTime() (civil.Time, error) {
	device, err := c.t.readTime()
	if err != nil {
		return civil.Time{}, err
	}
	return civilTime(device.Sub(c.rtcOffset.Time())), nil
}

// WriteTime sets the time of day, keeping the current date.
func (c *Clock) WriteTime(t civil.Time) error {
	if !t.IsValid() {
		return ErrInvalidDateTime
	}
	device, err := c.t.readTime()
	if err != nil {
		return err
	}
	current := device.Sub(c.rtcOffset.Time())
	requested := timeOffsetOf(t)
	if requested >= current {
		c.rtcOffset = c.rtcOffset.Sub(DateTimeOffset(requested - current))
	} else {
		c.rtcOffset = c.rtcOffset.Add(DateTimeOffset(current - requested))
	}
	return nil
}

// at converts time elapsed since the anchor to a host date and time.
func (c *Clock) at(elapsed DateTimeOffset) (civil.DateTime, error) {
	d := c.baseDate.AddDays(elapsed.Days())
	if d.Year > MaxYear {
		return civil.DateTime{}, ErrOverflow
	}
	return civil.DateTime{Date: d, Time: civilTime(elapsed.Time())}, nil
}

func civilTime(t TimeOffset) civil.Time {
	h, m, s := t.Clock()
	return civil.Time{Hour: int(h), Minute: int(m), Second: int(s)}
}

// timeOffsetOf drops sub-second precision; the chip counts whole seconds.
func timeOffsetOf(t civil.Time) TimeOffset {
	return TimeOffset(3600*t.Hour + 60*t.Minute + t.Second)
}

func validDate(d civil.Date) bool {
	return d.IsValid() && d.Year >= 0 && d.Year <= MaxYear
}

func validDateTime(dt civil.DateTime) bool {
	return validDate(dt.Date) && dt.Time.IsValid()
}
