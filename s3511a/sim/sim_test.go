package sim

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/ajanata/gbartc/s3511a"
)

// transfer drives one exchange on the chip's registers the way the cartridge
// bus does. Read commands return n bytes; write commands send out.
func transfer(c *Chip, cmd s3511a.Command, out []byte, n int) []byte {
	c.SetInterruptsEnabled(false)
	defer c.SetInterruptsEnabled(true)
	c.WriteData(s3511a.SCK)
	c.WriteData(s3511a.CS | s3511a.SCK)
	c.WriteDirection(s3511a.Write)
	for i := 7; i >= 0; i-- {
		clock(c, uint8(cmd)>>i&1 != 0)
	}
	var in []byte
	if cmd&1 != 0 {
		c.WriteDirection(s3511a.Read)
		for j := 0; j < n; j++ {
			var b byte
			for i := 0; i < 8; i++ {
				clock(c, false)
				if c.ReadData()&s3511a.SIO != 0 {
					b |= 1 << i
				}
			}
			in = append(in, b)
		}
	}
	for _, b := range out {
		for i := 0; i < 8; i++ {
			clock(c, b>>i&1 != 0)
		}
	}
	c.WriteData(s3511a.SCK)
	return in
}

func clock(c *Chip, bit bool) {
	d := s3511a.CS
	if bit {
		d |= s3511a.SIO
	}
	c.WriteData(d)
	c.WriteData(d | s3511a.SCK)
}

func enabled(opts ...Option) *Chip {
	c := New(opts...)
	c.WriteEnable(true)
	return c
}

func TestReadDateTime(t *testing.T) {
	c := qt.New(t)
	start, err := s3511a.NewDateTimeOffset(12, 12, 21, 5, 23, 7)
	c.Assert(err, qt.IsNil)
	chip := enabled(WithStart(start))
	got := transfer(chip, s3511a.ReadDateTime, nil, 7)
	// 2012-12-21 was a Friday
	c.Assert(got, qt.DeepEquals, []byte{0x12, 0x12, 0x21, 0x05, 0x05, 0x23, 0x07})
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3), qt.DeepEquals, []byte{0x05, 0x23, 0x07})
	c.Assert(chip.Commands(), qt.DeepEquals, []s3511a.Command{s3511a.ReadDateTime, s3511a.ReadTime})
	c.Assert(chip.Violations(), qt.HasLen, 0)
}

func TestWeekday(t *testing.T) {
	c := qt.New(t)
	chip := enabled()
	// 2000-01-01 was a Saturday
	c.Assert(transfer(chip, s3511a.ReadDateTime, nil, 7)[3], qt.Equals, byte(6))
	chip.Advance(24 * time.Hour)
	c.Assert(transfer(chip, s3511a.ReadDateTime, nil, 7)[3], qt.Equals, byte(0))
}

func TestTwelveHourMode(t *testing.T) {
	c := qt.New(t)
	chip := enabled(With12HourMode())
	chip.Advance(13*time.Hour + time.Minute)
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3), qt.DeepEquals, []byte{0x81, 0x01, 0x00})
	chip.Set(0)
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3), qt.DeepEquals, []byte{0x00, 0x00, 0x00})
}

func TestStatus(t *testing.T) {
	c := qt.New(t)
	chip := enabled(WithPowerLoss())
	c.Assert(transfer(chip, s3511a.ReadStatus, nil, 1), qt.DeepEquals, []byte{0xc0})
	c.Assert(transfer(chip, s3511a.ReadDateTime, nil, 7), qt.DeepEquals,
		[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})

	// power is read-only and unused bits never stick
	transfer(chip, s3511a.WriteStatus, []byte{0x15}, 0)
	c.Assert(chip.Status(), qt.Equals, s3511a.StatusPower)

	transfer(chip, s3511a.Reset, nil, 0)
	c.Assert(chip.Status(), qt.Equals, s3511a.Status(0))
	transfer(chip, s3511a.WriteStatus, []byte{0x40}, 0)
	c.Assert(chip.Status(), qt.Equals, s3511a.StatusHour24)
	c.Assert(transfer(chip, s3511a.ReadDateTime, nil, 7), qt.DeepEquals,
		[]byte{0x00, 0x01, 0x01, 0x06, 0x00, 0x00, 0x00})
	c.Assert(chip.Violations(), qt.HasLen, 0)
}

func TestResetClearsCounterAndTestMode(t *testing.T) {
	c := qt.New(t)
	chip := enabled(WithStart(1000), WithTestMode())
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3)[2]&flagBit, qt.Equals, byte(flagBit))
	transfer(chip, s3511a.Reset, nil, 0)
	c.Assert(chip.Counter(), qt.Equals, s3511a.DateTimeOffset(0))
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3)[2], qt.Equals, byte(0))
}

func TestStickyFlags(t *testing.T) {
	c := qt.New(t)
	chip := enabled(WithPowerLoss(), WithStickyPowerLoss(1), WithTestMode(), WithStickyTestMode(2))
	transfer(chip, s3511a.Reset, nil, 0)
	c.Assert(chip.Status(), qt.Equals, s3511a.StatusPower)
	transfer(chip, s3511a.Reset, nil, 0)
	c.Assert(chip.Status(), qt.Equals, s3511a.Status(0))
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3)[2], qt.Equals, byte(flagBit))
	transfer(chip, s3511a.Reset, nil, 0)
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3)[2], qt.Equals, byte(0))
}

func TestSetRaw(t *testing.T) {
	c := qt.New(t)
	chip := enabled()
	raw := [7]byte{1, 2, 3, 4, 5, 6, 7}
	chip.SetRaw(&raw)
	c.Assert(transfer(chip, s3511a.ReadDateTime, nil, 7), qt.DeepEquals, raw[:])
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3), qt.DeepEquals, raw[4:])
	chip.SetRaw(nil)
	c.Assert(transfer(chip, s3511a.ReadTime, nil, 3), qt.DeepEquals, []byte{0, 0, 0})
}

func TestAdvanceWraps(t *testing.T) {
	c := qt.New(t)
	chip := New(WithStart(s3511a.MaxDateTimeOffset))
	chip.Advance(time.Second)
	c.Assert(chip.Counter(), qt.Equals, s3511a.DateTimeOffset(0))
	chip.Advance(1500 * time.Millisecond)
	c.Assert(chip.Counter(), qt.Equals, s3511a.DateTimeOffset(1))
}

func TestAdvanceBackwards(t *testing.T) {
	c := qt.New(t)
	chip := New(WithStart(10))
	chip.Advance(-4 * time.Second)
	c.Assert(chip.Counter(), qt.Equals, s3511a.DateTimeOffset(6))
	chip.Advance(-7 * time.Second)
	c.Assert(chip.Counter(), qt.Equals, s3511a.MaxDateTimeOffset)
	chip.Advance(-1500 * time.Millisecond)
	c.Assert(chip.Counter(), qt.Equals, s3511a.MaxDateTimeOffset-1)
	chip.Advance(2 * time.Second)
	c.Assert(chip.Counter(), qt.Equals, s3511a.DateTimeOffset(0))
}

func TestWeekdayOf(t *testing.T) {
	c := qt.New(t)
	c.Assert(Weekday(0), qt.Equals, uint8(6))
	start, err := s3511a.NewDateTimeOffset(12, 12, 21, 23, 59, 59)
	c.Assert(err, qt.IsNil)
	c.Assert(Weekday(start), qt.Equals, uint8(5))
	leap, err := s3511a.NewDateTimeOffset(0, 2, 29, 0, 0, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(Weekday(leap), qt.Equals, uint8(2))
}

func TestDisabledPortIgnoresWrites(t *testing.T) {
	c := qt.New(t)
	chip := New(WithoutGPIO())
	chip.WriteEnable(true)
	c.Assert(chip.ReadEnable(), qt.IsFalse)
	c.Assert(transfer(chip, s3511a.ReadStatus, nil, 1), qt.DeepEquals, []byte{0})
	c.Assert(chip.Commands(), qt.HasLen, 0)
}

func TestViolations(t *testing.T) {
	c := qt.New(t)
	chip := enabled()
	chip.WriteData(s3511a.CS | s3511a.SCK)
	c.Assert(chip.Violations(), qt.DeepEquals, []string{"chip selected with interrupts enabled"})

	chip = enabled()
	chip.SetInterruptsEnabled(false)
	chip.WriteData(s3511a.CS | s3511a.SCK)
	chip.WriteDirection(s3511a.Read)
	clock(chip, true)
	chip.WriteData(s3511a.SCK)
	c.Assert(chip.Violations(), qt.DeepEquals, []string{
		"command clocked with SIO as input",
		"chip deselected mid-command",
	})

	chip = enabled()
	transfer(chip, 0x12, nil, 0)
	c.Assert(chip.Violations(), qt.DeepEquals, []string{"bad fixed code in command"})

	chip = enabled()
	transfer(chip, 0x61, nil, 0)
	c.Assert(chip.Violations(), qt.DeepEquals, []string{"unsupported command"})

	chip = enabled()
	chip.SetInterruptsEnabled(false)
	chip.WriteData(s3511a.CS | s3511a.SCK)
	chip.WriteDirection(s3511a.Write)
	for i := 7; i >= 0; i-- {
		clock(chip, uint8(s3511a.Reset)>>i&1 != 0)
	}
	clock(chip, false)
	chip.WriteData(s3511a.SCK)
	c.Assert(chip.Violations(), qt.DeepEquals, []string{"extra clock after transfer"})
}
