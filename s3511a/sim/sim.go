// Package sim simulates an S-3511A real-time clock behind the GBA cartridge
// GPIO port, at the level of individual register writes. It implements
// s3511a.Port so the driver can be exercised without hardware.
//
// The simulated chip decodes the serial stream exactly as it arrives on SCK,
// SIO and CS, and records protocol violations (clocking data with interrupts
// enabled, wrong SIO direction, unknown commands) for tests to inspect.
package sim

import (
	"sync"
	"time"

	"github.com/ajanata/gbartc/s3511a"
)

const (
	fixedCode    = 0x60 // upper nibble of every command
	unusedStatus = 0b0001_0101
	flagBit      = 0x80
	// 2000-01-01 was a Saturday
	firstWeekday = 6
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseCommand
	phaseRead
	phaseWrite
	phaseDone
)

// Chip is a simulated S-3511A. The zero value is not usable; use New.
type Chip struct {
	mu sync.Mutex

	gpio      bool
	enabled   bool
	ime       bool
	direction s3511a.RwMode
	lines     s3511a.Data
	sio       bool

	counter   s3511a.DateTimeOffset
	status    s3511a.Status
	test      bool
	powerLost bool
	raw       *[7]byte

	// resets the power and test flags still survive
	stickyPower int
	stickyTest  int

	phase  phase
	shift  uint8
	nbits  int
	cmd    s3511a.Command
	out    []byte
	outBit int

	commands   []s3511a.Command
	violations []string
}

// Option configures a Chip.
type Option func(*Chip)

// WithStart sets the counter the chip starts from.
func WithStart(o s3511a.DateTimeOffset) Option {
	return func(c *Chip) { c.counter = o }
}

// WithoutGPIO models a cartridge or emulator with no GPIO port: enabling it
// has no effect.
func WithoutGPIO() Option {
	return func(c *Chip) { c.gpio = false }
}

// With12HourMode starts the chip with the 24-hour status bit clear.
func With12HourMode() Option {
	return func(c *Chip) { c.status &^= s3511a.StatusHour24 }
}

// WithPowerLoss starts the chip as if its backup battery had run out.
func WithPowerLoss() Option {
	return func(c *Chip) { c.losePower() }
}

// WithTestMode starts the chip in factory test mode.
func WithTestMode() Option {
	return func(c *Chip) { c.test = true }
}

// WithStickyPowerLoss keeps the power flag set through the next n resets, as
// on a chip whose supply has not settled yet.
func WithStickyPowerLoss(n int) Option {
	return func(c *Chip) { c.stickyPower = n }
}

// WithStickyTestMode keeps the test flag set through the next n resets.
func WithStickyTestMode(n int) Option {
	return func(c *Chip) { c.stickyTest = n }
}

// New returns a chip in 24-hour mode with interrupts enabled, counting from
// 00-01-01 00:00:00.
func New(opts ...Option) *Chip {
	c := &Chip{
		gpio:   true,
		ime:    true,
		status: s3511a.StatusHour24,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Advance lets d pass on the chip, in whole seconds, wrapping after 99-12-31.
// A negative d winds the counter back.
func (c *Chip) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	back := d < 0
	if back {
		d = -d
	}
	secs := s3511a.DateTimeOffset(uint64(d/time.Second) % (uint64(s3511a.MaxDateTimeOffset) + 1))
	if back {
		c.counter = c.counter.Sub(secs)
	} else {
		c.counter = c.counter.Add(secs)
	}
}

// Set moves the chip's counter.
func (c *Chip) Set(o s3511a.DateTimeOffset) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter = o
}

// Counter returns the chip's counter.
func (c *Chip) Counter() s3511a.DateTimeOffset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counter
}

// PowerLoss sets the power flag. Until the next reset the date and time
// registers read as garbage.
func (c *Chip) PowerLoss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.losePower()
}

func (c *Chip) losePower() {
	c.powerLost = true
	c.status |= s3511a.StatusPower
}

// SetTestMode sets or clears the factory test flag.
func (c *Chip) SetTestMode(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.test = on
}

// SetRaw makes date and time reads return raw instead of the counter. A nil
// raw restores normal reads. Time reads return the last three bytes.
func (c *Chip) SetRaw(raw *[7]byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.raw = raw
}

// Status returns the status register.
func (c *Chip) Status() s3511a.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Commands returns every command received, in order.
func (c *Chip) Commands() []s3511a.Command {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]s3511a.Command(nil), c.commands...)
}

// Violations returns the protocol violations seen so far.
func (c *Chip) Violations() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.violations...)
}

func (c *Chip) ReadData() s3511a.Data {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return 0
	}
	d := c.lines &^ s3511a.SIO
	if c.direction == s3511a.Read && c.sio {
		d |= s3511a.SIO
	}
	return d
}

func (c *Chip) WriteData(d s3511a.Data) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.enabled {
		return
	}
	prev := c.lines
	c.lines = d

	if d&s3511a.CS == 0 {
		if prev&s3511a.CS != 0 {
			c.finish()
		}
		return
	}
	if c.ime {
		c.violate("chip selected with interrupts enabled")
	}
	if prev&s3511a.CS == 0 {
		c.phase = phaseCommand
		c.shift, c.nbits = 0, 0
		return
	}
	if prev&s3511a.SCK != 0 || d&s3511a.SCK == 0 {
		return
	}
	c.rising(d&s3511a.SIO != 0)
}

func (c *Chip) WriteDirection(m s3511a.RwMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.direction = m
}

func (c *Chip) WriteEnable(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gpio {
		c.enabled = on
	}
}

func (c *Chip) ReadEnable() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.enabled
}

func (c *Chip) InterruptsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ime
}

func (c *Chip) SetInterruptsEnabled(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ime = on
}

// rising handles one rising edge of SCK while the chip is selected.
func (c *Chip) rising(bit bool) {
	switch c.phase {
	case phaseCommand:
		if c.direction != s3511a.Write {
			c.violate("command clocked with SIO as input")
		}
		c.shift <<= 1
		if bit {
			c.shift |= 1
		}
		c.nbits++
		if c.nbits == 8 {
			c.command(s3511a.Command(c.shift))
		}
	case phaseRead:
		if c.direction != s3511a.Read {
			c.violate("data read with SIO as output")
		}
		if len(c.out) == 0 {
			c.sio = false
			return
		}
		c.sio = c.out[0]>>c.outBit&1 != 0
		c.outBit++
		if c.outBit == 8 {
			c.out, c.outBit = c.out[1:], 0
		}
	case phaseWrite:
		c.shift >>= 1
		if bit {
			c.shift |= 0x80
		}
		c.nbits++
		if c.nbits == 8 {
			c.written(c.shift)
		}
	case phaseDone:
		c.violate("extra clock after transfer")
	}
}

func (c *Chip) command(cmd s3511a.Command) {
	c.cmd = cmd
	c.commands = append(c.commands, cmd)
	c.shift, c.nbits = 0, 0
	c.out, c.outBit = nil, 0
	if cmd&0xf0 != fixedCode {
		c.violate("bad fixed code in command")
		c.phase = phaseDone
		return
	}
	switch cmd {
	case s3511a.Reset:
		c.reset()
		c.phase = phaseDone
	case s3511a.WriteStatus:
		c.phase = phaseWrite
	case s3511a.ReadStatus:
		c.out = []byte{byte(c.status)}
		c.phase = phaseRead
	case s3511a.ReadDateTime:
		raw := c.dateTime()
		c.out = raw[:]
		c.phase = phaseRead
	case s3511a.ReadTime:
		raw := c.dateTime()
		c.out = raw[4:]
		c.phase = phaseRead
	default:
		c.violate("unsupported command")
		c.phase = phaseDone
	}
}

func (c *Chip) reset() {
	c.counter = 0
	c.status = 0
	if c.powerLost && c.stickyPower > 0 {
		c.stickyPower--
		c.status = s3511a.StatusPower
	} else {
		c.powerLost = false
	}
	if c.test && c.stickyTest > 0 {
		c.stickyTest--
	} else {
		c.test = false
	}
}

func (c *Chip) written(b byte) {
	c.shift, c.nbits = 0, 0
	if c.cmd == s3511a.WriteStatus {
		power := c.status & s3511a.StatusPower
		c.status = s3511a.Status(b&^unusedStatus)&^s3511a.StatusPower | power
	}
	c.phase = phaseDone
}

func (c *Chip) finish() {
	if c.phase == phaseCommand && c.nbits != 0 {
		c.violate("chip deselected mid-command")
	}
	if c.phase == phaseWrite && c.nbits != 0 {
		c.violate("chip deselected mid-byte")
	}
	c.phase = phaseIdle
	c.sio = false
}

// dateTime encodes the counter the way the chip reports it.
func (c *Chip) dateTime() [7]byte {
	switch {
	case c.raw != nil:
		return *c.raw
	case c.powerLost:
		return [7]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	}
	y, mo, d, h, mi, s := c.counter.Calendar()
	weekday := Weekday(c.counter)
	var pm bool
	if !c.status.Has(s3511a.StatusHour24) {
		pm = h >= 12
		h %= 12
	}
	raw := s3511a.EncodeDateTime(y, mo, d, weekday, h, mi, s)
	if pm {
		raw[4] |= flagBit
	}
	if c.test {
		raw[6] |= flagBit
	}
	return raw
}

// Weekday is the day of the week the chip reports for o, 0 being Sunday.
func Weekday(o s3511a.DateTimeOffset) uint8 {
	return uint8((firstWeekday + o.Days()) % 7)
}

func (c *Chip) violate(msg string) {
	c.violations = append(c.violations, msg)
}
