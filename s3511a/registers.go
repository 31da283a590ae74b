package s3511a

// Register addresses on the GBA cartridge bus and in I/O memory.
const (
	AddrData      = 0x080000C4 // I/O port data
	AddrDirection = 0x080000C6 // I/O port direction
	AddrControl   = 0x080000C8 // I/O port control, 1 = readable and writable
	AddrIME       = 0x04000208 // interrupt master enable
)

// Command is sent to the chip at the start of every transaction. The low bit
// selects the data direction: set for reads, clear for writes.
type Command uint8

const (
	Reset        Command = 0x60
	WriteStatus  Command = 0x62
	ReadStatus   Command = 0x63
	ReadDateTime Command = 0x65
	ReadTime     Command = 0x67
)

func (c Command) reads() bool { return c&1 != 0 }

// RwMode is written to the direction register. SCK and CS are always outputs;
// only SIO flips between input and output.
type RwMode uint16

const (
	Read  RwMode = 5 // SIO input
	Write RwMode = 7 // SIO output
)

// Data is the value of the data register. Only the low three bits are wired.
type Data uint16

const (
	SCK Data = 1 << 0 // serial clock
	SIO Data = 1 << 1 // serial data in/out
	CS  Data = 1 << 2 // chip select
)

// Status is the chip's status register. All bits except StatusPower are
// writable; bits 0, 2 and 4 are unused and never set.
type Status uint8

const (
	StatusPower  Status = 0b1000_0000 // backup power was lost
	StatusHour24 Status = 0b0100_0000 // 24-hour mode

	statusUnused Status = 0b0001_0101
)

func statusOf(b uint8) (Status, error) {
	if Status(b)&statusUnused != 0 {
		return 0, &ValueError{Err: ErrInvalidStatus, Value: b}
	}
	return Status(b), nil
}

// Has reports whether every bit of flag is set.
func (s Status) Has(flag Status) bool {
	return s&flag == flag
}

// raw field layout of a ReadDateTime response
const (
	fieldYear = iota
	fieldMonth
	fieldDay
	fieldWeekday
	fieldHour
	fieldMinute
	fieldSecond

	dateTimeLen = 7
	timeLen     = 3
)

// top bits of the hour and second fields
const (
	hourPM     = 0x80
	secondTest = 0x80
)
