package s3511a

// Port gives access to the cartridge GPIO registers the chip is wired to and
// to the interrupt master enable flag. On hardware this is GBA; tests use a
// simulated register file.
type Port interface {
	ReadData() Data
	WriteData(Data)
	WriteDirection(RwMode)
	WriteEnable(bool)
	ReadEnable() bool
	InterruptsEnabled() bool
	SetInterruptsEnabled(bool)
}

// transport runs one serial exchange at a time. The chip has no way to
// transfer more than one bit per clock, so every exchange runs with
// interrupts disabled to keep handlers from seeing a half-sent stream.
type transport struct {
	port Port
}

// exchange sends cmd and then either reads len(buf) bytes into buf (read
// commands) or writes buf (write commands).
func (t *transport) exchange(cmd Command, buf []byte) {
	ime := t.port.InterruptsEnabled()
	t.port.SetInterruptsEnabled(false)

	t.port.WriteData(SCK)
	t.port.WriteData(CS | SCK)
	t.port.WriteDirection(Write)
	t.sendCommand(cmd)

	if cmd.reads() {
		t.port.WriteDirection(Read)
		for i := range buf {
			buf[i] = t.readByte()
		}
	} else {
		for _, b := range buf {
			t.writeByte(b)
		}
	}

	t.port.WriteData(SCK)
	t.port.WriteData(SCK)

	t.port.SetInterruptsEnabled(ime)
}

// sendCommand clocks out cmd highest bit first. Each bit is held for three
// writes before the rising edge of SCK.
func (t *transport) sendCommand(cmd Command) {
	bits := uint16(cmd) << 1
	for i := 7; i >= 0; i-- {
		bit := Data(bits>>i) & SIO
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | SCK | bit)
	}
}

// readByte clocks in a byte lowest bit first, sampling SIO after the rising
// edge.
func (t *transport) readByte() byte {
	var b byte
	for i := 0; i < 8; i++ {
		t.port.WriteData(CS)
		t.port.WriteData(CS)
		t.port.WriteData(CS)
		t.port.WriteData(CS)
		t.port.WriteData(CS)
		t.port.WriteData(CS | SCK)
		b = b>>1 | byte(t.port.ReadData()&SIO)>>1<<7
	}
	return b
}

// writeByte clocks out b lowest bit first.
func (t *transport) writeByte(b byte) {
	for i := 0; i < 8; i++ {
		bit := (Data(b>>i) << 1) & SIO
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | bit)
		t.port.WriteData(CS | SCK | bit)
	}
}

func (t *transport) reset() {
	t.exchange(Reset, nil)
}

func (t *transport) readStatus() (Status, error) {
	var buf [1]byte
	t.exchange(ReadStatus, buf[:])
	return statusOf(buf[0])
}

func (t *transport) writeStatus(s Status) {
	buf := [1]byte{byte(s)}
	t.exchange(WriteStatus, buf[:])
}

func (t *transport) readDateTime() (DateTimeOffset, error) {
	var buf [dateTimeLen]byte
	t.exchange(ReadDateTime, buf[:])
	return decodeDateTime(&buf)
}

func (t *transport) readTime() (TimeOffset, error) {
	var buf [timeLen]byte
	t.exchange(ReadTime, buf[:])
	hour, minute, second, err := decodeTime(buf[0], buf[1], buf[2])
	if err != nil {
		return 0, err
	}
	return newTimeOffset(hour, minute, second), nil
}

// testMode does a throwaway time read and reports the factory test flag.
func (t *transport) testMode() bool {
	var buf [timeLen]byte
	t.exchange(ReadTime, buf[:])
	return buf[2]&secondTest != 0
}

// enable turns on GPIO access and reports whether the port accepted it.
func (t *transport) enable() bool {
	t.port.WriteEnable(true)
	return t.port.ReadEnable()
}
