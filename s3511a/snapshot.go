package s3511a

import (
	"encoding/binary"
	"errors"
	"time"

	"cloud.google.com/go/civil"
)

// Snapshot is the state a Clock needs to survive a power cycle of the host,
// typically stored in cartridge SRAM next to a save game.
type Snapshot struct {
	BaseDate  civil.Date     `json:"base_date"`
	RTCOffset DateTimeOffset `json:"rtc_offset"`
}

// SnapshotSize is the length of a binary-encoded Snapshot.
const SnapshotSize = 8

var errSnapshotSize = errors.New("s3511a: snapshot must be 8 bytes")

// Snapshot returns the Clock's anchor.
func (c *Clock) Snapshot() Snapshot {
	return Snapshot{BaseDate: c.baseDate, RTCOffset: c.rtcOffset}
}

// MarshalBinary encodes s as year (uint16), month, day, offset (uint32),
// little endian.
func (s Snapshot) MarshalBinary() ([]byte, error) {
	if !validDate(s.BaseDate) {
		return nil, ErrInvalidDateTime
	}
	if s.RTCOffset > MaxDateTimeOffset {
		return nil, ErrOverflow
	}
	buf := make([]byte, SnapshotSize)
	binary.LittleEndian.PutUint16(buf[0:], uint16(s.BaseDate.Year))
	buf[2] = byte(s.BaseDate.Month)
	buf[3] = byte(s.BaseDate.Day)
	binary.LittleEndian.PutUint32(buf[4:], uint32(s.RTCOffset))
	return buf, nil
}

func (s *Snapshot) UnmarshalBinary(data []byte) error {
	if len(data) != SnapshotSize {
		return errSnapshotSize
	}
	d := civil.Date{
		Year:  int(binary.LittleEndian.Uint16(data[0:])),
		Month: time.Month(data[2]),
		Day:   int(data[3]),
	}
	if !validDate(d) {
		return ErrInvalidDateTime
	}
	offset := DateTimeOffset(binary.LittleEndian.Uint32(data[4:]))
	if offset > MaxDateTimeOffset {
		return ErrOverflow
	}
	s.BaseDate = d
	s.RTCOffset = offset
	return nil
}

// Restore rebuilds a Clock from a Snapshot taken earlier on the same
// cartridge.
//
// Unlike New it never resets the chip, since a reset restarts the counter the
// snapshot's offset refers to. A chip that lost backup power has restarted it
// anyway, which is reported as ErrPowerFailure; callers then fall back to New.
func Restore(port Port, s Snapshot) (*Clock, error) {
	if !validDate(s.BaseDate) {
		return nil, ErrInvalidDateTime
	}
	if s.RTCOffset > MaxDateTimeOffset {
		return nil, ErrOverflow
	}
	t := transport{port: port}
	if !t.enable() {
		return nil, ErrNotEnabled
	}

	status, err := t.readStatus()
	if err != nil {
		return nil, err
	}
	if status.Has(StatusPower) {
		l("s3511a: backup power was lost, snapshot is stale")
		return nil, ErrPowerFailure
	}
	if t.testMode() {
		return nil, ErrTestMode
	}
	if !status.Has(StatusHour24) {
		l("s3511a: switching to 24-hour mode")
		t.writeStatus(status | StatusHour24)
	}

	return &Clock{t: t, baseDate: s.BaseDate, rtcOffset: s.RTCOffset}, nil
}
