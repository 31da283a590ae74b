package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/shlex"

	"github.com/ajanata/gbartc/s3511a"
	"github.com/ajanata/gbartc/s3511a/sim"
)

// chipLayout is how chip dates are written on the command line. Only the last
// two digits of the year reach the chip.
const chipLayout = "06-01-02T15:04:05"

// session is a Clock on a simulated chip, plus the SRAM a game would keep its
// snapshot in.
type session struct {
	chip  *sim.Chip
	clock *s3511a.Clock
	out   io.Writer
	sram  []byte
}

func newSession(chip *sim.Chip, anchor civil.DateTime, out io.Writer) (*session, error) {
	clock, err := s3511a.New(chip, anchor)
	if err != nil {
		return nil, err
	}
	return &session{chip: chip, clock: clock, out: out}, nil
}

// run executes r line by line. Driver errors are reported and the script
// carries on; malformed lines stop it.
func (s *session) run(r io.Reader) error {
	sc := bufio.NewScanner(r)
	for n := 1; sc.Scan(); n++ {
		args, err := shlex.Split(sc.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w: %v", n, ErrScript, err)
		}
		if len(args) == 0 {
			continue
		}
		err = s.exec(args)
		switch {
		case errors.Is(err, ErrScript):
			return fmt.Errorf("line %d: %w", n, err)
		case err != nil:
			fmt.Fprintf(s.out, "error [%s]: %v\n", s3511a.KindOf(err), err)
		}
	}
	return sc.Err()
}

func (s *session) exec(args []string) error {
	switch args[0] {
	case "advance":
		if err := arity(args, 1); err != nil {
			return err
		}
		d, err := time.ParseDuration(args[1])
		if err != nil || d < 0 {
			return fmt.Errorf("%w: bad duration %q", ErrScript, args[1])
		}
		s.chip.Advance(d)

	case "read":
		dt, err := s.clock.ReadDateTime()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, dt)

	case "read-date":
		d, err := s.clock.ReadDate()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, d)

	case "read-time":
		t, err := s.clock.ReadTime()
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, t)

	case "write":
		if err := arity(args, 1); err != nil {
			return err
		}
		dt, err := civil.ParseDateTime(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		return s.clock.WriteDateTime(dt)

	case "write-date":
		if err := arity(args, 1); err != nil {
			return err
		}
		d, err := civil.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		return s.clock.WriteDate(d)

	case "write-time":
		if err := arity(args, 1); err != nil {
			return err
		}
		t, err := civil.ParseTime(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		return s.clock.WriteTime(t)

	case "new":
		if err := arity(args, 1); err != nil {
			return err
		}
		dt, err := civil.ParseDateTime(args[1])
		if err != nil {
			return fmt.Errorf("%w: %v", ErrScript, err)
		}
		clock, err := s3511a.New(s.chip, dt)
		if err != nil {
			return err
		}
		s.clock = clock

	case "power-loss":
		s.chip.PowerLoss()

	case "test-mode":
		if err := arity(args, 1); err != nil {
			return err
		}
		switch args[1] {
		case "on":
			s.chip.SetTestMode(true)
		case "off":
			s.chip.SetTestMode(false)
		default:
			return fmt.Errorf("%w: test-mode takes on or off", ErrScript)
		}

	case "status":
		st := s.chip.Status()
		fmt.Fprintf(s.out, "power=%t hour24=%t\n", st.Has(s3511a.StatusPower), st.Has(s3511a.StatusHour24))

	case "counter":
		o := s.chip.Counter()
		fmt.Fprintf(s.out, "%s (%d)\n", o, o)

	case "save":
		snap := s.clock.Snapshot()
		data, err := snap.MarshalBinary()
		if err != nil {
			return err
		}
		s.sram = data
		js, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s\n", js)

	case "restore":
		if s.sram == nil {
			return fmt.Errorf("%w: nothing saved", ErrScript)
		}
		var snap s3511a.Snapshot
		if err := snap.UnmarshalBinary(s.sram); err != nil {
			return err
		}
		clock, err := s3511a.Restore(s.chip, snap)
		if err != nil {
			return err
		}
		s.clock = clock

	default:
		return fmt.Errorf("%w: unknown command %q", ErrScript, args[0])
	}
	return nil
}

func arity(args []string, n int) error {
	if len(args)-1 != n {
		return fmt.Errorf("%w: %s takes %d argument(s)", ErrScript, args[0], n)
	}
	return nil
}

func parseOffset(s string) (s3511a.DateTimeOffset, error) {
	t, err := time.Parse(chipLayout, s)
	if err != nil {
		return 0, err
	}
	return s3511a.NewDateTimeOffset(t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}
