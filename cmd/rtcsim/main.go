// Command rtcsim drives an S-3511A Clock against a simulated chip, for trying
// out anchoring and snapshot behaviour without a cartridge.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"cloud.google.com/go/civil"
	"github.com/alecthomas/kong"

	"github.com/ajanata/gbartc/s3511a"
	"github.com/ajanata/gbartc/s3511a/sim"
)

// ErrScript indicates a script line could not be executed.
var ErrScript = errors.New("script error")

// CLI represents the command-line interface structure.
type CLI struct {
	Run    RunCmd    `cmd:"" help:"Run a script of clock commands against a simulated chip."`
	Offset OffsetCmd `cmd:"" help:"Convert between chip dates and chip counter values."`
}

// RunCmd runs a script.
type RunCmd struct {
	Script     string `arg:"" optional:"" type:"existingfile" help:"Script file; standard input if omitted."`
	Anchor     string `help:"Date and time the clock starts at (2006-01-02T15:04:05); defaults to now."`
	Start      string `help:"Chip counter at power-on (06-01-02T15:04:05)." default:"00-01-01T00:00:00"`
	PowerLoss  bool   `help:"Start the chip with its power flag set."`
	TwelveHour bool   `help:"Start the chip in 12-hour mode."`
	Verbose    bool   `short:"v" help:"Log driver decisions to standard error."`
}

// Run executes the run command.
func (c *RunCmd) Run() error {
	anchor := civil.DateTimeOf(time.Now())
	if c.Anchor != "" {
		var err error
		anchor, err = civil.ParseDateTime(c.Anchor)
		if err != nil {
			return fmt.Errorf("invalid anchor: %w", err)
		}
	}
	start, err := parseOffset(c.Start)
	if err != nil {
		return fmt.Errorf("invalid start: %w", err)
	}

	opts := []sim.Option{sim.WithStart(start)}
	if c.PowerLoss {
		opts = append(opts, sim.WithPowerLoss())
	}
	if c.TwelveHour {
		opts = append(opts, sim.With12HourMode())
	}
	if c.Verbose {
		s3511a.Log = writerLogger{os.Stderr}
	}

	in := io.Reader(os.Stdin)
	if c.Script != "" {
		f, err := os.Open(c.Script)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	s, err := newSession(sim.New(opts...), anchor, os.Stdout)
	if err != nil {
		return fmt.Errorf("failed to bring up clock: %w", err)
	}
	return s.run(in)
}

// OffsetCmd converts a chip date to its counter value or back.
type OffsetCmd struct {
	Value string `arg:"" help:"Chip date (06-01-02T15:04:05) or counter value."`
}

// Run executes the offset command.
func (c *OffsetCmd) Run() error {
	return c.convert(os.Stdout)
}

func (c *OffsetCmd) convert(w io.Writer) error {
	if n, err := strconv.ParseUint(c.Value, 10, 32); err == nil {
		o := s3511a.DateTimeOffset(n)
		if o > s3511a.MaxDateTimeOffset {
			return fmt.Errorf("%w: %d is past %d", s3511a.ErrOverflow, n, s3511a.MaxDateTimeOffset)
		}
		fmt.Fprintf(w, "%s\n", o)
		return nil
	}
	o, err := parseOffset(c.Value)
	if err != nil {
		return err
	}
	y, mo, d, h, mi, s := o.Calendar()
	raw := s3511a.EncodeDateTime(y, mo, d, sim.Weekday(o), h, mi, s)
	fmt.Fprintf(w, "offset: %d\n", o)
	fmt.Fprintf(w, "raw:    % x\n", raw[:])
	return nil
}

// writerLogger is an s3511a.Logger writing lines to w.
type writerLogger struct {
	w io.Writer
}

func (l writerLogger) Println(msg string) error {
	_, err := fmt.Fprintln(l.w, msg)
	return err
}

func main() {
	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("rtcsim"),
		kong.Description("Drive a Game Boy Advance cartridge clock against a simulated S-3511A."),
		kong.UsageOnError(),
	)

	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
