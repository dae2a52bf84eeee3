// cmd/solarctl/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/tamzrod/solarlink/internal/codec"
	"github.com/tamzrod/solarlink/internal/config"
	"github.com/tamzrod/solarlink/internal/plan"
	"github.com/tamzrod/solarlink/internal/poll"
	"github.com/tamzrod/solarlink/internal/registry"
	"github.com/tamzrod/solarlink/internal/session"
	sessionmodbus "github.com/tamzrod/solarlink/internal/session/modbus"
)

func main() {
	app := &cli.App{
		Name:  "solarctl",
		Usage: "Typed register access to a solar inverter over Modbus",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{"SOLARCTL_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "endpoint",
				Usage:   "Modbus TCP address (host:port) or serial device path",
				EnvVars: []string{"SOLARCTL_ENDPOINT"},
			},
			&cli.BoolFlag{
				Name:    "serial",
				Usage:   "Use Modbus RTU over a serial device",
				EnvVars: []string{"SOLARCTL_SERIAL"},
			},
			&cli.UintFlag{
				Name:    "unit",
				Usage:   "Modbus unit id",
				EnvVars: []string{"SOLARCTL_UNIT"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Usage:   "Total per-operation timeout (wait plus execute)",
				EnvVars: []string{"SOLARCTL_TIMEOUT"},
				Value:   5 * time.Second,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Read one or more logical registers",
				ArgsUsage: "<name>...",
				Action:    runGet,
			},
			{
				Name:      "set",
				Usage:     "Write a logical register",
				ArgsUsage: "<name> <value>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "verify",
						Usage: "Read the register back and compare after writing",
					},
				},
				Action: runSet,
			},
			{
				Name:  "watch",
				Usage: "Poll registers on an interval and print snapshots",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Usage: "Poll interval",
						Value: 10 * time.Second,
					},
				},
				ArgsUsage: "<name>...",
				Action:    runWatch,
			},
			{
				Name:   "registers",
				Usage:  "List the built-in register catalog",
				Action: runRegisters,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// loadConfig merges the optional YAML file with command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{}

	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if ep := c.String("endpoint"); ep != "" {
		cfg.Inverter.Endpoint = ep
	}
	if c.Bool("serial") {
		cfg.Inverter.Serial = true
	}
	if c.IsSet("unit") {
		cfg.Inverter.UnitID = uint8(c.Uint("unit"))
	}

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	config.Normalize(cfg)
	return cfg, nil
}

func openSession(c *cli.Context) (*session.Session, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	inv := cfg.Inverter

	dial := func() (session.Transport, error) {
		return sessionmodbus.New(sessionmodbus.Config{
			Endpoint: inv.Endpoint,
			Serial:   inv.Serial,
			BaudRate: inv.BaudRate,
			UnitID:   inv.UnitID,
			Timeout:  time.Duration(inv.TimeoutMs) * time.Millisecond,
		})
	}

	return session.Connect(session.Config{
		Dial: dial,
		Unit: inv.UnitID,
		Limits: plan.Limits{
			MaxPerRequest: inv.Limits.MaxRegistersPerRequest,
			CoalesceGap:   inv.Limits.CoalesceGap,
		},
		Retry: session.Policy{
			Attempts:  inv.Retry.Attempts,
			BaseDelay: time.Duration(inv.Retry.BaseDelayMs) * time.Millisecond,
			MaxDelay:  time.Duration(inv.Retry.MaxDelayMs) * time.Millisecond,
		},
	})
}

func runGet(c *cli.Context) error {
	names := c.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("get: at least one register name required")
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	vals, err := s.GetMultiple(ctx, names)
	if err != nil {
		return err
	}
	printValues(vals)
	return nil
}

func runSet(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return fmt.Errorf("set: expected <name> <value>")
	}
	name, raw := c.Args().Get(0), c.Args().Get(1)

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.Table().Lookup(name)
	if err != nil {
		return err
	}
	value, err := parseValue(d, raw)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	if c.Bool("verify") {
		if err := s.SetVerified(ctx, name, value); err != nil {
			return err
		}
		log.Printf("wrote and verified %s = %s", name, raw)
		return nil
	}
	if err := s.Set(ctx, name, value); err != nil {
		return err
	}
	log.Printf("wrote %s = %s", name, raw)
	return nil
}

func runWatch(c *cli.Context) error {
	names := c.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("watch: at least one register name required")
	}

	s, err := openSession(c)
	if err != nil {
		return err
	}
	defer s.Close()

	p, err := poll.New(poll.Config{
		Names:    names,
		Interval: c.Duration("interval"),
		Timeout:  c.Duration("timeout"),
	}, s)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan poll.Snapshot)
	go p.Run(ctx, out)

	log.Printf("polling %d register(s) every %v", len(names), c.Duration("interval"))
	for snap := range out {
		if snap.Err != nil {
			log.Printf("poll failed: %v", snap.Err)
			continue
		}
		log.Printf("snapshot at %s", snap.At.Format(time.RFC3339))
		printValues(snap.Values)
	}
	return nil
}

func runRegisters(c *cli.Context) error {
	table := registry.DefaultTable()
	for _, name := range table.Names() {
		d, err := table.Lookup(name)
		if err != nil {
			return err
		}
		access := "ro"
		if d.Writable {
			access = "rw"
		}
		fmt.Printf("%-45s addr=%-5d len=%-2d %-9s %-5s %s\n",
			d.Name, d.Address, d.Length, d.Kind, access, d.Unit)
	}
	return nil
}

func printValues(vals map[string]codec.Value) {
	names := make([]string, 0, len(vals))
	for name := range vals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("%s = %s\n", name, vals[name])
	}
}

// parseValue maps a command-line string onto the descriptor's domain.
func parseValue(d registry.Descriptor, raw string) (any, error) {
	switch d.Kind {
	case registry.Unsigned, registry.Signed:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("set: %q is not numeric: %w", raw, err)
		}
		return f, nil
	case registry.Enum:
		if code, err := strconv.ParseUint(raw, 0, 16); err == nil {
			return uint16(code), nil
		}
		return raw, nil
	case registry.String:
		return raw, nil
	case registry.Timestamp:
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("set: %q is not an RFC3339 timestamp: %w", raw, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("set: %s registers cannot be written from the command line", d.Kind)
}
