package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	xlog "github.com/openmining/omf/internal/log"
	"github.com/openmining/omf/pkg/omf"
	"github.com/openmining/omf/pkg/omf/omffile"
)

// Env carries tool settings read from the environment.
type Env struct {
	LogLevel string `env:"LOG_LEVEL" env-default:"warn"`
}

const usage = `Usage: omf <command> [arguments]

Commands:
  info <file>       print the project and element summaries of an archive
  validate <file>   validate an archive and report problems
  repack <in> <out> read an archive and write it back out
`

func main() {
	var env Env
	if err := cleanenv.ReadEnv(&env); err != nil {
		fmt.Fprintf(os.Stderr, "failed to read environment: %v\n", err)
		os.Exit(1)
	}
	xlog.Configure(xlog.Config{Level: env.LogLevel, Service: "omf"})

	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		flag.Usage()
		os.Exit(2)
	}

	var err error
	switch args[0] {
	case "info":
		err = runInfo(args[1:])
	case "validate":
		err = runValidate(args[1:])
	case "repack":
		err = runRepack(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", args[0], usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "omf: %v\n", err)
		os.Exit(1)
	}
}

// archiveInfo is the JSON document printed by the info command.
type archiveInfo struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Origin      [3]float64    `json:"origin"`
	Elements    []elementInfo `json:"elements"`
}

type elementInfo struct {
	Name       string         `json:"name"`
	Schema     string         `json:"schema"`
	Attributes int            `json:"attributes"`
	Locations  map[string]int `json:"locations"`
}

func runInfo(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("info expects exactly one archive path")
	}

	project, err := omffile.Load(context.Background(), args[0])
	if err != nil {
		return err
	}

	info := archiveInfo{
		Name:        project.Name,
		Description: project.Description,
		Origin:      project.Origin,
		Elements:    make([]elementInfo, 0, len(project.Elements)),
	}
	for _, e := range project.Elements {
		locations := make(map[string]int)
		for _, loc := range e.ValidLocations() {
			locations[string(loc)] = e.LocationLength(loc)
		}
		info.Elements = append(info.Elements, elementInfo{
			Name:       e.Base().Name,
			Schema:     e.Schema(),
			Attributes: len(e.Base().Attributes),
			Locations:  locations,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}

func runValidate(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("validate expects exactly one archive path")
	}

	// Load validates structure, payload presence and every element
	if _, err := omffile.Load(context.Background(), args[0]); err != nil {
		return err
	}

	fmt.Printf("%s: valid\n", args[0])
	return nil
}

func runRepack(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("repack expects an input and an output path")
	}

	ctx := context.Background()
	project, err := omffile.Load(ctx, args[0])
	if err != nil {
		return err
	}

	if err := omffile.Save(ctx, project, args[1]); err != nil {
		return err
	}

	var payloads int64
	for _, p := range project.Payloads() {
		if a, ok := p.(*omf.Array); ok {
			payloads += int64(a.Size())
		}
	}
	logger := xlog.Base()
	logger.Info().
		Str("input", args[0]).
		Str("output", args[1]).
		Int("elements", len(project.Elements)).
		Int64("array_bytes", payloads).
		Msg("repacked archive")

	return nil
}
