// Command tmx reads Translation Memory eXchange files: it dumps units as
// JSON lines, checks files, runs XPath selections and loads units into a
// SQLite translation memory.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/tmxparser/core/errors"
	"github.com/FocuswithJustin/tmxparser/core/source"
	"github.com/FocuswithJustin/tmxparser/core/sqlite"
	"github.com/FocuswithJustin/tmxparser/core/tmx"
	"github.com/FocuswithJustin/tmxparser/core/xml"
	"github.com/FocuswithJustin/tmxparser/internal/logging"
	"github.com/FocuswithJustin/tmxparser/internal/query"
	"github.com/FocuswithJustin/tmxparser/internal/tmstore"
)

const version = "0.1.0"

// Globals holds the flags shared by every command.
type Globals struct {
	Encoding  string `help:"Force the input encoding, overriding the XML declaration (e.g. ISO-8859-1)" env:"TMX_ENCODING"`
	Strict    bool   `help:"Treat stray closing tags and stray text as errors" env:"TMX_STRICT"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error" env:"TMX_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json" env:"TMX_LOG_FORMAT"`

	out io.Writer `kong:"-"`
}

// CLI defines the command-line interface for tmx.
type CLI struct {
	Globals `embed:""`

	Dump    DumpCmd    `cmd:"" help:"Print units as JSON lines"`
	Count   CountCmd   `cmd:"" help:"Count units"`
	Header  HeaderCmd  `cmd:"" help:"Print the TMX header as JSON"`
	Check   CheckCmd   `cmd:"" help:"Check files for well-formedness and structure"`
	Select  SelectCmd  `cmd:"" help:"Print elements matched by an XPath expression"`
	Import  ImportCmd  `cmd:"" help:"Import units into a translation memory database"`
	Get     GetCmd     `cmd:"" help:"Print stored units with the given tuid"`
	Imports ImportsCmd `cmd:"" help:"List imports recorded in a translation memory database"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

func (g *Globals) stdout() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

func (g *Globals) document(path string, opts ...tmx.Option) *tmx.Document {
	opts = append([]tmx.Option{
		tmx.WithEncoding(g.Encoding),
		tmx.WithStrict(g.Strict),
		tmx.WithLogger(logging.GetLogger()),
	}, opts...)
	return tmx.Open(path, opts...)
}

func (g *Globals) initLogging() error {
	level, err := logging.ParseLevel(g.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(g.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

// DumpCmd prints every unit as one JSON object per line.
type DumpCmd struct {
	Path  string `arg:"" help:"TMX file (plain, .gz or .xz)" type:"existingfile"`
	Where string `help:"Only print units matching this filter, e.g. 'locale = \"de-DE\"'" short:"w"`
	Hash  bool   `help:"Add a BLAKE3 fingerprint to every unit"`
}

type dumpedUnit struct {
	Fingerprint string `json:"fingerprint,omitempty"`
	*tmx.Unit
}

func (c *DumpCmd) Run(g *Globals) error {
	filter, err := query.Parse(c.Where)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(g.stdout())
	enc.SetEscapeHTML(false)
	for unit, err := range g.document(c.Path).Units() {
		if err != nil {
			return err
		}
		if !filter.Match(unit) {
			continue
		}
		out := dumpedUnit{Unit: unit}
		if c.Hash {
			out.Fingerprint = tmx.Fingerprint(unit)
		}
		if err := enc.Encode(out); err != nil {
			return fmt.Errorf("failed to write unit %q: %w", unit.TUID, err)
		}
	}
	return nil
}

// CountCmd prints the number of units.
type CountCmd struct {
	Path  string `arg:"" help:"TMX file (plain, .gz or .xz)" type:"existingfile"`
	Where string `help:"Only count units matching this filter" short:"w"`
}

func (c *CountCmd) Run(g *Globals) error {
	filter, err := query.Parse(c.Where)
	if err != nil {
		return err
	}

	n := 0
	err = g.document(c.Path).Each(func(u *tmx.Unit) error {
		if filter.Match(u) {
			n++
		}
		return nil
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(g.stdout(), n)
	return nil
}

// HeaderCmd prints the <header> element.
type HeaderCmd struct {
	Path string `arg:"" help:"TMX file (plain, .gz or .xz)" type:"existingfile"`
}

func (c *HeaderCmd) Run(g *Globals) error {
	var header *tmx.Header
	doc := g.document(c.Path, tmx.WithHeaderHandler(func(h *tmx.Header) error {
		header = h
		return tmx.ErrStop
	}))
	if err := doc.Each(func(*tmx.Unit) error { return tmx.ErrStop }); err != nil {
		return err
	}
	if header == nil {
		return errors.NewNotFound("header", c.Path)
	}

	enc := json.NewEncoder(g.stdout())
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(header)
}

// CheckCmd checks that files are well-formed XML and parse as TMX.
type CheckCmd struct {
	Paths []string `arg:"" help:"TMX files to check" type:"existingfile"`
}

func (c *CheckCmd) Run(g *Globals) error {
	out := g.stdout()
	failed := 0
	for _, path := range c.Paths {
		if err := g.check(path); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		n := 0
		if err := g.document(path).Each(func(*tmx.Unit) error { n++; return nil }); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s (%d units)\n", path, n)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(c.Paths))
	}
	return nil
}

func (g *Globals) check(path string) error {
	rc, err := source.Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	result := xml.Validate(rc)
	if result.Valid {
		return nil
	}
	e := result.Errors[0]
	pe := errors.NewParse("XML", path, e.Message)
	pe.Line, pe.Column = e.Line, e.Column
	return pe
}

// SelectCmd streams elements matched by an XPath expression.
type SelectCmd struct {
	Path   string `arg:"" help:"TMX or other XML file (plain, .gz or .xz)" type:"existingfile"`
	XPath  string `name:"xpath" help:"Absolute path of the elements to stream" default:"/tmx/body/tu"`
	Filter string `help:"XPath predicate evaluated against each element, e.g. \"tuv[@xml:lang='de-DE']\"" short:"f"`
	Count  bool   `help:"Print only the number of matches"`
}

func (c *SelectCmd) Run(g *Globals) error {
	rc, err := source.Open(c.Path)
	if err != nil {
		return err
	}
	defer rc.Close()

	out := g.stdout()
	if c.Count {
		n, err := xml.Count(rc, c.XPath, c.Filter)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, n)
		return nil
	}
	return xml.Select(rc, c.XPath, c.Filter, func(n *xml.Node) error {
		_, err := fmt.Fprintln(out, n.OutputXML())
		return err
	})
}

// ImportCmd loads TMX files into a translation memory.
type ImportCmd struct {
	Paths []string `arg:"" help:"TMX files to import" type:"existingfile"`
	DB    string   `name:"db" help:"Translation memory database" required:"" env:"TMX_DB" type:"path"`
}

func (c *ImportCmd) Run(g *Globals) error {
	ctx := context.Background()
	store, err := tmstore.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	out := g.stdout()
	for _, path := range c.Paths {
		rec, err := store.Import(ctx, g.document(path), path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		fmt.Fprintf(out, "%s %s: %d units, %d duplicates skipped\n", rec.ID, path, rec.Units, rec.Skipped)
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d units in %s\n", total, c.DB)
	return nil
}

// GetCmd prints stored units.
type GetCmd struct {
	TUID string `arg:"" help:"Translation unit id"`
	DB   string `name:"db" help:"Translation memory database" required:"" env:"TMX_DB" type:"existingfile"`
}

func (c *GetCmd) Run(g *Globals) error {
	ctx := context.Background()
	store, err := tmstore.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	units, err := store.Get(ctx, c.TUID)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(g.stdout())
	enc.SetEscapeHTML(false)
	for _, u := range units {
		if err := enc.Encode(u); err != nil {
			return err
		}
	}
	return nil
}

// ImportsCmd lists recorded imports.
type ImportsCmd struct {
	DB string `name:"db" help:"Translation memory database" required:"" env:"TMX_DB" type:"existingfile"`
}

func (c *ImportsCmd) Run(g *Globals) error {
	ctx := context.Background()
	store, err := tmstore.Open(ctx, c.DB)
	if err != nil {
		return err
	}
	defer store.Close()

	imports, err := store.Imports(ctx)
	if err != nil {
		return err
	}
	out := g.stdout()
	for _, rec := range imports {
		fmt.Fprintf(out, "%s  %s  %-6d %-6d %s\n", rec.ID, rec.StartedAt.Format("2006-01-02 15:04:05"), rec.Units, rec.Skipped, rec.Source)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	info := sqlite.GetInfo()
	fmt.Fprintf(g.stdout(), "tmx version %s\nsqlite driver: %s (%s)\n", version, info.DriverName, info.Package)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("tmx"),
		kong.Description("Streaming reader for Translation Memory eXchange (TMX) files"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(cli.initLogging())
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
