// Command vibedict inspects and queries MDX/MDD dictionary files.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"
	"github.com/op/go-logging"
	"github.com/rodaine/table"

	vibedict "github.com/w4lt3rmel0n/Vibedict"
)

var cli struct {
	Verbose bool `short:"v" help:"Enable debug logging."`

	Info     infoCmd     `cmd:"" help:"Print dictionary metadata."`
	Lookup   lookupCmd   `cmd:"" help:"Look up a word and print its definitions."`
	Suggest  suggestCmd  `cmd:"" help:"Suggest headwords by prefix."`
	Rsuggest rsuggestCmd `cmd:"" help:"Suggest headwords by regular expression."`
	Search   searchCmd   `cmd:"" help:"Full-text search over definitions."`
	Locate   locateCmd   `cmd:"" help:"Locate a resource in an MDD archive."`
}

func openDict(path string) (*vibedict.Dict, error) {
	dict, err := vibedict.New(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return dict, nil
}

func resultTable(header string) table.Table {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	tbl := table.New("#", header)
	tbl.WithHeaderFormatter(headerFmt)
	return tbl
}

type infoCmd struct {
	Path string `arg:"" type:"existingfile" help:"Dictionary file (.mdx or .mdd)."`
}

func (c *infoCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	tbl := table.New("Field", "Value")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.AddRow("Name", dict.Name())
	tbl.AddRow("Title", dict.Title())
	tbl.AddRow("Engine version", dict.GeneratedByEngineVersion())
	tbl.AddRow("Creation date", dict.CreationDate())
	tbl.AddRow("Resource archive", dict.IsMDD())
	tbl.AddRow("UTF-16 keys", dict.IsUTF16())
	tbl.AddRow("Entries", dict.KeywordEntriesSize())
	tbl.Print()
	return nil
}

type lookupCmd struct {
	Path string `arg:"" type:"existingfile" help:"Dictionary file."`
	Word string `arg:"" help:"Word to look up."`
	Body bool   `help:"Trim definitions to their <body> content."`
}

func (c *lookupCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	definitions, err := dict.Lookup(c.Word)
	if err != nil {
		return err
	}
	if len(definitions) == 0 {
		color.Yellow("no entry for %q", c.Word)
		return nil
	}
	for i, def := range definitions {
		if c.Body {
			def = vibedict.ExtractBodyContent(def)
		}
		color.Cyan("--- definition %d/%d ---", i+1, len(definitions))
		fmt.Println(def)
	}
	return nil
}

type suggestCmd struct {
	Path   string `arg:"" type:"existingfile" help:"Dictionary file."`
	Prefix string `arg:"" help:"Headword prefix."`
}

func (c *suggestCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	tbl := resultTable("Headword")
	for i, word := range dict.Suggest(c.Prefix) {
		tbl.AddRow(i+1, word)
	}
	tbl.Print()
	return nil
}

type rsuggestCmd struct {
	Path    string `arg:"" type:"existingfile" help:"Dictionary file."`
	Pattern string `arg:"" help:"Case-insensitive regular expression."`
}

func (c *rsuggestCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	tbl := resultTable("Headword")
	for i, word := range dict.RegexSuggest(c.Pattern) {
		tbl.AddRow(i+1, word)
	}
	tbl.Print()
	return nil
}

type searchCmd struct {
	Path  string `arg:"" type:"existingfile" help:"Dictionary file."`
	Query string `arg:"" help:"Text to find inside definitions."`
}

func (c *searchCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	hits := dict.FulltextSearch(c.Query, func(progress float64) {
		fmt.Fprintf(os.Stderr, "\rscanning... %3.0f%%", progress*100)
	})
	fmt.Fprint(os.Stderr, "\r                \r")

	tbl := resultTable("Headword")
	for i, word := range hits {
		tbl.AddRow(i+1, word)
	}
	tbl.Print()
	return nil
}

type locateCmd struct {
	Path     string `arg:"" type:"existingfile" help:"Resource archive (.mdd)."`
	Resource string `arg:"" help:"Resource path, e.g. /images/a.png."`
	Base64   bool   `help:"Emit base64 instead of uppercase hex."`
}

func (c *locateCmd) Run() error {
	dict, err := openDict(c.Path)
	if err != nil {
		return err
	}
	defer dict.Close()

	enc := vibedict.ResourceEncodingHex
	if c.Base64 {
		enc = vibedict.ResourceEncodingBase64
	}
	body, err := dict.Locate(c.Resource, enc)
	if err != nil {
		return err
	}
	fmt.Println(body)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("vibedict"),
		kong.Description("Read-only query engine for MDX/MDD dictionary files."),
		kong.UsageOnError(),
	)

	level := logging.WARNING
	if cli.Verbose {
		level = logging.DEBUG
	}
	logging.SetLevel(level, "vibedict")

	if err := ctx.Run(); err != nil {
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
