// Package main is the command line interface for inspecting and
// editing block documents.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/quillon/masonry"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var showVersion bool
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.Usage = usage
	flag.Parse()

	if showVersion {
		fmt.Printf("masonry %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		return 0
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		return 2
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "list":
		err = cmdList(rest)
	case "text":
		err = cmdText(rest)
	case "export":
		err = cmdExport(rest)
	case "import":
		err = cmdImport(rest)
	case "get":
		err = cmdGet(rest)
	case "set":
		err = cmdSet(rest)
	case "insert":
		err = cmdInsert(rest)
	case "remove":
		err = cmdRemove(rest)
	case "update":
		err = cmdUpdate(rest)
	case "types":
		err = cmdTypes(rest)
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n\n", cmd)
		usage()
		return 2
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Fprintf(os.Stderr, "Masonry - block document tool\n\n")
	fmt.Fprintf(os.Stderr, "Usage: masonry [options] <command> [command options]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  list      Print the block tree\n")
	fmt.Fprintf(os.Stderr, "  text      Print the document's plain text\n")
	fmt.Fprintf(os.Stderr, "  export    Convert a document to html or markdown\n")
	fmt.Fprintf(os.Stderr, "  import    Build a document from html or markdown\n")
	fmt.Fprintf(os.Stderr, "  get       Read a field of the document JSON by path\n")
	fmt.Fprintf(os.Stderr, "  set       Set a field of the document JSON by path\n")
	fmt.Fprintf(os.Stderr, "  insert    Insert a block relative to another\n")
	fmt.Fprintf(os.Stderr, "  remove    Remove blocks by id\n")
	fmt.Fprintf(os.Stderr, "  update    Patch a block by id\n")
	fmt.Fprintf(os.Stderr, "  types     List registered block types\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  masonry import -format md -o doc.json notes.md\n")
	fmt.Fprintf(os.Stderr, "  masonry list -doc doc.json -ids\n")
	fmt.Fprintf(os.Stderr, "  masonry export -doc doc.json -format html\n")
	fmt.Fprintf(os.Stderr, "  masonry get -doc doc.json content.0.content.0.attrs.id\n")
	fmt.Fprintf(os.Stderr, "  masonry insert -doc doc.json -o doc.json -type paragraph -text hello\n")
}

// ============================================================================
// Commands
// ============================================================================

func cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	ids := fs.Bool("ids", false, "Show block ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}
	ed.ForEachBlock(false, func(b masonry.Block, depth int) bool {
		line := strings.Repeat("  ", depth) + b.Type
		if *ids {
			line += " [" + b.ID + "]"
		}
		if text := b.Text(); text != "" {
			line += ": " + text
		}
		fmt.Println(line)
		return true
	})
	return nil
}

func cmdText(args []string) error {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}
	fmt.Println(ed.Text())
	return nil
}

func cmdExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	format := fs.String("format", "html", "Output format: html, markdown")
	out := fs.String("o", "-", "Output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}

	var rendered string
	switch *format {
	case "html":
		rendered, err = ed.ExportHTML(context.Background())
	case "markdown", "md":
		rendered, err = ed.ExportMarkdown(context.Background())
	default:
		return fmt.Errorf("unknown format %q (must be html or markdown)", *format)
	}
	if err != nil {
		return err
	}
	return writeOutput(*out, []byte(rendered))
}

func cmdImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	format := fs.String("format", "markdown", "Input format: html, markdown")
	out := fs.String("o", "-", "Document JSON output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	src, err := readInput(inputArg(fs))
	if err != nil {
		return err
	}

	ed, err := masonry.New()
	if err != nil {
		return err
	}
	switch *format {
	case "html":
		_, err = ed.ImportHTML(context.Background(), string(src))
	case "markdown", "md":
		_, err = ed.ImportMarkdown(context.Background(), string(src))
	default:
		return fmt.Errorf("unknown format %q (must be html or markdown)", *format)
	}
	if err != nil {
		return err
	}
	return saveEditor(ed, *out)
}

func cmdGet(args []string) error {
	fs := flag.NewFlagSet("get", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	pretty := fs.Bool("pretty", false, "Indent JSON output")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("get needs exactly one path argument")
	}

	data, err := readInput(*doc)
	if err != nil {
		return err
	}
	res := gjson.GetBytes(data, fs.Arg(0))
	if !res.Exists() {
		return fmt.Errorf("no value at path %q", fs.Arg(0))
	}
	out := res.Raw
	if *pretty {
		var buf strings.Builder
		if err := json.Indent(&buf, []byte(out), "", "  "); err == nil {
			out = buf.String()
		}
	}
	fmt.Println(out)
	return nil
}

func cmdSet(args []string) error {
	fs := flag.NewFlagSet("set", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	out := fs.String("o", "-", "Document JSON output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("set needs a path and a value argument")
	}
	path, value := fs.Arg(0), fs.Arg(1)

	data, err := readInput(*doc)
	if err != nil {
		return err
	}
	var updated []byte
	if json.Valid([]byte(value)) {
		updated, err = sjson.SetRawBytes(data, path, []byte(value))
	} else {
		updated, err = sjson.SetBytes(data, path, value)
	}
	if err != nil {
		return err
	}

	// Reload through the editor so an edit that breaks the document
	// schema is rejected instead of written out.
	ed, err := masonry.New(masonry.WithDocumentJSON(updated))
	if err != nil {
		return fmt.Errorf("edit produces an invalid document: %w", err)
	}
	return saveEditor(ed, *out)
}

func cmdInsert(args []string) error {
	fs := flag.NewFlagSet("insert", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	out := fs.String("o", "-", "Document JSON output file (- for stdout)")
	ref := fs.String("ref", "", "Reference block id (default: last top-level block)")
	place := fs.String("place", "after", "Placement: before, after, nested")
	typ := fs.String("type", "paragraph", "Block type")
	text := fs.String("text", "", "Inline text content")
	props := fs.String("props", "", "Props as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}

	partial := masonry.PartialBlock{Type: *typ}
	if *text != "" {
		partial.Content = masonry.InlineText(*text)
	}
	if *props != "" {
		if err := json.Unmarshal([]byte(*props), &partial.Props); err != nil {
			return fmt.Errorf("props: %w", err)
		}
	}

	placement, err := parsePlacement(*place)
	if err != nil {
		return err
	}
	target := *ref
	if target == "" {
		blocks := ed.Blocks()
		if len(blocks) == 0 {
			return fmt.Errorf("document has no blocks to insert against")
		}
		target = blocks[len(blocks)-1].ID
	}

	inserted, err := ed.InsertBlocks(masonry.ID(target), []masonry.PartialBlock{partial}, placement)
	if err != nil {
		return err
	}
	for _, b := range inserted {
		fmt.Fprintf(os.Stderr, "inserted %s [%s]\n", b.Type, b.ID)
	}
	return saveEditor(ed, *out)
}

func cmdRemove(args []string) error {
	fs := flag.NewFlagSet("remove", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	out := fs.String("o", "-", "Document JSON output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("remove needs at least one block id")
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}
	refs := make([]masonry.Identifier, fs.NArg())
	for i, id := range fs.Args() {
		refs[i] = masonry.ID(id)
	}
	removed, err := ed.RemoveBlocks(refs)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "removed %d block(s)\n", len(removed))
	return saveEditor(ed, *out)
}

func cmdUpdate(args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	doc := fs.String("doc", "-", "Document JSON file (- for stdin)")
	out := fs.String("o", "-", "Document JSON output file (- for stdout)")
	id := fs.String("id", "", "Target block id")
	typ := fs.String("type", "", "New block type (empty keeps the current one)")
	text := fs.String("text", "", "New inline text (empty keeps the current content)")
	props := fs.String("props", "", "Props patch as a JSON object")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("update needs -id")
	}

	ed, err := openEditor(*doc)
	if err != nil {
		return err
	}

	patch := masonry.PartialBlock{Type: *typ}
	if *text != "" {
		patch.Content = masonry.InlineText(*text)
	}
	if *props != "" {
		if err := json.Unmarshal([]byte(*props), &patch.Props); err != nil {
			return fmt.Errorf("props: %w", err)
		}
	}

	updated, err := ed.UpdateBlock(masonry.ID(*id), patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "updated %s [%s]\n", updated.Type, updated.ID)
	return saveEditor(ed, *out)
}

func cmdTypes(args []string) error {
	fs := flag.NewFlagSet("types", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	ed, err := masonry.New()
	if err != nil {
		return err
	}
	for _, typ := range ed.BlockTypes() {
		fmt.Println(typ)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func parsePlacement(s string) (masonry.Placement, error) {
	switch s {
	case "before":
		return masonry.Before, nil
	case "after":
		return masonry.After, nil
	case "nested":
		return masonry.Nested, nil
	}
	return 0, fmt.Errorf("unknown placement %q (must be before, after, or nested)", s)
}

// openEditor loads a document from path, or creates an empty one for
// the empty path.
func openEditor(path string) (*masonry.Editor, error) {
	if path == "" {
		return masonry.New()
	}
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	return masonry.New(masonry.WithDocumentJSON(data))
}

func saveEditor(ed *masonry.Editor, path string) error {
	data, err := ed.DocJSON()
	if err != nil {
		return err
	}
	return writeOutput(path, append(data, '\n'))
}

// inputArg returns the first positional argument, or - for stdin.
func inputArg(fs *flag.FlagSet) string {
	if fs.NArg() > 0 {
		return fs.Arg(0)
	}
	return "-"
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
