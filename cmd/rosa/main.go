// Command rosa maintains a manuscript archive: it lists collections and
// books, checks their consistency, refreshes checksum indexes, generates
// image lists, crops images and processes transcriptions.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
)

const version = "0.4.0"

// CLI defines the command-line interface for rosa.
type CLI struct {
	Config   string `name:"config" short:"c" help:"Configuration file path" type:"path"`
	Root     string `name:"root" short:"r" help:"Archive root, overriding the configuration" type:"path"`
	LogLevel string `name:"log-level" help:"Log level (debug, info, warn, error)"`

	List       ListCmd       `cmd:"" help:"List collections, or the books of a collection"`
	Check      CheckCmd      `cmd:"" help:"Check collections and books for consistency"`
	Checksum   ChecksumCmd   `cmd:"" help:"Refresh checksum indexes"`
	ImageList  ImageListCmd  `cmd:"" name:"image-list" help:"Generate a book's image list"`
	Crop       CropCmd       `cmd:"" help:"Crop a book's images"`
	Convert    ConvertCmd    `cmd:"" help:"Convert a transcription page file to TEI"`
	Split      SplitCmd      `cmd:"" help:"Split a transcription into page and column fragments"`
	Bundle     BundleCmd     `cmd:"" help:"Bundle a collection or book into a tar.xz file"`
	Unbundle   UnbundleCmd   `cmd:"" help:"Extract a bundle into the archive"`
	InitConfig InitConfigCmd `cmd:"" name:"init-config" help:"Write a sample configuration file"`
	Version    VersionCmd    `cmd:"" help:"Print version information"`
}

// VersionCmd prints the version.
type VersionCmd struct{}

func (c *VersionCmd) Run(out io.Writer) error {
	_, err := fmt.Fprintf(out, "rosa %s\n", version)
	return err
}

func newParser(cli *CLI, out io.Writer) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("rosa"),
		kong.Description("Manuscript archive maintenance"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Writers(out, os.Stderr),
		kong.BindTo(out, (*io.Writer)(nil)),
	)
}

// run parses args and runs the selected command, writing its output to out.
func run(args []string, out io.Writer) error {
	var cli CLI
	parser, err := newParser(&cli, out)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	ctx.Bind(&Env{Globals: &cli})
	return ctx.Run()
}

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "rosa: %v\n", err)
		os.Exit(1)
	}
}
