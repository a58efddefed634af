// Command unlzx lists and extracts LZX archives. It is a pure consumer of
// the lzx package's public interface: no CRC, Huffman, or LZ77 work happens
// here.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cloudeng.io/cmdutil"
	"cloudeng.io/cmdutil/subcmd"
	"cloudeng.io/errors"

	lzx "github.com/tomasz-wiszkowski/cxx-unlzx-go"
)

type listFlags struct {
	Long bool `subcmd:"l,false,'show the protection attributes string for each entry'"`
}

type extractFlags struct {
	OutputDir string `subcmd:"output,.,'directory to extract entries into'"`
}

var cmdSet *subcmd.CommandSet

func init() {
	listCmd := subcmd.NewCommand("list",
		subcmd.MustRegisterFlagStruct(&listFlags{}, nil, nil),
		list, subcmd.ExactlyNumArguments(1))
	listCmd.Document(`list the entries in an LZX archive.`)

	extractCmd := subcmd.NewCommand("extract",
		subcmd.MustRegisterFlagStruct(&extractFlags{}, nil, nil),
		extract, subcmd.AtLeastNArguments(1))
	extractCmd.Document(`extract entries from an LZX archive, optionally restricted to entries whose name contains one of the given substrings.`)

	cmdSet = subcmd.NewCommandSet(listCmd, extractCmd)
	cmdSet.Document(`list and extract LZX archives.`)
}

func main() {
	cmdSet.MustDispatch(context.Background())
}

func openArchive(name string) (*lzx.Archive, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", lzx.ErrFileOpen, err)
	}
	return lzx.Open(data)
}

func list(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*listFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}

	for _, e := range a.Entries() {
		size, exact := e.PackSize()
		sizeStr := fmt.Sprintf("%d", size)
		if !exact {
			if est, ok := e.EstimatedPackSize(); ok {
				sizeStr = fmt.Sprintf("~%d", est)
			} else {
				sizeStr = "?"
			}
		}
		d := e.Date()
		line := fmt.Sprintf("%10d %8s %-22s %04d-%02d-%02d %02d:%02d:%02d  %s",
			e.UnpackSize(), sizeStr, e.CompressionMode().String(),
			d.Year, d.Month, d.Day, d.Hour, d.Minute, d.Second, e.Name())
		if cl.Long {
			line = fmt.Sprintf("%s  %s", e.Attributes(), line)
		}
		fmt.Println(line)
	}
	return nil
}

func extract(ctx context.Context, values interface{}, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	cl := values.(*extractFlags)
	cmdutil.HandleSignals(cancel, os.Interrupt)

	a, err := openArchive(args[0])
	if err != nil {
		return err
	}
	patterns := args[1:]

	errs := errors.M{}
	for _, e := range a.Entries() {
		if !matchesAny(e.Name(), patterns) {
			continue
		}
		errs.Append(extractOne(e, cl.OutputDir))
	}
	return errs.Err()
}

func matchesAny(name string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

func extractOne(e *lzx.Entry, outputDir string) error {
	data, err := e.Bytes()
	if err != nil {
		return fmt.Errorf("%s: %w", e.Name(), err)
	}

	dest := filepath.Join(outputDir, e.Name())
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("%w: %v", lzx.ErrFileCreate, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("%w: %v", lzx.ErrFileWrite, err)
	}
	fmt.Println(dest)
	return nil
}
