// Command streamzip-extract drives the streamzip reader end to end: it reads
// a ZIP archive from a file or from stdin, one entry at a time, writing each
// decompressed body under an output directory, and finally walks the central
// directory to report the archive comment and entry count.
//
// It exists to exercise the library against something other than tests: a
// real, forward-only consumer that never seeks, matching the non-seekable
// byte source streamzip targets.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jessevdk/go-flags"
	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"

	_ "github.com/streamzip-go/streamzip/codec"

	"github.com/streamzip-go/streamzip"
)

var opts struct {
	Out     string `short:"o" long:"out" description:"directory to extract into" default:"."`
	Verbose bool   `short:"v" long:"verbose" description:"log every entry as it is extracted"`
	Args    struct {
		Archive flags.Filename `positional-arg-name:"archive" description:"zip file to read; omit to read from stdin"`
	} `positional-args:"yes"`
}

var log = logrus.New()

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		os.Exit(1)
	}
	if opts.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if err := run(); err != nil {
		log.WithError(err).Fatal("extraction failed")
	}
}

func run() error {
	src, err := openSource()
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(opts.Out, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	rd := streamzip.NewReader(src)
	count := 0
	for {
		reading, err := rd.Next()
		if streamzip.IsEndOfEntries(err) {
			return reportCentralDirectory(err)
		}
		if err != nil {
			return fmt.Errorf("entry %d: %w", count+1, err)
		}

		next, err := extractEntry(reading)
		if err != nil {
			return fmt.Errorf("entry %d (%s): %w", count+1, reading.Entry().Filename.String(), err)
		}
		rd = next
		count++
	}
}

func openSource() (io.ReadCloser, error) {
	if opts.Args.Archive == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(string(opts.Args.Archive))
}

// extractEntry writes one entry's decompressed body to disk (or creates a
// directory for it) and drives the reader back to Ready.
func extractEntry(reading *streamzip.Reading) (*streamzip.Ready, error) {
	entry := reading.Entry()
	name := entry.Filename.String()

	path, err := safeJoin(opts.Out, name)
	if err != nil {
		return nil, err
	}

	if entry.IsDir() {
		if err := os.MkdirAll(path, 0o755); err != nil {
			return nil, err
		}
		next, _, err := reading.Skip()
		return next, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	// UNIX permission bits live in CentralDirectoryEntry.ExternalAttrs, which
	// only the central-directory pass sees; the streaming ZipEntry returned
	// by reading.Entry() is built from the local file header alone, which
	// has no external-attributes field at all (spec.md §3). Entries are
	// therefore always written with a fixed mode during streaming extraction.
	const mode = os.FileMode(0o644)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	bar := progressbar.NewOptions64(int64(entry.CompressedSize),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetVisibility(opts.Verbose),
		progressbar.OptionThrottle(200*time.Millisecond),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish())

	written, err := io.Copy(io.MultiWriter(f, bar), reading)
	_ = bar.Close()
	if err != nil {
		return nil, err
	}

	log.Debugf("extracted %s (%s)", name, humanize.Bytes(uint64(written)))

	next, _, err := reading.Done()
	return next, err
}

// safeJoin joins dir and name, rejecting any entry whose name would escape
// dir via ".." path traversal (zip-slip).
func safeJoin(dir, name string) (string, error) {
	cleaned := filepath.Join(dir, filepath.FromSlash(name))
	rel, err := filepath.Rel(dir, cleaned)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry path %q escapes output directory", name)
	}
	return cleaned, nil
}

func reportCentralDirectory(endOfEntries error) error {
	cdr, ok := streamzip.ContinueToCentralDirectory(endOfEntries)
	if !ok {
		return errors.New("unreachable: not an end-of-entries error")
	}

	entries := 0
	for {
		entry, eocd, err := cdr.Next()
		if err != nil {
			return fmt.Errorf("central directory: %w", err)
		}
		if eocd != nil {
			comment := eocd.Comment.String()
			if comment == "" {
				log.Infof("extracted %d entries, %d recorded in central directory", entries, eocd.Entries)
			} else {
				log.Infof("extracted %d entries, %d recorded in central directory, comment: %q", entries, eocd.Entries, comment)
			}
			return nil
		}
		entries++
		_ = entry
	}
}
