// Command dccconv converts DCC sprite animations to frame images or frame
// archives and back.
//
// Usage:
//
//	dccconv decode [-palette pal.dat] [-format png|qoi|dds|dcca] [-o dir] file.dcc
//	dccconv encode [-palette pal.dat] [-parallel] -o file.dcc frames.dcca
//	dccconv check  [-palette pal.dat] frames.dcca
//	dccconv info   file.dcc
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/juju/errors"
	"github.com/op/go-logging"
	"github.com/woozymasta/bcn"

	"github.com/woozymasta/dcc"
)

var log = logging.MustGetLogger("dccconv")

var logFormat = logging.MustStringFormatter(`%{time:15:04:05.000} %{level:.4s} %{message}`)

func setupLogging(verbose bool) {
	backend := logging.NewLogBackend(os.Stderr, "", 0)
	leveled := logging.AddModuleLevel(logging.NewBackendFormatter(backend, logFormat))
	leveled.SetLevel(logging.INFO, "")
	if verbose {
		leveled.SetLevel(logging.DEBUG, "")
	}
	logging.SetBackend(leveled)
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: dccconv <decode|encode|check|info> [flags] file")
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cmd, args := os.Args[1], os.Args[2:]
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	palettePath := fs.String("palette", "", "engine palette (.dat); grayscale when empty")
	output := fs.String("o", "", "output file or directory")
	format := fs.String("format", "png", "decode output: png, qoi, dds or dcca")
	ddsFormat := fs.String("dds", "bgra8", "DDS pixel format: bgra8, dxt1 or dxt5")
	compression := fs.String("compression", "lz4", "archive compression: none, lz4, zstd or zlib")
	parallel := fs.Bool("parallel", false, "encode directions and variants concurrently")
	verbose := fs.Bool("v", false, "debug logging")
	_ = fs.Parse(args)

	setupLogging(*verbose)
	if fs.NArg() != 1 {
		usage()
	}
	input := fs.Arg(0)

	var err error
	switch cmd {
	case "decode":
		err = runDecode(input, *palettePath, *output, *format, *ddsFormat, *compression)
	case "encode":
		err = runEncode(input, *palettePath, *output, *parallel)
	case "check":
		err = runCheck(input, *palettePath)
	case "info":
		err = runInfo(input)
	default:
		usage()
	}
	if err != nil {
		log.Error(err.Error())
		log.Debug(errors.ErrorStack(err))
		os.Exit(1)
	}
}

func loadPalette(path string) (*dcc.Palette, error) {
	if path == "" {
		log.Debug("no palette given, using grayscale")
		return dcc.DefaultPalette(), nil
	}
	pal, err := dcc.ReadPalette(path)
	return pal, errors.Annotatef(err, "palette %s", path)
}

func runDecode(input, palettePath, output, format, ddsName, compression string) error {
	pal, err := loadPalette(palettePath)
	if err != nil {
		return err
	}

	anim, err := dcc.ReadWithOptions(input, pal, &dcc.DecodeOptions{
		Progress: func(done, total int) { log.Debugf("decoded direction %d/%d", done, total) },
	})
	if err != nil {
		return errors.Annotatef(err, "decode %s", input)
	}
	for _, w := range anim.Warnings {
		log.Warning(w)
	}
	log.Infof("%s: %d directions, %d frames", input, anim.DirectionCount(), anim.FrameCount())

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if format == "dcca" {
		method, err := dcc.ParseCompression(compression)
		if err != nil {
			return errors.Trace(err)
		}
		if output == "" {
			output = base + ".dcca"
		}
		if err := dcc.WriteArchive(anim, output, &dcc.ArchiveOptions{Compression: method}); err != nil {
			return errors.Annotatef(err, "write %s", output)
		}
		log.Infof("wrote %s", output)
		return nil
	}

	imageFormat, err := dcc.ParseImageFormat(format)
	if err != nil {
		return errors.Trace(err)
	}
	opts := &dcc.ExportOptions{Format: imageFormat, DDSFormat: parseDDSFormat(ddsName)}
	if output == "" {
		output = "."
	}
	if err := os.MkdirAll(output, 0o755); err != nil {
		return errors.Annotatef(err, "create %s", output)
	}

	for d, dir := range anim.Frames {
		for i, f := range dir {
			name := filepath.Join(output, fmt.Sprintf("%s_d%02d_f%03d.%s", base, d, i, imageFormat))
			if err := dcc.ExportFrame(name, f, pal, opts); err != nil {
				return errors.Annotatef(err, "direction %d frame %d", d, i)
			}
			log.Debugf("wrote %s at (%d,%d)", name, f.X, f.Y)
		}
	}
	return nil
}

func runEncode(input, palettePath, output string, parallel bool) error {
	if output == "" {
		return errors.New("encode needs -o")
	}
	pal, err := loadPalette(palettePath)
	if err != nil {
		return err
	}

	anim, err := dcc.ReadArchive(input, pal)
	if err != nil {
		return errors.Annotatef(err, "read %s", input)
	}
	if !reportAdvisories(dcc.Check(anim, pal)) {
		return errors.Errorf("%s cannot be encoded", input)
	}

	err = dcc.WriteWithOptions(anim, output, pal, &dcc.EncodeOptions{
		Parallel: parallel,
		Progress: func(done, total int) { log.Debugf("encode step %d/%d", done, total) },
	})
	if err != nil {
		return errors.Annotatef(err, "encode %s", output)
	}
	log.Infof("wrote %s", output)
	return nil
}

func runCheck(input, palettePath string) error {
	pal, err := loadPalette(palettePath)
	if err != nil {
		return err
	}
	anim, err := dcc.ReadArchive(input, pal)
	if err != nil {
		return errors.Annotatef(err, "read %s", input)
	}
	if !reportAdvisories(dcc.Check(anim, pal)) {
		return errors.Errorf("%s cannot be encoded", input)
	}
	log.Infof("%s: ok", input)
	return nil
}

// reportAdvisories logs advisories and reports whether encoding may proceed.
func reportAdvisories(advisories []dcc.Advisory) bool {
	for _, a := range advisories {
		if a.Severity == dcc.SeverityFatal {
			log.Error(a.Message)
		} else {
			log.Warning(a.Message)
		}
	}
	return !dcc.HasFatal(advisories)
}

func runInfo(input string) error {
	h, err := dcc.ReadHeader(input)
	if err != nil {
		return errors.Annotatef(err, "read %s", input)
	}
	fmt.Printf("version:    %d\n", h.Version)
	fmt.Printf("directions: %d\n", h.Directions)
	fmt.Printf("frames:     %d\n", h.Frames)
	fmt.Printf("size hint:  %d\n", h.SizeHint)
	for d, off := range h.Offsets {
		fmt.Printf("direction %d at %d\n", d, off)
	}
	return nil
}

func parseDDSFormat(name string) bcn.Format {
	switch strings.ToLower(name) {
	case "dxt1":
		return bcn.FormatDXT1
	case "dxt5":
		return bcn.FormatDXT5
	default:
		return bcn.FormatBGRA8
	}
}
