package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"os"

	"github.com/ironsheep/reflow-ocr/internal/config"
	"github.com/ironsheep/reflow-ocr/internal/imaging"
	"github.com/ironsheep/reflow-ocr/internal/logging"
	"github.com/ironsheep/reflow-ocr/internal/ocr"
	"github.com/ironsheep/reflow-ocr/internal/ocr/tesseract"
	"github.com/ironsheep/reflow-ocr/internal/server"
	"github.com/ironsheep/reflow-ocr/internal/wordbox"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("reflow-ocr %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			fmt.Printf("  Tesseract:  %s\n", tesseract.Version())
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(2)
	}

	// stdout is reserved for MCP and command output; logs go to stderr.
	log := logging.NewLogger("reflow-ocr", logging.ParseLevel(cfg.LogLevel))
	mgr := ocr.NewManager(tesseract.New, ocr.WithLogger(log.With("ocr")))

	var runErr error
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "boxes":
			runErr = runBoxes(cfg, mgr, log, os.Args[2:])
		case "word":
			runErr = runWord(cfg, mgr, os.Args[2:])
		default:
			runErr = fmt.Errorf("unknown command %q (see --help)", os.Args[1])
		}
	} else {
		log.Debug("starting MCP server", "version", Version, "build_time", BuildTime, "commit", GitCommit)
		srv := server.New(cfg, mgr,
			server.WithLogger(log.With("server")),
			server.WithEngineInfo(func() interface{} { return tesseract.GetInfo(cfg.TessdataDir) }),
		)
		runErr = srv.Run()
	}

	if err := mgr.Shutdown(); err != nil {
		log.Warn("engine shutdown failed", "error", err)
	}
	if runErr != nil {
		log.Error("fatal", "error", runErr)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("reflow-ocr - word-box detection and single-word OCR")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  reflow-ocr                       Run the MCP server on stdin/stdout")
	fmt.Println("  reflow-ocr boxes [flags] <image> Print reading-order word boxes as JSON")
	fmt.Println("  reflow-ocr word [flags] <image>  Recognize the word in a region")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  REFLOW_OCR_CONFIG=<file>       YAML configuration file")
	fmt.Println("  REFLOW_OCR_TESSDATA=<dir>      Tesseract language data (else TESSDATA_PREFIX)")
	fmt.Println("  REFLOW_OCR_LANGUAGE=eng        Default OCR language")
	fmt.Println("  REFLOW_OCR_DPI=300             Default resolution hint")
	fmt.Println("  REFLOW_OCR_LOG_LEVEL=debug     Enable debug logging")
	fmt.Println("  REFLOW_OCR_DEBUG_DIR=<dir>     Directory for box overlay PNGs")
}

// regionFlags registers the optional region flags on fs.
func regionFlags(fs *flag.FlagSet) *image.Rectangle {
	r := &image.Rectangle{}
	fs.IntVar(&r.Min.X, "x1", 0, "region left edge")
	fs.IntVar(&r.Min.Y, "y1", 0, "region top edge")
	fs.IntVar(&r.Max.X, "x2", 0, "region right edge (exclusive); omit for the whole image")
	fs.IntVar(&r.Max.Y, "y2", 0, "region bottom edge (exclusive)")
	return r
}

func loadArg(fs *flag.FlagSet, depth int) (*imaging.Bitmap, error) {
	if fs.NArg() != 1 {
		return nil, fmt.Errorf("%s: expected one image path, got %d arguments", fs.Name(), fs.NArg())
	}
	return imaging.NewBitmapCache().Load(fs.Arg(0), depth)
}

func runBoxes(cfg *config.Config, mgr *ocr.Manager, log *logging.Logger, args []string) error {
	fs := flag.NewFlagSet("boxes", flag.ContinueOnError)
	region := regionFlags(fs)
	kindName := fs.String("kind", "reflow", "box kind: reflow or native")
	cjk := fs.Bool("cjk", false, "detect CJK symbols with the OCR engine")
	lang := fs.String("lang", "", "engine language for -cjk (default from configuration)")
	debug := fs.Bool("debug", false, "write a box overlay into the debug directory")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := wordbox.ParseKind(*kindName)
	if err != nil {
		return err
	}
	bmp, err := loadArg(fs, 24)
	if err != nil {
		return err
	}

	ctx := wordbox.NewContext()
	ctx.CJK = *cjk
	ctx.Language = *lang
	if *cjk && ctx.Language == "" {
		ctx.Language = cfg.Language
	}
	ctx.Debug = *debug
	ctx.DebugDir = cfg.DebugDir

	svc := wordbox.NewService(mgr,
		wordbox.WithLogger(log.With("wordbox")),
		wordbox.WithTessdataDir(cfg.TessdataDir),
		wordbox.WithDilation(cfg.Dilation),
	)
	if err := svc.GetWordBoxes(ctx, bmp, *region, kind); err != nil {
		return err
	}
	return printJSON(ctx.Boxes(kind))
}

func runWord(cfg *config.Config, mgr *ocr.Manager, args []string) error {
	fs := flag.NewFlagSet("word", flag.ContinueOnError)
	region := regionFlags(fs)
	lang := fs.String("lang", cfg.Language, "OCR language")
	dpi := fs.Int("dpi", cfg.DPI, "resolution hint")
	modeName := fs.String("mode", "word", "page segmentation: word, line, char, sparse or auto")
	maxLength := fs.Int("max-length", 0, "output buffer size in bytes (0 for unlimited)")
	post := fs.Bool("post-process", false, "normalize the recognized text")
	spaces := fs.Bool("allow-spaces", false, "keep spaces when post-processing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	mode, err := ocr.ParseMode(*modeName)
	if err != nil {
		return err
	}
	bmp, err := loadArg(fs, 8)
	if err != nil {
		return err
	}

	text, err := mgr.RecognizeWord(bmp, ocr.WordRequest{
		Rect:        imaging.BitmapRect(bmp, *region),
		DPI:         *dpi,
		DataDir:     cfg.TessdataDir,
		Language:    *lang,
		Mode:        mode,
		MaxLength:   *maxLength,
		PostProcess: *post,
		AllowSpaces: *spaces,
	})
	if err != nil {
		return err
	}
	fmt.Println(text)
	return nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
