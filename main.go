package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"briecrop/cropper"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func run() error {
	var args cliArgs
	cliCtx := kong.Parse(
		&args,
		kong.Name("briecrop"),
		kong.Description("Interactive image cropping."),
		kong.UsageOnError(),
	)
	if err := cliCtx.Run(); err != nil {
		return err
	}

	return nil
}

// setupLogging installs the console logger and returns a context carrying
// it, cancelled on interrupt.
func setupLogging(verbose bool) (context.Context, context.CancelFunc) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = log.Output(zerolog.NewConsoleWriter()).Level(level)
	zerolog.DefaultContextLogger = &log.Logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	return log.Logger.WithContext(ctx), cancel
}

type OutputFlags struct {
	OutputDir   string `help:"Directory cropped images are written to (default: ROOT/output)" env:"BRIECROP_OUTPUT_DIR"`
	Format      string `help:"Output image format" enum:"jpg,png" default:"jpg" env:"BRIECROP_FORMAT"`
	Quality     int    `help:"JPEG quality" default:"100" env:"BRIECROP_QUALITY"`
	Orientation string `help:"Whether pixels are rotated upright using EXIF orientation before cropping" enum:"correct,keep" default:"correct" env:"BRIECROP_ORIENTATION"`
	Verbose     bool   `help:"Enable verbose logging" default:"false"`
}

func (f OutputFlags) policy() cropper.OrientationPolicy {
	if f.Orientation == "keep" {
		return cropper.KeepDecoded
	}
	return cropper.CorrectOrientation
}

func (f OutputFlags) outputDir(root string) string {
	if f.OutputDir != "" {
		return f.OutputDir
	}
	return filepath.Join(root, "output")
}

func (f OutputFlags) store(root string) (*DirStore, error) {
	return NewDirStore(f.outputDir(root), f.Format, f.Quality)
}

type serveCmd struct {
	RootDir string `arg:"" help:"Root directory to serve images from" type:"existingdir"`
	Addr    string `help:"Address to listen on" default:"localhost:0" env:"BRIECROP_ADDR"`
	Open    bool   `help:"Open the browser automatically when the server starts" default:"true" negatable:""`
	JSON    bool   `help:"Output submitted operations in JSON format without executing"`
	Once    bool   `help:"Exit after the first saved crop or submitted batch" default:"false"`

	OutputFlags `embed:""`
}

func (cmd *serveCmd) Run() error {
	ctx, cancel := setupLogging(cmd.Verbose)
	defer cancel()

	store, err := cmd.store(cmd.RootDir)
	if err != nil {
		return err
	}
	policy := cmd.policy()

	executor := &OperationExecutor{
		BaseDir: cmd.RootDir,
		Store:   store,
		Policy:  policy,
	}

	app := NewWebApp(Config{
		RootDir:   cmd.RootDir,
		OutputDir: store.Dir,
		Addr:      cmd.Addr,
		Sessions:  NewSessionManager(ctx, cmd.RootDir, policy),
		Store:     store,
		OnBeforeShutdown: func() {
			log.Ctx(ctx).Info().Msg("Shutting down web application...")
		},
		OnReady: func(addr string) {
			log.Ctx(ctx).Info().Msgf("Server started at %s", addr)
			if cmd.Open {
				if err := openBrowser(addr); err != nil {
					log.Error().Err(err).Msg("Failed to open browser")
				}
			}
		},
		OnSave: func(ops Operations) {
			if cmd.JSON {
				printJSONL(os.Stdout, ops)
			} else {
				if err := executor.Exec(ctx, ops); err != nil {
					log.Ctx(ctx).Error().Err(err).Msg("Failed to execute operations")
				}
			}

			if cmd.Once {
				cancel()
			}
		},
		OnCrop: func(ref string) {
			log.Ctx(ctx).Info().Str("ref", ref).Msg("Saved crop")
			if cmd.Once {
				cancel()
			}
		},
	})

	if err := app.Run(ctx); err != nil {
		return err
	}

	return nil
}

type applyCmd struct {
	File    string `arg:"" help:"File of JSON operations, one per line, or - for stdin" default:"-"`
	RootDir string `help:"Directory operation filenames are relative to" short:"C" default:"." type:"existingdir"`
	JSON    bool   `help:"Echo the parsed operations in JSON format without executing"`

	OutputFlags `embed:""`
}

func (cmd *applyCmd) Run() error {
	ctx, cancel := setupLogging(cmd.Verbose)
	defer cancel()

	var r io.Reader = os.Stdin
	if cmd.File != "-" {
		f, err := os.Open(cmd.File)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", cmd.File, err)
		}
		defer f.Close()
		r = f
	}
	ops, err := readOperations(r)
	if err != nil {
		return err
	}
	if cmd.JSON {
		printJSONL(os.Stdout, ops)
		return nil
	}

	store, err := cmd.store(cmd.RootDir)
	if err != nil {
		return err
	}
	executor := &OperationExecutor{
		BaseDir: cmd.RootDir,
		Store:   store,
		Policy:  cmd.policy(),
	}
	return executor.Exec(ctx, ops)
}

type cliArgs struct {
	Serve serveCmd `cmd:"" default:"withargs" help:"Serve the cropping web app"`
	Apply applyCmd `cmd:"" help:"Replay recorded crop operations"`
}

// readOperations decodes a stream of JSON operations.
func readOperations(r io.Reader) (Operations, error) {
	var ops Operations
	dec := json.NewDecoder(r)
	for {
		var op Operation
		err := dec.Decode(&op)
		if errors.Is(err, io.EOF) {
			return ops, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read operation %d: %w", len(ops)+1, err)
		}
		ops = append(ops, op)
	}
}

func printJSONL[T any](w io.Writer, data []T) {
	enc := json.NewEncoder(w)
	for _, item := range data {
		if err := enc.Encode(item); err != nil {
			log.Error().Err(err).Msg("Failed to encode item to JSON")
			continue
		}
	}
}
