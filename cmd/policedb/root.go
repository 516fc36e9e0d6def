package main

import (
	"encoding/hex"
	"fmt"
	"io"

	errors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-flyweight/carregistry"
	"github.com/goliatone/go-flyweight/flyweight"
	"github.com/goliatone/go-flyweight/pkg/di"
	"github.com/goliatone/go-flyweight/pkg/manifest"
)

// defaultFleet is preloaded when no manifest is given.
var defaultFleet = [][]any{
	{"Chevrolet", "Camaro2018", "pink"},
	{"Mercedes Benz", "C300", "black"},
	{"Mercedes Benz", "C500", "red"},
	{"BMW", "M5", "red"},
	{"BMW", "X6", "white"},
}

type options struct {
	manifestPath string
	logLevel     string
	concurrency  int
}

type app struct {
	opts      options
	logger    *zap.Logger
	container *di.Container
	registry  *carregistry.Registry
}

func newRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "policedb",
		Short:         "policedb registers cars against a shared flyweight cache.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.opts.manifestPath, "manifest", "m", "", "YAML manifest with cache settings, preload entries and cars")
	flags.StringVar(&a.opts.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flags.IntVar(&a.opts.concurrency, "concurrency", carregistry.DefaultConcurrency, "Maximum cars registered at once from a manifest")

	root.AddCommand(
		newDemoCommand(a),
		newRegisterCommand(a),
		newListCommand(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	logger, err := newLogger(cmd.ErrOrStderr(), a.opts.logLevel)
	if err != nil {
		return err
	}
	a.logger = logger

	m, err := a.loadManifest()
	if err != nil {
		return err
	}

	container, err := di.NewContainerFromManifest(m, logger)
	if err != nil {
		return err
	}
	a.container = container

	registry, err := container.NewCarRegistry(carregistry.WithConcurrency(a.opts.concurrency))
	if err != nil {
		return err
	}
	a.registry = registry

	ctx := carregistry.WithRequestID(cmd.Context(), uuid.NewString())
	cmd.SetContext(ctx)

	if len(m.Cars) > 0 {
		if _, err := registry.RegisterAll(ctx, m.Cars); err != nil {
			return err
		}
	}

	logger.Debug("police database ready",
		zap.String("manifest", a.opts.manifestPath),
		zap.Int("flyweights", container.Cache().Size()),
		zap.Int("records", registry.Len()),
	)
	return nil
}

func (a *app) loadManifest() (*manifest.Manifest, error) {
	if a.opts.manifestPath != "" {
		return manifest.Load(a.opts.manifestPath)
	}

	m := &manifest.Manifest{}
	for _, values := range defaultFleet {
		fields := make([]flyweight.Field, len(values))
		for i, v := range values {
			fields[i] = flyweight.Field{Value: v}
		}
		m.Preload = append(m.Preload, manifest.Entry{Fields: fields})
	}
	return m, nil
}

func newLogger(w io.Writer, levelName string) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(levelName)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryValidation, "invalid log level").
			WithTextCode(flyweight.TextCodeInvalidConfig).
			WithMetadata(map[string]any{"log_level": levelName})
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(zapcore.AddSync(w)),
		level,
	)
	return zap.New(core), nil
}

func (a *app) writeOutput(w io.Writer, out flyweight.Output) error {
	if flyweight.IsBinary(a.container.Config().Renderer) {
		_, err := fmt.Fprintln(w, hex.EncodeToString(out))
		return err
	}
	_, err := fmt.Fprintln(w, out.String())
	return err
}

func (a *app) listFlyweights(w io.Writer) error {
	cache := a.container.Cache()
	if _, err := fmt.Fprintf(w, "Cache holds %d flyweights:\n", cache.Size()); err != nil {
		return err
	}
	for key := range cache.ListEntries() {
		if _, err := fmt.Fprintln(w, key); err != nil {
			return err
		}
	}
	return nil
}
