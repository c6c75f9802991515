package serve_lsp

import (
	"context"
	"os"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/emberls/pkg/addon"
	"github.com/walteh/emberls/pkg/lsp"
	"github.com/walteh/emberls/pkg/lsp/protocol"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	debug         bool
	addonCacheTTL time.Duration
	version       string
}

func NewServeLSPCommand(version string) *cobra.Command {
	me := &Handler{version: version}

	cmd := &cobra.Command{
		Use:   "serve-lsp",
		Short: "start the language server on stdin/stdout",
	}

	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().DurationVar(&me.addonCacheTTL, "addon-cache-ttl", addon.DefaultTTL, "how long discovered addon roots are reused")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return me.Run(cmd.Context())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context) error {
	level := zerolog.InfoLevel
	if me.debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.Ctx(ctx).Level(level)
	ctx = logger.WithContext(ctx)

	server := lsp.NewServer(afero.NewOsFs(), lsp.Options{
		AddonCacheTTL: me.addonCacheTTL,
		Version:       me.version,
	})

	opts := &jrpc2.ServerOptions{}
	if me.debug {
		// traced to stderr only
		opts.RPCLog = &protocol.ZerologRPCLogger{Logger: logger}
	}

	instance := server.BuildServerInstance(ctx, opts)

	if err := instance.StartAndWait(os.Stdin, os.Stdout); err != nil {
		return errors.Errorf("error running language server: %w", err)
	}

	return nil
}
