package get_definition

import (
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/walteh/emberls/pkg/addon"
	"github.com/walteh/emberls/pkg/definition"
	"github.com/walteh/emberls/pkg/location"
	"github.com/walteh/emberls/pkg/position"
	"github.com/walteh/emberls/pkg/project"
	"gitlab.com/tozd/go/errors"
)

type Handler struct {
	file          string
	line          int
	character     int
	workspace     string
	debug         bool
	addonCacheTTL time.Duration
}

func NewDefinitionCommand() *cobra.Command {
	me := &Handler{}

	cmd := &cobra.Command{
		Use:   "definition",
		Short: "print the definitions of the symbol at a position, one JSON location per line",
	}

	cmd.Flags().StringVar(&me.file, "file", "", "file containing the symbol")
	cmd.Flags().IntVar(&me.line, "line", 0, "zero based line")
	cmd.Flags().IntVar(&me.character, "character", 0, "zero based UTF-16 column")
	cmd.Flags().StringVar(&me.workspace, "workspace", "", "directory to discover ember projects in before resolving")
	cmd.Flags().BoolVar(&me.debug, "debug", false, "enable debug logging")
	cmd.Flags().DurationVar(&me.addonCacheTTL, "addon-cache-ttl", addon.DefaultTTL, "how long discovered addon roots are reused")

	_ = cmd.MarkFlagRequired("file")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if me.debug {
			ctx = zerolog.Ctx(ctx).Level(zerolog.DebugLevel).WithContext(ctx)
		}
		return me.Run(ctx, afero.NewOsFs(), cmd.OutOrStdout())
	}

	return cmd
}

func (me *Handler) Run(ctx context.Context, fs afero.Fs, out io.Writer) error {
	if me.line < 0 || me.character < 0 {
		return errors.Errorf("invalid position %d:%d", me.line, me.character)
	}

	file, err := filepath.Abs(me.file)
	if err != nil {
		return errors.Errorf("resolving %s: %w", me.file, err)
	}

	registry := project.NewRegistry(fs)

	if me.workspace != "" {
		workspace, err := filepath.Abs(me.workspace)
		if err != nil {
			return errors.Errorf("resolving %s: %w", me.workspace, err)
		}
		if _, err := registry.Discover(ctx, workspace); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("workspace", workspace).Msg("project discovery incomplete")
		}
	}

	ttl := me.addonCacheTTL
	if ttl <= 0 {
		ttl = addon.DefaultTTL
	}
	resolver := addon.NewResolver(fs, addon.NewRootsCache(ttl, registry.AddonRoots))
	provider := definition.NewProvider(fs, registry, resolver, nil)

	locations := provider.ResolveDefinition(ctx, location.URIFromPath(file), position.New(me.line, me.character))

	enc := json.NewEncoder(out)
	for _, loc := range locations {
		if err := enc.Encode(loc); err != nil {
			return errors.Errorf("writing location: %w", err)
		}
	}

	return nil
}
