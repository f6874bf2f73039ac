package cli

import (
	"fmt"
	"slices"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vladislavdragonenkov/ordersync/internal/apiclient"
	"github.com/vladislavdragonenkov/ordersync/internal/config"
	"github.com/vladislavdragonenkov/ordersync/internal/store"
)

const (
	formatText = "text"
	formatJSON = "json"
)

var validFormats = []string{formatText, formatJSON}

// RootOptions хранит глобальные флаги orderctl.
type RootOptions struct {
	ConfigPath string
	Format     string
	BaseURL    string
	Token      string
	LogLevel   string

	// Config заполняется в PersistentPreRunE.
	Config *config.Config
}

// NewRootCommand собирает дерево команд orderctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "orderctl",
		Short: "orderctl: клиент Order API",
		Long: `orderctl работает с заказами через удалённый Order API.

Адрес API и токен берутся из ordersync.yaml, переменных ORDERSYNC_CLIENT_*
или флагов --api-url и --token.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", formatText, "output format (text|json)")
	cmd.PersistentFlags().StringVar(&opts.BaseURL, "api-url", "", "Order API base URL (overrides client.base_url)")
	cmd.PersistentFlags().StringVar(&opts.Token, "token", "", "bearer token (overrides client.token)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (overrides log.level)")

	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewUpdateCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

func (o *RootOptions) load(cmd *cobra.Command) error {
	if !slices.Contains(validFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, validFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.BaseURL != "" {
		cfg.Client.BaseURL = o.BaseURL
	}
	if o.Token != "" {
		cfg.Client.Token = o.Token
	}
	if o.LogLevel != "" {
		cfg.Log.Level = o.LogLevel
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid log level", err)
	}
	log.SetLevel(level)
	log.SetOutput(cmd.ErrOrStderr())

	o.Config = cfg
	return nil
}

func (o *RootOptions) printer(cmd *cobra.Command) *printer {
	return &printer{format: o.Format, w: cmd.OutOrStdout()}
}

func (o *RootOptions) client() *apiclient.Client {
	opts := []apiclient.Option{
		apiclient.WithTimeout(o.Config.Client.Timeout),
		apiclient.WithLogger(log.WithField("component", "api-client")),
	}
	if o.Config.Client.Token != "" {
		opts = append(opts, apiclient.WithSession(apiclient.StaticSession(o.Config.Client.Token)))
	}
	return apiclient.New(o.Config.Client.BaseURL, opts...)
}

// newStore создаёт store поверх клиента API; вызывающий закрывает его.
func (o *RootOptions) newStore(extra ...store.Option) *store.OrderStore {
	opts := append([]store.Option{store.WithLogger(log.WithField("component", "order-store"))}, extra...)
	return store.New(o.client(), opts...)
}
