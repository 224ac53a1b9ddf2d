/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	admitFailedHosts bool
	bind             string
	corsOrigins      []string
	defaultPassword  string
	defaultRoom      string
	frontBase        string
	metrics          bool
	port             int
	prefix           string
	profile          bool
	sessionTimeout   time.Duration
	tlsCert          string
	tlsKey           string
	verbose          bool
	version          bool
}

func (c *Config) validate() error {
	if (c.tlsCert == "") != (c.tlsKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.sessionTimeout < 0 {
		return fmt.Errorf("invalid session timeout (must not be negative): %s", c.sessionTimeout)
	}
	if c.defaultRoom != "" && c.defaultPassword == "" {
		return errors.New("--default-password must be set when --default-room is set")
	}
	if _, err := url.Parse(c.frontBase); err != nil {
		return fmt.Errorf("invalid front base %q: %w", c.frontBase, err)
	}
	return nil
}

func (c *Config) scheme() string {
	if c.tlsCert != "" && c.tlsKey != "" {
		return "https"
	}
	return "http"
}

// inviteLink points players at the front-end with the room preselected.
func (c *Config) inviteLink(roomID string) string {
	return strings.TrimSuffix(c.frontBase, "/") + "/?room=" + url.QueryEscape(roomID)
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("LUCKYDRAW")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "luckydraw",
		Short:         "Real-time draw rooms: join over websockets, let the host pick up to seven winners.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return ServePage(cmd.Context(), cfg, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.BoolVar(&cfg.admitFailedHosts, "admit-failed-hosts", true, "add connections that fail host authentication as regular participants (env: LUCKYDRAW_ADMIT_FAILED_HOSTS)")
	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: LUCKYDRAW_BIND)")
	fs.StringSliceVar(&cfg.corsOrigins, "cors-origins", []string{"*"}, "origins allowed to call the API (env: LUCKYDRAW_CORS_ORIGINS)")
	fs.StringVar(&cfg.defaultPassword, "default-password", "000794", "host password of the default room (env: LUCKYDRAW_DEFAULT_PASSWORD)")
	fs.StringVar(&cfg.defaultRoom, "default-room", "WAT", "room provisioned at startup, empty to disable (env: LUCKYDRAW_DEFAULT_ROOM)")
	fs.StringVar(&cfg.frontBase, "front-base", "https://example.github.io/wat-race-front", "base address used to build invite links (env: LUCKYDRAW_FRONT_BASE)")
	fs.BoolVar(&cfg.metrics, "metrics", false, "expose prometheus metrics (env: LUCKYDRAW_METRICS)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: LUCKYDRAW_PORT)")
	fs.StringVar(&cfg.prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: LUCKYDRAW_PREFIX)")
	fs.BoolVar(&cfg.profile, "profile", false, "register net/http/pprof handlers (env: LUCKYDRAW_PROFILE)")
	fs.DurationVar(&cfg.sessionTimeout, "session-timeout", 60*time.Minute, "time before idle empty rooms are removed, 0 to disable; configured rooms nobody joined lose their host password (env: LUCKYDRAW_SESSION_TIMEOUT)")
	fs.StringVar(&cfg.tlsCert, "tls-cert", "", "path to tls certificate (env: LUCKYDRAW_TLS_CERT)")
	fs.StringVar(&cfg.tlsKey, "tls-key", "", "path to tls keyfile (env: LUCKYDRAW_TLS_KEY)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: LUCKYDRAW_VERBOSE)")
	fs.BoolVarP(&cfg.version, "version", "V", false, "display version and exit (env: LUCKYDRAW_VERSION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("luckydraw v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
