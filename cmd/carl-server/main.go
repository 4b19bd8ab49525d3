// cmd/carl-server — HTTP tool server and command line front end for carl
//
// Usage:
//
//	carl-server serve --config carl.yaml
//	carl-server eval "x^2+2*x+1" --set x=3
//	carl-server factor "x^3-x"
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ths-rwth/carl"
	"github.com/ths-rwth/carl/internal/config"
)

var (
	configPath string
	verbose    bool
	port       int
	assigns    []string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "carl-server",
	Short: "Exact polynomial arithmetic over the rationals",
	Long: `carl-server exposes the carl polynomial kernel as a JSON tool endpoint
and as one-shot commands for evaluating and factorizing expressions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		logger, err = buildLogger(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP tool server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

var evalCmd = &cobra.Command{
	Use:   "eval EXPR",
	Short: "Print the canonical form of EXPR, or its value under --set",
	Args:  cobra.ExactArgs(1),
	RunE:  runEval,
}

var factorCmd = &cobra.Command{
	Use:   "factor EXPR",
	Short: "Print the factorization of the polynomial EXPR",
	Args:  cobra.ExactArgs(1),
	RunE:  runFactor,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	serveCmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides config)")
	evalCmd.Flags().StringArrayVar(&assigns, "set", nil, "Variable assignment name=value, repeatable")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(evalCmd)
	rootCmd.AddCommand(factorCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func buildLogger(lc config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	if lc.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func newCache() *carl.FactorizationCache {
	return carl.NewFactorizationCache(
		carl.WithLogger(logger),
		carl.WithRootSearchBound(cfg.Cache.RootSearchBound),
		carl.WithFactorReuse(cfg.Cache.ReuseFactors),
	)
}

func newSession() *carl.Session {
	return carl.NewSession(newCache(), carl.WithMaxExponent(cfg.Server.MaxExponent))
}

func runServe(cmd *cobra.Command, args []string) error {
	if port != 0 {
		cfg.Server.Port = port
	}
	gin.SetMode(gin.ReleaseMode)
	session := newSession()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newRouter(session, logger, cfg.Server.MaxBodyBytes),
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("carl tool server listening",
			zap.String("addr", srv.Addr),
			zap.String("cache_id", session.Cache().ID().String()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runEval(cmd *cobra.Command, args []string) error {
	session := newSession()
	e, err := session.Parse(args[0])
	if err != nil {
		return err
	}
	if len(assigns) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), e.String())
		return nil
	}
	asg, err := parseAssignments(session, assigns)
	if err != nil {
		return err
	}
	val, err := e.Evaluate(asg)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), val.String())
	return nil
}

func runFactor(cmd *cobra.Command, args []string) error {
	session := newSession()
	p, err := session.ParsePolynomial(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), session.Cache().Factorize(p).String())
	return nil
}

func parseAssignments(session *carl.Session, pairs []string) (carl.Assignment, error) {
	asg := carl.Assignment{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: assignment %q needs name=value", carl.ErrMalformedLiteral, pair)
		}
		v, found := session.Pool().Lookup(strings.TrimSpace(name))
		if !found {
			continue
		}
		e, err := session.Parse(value)
		if err != nil {
			return nil, err
		}
		if e.Kind() != carl.KindRational {
			return nil, fmt.Errorf("%w: %q is not a number", carl.ErrMalformedLiteral, value)
		}
		r, err := e.Evaluate(nil)
		if err != nil {
			return nil, err
		}
		asg[v] = r
	}
	return asg, nil
}
