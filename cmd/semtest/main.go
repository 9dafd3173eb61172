// SPDX-FileCopyrightText: 2025 Comcast Cable Communications Management, LLC
// SPDX-License-Identifier: Apache-2.0

// semtest replays the semaphore system call test program against an in-process kernel:
// basic calls, inheritance, fairness and free on exit.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/xmidt-org/procsema/logging"
	"github.com/xmidt-org/procsema/proc"
	"github.com/xmidt-org/procsema/semaphore"
	"github.com/xmidt-org/procsema/sysent"
	"github.com/xmidt-org/procsema/xmetrics"
	"github.com/xmidt-org/procsema/xviper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	applicationName = "procsema"

	ScenarioFlag = "scenario"
	ListenFlag   = "listen"
	TimeoutFlag  = "timeout"
)

func newFlagSet(name string, errorHandling pflag.ErrorHandling) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, errorHandling)
	fs.StringP(xviper.DefaultFileFlag, "f", "", "the configuration file to use.  Overrides the search path.")
	fs.String(xviper.DefaultNameFlag, "", "the configuration file name, without extension, searched for on the standard paths")
	fs.StringP(ScenarioFlag, "s", allScenarios, "the scenario to run: basic, inheritance, fairness, exit, or all")
	fs.String(ListenFlag, "", "if set, serve /metrics on this address after the scenarios complete")
	fs.Duration(TimeoutFlag, 5*time.Second, "how long to wait for a simulated process to block or finish")
	return fs
}

func defaults() xviper.Defaults {
	return xviper.Defaults{
		semaphore.OptionsKey + ".maxSemaphores": semaphore.DefaultMaxSemaphores,
		semaphore.OptionsKey + ".maxWaiters":    0,
		semaphore.OptionsKey + ".ownerOnlyFree": false,
		logging.LoggingKey + ".level":           "ERROR",
		xmetrics.OptionsKey + ".namespace":      xmetrics.DefaultNamespace,
		xmetrics.OptionsKey + ".subsystem":      xmetrics.DefaultSubsystem,
	}
}

func provideRegistry(v *viper.Viper) (xmetrics.Registry, error) {
	var o xmetrics.Options
	if err := xviper.UnmarshalKey(v, xmetrics.OptionsKey, &o); err != nil {
		return nil, err
	}

	return xmetrics.NewRegistry(&o, semaphore.Metrics, sysent.Metrics)
}

func provideSubsystem(v *viper.Viper, t *proc.Table, r xmetrics.Registry, l *zap.Logger) (*semaphore.Subsystem, error) {
	o := semaphore.DefaultOptions()
	if err := xviper.UnmarshalKey(v, semaphore.OptionsKey, &o); err != nil {
		return nil, err
	}

	return semaphore.New(
		t,
		semaphore.WithOptions(o),
		semaphore.WithLogger(l),
		semaphore.WithMeasures(semaphore.NewMeasures(r)),
	), nil
}

func provideSysent(s *semaphore.Subsystem, r xmetrics.Registry, l *zap.Logger) *sysent.Table {
	return sysent.New(s, sysent.WithLogger(l), sysent.WithMeasures(sysent.NewMeasures(r)))
}

// RunIn is the set of components needed to replay the scenarios.
type RunIn struct {
	fx.In

	Viper  *viper.Viper
	Logger *zap.Logger
	Procs  *proc.Table
	Sysent *sysent.Table
	Output io.Writer
}

func run(in RunIn) error {
	selected, err := selectScenarios(in.Viper.GetString(ScenarioFlag))
	if err != nil {
		return err
	}

	d := &driver{
		logger:  in.Logger,
		procs:   in.Procs,
		sysent:  in.Sysent,
		timeout: in.Viper.GetDuration(TimeoutFlag),
		out:     in.Output,
	}

	return d.runScenarios(selected)
}

// metricsHandler exposes the registry in the Prometheus text format.
func metricsHandler(r xmetrics.Registry) http.Handler {
	router := mux.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(r, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	return router
}

// serveMetrics binds the metrics listener when the listen flag is set.  Whether it did is
// returned so the caller knows to wait for a signal.
func serveMetrics(v *viper.Viper, r xmetrics.Registry, l *zap.Logger, lc fx.Lifecycle) bool {
	address := v.GetString(ListenFlag)
	if len(address) == 0 {
		return false
	}

	server := &http.Server{
		Addr:              address,
		Handler:           metricsHandler(r),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			listener, err := net.Listen("tcp", address)
			if err != nil {
				return err
			}

			l.Info("serving metrics", zap.String("address", listener.Addr().String()))
			go func() {
				if err := server.Serve(listener); !errors.Is(err, http.ErrServerClosed) {
					l.Error("metrics server failed", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: server.Shutdown,
	})

	return true
}

func semtest(arguments []string, output io.Writer) error {
	fs := newFlagSet(applicationName, pflag.ContinueOnError)
	if err := fs.Parse(arguments); err != nil {
		return err
	}

	var serving bool
	app := fx.New(
		fx.NopLogger,
		fx.Supply(fs),
		fx.Provide(
			func(fs *pflag.FlagSet) (*viper.Viper, error) {
				return xviper.New(
					xviper.WithDefaults(defaults()),
					xviper.StdOptions(applicationName, fs),
				)
			},
			func(v *viper.Viper) (*zap.Logger, error) {
				return logging.NewFromViper(v)
			},
			func(l *zap.Logger) *proc.Table {
				return proc.NewTable(proc.WithLogger(l))
			},
			func() io.Writer {
				return output
			},
			provideRegistry,
			provideSubsystem,
			provideSysent,
		),
		fx.Invoke(
			run,
			func(v *viper.Viper, r xmetrics.Registry, l *zap.Logger, lc fx.Lifecycle) {
				serving = serveMetrics(v, r, l, lc)
			},
		),
	)

	if err := app.Err(); err != nil {
		return err
	}

	if !serving {
		return nil
	}

	if err := app.Start(context.Background()); err != nil {
		return err
	}

	<-app.Done()

	ctx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
	defer cancel()
	return app.Stop(ctx)
}

func main() {
	if err := semtest(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
