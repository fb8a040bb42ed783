package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/api/webserver"
	"github.com/verityio/wayverify/common/config"
	"github.com/verityio/wayverify/common/logging"
	"github.com/verityio/wayverify/common/version"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/metrics"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
	"github.com/verityio/wayverify/verified_cache"
)

func main() {
	configPath := flag.String("config", "wayverify.yaml", "The path to the configuration")
	versionFlag := flag.Bool("version", false, "Prints the version and exits")
	flag.Parse()

	if *versionFlag {
		version.Print(false)
		return // exit 0
	}

	// Override config path with config for Docker users
	configEnv := os.Getenv("WAYVERIFY_CONFIG")
	if configEnv != "" {
		configPath = &configEnv
	}

	config.Path = *configPath

	if config.Get().Sentry.Enabled {
		logrus.Info("Setting up Sentry for debugging...")
		err := sentry.Init(sentry.ClientOptions{
			Dsn:         config.Get().Sentry.Dsn,
			Environment: config.Get().Sentry.Environment,
			Debug:       config.Get().Sentry.Debug,
			Release:     fmt.Sprintf("%s-%s", version.Version, version.GitCommit),
		})
		if err != nil {
			panic(err)
		}
	}
	defer sentry.Flush(2 * time.Second)
	defer sentry.Recover()

	err := logging.Setup(
		config.Get().General.LogDirectory,
		config.Get().General.LogColors,
		config.Get().General.JsonLogs,
		config.Get().General.LogLevel,
	)
	if err != nil {
		panic(err)
	}

	logrus.Info("Starting up...")
	version.Print(true)

	logrus.Info("Preparing gateway health tracker...")
	gateway_health.Init()

	logrus.Info("Preparing verified content cache...")
	verified_cache.Init()

	logrus.Info("Preparing verifier...")
	pipeline_verify.Init()

	logrus.Info("Starting config watcher...")
	watcher := config.Watch()
	defer watcher.Close()
	setupReloads()

	logrus.Info("Starting wayverify...")
	metrics.Init()
	web := webserver.Init()

	// Set up a function to stop everything
	stopAllButWeb := func() {
		logrus.Info("Stopping reload watchers...")
		stopReloads()

		logrus.Info("Stopping metrics...")
		metrics.Stop()

		logrus.Info("Stopping verifier...")
		pipeline_verify.Stop()
	}

	// Set up a listener for SIGINT
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, os.Kill)
	selfStop := false
	go func() {
		<-stop
		selfStop = true

		logrus.Warn("Stop signal received")
		stopAllButWeb()

		logrus.Info("Stopping web server...")
		webserver.Stop()
	}()

	// Wait for the web server to exit nicely
	web.Add(1)
	web.Wait()

	// Stop everything else if we have to
	if !selfStop {
		stopAllButWeb()
	}

	logrus.Info("Goodbye!")
}
