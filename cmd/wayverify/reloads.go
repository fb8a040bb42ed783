package main

import (
	"github.com/verityio/wayverify/api/webserver"
	"github.com/verityio/wayverify/common/globals"
	"github.com/verityio/wayverify/gateway_health"
	"github.com/verityio/wayverify/metrics"
	"github.com/verityio/wayverify/pipelines/pipeline_verify"
	"github.com/verityio/wayverify/verified_cache"
)

func setupReloads() {
	reloadWebOnChan(globals.WebReloadChan)
	reloadMetricsOnChan(globals.MetricsReloadChan)
	reloadVerifierOnChan(globals.VerifierReloadChan)
}

func stopReloads() {
	// send stop signal to reload fns
	globals.WebReloadChan <- false
	globals.MetricsReloadChan <- false
	globals.VerifierReloadChan <- false
}

func reloadWebOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				webserver.Reload()
			} else {
				return // received stop
			}
		}
	}()
}

func reloadMetricsOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				metrics.Reload()
			} else {
				return // received stop
			}
		}
	}()
}

func reloadVerifierOnChan(reloadChan chan bool) {
	go func() {
		defer close(reloadChan)
		for {
			shouldReload := <-reloadChan
			if shouldReload {
				gateway_health.AdjustSize()
				verified_cache.AdjustSize()
				pipeline_verify.Reload()
			} else {
				return // received stop
			}
		}
	}()
}
