package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/didip/tollbooth"
	"github.com/getsentry/sentry-go"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/api"
	v1 "github.com/verityio/wayverify/api/v1"
	"github.com/verityio/wayverify/common/config"
)

type route struct {
	method  string
	handler handler
}

var srv *http.Server
var waitGroup = &sync.WaitGroup{}
var reload = false

func Init() *sync.WaitGroup {
	rtr := mux.NewRouter()
	counter := &requestCounter{}

	optionsHandler := handler{emptyResponseHandler, "options_request", counter}
	verifyHandler := handler{v1.StartVerification, "start_verification", counter}
	contentHandler := handler{v1.GetContent, "get_content", counter}
	statusHandler := handler{v1.GetStatus, "get_status", counter}
	clearAllHandler := handler{v1.ClearAllState, "clear_all", counter}
	clearOneHandler := handler{v1.ClearIdentifierState, "clear_identifier", counter}
	healthzHandler := handler{v1.GetHealthz, "healthz", counter}

	routes := make(map[string]route)
	routes["/_wayverify/v1/verify/{identifier:[^/]+}"] = route{"POST", verifyHandler}
	routes["/_wayverify/v1/content/{identifier:[^/]+}"] = route{"GET", contentHandler}
	routes["/_wayverify/v1/content/{identifier:[^/]+}/{path:.*}"] = route{"GET", contentHandler}
	routes["/_wayverify/v1/status/{identifier:[^/]+}"] = route{"GET", statusHandler}
	routes["/_wayverify/v1/clear"] = route{"POST", clearAllHandler}
	routes["/_wayverify/v1/clear/{identifier:[^/]+}"] = route{"POST", clearOneHandler}

	for routePath, route := range routes {
		logrus.Info("Registering route: " + route.method + " " + routePath)
		rtr.Handle(routePath, route.handler).Methods(route.method)
		rtr.Handle(routePath, optionsHandler).Methods("OPTIONS")
	}

	// The event stream writes incrementally, so it bypasses the JSON wrapper
	rtr.HandleFunc("/_wayverify/v1/events", v1.StreamEvents).Methods("GET")

	rtr.Handle("/healthz", healthzHandler).Methods("OPTIONS", "GET")

	rtr.NotFoundHandler = handler{notFoundHandler, "not_found", counter}
	rtr.MethodNotAllowedHandler = handler{methodNotAllowedHandler, "method_not_allowed", counter}

	var routerHandler http.Handler = rtr
	if config.Get().RateLimit.Enabled {
		logrus.Info("Enabling rate limit")
		limiter := tollbooth.NewLimiter(0, nil)
		limiter.SetIPLookups([]string{"X-Forwarded-For", "X-Real-IP", "RemoteAddr"})
		limiter.SetTokenBucketExpirationTTL(time.Hour)
		limiter.SetBurst(config.Get().RateLimit.BurstCount)
		limiter.SetMax(config.Get().RateLimit.RequestsPerSecond)

		b, _ := json.Marshal(api.RateLimitReached())
		limiter.SetMessage(string(b))
		limiter.SetMessageContentType("application/json")

		routerHandler = tollbooth.LimitHandler(limiter, rtr)
	}

	address := config.Get().General.BindAddress + ":" + strconv.Itoa(config.Get().General.Port)
	srv = &http.Server{Addr: address, Handler: routerHandler}
	reload = false

	go func() {
		logrus.WithField("address", address).Info("Started up. Listening at http://" + address)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			logrus.Fatal(err)
		}

		// Only notify the main thread that we're done if we're actually done
		srv = nil
		if !reload {
			waitGroup.Done()
		}
	}()

	return waitGroup
}

func Reload() {
	reload = true

	// Stop the server first
	Stop()

	// Reload the web server, ignoring the wait group (because we don't care to wait here)
	Init()
}

func Stop() {
	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			panic(err)
		}
	}
}
