package webserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sebest/xff"
	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/api"
	"github.com/verityio/wayverify/common"
	"github.com/verityio/wayverify/common/config"
	"github.com/verityio/wayverify/common/rcontext"
	"github.com/verityio/wayverify/metrics"
)

type requestCounter struct {
	lastId uint64
	lock   sync.Mutex
}

func (c *requestCounter) GetNextId() string {
	c.lock.Lock()
	defer c.lock.Unlock()
	id := c.lastId
	c.lastId++
	return "REQ-" + strconv.FormatUint(id, 10)
}

type handler struct {
	h          func(r *http.Request, ctx rcontext.RequestContext) interface{}
	action     string
	reqCounter *requestCounter
}

func (h handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("Panic received on %s %s: %s", r.Method, r.URL.Path, rec)
			if e, ok := rec.(error); ok {
				sentry.CaptureException(e)
			} else {
				sentry.CaptureMessage(fmt.Sprintf("Unknown panic received: %T %+v", rec, rec))
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			b, _ := json.Marshal(api.InternalServerError("unexpected error"))
			w.Write(b)
		}
	}()

	isUsingForwardedHost := false
	if r.Header.Get("X-Forwarded-Host") != "" && config.Get().General.UseForwardedHost {
		r.Host = r.Header.Get("X-Forwarded-Host")
		isUsingForwardedHost = true
	}
	r.Host = strings.Split(r.Host, ":")[0]

	var raddr string
	if config.Get().General.TrustAnyForward {
		raddr = r.Header.Get("X-Forwarded-For")
	} else {
		raddr = xff.GetRemoteAddr(r)
	}
	if raddr == "" {
		raddr = r.RemoteAddr
	}

	host, _, err := net.SplitHostPort(raddr)
	if err != nil {
		host = raddr
	}
	r.RemoteAddr = host

	contextLog := logrus.WithFields(logrus.Fields{
		"method":             r.Method,
		"host":               r.Host,
		"usingForwardedHost": isUsingForwardedHost,
		"resource":           r.URL.Path,
		"requestId":          h.reqCounter.GetNextId(),
		"remoteAddr":         r.RemoteAddr,
	})
	contextLog.Info("Received request")

	// Send CORS and other basic headers
	w.Header().Set("Access-Control-Allow-Headers", "Origin, X-Requested-With, Content-Type, Accept")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Server", "wayverify")

	// Build a context that can be used throughout the remainder of the app
	ctx := r.Context()
	ctx = context.WithValue(ctx, "wv.logger", contextLog)
	ctx = context.WithValue(ctx, "wv.config", *config.Get())
	ctx = context.WithValue(ctx, "wv.request", r)
	rctx := rcontext.RequestContext{Context: ctx, Log: contextLog, Config: *config.Get(), Request: r}
	r = r.WithContext(rctx)

	metrics.HttpRequests.With(prometheus.Labels{
		"host":   r.Host,
		"action": h.action,
		"method": r.Method,
	}).Inc()

	res := h.h(r, rctx)
	if res == nil {
		res = &api.EmptyResponse{}
	}

	statusCode := http.StatusOK
	switch result := res.(type) {
	case *api.ErrorResponse:
		switch result.Code {
		case common.ErrCodeNotFound:
			statusCode = http.StatusNotFound
		case common.ErrCodeNotVerified:
			statusCode = http.StatusNotFound
		case common.ErrCodeBadRequest:
			statusCode = http.StatusBadRequest
		case common.ErrCodeInvalidIdentifier:
			statusCode = http.StatusBadRequest
		case common.ErrCodeMethodNotAllowed:
			statusCode = http.StatusMethodNotAllowed
		case common.ErrCodeRateLimitExceeded:
			statusCode = http.StatusTooManyRequests
		default: // Treat as unknown (a generic server error)
			statusCode = http.StatusInternalServerError
		}
	case *api.ContentResponse:
		metrics.HttpResponses.With(prometheus.Labels{
			"host":       r.Host,
			"action":     h.action,
			"method":     r.Method,
			"statusCode": strconv.Itoa(http.StatusOK),
		}).Inc()

		for k, values := range result.Headers {
			for _, v := range values {
				w.Header().Add(k, v)
			}
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
		w.WriteHeader(http.StatusOK)
		w.Write(result.Data)
		return // Prevent sending conflicting responses
	}

	metrics.HttpResponses.With(prometheus.Labels{
		"host":       r.Host,
		"action":     h.action,
		"method":     r.Method,
		"statusCode": strconv.Itoa(statusCode),
	}).Inc()

	contextLog.Info(fmt.Sprintf("Replying with result: %T %+v", res, res))

	b, err := json.Marshal(res)
	if err != nil {
		sentry.CaptureException(err)
		contextLog.Error("Failed to marshal response: ", err)
		b, _ = json.Marshal(api.InternalServerError("Error encoding response"))
		statusCode = http.StatusInternalServerError
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(b)
}
