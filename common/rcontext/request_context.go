package rcontext

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/verityio/wayverify/common/config"
)

func Initial() RequestContext {
	return RequestContext{
		Context: context.Background(),
		Log:     logrus.WithFields(logrus.Fields{"nocontext": true}),
		Config:  *config.Get(),
		Request: nil,
	}.populate()
}

type RequestContext struct {
	context.Context

	// These are also stored on the context object itself
	Log     *logrus.Entry         // wv.logger
	Config  config.VerifierConfig // wv.config
	Request *http.Request         // wv.request
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, "wv.logger", c.Log)
	c.Context = context.WithValue(c.Context, "wv.config", c.Config)
	c.Context = context.WithValue(c.Context, "wv.request", c.Request)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	ctx := context.WithValue(c.Context, "wv.logger", log)
	return RequestContext{
		Context: ctx,
		Log:     log,
		Config:  c.Config,
		Request: c.Request,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}
