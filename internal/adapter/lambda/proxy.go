// Package lambda serves the echo router from API Gateway REST proxy events, so the same
// routes run behind Lambda and behind a plain listener.
package lambda

import (
	"context"
	"maps"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	echoadapter "github.com/awslabs/aws-lambda-go-api-proxy/echo"
	"github.com/labstack/echo/v4"
)

type Proxy struct{ adapter *echoadapter.EchoLambda }

func NewProxy(e *echo.Echo) *Proxy { return &Proxy{adapter: echoadapter.New(e)} }

// Handle is the lambda.Start handler. The gateway request id and caller address are
// forwarded as X-Request-Id and X-Real-Ip, which the router's request id and
// RealIP lookups read.
func (p *Proxy) Handle(ctx context.Context, ev events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ev.Headers = maps.Clone(ev.Headers)
	ev.MultiValueHeaders = maps.Clone(ev.MultiValueHeaders)
	if rid := ev.RequestContext.RequestID; rid != "" {
		setHeader(&ev, echo.HeaderXRequestID, rid)
	}
	if ip := ev.RequestContext.Identity.SourceIP; ip != "" {
		setHeader(&ev, echo.HeaderXRealIP, ip)
	}

	res, err := p.adapter.ProxyWithContext(ctx, ev)
	if err != nil {
		// the event could not be turned into a request (e.g. a bad base64 body)
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusBadRequest,
			Headers:    map[string]string{echo.HeaderContentType: echo.MIMEApplicationJSON},
			Body:       `{"error":"Malformed request."}`,
		}, nil
	}
	return res, nil
}

// setHeader replaces key in whichever header map the adapter reads, dropping
// spellings that differ only in case.
func setHeader(ev *events.APIGatewayProxyRequest, key, value string) {
	for k := range ev.Headers {
		if strings.EqualFold(k, key) {
			delete(ev.Headers, k)
		}
	}
	for k := range ev.MultiValueHeaders {
		if strings.EqualFold(k, key) {
			delete(ev.MultiValueHeaders, k)
		}
	}
	if ev.MultiValueHeaders != nil {
		ev.MultiValueHeaders[key] = []string{value}
	}
	if ev.Headers == nil {
		ev.Headers = map[string]string{}
	}
	ev.Headers[key] = value
}
