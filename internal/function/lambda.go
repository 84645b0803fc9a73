package function

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// HandleAPIGateway serves an API Gateway proxy event. The caller address is
// taken from the request context identity, and base64 bodies are decoded
// before parsing. The returned error is always nil so API Gateway relays the
// status code instead of answering 502.
func (a *Adapter) HandleAPIGateway(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req := request{
		Method:     event.HTTPMethod,
		Path:       event.Path,
		RemoteAddr: event.RequestContext.Identity.SourceIP,
		Headers:    gatewayHeaders(event),
		Body:       []byte(event.Body),
	}
	if event.IsBase64Encoded {
		req.Body, req.BodyErr = base64.StdEncoding.DecodeString(event.Body)
	}

	resp := a.serve(ctx, req)

	return events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Headers,
		Body:       string(resp.Body),
	}, nil
}

// gatewayHeaders prefers the multi-value form so repeated header lines stay
// distinct.
func gatewayHeaders(event events.APIGatewayProxyRequest) http.Header {
	h := make(http.Header, len(event.MultiValueHeaders)+len(event.Headers))
	if len(event.MultiValueHeaders) > 0 {
		for name, values := range event.MultiValueHeaders {
			for _, v := range values {
				h.Add(name, v)
			}
		}
		return h
	}
	for name, v := range event.Headers {
		h.Add(name, v)
	}
	return h
}
