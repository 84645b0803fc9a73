package clientip

import (
	"context"
	"net/netip"
	"net/textproto"
)

const (
	// SourceXClientIP resolves from X-Client-IP (Amazon EC2, Heroku).
	SourceXClientIP = "x_client_ip"
	// SourceXForwardedFor resolves the left-most valid entry of X-Forwarded-For.
	SourceXForwardedFor = "x_forwarded_for"
	// SourceCFConnectingIP resolves from Cloudflare's CF-Connecting-IP.
	SourceCFConnectingIP = "cf_connecting_ip"
	// SourceFastlyClientIP resolves from Fastly-Client-IP (Fastly, Firebase).
	SourceFastlyClientIP = "fastly_client_ip"
	// SourceTrueClientIP resolves from True-Client-IP (Akamai, Cloudflare).
	SourceTrueClientIP = "true_client_ip"
	// SourceXRealIP resolves from X-Real-IP (nginx).
	SourceXRealIP = "x_real_ip"
	// SourceXClusterClientIP resolves from X-Cluster-Client-IP (Rackspace, Riverbed).
	SourceXClusterClientIP = "x_cluster_client_ip"
	// SourceXForwarded resolves from X-Forwarded.
	SourceXForwarded = "x_forwarded"
	// SourceForwardedFor resolves from Forwarded-For.
	SourceForwardedFor = "forwarded_for"
	// SourceForwarded resolves from Forwarded, validated as a bare address.
	SourceForwarded = "forwarded"
	// SourceRemoteAddr resolves from the connection's remote address.
	SourceRemoteAddr = "remote_addr"
)

// DefaultPriority is the header order used when no Priority option is given.
// The first source that yields a valid address wins.
var DefaultPriority = []string{
	SourceXClientIP,
	SourceXForwardedFor,
	SourceCFConnectingIP,
	SourceFastlyClientIP,
	SourceTrueClientIP,
	SourceXRealIP,
	SourceXClusterClientIP,
	SourceXForwarded,
	SourceForwardedFor,
	SourceForwarded,
}

var builtinHeaderNames = map[string]string{
	SourceXClientIP:        "X-Client-IP",
	SourceXForwardedFor:    "X-Forwarded-For",
	SourceCFConnectingIP:   "CF-Connecting-IP",
	SourceFastlyClientIP:   "Fastly-Client-IP",
	SourceTrueClientIP:     "True-Client-IP",
	SourceXRealIP:          "X-Real-IP",
	SourceXClusterClientIP: "X-Cluster-Client-IP",
	SourceXForwarded:       "X-Forwarded",
	SourceForwardedFor:     "Forwarded-For",
	SourceForwarded:        "Forwarded",
}

// headerNameForSource maps a source name to the header it reads. Unknown
// names are treated as custom header names.
func headerNameForSource(sourceName string) string {
	if name, ok := builtinHeaderNames[NormalizeSourceName(sourceName)]; ok {
		return name
	}
	return textproto.CanonicalMIMEHeaderKey(sourceName)
}

type extractionResult struct {
	IP     netip.Addr
	Raw    string
	Source string
}

type sourceExtractor interface {
	Extract(ctx context.Context, input RequestInput) (extractionResult, error)

	Name() string
}

func (r *Resolver) logSecurityWarning(ctx context.Context, input RequestInput, sourceName, event, msg string, attrs ...any) {
	baseAttrs := []any{
		"event", event,
		"source", sourceName,
		"path", input.Path,
		"remote_addr", input.RemoteAddr,
	}

	baseAttrs = append(baseAttrs, attrs...)
	r.config.logger.WarnContext(ctx, msg, baseAttrs...)
}
