// Package clientip resolves a best-guess originating client IP from the
// headers that proxies, load balancers, and CDNs add to a request.
//
// # Resolution Order
//
// By default the following headers are tried in order and the first valid
// address wins:
//
//   - X-Client-IP (Amazon EC2, Heroku)
//   - X-Forwarded-For (left-most valid entry)
//   - CF-Connecting-IP (Cloudflare)
//   - Fastly-Client-IP (Fastly, Firebase Hosting)
//   - True-Client-IP (Akamai, Cloudflare)
//   - X-Real-IP (nginx)
//   - X-Cluster-Client-IP (Rackspace LB, Riverbed Stingray)
//   - X-Forwarded, Forwarded-For, Forwarded
//
// Only X-Forwarded-For is parsed as a chain; every other header must hold a
// single bare address and is validated as received, without trimming. Values
// such as "unknown" are skipped. The whole X-Forwarded-For chain is always
// scanned; chains longer than MaxChainLength are reported as a security event.
//
// # Basic Usage
//
//	ip := clientip.ClientIP(req.Header)
//	if ip == "" {
//	    // no header carried a usable address
//	}
//
// Parsing a single X-Forwarded-For value:
//
//	ip, err := clientip.ResolveForwardedChain("203.0.113.5:4321, 70.41.3.18")
//	// ip == "203.0.113.5"
//
// # Custom Order
//
//	resolver, err := clientip.New(
//	    clientip.Priority(
//	        clientip.SourceCFConnectingIP,
//	        clientip.SourceXForwardedFor,
//	        clientip.SourceRemoteAddr,
//	    ),
//	)
//	result := resolver.Resolve(req)
//	fmt.Println(result.Raw, result.Source)
//
// # Observability
//
// WithLogger accepts anything with slog's WarnContext signature. Metrics can be
// wired through WithMetrics; a Prometheus adapter lives in the
// clientip/prometheus package.
//
// # Security Considerations
//
// These headers are set by whoever sent the request. The result is suitable
// for logging, rate-limit hints, and CAPTCHA remoteip parameters. Do not use
// it for access control unless every hop in front of the service overwrites
// the headers it relies on.
package clientip
