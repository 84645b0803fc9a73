package clientip

import (
	"fmt"
	"net/netip"
	"strings"
)

// typicalChainCapacity is the initial capacity used when parsing proxy chains.
const typicalChainCapacity = 8

// ResolveForwardedChain returns the left-most valid IP address in an
// X-Forwarded-For style value ("client, proxy1, proxy2").
//
// A nil value (or nil *string) means the header is absent and yields "" with
// no error. Any other non-string value is a caller error matching
// ErrInvalidInputType. Entries such as "unknown" are skipped because they are
// not IP addresses, and an entry with exactly one colon has its port removed
// before validation. When no entry validates the result is "".
func ResolveForwardedChain(value any) (string, error) {
	var chain string
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		chain = v
	case *string:
		if v == nil {
			return "", nil
		}
		chain = *v
	default:
		return "", &InputTypeError{Got: fmt.Sprintf("%T", value)}
	}

	raw, _, _ := firstValidInChain(splitForwardedChain(chain))
	return raw, nil
}

// splitForwardedChain splits value on commas, trims each entry, and strips
// single-colon ports. Order is preserved: client first, nearest proxy last.
func splitForwardedChain(value string) []string {
	parts := make([]string, 0, typicalChainCapacity)
	for part := range strings.SplitSeq(value, ",") {
		parts = append(parts, stripPort(strings.TrimSpace(part)))
	}
	return parts
}

func firstValidInChain(parts []string) (string, netip.Addr, bool) {
	for _, part := range parts {
		if ip, ok := parseIP(part); ok {
			return part, ip, true
		}
	}
	return "", netip.Addr{}, false
}

// parseXFFValues joins repeated header lines in arrival order and splits the
// result into chain entries, checking the length against maxChainLength.
//
// The whole chain is always returned so the left-most scan matches
// ResolveForwardedChain. The returned error is non-nil only to report that
// the chain is longer than the configured maximum.
func (r *Resolver) parseXFFValues(values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}

	parts := splitForwardedChain(strings.Join(values, ","))
	if len(parts) <= r.config.maxChainLength {
		return parts, nil
	}

	return parts, &ChainTooLongError{
		ExtractionError: ExtractionError{
			Err:    ErrChainTooLong,
			Source: SourceXForwardedFor,
		},
		ChainLength: len(parts),
		MaxLength:   r.config.maxChainLength,
	}
}
