package clientip

const (
	securityEventMultipleHeaders = "multiple_headers"
	securityEventChainTooLong    = "chain_too_long"
)
