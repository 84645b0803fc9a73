package clientip

func sourceUnavailableError(unavailableErr error, sourceName string) error {
	if unavailableErr != nil {
		return unavailableErr
	}

	return &ExtractionError{Err: ErrSourceUnavailable, Source: sourceName}
}
