package openapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// validStatus reports whether code is a status code OpenAPI accepts.
func validStatus(code int) bool {
	return code >= 100 && code <= 599
}

// errorDescription resolves the description of an error status: the
// explicit description if set, else the canonical text for 4xx and 5xx codes.
//
// See: https://spec.openapis.org/oas/v3.1.0#response-object (description)
func errorDescription(status ErrorStatus) (string, error) {
	if !validStatus(status.Code) {
		return "", fmt.Errorf("%w: %d", ErrInvalidStatus, status.Code)
	}
	if status.Description != "" {
		return status.Description, nil
	}
	if status.Code >= 400 {
		if text := http.StatusText(status.Code); text != "" {
			return text, nil
		}
	}
	return "", fmt.Errorf("%w: %d", ErrMissingDescription, status.Code)
}

// parseErrorCodes turns error code overrides into a lookup set. An empty
// list yields a nil set, meaning "keep everything".
func parseErrorCodes(codes []string) (map[int]struct{}, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	set := make(map[int]struct{}, len(codes))
	for _, raw := range codes {
		code, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || !validStatus(code) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
		}
		set[code] = struct{}{}
	}
	return set, nil
}

// errorResponses resolves declared error statuses into responses, keeping
// only overridden codes when overrides are present. Statuses dropped by the
// overrides are not resolved. A later declaration of the same code replaces
// an earlier one.
func errorResponses(src ErrorSource, overrides []string) (Responses, error) {
	keep, err := parseErrorCodes(overrides)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return nil, nil
	}

	var out Responses
	for _, status := range src.ErrorStatuses() {
		if keep != nil {
			if _, ok := keep[status.Code]; !ok {
				continue
			}
		}
		desc, err := errorDescription(status)
		if err != nil {
			return nil, err
		}
		if out == nil {
			out = make(Responses)
		}
		out[status.Code] = &Response{Description: desc}
	}
	return out, nil
}
