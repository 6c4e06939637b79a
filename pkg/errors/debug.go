package errors

import (
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

type ErrorDump struct {
	TopMessage string `json:"top_message"`
	Code       Code   `json:"code,omitempty"`

	Chain []string `json:"chain,omitempty"`

	SheetsStatus  int    `json:"sheets_status,omitempty"`
	SheetsMessage string `json:"sheets_message,omitempty"`
}

// Dump flattens an error chain for structured logging. When the chain contains
// a Google API error the HTTP status and message from the Sheets backend are
// surfaced separately.
func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		d.SheetsStatus = apiErr.Code
		d.SheetsMessage = apiErr.Message
	}

	return d
}
