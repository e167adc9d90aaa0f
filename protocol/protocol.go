// Package protocol defines the JSON request and response exchanged over
// stdin and stdout.
package protocol

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
)

var (
	ErrNoDates          = errors.New("no dates in request")
	ErrNonPositiveCount = errors.New("target count must be greater than zero")
)

// Request is the prediction request read from stdin. Dates holds the join
// timestamp of each member as either a date, 2006-01-02, or a full RFC3339
// timestamp. Target is the member count to forecast a date for.
type Request struct {
	Dates  []string `json:"dates"`
	Target float64  `json:"target"`
}

// Valid checks the request holds at least one join date and a positive
// target count.
func (r *Request) Valid() error {
	if len(r.Dates) == 0 {
		return ErrNoDates
	}
	if r.Target <= 0 {
		return ErrNonPositiveCount
	}
	return nil
}

// JoinDates parses the request dates into UTC timestamps preserving the
// request order.
func (r *Request) JoinDates() ([]time.Time, error) {
	dates := make([]time.Time, 0, len(r.Dates))
	for i, ds := range r.Dates {
		d, err := parseDate(ds)
		if err != nil {
			return nil, fmt.Errorf("unable to parse date at index %d, %w", i, err)
		}
		dates = append(dates, d.UTC())
	}
	return dates, nil
}

func parseDate(ds string) (time.Time, error) {
	if d, err := time.Parse(time.DateOnly, ds); err == nil {
		return d, nil
	}
	return time.Parse(time.RFC3339, ds)
}

// ReadRequest decodes a single request from the reader.
func ReadRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("unable to decode request, %w", err)
	}
	return &req, nil
}

// Response is the prediction result written to stdout. Both fields are null
// when the prediction fails for any reason.
type Response struct {
	PredictedDate *string `json:"predicted_date"`
	ImageBase64   *string `json:"image_base64"`
}

// NewResponse builds a response from a predicted date and an optional chart.
// The date serializes as RFC3339 at midnight UTC. An empty image leaves the
// image field null.
func NewResponse(predicted time.Time, imageBase64 string) Response {
	var resp Response
	ds := predicted.UTC().Format(time.RFC3339)
	resp.PredictedDate = &ds
	if imageBase64 != "" {
		resp.ImageBase64 = &imageBase64
	}
	return resp
}

// NullResponse is the response for any failed prediction.
func NullResponse() Response {
	return Response{}
}

// WriteResponse encodes the response to the writer followed by a newline.
func WriteResponse(w io.Writer, resp Response) error {
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		return fmt.Errorf("unable to encode response, %w", err)
	}
	return nil
}
