package jsonstream

import (
	"context"
	"io"
	"net/http"

	"github.com/shpandrak/shpanzip/stream"
)

// StreamJsonToHttpResponseWriter writes the stream as the JSON array body of an OK response.
// The headers are only sent once the first element is available.
func StreamJsonToHttpResponseWriter[T any](ctx context.Context, w http.ResponseWriter, s stream.Stream[T]) error {
	return StreamJsonToWriterWithInit(ctx, w, s, func() error {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		return nil
	})
}

// ExecuteStreamingHttpPostRequest posts the stream as a JSON array body, streaming it while the request is sent.
func ExecuteStreamingHttpPostRequest[T any](
	ctx context.Context,
	client *http.Client,
	url string,
	s stream.Stream[T],
) (*http.Response, error) {

	return StreamJsonAsReaderAndReturn(ctx, s, func(ctx context.Context, r io.Reader) (*http.Response, error) {
		// Create a new HTTP request with the JSON payload
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, r)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")

		return client.Do(req)
	})

}
