// Package extract implements the streaming extractor (§4.5): resolve a
// source (HTTP or local path), optionally decompress it, and unpack the
// resulting tar stream into a destination directory.
package extract

import (
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/juju/ratelimit"

	"github.com/koitococo/infraplan/errs"
)

// httpFetchRate caps the token bucket every HTTP source is read
// through. It exists to give the decode/untar pipeline a uniform,
// bounded read size regardless of how bursty the origin server is, not
// to throttle a slow link.
const httpFetchRate = 64 * 1024 * 1024

// httpGetFn and openFileFn are overridden in tests.
var (
	httpGetFn  = http.Get
	openFileFn = os.Open
)

// openSource resolves url to a readable byte stream. http(s):// URLs
// are fetched; anything else is treated as a local filesystem path.
func openSource(url string) (io.ReadCloser, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		resp, err := httpGetFn(url)
		if err != nil {
			return nil, &errs.IOFailed{Op: "GET " + url, Err: err}
		}
		if resp.StatusCode/100 != 2 {
			resp.Body.Close()
			return nil, &errs.IOFailed{Op: "GET " + url, Err: &httpStatusError{resp.Status}}
		}

		bucket := ratelimit.NewBucketWithRate(httpFetchRate, httpFetchRate)
		limited := ratelimit.Reader(resp.Body, bucket)
		return &rechunkedBody{src: limited, closer: resp.Body}, nil
	}

	f, err := openFileFn(url)
	if err != nil {
		return nil, &errs.IOFailed{Op: "open " + url, Err: err}
	}
	return f, nil
}

type httpStatusError struct{ status string }

func (e *httpStatusError) Error() string { return "unexpected HTTP status: " + e.status }

// rechunkedBody fills every caller Read as full as the underlying
// stream allows before returning, so a decoder downstream never sees a
// short read purely because the network delivered fewer bytes than
// requested in one fragment. A genuine end of stream still surfaces
// once the source is exhausted.
type rechunkedBody struct {
	src    io.Reader
	closer io.Closer
}

func (b *rechunkedBody) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		m, err := b.src.Read(p[n:])
		n += m
		if err != nil {
			if err == io.EOF {
				if n > 0 {
					return n, nil
				}
				return 0, io.EOF
			}
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

func (b *rechunkedBody) Close() error { return b.closer.Close() }
