package extract

import "net/http"

// HTTPGetFn and OpenFileFn let tests substitute source resolution
// without a real network or filesystem dependency.
var (
	HTTPGetFn  = &httpGetFn
	OpenFileFn = &openFileFn
)

type HTTPGetFunc = func(string) (*http.Response, error)
