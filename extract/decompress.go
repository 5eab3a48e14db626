package extract

import (
	"compress/bzip2"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"

	"github.com/koitococo/infraplan/errs"
)

// Compression names a streaming decoder. The zero value, None, means
// "no decompression, tar reads the source directly".
type Compression string

const (
	None  Compression = ""
	Zstd  Compression = "zstd"
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
	Xz    Compression = "xz"
	Lzma  Compression = "lzma"
)

// decompress wraps r in the streaming decoder compression names. The
// returned closer is nil when the decoder needs no explicit close.
func decompress(r io.Reader, compression Compression) (io.Reader, io.Closer, error) {
	switch compression {
	case None:
		return r, nil, nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, &errs.IOFailed{Op: "open gzip stream", Err: err}
		}
		return gr, gr, nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, &errs.IOFailed{Op: "open zstd stream", Err: err}
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil
	case Bzip2:
		return bzip2.NewReader(r), nil, nil
	case Xz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, &errs.IOFailed{Op: "open xz stream", Err: err}
		}
		return xr, nil, nil
	case Lzma:
		lr, err := lzma.NewReader(r)
		if err != nil {
			return nil, nil, &errs.IOFailed{Op: "open lzma stream", Err: err}
		}
		return lr, nil, nil
	default:
		return nil, nil, &errs.ConfigError{Path: "compression", Reason: "unsupported compression " + string(compression)}
	}
}
