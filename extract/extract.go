package extract

import (
	"archive/tar"
	"bufio"

	"github.com/koitococo/infraplan/logutil"
)

// Options configures one extraction run.
type Options struct {
	URL         string
	Destination string
	Compression Compression
}

// Extract resolves Options.URL, decompresses per Options.Compression,
// and unpacks the resulting tar stream into Options.Destination. Any
// read, decode, or tar-entry error aborts extraction immediately;
// whatever was already written under Destination is left as-is.
func Extract(opts Options) error {
	logutil.Log.Infof("extracting %s (compression=%s) into %s", opts.URL, labelOf(opts.Compression), opts.Destination)

	src, err := openSource(opts.URL)
	if err != nil {
		return err
	}
	defer src.Close()

	decoded, closer, err := decompress(bufio.NewReader(src), opts.Compression)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}

	return untar(tar.NewReader(decoded), opts.Destination)
}

func labelOf(c Compression) string {
	if c == None {
		return "none"
	}
	return string(c)
}
