package extract_test

import (
	"archive/tar"
	"bytes"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"
	. "gopkg.in/check.v1"

	"github.com/koitococo/infraplan/extract"
)

func Test(t *testing.T) { TestingT(t) }

type extractSuite struct{}

var _ = Suite(&extractSuite{})

var fixedModTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func buildTar(c *C) []byte {
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)

	uid, gid := os.Getuid(), os.Getgid()

	c.Assert(tw.WriteHeader(&tar.Header{
		Name: "etc/", Typeflag: tar.TypeDir, Mode: 0755,
		Uid: uid, Gid: gid, ModTime: fixedModTime,
	}), IsNil)

	content := []byte("hello from the image\n")
	c.Assert(tw.WriteHeader(&tar.Header{
		Name: "etc/hostname", Typeflag: tar.TypeReg, Mode: 0644,
		Size: int64(len(content)), Uid: uid, Gid: gid, ModTime: fixedModTime,
	}), IsNil)
	_, err := tw.Write(content)
	c.Assert(err, IsNil)

	c.Assert(tw.WriteHeader(&tar.Header{
		Name: "etc/alias", Typeflag: tar.TypeSymlink, Linkname: "/etc/hostname",
		Uid: uid, Gid: gid, ModTime: fixedModTime,
	}), IsNil)

	c.Assert(tw.Close(), IsNil)
	return buf.Bytes()
}

func (s *extractSuite) TestExtractLocalNoCompression(c *C) {
	src := filepath.Join(c.MkDir(), "rootfs.tar")
	c.Assert(os.WriteFile(src, buildTar(c), 0644), IsNil)

	dest := c.MkDir()
	err := extract.Extract(extract.Options{URL: src, Destination: dest, Compression: extract.None})
	c.Assert(err, IsNil)

	data, err := os.ReadFile(filepath.Join(dest, "etc", "hostname"))
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "hello from the image\n")

	info, err := os.Stat(filepath.Join(dest, "etc", "hostname"))
	c.Assert(err, IsNil)
	c.Check(info.Mode().Perm(), Equals, os.FileMode(0644))

	link, err := os.Readlink(filepath.Join(dest, "etc", "alias"))
	c.Assert(err, IsNil)
	c.Check(link, Equals, "/etc/hostname")
}

func (s *extractSuite) TestExtractGzip(c *C) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, err := gw.Write(buildTar(c))
	c.Assert(err, IsNil)
	c.Assert(gw.Close(), IsNil)

	src := filepath.Join(c.MkDir(), "rootfs.tar.gz")
	c.Assert(os.WriteFile(src, buf.Bytes(), 0644), IsNil)

	dest := c.MkDir()
	err = extract.Extract(extract.Options{URL: src, Destination: dest, Compression: extract.Gzip})
	c.Assert(err, IsNil)

	data, err := os.ReadFile(filepath.Join(dest, "etc", "hostname"))
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "hello from the image\n")
}

func (s *extractSuite) TestExtractHTTPSource(c *C) {
	payload := buildTar(c)
	old := *extract.HTTPGetFn
	*extract.HTTPGetFn = func(url string) (*http.Response, error) {
		c.Check(url, Equals, "https://images.example/rootfs.tar")
		return &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Body:       io.NopCloser(bytes.NewReader(payload)),
		}, nil
	}
	defer func() { *extract.HTTPGetFn = old }()

	dest := c.MkDir()
	err := extract.Extract(extract.Options{
		URL:         "https://images.example/rootfs.tar",
		Destination: dest,
		Compression: extract.None,
	})
	c.Assert(err, IsNil)

	data, err := os.ReadFile(filepath.Join(dest, "etc", "hostname"))
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "hello from the image\n")
}

func (s *extractSuite) TestExtractHTTPErrorStatus(c *C) {
	old := *extract.HTTPGetFn
	*extract.HTTPGetFn = func(url string) (*http.Response, error) {
		return &http.Response{
			StatusCode: 404,
			Status:     "404 Not Found",
			Body:       io.NopCloser(bytes.NewReader(nil)),
		}, nil
	}
	defer func() { *extract.HTTPGetFn = old }()

	err := extract.Extract(extract.Options{URL: "https://images.example/missing.tar", Destination: c.MkDir()})
	c.Assert(err, ErrorMatches, ".*404.*")
}

func (s *extractSuite) TestExtractAbortsOnTruncatedTar(c *C) {
	full := buildTar(c)
	src := filepath.Join(c.MkDir(), "truncated.tar")
	c.Assert(os.WriteFile(src, full[:len(full)-600], 0644), IsNil)

	err := extract.Extract(extract.Options{URL: src, Destination: c.MkDir()})
	c.Assert(err, NotNil)
}

// oneByteReader forces every Read call to return at most one byte, the
// worst case for a source that never hands back a full buffer.
type oneByteReader struct{ r io.Reader }

func (o *oneByteReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return o.r.Read(p[:1])
}

func (s *extractSuite) TestExtractSucceedsWithOneByteChunks(c *C) {
	payload := buildTar(c)
	old := *extract.HTTPGetFn
	*extract.HTTPGetFn = func(url string) (*http.Response, error) {
		return &http.Response{
			StatusCode: 200,
			Status:     "200 OK",
			Body:       io.NopCloser(&oneByteReader{r: bytes.NewReader(payload)}),
		}, nil
	}
	defer func() { *extract.HTTPGetFn = old }()

	dest := c.MkDir()
	err := extract.Extract(extract.Options{
		URL:         "https://images.example/rootfs.tar",
		Destination: dest,
		Compression: extract.None,
	})
	c.Assert(err, IsNil)

	data, err := os.ReadFile(filepath.Join(dest, "etc", "hostname"))
	c.Assert(err, IsNil)
	c.Check(string(data), Equals, "hello from the image\n")

	link, err := os.Readlink(filepath.Join(dest, "etc", "alias"))
	c.Assert(err, IsNil)
	c.Check(link, Equals, "/etc/hostname")
}
