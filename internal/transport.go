package internal

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/http"
	"strings"

	"github.com/dfiliuk-tech/hw-2/pkg/httpmsg"
)

const (
	defaultMaxBodySize   = 10 << 20 // 10MB
	defaultMaxMemorySize = 32 << 20
)

// ErrBodyTooLarge is returned by FromHTTPRequest when the body exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// FromHTTPRequest builds a ServerRequest from a net/http request. The body
// is buffered so it stays readable after form parsing. url-encoded and
// multipart forms become the parsed body; JSON objects and arrays too.
func FromHTTPRequest(r *http.Request, maxBodySize int64) (*httpmsg.ServerRequest, error) {
	if maxBodySize <= 0 {
		maxBodySize = defaultMaxBodySize
	}

	var body []byte
	if r.Body != nil && r.Body != http.NoBody {
		var err error
		body, err = io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
		if err != nil {
			return nil, fmt.Errorf("read request body: %w", err)
		}
		if int64(len(body)) > maxBodySize {
			return nil, ErrBodyTooLarge
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
	}

	form, files, err := parseBody(r, body)
	if err != nil {
		return nil, err
	}

	headers := make(map[string][]string, len(r.Header)+1)
	for name, values := range r.Header {
		headers[name] = values
	}
	if r.Host != "" {
		headers["Host"] = []string{r.Host}
	}

	return httpmsg.FromSnapshot(httpmsg.Snapshot{
		Method:  r.Method,
		Headers: headers,
		Body:    httpmsg.NewStreamFromBytes(body),
		Env:     serverParams(r),
		Query:   r.URL.Query(),
		Cookies: cookieParams(r),
		Form:    form,
		Files:   files,
	})
}

func parseBody(r *http.Request, body []byte) (any, map[string][]*httpmsg.UploadedFile, error) {
	if len(body) == 0 {
		return nil, nil, nil
	}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, nil, fmt.Errorf("%w: form: %w", httpmsg.ErrParse, err)
		}
		return r.PostForm, nil, nil

	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(defaultMaxMemorySize); err != nil {
			return nil, nil, fmt.Errorf("%w: multipart form: %w", httpmsg.ErrParse, err)
		}
		files, err := uploadedFiles(r.MultipartForm)
		if err != nil {
			return nil, nil, err
		}
		return r.PostForm, files, nil

	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return nil, nil, fmt.Errorf("%w: json body: %w", httpmsg.ErrParse, err)
		}
		switch data.(type) {
		case map[string]any, []any:
			return data, nil, nil
		}
	}
	return nil, nil, nil
}

func uploadedFiles(form *multipart.Form) (map[string][]*httpmsg.UploadedFile, error) {
	if form == nil || len(form.File) == 0 {
		return nil, nil
	}
	out := make(map[string][]*httpmsg.UploadedFile, len(form.File))
	for field, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				out[field] = append(out[field], httpmsg.NewUploadedFile(
					httpmsg.NewEmptyStream(), 0, httpmsg.UploadErrCantWrite, fh.Filename, fh.Header.Get("Content-Type"),
				))
				continue
			}
			out[field] = append(out[field], httpmsg.NewUploadedFile(
				httpmsg.NewStream(f, httpmsg.WithStreamSize(fh.Size)),
				fh.Size, httpmsg.UploadOK, fh.Filename, fh.Header.Get("Content-Type"),
			))
		}
	}
	return out, nil
}

// serverParams derives CGI-style server variables from r.
func serverParams(r *http.Request) map[string]string {
	env := map[string]string{
		"REQUEST_METHOD":  r.Method,
		"REQUEST_URI":     r.URL.RequestURI(),
		"QUERY_STRING":    r.URL.RawQuery,
		"SERVER_PROTOCOL": r.Proto,
		"REMOTE_ADDR":     r.RemoteAddr,
	}
	if r.Host != "" {
		env["HTTP_HOST"] = r.Host
	}
	if host, port, err := net.SplitHostPort(r.Host); err == nil {
		env["SERVER_NAME"] = host
		env["SERVER_PORT"] = port
	} else if r.Host != "" {
		env["SERVER_NAME"] = r.Host
	}
	if r.TLS != nil {
		env["HTTPS"] = "on"
	}
	if ua := r.UserAgent(); ua != "" {
		env["HTTP_USER_AGENT"] = ua
	}
	return env
}

func cookieParams(r *http.Request) map[string]string {
	cookies := r.Cookies()
	if len(cookies) == 0 {
		return nil
	}
	out := make(map[string]string, len(cookies))
	for _, c := range cookies {
		if _, seen := out[c.Name]; !seen {
			out[c.Name] = c.Value
		}
	}
	return out
}

// WriteResponse writes status, headers (one line per value) and the body
// contents from the start of the stream.
func WriteResponse(w http.ResponseWriter, resp *httpmsg.Response) error {
	h := w.Header()
	for name, values := range resp.Headers() {
		for _, v := range values {
			h.Add(name, v)
		}
	}
	w.WriteHeader(resp.StatusCode())

	if resp.StatusCode() == http.StatusNoContent || resp.StatusCode() == http.StatusNotModified {
		return nil
	}

	body := resp.Body()
	if body.IsSeekable() {
		if err := body.Rewind(); err != nil {
			return err
		}
	}
	if !body.IsReadable() {
		return nil
	}
	_, err := io.Copy(w, body)
	return err
}
