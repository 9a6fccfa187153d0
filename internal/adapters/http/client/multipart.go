package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/okian/onboard/internal/domain/model"
	"github.com/okian/onboard/internal/domain/upload"
)

// ProgressFunc receives the upload progress as a 0..100 percentage.
type ProgressFunc func(pct int)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// SubmitDocument uploads f as the multipart field "file" against a template.
// Callers validate f first; this method does not.
func (c *Client) SubmitDocument(ctx context.Context, templateID int64, f upload.File, progress ProgressFunc) (model.DocumentSubmission, error) {
	var out model.DocumentSubmission
	endpoint := "/documents/submit/{template_id}"

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(f.Name)))
	ct := upload.TypeFor(f.FileInfo)
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	part, err := w.CreatePart(h)
	if err != nil {
		return out, fmt.Errorf("build multipart: %w", err)
	}
	if f.Body != nil {
		if _, err := io.Copy(part, f.Body); err != nil {
			return out, fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return out, fmt.Errorf("build multipart: %w", err)
	}

	total := int64(buf.Len())
	cl := call{
		method:      http.MethodPost,
		path:        "/documents/submit/" + strconv.FormatInt(templateID, 10),
		endpoint:    endpoint,
		body:        &progressReader{r: &buf, total: total, report: progress},
		contentType: w.FormDataContentType(),
		length:      total,
		auth:        true,
	}
	err = c.do(ctx, cl, &out)
	return out, err
}

// progressReader reports how much of the body the transport has consumed.
type progressReader struct {
	r      io.Reader
	read   int64
	total  int64
	last   int
	report ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct != p.last {
			p.last = pct
			p.report(pct)
		}
	}
	return n, err
}
