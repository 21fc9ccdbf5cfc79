// Package maildraft builds an RFC 822 draft (.eml) carrying a rendered
// offer letter, so the letter can be sent from any mail client. The body is
// authored in Markdown and rendered to HTML, with a plain-text alternative
// derived from the HTML.
package maildraft

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
)

// Draft describes one outgoing message.
type Draft struct {
	To           string
	Subject      string
	BodyMarkdown string

	AttachmentName string
	AttachmentType string
	Attachment     []byte
}

// Build renders the draft to .eml bytes: multipart/mixed wrapping a
// multipart/alternative (text/plain + text/html) body and the base64
// encoded attachment.
func (d Draft) Build() ([]byte, error) {
	var htmlBody bytes.Buffer
	if err := goldmark.New().Convert([]byte(d.BodyMarkdown), &htmlBody); err != nil {
		return nil, fmt.Errorf("render body markdown: %w", err)
	}
	plainBody, err := plainText(htmlBody.Bytes())
	if err != nil {
		return nil, fmt.Errorf("derive text body: %w", err)
	}

	var msg bytes.Buffer
	mixed := multipart.NewWriter(&msg)

	fmt.Fprintf(&msg, "To: %s\r\n", d.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", d.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n", mixed.Boundary())
	msg.WriteString("X-Unsent: 1\r\n")
	msg.WriteString("\r\n")

	// Body: alternative part.
	altBuf := &bytes.Buffer{}
	alt := multipart.NewWriter(altBuf)
	textPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}
	fmt.Fprintf(textPart, "%s\r\n", plainBody)
	htmlPart, err := alt.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/html; charset=utf-8"},
	})
	if err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}
	htmlPart.Write(htmlBody.Bytes())
	if err := alt.Close(); err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}

	bodyPart, err := mixed.CreatePart(textproto.MIMEHeader{
		"Content-Type": {fmt.Sprintf("multipart/alternative; boundary=%q", alt.Boundary())},
	})
	if err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}
	bodyPart.Write(altBuf.Bytes())

	// Attachment.
	if len(d.Attachment) > 0 {
		contentType := d.AttachmentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		attPart, err := mixed.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {fmt.Sprintf("%s; name=%q", contentType, d.AttachmentName)},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", d.AttachmentName)},
		})
		if err != nil {
			return nil, fmt.Errorf("build draft: %w", err)
		}
		writeBase64Wrapped(attPart, d.Attachment)
	}

	if err := mixed.Close(); err != nil {
		return nil, fmt.Errorf("build draft: %w", err)
	}
	return msg.Bytes(), nil
}

// writeBase64Wrapped encodes data at the conventional 76-column line width.
func writeBase64Wrapped(w io.Writer, data []byte) {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 0 {
		n := min(len(enc), 76)
		fmt.Fprintf(w, "%s\r\n", enc[:n])
		enc = enc[n:]
	}
}

// plainText flattens rendered HTML into the text/plain alternative,
// separating block elements with blank lines.
func plainText(src []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(src))
	if err != nil {
		return "", err
	}

	var blocks []string
	var current strings.Builder

	flush := func() {
		if t := strings.TrimSpace(current.String()); t != "" {
			blocks = append(blocks, t)
		}
		current.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			current.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			current.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			switch n.Data {
			case "p", "li", "h1", "h2", "h3", "h4", "h5", "h6", "blockquote", "div":
				flush()
			}
		}
	}
	walk(doc)
	flush()

	return strings.Join(blocks, "\n\n"), nil
}
