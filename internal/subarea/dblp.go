// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package subarea

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/pdiddy/coauthor-graph/internal/httputil"
)

// DefaultDBLPBaseURL is the DBLP person endpoint prefix.
const DefaultDBLPBaseURL = "https://dblp.org/pid/"

// Coauthor is one author listed on a DBLP publication.
type Coauthor struct {
	PID  string
	Name string
}

// CoPublication is one publication of a person with its listed authors.
type CoPublication struct {
	Key     string
	Authors []Coauthor
}

// Source returns the co-publications of a reference researcher.
type Source interface {
	CoPublications(ctx context.Context, pid string) ([]CoPublication, error)
}

// DBLPClient fetches person records from DBLP.
type DBLPClient struct {
	HTTP    *httputil.Client
	BaseURL string
}

// NewDBLPClient returns a client using baseURL, or the public endpoint
// when empty.
func NewDBLPClient(client *httputil.Client, baseURL string) *DBLPClient {
	if baseURL == "" {
		baseURL = DefaultDBLPBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &DBLPClient{HTTP: client, BaseURL: baseURL}
}

// CoPublications fetches <base><pid>.xml and parses it.
func (c *DBLPClient) CoPublications(ctx context.Context, pid string) ([]CoPublication, error) {
	// PIDs look like "12/3456" or "m/JohnDoe"; each segment is escaped
	// but the slashes are kept.
	parts := strings.Split(pid, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	u := c.BaseURL + strings.Join(parts, "/") + ".xml"

	body, err := c.HTTP.Get(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("fetching DBLP record %s: %w", pid, err)
	}
	pubs, err := ParseDBLP(body)
	if err != nil {
		return nil, fmt.Errorf("parsing DBLP record %s: %w", pid, err)
	}
	return pubs, nil
}

// DBLP person XML structures.
type dblpPerson struct {
	Records []dblpRecord `xml:"r"`
}

type dblpRecord struct {
	Pubs []dblpPub `xml:",any"`
}

type dblpPub struct {
	XMLName xml.Name
	Key     string       `xml:"key,attr"`
	Authors []dblpAuthor `xml:"author"`
}

type dblpAuthor struct {
	PID  string `xml:"pid,attr"`
	Name string `xml:",chardata"`
}

// ParseDBLP extracts publications from a DBLP person record. Authors
// without a pid or name are ignored, and publications left with fewer than
// two authors or without a key are dropped.
func ParseDBLP(data []byte) ([]CoPublication, error) {
	var person dblpPerson
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	// DBLP declares US-ASCII; other feeds may use ISO-8859-1.
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&person); err != nil {
		return nil, err
	}

	var out []CoPublication
	for _, r := range person.Records {
		for _, p := range r.Pubs {
			pub := CoPublication{Key: p.Key}
			for _, a := range p.Authors {
				pid := strings.TrimSpace(a.PID)
				name := strings.TrimSpace(a.Name)
				if pid == "" || name == "" {
					continue
				}
				pub.Authors = append(pub.Authors, Coauthor{PID: pid, Name: name})
			}
			if pub.Key == "" || len(pub.Authors) < 2 {
				continue
			}
			out = append(out, pub)
		}
	}
	return out, nil
}
