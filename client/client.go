package client

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/deciphernow/contact-registry-server/config"
	"github.com/deciphernow/contact-registry-server/protocol"
)

// ContactRegistry defines operations for our client.
type ContactRegistry interface {
	GetContact(id int64) (protocol.Contact, error)
	GetHttpClient() *http.Client
	ListContacts(paging protocol.PagingRequest) (protocol.ContactResultset, error)
	Ping() error
	Search(phrase string, paging protocol.PagingRequest) (protocol.ContactResultset, error)
	Stats() (protocol.ContactStats, error)
}

// Client implements ContactRegistry.
type Client struct {
	httpClient *http.Client
	url        string
	// Verbose will print extra debug information if true.
	Verbose bool
	Conf    Config
	// LastQueryCount holds the X-Query-Count header of the most recent
	// response, reporting how many SQL statements the server executed.
	LastQueryCount int
	// LastStatusCode holds the HTTP status of the most recent response.
	LastStatusCode int
}

// Config defines the bare minimum that must be statically configured to
// reach a running registry instance.
type Config struct {
	// Cert is the path to a PEM encoded client certificate, for servers
	// requiring mutual TLS.
	Cert string
	// Trust is the path to a PEM encoded certificate of the server's CA.
	Trust string
	// Key is the path to the PEM encoded key for Cert.
	Key string
	// SkipVerify disables server certificate verification.
	SkipVerify bool
	// ServerName overrides the expected name on the server certificate.
	ServerName string
	// Remote is the full URL of the registry API, including the base path,
	// e.g. https://host:4480/services/contact-registry/1.0
	Remote string
	// Timeout bounds each request in seconds. Zero means no client timeout.
	Timeout int64
}

// Verify that Client implements ContactRegistry
var _ ContactRegistry = (*Client)(nil)

// NewClient instantiates a registry client from the given config. Plain http
// remotes need no certificate material.
func NewClient(conf Config) (*Client, error) {
	c := Client{url: strings.TrimSuffix(conf.Remote, "/"), Conf: conf}
	transport := &http.Transport{}
	if strings.HasPrefix(conf.Remote, "https") {
		tlsConfig, err := config.NewTLSClientConfig(conf.Trust, conf.Cert, conf.Key, conf.ServerName, conf.SkipVerify)
		if err != nil {
			return nil, err
		}
		transport.TLSClientConfig = tlsConfig
	}
	c.httpClient = &http.Client{
		Transport: transport,
		Timeout:   time.Duration(conf.Timeout) * time.Second,
	}
	return &c, nil
}

// GetHttpClient returns the underlying http.Client, an escape hatch for
// requests the typed operations do not cover.
func (c *Client) GetHttpClient() *http.Client {
	return c.httpClient
}

// Ping checks that the remote answers liveness probes.
func (c *Client) Ping() error {
	resp, err := c.httpClient.Get(c.url + "/ping")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.noteResponse(resp)
	if resp.StatusCode != http.StatusOK {
		return errorFromResponse(resp)
	}
	return nil
}

// GetContact fetches the contact with the given identifier.
func (c *Client) GetContact(id int64) (protocol.Contact, error) {
	var contact protocol.Contact
	resp, err := c.httpClient.Get(fmt.Sprintf("%s/contacts/%d", c.url, id))
	if err != nil {
		return contact, err
	}
	defer resp.Body.Close()
	c.noteResponse(resp)
	if resp.StatusCode != http.StatusOK {
		return contact, errorFromResponse(resp)
	}
	err = json.NewDecoder(resp.Body).Decode(&contact)
	return contact, err
}

// ListContacts retrieves a page of contacts honoring the filter, sort, and
// paging criteria of the paging request.
func (c *Client) ListContacts(paging protocol.PagingRequest) (protocol.ContactResultset, error) {
	return c.fetchResultset(c.url+"/contacts", paging)
}

// Search retrieves a page of contacts whose searchable fields match phrase.
func (c *Client) Search(phrase string, paging protocol.PagingRequest) (protocol.ContactResultset, error) {
	return c.fetchResultset(c.url+"/contacts/search/"+url.PathEscape(phrase), paging)
}

// Stats retrieves aggregate counts over the registry.
func (c *Client) Stats() (protocol.ContactStats, error) {
	var stats protocol.ContactStats
	resp, err := c.httpClient.Get(c.url + "/contacts/stats")
	if err != nil {
		return stats, err
	}
	defer resp.Body.Close()
	c.noteResponse(resp)
	if resp.StatusCode != http.StatusOK {
		return stats, errorFromResponse(resp)
	}
	err = json.NewDecoder(resp.Body).Decode(&stats)
	return stats, err
}

func (c *Client) fetchResultset(base string, paging protocol.PagingRequest) (protocol.ContactResultset, error) {
	var resultset protocol.ContactResultset
	u := base
	if query := pagingToQuery(paging).Encode(); query != "" {
		u = base + "?" + query
	}
	resp, err := c.httpClient.Get(u)
	if err != nil {
		return resultset, err
	}
	defer resp.Body.Close()
	c.noteResponse(resp)
	if resp.StatusCode != http.StatusOK {
		return resultset, errorFromResponse(resp)
	}
	err = json.NewDecoder(resp.Body).Decode(&resultset)
	return resultset, err
}

func (c *Client) noteResponse(resp *http.Response) {
	c.LastStatusCode = resp.StatusCode
	c.LastQueryCount = 0
	if qc := resp.Header.Get("X-Query-Count"); qc != "" {
		if parsed, err := strconv.Atoi(qc); err == nil {
			c.LastQueryCount = parsed
		}
	}
}

// pagingToQuery renders a paging request onto the query string the way the
// server parses it, zipping filters and sorts positionally.
func pagingToQuery(paging protocol.PagingRequest) url.Values {
	params := url.Values{}
	if paging.PageNumber > 0 {
		params.Set("pageNumber", strconv.Itoa(paging.PageNumber))
	}
	if paging.PageSize > 0 {
		params.Set("pageSize", strconv.Itoa(paging.PageSize))
	}
	for _, f := range paging.FilterSettings {
		params.Add("filterField", f.FilterField)
		params.Add("condition", f.Condition)
		params.Add("expression", f.Expression)
	}
	for _, s := range paging.SortSettings {
		params.Add("sortField", s.SortField)
		params.Add("sortAscending", strconv.FormatBool(s.SortAscending))
	}
	if paging.FilterMatchType != "" {
		params.Set("filterMatchType", paging.FilterMatchType)
	}
	if paging.Name != "" {
		params.Set("name", paging.Name)
	}
	return params
}

// errorFromResponse reads the detail the server rendered for a failed request.
func errorFromResponse(resp *http.Response) error {
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return fmt.Errorf("http status %d: %s", resp.StatusCode, detail.Detail)
	}
	return fmt.Errorf("http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
}
