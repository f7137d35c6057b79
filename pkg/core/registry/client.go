// Package registry looks up business registration records (工商信息) and
// fills the registration sheet of the workpaper.
package registry

//go:generate mockgen -destination=mocks/mock_lookup.go -package=mocks -source=client.go Lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the business registration lookup API (工商信息查询).
	DefaultEndpoint = "http://gwgp-gwbyafindsn.n.bdcloudapi.com/business2/get"
	// DefaultTimeout bounds one registry request.
	DefaultTimeout = 30 * time.Second
)

// ErrNoRecord is returned when the registry has nothing for a name.
var ErrNoRecord = errors.New("no registry record")

// Lookup resolves a company name to its registration record.
type Lookup interface {
	Lookup(ctx context.Context, companyName string) (*Record, error)
}

// Text is a registry field that may arrive as a string, a number or null.
type Text string

func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(data)
	return nil
}

// Record is the flat registration record returned by the registry.
type Record struct {
	CompanyName      Text `json:"companyName"`
	CompanyType      Text `json:"companyType"`
	LegalPerson      Text `json:"legalPerson"`
	Authority        Text `json:"authority"`
	EstablishDate    Text `json:"establishDate"`
	CreditNo         Text `json:"creditNo"`
	Capital          Text `json:"capital"`
	OperationEndDate Text `json:"operationEnddate"`
	CompanyAddress   Text `json:"companyAddress"`
	BusinessScope    Text `json:"businessScope"`
}

// Empty reports whether the record carries no field at all.
func (r *Record) Empty() bool {
	return r == nil || *r == Record{}
}

type apiResponse struct {
	Success bool   `json:"success"`
	Code    int    `json:"code"`
	Msg     string `json:"msg"`
	Data    struct {
		Data *Record `json:"data"`
	} `json:"data"`
}

// Client queries the registry HTTP API.
type Client struct {
	endpoint   string
	appCode    string
	httpClient *http.Client
}

// NewClient creates a registry client. A zero timeout means DefaultTimeout.
func NewClient(endpoint, appCode string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		endpoint:   endpoint,
		appCode:    appCode,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Lookup fetches the record of companyName. A business error or an empty
// record is ErrNoRecord; transport failures are returned wrapped.
func (c *Client) Lookup(ctx context.Context, companyName string) (*Record, error) {
	if c.appCode == "" {
		return nil, fmt.Errorf("registry app code not configured")
	}
	if strings.TrimSpace(companyName) == "" {
		return nil, fmt.Errorf("%w: empty company name", ErrNoRecord)
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid registry endpoint: %w", err)
	}
	q := u.Query()
	q.Set("keyword", companyName)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("X-Bce-Signature", "AppCode/"+c.appCode)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var out apiResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("failed to parse registry response: %w", err)
	}
	if !out.Success || out.Code != http.StatusOK {
		return nil, fmt.Errorf("%w: code=%d msg=%s", ErrNoRecord, out.Code, out.Msg)
	}
	if out.Data.Data.Empty() {
		return nil, ErrNoRecord
	}
	return out.Data.Data, nil
}
