package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"

	"github.com/nutcas3/api-docs-tui/internal/apidoc"
)

const defaultTimeout = 30 * time.Second

// Response is the outcome of a try-it request. It doubles as the tea.Msg
// delivering the result to the model.
type Response struct {
	EndpointID    string
	Method        string
	URL           string
	StatusCode    int
	Status        string
	Headers       http.Header
	Body          string
	FormattedBody string
	ResponseTime  time.Duration
	Error         error
}

// StatusKey is the response example key this response corresponds to.
func (r Response) StatusKey() string {
	if r.StatusCode == 0 {
		return ""
	}
	return fmt.Sprintf("%d", r.StatusCode)
}

// buildRequest resolves the endpoint into a concrete request, substituting
// {{VAR}} placeholders from the current environment.
func buildRequest(doc *apidoc.Document, ep apidoc.Endpoint, cm *ConfigManager) RequestItem {
	expand := func(s string) string {
		if cm == nil {
			return s
		}
		return cm.replaceEnvVars(s)
	}

	url := expand(strings.TrimRight(doc.BaseURL, "/") + ep.Path)

	headers := make(map[string]string, len(ep.Headers))
	for k, v := range ep.Headers {
		headers[k] = expand(v)
	}

	method := ep.Method
	if method == "" {
		method = http.MethodGet
	}

	return RequestItem{
		EndpointID: ep.ID,
		Name:       fmt.Sprintf("%s %s", method, ep.Path),
		URL:        url,
		Method:     method,
		Headers:    headers,
		Body:       expand(ep.Body),
	}
}

func sendRequest(client *http.Client, req RequestItem, autoFormat bool) tea.Cmd {
	return func() tea.Msg {
		return doRequest(client, req, autoFormat)
	}
}

func doRequest(client *http.Client, item RequestItem, autoFormat bool) Response {
	out := Response{EndpointID: item.EndpointID, Method: item.Method, URL: item.URL}

	var reqBody io.Reader
	if item.Body != "" && (item.Method == "POST" || item.Method == "PUT" || item.Method == "PATCH") {
		reqBody = bytes.NewBufferString(item.Body)
	}

	startTime := time.Now()
	req, err := http.NewRequest(item.Method, item.URL, reqBody)
	if err != nil {
		out.Error = err
		return out
	}
	for k, v := range item.Headers {
		req.Header.Add(k, v)
	}

	resp, err := client.Do(req)
	out.ResponseTime = time.Since(startTime)
	if err != nil {
		out.Error = err
		return out
	}
	defer resp.Body.Close()

	out.StatusCode = resp.StatusCode
	out.Status = resp.Status
	out.Headers = resp.Header

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		out.Error = err
		return out
	}

	decoded := decodeBody(respBody, resp.Header.Get("Content-Type"))
	out.Body = string(respBody)
	out.FormattedBody = decoded
	if autoFormat && strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var prettyJSON bytes.Buffer
		if err := json.Indent(&prettyJSON, []byte(decoded), "", "  "); err == nil {
			out.FormattedBody = prettyJSON.String()
		}
	}
	return out
}

// decodeBody converts the body to UTF-8 using the charset from the
// Content-Type header, guessing when a body claiming UTF-8 is not.
func decodeBody(body []byte, contentType string) string {
	encoding := "utf-8"
	if idx := strings.LastIndex(contentType, "charset="); idx != -1 {
		encoding = strings.Trim(strings.TrimSpace(contentType[idx+8:]), `"`)
		if semicolon := strings.Index(encoding, ";"); semicolon != -1 {
			encoding = encoding[:semicolon]
		}
	}

	var decoded []byte
	if strings.EqualFold(encoding, "utf-8") {
		if utf8.Valid(body) {
			decoded = body
		} else {
			decoded = tryAlternativeEncodings(body)
		}
	} else if enc, err := htmlindex.Get(encoding); err == nil {
		if d, _, err := transform.Bytes(enc.NewDecoder(), body); err == nil {
			decoded = d
		}
	}

	if decoded == nil || !utf8.Valid(decoded) {
		return strings.ToValidUTF8(string(body), "�")
	}
	return string(decoded)
}

func tryAlternativeEncodings(input []byte) []byte {
	encodings := []string{"windows-1252", "iso-8859-1", "shift-jis", "gbk", "big5"}

	for _, encoding := range encodings {
		if enc, err := htmlindex.Get(encoding); err == nil {
			if decoded, _, err := transform.Bytes(enc.NewDecoder(), input); err == nil && utf8.Valid(decoded) {
				return decoded
			}
		}
	}

	return input
}

func newHTTPClient(cm *ConfigManager) *http.Client {
	timeout := defaultTimeout
	if cm != nil && cm.Config.Timeout > 0 {
		timeout = time.Duration(cm.Config.Timeout) * time.Second
	}
	return &http.Client{Timeout: timeout}
}
