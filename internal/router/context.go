package router

import (
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// maxMultipartMemory bounds the in-memory portion of multipart parsing.
const maxMultipartMemory = 10 << 20

// UploadedFile is a file part of a multipart request, fully read into memory.
type UploadedFile struct {
	Filename string
	Content  []byte
}

// Context is the normalized view of one request that handlers work with.
// Query and Form hold the first value seen for each key; JSON holds the
// decoded object body, empty when the body is absent or malformed.
type Context struct {
	Method  string
	Path    string
	Params  map[string]string
	Query   map[string]string
	Cookies map[string]string
	JSON    map[string]any
	Form    map[string]string
	Files   map[string]UploadedFile

	// User is filled in by the HTTP layer after session validation; nil for
	// anonymous requests.
	User any
	// SessionToken is the raw session cookie value, empty when absent.
	SessionToken string
	// SessionRole is the role recorded on the session at login time.
	SessionRole string

	Request *http.Request
}

// BuildContext extracts everything handlers need from the raw request. Body
// parsing never fails the request: a malformed JSON body leaves JSON empty
// and the handler decides whether required fields are missing.
func BuildContext(r *http.Request) *Context {
	c := &Context{
		Method:  r.Method,
		Path:    r.URL.Path,
		Params:  make(map[string]string),
		Query:   make(map[string]string),
		Cookies: make(map[string]string),
		JSON:    make(map[string]any),
		Form:    make(map[string]string),
		Files:   make(map[string]UploadedFile),
		Request: r,
	}

	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			c.Query[key] = values[0]
		}
	}

	for _, cookie := range r.Cookies() {
		if _, seen := c.Cookies[cookie.Name]; !seen {
			c.Cookies[cookie.Name] = cookie.Value
		}
	}

	c.parseBody(r)
	return c
}

func (c *Context) parseBody(r *http.Request) {
	if r.Body == nil {
		return
	}
	mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return
	}

	switch {
	case mediaType == "application/json":
		var decoded map[string]any
		if err := json.NewDecoder(r.Body).Decode(&decoded); err == nil && decoded != nil {
			c.JSON = decoded
		}
	case mediaType == "application/x-www-form-urlencoded":
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			return
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return
		}
		for key, vals := range values {
			if len(vals) > 0 {
				c.Form[key] = vals[0]
			}
		}
	case strings.HasPrefix(mediaType, "multipart/"):
		c.parseMultipart(r.Body, params["boundary"])
	}
}

func (c *Context) parseMultipart(body io.Reader, boundary string) {
	if boundary == "" {
		return
	}
	reader := multipart.NewReader(body, boundary)
	form, err := reader.ReadForm(maxMultipartMemory)
	if err != nil {
		return
	}
	defer form.RemoveAll()

	for key, vals := range form.Value {
		if len(vals) > 0 {
			c.Form[key] = vals[0]
		}
	}
	for key, headers := range form.File {
		if len(headers) == 0 {
			continue
		}
		file, err := headers[0].Open()
		if err != nil {
			continue
		}
		content, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			continue
		}
		c.Files[key] = UploadedFile{Filename: headers[0].Filename, Content: content}
	}
}

// BodyValue reads a named field from the JSON body, falling back to form
// fields. The second return reports whether the key was present at all.
func (c *Context) BodyValue(key string) (any, bool) {
	if v, ok := c.JSON[key]; ok {
		return v, true
	}
	if v, ok := c.Form[key]; ok {
		return v, true
	}
	return nil, false
}

// BodyString renders a body field as a string. JSON numbers and booleans
// stringify; an explicit null reads as the empty string.
func (c *Context) BodyString(key string) (string, bool) {
	v, ok := c.BodyValue(key)
	if !ok {
		return "", false
	}
	return stringify(v), true
}

// BodyInt reads a body field as an integer, accepting JSON numbers and
// numeric strings. Anything else reports absence.
func (c *Context) BodyInt(key string) (int, bool) {
	v, ok := c.BodyValue(key)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return int(t), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
