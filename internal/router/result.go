package router

import (
	"encoding/json"
	"net/http"
)

type bodyKind int

const (
	bodyJSON bodyKind = iota
	bodyText
	bodyRaw
)

// Result is the complete response a handler produces. The HTTP layer writes
// it out verbatim; handlers never touch the ResponseWriter.
type Result struct {
	Status      int
	ContentType string
	Headers     map[string]string
	Cookies     []*http.Cookie

	kind bodyKind
	body any
	text string
	raw  []byte
}

// JSON builds a result whose body marshals to JSON.
func JSON(status int, body any) Result {
	return Result{Status: status, ContentType: "application/json", kind: bodyJSON, body: body}
}

// Error builds the uniform failure envelope used across the API.
func Error(status int, message string) Result {
	return JSON(status, map[string]any{"success": false, "message": message})
}

// Text builds a plain-text result.
func Text(status int, text string) Result {
	return Result{Status: status, ContentType: "text/plain; charset=utf-8", kind: bodyText, text: text}
}

// Raw builds a result carrying pre-rendered bytes, for CSV downloads and the
// like.
func Raw(status int, contentType string, body []byte) Result {
	return Result{Status: status, ContentType: contentType, kind: bodyRaw, raw: body}
}

// WithHeader returns a copy with one extra response header.
func (res Result) WithHeader(name, value string) Result {
	headers := make(map[string]string, len(res.Headers)+1)
	for k, v := range res.Headers {
		headers[k] = v
	}
	headers[name] = value
	res.Headers = headers
	return res
}

// WithCookie returns a copy that sets a session-style cookie: path /,
// HttpOnly, session-scoped lifetime.
func (res Result) WithCookie(name, value string) Result {
	cookies := make([]*http.Cookie, len(res.Cookies), len(res.Cookies)+1)
	copy(cookies, res.Cookies)
	res.Cookies = append(cookies, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
	})
	return res
}

// WithExpiredCookie returns a copy that clears a cookie on the client.
func (res Result) WithExpiredCookie(name string) Result {
	cookies := make([]*http.Cookie, len(res.Cookies), len(res.Cookies)+1)
	copy(cookies, res.Cookies)
	res.Cookies = append(cookies, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	return res
}

// Write renders the result onto the wire. JSON marshal failures degrade to a
// plain 500 so a response always goes out.
func (res Result) Write(w http.ResponseWriter) {
	for name, value := range res.Headers {
		w.Header().Set(name, value)
	}
	for _, cookie := range res.Cookies {
		http.SetCookie(w, cookie)
	}
	if res.ContentType != "" {
		w.Header().Set("Content-Type", res.ContentType)
	}

	status := res.Status
	if status == 0 {
		status = http.StatusOK
	}

	switch res.kind {
	case bodyJSON:
		encoded, err := json.Marshal(res.body)
		if err != nil {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("internal error"))
			return
		}
		w.WriteHeader(status)
		_, _ = w.Write(encoded)
	case bodyText:
		w.WriteHeader(status)
		_, _ = w.Write([]byte(res.text))
	case bodyRaw:
		w.WriteHeader(status)
		_, _ = w.Write(res.raw)
	}
}
