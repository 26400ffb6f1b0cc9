package httpclient

import "net/http"

// Auth places a credential on outgoing requests, either in a header or in
// a query parameter. A nil *Auth leaves the request untouched.
type Auth struct {
	// Header receives the credential. Ignored when Query is set.
	Header string
	// Query names the query parameter that receives the credential.
	Query string
	// Scheme prefixes the header value, as in "Bearer <token>".
	Scheme string
	Value  string
}

// BearerAuth sends token as an Authorization bearer credential.
func BearerAuth(token string) *Auth {
	return &Auth{Header: "Authorization", Scheme: "Bearer", Value: token}
}

// HeaderKey sends key in the named header.
func HeaderKey(name, key string) *Auth {
	return &Auth{Header: name, Value: key}
}

// QueryKey sends key as the named query parameter. Convertio expects its
// API key this way on status and download calls.
func QueryKey(name, key string) *Auth {
	return &Auth{Query: name, Value: key}
}

func (a *Auth) apply(req *http.Request) {
	switch {
	case a == nil || a.Value == "":
	case a.Query != "":
		q := req.URL.Query()
		q.Set(a.Query, a.Value)
		req.URL.RawQuery = q.Encode()
	case a.Header != "":
		v := a.Value
		if a.Scheme != "" {
			v = a.Scheme + " " + v
		}
		req.Header.Set(a.Header, v)
	}
}
