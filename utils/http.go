// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by the outbound API clients (completion, GIF search).
var HTTPClient = &http.Client{
	Timeout: 60 * time.Second, // completions can be slow
}
