// Package httpmsg builds HTTP/1.1 request bytes and parses raw response
// bytes. Both directions work on in-memory byte slices so they are testable
// against literal fixtures without a socket.
package httpmsg

import (
	"bytes"
	"fmt"

	"github.com/minoru-f/yomu/internal/urlutil"
)

// UserAgent identifies the tool on every outgoing request.
const UserAgent = "yomu/0.1 (terminal http client; +https://github.com/minoru-f/yomu)"

// BuildRequest serializes a GET request for the target. The message always
// carries Connection: close so read-until-EOF frames the response, and always
// ends with the \r\n\r\n terminator.
func BuildRequest(t *urlutil.Target) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "GET %s HTTP/1.1\r\n", t.RequestTarget())
	fmt.Fprintf(&b, "Host: %s\r\n", t.HostHeader())
	fmt.Fprintf(&b, "User-Agent: %s\r\n", UserAgent)
	b.WriteString("Accept: */*\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")
	return b.Bytes()
}
