// Package spec contains constants shared by the pprate service and its
// clients.
package spec

import "time"

// CapacityURLPath is where clients POST inter-arrival times.
const CapacityURLPath = "/v1/capacity"

// LookupURLPrefix prefixes the UUID of a stored result.
const LookupURLPrefix = CapacityURLPath + "/"

// WebSocketURLPath is the WebSocket variant of CapacityURLPath.
const WebSocketURLPath = CapacityURLPath + "/ws"

// SecWebSocketProtocol is the WebSocket subprotocol used by pprate.
const SecWebSocketProtocol = "net.measurementlab.pprate.v1"

// MaxMessageSize is the maximum size of a request, either a POST body or
// a WebSocket message. It fits about half a million inter-arrival times.
const MaxMessageSize = 1 << 23

// ResultTTL is how long stored results can be looked up.
const ResultTTL = time.Hour

// ServerKeyPrefix prefixes the query parameters reserved to the server.
const ServerKeyPrefix = "server_"

// Source tells where an estimation request came from.
type Source string

const (
	// SourceHTTP is a POST to CapacityURLPath.
	SourceHTTP = Source("http")

	// SourceWebSocket is a message on WebSocketURLPath.
	SourceWebSocket = Source("ws")

	// SourceTrace is a flow read from a trace file.
	SourceTrace = Source("trace")
)
