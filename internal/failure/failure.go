// Package failure classifies errors that abort a run.
package failure

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/tdimitrov/polkadot-coretime-launch-test/internal/chain/substrate/rpc"
)

type Class string

const (
	ClassSetup        Class = "setup"
	ClassTransport    Class = "transport"
	ClassRPC          Class = "rpc"
	ClassDecode       Class = "decode"
	ClassTimeout      Class = "timeout"
	ClassUnclassified Class = "unclassified"
)

type Decision struct {
	Class  Class
	Reason string
}

type classifiedError struct {
	err    error
	class  Class
	reason string
}

func (e *classifiedError) Error() string {
	return e.err.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

func mark(err error, class Class, reason string) error {
	if err == nil {
		return nil
	}
	return &classifiedError{err: err, class: class, reason: reason}
}

// Setup marks a configuration or environment error.
func Setup(err error) error {
	return mark(err, ClassSetup, "explicit_setup")
}

// Decode marks a storage value that could not be decoded.
func Decode(err error) error {
	return mark(err, ClassDecode, "explicit_decode")
}

// Timeout marks a bounded wait that ran out.
func Timeout(err error) error {
	return mark(err, ClassTimeout, "explicit_timeout")
}

func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassUnclassified, Reason: "nil_error"}
	}

	var marked *classifiedError
	if errors.As(err, &marked) {
		return Decision{Class: marked.class, Reason: marked.reason}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Decision{Class: ClassTimeout, Reason: "context_deadline_exceeded"}
	}
	if errors.Is(err, context.Canceled) {
		return Decision{Class: ClassUnclassified, Reason: "context_canceled"}
	}

	var rpcErr *rpc.RPCError
	if errors.As(err, &rpcErr) {
		return Decision{Class: ClassRPC, Reason: classifyJSONRPCCode(rpcErr.Code)}
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return Decision{Class: ClassTransport, Reason: "websocket_closed"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return Decision{Class: ClassTimeout, Reason: "net_timeout"}
		}
		return Decision{Class: ClassTransport, Reason: "net_error"}
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, transportMessageTokens) {
		return Decision{Class: ClassTransport, Reason: "message_transport"}
	}

	return Decision{Class: ClassUnclassified, Reason: "unknown"}
}

func classifyJSONRPCCode(code int) string {
	switch {
	case code == -32700:
		return "jsonrpc_parse_error"
	case code == -32601:
		return "jsonrpc_method_not_found"
	case code == -32602:
		return "jsonrpc_invalid_params"
	case code == -32603:
		return "jsonrpc_internal_error"
	case code <= -32000 && code >= -32099:
		return "jsonrpc_server_range"
	default:
		return "jsonrpc_error"
	}
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

var transportMessageTokens = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"no such host",
	"unexpected eof",
	"http status 502",
	"http status 503",
	"http status 504",
	"server closed idle connection",
}
