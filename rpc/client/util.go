package client

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
	"github.com/ValentinKolb/dynDB/rpc/serializer"
	"github.com/ValentinKolb/dynDB/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var (
	Logger = logger.GetLogger("rpc")
)

// remoteErrors are the slot errors recognized in error responses
var remoteErrors = []error{
	slot.ErrValueTooLarge,
	slot.ErrTooManySlots,
	slot.ErrClosed,
	slot.ErrInvalidHostID,
}

// rpcClientAdapter stores all data needed to talk to a server
// Used by the rpcProvider and rpcHost with composition pattern
type rpcClientAdapter struct {
	config     common.ClientConfig
	transport  transport.IRPCClientTransport
	serializer serializer.IRPCSerializer
}

// invokeRPCRequest is a helper function used for all RPC Clients to send requests
// It takes a host id (empty for provider requests) and a request message and returns
// the response message and an error if any occurs
// This method also checks if the response is an error response and if the type of the response is the expected type
func (a *rpcClientAdapter) invokeRPCRequest(hostID string, req *common.Message) (*common.Message, error) {
	// Serialize the request
	reqBytes, err := a.serializer.Serialize(*req)
	if err != nil {
		return nil, err
	}

	respBytes, err := a.transport.Send(hostID, reqBytes)
	if err != nil {
		return nil, err
	}

	// Deserialize the response
	resp := &common.Message{}
	if err := a.serializer.Deserialize(respBytes, resp); err != nil {
		return nil, fmt.Errorf("RPC client - invalid response: %w", err)
	}

	// Check if the response is an error response
	if resp.MsgType == common.MsgTError || resp.Err != "" {
		return nil, remoteError(resp.Err)
	}

	// Check if the type of the response is the expected type
	if resp.MsgType != req.MsgType {
		return nil, fmt.Errorf("RPC client - unexpected message type: %s, expected %s", resp.MsgType, req.MsgType)
	}

	return resp, nil
}

// remoteError turns an error string of the server back into an error.
// Known slot errors stay matchable with errors.Is.
func remoteError(msg string) error {
	for _, sentinel := range remoteErrors {
		if strings.Contains(msg, sentinel.Error()) {
			return fmt.Errorf("RPC client - remote error: %w (%s)", sentinel, msg)
		}
	}
	return fmt.Errorf("RPC client - remote error: %s", msg)
}
