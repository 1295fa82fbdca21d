package server

import (
	"fmt"

	"github.com/ValentinKolb/dynDB/lib/slot"
	"github.com/ValentinKolb/dynDB/rpc/common"
)

func NewHostServerAdapter() IRPCServerAdapter {
	return &hostServerAdapterImpl{}
}

type hostServerAdapterImpl struct{}

func (adapter *hostServerAdapterImpl) Handle(req *common.Message, host slot.Host) *common.Message {
	// Check for nil host
	if host == nil {
		return common.NewErrorResponse("handler: host is nil")
	}

	// Handle different message types
	switch req.MsgType {
	case common.MsgTSlotGet:
		val, ok, err := host.Get(req.Name)
		return common.NewGetResponse(val, ok, err)
	case common.MsgTSlotSet:
		val, err := req.SlotValue()
		if err != nil {
			return common.NewSetResponse(err)
		}
		return common.NewSetResponse(host.Set(req.Name, val))
	case common.MsgTSlotDelete:
		return common.NewDeleteResponse(host.Delete(req.Name))
	case common.MsgTLimits:
		if limits, ok := host.(slot.Limits); ok {
			used, err := limits.UsedSlots()
			return common.NewLimitsResponse(limits.MaxSlotBytes(), limits.MaxSlots(), used, err)
		}
		return common.NewLimitsResponse(0, 0, 0, nil)
	default:
		return common.NewErrorResponse(
			fmt.Sprintf("RPC HostAdapter - Unsupported message type: %s", req.MsgType),
		)
	}
}
