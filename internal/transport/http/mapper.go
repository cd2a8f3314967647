package http

import (
	"encoding/json"
	"time"

	"github.com/anant1857/canvaschat/internal/canvas"
	"github.com/anant1857/canvaschat/internal/core"
	"github.com/anant1857/canvaschat/internal/proto"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Protocol != 0 && join.Protocol != proto.ProtocolVersion {
			return nil, &proto.Error{Code: "unsupported_version", Msg: "unsupported protocol version"}, nil
		}
		if join.Room == "" || join.Username == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room and username are required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     join.Room,
			UserID:   join.UserID,
			Username: join.Username,
		}, nil, nil
	case proto.InboundTypeLeave:
		return &core.Command{Kind: core.CommandLeaveRoom}, nil, nil
	case proto.InboundTypeSegment:
		var seg proto.SegmentData
		if err := json.Unmarshal(inbound.Data, &seg); err != nil {
			return nil, nil, err
		}
		if seg.LineWidth <= 0 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "line width must be positive"}, nil
		}
		return &core.Command{
			Kind:    core.CommandSegment,
			Segment: segmentFromWire(seg),
		}, nil, nil
	case proto.InboundTypeClear:
		return &core.Command{Kind: core.CommandClear}, nil, nil
	case proto.InboundTypeLabel:
		var label proto.LabelData
		if err := json.Unmarshal(inbound.Data, &label); err != nil {
			return nil, nil, err
		}
		if label.ID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "label id is required"}, nil
		}
		return &core.Command{
			Kind: core.CommandLabel,
			Label: &core.Label{
				ID:       label.ID,
				Username: label.Username,
				X:        label.X,
				Y:        label.Y,
				Color:    label.Color,
			},
		}, nil, nil
	case proto.InboundTypeChat:
		var chat proto.ChatData
		if err := json.Unmarshal(inbound.Data, &chat); err != nil {
			return nil, nil, err
		}
		if chat.Text == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "text is required"}, nil
		}
		// A missing sender name is filled in by the hub, which owns
		// the client's join identity.
		return &core.Command{
			Kind: core.CommandChat,
			Chat: &core.ChatMessage{
				SenderID:   chat.SenderID,
				SenderName: chat.SenderName,
				Text:       chat.Text,
				CreatedAt:  time.Now(),
			},
		}, nil, nil
	case proto.InboundTypeStateRequest:
		return &core.Command{Kind: core.CommandStateRequest}, nil, nil
	case proto.InboundTypeStateResponse:
		var resp proto.StateResponseData
		if err := json.Unmarshal(inbound.Data, &resp); err != nil {
			return nil, nil, err
		}
		if resp.RequesterID == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "requester id is required"}, nil
		}
		return &core.Command{
			Kind:     core.CommandStateResponse,
			TargetID: resp.RequesterID,
			Snapshot: resp.Snapshot,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventRoster:
		users := make([]proto.RosterUser, 0, len(event.Users))
		for _, u := range event.Users {
			users = append(users, proto.RosterUser{Username: u.Username})
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeRoster,
			Data:  proto.EventRoster{Room: event.Room, Users: users},
		}
	case core.EventSegment:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeSegment,
			Data: proto.EventSegment{
				Room:        event.Room,
				From:        event.From,
				Seq:         event.Seq,
				SegmentData: segmentToWire(event.Segment),
			},
		}
	case core.EventClear:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeClear,
			Data:  proto.EventClear{Room: event.Room, From: event.From, Seq: event.Seq},
		}
	case core.EventLabel:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeLabel,
			Data: proto.EventLabel{
				Room: event.Room,
				Seq:  event.Seq,
				LabelData: proto.LabelData{
					ID:       event.Label.ID,
					Username: event.Label.Username,
					X:        event.Label.X,
					Y:        event.Label.Y,
					Color:    event.Label.Color,
				},
			},
		}
	case core.EventChat:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeChat,
			Data: proto.EventChat{
				Room:       event.Room,
				SenderID:   event.Chat.SenderID,
				SenderName: event.Chat.SenderName,
				Text:       event.Chat.Text,
				TS:         event.Chat.CreatedAt.Unix(),
			},
		}
	case core.EventStateRequest:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeStateRequest,
			Data:  proto.EventStateRequest{Room: event.Room, RequesterID: event.RequesterID},
		}
	case core.EventStateResponse:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventTypeStateResponse,
			Data:  proto.EventStateResponse{Room: event.Room, Snapshot: event.Snapshot},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func segmentFromWire(seg proto.SegmentData) *canvas.Segment {
	out := &canvas.Segment{
		Curr:  canvas.Point{X: seg.CurrentPoint.X, Y: seg.CurrentPoint.Y},
		Color: seg.Color,
		Width: seg.LineWidth,
	}
	if seg.PrevPoint != nil {
		out.Prev = &canvas.Point{X: seg.PrevPoint.X, Y: seg.PrevPoint.Y}
	}
	return out
}

func segmentToWire(seg *canvas.Segment) proto.SegmentData {
	if seg == nil {
		return proto.SegmentData{}
	}
	out := proto.SegmentData{
		CurrentPoint: proto.PointData{X: seg.Curr.X, Y: seg.Curr.Y},
		Color:        seg.Color,
		LineWidth:    seg.Width,
	}
	if seg.Prev != nil {
		out.PrevPoint = &proto.PointData{X: seg.Prev.X, Y: seg.Prev.Y}
	}
	return out
}
