// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package host

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	cs "github.com/db47h/cedarsim"
)

var tracer = otel.Tracer("cedarsim.host")

var validate = validator.New()

// Command operations.
//
const (
	OpNewGate                = "newGate"
	OpNewGateAuto            = "newGateAuto"
	OpNewWire                = "newWire"
	OpNewWireAuto            = "newWireAuto"
	OpDeleteGate             = "deleteGate"
	OpDeleteWire             = "deleteWire"
	OpConnectGateInput       = "connectGateInput"
	OpConnectGateOutput      = "connectGateOutput"
	OpDisconnectGateInput    = "disconnectGateInput"
	OpDisconnectGateOutput   = "disconnectGateOutput"
	OpSetGateParameter       = "setGateParameter"
	OpGetGateParameter       = "getGateParameter"
	OpSetGateInputParameter  = "setGateInputParameter"
	OpSetGateOutputParameter = "setGateOutputParameter"
	OpGetWireState           = "getWireState"
	OpStep                   = "step"
	OpStepN                  = "stepN"
	OpStepOnlyGates          = "stepOnlyGates"
	OpGetSystemTime          = "getSystemTime"
	OpDestroyAllEvents       = "destroyAllEvents"
	OpGetGateIDs             = "getGateIDs"
	OpGetWireIDs             = "getWireIDs"
	OpReset                  = "reset"
)

// MaxStepCount bounds the count of a stepN command.
//
const MaxStepCount = 1 << 20

// Command is a single host operation. Only the fields relevant to Op are
// used.
//
type Command struct {
	Op    string `json:"op" validate:"required,oneof=newGate newGateAuto newWire newWireAuto deleteGate deleteWire connectGateInput connectGateOutput disconnectGateInput disconnectGateOutput setGateParameter getGateParameter setGateInputParameter setGateOutputParameter getWireState step stepN stepOnlyGates getSystemTime destroyAllEvents getGateIDs getWireIDs reset"`
	Gate  cs.ID  `json:"gate,omitempty"`
	Wire  cs.ID  `json:"wire,omitempty"`
	Port  string `json:"port,omitempty"`
	Type  string `json:"type,omitempty"`
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`
	Width int    `json:"width,omitempty" validate:"gte=0,lte=4096"`
	Count int    `json:"count,omitempty" validate:"gte=0,lte=1048576"`
}

// Response is the result of a Command.
//
type Response struct {
	Status Status      `json:"status"`
	Error  string      `json:"error,omitempty"`
	ID     cs.ID       `json:"id,omitempty"`
	Value  string      `json:"value,omitempty"`
	State  []int       `json:"state,omitempty"`
	IDs    []cs.ID     `json:"ids,omitempty"`
	Step   *StepResult `json:"step,omitempty"`
	Time   int64       `json:"time"`
}

// Exec runs cmd against the session.
//
func (s *Session) Exec(ctx context.Context, cmd Command) Response {
	_, span := tracer.Start(ctx, "host.Exec",
		trace.WithAttributes(
			attribute.String("host.op", cmd.Op),
		),
	)
	defer span.End()

	var r Response
	if err := validate.Struct(&cmd); err != nil {
		r = Response{Status: Invalid, Error: err.Error()}
	} else {
		r = s.exec(cmd)
	}
	r.Time = s.GetSystemTime()
	span.SetAttributes(attribute.String("host.status", r.Status.String()))
	if r.Status != OK {
		if r.Error == "" {
			r.Error = r.Status.String()
		}
		span.SetStatus(codes.Error, r.Error)
	}
	return r
}

func (s *Session) exec(cmd Command) Response {
	var r Response
	switch cmd.Op {
	case OpNewGate:
		r.ID, r.Status = s.NewGate(cmd.Type, cmd.Gate)
	case OpNewGateAuto:
		r.ID, r.Status = s.NewGateAuto(cmd.Type)
	case OpNewWire:
		r.ID, r.Status = s.NewWire(cmd.Wire, cmd.Width)
	case OpNewWireAuto:
		r.ID, r.Status = s.NewWireAuto(cmd.Width)
	case OpDeleteGate:
		r.Status = s.DeleteGate(cmd.Gate)
	case OpDeleteWire:
		r.Status = s.DeleteWire(cmd.Wire)
	case OpConnectGateInput:
		r.Status = s.ConnectGateInput(cmd.Gate, cmd.Port, cmd.Wire)
	case OpConnectGateOutput:
		r.Status = s.ConnectGateOutput(cmd.Gate, cmd.Port, cmd.Wire)
	case OpDisconnectGateInput:
		r.Status = s.DisconnectGateInput(cmd.Gate, cmd.Port)
	case OpDisconnectGateOutput:
		r.Status = s.DisconnectGateOutput(cmd.Gate, cmd.Port)
	case OpSetGateParameter:
		r.Status = s.SetGateParameter(cmd.Gate, cmd.Key, cmd.Value)
	case OpGetGateParameter:
		r.Value, r.Status = s.GetGateParameter(cmd.Gate, cmd.Key)
	case OpSetGateInputParameter:
		r.Status = s.SetGateInputParameter(cmd.Gate, cmd.Port, cmd.Key, cmd.Value)
	case OpSetGateOutputParameter:
		r.Status = s.SetGateOutputParameter(cmd.Gate, cmd.Port, cmd.Key, cmd.Value)
	case OpGetWireState:
		r.State, r.Status = s.GetWireState(cmd.Wire)
	case OpStep:
		var st StepResult
		st, r.Status = s.Step()
		r.Step = &st
	case OpStepN:
		n := cmd.Count
		if n == 0 {
			n = 1
		}
		var st StepResult
		st, r.Status = s.StepN(n)
		r.Step = &st
	case OpStepOnlyGates:
		s.StepOnlyGates()
	case OpGetSystemTime:
	case OpDestroyAllEvents:
		s.DestroyAllEvents()
	case OpGetGateIDs:
		r.IDs = s.GetGateIDs()
	case OpGetWireIDs:
		r.IDs = s.GetWireIDs()
	case OpReset:
		r.Status = s.Reset()
	default:
		r.Status = Invalid
	}
	return r
}
