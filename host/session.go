// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package host exposes a Circuit through the narrow command surface a host
// application embeds: integer identifiers, string parameters, integer wire
// states and status codes instead of Go errors.
//
// Session methods can be called directly, or through Exec with JSON encoded
// Commands, which is what the HTTP server does.
//
package host

import (
	"log/slog"

	cs "github.com/db47h/cedarsim"
)

// WireChange is the new state of a changed wire.
//
type WireChange struct {
	ID    cs.ID `json:"id"`
	State []int `json:"state"`
}

// StepResult is the host view of a simulation step.
//
type StepResult struct {
	ChangedWires []WireChange `json:"changedWires"`
	Time         int64        `json:"time"`
	Events       int          `json:"events"`
}

// NewStepResult converts r. Wire states are taken from r.Values, as they
// were when the step ended.
//
func NewStepResult(r cs.StepResult) StepResult {
	res := StepResult{ChangedWires: make([]WireChange, 0, len(r.Changed)), Time: int64(r.Time), Events: r.Events}
	for _, id := range r.Changed {
		res.ChangedWires = append(res.ChangedWires, WireChange{ID: id, State: r.Values[id].Codes()})
	}
	return res
}

// Session wraps a Circuit.
//
type Session struct {
	c   *cs.Circuit
	log *slog.Logger
}

// NewSession returns a new session on c. A nil logger discards all output.
//
func NewSession(c *cs.Circuit, log *slog.Logger) *Session {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Session{c: c, log: log}
}

// Circuit returns the underlying circuit.
//
func (s *Session) Circuit() *cs.Circuit { return s.c }

func (s *Session) status(op string, err error) Status {
	st := StatusOf(err)
	if st != OK {
		s.log.Debug("host operation failed", "op", op, "status", st.String(), "err", err)
	}
	return st
}

// NewGate creates a gate of the given type with the given id.
// It returns the gate id, or 0 and a non-OK status.
//
func (s *Session) NewGate(typ string, id cs.ID) (cs.ID, Status) {
	id, err := s.c.NewGate(typ, id)
	return id, s.status("newGate", err)
}

// NewGateAuto creates a gate with an automatically assigned id.
//
func (s *Session) NewGateAuto(typ string) (cs.ID, Status) {
	return s.NewGate(typ, cs.NoID)
}

// NewWire creates a wire. A width of 0 means 1.
//
func (s *Session) NewWire(id cs.ID, width int) (cs.ID, Status) {
	if width == 0 {
		width = 1
	}
	id, err := s.c.NewWire(id, width)
	return id, s.status("newWire", err)
}

// NewWireAuto creates a wire with an automatically assigned id.
//
func (s *Session) NewWireAuto(width int) (cs.ID, Status) {
	return s.NewWire(cs.NoID, width)
}

// DeleteGate deletes a gate.
//
func (s *Session) DeleteGate(id cs.ID) Status {
	return s.status("deleteGate", s.c.DeleteGate(id))
}

// DeleteWire deletes a wire.
//
func (s *Session) DeleteWire(id cs.ID) Status {
	return s.status("deleteWire", s.c.DeleteWire(id))
}

// ConnectGateInput connects an input port to a wire.
//
func (s *Session) ConnectGateInput(gate cs.ID, port string, wire cs.ID) Status {
	return s.status("connectGateInput", s.c.ConnectInput(gate, port, wire))
}

// ConnectGateOutput connects an output port to a wire.
//
func (s *Session) ConnectGateOutput(gate cs.ID, port string, wire cs.ID) Status {
	return s.status("connectGateOutput", s.c.ConnectOutput(gate, port, wire))
}

// DisconnectGateInput disconnects an input port.
//
func (s *Session) DisconnectGateInput(gate cs.ID, port string) Status {
	return s.status("disconnectGateInput", s.c.DisconnectInput(gate, port))
}

// DisconnectGateOutput disconnects an output port.
//
func (s *Session) DisconnectGateOutput(gate cs.ID, port string) Status {
	return s.status("disconnectGateOutput", s.c.DisconnectOutput(gate, port))
}

// SetGateParameter sets a gate parameter.
//
func (s *Session) SetGateParameter(gate cs.ID, key, value string) Status {
	return s.status("setGateParameter", s.c.SetGateParam(gate, key, value))
}

// GetGateParameter returns the value of a gate parameter.
//
func (s *Session) GetGateParameter(gate cs.ID, key string) (string, Status) {
	v, err := s.c.GateParam(gate, key)
	return v, s.status("getGateParameter", err)
}

// SetGateInputParameter sets a parameter of an input port.
//
func (s *Session) SetGateInputParameter(gate cs.ID, port, key, value string) Status {
	return s.status("setGateInputParameter", s.c.SetInputParam(gate, port, key, value))
}

// SetGateOutputParameter sets a parameter of an output port.
//
func (s *Session) SetGateOutputParameter(gate cs.ID, port, key, value string) Status {
	return s.status("setGateOutputParameter", s.c.SetOutputParam(gate, port, key, value))
}

// GetWireState returns the state codes of a wire, bit 0 first.
//
func (s *Session) GetWireState(wire cs.ID) ([]int, Status) {
	v, err := s.c.WireState(wire)
	if err != nil {
		return nil, s.status("getWireState", err)
	}
	return v.Codes(), OK
}

// Step runs one simulation step.
//
func (s *Session) Step() (StepResult, Status) {
	r, err := s.c.Step()
	return NewStepResult(r), s.status("step", err)
}

// StepN runs up to n simulation steps and returns the union of the changed
// wires.
//
func (s *Session) StepN(n int) (StepResult, Status) {
	r, err := s.c.StepN(n)
	return NewStepResult(r), s.status("stepN", err)
}

// StepOnlyGates evaluates every gate without draining the event queue.
//
func (s *Session) StepOnlyGates() { s.c.StepOnlyGates() }

// GetSystemTime returns the current simulation time.
//
func (s *Session) GetSystemTime() int64 { return int64(s.c.Time()) }

// DestroyAllEvents drops every pending event.
//
func (s *Session) DestroyAllEvents() { s.c.DestroyAllEvents() }

// GetGateIDs returns the ids of all gates in ascending order.
//
func (s *Session) GetGateIDs() []cs.ID { return s.c.GateIDs() }

// GetWireIDs returns the ids of all wires in ascending order.
//
func (s *Session) GetWireIDs() []cs.ID { return s.c.WireIDs() }

// Reset restarts the simulation from time 0.
//
func (s *Session) Reset() Status {
	return s.status("reset", s.c.Reset())
}
