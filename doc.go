/*
Package cedarsim is a deterministic digital logic simulation kernel.

A Circuit holds gates connected by wires. Signals take one of five values:
Zero, One, HiZ (floating), Conflict (drivers disagree) and Unknown. A wire
wider than one bit is a bus; each of its bits is resolved independently from
the values driven by the gate outputs connected to it.

Gate types are described by GateSpecs registered in a Catalog. A spec declares
the gate ports, its parameter schema and a mount function that returns the
gate Behavior. Behaviors never write to wires directly: output changes are
scheduled as events at the current time plus the gate propagation delay.

Time only moves forward through Step, which drains every event due at the
earliest pending time, then advances the clock to the next pending event. A
slot that does not settle within a bounded number of events is reported as
ErrStall.

The gatelib sub-package provides the standard gate library.
*/
package cedarsim
