// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package gatelib

import (
	cs "github.com/db47h/cedarsim"
)

// Specs returns the specs of all the gate types in the library.
//
func Specs() []*cs.GateSpec {
	r := logicGates()
	r = append(r,
		&notGate,
		&bufferGate,
		&tristateGate,
		muxGate("MUX2", 1),
		muxGate("MUX", 2),
		&decoderGate,
		&adderGate,
		&compareGate,
		constantGate("ONE", cs.One),
		constantGate("ZERO", cs.Zero),
		constantGate("HIZ", cs.HiZ),
		constantGate("UNKNOWN", cs.Unknown),
		&toggleGate,
		&keypadGate,
		&clockGate,
		&pulseGate,
		&dffGate,
		&jkffGate,
		&registerGate,
		&ramGate,
		sinkGate("LED", "IN"),
		sinkGate("PROBE", "IN[BITS]", bitsParam()),
	)
	return r
}

// Register adds the whole library to cat.
//
func Register(cat *cs.Catalog) error {
	return cat.Register(Specs()...)
}

// Catalog returns a new catalog holding the whole library.
//
func Catalog() *cs.Catalog {
	cat := cs.NewCatalog()
	if err := Register(cat); err != nil {
		// the library is static, this cannot fail at run time.
		panic(err)
	}
	return cat
}
