// Copyright (c) 2014-2014 PPCD developers.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "github.com/btcsuite/btclog"

// log is the package-level logger used throughout the kernel. It is set to
// a no-op logger by default so importers that never call UseLogger still
// link and run cleanly.
var log = btclog.Disabled

// UseLogger sets the package-wide logger. This should be called before
// the kernel is used by a long-running process that wants stake-selection
// tracing; callers that don't care about logs can leave the default in
// place.
func UseLogger(logger btclog.Logger) {
	log = logger
}
